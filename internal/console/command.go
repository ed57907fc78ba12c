package console

import (
	"context"
	"errors"
	"strings"
)

// ErrQuit is returned by a command to end the loop.
var ErrQuit = errors.New("quit")

// Command is a single console verb.
type Command interface {
	Name() string
	Usage() string
	Run(ctx context.Context, arg string, env *Env) error
}

// Registry holds commands in registration order.
type Registry struct {
	commands []Command
	index    map[string]int
}

func NewRegistry(commands ...Command) *Registry {
	r := &Registry{index: make(map[string]int)}
	for _, c := range commands {
		r.Register(c)
	}
	return r
}

// Register adds c, replacing any command with the same name.
func (r *Registry) Register(c Command) {
	name := strings.ToLower(c.Name())
	if i, ok := r.index[name]; ok {
		r.commands[i] = c
		return
	}
	r.index[name] = len(r.commands)
	r.commands = append(r.commands, c)
}

// Lookup finds a command by name, ignoring case.
func (r *Registry) Lookup(name string) (Command, bool) {
	i, ok := r.index[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return r.commands[i], true
}

// Commands returns the registered commands in order.
func (r *Registry) Commands() []Command {
	return append([]Command(nil), r.commands...)
}
