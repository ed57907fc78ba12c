package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ParseLine splits a line into a command name and its argument.
// The argument is the remaining words joined by single spaces.
func ParseLine(line string) (name, arg string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// Banner prints the title and command list shown when the console starts.
func Banner(env *Env, reg *Registry) {
	env.Println(env.Theme.Title.Render("🎵 Archify 🎵"))
	env.Println(env.Theme.Dim.Render("Archive your Spotify playlists into local Markdown files."))
	env.Println()
	PrintCommands(env, reg)
}

// PrintCommands lists every registered command with its usage.
func PrintCommands(env *Env, reg *Registry) {
	env.Heading("Archify Commands")

	width := 0
	for _, c := range reg.Commands() {
		width = max(width, lipgloss.Width(c.Name()))
	}
	name := env.Theme.Prompt.Width(width + 2)
	for _, c := range reg.Commands() {
		env.Printf("%s%s\n", name.Render(c.Name()), c.Usage())
	}
	env.Println()
}

// Loop reads commands from in until EOF, a quit command, or cancellation of ctx.
//
// Each line runs at most one command. Command errors are reported through env and the loop continues.
func Loop(ctx context.Context, in io.Reader, reg *Registry, env *Env) error {
	scanner := bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		env.Printf("%s ", env.Theme.Prompt.Render("INPUT:"))
		if !scanner.Scan() {
			env.Println()
			return scanner.Err()
		}

		name, arg := ParseLine(scanner.Text())
		if name == "" {
			env.Println("Please enter a command")
			continue
		}

		cmd, ok := reg.Lookup(name)
		if !ok {
			env.Println(env.Theme.Err.Render("Unknown command: " + name + ". Please try again."))
			continue
		}

		if err := cmd.Run(ctx, arg, env); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			env.Report(err)
		}
	}
}
