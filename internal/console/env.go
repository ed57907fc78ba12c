package console

import (
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/archify/internal/shared"
)

// Env is the output side of the console, shared by every command.
type Env struct {
	Out   io.Writer
	Theme *Theme
	Width int
}

// NewEnv returns an Env writing to out (stdout when nil) sized to the terminal.
func NewEnv(out io.Writer) *Env {
	if out == nil {
		out = os.Stdout
	}
	return &Env{Out: out, Theme: DefaultTheme(), Width: TerminalWidth()}
}

func (e *Env) Printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) Println(args ...any) {
	fmt.Fprintln(e.Out, args...)
}

// Heading prints a section title.
func (e *Env) Heading(title string) {
	e.Println(e.Theme.Accent.Render(title))
	e.Println()
}

// Success prints a confirmation line.
func (e *Env) Success(format string, args ...any) {
	e.Println(e.Theme.OK.Render(fmt.Sprintf(format, args...)))
}

// Columns prints items in terminal-width columns.
func (e *Env) Columns(items []string) {
	fmt.Fprint(e.Out, Columns(items, e.Width))
}

// Warn prints a warning and, when present, the names the user may have meant.
func (e *Env) Warn(msg string, suggestions []string) {
	e.Printf("%s %s\n", e.Theme.Warn.Render("Warning:"), msg)
	if len(suggestions) == 0 {
		return
	}
	e.Println("Did you mean:")
	for _, s := range suggestions {
		e.Printf("- %s?\n", s)
	}
}

// Report renders err by kind. Recoverable errors are warnings; the rest show their wrapped chain.
func (e *Env) Report(err error) {
	if err == nil {
		return
	}

	if shared.KindOf(err).Recoverable() {
		e.Warn(err.Error(), shared.SuggestionsOf(err))
		return
	}

	e.Printf("%s %v\n", e.Theme.Err.Render("Unexpected error:"), err)
	for _, link := range shared.Chain(err)[1:] {
		e.Println(e.Theme.Dim.Render("  " + link))
	}
}
