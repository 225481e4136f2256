// Package ui renders assistant output for the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// DefaultWordWrap is the glamour wrap width for rendered answers.
const DefaultWordWrap = 80

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// MarkdownRenderer converts markdown to styled terminal text.
type MarkdownRenderer interface {
	Render(in string) (string, error)
}

// Printer writes answers, context snippets and errors to an output stream.
// Markdown and styles are only applied when styled is set, so piped output
// stays plain.
type Printer struct {
	out    io.Writer
	md     MarkdownRenderer
	styled bool
}

// NewPrinter creates a printer. When styled is true a glamour renderer is
// built; if that fails the printer falls back to plain text.
func NewPrinter(out io.Writer, styled bool) *Printer {
	p := &Printer{out: out, styled: styled}
	if styled {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(DefaultWordWrap),
		)
		if err == nil {
			p.md = r
		}
	}
	return p
}

// NewPrinterWithRenderer creates a styled printer with a custom renderer (for testing).
func NewPrinterWithRenderer(out io.Writer, md MarkdownRenderer) *Printer {
	return &Printer{out: out, md: md, styled: true}
}

// Styled reports whether output is decorated.
func (p *Printer) Styled() bool {
	return p.styled
}

// Answer prints a complete answer, rendered as markdown when styled.
func (p *Printer) Answer(text string) {
	if p.styled && p.md != nil {
		if rendered, err := p.md.Render(text); err == nil {
			fmt.Fprint(p.out, rendered)
			return
		}
	}
	fmt.Fprintln(p.out, strings.TrimRight(text, "\n"))
}

// Chunk prints a piece of a streamed answer as-is.
func (p *Printer) Chunk(text string) {
	fmt.Fprint(p.out, text)
}

// EndStream terminates a streamed answer.
func (p *Printer) EndStream() {
	fmt.Fprintln(p.out)
}

// Context prints the retrieved context snippet shown in verbose mode.
func (p *Printer) Context(snippet string) {
	p.line(ContextStyle.Render, "Context: "+snippet)
}

// Prompt prints the chat prompt without a trailing newline.
func (p *Printer) Prompt() {
	if p.styled {
		fmt.Fprint(p.out, UserPromptStyle.Render("You: "))
		return
	}
	fmt.Fprint(p.out, "You: ")
}

// Error prints an error line.
func (p *Printer) Error(err error) {
	p.line(ErrorStyle.Render, "Error: "+err.Error())
}

// Message prints a plain informational line.
func (p *Printer) Message(text string) {
	fmt.Fprintln(p.out, text)
}

func (p *Printer) line(style func(...string) string, text string) {
	if p.styled {
		text = style(text)
	}
	fmt.Fprintln(p.out, text)
}
