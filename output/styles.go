// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/muesli/termenv"

	"github.com/phplex/phplex/syntax"
)

// Styles provides styled output helpers for the CLI.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("2")).
		Bold().
		String()
}

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("1")).
		Bold().
		String()
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("6")).
		String()
}

// Dim returns de-emphasized text.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Token styles the given text for a token kind: keywords bold, literals
// and variables colored, trivia-like kinds dimmed.
func (s *Styles) Token(kind syntax.TokenKind, text string) string {
	str := s.output.String(text)
	switch {
	case kind.IsKeyword():
		return str.Bold().String()
	case kind == syntax.Variable || kind == syntax.StringVarname:
		return str.Foreground(s.output.Color("3")).String()
	case kind == syntax.StringLiteral || kind == syntax.EncapsedAndWhitespace ||
		kind == syntax.StartHeredoc || kind == syntax.EndHeredoc:
		return str.Foreground(s.output.Color("2")).String()
	case kind == syntax.IntegerLiteral || kind == syntax.DoubleLiteral:
		return str.Foreground(s.output.Color("5")).String()
	case kind == syntax.LineComment || kind == syntax.BlockComment || kind == syntax.DocComment:
		return str.Faint().String()
	case kind == syntax.Error || kind == syntax.Unknown:
		return str.Foreground(s.output.Color("1")).Bold().String()
	default:
		return text
	}
}
