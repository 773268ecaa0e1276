package lexer

import (
	"fmt"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"github.com/phplex/phplex/syntax"
)

// DiagID identifies a lexical diagnostic.
type DiagID uint8

const (
	DiagInvalidUTF8 DiagID = iota
	DiagInvalidIdentifierStart
	DiagInvalidCharacter
	DiagConfusableCharacter
	DiagNonBreakingSpace
	DiagEmbeddedNull
	DiagUnterminatedBlockComment
	DiagInvalidNumericLiteral
	DiagInvalidEscapeSequence
	DiagHeredocMixedIndentation
	DiagHeredocBadIndentation
)

var diagMessages = map[DiagID]string{
	DiagInvalidUTF8:              "invalid UTF-8 found in source file",
	DiagInvalidIdentifierStart:   "an identifier cannot begin with this character",
	DiagInvalidCharacter:         "invalid character in source file",
	DiagConfusableCharacter:      "unicode character %q looks similar to %q; did you mean to use %q?",
	DiagNonBreakingSpace:         "non-breaking space (U+00A0) used instead of regular space",
	DiagEmbeddedNull:             "nul character embedded in middle of file",
	DiagUnterminatedBlockComment: "unterminated '/*' comment",
	DiagInvalidNumericLiteral:    "invalid numeric literal",
	DiagInvalidEscapeSequence:    "invalid escape sequence in string literal",
	DiagHeredocMixedIndentation:  "invalid indentation - tabs and spaces cannot be mixed",
	DiagHeredocBadIndentation:    "invalid body indentation level (expecting an indentation level of at least %d)",
}

// Message returns the printf template for the diagnostic.
func (d DiagID) Message() string {
	if msg, ok := diagMessages[d]; ok {
		return msg
	}
	return "unknown diagnostic"
}

// Diagnostic is one reported lexical problem.
type Diagnostic struct {
	Loc  SourceLoc
	ID   DiagID
	Args []interface{}
}

// Text renders the diagnostic message with its arguments applied.
func (d Diagnostic) Text() string {
	if len(d.Args) == 0 {
		return d.ID.Message()
	}
	return fmt.Sprintf(d.ID.Message(), d.Args...)
}

// DiagnosticSink receives lexical diagnostics. The lexer passes a fresh
// args slice on every call, so implementations may retain it. A nil sink
// is valid; errors then surface only through the lexer's exception flag
// and message slot.
type DiagnosticSink interface {
	Diagnose(loc SourceLoc, id DiagID, args ...interface{})
}

// DiagList is a DiagnosticSink that records everything it receives.
type DiagList struct {
	Entries []Diagnostic
}

// Diagnose implements DiagnosticSink.
func (d *DiagList) Diagnose(loc SourceLoc, id DiagID, args ...interface{}) {
	d.Entries = append(d.Entries, Diagnostic{Loc: loc, ID: id, Args: args})
}

// EventHandler observes each formed token. Suppressed during heredoc
// scan-ahead.
type EventHandler func(tok syntax.Token)

// ExceptionHandler is invoked on lexical errors with the rendered message
// and an error code.
type ExceptionHandler func(msg string, code int)

// LexError is a lexical error bound to a source position.
type LexError struct {
	Pos     plexer.Position
	Message string
	Code    int
}

func (e *LexError) Error() string {
	location := fmt.Sprintf("%s:%d:%d", e.Pos.Filename, e.Pos.Line, e.Pos.Column)
	if e.Pos.Filename == "" {
		location = fmt.Sprintf("line %d", e.Pos.Line)
	}
	return fmt.Sprintf("%s: %s", location, e.Message)
}

// GetPosition returns the error's source position.
func (e *LexError) GetPosition() plexer.Position {
	return e.Pos
}

// NewLexError builds a LexError for the given location.
func NewLexError(mgr *SourceManager, loc SourceLoc, msg string, code int) *LexError {
	pos := plexer.Position{}
	if id := mgr.BufferContainingLocation(loc); id != InvalidBufferID {
		line, column := mgr.LineAndColumn(loc)
		pos = plexer.Position{
			Filename: mgr.BufferName(id),
			Offset:   mgr.OffsetOfLocation(loc, id),
			Line:     line,
			Column:   column,
		}
	}
	return &LexError{Pos: pos, Message: msg, Code: code}
}
