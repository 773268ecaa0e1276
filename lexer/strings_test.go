package lexer

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/phplex/phplex/syntax"
)

func TestLexerSingleQuoteStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`'hello'`, "hello"},
		{`''`, ""},
		{`'a\'b'`, "a'b"},
		{`'a\\b'`, `a\b`},
		{`'a\nb'`, `a\nb`}, // single quotes do not expand \n
		{`'multi
line'`, "multi\nline"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := scanTokens(tt.input)
			assert.Equal(t, syntax.StringLiteral, tokens[0].Kind)
			assert.Equal(t, tt.want, tokens[0].Value.Str())
			assert.Equal(t, tt.input, tokens[0].Text([]byte(tt.input)))
		})
	}
}

func TestLexerBinaryStringPrefix(t *testing.T) {
	tokens := scanTokens(`b'data'`)
	assert.Equal(t, syntax.StringLiteral, tokens[0].Kind)
	assert.Equal(t, "data", tokens[0].Value.Str())
	assert.Equal(t, `b'data'`, tokens[0].Text([]byte(`b'data'`)))
}

func TestLexerDoubleQuoteEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"a\rb"`, "a\rb"},
		{`"a\vb"`, "a\vb"},
		{`"a\fb"`, "a\fb"},
		{`"a\\b"`, `a\b`},
		{`"a\"b"`, `a"b`},
		{`"a\$b"`, "a$b"},
		{`"\x41"`, "A"},
		{`"\x4"`, "\x04"},
		{`"\101"`, "A"},
		{`"\u{1F600}"`, "😀"},
		{`"\u{41}"`, "A"},
		{`"a\qb"`, `a\qb`}, // unknown escapes stay verbatim
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := scanTokens(tt.input)
			assert.Equal(t, syntax.StringLiteral, tokens[0].Kind)
			assert.Equal(t, tt.want, tokens[0].Value.Str())
		})
	}
}

func TestLexerInvalidCodepointEscape(t *testing.T) {
	tokens := scanTokens(`"\u{ZZ}"`, WithParseMode())
	assert.Equal(t, syntax.Error, tokens[0].Kind)
}

func TestLexerInvalidCodepointEscapeReportsToSink(t *testing.T) {
	// Outside parse mode the literal token survives with its raw body, and
	// every malformed escape reaches the sink at its own position.
	sink := &DiagList{}
	input := `"\u{ZZ}" . "\u{}"`
	tokens := scanTokens(input, WithDiagnostics(sink))

	want := []syntax.TokenKind{
		syntax.StringLiteral, syntax.Dot, syntax.StringLiteral, syntax.EndOfFile,
	}
	assert.Equal(t, want, tokenKinds(tokens))
	assert.Equal(t, `\u{ZZ}`, tokens[0].Value.Str())

	assert.Equal(t, 2, len(sink.Entries))
	assert.Equal(t, DiagInvalidEscapeSequence, sink.Entries[0].ID)
	assert.Equal(t, DiagInvalidEscapeSequence, sink.Entries[1].ID)
	assert.NotEqual(t, sink.Entries[0].Loc, sink.Entries[1].Loc,
		"each malformed escape is reported at its own literal")
}

func TestLexerInvalidCodepointEscapeInChunkReportsToSink(t *testing.T) {
	sink := &DiagList{}
	tokens := scanTokens(`"$x \u{ZZ}"`, WithDiagnostics(sink))

	want := []syntax.TokenKind{
		syntax.DoubleQuote, syntax.Variable, syntax.EncapsedAndWhitespace,
		syntax.DoubleQuote, syntax.EndOfFile,
	}
	assert.Equal(t, want, tokenKinds(tokens))

	assert.Equal(t, 1, len(sink.Entries))
	assert.Equal(t, DiagInvalidEscapeSequence, sink.Entries[0].ID)
}

func TestLexerDoubleQuoteInterpolation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []syntax.TokenKind
	}{
		{
			name:  "simple variable",
			input: `"a $name b"`,
			want: []syntax.TokenKind{
				syntax.DoubleQuote, syntax.EncapsedAndWhitespace, syntax.Variable,
				syntax.EncapsedAndWhitespace, syntax.DoubleQuote, syntax.EndOfFile,
			},
		},
		{
			name:  "variable at start",
			input: `"$name"`,
			want: []syntax.TokenKind{
				syntax.DoubleQuote, syntax.Variable, syntax.DoubleQuote, syntax.EndOfFile,
			},
		},
		{
			name:  "curly open expression",
			input: `"{$a}"`,
			want: []syntax.TokenKind{
				syntax.DoubleQuote, syntax.CurlyOpen, syntax.Variable,
				syntax.RightBrace, syntax.DoubleQuote, syntax.EndOfFile,
			},
		},
		{
			name:  "dollar open curly varname",
			input: `"${a}"`,
			want: []syntax.TokenKind{
				syntax.DoubleQuote, syntax.DollarOpenCurlyBrace, syntax.StringVarname,
				syntax.RightBrace, syntax.DoubleQuote, syntax.EndOfFile,
			},
		},
		{
			name:  "variable with offset",
			input: `"$a[0]"`,
			want: []syntax.TokenKind{
				syntax.DoubleQuote, syntax.Variable, syntax.LeftSquareBracket,
				syntax.IntegerLiteral, syntax.RightSquareBracket, syntax.DoubleQuote, syntax.EndOfFile,
			},
		},
		{
			name:  "variable with property",
			input: `"$a->b"`,
			want: []syntax.TokenKind{
				syntax.DoubleQuote, syntax.Variable, syntax.Arrow,
				syntax.Identifier, syntax.DoubleQuote, syntax.EndOfFile,
			},
		},
		{
			name:  "escaped dollar does not interpolate",
			input: `"a \$name b"`,
			want:  []syntax.TokenKind{syntax.StringLiteral, syntax.EndOfFile},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := scanTokens(tt.input)
			assert.Equal(t, tt.want, tokenKinds(tokens))
		})
	}
}

func TestLexerInterpolationChunkValues(t *testing.T) {
	tokens := scanTokens(`"a\n $x"`)
	assert.Equal(t, syntax.EncapsedAndWhitespace, tokens[1].Kind)
	assert.Equal(t, "a\n ", tokens[1].Value.Str())
	assert.Equal(t, "x", tokens[2].Value.Str())
}

func TestLexerUnterminatedStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"single quote", "'abc"},
		{"double quote", `"abc`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := scanTokens(tt.input)
			assert.Equal(t, 2, len(tokens))
			assert.Equal(t, syntax.EncapsedAndWhitespace, tokens[0].Kind)
			assert.Equal(t, tt.input, tokens[0].Text([]byte(tt.input)),
				"the recovery token covers the whole partial string")
			assert.Equal(t, syntax.EndOfFile, tokens[1].Kind)
		})
	}
}

func TestLexerBackquote(t *testing.T) {
	input := "`ls $dir`"
	tokens := scanTokens(input)
	want := []syntax.TokenKind{
		syntax.Backtick, syntax.EncapsedAndWhitespace, syntax.Variable,
		syntax.Backtick, syntax.EndOfFile,
	}
	assert.Equal(t, want, tokenKinds(tokens))
	assert.Equal(t, "ls ", tokens[1].Value.Str())
}

func TestLexerBackquoteEscapes(t *testing.T) {
	input := "`a\\`b`"
	tokens := scanTokens(input)
	assert.Equal(t, syntax.Backtick, tokens[0].Kind)
	assert.Equal(t, syntax.EncapsedAndWhitespace, tokens[1].Kind)
	assert.Equal(t, "a`b", tokens[1].Value.Str())
	assert.Equal(t, syntax.Backtick, tokens[2].Kind)
}

func TestLexerStringVarnameValue(t *testing.T) {
	tokens := scanTokens(`"${total}"`)
	assert.Equal(t, syntax.StringVarname, tokens[2].Kind)
	assert.Equal(t, "total", tokens[2].Value.Str())
}
