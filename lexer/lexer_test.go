package lexer

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/phplex/phplex/syntax"
)

// scanTokens lexes the whole input and returns every token including the
// end-of-file sentinel.
func scanTokens(input string, opts ...Option) []syntax.Token {
	mgr := NewSourceManager()
	id := mgr.AddBuffer("test", []byte(input))
	var tokens []syntax.Token
	Tokenize(mgr, id, func(_ *Lexer, tok syntax.Token) bool {
		tokens = append(tokens, tok)
		return true
	}, opts...)
	return tokens
}

func tokenKinds(tokens []syntax.Token) []syntax.TokenKind {
	kinds := make([]syntax.TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []syntax.TokenKind
	}{
		{
			name:  "semicolon",
			input: ";",
			want:  []syntax.TokenKind{syntax.Semicolon, syntax.EndOfFile},
		},
		{
			name:  "parens and brackets",
			input: "( ) [ ]",
			want:  []syntax.TokenKind{syntax.LeftParen, syntax.RightParen, syntax.LeftSquareBracket, syntax.RightSquareBracket, syntax.EndOfFile},
		},
		{
			name:  "braces",
			input: "{ }",
			want:  []syntax.TokenKind{syntax.LeftBrace, syntax.RightBrace, syntax.EndOfFile},
		},
		{
			name:  "arrow enters property mode",
			input: "$a->b",
			want:  []syntax.TokenKind{syntax.Variable, syntax.Arrow, syntax.Identifier, syntax.EndOfFile},
		},
		{
			name:  "double arrow",
			input: "=>",
			want:  []syntax.TokenKind{syntax.DoubleArrow, syntax.EndOfFile},
		},
		{
			name:  "double colon",
			input: "A::b",
			want:  []syntax.TokenKind{syntax.Identifier, syntax.DoubleColon, syntax.Identifier, syntax.EndOfFile},
		},
		{
			name:  "namespace separator",
			input: `Foo\Bar`,
			want:  []syntax.TokenKind{syntax.Identifier, syntax.Backslash, syntax.Identifier, syntax.EndOfFile},
		},
		{
			name:  "error suppression",
			input: "@foo()",
			want:  []syntax.TokenKind{syntax.At, syntax.Identifier, syntax.LeftParen, syntax.RightParen, syntax.EndOfFile},
		},
		{
			name:  "ellipsis",
			input: "...$args",
			want:  []syntax.TokenKind{syntax.Ellipsis, syntax.Variable, syntax.EndOfFile},
		},
		{
			name:  "bare dollar",
			input: "$ ;",
			want:  []syntax.TokenKind{syntax.Dollar, syntax.Semicolon, syntax.EndOfFile},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := scanTokens(tt.input)
			assert.Equal(t, tt.want, tokenKinds(tokens))
		})
	}
}

func TestLexerOperators(t *testing.T) {
	tests := []struct {
		input string
		want  syntax.TokenKind
	}{
		{"+", syntax.Plus},
		{"+=", syntax.PlusEquals},
		{"++", syntax.Inc},
		{"-", syntax.Minus},
		{"-=", syntax.MinusEquals},
		{"--", syntax.Dec},
		{"*", syntax.Asterisk},
		{"**", syntax.Pow},
		{"**=", syntax.PowEquals},
		{"*=", syntax.MulEquals},
		{"/", syntax.Slash},
		{"/=", syntax.DivEquals},
		{"%", syntax.Percent},
		{"%=", syntax.ModEquals},
		{"=", syntax.Equals},
		{"==", syntax.EqualsEquals},
		{"===", syntax.Identical},
		{"!", syntax.Exclaim},
		{"!=", syntax.NotEquals},
		{"!==", syntax.NotIdentical},
		{"<", syntax.Less},
		{"<=", syntax.LessEquals},
		{"<=>", syntax.Spaceship},
		{"<>", syntax.NotEquals},
		{"<<", syntax.Shl},
		{"<<=", syntax.ShlEquals},
		{">", syntax.Greater},
		{">=", syntax.GreaterEquals},
		{">>", syntax.Shr},
		{">>=", syntax.ShrEquals},
		{"&", syntax.Ampersand},
		{"&&", syntax.BooleanAnd},
		{"&=", syntax.AmpEquals},
		{"|", syntax.Pipe},
		{"||", syntax.BooleanOr},
		{"|=", syntax.PipeEquals},
		{"^", syntax.Caret},
		{"^=", syntax.CaretEquals},
		{"~", syntax.Tilde},
		{".", syntax.Dot},
		{".=", syntax.DotEquals},
		{"?", syntax.Question},
		{"??", syntax.Coalesce},
		{"??=", syntax.CoalesceEquals},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := scanTokens(tt.input)
			assert.Equal(t, []syntax.TokenKind{tt.want, syntax.EndOfFile}, tokenKinds(tokens))
			assert.Equal(t, tt.input, tokens[0].Text([]byte(tt.input)))
		})
	}
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	tokens := scanTokens("function foo() { return $bar; }")
	want := []syntax.TokenKind{
		syntax.KwFunction, syntax.Identifier, syntax.LeftParen, syntax.RightParen,
		syntax.LeftBrace, syntax.KwReturn, syntax.Variable, syntax.Semicolon,
		syntax.RightBrace, syntax.EndOfFile,
	}
	assert.Equal(t, want, tokenKinds(tokens))
	assert.Equal(t, "foo", tokens[1].Value.Str())
	assert.Equal(t, "bar", tokens[6].Value.Str())
}

func TestLexerKeywordsCaseInsensitive(t *testing.T) {
	tokens := scanTokens("ECHO Echo echo")
	want := []syntax.TokenKind{syntax.KwEcho, syntax.KwEcho, syntax.KwEcho, syntax.EndOfFile}
	assert.Equal(t, want, tokenKinds(tokens))
}

func TestLexerVariables(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"$x", "x"},
		{"$_foo", "_foo"},
		{"$foo123", "foo123"},
		{"$über", "über"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := scanTokens(tt.input)
			assert.Equal(t, syntax.Variable, tokens[0].Kind)
			assert.Equal(t, tt.want, tokens[0].Value.Str())
		})
	}
}

func TestLexerOpenTag(t *testing.T) {
	tokens := scanTokens("<?php $x = 1;")
	want := []syntax.TokenKind{
		syntax.OpenTag, syntax.Variable, syntax.Equals,
		syntax.IntegerLiteral, syntax.Semicolon, syntax.EndOfFile,
	}
	assert.Equal(t, want, tokenKinds(tokens))
	assert.Equal(t, "x", tokens[1].Value.Str())
	assert.Equal(t, int64(1), tokens[3].Value.Int())
	// The tag swallows one following whitespace character.
	assert.Equal(t, "<?php ", tokens[0].Text([]byte("<?php $x = 1;")))
}

func TestLexerOpenTagWithEcho(t *testing.T) {
	tokens := scanTokens("<?= $x ?>")
	want := []syntax.TokenKind{
		syntax.OpenTagWithEcho, syntax.Variable, syntax.CloseTag, syntax.EndOfFile,
	}
	assert.Equal(t, want, tokenKinds(tokens))
}

func TestLexerCloseTagEatsNewline(t *testing.T) {
	source := "?>\nfoo"
	tokens := scanTokens(source)
	assert.Equal(t, syntax.CloseTag, tokens[0].Kind)
	assert.Equal(t, "?>\n", tokens[0].Text([]byte(source)))
}

func TestLexerEmptyBuffer(t *testing.T) {
	tokens := scanTokens("")
	assert.Equal(t, 1, len(tokens))
	assert.Equal(t, syntax.EndOfFile, tokens[0].Kind)
	assert.Equal(t, 0, tokens[0].Span.Length)
	assert.Equal(t, 0, len(tokens[0].Leading))
}

func TestLexerBOMOnlyBuffer(t *testing.T) {
	tokens := scanTokens("\xEF\xBB\xBF", WithTriviaRetention(WithTrivia))
	assert.Equal(t, 1, len(tokens))
	assert.Equal(t, syntax.EndOfFile, tokens[0].Kind)
	assert.Equal(t, 1, len(tokens[0].Leading))
	assert.Equal(t, syntax.TriviaGarbageText, tokens[0].Leading[0].Kind)
	assert.Equal(t, 3, tokens[0].Leading[0].Length())
}

func TestLexerBOMPrecedesFirstToken(t *testing.T) {
	tokens := scanTokens("\xEF\xBB\xBF$x", WithTriviaRetention(WithTrivia))
	assert.Equal(t, syntax.Variable, tokens[0].Kind)
	assert.True(t, tokens[0].AtStartOfLine)
	assert.Equal(t, syntax.TriviaGarbageText, tokens[0].Leading[0].Kind)
}

func TestLexerAtStartOfLine(t *testing.T) {
	tokens := scanTokens("$a\n$b $c")
	assert.Equal(t, 4, len(tokens))
	assert.True(t, tokens[0].AtStartOfLine, "first token starts the buffer")
	assert.True(t, tokens[1].AtStartOfLine, "token after newline")
	assert.False(t, tokens[2].AtStartOfLine, "token after a space only")
}

func TestLexerUnknownCharacter(t *testing.T) {
	// A lone identifier-continuation code point cannot start an identifier;
	// it lexes as an Unknown token.
	sink := &DiagList{}
	mgr := NewSourceManager()
	id := mgr.AddBuffer("test", []byte("̀"))
	tokens := TokenizeAll(mgr, id, WithDiagnostics(sink))
	assert.Equal(t, 1, len(tokens))
	assert.Equal(t, syntax.Unknown, tokens[0].Kind)
}

func TestLexerInvalidUTF8BecomesGarbage(t *testing.T) {
	sink := &DiagList{}
	tokens := scanTokens("\xff$x", WithTriviaRetention(WithTrivia), WithDiagnostics(sink))
	assert.Equal(t, syntax.Variable, tokens[0].Kind)
	assert.Equal(t, syntax.TriviaGarbageText, tokens[0].Leading[0].Kind)
}

func TestLexerEmbeddedNull(t *testing.T) {
	sink := &DiagList{}
	tokens := scanTokens("$a \x00 $b", WithTriviaRetention(WithTrivia), WithDiagnostics(sink))
	assert.Equal(t, []syntax.TokenKind{syntax.Variable, syntax.Variable, syntax.EndOfFile}, tokenKinds(tokens))
	assert.Equal(t, 1, len(sink.Entries))
	assert.Equal(t, DiagEmbeddedNull, sink.Entries[0].ID)
}

func TestLexerHashbang(t *testing.T) {
	source := "#!/usr/bin/env phlex\n$x"
	tokens := scanTokens(source, WithTriviaRetention(WithTrivia))
	assert.Equal(t, syntax.Variable, tokens[0].Kind)
	assert.Equal(t, syntax.TriviaGarbageText, tokens[0].Leading[0].Kind)
	assert.Equal(t, "#!/usr/bin/env phlex", tokens[0].Leading[0].Text)
}

func TestLexerNonBreakingSpaceSkipped(t *testing.T) {
	sink := &DiagList{}
	tokens := scanTokens("$a $b", WithTriviaRetention(WithTrivia), WithDiagnostics(sink))
	assert.Equal(t, []syntax.TokenKind{syntax.Variable, syntax.Variable, syntax.EndOfFile}, tokenKinds(tokens))
	assert.Equal(t, 1, len(sink.Entries))
	assert.Equal(t, DiagNonBreakingSpace, sink.Entries[0].ID)
}
