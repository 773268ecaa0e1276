package lexer

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/phplex/phplex/syntax"
)

// reconstruct concatenates leading trivia, token text, and trailing trivia
// for every token in emission order.
func reconstruct(input string, opts ...Option) string {
	mgr := NewSourceManager()
	id := mgr.AddBuffer("test", []byte(input))
	var b strings.Builder
	opts = append(opts, WithTriviaRetention(WithTrivia))
	Tokenize(mgr, id, func(l *Lexer, tok syntax.Token) bool {
		b.WriteString(tok.Leading.Text())
		b.Write(tok.Bytes(l.Source()))
		b.WriteString(tok.Trailing.Text())
		return true
	}, opts...)
	return b.String()
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"simple assignment", "<?php $x = 1;"},
		{"comments", "$a; // line\n/* block */ $b;\n# hash\n"},
		{"doc comments", "/** doc */\nfunction f() {}\n"},
		{"crlf", "$a = 1;\r\n$b = 2;\r\n"},
		{"strings", `$s = "a $name b" . 'lit';`},
		{"heredoc", "<<<EOT\n  hello $name\n  EOT;\n"},
		{"nowdoc", "<<<'EOT'\nraw $x\nEOT;\n"},
		{"empty heredoc", "<<<EOT\nEOT;"},
		{"bom", "\xEF\xBB\xBF<?php $x;"},
		{"hashbang", "#!/usr/bin/env phlex\n<?php $x;"},
		{"garbage bytes", "$a \xff\xfe $b"},
		{"embedded nul", "$a \x00 $b"},
		{"tabs and formfeed", "$a\t\v\f$b"},
		{"unterminated string", `$a = "oops`},
		{"interpolation zoo", `"{$a} ${b} $c[1] $d->e"`},
		{"operators", "$a <=> $b ??= $c ** $d;"},
		{"trailing whitespace", "$a;   \n  "},
		{"numbers", "019 0xFF 1_2 .5e3 9223372036854775808"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.input, reconstruct(tt.input))
		})
	}
}

func TestNoLostBytes(t *testing.T) {
	input := "<?php\n// comment\n$x = <<<EOT\n  a\n  EOT;\n"
	mgr := NewSourceManager()
	id := mgr.AddBuffer("test", []byte(input))
	total := 0
	Tokenize(mgr, id, func(_ *Lexer, tok syntax.Token) bool {
		total += tok.Leading.Length() + tok.Span.Length + tok.Trailing.Length()
		return true
	}, WithTriviaRetention(WithTrivia))
	assert.Equal(t, len(input), total)
}

func TestMonotonicCursor(t *testing.T) {
	input := "<?php $x = 1 + 2; // done\n"
	tokens := scanTokens(input)
	prev := -1
	for _, tok := range tokens {
		assert.True(t, tok.Span.Start >= prev, "token starts must not decrease")
		if tok.Kind != syntax.EndOfFile {
			assert.True(t, tok.Span.Length > 0, "only EOF may be empty")
		}
		prev = tok.Span.Start
	}
}

func TestTrailingTriviaStopsAtNewline(t *testing.T) {
	tokens := scanTokens("$a  \n  $b", WithTriviaRetention(WithTrivia))

	// The spaces after $a are trailing; the newline and the next indent
	// belong to $b's leading trivia.
	assert.Equal(t, 1, len(tokens[0].Trailing))
	assert.Equal(t, syntax.TriviaSpace, tokens[0].Trailing[0].Kind)
	assert.Equal(t, 2, tokens[0].Trailing[0].Count)

	assert.Equal(t, 2, len(tokens[1].Leading))
	assert.Equal(t, syntax.TriviaNewline, tokens[1].Leading[0].Kind)
	assert.Equal(t, syntax.TriviaSpace, tokens[1].Leading[1].Kind)
}

func TestCommentTriviaKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  syntax.TriviaKind
	}{
		{"line", "// c\n$x", syntax.TriviaLineComment},
		{"doc line", "/// c\n$x", syntax.TriviaDocLineComment},
		{"block", "/* c */$x", syntax.TriviaBlockComment},
		{"doc block", "/** c */$x", syntax.TriviaDocBlockComment},
		{"hash", "# c\n$x", syntax.TriviaLineComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := scanTokens(tt.input, WithTriviaRetention(WithTrivia))
			assert.Equal(t, syntax.Variable, tokens[0].Kind)
			found := false
			for _, piece := range tokens[0].Leading {
				if piece.Kind == tt.want {
					found = true
				}
			}
			assert.True(t, found, "expected %s in leading trivia", tt.want)
		})
	}
}

func TestCommentsAsTokens(t *testing.T) {
	input := "// one\n/* two */ $x"
	tokens := scanTokens(input, WithKeepComments())
	want := []syntax.TokenKind{
		syntax.LineComment, syntax.BlockComment, syntax.Variable, syntax.EndOfFile,
	}
	assert.Equal(t, want, tokenKinds(tokens))
	assert.Equal(t, "// one", tokens[0].Text([]byte(input)))
	assert.Equal(t, "/* two */", tokens[1].Text([]byte(input)))
}

func TestCommentAttachSetsCommentLength(t *testing.T) {
	input := "// note\n$x"
	tokens := scanTokens(input,
		WithCommentRetention(CommentsAttach),
		WithTriviaRetention(WithTrivia))
	assert.Equal(t, syntax.Variable, tokens[0].Kind)
	assert.True(t, tokens[0].CommentLength > 0)
}

func TestCommentStripLeavesNoMetadata(t *testing.T) {
	input := "// note\n$x"
	tokens := scanTokens(input, WithTriviaRetention(WithTrivia))
	assert.Equal(t, syntax.Variable, tokens[0].Kind)
	assert.Equal(t, 0, tokens[0].CommentLength)
}

func TestUnterminatedBlockComment(t *testing.T) {
	sink := &DiagList{}
	tokens := scanTokens("$a /* never closed", WithTriviaRetention(WithTrivia), WithDiagnostics(sink))
	assert.Equal(t, []syntax.TokenKind{syntax.Variable, syntax.EndOfFile}, tokenKinds(tokens))
	assert.Equal(t, 1, len(sink.Entries))
	assert.Equal(t, DiagUnterminatedBlockComment, sink.Entries[0].ID)
}

func TestBlockCommentSpanningLinesSetsStartOfLine(t *testing.T) {
	tokens := scanTokens("$a /* one\ntwo */ $b", WithTriviaRetention(WithTrivia))
	assert.Equal(t, syntax.Variable, tokens[1].Kind)
	assert.True(t, tokens[1].AtStartOfLine)
}
