package lexer

import (
	"bytes"
	"testing"

	"github.com/phplex/phplex/syntax"
)

// FuzzLexerRoundTrip checks the fundamental invariant: trivia plus token
// spans reproduce the input byte for byte, and lexing always terminates.
func FuzzLexerRoundTrip(f *testing.F) {
	seeds := []string{
		"",
		"<?php $x = 1;",
		"\xEF\xBB\xBF<?php echo 'hi';",
		"#!/usr/bin/env phlex\n<?php\n",
		"$a = \"x $y z\";",
		"'unterminated",
		"\"also $unterminated",
		"<<<EOT\n  body $v\n  EOT;",
		"<<<'RAW'\nno $interp\nRAW;",
		"<<<EOT\nEOT;",
		"0xFFFFFFFFFFFFFFFF 019 1_2_3 .5e9",
		"// comment\n/* block */ /** doc */\n# hash\n",
		"$a <=> $b ??= $c ** $d;",
		"\x00\xff\xfe",
		"{$a} ${b} $c[1] $d->e",
		"`cmd $arg`",
		"$a\r\n$b\r$c\n",
	}
	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, src []byte) {
		mgr := NewSourceManager()
		id := mgr.AddBuffer("fuzz", src)

		var rebuilt bytes.Buffer
		count := 0
		Tokenize(mgr, id, func(l *Lexer, tok syntax.Token) bool {
			rebuilt.WriteString(tok.Leading.Text())
			rebuilt.Write(tok.Bytes(l.Source()))
			rebuilt.WriteString(tok.Trailing.Text())
			count++
			// A token stream longer than the input plus one sentinel per
			// byte means the lexer stopped making progress.
			return count <= len(src)+2
		}, WithTriviaRetention(WithTrivia))

		if count > len(src)+2 {
			t.Fatalf("lexer did not terminate after %d tokens", count)
		}
		if !bytes.Equal(rebuilt.Bytes(), src) {
			t.Fatalf("round-trip mismatch:\n  input:   %q\n  rebuilt: %q", src, rebuilt.Bytes())
		}
	})
}

// FuzzLexerParseMode exercises the error-token paths.
func FuzzLexerParseMode(f *testing.F) {
	f.Add([]byte("019"))
	f.Add([]byte(`"\u{ZZ}"`))
	f.Add([]byte("<<<EOT\n  a\nbad\n  EOT;"))

	f.Fuzz(func(t *testing.T, src []byte) {
		mgr := NewSourceManager()
		id := mgr.AddBuffer("fuzz", src)
		tokens := TokenizeAll(mgr, id, WithParseMode(), WithCheckHeredocIndentation())
		for _, tok := range tokens {
			if tok.Span.Start < 0 || tok.Span.End() > len(src) {
				t.Fatalf("token span %v outside buffer of length %d", tok.Span, len(src))
			}
		}
	})
}
