package lexer

import (
	"strings"
	"testing"

	"github.com/phplex/phplex/syntax"
)

func benchmarkSource() []byte {
	var b strings.Builder
	b.WriteString("<?php\n")
	for i := 0; i < 200; i++ {
		b.WriteString("// a line comment\n")
		b.WriteString("function handler($req, $res) {\n")
		b.WriteString("    $total = 0x1F + 42 * 1.5;\n")
		b.WriteString("    $msg = \"count is $total for {$req->path}\";\n")
		b.WriteString("    return <<<EOT\n        body $msg\n        EOT;\n")
		b.WriteString("}\n")
	}
	return []byte(b.String())
}

func BenchmarkTokenizeAll(b *testing.B) {
	source := benchmarkSource()
	b.SetBytes(int64(len(source)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mgr := NewSourceManager()
		id := mgr.AddBuffer("bench", source)
		tokens := TokenizeAll(mgr, id)
		if len(tokens) == 0 {
			b.Fatal("no tokens")
		}
	}
}

func BenchmarkTokenizeAllWithTrivia(b *testing.B) {
	source := benchmarkSource()
	b.SetBytes(int64(len(source)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mgr := NewSourceManager()
		id := mgr.AddBuffer("bench", source)
		total := 0
		Tokenize(mgr, id, func(_ *Lexer, tok syntax.Token) bool {
			total += tok.Span.Length
			return true
		}, WithTriviaRetention(WithTrivia))
		if total == 0 {
			b.Fatal("no bytes")
		}
	}
}
