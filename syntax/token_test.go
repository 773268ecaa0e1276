package syntax

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestKeywordKind(t *testing.T) {
	tests := []struct {
		word string
		want TokenKind
	}{
		{"echo", KwEcho},
		{"ECHO", KwEcho},
		{"Function", KwFunction},
		{"die", KwExit},
		{"exit", KwExit},
		{"include_once", KwIncludeOnce},
		{"myVar", Identifier},
		{"echo2", Identifier},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordKind([]byte(tt.word)))
		})
	}
}

func TestTokenText(t *testing.T) {
	source := []byte("$foo = 42;")
	tok := Token{Kind: Variable, Span: Span{Start: 0, Length: 4}}

	assert.Equal(t, "$foo", tok.Text(source))
	assert.Equal(t, []byte("$foo"), tok.Bytes(source))
	assert.Equal(t, 4, tok.Length())
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "VARIABLE", Variable.String())
	assert.Equal(t, "<=>", Spaceship.String())
	assert.Equal(t, "foreach", KwForeach.String())
	assert.Equal(t, "EOF", EndOfFile.String())
}

func TestTokenKindIsKeyword(t *testing.T) {
	assert.True(t, KwEcho.IsKeyword())
	assert.True(t, KwYield.IsKeyword())
	assert.False(t, Identifier.IsKeyword())
	assert.False(t, Plus.IsKeyword())
}

func TestValueSlots(t *testing.T) {
	assert.True(t, Value{}.IsNone())
	assert.Equal(t, int64(42), IntValue(42).Int())
	assert.Equal(t, 1.5, DoubleValue(1.5).Double())
	assert.Equal(t, "x", StringValue("x").Str())
	assert.Equal(t, ValueString, StringValue("x").Kind())
}
