package syntax

import "strings"

// TriviaKind classifies a single piece of trivia.
type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaTab
	TriviaVerticalTab
	TriviaFormfeed
	TriviaNewline
	TriviaCarriageReturn
	TriviaCarriageReturnLineFeed
	TriviaBacktick
	TriviaLineComment
	TriviaBlockComment
	TriviaDocLineComment
	TriviaDocBlockComment
	TriviaGarbageText
)

var triviaNames = map[TriviaKind]string{
	TriviaSpace:                  "Space",
	TriviaTab:                    "Tab",
	TriviaVerticalTab:            "VerticalTab",
	TriviaFormfeed:               "Formfeed",
	TriviaNewline:                "Newline",
	TriviaCarriageReturn:         "CarriageReturn",
	TriviaCarriageReturnLineFeed: "CarriageReturnLineFeed",
	TriviaBacktick:               "Backtick",
	TriviaLineComment:            "LineComment",
	TriviaBlockComment:           "BlockComment",
	TriviaDocLineComment:         "DocLineComment",
	TriviaDocBlockComment:        "DocBlockComment",
	TriviaGarbageText:            "GarbageText",
}

func (k TriviaKind) String() string {
	if name, ok := triviaNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsComment reports whether the kind is one of the comment kinds.
func (k TriviaKind) IsComment() bool {
	switch k {
	case TriviaLineComment, TriviaBlockComment, TriviaDocLineComment, TriviaDocBlockComment:
		return true
	default:
		return false
	}
}

// countable reports whether pieces of this kind store a repetition count
// instead of owned text. Countable pieces squash on append.
func (k TriviaKind) countable() bool {
	switch k {
	case TriviaSpace, TriviaTab, TriviaVerticalTab, TriviaFormfeed,
		TriviaNewline, TriviaCarriageReturn, TriviaCarriageReturnLineFeed,
		TriviaBacktick:
		return true
	default:
		return false
	}
}

// unit returns the source text of a single repetition of a countable kind.
func (k TriviaKind) unit() string {
	switch k {
	case TriviaSpace:
		return " "
	case TriviaTab:
		return "\t"
	case TriviaVerticalTab:
		return "\v"
	case TriviaFormfeed:
		return "\f"
	case TriviaNewline:
		return "\n"
	case TriviaCarriageReturn:
		return "\r"
	case TriviaCarriageReturnLineFeed:
		return "\r\n"
	case TriviaBacktick:
		return "`"
	default:
		return ""
	}
}

// TriviaPiece is one run of syntactically insignificant text. Countable
// kinds store only the repetition count; comment and garbage kinds keep the
// original text so the source can be reproduced byte for byte.
type TriviaPiece struct {
	Kind  TriviaKind
	Count int
	Text  string
}

// Length returns the number of source bytes the piece covers.
func (p TriviaPiece) Length() int {
	if p.Kind.countable() {
		return p.Count * len(p.Kind.unit())
	}
	return len(p.Text)
}

func (p TriviaPiece) writeText(b *strings.Builder) {
	if p.Kind.countable() {
		unit := p.Kind.unit()
		for i := 0; i < p.Count; i++ {
			b.WriteString(unit)
		}
		return
	}
	b.WriteString(p.Text)
}

// IsNewline reports whether the piece represents one or more line
// terminators.
func (p TriviaPiece) IsNewline() bool {
	switch p.Kind {
	case TriviaNewline, TriviaCarriageReturn, TriviaCarriageReturnLineFeed:
		return true
	default:
		return false
	}
}

// Trivia is an ordered list of pieces attached to one side of a token.
type Trivia []TriviaPiece

// AppendOrSquash appends a countable piece, merging it into the last piece
// when both have the same kind. Appending Space(1) after Space(k) yields
// Space(k+1).
func (t *Trivia) AppendOrSquash(kind TriviaKind, count int) {
	if n := len(*t); n > 0 && (*t)[n-1].Kind == kind && kind.countable() {
		(*t)[n-1].Count += count
		return
	}
	*t = append(*t, TriviaPiece{Kind: kind, Count: count})
}

// PushText appends a text-carrying piece. Comments are never squashed
// across distinct lexical occurrences.
func (t *Trivia) PushText(kind TriviaKind, text string) {
	*t = append(*t, TriviaPiece{Kind: kind, Text: text})
}

// Length returns the total number of source bytes covered by the list.
func (t Trivia) Length() int {
	length := 0
	for _, p := range t {
		length += p.Length()
	}
	return length
}

// Text reproduces the exact source text of the trivia list.
func (t Trivia) Text() string {
	var b strings.Builder
	b.Grow(t.Length())
	for _, p := range t {
		p.writeText(&b)
	}
	return b.String()
}

// ContainsNewline reports whether any piece is a line terminator.
func (t Trivia) ContainsNewline() bool {
	for _, p := range t {
		if p.IsNewline() {
			return true
		}
	}
	return false
}
