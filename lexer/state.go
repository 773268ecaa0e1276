package lexer

import "github.com/phplex/phplex/syntax"

// condition selects which scanner runs on the next lex call.
type condition uint8

const (
	condInScripting condition = iota
	condLookingForProperty
	condLookingForVarname
	condVarOffset
	condInDoubleQuotes
	condInBackquote
	condInHeredoc
	condInNowdoc
	condEndHeredoc
)

var conditionNames = map[condition]string{
	condInScripting:        "InScripting",
	condLookingForProperty: "LookingForProperty",
	condLookingForVarname:  "LookingForVarname",
	condVarOffset:          "VarOffset",
	condInDoubleQuotes:     "InDoubleQuotes",
	condInBackquote:        "InBackquote",
	condInHeredoc:          "InHeredoc",
	condInNowdoc:           "InNowdoc",
	condEndHeredoc:         "EndHeredoc",
}

func (c condition) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// HeredocLabel records one open heredoc or nowdoc. It is pushed when the
// header is lexed and consumed at the matching end marker. The pointer is
// shared between the label stack and any saved state frames, so the
// indentation discovered by scan-ahead survives a state restore.
type HeredocLabel struct {
	Name string

	// Indentation is the leading-whitespace width of the closing line,
	// measured in characters.
	Indentation int

	// IndentationUsesSpaces records whether the closing indentation was
	// made of spaces rather than tabs.
	IndentationUsesSpaces bool
}

// lexerFlags collects the sticky per-lexer mode bits.
type lexerFlags struct {
	lexExceptionOccurred         bool
	reserveHeredocSpaces         bool
	heredocScanAhead             bool
	heredocIndentationUsesSpaces bool
	incrementLineNumber          bool
	checkHeredocIndentation      bool
	lexingBinaryString           bool
}

// State is a complete snapshot of a lexer's position and mode. Restoring a
// State rewinds the lexer exactly, including condition and label stacks.
type State struct {
	yyText             int
	yyCursor           int
	yyMarker           int
	yyLength           int
	condition          condition
	conditionStack     []condition
	heredocLabels      []*HeredocLabel
	lineNumber         int
	heredocIndentation int
	flags              lexerFlags
	eventHandler       EventHandler
	exceptionHandler   ExceptionHandler
	nextToken          syntax.Token
	leadingTrivia      syntax.Trivia
	trailingTrivia     syntax.Trivia
	primed             bool
}

// pushCondition enters cond, remembering the current condition.
func (l *Lexer) pushCondition(cond condition) {
	l.conditionStack = append(l.conditionStack, l.condition)
	l.condition = cond
}

// popCondition returns to the condition active before the matching push.
func (l *Lexer) popCondition() {
	n := len(l.conditionStack)
	if n == 0 {
		l.condition = condInScripting
		return
	}
	l.condition = l.conditionStack[n-1]
	l.conditionStack = l.conditionStack[:n-1]
}

// pushHeredocLabel pushes a label for an open heredoc or nowdoc.
func (l *Lexer) pushHeredocLabel(label *HeredocLabel) {
	l.heredocLabels = append(l.heredocLabels, label)
}

// popHeredocLabel pops and returns the innermost open label.
func (l *Lexer) popHeredocLabel() *HeredocLabel {
	n := len(l.heredocLabels)
	label := l.heredocLabels[n-1]
	l.heredocLabels = l.heredocLabels[:n-1]
	return label
}

// topHeredocLabel returns the innermost open label without popping.
func (l *Lexer) topHeredocLabel() *HeredocLabel {
	return l.heredocLabels[len(l.heredocLabels)-1]
}

// State captures the lexer's complete position for a later RestoreState.
// The stacks are copied by value; label records are shared by pointer.
func (l *Lexer) State() State {
	return State{
		yyText:             l.yyText,
		yyCursor:           l.yyCursor,
		yyMarker:           l.yyMarker,
		yyLength:           l.yyLength,
		condition:          l.condition,
		conditionStack:     append([]condition(nil), l.conditionStack...),
		heredocLabels:      append([]*HeredocLabel(nil), l.heredocLabels...),
		lineNumber:         l.lineNumber,
		heredocIndentation: l.heredocIndentation,
		flags:              l.flags,
		eventHandler:       l.eventHandler,
		exceptionHandler:   l.exceptionHandler,
		nextToken:          l.nextToken,
		leadingTrivia:      append(syntax.Trivia(nil), l.leadingTrivia...),
		trailingTrivia:     append(syntax.Trivia(nil), l.trailingTrivia...),
		primed:             l.primed,
	}
}

// RestoreState rewinds the lexer to a previously captured State. The next
// Lex call re-emits the same tokens the lexer produced after the capture.
func (l *Lexer) RestoreState(s State) {
	l.yyText = s.yyText
	l.yyCursor = s.yyCursor
	l.yyMarker = s.yyMarker
	l.yyLength = s.yyLength
	l.condition = s.condition
	l.conditionStack = append(l.conditionStack[:0], s.conditionStack...)
	l.heredocLabels = append(l.heredocLabels[:0], s.heredocLabels...)
	l.lineNumber = s.lineNumber
	l.heredocIndentation = s.heredocIndentation
	l.flags = s.flags
	l.eventHandler = s.eventHandler
	l.exceptionHandler = s.exceptionHandler
	l.nextToken = s.nextToken
	l.leadingTrivia = append(l.leadingTrivia[:0], s.leadingTrivia...)
	l.trailingTrivia = append(l.trailingTrivia[:0], s.trailingTrivia...)
	l.primed = s.primed
}

// RestoreLocation rewinds the lexer to an arbitrary location in its buffer
// and resets it to plain scripting state. The next Lex call emits the token
// beginning at or after loc.
func (l *Lexer) RestoreLocation(loc SourceLoc) {
	l.yyCursor = l.sourceMgr.OffsetOfLocation(loc, l.bufferID)
	l.yyText = l.yyCursor
	l.condition = condInScripting
	l.conditionStack = l.conditionStack[:0]
	l.heredocLabels = l.heredocLabels[:0]
	l.flags = lexerFlags{checkHeredocIndentation: l.flags.checkHeredocIndentation}
	l.primed = false
	l.nextToken = syntax.Token{}
}

// withScanAhead runs fn with the lexer's state saved, guaranteeing the
// state is restored on every exit path.
func (l *Lexer) withScanAhead(fn func()) {
	saved := l.State()
	defer l.RestoreState(saved)
	fn()
}
