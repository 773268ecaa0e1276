// Package lexer implements a trivia-preserving lexer for PHP-family
// source buffers.
//
// The lexer is a single-threaded state machine over a NUL-terminated byte
// buffer. Tokens carry byte offsets rather than text; whitespace, comments
// and other insignificant bytes are attached to tokens as leading and
// trailing trivia so that the original source can be reproduced byte for
// byte from the token stream.
package lexer

import (
	"fmt"

	"github.com/phplex/phplex/syntax"
)

// CommentRetention selects what happens to comments during lexing.
type CommentRetention uint8

const (
	// CommentsStrip records no comment range on tokens. Comments still
	// appear as trivia pieces when trivia retention is enabled.
	CommentsStrip CommentRetention = iota
	// CommentsAttach folds comments into the next token's leading trivia
	// and records the comment range on the token.
	CommentsAttach
	// CommentsAsTokens emits synthetic comment tokens.
	CommentsAsTokens
)

// TriviaRetention selects whether trivia lists are produced.
type TriviaRetention uint8

const (
	// WithoutTrivia produces only the at-start-of-line flag.
	WithoutTrivia TriviaRetention = iota
	// WithTrivia produces leading and trailing trivia lists.
	WithTrivia
)

// Lexer tokenizes one buffer registered with a SourceManager. A lexer
// exclusively owns its cursor and stacks; the buffer is borrowed immutably,
// so multiple lexers may scan the same buffer concurrently.
type Lexer struct {
	sourceMgr *SourceManager
	bufferID  BufferID
	diags     DiagnosticSink

	commentRetention CommentRetention
	triviaRetention  TriviaRetention

	// buf includes the trailing NUL sentinel; bufferEnd indexes it.
	buf               []byte
	bufferEnd         int
	contentStart      int
	artificialEnd     int
	codeCompletionPtr int // -1 when no completion anchor is set

	yyText   int
	yyCursor int
	yyMarker int
	yyLength int

	condition          condition
	conditionStack     []condition
	heredocLabels      []*HeredocLabel
	lineNumber         int
	heredocIndentation int
	flags              lexerFlags

	nextToken      syntax.Token
	leadingTrivia  syntax.Trivia
	trailingTrivia syntax.Trivia
	primed         bool

	parseMode        bool
	eventHandler     EventHandler
	exceptionHandler ExceptionHandler
	lastExceptionMsg string

	interner *Interner
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithCommentRetention selects the comment handling mode.
func WithCommentRetention(mode CommentRetention) Option {
	return func(l *Lexer) { l.commentRetention = mode }
}

// WithTriviaRetention selects whether trivia lists are produced.
func WithTriviaRetention(mode TriviaRetention) Option {
	return func(l *Lexer) { l.triviaRetention = mode }
}

// WithKeepComments is a convenience alias for comment return-as-tokens.
func WithKeepComments() Option {
	return func(l *Lexer) { l.commentRetention = CommentsAsTokens }
}

// WithDiagnostics attaches a diagnostic sink.
func WithDiagnostics(sink DiagnosticSink) Option {
	return func(l *Lexer) { l.diags = sink }
}

// WithRange narrows lexing to [offset, endOffset) of the buffer.
func WithRange(offset, endOffset int) Option {
	return func(l *Lexer) {
		l.yyCursor = offset
		l.artificialEnd = endOffset
	}
}

// WithParseMode makes invalid literals produce Error tokens instead of
// flagged literal tokens.
func WithParseMode() Option {
	return func(l *Lexer) { l.parseMode = true }
}

// WithCheckHeredocIndentation enables heredoc indentation checking and
// stripping outside parse mode.
func WithCheckHeredocIndentation() Option {
	return func(l *Lexer) { l.flags.checkHeredocIndentation = true }
}

// WithExceptionHandler registers a callback invoked on lexical errors.
func WithExceptionHandler(handler ExceptionHandler) Option {
	return func(l *Lexer) { l.exceptionHandler = handler }
}

// WithEventHandler registers a callback observing each formed token.
func WithEventHandler(handler EventHandler) Option {
	return func(l *Lexer) { l.eventHandler = handler }
}

// WithInterner shares a string interner between lexers.
func WithInterner(interner *Interner) Option {
	return func(l *Lexer) { l.interner = interner }
}

// New creates a lexer over the given buffer.
func New(mgr *SourceManager, id BufferID, opts ...Option) *Lexer {
	buf := mgr.BufferData(id)
	l := &Lexer{
		sourceMgr:         mgr,
		bufferID:          id,
		buf:               buf,
		bufferEnd:         len(buf) - 1,
		artificialEnd:     len(buf) - 1,
		codeCompletionPtr: -1,
		condition:         condInScripting,
		lineNumber:        1,
	}
	for _, opt := range opts {
		opt(l)
	}

	// A UTF-8 BOM belongs to the buffer, not the content. The cursor stays
	// at the buffer start; lexImpl records the BOM as leading garbage
	// trivia on the first token.
	if len(buf) >= 4 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		l.contentStart = 3
	}
	if id == mgr.CodeCompletionBuffer() {
		offset := mgr.CodeCompletionOffset()
		if offset >= 0 && offset <= l.bufferEnd {
			l.codeCompletionPtr = offset
		}
	}
	if l.interner == nil {
		l.interner = NewInterner(len(buf)/40 + 64)
	}
	return l
}

// NewSubrange derives a lexer over a subrange of the parent's buffer. The
// buffer, sink and modes are shared; the cursor range is narrowed.
func NewSubrange(parent *Lexer, begin, end SourceLoc) *Lexer {
	offset := parent.sourceMgr.OffsetOfLocation(begin, parent.bufferID)
	endOffset := parent.sourceMgr.OffsetOfLocation(end, parent.bufferID)
	return New(parent.sourceMgr, parent.bufferID,
		WithCommentRetention(parent.commentRetention),
		WithTriviaRetention(parent.triviaRetention),
		WithDiagnostics(parent.diags),
		WithRange(offset, endOffset),
		WithInterner(parent.interner))
}

// BufferID returns the ID of the buffer being lexed.
func (l *Lexer) BufferID() BufferID { return l.bufferID }

// SourceManager returns the manager owning the buffer.
func (l *Lexer) SourceManager() *SourceManager { return l.sourceMgr }

// Source returns the buffer contents without the sentinel.
func (l *Lexer) Source() []byte { return l.buf[:l.bufferEnd] }

// LineNumber returns the current 1-indexed line number.
func (l *Lexer) LineNumber() int { return l.lineNumber }

// LocForOffset returns the source location of a byte offset in the
// lexer's buffer.
func (l *Lexer) LocForOffset(offset int) SourceLoc {
	return l.sourceMgr.LocationForOffset(l.bufferID, offset)
}

// LexExceptionOccurred reports whether a lexical error was recorded since
// the flag was last cleared.
func (l *Lexer) LexExceptionOccurred() bool { return l.flags.lexExceptionOccurred }

// ClearExceptionFlag resets the lexical error flag.
func (l *Lexer) ClearExceptionFlag() { l.flags.lexExceptionOccurred = false }

// CurrentExceptionMessage returns the most recent lexical error message.
func (l *Lexer) CurrentExceptionMessage() string { return l.lastExceptionMsg }

func (l *Lexer) isKeepingComments() bool {
	return l.commentRetention == CommentsAsTokens
}

func (l *Lexer) incLineNumber(count int) {
	l.lineNumber += count
}

// diagnose reports a diagnostic at the given buffer offset when a sink is
// attached.
func (l *Lexer) diagnose(offset int, id DiagID, args ...interface{}) {
	if l.diags == nil {
		return
	}
	l.diags.Diagnose(l.LocForOffset(offset), id, args...)
}

// notifyLexicalException records a lexical error. The flag and message
// persist until cleared; the optional handler is invoked immediately.
func (l *Lexer) notifyLexicalException(msg string, code int) {
	l.flags.lexExceptionOccurred = true
	l.lastExceptionMsg = msg
	if l.exceptionHandler != nil {
		l.exceptionHandler(msg, code)
	}
}

func (l *Lexer) notifyLexicalExceptionf(code int, format string, args ...interface{}) {
	l.notifyLexicalException(fmt.Sprintf(format, args...), code)
}

// Lex returns the next token, including attached trivia when retention is
// enabled. After the end of the buffer it keeps returning the end-of-file
// token.
func (l *Lexer) Lex(result *syntax.Token) {
	l.ensurePrimed()
	*result = l.nextToken
	if result.Kind != syntax.EndOfFile {
		l.lexImpl()
	}
}

// LexWithTrivia returns the next token plus copies of its leading and
// trailing trivia lists.
func (l *Lexer) LexWithTrivia(result *syntax.Token, leading, trailing *syntax.Trivia) {
	l.Lex(result)
	if leading != nil {
		*leading = result.Leading
	}
	if trailing != nil {
		*trailing = result.Trailing
	}
}

// Peek returns the already-formed next token without advancing. The lexer
// always keeps one token formed ahead.
func (l *Lexer) Peek() syntax.Token {
	l.ensurePrimed()
	return l.nextToken
}

func (l *Lexer) ensurePrimed() {
	if !l.primed {
		l.lexImpl()
		l.primed = true
	}
}

// lexImpl forms the next token into l.nextToken: it collects leading
// trivia, dispatches to the scanner for the active condition, and collects
// trailing trivia.
func (l *Lexer) lexImpl() {
	l.leadingTrivia = l.leadingTrivia[:0]
	l.trailingTrivia = l.trailingTrivia[:0]

	atStartOfLine := false
	if l.yyCursor == 0 {
		if l.contentStart > 0 {
			l.leadingTrivia.PushText(syntax.TriviaGarbageText, string(l.buf[:l.contentStart]))
			l.yyCursor = l.contentStart
		}
		atStartOfLine = true
	}

	// The previous token's kind stays visible to the numeric scanners for
	// the unary-minus overflow correction; only the value and flags reset.
	l.nextToken.AtStartOfLine = atStartOfLine
	l.nextToken.Value = syntax.Value{}
	l.nextToken.InvalidLexValue = false
	l.nextToken.CorrectOverflow = false
	l.nextToken.CommentLength = 0
	l.nextToken.Leading = nil
	l.nextToken.Trailing = nil

	// Heredoc bodies keep their leading whitespace: indentation is part of
	// the body until stripping decides otherwise. Inside string-literal
	// conditions every byte is token text, so no trivia is collected.
	if l.flags.reserveHeredocSpaces {
		l.flags.reserveHeredocSpaces = false
	} else if !l.inStringCondition() {
		l.lexTrivia(&l.leadingTrivia, false)
	}

	l.yyText = l.yyCursor
	if l.flags.incrementLineNumber {
		l.incLineNumber(1)
		l.flags.incrementLineNumber = false
	}
	l.tokenLex()
}

// formToken finalizes l.nextToken with the given kind and start offset,
// attaching accumulated trivia. When the token start has run past the
// artificial end, the kind is clamped to end-of-file.
func (l *Lexer) formToken(kind syntax.TokenKind, tokenStart int) {
	if kind != syntax.EndOfFile && tokenStart >= l.artificialEnd {
		kind = syntax.EndOfFile
		tokenStart = l.artificialEnd
		l.yyCursor = l.artificialEnd
	}

	commentLength := 0
	if l.commentRetention == CommentsAttach {
		// The comment range spans from the first comment piece to the
		// token text; a backtick piece ends it early because the token's
		// comment range cannot account for backticks.
		counting := false
		for _, piece := range l.leadingTrivia {
			if !counting {
				if piece.Kind.IsComment() {
					counting = true
				} else {
					continue
				}
			}
			if piece.Kind == syntax.TriviaBacktick {
				break
			}
			commentLength += piece.Length()
		}
	}

	l.yyLength = l.yyCursor - tokenStart
	l.nextToken.Kind = kind
	l.nextToken.Span = syntax.Span{Start: tokenStart, Length: l.yyCursor - tokenStart}
	l.nextToken.CommentLength = commentLength

	if l.triviaRetention == WithTrivia {
		l.nextToken.Leading = append(syntax.Trivia(nil), l.leadingTrivia...)
		if !l.inStringCondition() && kind != syntax.EndOfFile {
			l.lexTrivia(&l.trailingTrivia, true)
		}
		l.nextToken.Trailing = append(syntax.Trivia(nil), l.trailingTrivia...)
	}
	if l.eventHandler != nil {
		l.eventHandler(l.nextToken)
	}
}

func (l *Lexer) formVariableToken(tokenStart int) {
	l.formToken(syntax.Variable, tokenStart)
	l.nextToken.Value = syntax.StringValue(l.interner.InternBytes(l.buf[tokenStart+1 : l.yyCursor]))
}

func (l *Lexer) formIdentifierToken(tokenStart int) {
	l.formToken(syntax.Identifier, tokenStart)
	l.nextToken.Value = syntax.StringValue(l.interner.InternBytes(l.buf[tokenStart:l.yyCursor]))
}

func (l *Lexer) formStringVariableToken(tokenStart int) {
	l.formToken(syntax.StringVarname, tokenStart)
	l.nextToken.Value = syntax.StringValue(l.interner.InternBytes(l.buf[tokenStart:l.yyCursor]))
}

func (l *Lexer) formErrorToken(tokenStart int) {
	l.formToken(syntax.Error, tokenStart)
	if l.lastExceptionMsg != "" {
		l.nextToken.Value = syntax.StringValue(l.lastExceptionMsg)
	}
}

// nullCharacterKind classifies a NUL byte at the given offset.
type nullCharacterKind uint8

const (
	nullBufferEnd nullCharacterKind = iota
	nullEmbedded
	nullCodeCompletion
)

func (l *Lexer) classifyNull(offset int) nullCharacterKind {
	if offset == l.codeCompletionPtr {
		return nullCodeCompletion
	}
	if offset >= l.bufferEnd {
		return nullBufferEnd
	}
	return nullEmbedded
}

// lexTrivia accumulates whitespace, comments and garbage into trivia until
// a byte that can start a token is seen. For trailing trivia the loop stops
// at the first line terminator: a newline after a token belongs to the next
// token's leading trivia.
func (l *Lexer) lexTrivia(trivia *syntax.Trivia, forTrailing bool) {
	for {
		if l.yyCursor >= l.artificialEnd {
			return
		}
		triviaStart := l.yyCursor
		c := l.buf[l.yyCursor]
		l.yyCursor++

		switch c {
		case '\n':
			if forTrailing {
				break
			}
			l.nextToken.AtStartOfLine = true
			l.incLineNumber(1)
			trivia.AppendOrSquash(syntax.TriviaNewline, 1)
			continue
		case '\r':
			if forTrailing {
				break
			}
			l.nextToken.AtStartOfLine = true
			l.incLineNumber(1)
			if l.buf[l.yyCursor] == '\n' {
				l.yyCursor++
				trivia.AppendOrSquash(syntax.TriviaCarriageReturnLineFeed, 1)
			} else {
				trivia.AppendOrSquash(syntax.TriviaCarriageReturn, 1)
			}
			continue
		case ' ':
			trivia.AppendOrSquash(syntax.TriviaSpace, 1)
			continue
		case '\t':
			trivia.AppendOrSquash(syntax.TriviaTab, 1)
			continue
		case '\v':
			trivia.AppendOrSquash(syntax.TriviaVerticalTab, 1)
			continue
		case '\f':
			trivia.AppendOrSquash(syntax.TriviaFormfeed, 1)
			continue
		case '/':
			if forTrailing || l.isKeepingComments() {
				// Comments are not trailing trivia, and in keep-comments
				// mode they become tokens.
				break
			}
			if l.buf[l.yyCursor] == '/' {
				isDoc := l.buf[l.yyCursor+1] == '/'
				l.skipToEndOfLine(false)
				kind := syntax.TriviaLineComment
				if isDoc {
					kind = syntax.TriviaDocLineComment
				}
				trivia.PushText(kind, string(l.buf[triviaStart:l.yyCursor]))
				continue
			}
			if l.buf[l.yyCursor] == '*' {
				isDoc := l.buf[l.yyCursor+1] == '*'
				l.skipSlashStarComment()
				kind := syntax.TriviaBlockComment
				if isDoc {
					kind = syntax.TriviaDocBlockComment
				}
				trivia.PushText(kind, string(l.buf[triviaStart:l.yyCursor]))
				continue
			}
			break
		case '#':
			if triviaStart == l.contentStart && l.buf[l.yyCursor] == '!' {
				l.yyCursor--
				l.skipHashbang(false)
				trivia.PushText(syntax.TriviaGarbageText, string(l.buf[triviaStart:l.yyCursor]))
				continue
			}
			if forTrailing || l.isKeepingComments() {
				break
			}
			l.skipToEndOfLine(false)
			trivia.PushText(syntax.TriviaLineComment, string(l.buf[triviaStart:l.yyCursor]))
			continue
		case 0:
			switch l.classifyNull(l.yyCursor - 1) {
			case nullEmbedded:
				l.diagnose(l.yyCursor-1, DiagEmbeddedNull)
				trivia.PushText(syntax.TriviaGarbageText, string(l.buf[triviaStart:l.yyCursor]))
				continue
			case nullCodeCompletion, nullBufferEnd:
			}
			break
		case '@', '{', '[', '(', '}', ']', ')', ',', ';', ':', '\\', '$',
			'0', '1', '2', '3', '4', '5', '6', '7', '8', '9',
			'"', '\'', '`', '_',
			'%', '!', '?', '=', '-', '+', '*', '&', '|', '^', '~', '.', '<', '>':
			break
		default:
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				break
			}
			tmp := l.yyCursor - 1
			probe := tmp
			if advanceIfIdentifierStart(l.buf, &probe, l.bufferEnd) {
				break
			}
			probe = tmp
			if advanceIfOperatorStart(l.buf, &probe, l.bufferEnd) {
				break
			}
			if l.lexUnknown(false) {
				l.yyCursor = tmp
				return
			}
			trivia.PushText(syntax.TriviaGarbageText, string(l.buf[triviaStart:l.yyCursor]))
			continue
		}
		// A token (or a boundary we do not consume) starts here.
		l.yyCursor--
		return
	}
}

// lexUnknown handles a byte no scanner claims. It returns true when the
// character run should become a token (the cursor then sits past the run),
// or false when it should be skipped as presumed whitespace.
func (l *Lexer) lexUnknown(emitDiagnosticsIfToken bool) bool {
	start := l.yyCursor - 1
	tmp := start
	if advanceIfIdentifierContinue(l.buf, &tmp, l.bufferEnd) {
		// A valid identifier continuation that is not a valid start:
		// recover by eating the rest of the run.
		if emitDiagnosticsIfToken {
			l.diagnose(start, DiagInvalidIdentifierStart)
		}
		for advanceIfIdentifierContinue(l.buf, &tmp, l.bufferEnd) {
		}
		l.yyCursor = tmp
		return true
	}

	tmp = start
	cp := validateUTF8CharAndAdvance(l.buf, &tmp, l.bufferEnd)
	if cp == invalidCodePoint {
		l.diagnose(start, DiagInvalidUTF8)
		l.yyCursor = tmp
		return false
	}
	if cp == 0x00A0 {
		// Skip runs of non-breaking whitespace.
		for l.buf[tmp] == 0xC2 && l.buf[tmp+1] == 0xA0 {
			tmp += 2
		}
		l.diagnose(start, DiagNonBreakingSpace)
		l.yyCursor = tmp
		return false
	}
	if cp == 0x201D {
		if emitDiagnosticsIfToken {
			l.diagnose(start, DiagConfusableCharacter, string(cp), `"`, `"`)
		}
		l.yyCursor = tmp
		return true
	}

	if expected := confusableToASCII(cp); expected != 0 {
		l.diagnose(start, DiagConfusableCharacter, string(cp), string(rune(expected)), string(rune(expected)))
	} else {
		l.diagnose(start, DiagInvalidCharacter)
	}
	l.yyCursor = tmp
	return false
}

// skipToEndOfLine advances to the current line's terminator and returns
// whether one was found before the buffer end. When eatNewline is set the
// terminator is consumed and the next token is marked at-start-of-line.
func (l *Lexer) skipToEndOfLine(eatNewline bool) bool {
	for {
		switch l.buf[l.yyCursor] {
		case '\n', '\r':
			if eatNewline {
				if l.buf[l.yyCursor] == '\r' && l.buf[l.yyCursor+1] == '\n' {
					l.yyCursor++
				}
				l.yyCursor++
				l.incLineNumber(1)
				l.nextToken.AtStartOfLine = true
			}
			return true
		case 0:
			switch l.classifyNull(l.yyCursor) {
			case nullEmbedded:
				l.diagnose(l.yyCursor, DiagEmbeddedNull)
			case nullBufferEnd:
				return false
			case nullCodeCompletion:
			}
		}
		if l.yyCursor >= l.artificialEnd {
			return false
		}
		l.yyCursor++
	}
}

// skipSlashStarComment consumes a block comment up to and including the
// matching terminator. Block comments do not nest. An unterminated comment
// is diagnosed and consumed to the buffer end.
func (l *Lexer) skipSlashStarComment() {
	commentStart := l.yyCursor - 1
	l.yyCursor++ // past the '*'
	multiline := false
	for l.yyCursor < l.artificialEnd {
		c := l.buf[l.yyCursor]
		if c == '*' && l.buf[l.yyCursor+1] == '/' {
			l.yyCursor += 2
			if multiline {
				l.nextToken.AtStartOfLine = true
			}
			return
		}
		switch c {
		case '\n':
			multiline = true
			l.incLineNumber(1)
		case '\r':
			multiline = true
			l.incLineNumber(1)
			if l.buf[l.yyCursor+1] == '\n' {
				l.yyCursor++
			}
		case 0:
			if l.classifyNull(l.yyCursor) == nullEmbedded {
				l.diagnose(l.yyCursor, DiagEmbeddedNull)
			}
		}
		l.yyCursor++
	}
	l.diagnose(commentStart, DiagUnterminatedBlockComment)
	if multiline {
		l.nextToken.AtStartOfLine = true
	}
}

// skipHashbang consumes a '#!' line. Only valid at the content start.
func (l *Lexer) skipHashbang(eatNewline bool) {
	l.skipToEndOfLine(eatNewline)
}
