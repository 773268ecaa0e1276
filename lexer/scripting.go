package lexer

// Condition dispatch and the main scripting scanner.

import (
	"fmt"

	"github.com/phplex/phplex/syntax"
)

// inStringCondition reports whether the active condition scans the inside
// of a string literal, where every byte is token text and no trivia exists.
func (l *Lexer) inStringCondition() bool {
	switch l.condition {
	case condInDoubleQuotes, condInBackquote, condInHeredoc, condInNowdoc,
		condEndHeredoc, condVarOffset, condLookingForVarname:
		return true
	default:
		return false
	}
}

// tokenLex runs the scanner selected by the active condition. Exactly one
// token is formed per call.
func (l *Lexer) tokenLex() {
	switch l.condition {
	case condInScripting:
		l.lexScripting()
	case condLookingForProperty:
		l.lexLookingForProperty()
	case condLookingForVarname:
		l.lexLookingForVarname()
	case condVarOffset:
		l.lexVarOffset()
	case condInDoubleQuotes:
		l.lexStringCondition('"')
	case condInBackquote:
		l.lexStringCondition('`')
	case condInHeredoc:
		l.lexHeredocCondition()
	case condInNowdoc:
		l.lexNowdocBody()
	case condEndHeredoc:
		l.lexHereAndNowDocEnd()
	default:
		panic(fmt.Sprintf("lexer: unknown scan condition %v", l.condition))
	}
}

func (l *Lexer) lexScripting() {
	for {
		tokenStart := l.yyCursor
		if tokenStart >= l.artificialEnd {
			l.yyCursor = l.artificialEnd
			l.formToken(syntax.EndOfFile, l.artificialEnd)
			return
		}

		c := l.buf[l.yyCursor]
		l.yyCursor++

		switch {
		case c >= '0' && c <= '9':
			l.yyCursor--
			l.lexNumber(tokenStart)
			return

		case c == '$':
			if isLabelStart(l.buf[l.yyCursor]) {
				l.scanLabel()
				l.formVariableToken(tokenStart)
				return
			}
			if l.buf[l.yyCursor] == '{' {
				l.yyCursor++
				l.pushCondition(condLookingForVarname)
				l.formToken(syntax.DollarOpenCurlyBrace, tokenStart)
				return
			}
			l.formToken(syntax.Dollar, tokenStart)
			return

		case c == '\'':
			l.lexSingleQuoteString(tokenStart, 0)
			return

		case c == '"':
			l.lexDoubleQuoteOpen(tokenStart, 0)
			return

		case c == '`':
			l.condition = condInBackquote
			l.formToken(syntax.Backtick, tokenStart)
			return

		case isLabelStart(c):
			// A b/B prefix turns the following string literal binary.
			if c == 'b' || c == 'B' {
				switch {
				case l.buf[l.yyCursor] == '\'':
					l.yyCursor++
					l.flags.lexingBinaryString = true
					l.lexSingleQuoteString(tokenStart, 1)
					return
				case l.buf[l.yyCursor] == '"':
					l.yyCursor++
					l.flags.lexingBinaryString = true
					l.lexDoubleQuoteOpen(tokenStart, 1)
					return
				case l.buf[l.yyCursor] == '<' && l.buf[l.yyCursor+1] == '<' && l.buf[l.yyCursor+2] == '<':
					if l.tryLexHeredocHeader(tokenStart, 1) {
						return
					}
				}
			}
			l.yyCursor--
			l.lexIdentifier(tokenStart)
			return

		case c == '(':
			l.formToken(syntax.LeftParen, tokenStart)
			return
		case c == ')':
			l.formToken(syntax.RightParen, tokenStart)
			return
		case c == '[':
			l.formToken(syntax.LeftSquareBracket, tokenStart)
			return
		case c == ']':
			l.formToken(syntax.RightSquareBracket, tokenStart)
			return
		case c == ',':
			l.formToken(syntax.Comma, tokenStart)
			return
		case c == ';':
			l.formToken(syntax.Semicolon, tokenStart)
			return
		case c == '@':
			l.formToken(syntax.At, tokenStart)
			return
		case c == '\\':
			l.formToken(syntax.Backslash, tokenStart)
			return

		case c == '{':
			// Brace nesting is tracked on the condition stack so a closing
			// brace inside an interpolation returns to the right state.
			l.pushCondition(condInScripting)
			l.formToken(syntax.LeftBrace, tokenStart)
			return
		case c == '}':
			if len(l.conditionStack) > 0 {
				l.popCondition()
			}
			l.formToken(syntax.RightBrace, tokenStart)
			return

		case c == ':':
			if l.buf[l.yyCursor] == ':' {
				l.yyCursor++
				l.formToken(syntax.DoubleColon, tokenStart)
			} else {
				l.formToken(syntax.Colon, tokenStart)
			}
			return

		case c == '?':
			switch {
			case l.buf[l.yyCursor] == '>':
				l.yyCursor++
				// A single newline after a close tag belongs to it.
				if l.buf[l.yyCursor] == '\n' {
					l.yyCursor++
					l.incLineNumber(1)
				} else if l.buf[l.yyCursor] == '\r' {
					l.yyCursor++
					if l.buf[l.yyCursor] == '\n' {
						l.yyCursor++
					}
					l.incLineNumber(1)
				}
				l.formToken(syntax.CloseTag, tokenStart)
			case l.buf[l.yyCursor] == '?' && l.buf[l.yyCursor+1] == '=':
				l.yyCursor += 2
				l.formToken(syntax.CoalesceEquals, tokenStart)
			case l.buf[l.yyCursor] == '?':
				l.yyCursor++
				l.formToken(syntax.Coalesce, tokenStart)
			default:
				l.formToken(syntax.Question, tokenStart)
			}
			return

		case c == '<':
			l.lexLessThan(tokenStart)
			return

		case c == '>':
			switch {
			case l.buf[l.yyCursor] == '>' && l.buf[l.yyCursor+1] == '=':
				l.yyCursor += 2
				l.formToken(syntax.ShrEquals, tokenStart)
			case l.buf[l.yyCursor] == '>':
				l.yyCursor++
				l.formToken(syntax.Shr, tokenStart)
			case l.buf[l.yyCursor] == '=':
				l.yyCursor++
				l.formToken(syntax.GreaterEquals, tokenStart)
			default:
				l.formToken(syntax.Greater, tokenStart)
			}
			return

		case c == '=':
			switch {
			case l.buf[l.yyCursor] == '=' && l.buf[l.yyCursor+1] == '=':
				l.yyCursor += 2
				l.formToken(syntax.Identical, tokenStart)
			case l.buf[l.yyCursor] == '=':
				l.yyCursor++
				l.formToken(syntax.EqualsEquals, tokenStart)
			case l.buf[l.yyCursor] == '>':
				l.yyCursor++
				l.formToken(syntax.DoubleArrow, tokenStart)
			default:
				l.formToken(syntax.Equals, tokenStart)
			}
			return

		case c == '!':
			switch {
			case l.buf[l.yyCursor] == '=' && l.buf[l.yyCursor+1] == '=':
				l.yyCursor += 2
				l.formToken(syntax.NotIdentical, tokenStart)
			case l.buf[l.yyCursor] == '=':
				l.yyCursor++
				l.formToken(syntax.NotEquals, tokenStart)
			default:
				l.formToken(syntax.Exclaim, tokenStart)
			}
			return

		case c == '+':
			switch l.buf[l.yyCursor] {
			case '+':
				l.yyCursor++
				l.formToken(syntax.Inc, tokenStart)
			case '=':
				l.yyCursor++
				l.formToken(syntax.PlusEquals, tokenStart)
			default:
				l.formToken(syntax.Plus, tokenStart)
			}
			return

		case c == '-':
			switch l.buf[l.yyCursor] {
			case '>':
				l.yyCursor++
				l.pushCondition(condLookingForProperty)
				l.formToken(syntax.Arrow, tokenStart)
			case '-':
				l.yyCursor++
				l.formToken(syntax.Dec, tokenStart)
			case '=':
				l.yyCursor++
				l.formToken(syntax.MinusEquals, tokenStart)
			default:
				l.formToken(syntax.Minus, tokenStart)
			}
			return

		case c == '*':
			switch {
			case l.buf[l.yyCursor] == '*' && l.buf[l.yyCursor+1] == '=':
				l.yyCursor += 2
				l.formToken(syntax.PowEquals, tokenStart)
			case l.buf[l.yyCursor] == '*':
				l.yyCursor++
				l.formToken(syntax.Pow, tokenStart)
			case l.buf[l.yyCursor] == '=':
				l.yyCursor++
				l.formToken(syntax.MulEquals, tokenStart)
			default:
				l.formToken(syntax.Asterisk, tokenStart)
			}
			return

		case c == '/':
			switch l.buf[l.yyCursor] {
			case '/':
				// Reached only in keep-comments mode; trivia folds
				// comments away otherwise.
				isDoc := l.buf[l.yyCursor+1] == '/'
				l.skipToEndOfLine(false)
				if isDoc {
					l.formToken(syntax.DocComment, tokenStart)
				} else {
					l.formToken(syntax.LineComment, tokenStart)
				}
			case '*':
				isDoc := l.buf[l.yyCursor+1] == '*'
				l.skipSlashStarComment()
				if isDoc {
					l.formToken(syntax.DocComment, tokenStart)
				} else {
					l.formToken(syntax.BlockComment, tokenStart)
				}
			case '=':
				l.yyCursor++
				l.formToken(syntax.DivEquals, tokenStart)
			default:
				l.formToken(syntax.Slash, tokenStart)
			}
			return

		case c == '#':
			l.skipToEndOfLine(false)
			l.formToken(syntax.LineComment, tokenStart)
			return

		case c == '%':
			if l.buf[l.yyCursor] == '=' {
				l.yyCursor++
				l.formToken(syntax.ModEquals, tokenStart)
			} else {
				l.formToken(syntax.Percent, tokenStart)
			}
			return

		case c == '&':
			switch l.buf[l.yyCursor] {
			case '&':
				l.yyCursor++
				l.formToken(syntax.BooleanAnd, tokenStart)
			case '=':
				l.yyCursor++
				l.formToken(syntax.AmpEquals, tokenStart)
			default:
				l.formToken(syntax.Ampersand, tokenStart)
			}
			return

		case c == '|':
			switch l.buf[l.yyCursor] {
			case '|':
				l.yyCursor++
				l.formToken(syntax.BooleanOr, tokenStart)
			case '=':
				l.yyCursor++
				l.formToken(syntax.PipeEquals, tokenStart)
			default:
				l.formToken(syntax.Pipe, tokenStart)
			}
			return

		case c == '^':
			if l.buf[l.yyCursor] == '=' {
				l.yyCursor++
				l.formToken(syntax.CaretEquals, tokenStart)
			} else {
				l.formToken(syntax.Caret, tokenStart)
			}
			return

		case c == '~':
			l.formToken(syntax.Tilde, tokenStart)
			return

		case c == '.':
			switch {
			case isDigit(l.buf[l.yyCursor]):
				l.yyCursor--
				l.lexFloatStartingWithDot(tokenStart)
			case l.buf[l.yyCursor] == '=':
				l.yyCursor++
				l.formToken(syntax.DotEquals, tokenStart)
			case l.buf[l.yyCursor] == '.' && l.buf[l.yyCursor+1] == '.':
				l.yyCursor += 2
				l.formToken(syntax.Ellipsis, tokenStart)
			default:
				l.formToken(syntax.Dot, tokenStart)
			}
			return

		case c == 0:
			switch l.classifyNull(l.yyCursor - 1) {
			case nullCodeCompletion:
				l.formToken(syntax.CodeCompletion, tokenStart)
			case nullBufferEnd:
				l.yyCursor = l.artificialEnd
				l.formToken(syntax.EndOfFile, l.artificialEnd)
			case nullEmbedded:
				l.diagnose(tokenStart, DiagEmbeddedNull)
				l.leadingTrivia.PushText(syntax.TriviaGarbageText, string(l.buf[tokenStart:l.yyCursor]))
				continue
			}
			return

		default:
			probe := tokenStart
			if advanceIfIdentifierStart(l.buf, &probe, l.bufferEnd) {
				l.yyCursor--
				l.lexIdentifier(tokenStart)
				return
			}
			if l.lexUnknown(true) {
				l.formToken(syntax.Unknown, tokenStart)
				return
			}
			// Skipped as presumed whitespace; record it so no byte is
			// lost, then continue scanning.
			l.leadingTrivia.PushText(syntax.TriviaGarbageText, string(l.buf[tokenStart:l.yyCursor]))
			continue
		}
	}
}

// lexLessThan handles every token beginning with '<': open tags, heredoc
// headers, shifts, and comparisons.
func (l *Lexer) lexLessThan(tokenStart int) {
	switch {
	case l.buf[l.yyCursor] == '?':
		if l.buf[l.yyCursor+1] == '=' {
			l.yyCursor += 2
			l.formToken(syntax.OpenTagWithEcho, tokenStart)
			return
		}
		if isOpenTagWord(l.buf, l.yyCursor+1) {
			l.yyCursor += 4
			// One following whitespace character is part of the tag.
			switch l.buf[l.yyCursor] {
			case ' ', '\t':
				l.yyCursor++
			case '\n':
				l.yyCursor++
				l.incLineNumber(1)
			case '\r':
				l.yyCursor++
				if l.buf[l.yyCursor] == '\n' {
					l.yyCursor++
				}
				l.incLineNumber(1)
			}
			l.formToken(syntax.OpenTag, tokenStart)
			return
		}
		l.yyCursor++
		l.formToken(syntax.OpenTag, tokenStart)
		return

	case l.buf[l.yyCursor] == '<' && l.buf[l.yyCursor+1] == '<':
		if l.tryLexHeredocHeader(tokenStart, 0) {
			return
		}
		// Not a heredoc header; the three '<' lex as << followed by <.
		l.yyCursor++
		l.formToken(syntax.Shl, tokenStart)
		return

	case l.buf[l.yyCursor] == '<':
		if l.buf[l.yyCursor+1] == '=' {
			l.yyCursor += 2
			l.formToken(syntax.ShlEquals, tokenStart)
			return
		}
		l.yyCursor++
		l.formToken(syntax.Shl, tokenStart)
		return

	case l.buf[l.yyCursor] == '=':
		if l.buf[l.yyCursor+1] == '>' {
			l.yyCursor += 2
			l.formToken(syntax.Spaceship, tokenStart)
			return
		}
		l.yyCursor++
		l.formToken(syntax.LessEquals, tokenStart)
		return

	case l.buf[l.yyCursor] == '>':
		l.yyCursor++
		l.formToken(syntax.NotEquals, tokenStart)
		return

	default:
		l.formToken(syntax.Less, tokenStart)
	}
}

// isOpenTagWord reports whether buf[at:] begins with "php" in any case
// followed by whitespace or the buffer end.
func isOpenTagWord(buf []byte, at int) bool {
	lower := func(c byte) byte {
		if c >= 'A' && c <= 'Z' {
			return c + 'a' - 'A'
		}
		return c
	}
	if lower(buf[at]) != 'p' || lower(buf[at+1]) != 'h' || lower(buf[at+2]) != 'p' {
		return false
	}
	switch buf[at+3] {
	case ' ', '\t', '\n', '\r', 0:
		return true
	default:
		return false
	}
}

// scanLabel consumes identifier-continuation bytes at the cursor.
func (l *Lexer) scanLabel() {
	for advanceIfIdentifierContinue(l.buf, &l.yyCursor, l.bufferEnd) {
	}
}

// lexIdentifier scans an identifier or keyword beginning at the cursor.
func (l *Lexer) lexIdentifier(tokenStart int) {
	if !advanceIfIdentifierStart(l.buf, &l.yyCursor, l.bufferEnd) {
		l.yyCursor++
		if l.lexUnknown(true) {
			l.formToken(syntax.Unknown, tokenStart)
			return
		}
		l.leadingTrivia.PushText(syntax.TriviaGarbageText, string(l.buf[tokenStart:l.yyCursor]))
		l.lexScripting()
		return
	}
	l.scanLabel()

	kind := syntax.KeywordKind(l.buf[tokenStart:l.yyCursor])
	if kind == syntax.Identifier {
		l.formIdentifierToken(tokenStart)
		return
	}
	l.formToken(kind, tokenStart)
}

// lexLookingForProperty scans the token after an object operator. Only a
// member name or another arrow is meaningful here; anything else returns
// to the enclosing condition and rescans.
func (l *Lexer) lexLookingForProperty() {
	tokenStart := l.yyCursor
	if tokenStart >= l.artificialEnd {
		l.popCondition()
		l.formToken(syntax.EndOfFile, l.artificialEnd)
		return
	}
	if l.buf[l.yyCursor] == '-' && l.buf[l.yyCursor+1] == '>' {
		l.yyCursor += 2
		l.formToken(syntax.Arrow, tokenStart)
		return
	}
	probe := l.yyCursor
	if advanceIfIdentifierStart(l.buf, &probe, l.bufferEnd) {
		for advanceIfIdentifierContinue(l.buf, &probe, l.bufferEnd) {
		}
		l.yyCursor = probe
		l.popCondition()
		// Member names are never keywords.
		l.formIdentifierToken(tokenStart)
		return
	}
	l.popCondition()
	l.tokenLex()
}

// lexLookingForVarname scans the name after a ${ opener. A plain name
// followed by } or [ is a string varname; anything else re-enters
// scripting so arbitrary expressions work.
func (l *Lexer) lexLookingForVarname() {
	tokenStart := l.yyCursor
	probe := l.yyCursor
	if advanceIfIdentifierStart(l.buf, &probe, l.bufferEnd) {
		for advanceIfIdentifierContinue(l.buf, &probe, l.bufferEnd) {
		}
		if l.buf[probe] == '}' || l.buf[probe] == '[' {
			l.yyCursor = probe
			l.popCondition()
			l.pushCondition(condInScripting)
			l.formStringVariableToken(tokenStart)
			return
		}
	}
	l.popCondition()
	l.pushCondition(condInScripting)
	l.tokenLex()
}

// lexVarOffset scans inside $name[...] in an interpolated string.
func (l *Lexer) lexVarOffset() {
	tokenStart := l.yyCursor
	if tokenStart >= l.artificialEnd {
		l.formToken(syntax.EndOfFile, l.artificialEnd)
		return
	}
	c := l.buf[l.yyCursor]
	switch {
	case c == ']':
		l.yyCursor++
		l.popCondition()
		l.formToken(syntax.RightSquareBracket, tokenStart)
	case c == '[':
		l.yyCursor++
		l.formToken(syntax.LeftSquareBracket, tokenStart)
	case isDigit(c):
		for isDigit(l.buf[l.yyCursor]) {
			l.yyCursor++
		}
		l.formToken(syntax.IntegerLiteral, tokenStart)
		l.setOffsetNumberValue(tokenStart)
	case c == '$' && isLabelStart(l.buf[l.yyCursor+1]):
		l.yyCursor++
		l.scanLabel()
		l.formVariableToken(tokenStart)
	case isLabelStart(c):
		l.scanLabel()
		l.formIdentifierToken(tokenStart)
	case c == '-':
		l.yyCursor++
		l.formToken(syntax.Minus, tokenStart)
	default:
		// Not part of an offset; return to the string scanner.
		l.popCondition()
		l.tokenLex()
	}
}

// lexStringCondition scans one token inside a double-quoted or backquoted
// string: the terminator, an interpolation anchor, or a body chunk.
func (l *Lexer) lexStringCondition(quote byte) {
	tokenStart := l.yyCursor
	if tokenStart >= l.artificialEnd {
		l.formToken(syntax.EndOfFile, l.artificialEnd)
		return
	}
	c := l.buf[l.yyCursor]
	switch {
	case c == quote:
		l.yyCursor++
		l.condition = condInScripting
		if quote == '"' {
			l.formToken(syntax.DoubleQuote, tokenStart)
		} else {
			l.formToken(syntax.Backtick, tokenStart)
		}
	case c == '$' && isLabelStart(l.buf[l.yyCursor+1]):
		l.yyCursor++
		l.scanLabel()
		l.formVariableToken(tokenStart)
		l.maybeEnterVarAccess()
	case c == '$' && l.buf[l.yyCursor+1] == '{':
		l.yyCursor += 2
		l.pushCondition(condLookingForVarname)
		l.formToken(syntax.DollarOpenCurlyBrace, tokenStart)
	case c == '{' && l.buf[l.yyCursor+1] == '$':
		l.yyCursor++
		l.pushCondition(condInScripting)
		l.formToken(syntax.CurlyOpen, tokenStart)
	default:
		l.lexEncapsedChunk(quote, tokenStart)
	}
}

// maybeEnterVarAccess enters the offset or property condition when a
// variable inside a string is immediately subscripted or dereferenced.
func (l *Lexer) maybeEnterVarAccess() {
	if l.buf[l.yyCursor] == '[' {
		l.pushCondition(condVarOffset)
		return
	}
	if l.buf[l.yyCursor] == '-' && l.buf[l.yyCursor+1] == '>' && isLabelStart(l.buf[l.yyCursor+2]) {
		l.pushCondition(condLookingForProperty)
	}
}

// lexHeredocCondition scans one token inside a heredoc body: an
// interpolation anchor or a body chunk.
func (l *Lexer) lexHeredocCondition() {
	tokenStart := l.yyCursor
	if tokenStart >= l.artificialEnd {
		l.formToken(syntax.EndOfFile, l.artificialEnd)
		return
	}
	c := l.buf[l.yyCursor]
	switch {
	case c == '$' && isLabelStart(l.buf[l.yyCursor+1]):
		l.yyCursor++
		l.scanLabel()
		l.formVariableToken(tokenStart)
		l.maybeEnterVarAccess()
	case c == '$' && l.buf[l.yyCursor+1] == '{':
		l.yyCursor += 2
		l.pushCondition(condLookingForVarname)
		l.formToken(syntax.DollarOpenCurlyBrace, tokenStart)
	case c == '{' && l.buf[l.yyCursor+1] == '$':
		l.yyCursor++
		l.pushCondition(condInScripting)
		l.formToken(syntax.CurlyOpen, tokenStart)
	default:
		l.lexHeredocBody()
	}
}
