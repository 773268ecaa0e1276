package lexer

// Heredoc and nowdoc scanning.
//
// Heredocs lex in two phases. When a header is seen, a speculative
// scan-ahead lexes the whole body to discover the closing label's
// indentation, then the state is rewound and the body is lexed for real.
// In parse mode, or with heredoc indentation checking enabled, that
// indentation is stripped from every body line. Both passes consume the
// same bytes for everything but the indentation bookkeeping; the body
// scanner is shared and parameterized only by the scan-ahead flag.

import (
	"fmt"
	"strings"

	"github.com/phplex/phplex/syntax"
)

const (
	heredocUsingSpaces = 1 << iota
	heredocUsingTabs
)

// isFoundHeredocEndMarker reports whether the bytes at the cursor spell
// the label. The label must fit inside the remaining range; it may end
// exactly at the artificial end, in which case the byte after it is read
// through the NUL-terminated buffer.
func (l *Lexer) isFoundHeredocEndMarker(label *HeredocLabel) bool {
	n := len(label.Name)
	if !isLabelStart(l.buf[l.yyCursor]) || n > l.artificialEnd-l.yyCursor {
		return false
	}
	return string(l.buf[l.yyCursor:l.yyCursor+n]) == label.Name
}

// tryLexHeredocHeader matches b?<<<[ \t]*("label"|'label'|label)\n at the
// token start and, on a match, lexes the header. It returns false without
// moving the cursor when the bytes do not form a header.
func (l *Lexer) tryLexHeredocHeader(tokenStart, bprefix int) bool {
	probe := tokenStart + bprefix + 3
	for l.buf[probe] == ' ' || l.buf[probe] == '\t' {
		probe++
	}
	quote := byte(0)
	if l.buf[probe] == '\'' || l.buf[probe] == '"' {
		quote = l.buf[probe]
		probe++
	}
	if !isLabelStart(l.buf[probe]) {
		return false
	}
	labelStart := probe
	for isLabelContinue(l.buf[probe]) {
		probe++
	}
	labelName := string(l.buf[labelStart:probe])
	if quote != 0 {
		if l.buf[probe] != quote {
			return false
		}
		probe++
	}
	switch l.buf[probe] {
	case '\n':
		probe++
	case '\r':
		probe++
		if l.buf[probe] == '\n' {
			probe++
		}
	default:
		return false
	}

	if bprefix == 1 {
		l.flags.lexingBinaryString = true
	}
	l.yyCursor = probe
	l.lexHeredocHeader(tokenStart, labelName, quote == '\'')
	return true
}

// lexHeredocHeader forms the StartHeredoc token. For heredocs it runs the
// scan-ahead phase to record the closing indentation on the label record.
// The cursor sits just past the header newline.
func (l *Lexer) lexHeredocHeader(tokenStart int, labelName string, isNowdoc bool) {
	// The header includes its newline.
	l.incLineNumber(1)
	if isNowdoc {
		l.condition = condInNowdoc
	} else {
		l.condition = condInHeredoc
	}

	label := &HeredocLabel{Name: labelName}
	savedCursor := l.yyCursor
	l.pushHeredocLabel(label)

	spacing := 0
	indentation := 0
	for l.yyCursor < l.artificialEnd && isHorizontalWhitespace(l.buf[l.yyCursor]) {
		if l.buf[l.yyCursor] == '\t' {
			spacing |= heredocUsingTabs
		} else {
			spacing |= heredocUsingSpaces
		}
		l.yyCursor++
		indentation++
	}

	// An empty heredoc whose end marker never comes: leave the body scanner
	// to produce the recovery token.
	if l.yyCursor == l.artificialEnd {
		l.yyCursor = savedCursor
		l.formToken(syntax.StartHeredoc, tokenStart)
		l.flags.reserveHeredocSpaces = true
		return
	}

	// Closing label directly on the next line: empty heredoc.
	if l.isFoundHeredocEndMarker(label) && !isLabelContinue(l.buf[l.yyCursor+len(labelName)]) {
		if spacing == heredocUsingSpaces|heredocUsingTabs {
			l.notifyLexicalException("Invalid indentation - tabs and spaces cannot be mixed", 0)
			l.diagnose(savedCursor, DiagHeredocMixedIndentation)
		}
		l.yyCursor = savedCursor
		label.Indentation = indentation
		label.IndentationUsesSpaces = spacing == heredocUsingSpaces
		l.condition = condEndHeredoc
		l.flags.reserveHeredocSpaces = true
		l.formToken(syntax.StartHeredoc, tokenStart)
		return
	}

	l.yyCursor = savedCursor

	// Scan ahead to find the closing indentation. Heredocs may nest during
	// lexing ({$x = <<<X ... X}), so a depth counter pairs the markers; only
	// the outermost header scans ahead.
	if !isNowdoc && !l.flags.heredocScanAhead {
		l.withScanAhead(func() {
			l.flags.heredocScanAhead = true
			l.flags.heredocIndentationUsesSpaces = false
			l.heredocIndentation = 0
			l.eventHandler = nil

			depth := 1
			firstKind := syntax.Unknown
			firstSeen := false
			for depth > 0 {
				l.lexImpl()
				if l.flags.lexExceptionOccurred {
					l.ClearExceptionFlag()
					break
				}
				kind := l.nextToken.Kind
				if !firstSeen {
					firstKind = kind
					firstSeen = true
				}
				switch kind {
				case syntax.StartHeredoc:
					depth++
				case syntax.EndHeredoc:
					depth--
				case syntax.EndOfFile:
					depth = 0
				}
			}

			if firstSeen && l.heredocIndentation > 0 &&
				(firstKind == syntax.Variable || firstKind == syntax.DollarOpenCurlyBrace || firstKind == syntax.CurlyOpen) {
				l.notifyLexicalExceptionf(0,
					"Invalid body indentation level (expecting an indentation level of at least %d)",
					l.heredocIndentation)
			}

			// The label record is shared with the saved stack frame, so
			// the discovered indentation survives the restore.
			label.Indentation = l.heredocIndentation
			label.IndentationUsesSpaces = l.flags.heredocIndentationUsesSpaces
		})
		l.flags.heredocScanAhead = false
		l.flags.incrementLineNumber = false
	}

	l.formToken(syntax.StartHeredoc, tokenStart)
	l.flags.reserveHeredocSpaces = true
}

// lexHeredocBody scans one heredoc body chunk up to the end marker, the
// artificial end, or an interpolation anchor.
func (l *Lexer) lexHeredocBody() {
	tokenStart := l.yyCursor
	label := l.topHeredocLabel()
	newlineLength := 0
	indentation := 0
	spacing := 0

	if l.yyCursor > l.artificialEnd {
		l.yyCursor = l.artificialEnd
		l.formToken(syntax.EndOfFile, l.artificialEnd)
		return
	}

scan:
	for l.yyCursor < l.artificialEnd {
		c := l.buf[l.yyCursor]
		l.yyCursor++
		switch c {
		case '\r', '\n':
			if c == '\r' && l.buf[l.yyCursor] == '\n' {
				l.yyCursor++
			}
			indentation, spacing = 0, 0
			for l.yyCursor < l.artificialEnd && isHorizontalWhitespace(l.buf[l.yyCursor]) {
				if l.buf[l.yyCursor] == ' ' {
					spacing |= heredocUsingSpaces
				} else {
					spacing |= heredocUsingTabs
				}
				l.yyCursor++
				indentation++
			}
			if l.yyCursor == l.artificialEnd {
				// Unclosed heredoc: recover with the partial body.
				body := l.buf[tokenStart:l.yyCursor]
				l.handleNewlines(body)
				l.formToken(syntax.EncapsedAndWhitespace, tokenStart)
				l.nextToken.Value = syntax.StringValue(string(body))
				return
			}
			if !l.isFoundHeredocEndMarker(label) {
				continue
			}
			if isLabelContinue(l.buf[l.yyCursor+len(label.Name)]) {
				// A line that merely begins with the label text.
				continue
			}
			if spacing == heredocUsingSpaces|heredocUsingTabs {
				l.notifyLexicalException("Invalid indentation - tabs and spaces cannot be mixed", 0)
				l.diagnose(l.yyCursor-indentation, DiagHeredocMixedIndentation)
			}
			if l.buf[l.yyCursor-indentation-2] == '\r' && l.buf[l.yyCursor-indentation-1] == '\n' {
				newlineLength = 2
			} else {
				newlineLength = 1
			}
			// The newline before the label counts against the next token.
			l.flags.incrementLineNumber = true
			if l.flags.heredocScanAhead {
				// Scan-ahead only records the indentation.
				l.heredocIndentation = indentation
				l.flags.heredocIndentationUsesSpaces = spacing == heredocUsingSpaces
			} else {
				l.yyCursor -= indentation
			}
			l.flags.reserveHeredocSpaces = true
			l.condition = condEndHeredoc
			break scan
		case '$':
			if isLabelStart(l.buf[l.yyCursor]) || l.buf[l.yyCursor] == '{' {
				l.yyCursor--
				break scan
			}
		case '{':
			if l.buf[l.yyCursor] == '$' {
				l.yyCursor--
				break scan
			}
		case '\\':
			if l.yyCursor < l.artificialEnd && l.buf[l.yyCursor] != '\n' && l.buf[l.yyCursor] != '\r' {
				l.yyCursor++
			}
		}
	}

	raw := l.buf[tokenStart:l.yyCursor]
	value := string(raw[:len(raw)-newlineLength])
	l.handleNewlines(raw[:len(raw)-newlineLength])

	if !l.flags.heredocScanAhead && !l.flags.lexExceptionOccurred &&
		(l.parseMode || l.flags.checkHeredocIndentation) {
		newlineAtStart := tokenStart > 0 &&
			(l.buf[tokenStart-1] == '\n' || l.buf[tokenStart-1] == '\r')
		stripped, err := stripMultilineIndentation(value, label.Indentation,
			label.IndentationUsesSpaces, newlineAtStart, newlineLength != 0)
		if err != nil {
			l.notifyLexicalException(err.Error(), 0)
			l.formErrorToken(tokenStart)
			return
		}
		converted, err := convertDoubleQuoteEscapes(stripped, 0)
		if err != nil {
			l.notifyLexicalException(err.Error(), 0)
			l.diagnose(tokenStart, DiagInvalidEscapeSequence)
			l.formToken(syntax.Error, tokenStart)
			return
		}
		value = converted
	}

	l.formToken(syntax.EncapsedAndWhitespace, tokenStart)
	l.nextToken.Value = syntax.StringValue(value)
}

// lexNowdocBody scans a nowdoc body in a single pass. Nowdocs never
// interpolate; only newline handling and indentation stripping apply.
func (l *Lexer) lexNowdocBody() {
	tokenStart := l.yyCursor
	if tokenStart >= l.artificialEnd {
		l.formToken(syntax.EndOfFile, l.artificialEnd)
		return
	}
	label := l.topHeredocLabel()
	newlineLength := 0
	indentation := 0
	spacing := 0

scan:
	for l.yyCursor < l.artificialEnd {
		c := l.buf[l.yyCursor]
		l.yyCursor++
		if c != '\r' && c != '\n' {
			continue
		}
		if c == '\r' && l.buf[l.yyCursor] == '\n' {
			l.yyCursor++
		}
		indentation, spacing = 0, 0
		for l.yyCursor < l.artificialEnd && isHorizontalWhitespace(l.buf[l.yyCursor]) {
			if l.buf[l.yyCursor] == '\t' {
				spacing |= heredocUsingTabs
			} else {
				spacing |= heredocUsingSpaces
			}
			l.yyCursor++
			indentation++
		}
		if l.yyCursor == l.artificialEnd {
			body := l.buf[tokenStart:l.yyCursor]
			l.handleNewlines(body)
			l.formToken(syntax.EncapsedAndWhitespace, tokenStart)
			l.nextToken.Value = syntax.StringValue(string(body))
			return
		}
		if !l.isFoundHeredocEndMarker(label) {
			continue
		}
		if isLabelContinue(l.buf[l.yyCursor+len(label.Name)]) {
			continue
		}
		if spacing == heredocUsingSpaces|heredocUsingTabs {
			l.notifyLexicalException("Invalid indentation - tabs and spaces cannot be mixed", 0)
			l.diagnose(l.yyCursor-indentation, DiagHeredocMixedIndentation)
		}
		if l.buf[l.yyCursor-indentation-2] == '\r' && l.buf[l.yyCursor-indentation-1] == '\n' {
			newlineLength = 2
		} else {
			newlineLength = 1
		}
		l.flags.incrementLineNumber = true
		l.flags.reserveHeredocSpaces = true
		l.yyCursor -= indentation
		label.Indentation = indentation
		label.IndentationUsesSpaces = spacing == heredocUsingSpaces
		l.condition = condEndHeredoc
		break scan
	}

	raw := l.buf[tokenStart:l.yyCursor]
	value := string(raw[:len(raw)-newlineLength])
	l.handleNewlines(raw[:len(raw)-newlineLength])

	if !l.flags.lexExceptionOccurred && spacing != 0 &&
		(l.parseMode || l.flags.checkHeredocIndentation) {
		newlineAtStart := tokenStart > 0 &&
			(l.buf[tokenStart-1] == '\n' || l.buf[tokenStart-1] == '\r')
		stripped, err := stripMultilineIndentation(value, indentation,
			spacing == heredocUsingSpaces, newlineAtStart, newlineLength != 0)
		if err != nil {
			l.notifyLexicalException(err.Error(), 0)
			l.formErrorToken(tokenStart)
			return
		}
		value = stripped
	}

	l.formToken(syntax.EncapsedAndWhitespace, tokenStart)
	l.nextToken.Value = syntax.StringValue(value)
}

// lexHereAndNowDocEnd emits the end marker. When the previous token was
// the header itself, the heredoc is empty and an empty body token comes
// first, without moving the cursor.
func (l *Lexer) lexHereAndNowDocEnd() {
	if l.nextToken.Kind == syntax.StartHeredoc {
		l.formToken(syntax.EncapsedAndWhitespace, l.yyText)
		l.nextToken.Value = syntax.StringValue("")
		l.flags.reserveHeredocSpaces = true
		return
	}
	label := l.popHeredocLabel()
	l.yyCursor = l.yyText + label.Indentation + len(label.Name)
	l.condition = condInScripting
	l.formToken(syntax.EndHeredoc, l.yyText)
}

// handleNewlines advances the line counter over the consumed body text.
func (l *Lexer) handleNewlines(text []byte) {
	if n := countNewlines(text); n > 0 {
		l.incLineNumber(n)
	}
}

// stripMultilineIndentation removes the closing label's indentation from
// every line of a heredoc or nowdoc body.
func stripMultilineIndentation(body string, indentation int, usingSpaces, newlineAtStart, newlineAtEnd bool) (string, error) {
	if indentation == 0 {
		return body, nil
	}
	indentChar := byte('\t')
	if usingSpaces {
		indentChar = ' '
	}

	var b strings.Builder
	b.Grow(len(body))
	atLineStart := newlineAtStart
	i := 0
	for i < len(body) {
		if !atLineStart {
			// Copy through the end of the current line untouched.
			for i < len(body) && body[i] != '\n' && body[i] != '\r' {
				b.WriteByte(body[i])
				i++
			}
			if i < len(body) {
				if body[i] == '\r' && i+1 < len(body) && body[i+1] == '\n' {
					b.WriteString("\r\n")
					i += 2
				} else {
					b.WriteByte(body[i])
					i++
				}
			}
			atLineStart = true
			continue
		}

		// Measure the line's leading whitespace.
		skipped := 0
		for skipped < indentation && i < len(body) {
			c := body[i]
			if c == '\n' || c == '\r' {
				break
			}
			if c != ' ' && c != '\t' {
				return "", fmt.Errorf(
					"Invalid body indentation level (expecting an indentation level of at least %d)", indentation)
			}
			if c != indentChar {
				return "", fmt.Errorf("Invalid indentation - tabs and spaces cannot be mixed")
			}
			skipped++
			i++
		}
		if skipped < indentation && i < len(body) && body[i] != '\n' && body[i] != '\r' {
			return "", fmt.Errorf(
				"Invalid body indentation level (expecting an indentation level of at least %d)", indentation)
		}
		atLineStart = false
	}
	_ = newlineAtEnd
	return b.String(), nil
}
