package lexer

// String literal scanners and escape-sequence expansion.

import (
	"fmt"
	"strings"

	"github.com/phplex/phplex/syntax"
)

// lexSingleQuoteString scans a single-quoted string. Only \\ and \'
// collapse; every other byte is literal. The cursor sits just past the
// opening quote; bprefix is 1 for b'...' literals.
func (l *Lexer) lexSingleQuoteString(tokenStart, bprefix int) {
	for {
		if l.yyCursor >= l.artificialEnd {
			// Unclosed string: recover with the partial content.
			l.yyCursor = l.artificialEnd
			body := l.buf[tokenStart:l.yyCursor]
			l.incLineNumber(countNewlines(body))
			l.flags.lexingBinaryString = false
			l.formToken(syntax.EncapsedAndWhitespace, tokenStart)
			l.nextToken.Value = syntax.StringValue(string(body))
			return
		}
		c := l.buf[l.yyCursor]
		l.yyCursor++
		if c == '\'' {
			break
		}
		if c == '\\' && l.yyCursor < l.artificialEnd {
			l.yyCursor++
		}
	}

	body := l.buf[tokenStart+bprefix+1 : l.yyCursor-1]
	l.incLineNumber(countNewlines(body))
	l.flags.lexingBinaryString = false
	l.formToken(syntax.StringLiteral, tokenStart)
	l.nextToken.Value = syntax.StringValue(convertSingleQuoteEscapes(body))
}

// lexDoubleQuoteOpen handles a double quote in scripting. A literal with
// no interpolation anchor is consumed whole; otherwise only the quote is
// emitted and the string condition takes over.
func (l *Lexer) lexDoubleQuoteOpen(tokenStart, bprefix int) {
	probe := l.yyCursor
	closed := false
	interpolated := false
scan:
	for probe < l.artificialEnd {
		c := l.buf[probe]
		probe++
		switch c {
		case '"':
			closed = true
			break scan
		case '$':
			if isLabelStart(l.buf[probe]) || l.buf[probe] == '{' {
				interpolated = true
				break scan
			}
		case '{':
			if l.buf[probe] == '$' {
				interpolated = true
				break scan
			}
		case '\\':
			if probe < l.artificialEnd {
				probe++
			}
		}
	}

	if interpolated {
		l.condition = condInDoubleQuotes
		l.formToken(syntax.DoubleQuote, tokenStart)
		return
	}
	if !closed {
		// Unterminated; recover with everything scanned.
		l.yyCursor = l.artificialEnd
		body := l.buf[tokenStart:l.yyCursor]
		l.incLineNumber(countNewlines(body))
		l.flags.lexingBinaryString = false
		l.formToken(syntax.EncapsedAndWhitespace, tokenStart)
		l.nextToken.Value = syntax.StringValue(string(body))
		return
	}

	l.yyCursor = probe
	body := l.buf[tokenStart+bprefix+1 : probe-1]
	l.incLineNumber(countNewlines(body))
	l.flags.lexingBinaryString = false
	value, err := convertDoubleQuoteEscapes(string(body), '"')
	if err != nil {
		l.notifyLexicalException(err.Error(), 0)
		l.diagnose(tokenStart, DiagInvalidEscapeSequence)
		if l.parseMode {
			l.formErrorToken(tokenStart)
			return
		}
		value = string(body)
	}
	l.formToken(syntax.StringLiteral, tokenStart)
	l.nextToken.Value = syntax.StringValue(value)
}

// lexEncapsedChunk scans one body chunk of an interpolated double-quoted
// or backquoted string, stopping before the terminator or the next
// interpolation anchor.
func (l *Lexer) lexEncapsedChunk(quote byte, tokenStart int) {
	for l.yyCursor < l.artificialEnd {
		c := l.buf[l.yyCursor]
		l.yyCursor++
		switch c {
		case quote:
			l.yyCursor--
			goto done
		case '$':
			if isLabelStart(l.buf[l.yyCursor]) || l.buf[l.yyCursor] == '{' {
				l.yyCursor--
				goto done
			}
		case '{':
			if l.buf[l.yyCursor] == '$' {
				l.yyCursor--
				goto done
			}
		case '\\':
			if l.yyCursor < l.artificialEnd {
				l.yyCursor++
			}
		}
	}
done:
	body := l.buf[tokenStart:l.yyCursor]
	l.incLineNumber(countNewlines(body))
	value, err := convertDoubleQuoteEscapes(string(body), quote)
	if err != nil {
		l.notifyLexicalException(err.Error(), 0)
		l.diagnose(tokenStart, DiagInvalidEscapeSequence)
		if l.parseMode {
			l.formErrorToken(tokenStart)
			return
		}
		value = string(body)
	}
	l.formToken(syntax.EncapsedAndWhitespace, tokenStart)
	l.nextToken.Value = syntax.StringValue(value)
}

// convertSingleQuoteEscapes collapses \\ and \' and leaves every other
// backslash untouched.
func convertSingleQuoteEscapes(body []byte) string {
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == '\'') {
			i++
			c = body[i]
		}
		b.WriteByte(c)
	}
	return b.String()
}

// convertDoubleQuoteEscapes expands the escape sequences valid in
// double-quoted strings, backquoted strings (quote '`') and heredoc bodies
// (quote 0). Unknown escapes are preserved verbatim.
func convertDoubleQuoteEscapes(body string, quote byte) (string, error) {
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := body[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case 'f':
			b.WriteByte('\f')
		case 'e':
			b.WriteByte(0x1B)
		case '\\':
			b.WriteByte('\\')
		case '$':
			b.WriteByte('$')
		case 'x':
			if i+1 < len(body) && isHexDigit(body[i+1]) {
				value := hexDigitValue(body[i+1])
				i++
				if i+1 < len(body) && isHexDigit(body[i+1]) {
					value = value<<4 | hexDigitValue(body[i+1])
					i++
				}
				b.WriteByte(byte(value))
			} else {
				b.WriteString(`\x`)
			}
		case 'u':
			if i+1 < len(body) && body[i+1] == '{' {
				end := strings.IndexByte(body[i+2:], '}')
				if end < 0 {
					return b.String(), fmt.Errorf("Invalid UTF-8 codepoint escape sequence")
				}
				digits := body[i+2 : i+2+end]
				cp := rune(0)
				if len(digits) == 0 {
					return b.String(), fmt.Errorf("Invalid UTF-8 codepoint escape sequence")
				}
				for j := 0; j < len(digits); j++ {
					if !isHexDigit(digits[j]) {
						return b.String(), fmt.Errorf("Invalid UTF-8 codepoint escape sequence")
					}
					cp = cp<<4 | rune(hexDigitValue(digits[j]))
					if cp > 0x10FFFF {
						return b.String(), fmt.Errorf("Invalid UTF-8 codepoint escape sequence: Codepoint too large")
					}
				}
				b.Write(encodeUTF8(cp, nil))
				i += 2 + end
			} else {
				b.WriteString(`\u`)
			}
		case '0', '1', '2', '3', '4', '5', '6', '7':
			value := int(e - '0')
			for n := 0; n < 2 && i+1 < len(body) && body[i+1] >= '0' && body[i+1] <= '7'; n++ {
				i++
				value = value<<3 | int(body[i]-'0')
			}
			b.WriteByte(byte(value & 0xFF))
		default:
			if quote != 0 && e == quote {
				b.WriteByte(quote)
			} else {
				b.WriteByte('\\')
				b.WriteByte(e)
			}
		}
	}
	return b.String(), nil
}
