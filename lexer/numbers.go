package lexer

// Numeric literal scanners. Integers parse strictly into int64 and roll
// over to a double on overflow; a magnitude equal to -(min int64) after a
// unary minus is flagged so the parser can fold the sign back into an
// integer literal.

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/phplex/phplex/syntax"
)

// maxInt64DigitCount is the decimal digit count below which an int64 parse
// cannot overflow.
const maxInt64DigitCount = 19

// lexNumber dispatches on the literal's shape. The cursor sits at the
// first digit.
func (l *Lexer) lexNumber(tokenStart int) {
	if l.buf[l.yyCursor] == '0' {
		switch l.buf[l.yyCursor+1] {
		case 'x', 'X':
			if isHexDigit(l.buf[l.yyCursor+2]) {
				l.yyCursor += 2
				l.scanDigits(isHexDigit)
				l.lexHexNumber(tokenStart)
				return
			}
		case 'b', 'B':
			if l.buf[l.yyCursor+2] == '0' || l.buf[l.yyCursor+2] == '1' {
				l.yyCursor += 2
				l.scanDigits(func(c byte) bool { return c == '0' || c == '1' })
				l.lexBinaryNumber(tokenStart)
				return
			}
		}
	}

	l.scanDigits(isDigit)

	isFloat := false
	if l.buf[l.yyCursor] == '.' && isDigit(l.buf[l.yyCursor+1]) {
		isFloat = true
		l.yyCursor++
		l.scanDigits(isDigit)
	}
	if l.buf[l.yyCursor] == 'e' || l.buf[l.yyCursor] == 'E' {
		probe := l.yyCursor + 1
		if l.buf[probe] == '+' || l.buf[probe] == '-' {
			probe++
		}
		if isDigit(l.buf[probe]) {
			isFloat = true
			l.yyCursor = probe
			l.scanDigits(isDigit)
		}
	}

	if isFloat {
		l.lexDoubleNumber(tokenStart)
		return
	}
	l.lexLongNumber(tokenStart)
}

// lexFloatStartingWithDot scans a float of the form .5 or .5e3. The cursor
// sits at the dot.
func (l *Lexer) lexFloatStartingWithDot(tokenStart int) {
	l.yyCursor++ // '.'
	l.scanDigits(isDigit)
	if l.buf[l.yyCursor] == 'e' || l.buf[l.yyCursor] == 'E' {
		probe := l.yyCursor + 1
		if l.buf[probe] == '+' || l.buf[probe] == '-' {
			probe++
		}
		if isDigit(l.buf[probe]) {
			l.yyCursor = probe
			l.scanDigits(isDigit)
		}
	}
	l.lexDoubleNumber(tokenStart)
}

// scanDigits consumes digits matched by pred, allowing single underscore
// separators between digits.
func (l *Lexer) scanDigits(pred func(byte) bool) {
	for {
		c := l.buf[l.yyCursor]
		if pred(c) {
			l.yyCursor++
			continue
		}
		if c == '_' && pred(l.buf[l.yyCursor+1]) {
			l.yyCursor += 2
			continue
		}
		return
	}
}

// stripUnderscores removes numeric separators from the literal text.
func stripUnderscores(text []byte) string {
	for i := 0; i < len(text); i++ {
		if text[i] == '_' {
			out := make([]byte, 0, len(text)-1)
			for _, c := range text {
				if c != '_' {
					out = append(out, c)
				}
			}
			return string(out)
		}
	}
	return string(text)
}

// invalidNumericLiteral applies the invalid-literal contract: an Error
// token in parse mode, otherwise the literal token with the
// invalid-lex-value flag and no semantic value.
func (l *Lexer) invalidNumericLiteral(kind syntax.TokenKind, tokenStart int) {
	l.notifyLexicalException("Invalid numeric literal", 0)
	l.diagnose(tokenStart, DiagInvalidNumericLiteral)
	if l.parseMode {
		l.formErrorToken(tokenStart)
		return
	}
	l.formToken(kind, tokenStart)
	l.nextToken.InvalidLexValue = true
}

func isRangeError(err error) bool {
	var numErr *strconv.NumError
	return errors.As(err, &numErr) && numErr.Err == strconv.ErrRange
}

// lexLongNumber forms a decimal or octal integer literal from
// [tokenStart, cursor).
func (l *Lexer) lexLongNumber(tokenStart int) {
	text := stripUnderscores(l.buf[tokenStart:l.yyCursor])

	base := 10
	if text[0] == '0' && len(text) > 1 {
		base = 8
	}

	if len(text) < maxInt64DigitCount {
		value, err := strconv.ParseInt(text, base, 64)
		if err != nil {
			// 019 is not valid octal; the scan does not reject it for us.
			l.invalidNumericLiteral(syntax.IntegerLiteral, tokenStart)
			return
		}
		l.formToken(syntax.IntegerLiteral, tokenStart)
		l.nextToken.Value = syntax.IntValue(value)
		return
	}

	digits := text
	if base == 8 {
		for len(digits) > 1 && digits[0] == '0' {
			digits = digits[1:]
		}
	}
	value, err := strconv.ParseInt(digits, base, 64)
	if err == nil {
		l.formToken(syntax.IntegerLiteral, tokenStart)
		l.nextToken.Value = syntax.IntValue(value)
		return
	}
	if !isRangeError(err) {
		l.invalidNumericLiteral(syntax.IntegerLiteral, tokenStart)
		return
	}

	// Overflow: the literal becomes a double. -9223372036854775808 is kept
	// correctable so the parser can fold the minus into a plain integer.
	needCorrectOverflow := false
	if l.nextToken.Kind == syntax.Minus {
		if base == 8 {
			needCorrectOverflow = digits == strconv.FormatUint(1<<63, 8)
		} else {
			needCorrectOverflow = digits == "9223372036854775808"
		}
	}

	var dvalue float64
	if base == 8 {
		dvalue = baseDigitsToDouble(digits, 8)
	} else {
		dvalue, err = strconv.ParseFloat(digits, 64)
		if err != nil && !isRangeError(err) {
			l.invalidNumericLiteral(syntax.DoubleLiteral, tokenStart)
			return
		}
	}
	l.formToken(syntax.DoubleLiteral, tokenStart)
	l.nextToken.Value = syntax.DoubleValue(dvalue)
	l.nextToken.CorrectOverflow = needCorrectOverflow
}

// lexHexNumber forms an integer or double from a 0x literal.
func (l *Lexer) lexHexNumber(tokenStart int) {
	text := stripUnderscores(l.buf[tokenStart:l.yyCursor])
	digits := text[2:] // past "0x"
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
	}
	if digits == "0" {
		l.formToken(syntax.IntegerLiteral, tokenStart)
		l.nextToken.Value = syntax.IntValue(0)
		return
	}

	const maxWidth = 16
	if len(digits) < maxWidth || (len(digits) == maxWidth && digits[0] <= '7') {
		value, err := strconv.ParseInt(digits, 16, 64)
		if err != nil {
			l.invalidNumericLiteral(syntax.IntegerLiteral, tokenStart)
			return
		}
		l.formToken(syntax.IntegerLiteral, tokenStart)
		l.nextToken.Value = syntax.IntValue(value)
		return
	}

	needCorrectOverflow := l.nextToken.Kind == syntax.Minus &&
		lowercased(digits) == "8000000000000000"
	l.formToken(syntax.DoubleLiteral, tokenStart)
	l.nextToken.Value = syntax.DoubleValue(baseDigitsToDouble(digits, 16))
	l.nextToken.CorrectOverflow = needCorrectOverflow
}

// lexBinaryNumber forms an integer or double from a 0b literal.
func (l *Lexer) lexBinaryNumber(tokenStart int) {
	text := stripUnderscores(l.buf[tokenStart:l.yyCursor])
	digits := text[2:] // past "0b"
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
	}

	if len(digits) < 64 {
		value, err := strconv.ParseInt(digits, 2, 64)
		if err != nil {
			l.invalidNumericLiteral(syntax.IntegerLiteral, tokenStart)
			return
		}
		l.formToken(syntax.IntegerLiteral, tokenStart)
		l.nextToken.Value = syntax.IntValue(value)
		return
	}

	needCorrectOverflow := l.nextToken.Kind == syntax.Minus &&
		digits == "1"+strings.Repeat("0", 63)
	l.formToken(syntax.DoubleLiteral, tokenStart)
	l.nextToken.Value = syntax.DoubleValue(baseDigitsToDouble(digits, 2))
	l.nextToken.CorrectOverflow = needCorrectOverflow
}

// lexDoubleNumber forms a double literal with C strtod semantics;
// overflow to an infinity is allowed.
func (l *Lexer) lexDoubleNumber(tokenStart int) {
	text := stripUnderscores(l.buf[tokenStart:l.yyCursor])
	value, err := strconv.ParseFloat(text, 64)
	if err != nil && !isRangeError(err) {
		l.invalidNumericLiteral(syntax.DoubleLiteral, tokenStart)
		return
	}
	l.formToken(syntax.DoubleLiteral, tokenStart)
	l.nextToken.Value = syntax.DoubleValue(value)
}

// setOffsetNumberValue assigns the value of a numeric string offset. The
// raw text survives in the span; an offset that does not fit an int64 keeps
// its text as a string value and sets the invalid-lex-value flag.
func (l *Lexer) setOffsetNumberValue(tokenStart int) {
	text := string(l.buf[tokenStart:l.yyCursor])
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		l.nextToken.Value = syntax.StringValue(text)
		l.nextToken.InvalidLexValue = true
		return
	}
	l.nextToken.Value = syntax.IntValue(value)
}

// baseDigitsToDouble accumulates digits in the given base into a float64,
// saturating at +Inf like C's strtod family.
func baseDigitsToDouble(digits string, base int) float64 {
	value := 0.0
	for i := 0; i < len(digits); i++ {
		value = value*float64(base) + float64(hexDigitValue(digits[i]))
		if math.IsInf(value, 1) {
			return value
		}
	}
	return value
}

func hexDigitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return 0
	}
}

// lowercased folds ASCII hex digits for the overflow comparison.
func lowercased(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'F' {
			out[i] = c + 'a' - 'A'
		}
	}
	return string(out)
}
