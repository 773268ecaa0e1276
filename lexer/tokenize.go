package lexer

// Whole-buffer entry points and location queries.

import "github.com/phplex/phplex/syntax"

// Tokenize lexes the buffer and streams every token, including the final
// end-of-file token, to fn. Lexing stops early when fn returns false.
func Tokenize(mgr *SourceManager, id BufferID, fn func(*Lexer, syntax.Token) bool, opts ...Option) {
	l := New(mgr, id, opts...)
	var tok syntax.Token
	for {
		l.Lex(&tok)
		if !fn(l, tok) {
			return
		}
		if tok.Kind == syntax.EndOfFile {
			return
		}
	}
}

// TokenizeAll lexes the buffer and returns all tokens with the trailing
// end-of-file sentinel stripped.
func TokenizeAll(mgr *SourceManager, id BufferID, opts ...Option) []syntax.Token {
	var tokens []syntax.Token
	Tokenize(mgr, id, func(_ *Lexer, tok syntax.Token) bool {
		tokens = append(tokens, tok)
		return true
	}, opts...)
	if n := len(tokens); n > 0 && tokens[n-1].Kind == syntax.EndOfFile {
		tokens = tokens[:n-1]
	}
	return tokens
}

// findStartOfLine returns the offset of the first byte of the line
// containing offset.
func findStartOfLine(buf []byte, offset int) int {
	for offset > 0 {
		if buf[offset-1] == '\n' || buf[offset-1] == '\r' {
			break
		}
		offset--
	}
	return offset
}

// TokenAtLocation lexes forward from the start of loc's line until the
// token whose span covers loc is found. Comments lex as tokens so a
// location inside one resolves to the comment itself. The zero token is
// returned for a location in whitespace or an invalid one.
func TokenAtLocation(mgr *SourceManager, loc SourceLoc) syntax.Token {
	id := mgr.BufferContainingLocation(loc)
	if id == InvalidBufferID {
		return syntax.Token{}
	}
	offset := mgr.OffsetOfLocation(loc, id)
	buf := mgr.BufferData(id)
	lineStart := findStartOfLine(buf, offset)

	l := New(mgr, id, WithKeepComments(), WithRange(lineStart, len(buf)-1))
	var tok syntax.Token
	for {
		l.Lex(&tok)
		if tok.Span.Start > offset {
			// Skipped past loc entirely: it points into whitespace.
			return syntax.Token{}
		}
		if offset < tok.Span.End() || tok.Kind == syntax.EndOfFile {
			return tok
		}
	}
}

// LocForStartOfToken returns the start location of the token containing
// the given offset, or the location itself when it points to whitespace.
func LocForStartOfToken(mgr *SourceManager, id BufferID, offset int) SourceLoc {
	buf := mgr.BufferData(id)
	if offset >= len(buf) {
		return SourceLoc{}
	}
	switch buf[offset] {
	case '\n', '\r', ' ', '\t':
		return mgr.LocationForOffset(id, offset)
	}
	lineStart := findStartOfLine(buf, offset)

	l := New(mgr, id, WithKeepComments(), WithRange(lineStart, len(buf)-1))
	var tok syntax.Token
	for {
		l.Lex(&tok)
		if tok.Span.Start > offset {
			break
		}
		if offset < tok.Span.End() {
			return mgr.LocationForOffset(id, tok.Span.Start)
		}
		if tok.Kind == syntax.EndOfFile {
			break
		}
	}
	return mgr.LocationForOffset(id, offset)
}

// LocForEndOfToken returns the location one past the token beginning at
// loc.
func LocForEndOfToken(mgr *SourceManager, loc SourceLoc) SourceLoc {
	tok := TokenAtLocation(mgr, loc)
	return loc.Advanced(tok.Span.Length)
}

// LocForStartOfLine returns the location of the first byte of the line
// containing loc.
func LocForStartOfLine(mgr *SourceManager, loc SourceLoc) SourceLoc {
	id := mgr.BufferContainingLocation(loc)
	if id == InvalidBufferID {
		return SourceLoc{}
	}
	offset := mgr.OffsetOfLocation(loc, id)
	return mgr.LocationForOffset(id, findStartOfLine(mgr.BufferData(id), offset))
}

// LocForEndOfLine returns the location just past the terminator of the
// line containing loc.
func LocForEndOfLine(mgr *SourceManager, loc SourceLoc) SourceLoc {
	id := mgr.BufferContainingLocation(loc)
	if id == InvalidBufferID {
		return SourceLoc{}
	}
	buf := mgr.BufferData(id)
	offset := mgr.OffsetOfLocation(loc, id)
	end := len(buf) - 1
	for offset < end {
		if buf[offset] == '\n' {
			offset++
			break
		}
		if buf[offset] == '\r' {
			offset++
			if offset < end && buf[offset] == '\n' {
				offset++
			}
			break
		}
		offset++
	}
	return mgr.LocationForOffset(id, offset)
}

// IndentationForLine returns the horizontal-whitespace prefix of the line
// containing loc.
func IndentationForLine(mgr *SourceManager, loc SourceLoc) string {
	id := mgr.BufferContainingLocation(loc)
	if id == InvalidBufferID {
		return ""
	}
	buf := mgr.BufferData(id)
	offset := mgr.OffsetOfLocation(loc, id)
	start := findStartOfLine(buf, offset)
	end := start
	for isHorizontalWhitespace(buf[end]) {
		end++
	}
	return string(buf[start:end])
}
