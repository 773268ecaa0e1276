package syntax

// TokenKind represents the type of token scanned from the input.
type TokenKind uint8

const (
	// Special tokens
	EndOfFile TokenKind = iota
	Unknown
	Error
	CodeCompletion

	// Script tags
	OpenTag         // <?php
	OpenTagWithEcho // <?=
	CloseTag        // ?>

	// Identifiers and variables
	Identifier
	Variable      // $name
	StringVarname // name inside ${name}

	// Literals
	IntegerLiteral
	DoubleLiteral
	StringLiteral // 'str' or non-interpolated "str"
	EncapsedAndWhitespace
	StartHeredoc // <<<LABEL header
	EndHeredoc   // closing LABEL

	// Interpolation markers
	DollarOpenCurlyBrace // ${
	CurlyOpen            // {$

	// Comment tokens, produced only in return-as-tokens mode
	LineComment
	BlockComment
	DocComment

	// Punctuation
	LeftParen          // (
	RightParen         // )
	LeftBrace          // {
	RightBrace         // }
	LeftSquareBracket  // [
	RightSquareBracket // ]
	Comma              // ,
	Semicolon          // ;
	Colon              // :
	DoubleColon        // ::
	Arrow              // ->
	DoubleArrow        // =>
	Question           // ?
	Coalesce           // ??
	Dollar             // $
	Backslash          // \
	At                 // @
	Backtick           // `
	DoubleQuote        // "

	// Operators
	Plus           // +
	Minus          // -
	Asterisk       // *
	Slash          // /
	Percent        // %
	Pow            // **
	Equals         // =
	PlusEquals     // +=
	MinusEquals    // -=
	MulEquals      // *=
	DivEquals      // /=
	ModEquals      // %=
	PowEquals      // **=
	DotEquals      // .=
	AmpEquals      // &=
	PipeEquals     // |=
	CaretEquals    // ^=
	ShlEquals      // <<=
	ShrEquals      // >>=
	CoalesceEquals // ??=
	EqualsEquals   // ==
	Identical      // ===
	NotEquals      // !=
	NotIdentical   // !==
	Less           // <
	Greater        // >
	LessEquals     // <=
	GreaterEquals  // >=
	Spaceship      // <=>
	Shl            // <<
	Shr            // >>
	BooleanAnd     // &&
	BooleanOr      // ||
	Ampersand      // &
	Pipe           // |
	Caret          // ^
	Tilde          // ~
	Exclaim        // !
	Dot            // .
	Ellipsis       // ...
	Inc            // ++
	Dec            // --

	// Keywords
	KwAbstract
	KwAnd
	KwArray
	KwAs
	KwBreak
	KwCallable
	KwCase
	KwCatch
	KwClass
	KwClone
	KwConst
	KwContinue
	KwDeclare
	KwDefault
	KwDo
	KwEcho
	KwElse
	KwElseif
	KwEmpty
	KwExit
	KwExtends
	KwFinal
	KwFinally
	KwFn
	KwFor
	KwForeach
	KwFunction
	KwGlobal
	KwGoto
	KwIf
	KwImplements
	KwInclude
	KwIncludeOnce
	KwInstanceof
	KwInsteadof
	KwInterface
	KwIsset
	KwList
	KwMatch
	KwNamespace
	KwNew
	KwOr
	KwPrint
	KwPrivate
	KwProtected
	KwPublic
	KwRequire
	KwRequireOnce
	KwReturn
	KwStatic
	KwSwitch
	KwThrow
	KwTrait
	KwTry
	KwUnset
	KwUse
	KwVar
	KwWhile
	KwXor
	KwYield
)

var tokenNames = map[TokenKind]string{
	EndOfFile:      "EOF",
	Unknown:        "UNKNOWN",
	Error:          "ERROR",
	CodeCompletion: "CODE_COMPLETION",

	OpenTag:         "OPEN_TAG",
	OpenTagWithEcho: "OPEN_TAG_WITH_ECHO",
	CloseTag:        "CLOSE_TAG",

	Identifier:    "IDENTIFIER",
	Variable:      "VARIABLE",
	StringVarname: "STRING_VARNAME",

	IntegerLiteral:        "INTEGER",
	DoubleLiteral:         "DOUBLE",
	StringLiteral:         "STRING",
	EncapsedAndWhitespace: "ENCAPSED_AND_WHITESPACE",
	StartHeredoc:          "START_HEREDOC",
	EndHeredoc:            "END_HEREDOC",

	DollarOpenCurlyBrace: "${",
	CurlyOpen:            "{$",

	LineComment:  "LINE_COMMENT",
	BlockComment: "BLOCK_COMMENT",
	DocComment:   "DOC_COMMENT",

	LeftParen:          "(",
	RightParen:         ")",
	LeftBrace:          "{",
	RightBrace:         "}",
	LeftSquareBracket:  "[",
	RightSquareBracket: "]",
	Comma:              ",",
	Semicolon:          ";",
	Colon:              ":",
	DoubleColon:        "::",
	Arrow:              "->",
	DoubleArrow:        "=>",
	Question:           "?",
	Coalesce:           "??",
	Dollar:             "$",
	Backslash:          "\\",
	At:                 "@",
	Backtick:           "`",
	DoubleQuote:        "\"",

	Plus:           "+",
	Minus:          "-",
	Asterisk:       "*",
	Slash:          "/",
	Percent:        "%",
	Pow:            "**",
	Equals:         "=",
	PlusEquals:     "+=",
	MinusEquals:    "-=",
	MulEquals:      "*=",
	DivEquals:      "/=",
	ModEquals:      "%=",
	PowEquals:      "**=",
	DotEquals:      ".=",
	AmpEquals:      "&=",
	PipeEquals:     "|=",
	CaretEquals:    "^=",
	ShlEquals:      "<<=",
	ShrEquals:      ">>=",
	CoalesceEquals: "??=",
	EqualsEquals:   "==",
	Identical:      "===",
	NotEquals:      "!=",
	NotIdentical:   "!==",
	Less:           "<",
	Greater:        ">",
	LessEquals:     "<=",
	GreaterEquals:  ">=",
	Spaceship:      "<=>",
	Shl:            "<<",
	Shr:            ">>",
	BooleanAnd:     "&&",
	BooleanOr:      "||",
	Ampersand:      "&",
	Pipe:           "|",
	Caret:          "^",
	Tilde:          "~",
	Exclaim:        "!",
	Dot:            ".",
	Ellipsis:       "...",
	Inc:            "++",
	Dec:            "--",

	KwAbstract:    "abstract",
	KwAnd:         "and",
	KwArray:       "array",
	KwAs:          "as",
	KwBreak:       "break",
	KwCallable:    "callable",
	KwCase:        "case",
	KwCatch:       "catch",
	KwClass:       "class",
	KwClone:       "clone",
	KwConst:       "const",
	KwContinue:    "continue",
	KwDeclare:     "declare",
	KwDefault:     "default",
	KwDo:          "do",
	KwEcho:        "echo",
	KwElse:        "else",
	KwElseif:      "elseif",
	KwEmpty:       "empty",
	KwExit:        "exit",
	KwExtends:     "extends",
	KwFinal:       "final",
	KwFinally:     "finally",
	KwFn:          "fn",
	KwFor:         "for",
	KwForeach:     "foreach",
	KwFunction:    "function",
	KwGlobal:      "global",
	KwGoto:        "goto",
	KwIf:          "if",
	KwImplements:  "implements",
	KwInclude:     "include",
	KwIncludeOnce: "include_once",
	KwInstanceof:  "instanceof",
	KwInsteadof:   "insteadof",
	KwInterface:   "interface",
	KwIsset:       "isset",
	KwList:        "list",
	KwMatch:       "match",
	KwNamespace:   "namespace",
	KwNew:         "new",
	KwOr:          "or",
	KwPrint:       "print",
	KwPrivate:     "private",
	KwProtected:   "protected",
	KwPublic:      "public",
	KwRequire:     "require",
	KwRequireOnce: "require_once",
	KwReturn:      "return",
	KwStatic:      "static",
	KwSwitch:      "switch",
	KwThrow:       "throw",
	KwTrait:       "trait",
	KwTry:         "try",
	KwUnset:       "unset",
	KwUse:         "use",
	KwVar:         "var",
	KwWhile:       "while",
	KwXor:         "xor",
	KwYield:       "yield",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsKeyword reports whether the kind is a reserved word.
func (k TokenKind) IsKeyword() bool {
	return k >= KwAbstract && k <= KwYield
}

// Span is a half-open byte range into the source buffer.
type Span struct {
	Start  int
	Length int
}

// End returns the offset one past the last byte of the span.
func (s Span) End() int { return s.Start + s.Length }

// ValueKind discriminates a token's semantic value slot.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueDouble
	ValueString
)

// Value is the semantic value attached to literal, variable, and error
// tokens. A zero Value carries nothing.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

func IntValue(v int64) Value      { return Value{kind: ValueInt, i: v} }
func DoubleValue(v float64) Value { return Value{kind: ValueDouble, f: v} }
func StringValue(v string) Value  { return Value{kind: ValueString, s: v} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNone() bool    { return v.kind == ValueNone }
func (v Value) Int() int64      { return v.i }
func (v Value) Double() float64 { return v.f }
func (v Value) Str() string     { return v.s }

// Token is one lexical token together with its attached trivia. The token
// text itself is not stored; Span indexes the original source buffer.
type Token struct {
	Kind     TokenKind
	Span     Span
	Leading  Trivia
	Trailing Trivia

	// AtStartOfLine is set when the token is the first on its line.
	AtStartOfLine bool

	// CommentLength is the byte distance from the first attached comment in
	// the leading trivia to the token text, when comments are attached.
	CommentLength int

	Value Value

	// InvalidLexValue marks a literal whose text could not be converted to
	// a semantic value (e.g. 019 lexed as octal).
	InvalidLexValue bool

	// CorrectOverflow marks an integer literal that overflowed into a
	// double but whose magnitude equals -(min int64); the parser folds a
	// preceding unary minus back into an integer.
	CorrectOverflow bool
}

// Is reports whether the token has the given kind.
func (t Token) Is(kind TokenKind) bool { return t.Kind == kind }

// IsNot reports whether the token does not have the given kind.
func (t Token) IsNot(kind TokenKind) bool { return t.Kind != kind }

// Bytes returns a zero-copy view of the token text within source.
func (t Token) Bytes(source []byte) []byte {
	if t.Span.Start >= len(source) || t.Span.End() > len(source) || t.Span.Length < 0 {
		return nil
	}
	return source[t.Span.Start:t.Span.End()]
}

// Text materializes the token text from the source buffer.
func (t Token) Text(source []byte) string {
	return string(t.Bytes(source))
}

// Length returns the length of the token text in bytes, excluding trivia.
func (t Token) Length() int { return t.Span.Length }
