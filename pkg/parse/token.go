package parse

import "github.com/krillsh/krill/pkg/diag"

// Kind identifies the syntactic class of a Token.
type Kind int

const (
	EOF Kind = iota
	Space
	Newline
	Semicolon

	Symbol   // bare word
	Variable // $name
	Int      // integer literal
	Float    // float literal

	Quote       // ' (toggles a raw string region)
	DoubleQuote // " (toggles an interpolated string region)
	Dollar      // $ not followed by a name
	Comment     // # (rest of the line is skipped by the parser)

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Dot
	Colon
	At
	QuestionMark
	Exec // &
	Pipe // |

	// Binary operators.
	Add
	Sub
	Mul
	Div
	Mod
	Pow   // **
	Range // ..
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or

	// Unary operator. Sub doubles as negation.
	Not

	// Assignment operators.
	Assign
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
	PowAssign

	// Keywords.
	If
	Else
	While
	Loop
	For
	In
	Break
	Return
	Continue
	Fn
	Let
	Export
	True
	False
)

var kindNames = map[Kind]string{
	EOF:          "end of input",
	Space:        "whitespace",
	Newline:      "newline",
	Semicolon:    "';'",
	Symbol:       "word",
	Variable:     "variable",
	Int:          "integer",
	Float:        "float",
	Quote:        `"'"`,
	DoubleQuote:  `'"'`,
	Dollar:       "'$'",
	Comment:      "comment",
	LParen:       "'('",
	RParen:       "')'",
	LBrace:       "'{'",
	RBrace:       "'}'",
	LBracket:     "'['",
	RBracket:     "']'",
	Comma:        "','",
	Dot:          "'.'",
	Colon:        "':'",
	At:           "'@'",
	QuestionMark: "'?'",
	Exec:         "'&'",
	Pipe:         "'|'",
	Add:          "'+'",
	Sub:          "'-'",
	Mul:          "'*'",
	Div:          "'/'",
	Mod:          "'%'",
	Pow:          "'**'",
	Range:        "'..'",
	Eq:           "'=='",
	Ne:           "'!='",
	Lt:           "'<'",
	Le:           "'<='",
	Gt:           "'>'",
	Ge:           "'>='",
	And:          "'&&'",
	Or:           "'||'",
	Not:          "'!'",
	Assign:       "'='",
	AddAssign:    "'+='",
	SubAssign:    "'-='",
	MulAssign:    "'*='",
	DivAssign:    "'/='",
	ModAssign:    "'%='",
	PowAssign:    "'**='",
	If:           "'if'",
	Else:         "'else'",
	While:        "'while'",
	Loop:         "'loop'",
	For:          "'for'",
	In:           "'in'",
	Break:        "'break'",
	Return:       "'return'",
	Continue:     "'continue'",
	Fn:           "'fn'",
	Let:          "'let'",
	Export:       "'export'",
	True:         "'true'",
	False:        "'false'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "bad kind"
}

// Token is a spanned lexical unit. Text is the raw source slice; Val is the
// cooked value where one exists (variable name without the sigil, numeric
// text with separators stripped). Escape decoding happens in the parser.
type Token struct {
	Kind Kind
	diag.Ranging
	Text string
	Val  string
}

var keywords = map[string]Kind{
	"if":       If,
	"else":     Else,
	"while":    While,
	"loop":     Loop,
	"for":      For,
	"in":       In,
	"break":    Break,
	"return":   Return,
	"continue": Continue,
	"fn":       Fn,
	"let":      Let,
	"export":   Export,
	"true":     True,
	"false":    False,
}

func (k Kind) isBinaryOp() bool {
	switch k {
	case Add, Sub, Mul, Div, Mod, Pow, Range, Eq, Ne, Lt, Le, Gt, Ge, And, Or:
		return true
	}
	return false
}

func (k Kind) isAssignOp() bool {
	switch k {
	case AddAssign, SubAssign, MulAssign, DivAssign, ModAssign, PowAssign:
		return true
	}
	return false
}

// Operator and punctuation tokens that may appear inside a bare argument,
// rendered back to the text they match literally (or as glob syntax).
var argText = map[Kind]string{
	Add:          "+",
	Sub:          "-",
	Mul:          "*",
	Div:          "/",
	Mod:          "%",
	Pow:          "**",
	Range:        "..",
	Dot:          ".",
	Colon:        ":",
	Eq:           "==",
	Ne:           "!=",
	Le:           "<=",
	Ge:           ">=",
	Not:          "!",
	Assign:       "=",
	AddAssign:    "+=",
	SubAssign:    "-=",
	MulAssign:    "*=",
	DivAssign:    "/=",
	ModAssign:    "%=",
	PowAssign:    "**=",
	QuestionMark: "?",
	At:           "@",
	LBracket:     "[",
	RBracket:     "]",
	True:         "true",
	False:        "false",
	If:           "if",
	Else:         "else",
	While:        "while",
	Loop:         "loop",
	For:          "for",
	In:           "in",
	Break:        "break",
	Return:       "return",
	Continue:     "continue",
	Fn:           "fn",
	Let:          "let",
	Export:       "export",
}

// isArgPart reports whether a token may continue an argument.
func (k Kind) isArgPart() bool {
	switch k {
	case Symbol, Variable, Int, Float, Quote, DoubleQuote, Dollar, LParen:
		return true
	}
	_, ok := argText[k]
	return ok
}

func isValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
