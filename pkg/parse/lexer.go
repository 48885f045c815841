package parse

import (
	"strings"

	"github.com/krillsh/krill/pkg/diag"
)

// Lexing is total: no input fails, unrecognized bytes fold into Symbol and
// the parser is the single point of syntactic rejection.

// Bytes that terminate a bare word.
const wordStop = "\x00#$\"'(){}[]|;&,"

type lexer struct {
	src string
	pos int
}

// lex tokenizes the whole source. The returned slice does not include an EOF
// token; the parser synthesizes one at the end of input.
func lex(src string) []Token {
	l := lexer{src: src}
	var tokens []Token
	for {
		token, ok := l.next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, token)
	}
}

func (l *lexer) eof() bool     { return l.pos >= len(l.src) }
func (l *lexer) current() byte { return l.src[l.pos] }

func (l *lexer) peek(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *lexer) token(k Kind, start int) Token {
	text := l.src[start:l.pos]
	return Token{Kind: k, Ranging: diag.Ranging{From: start, To: l.pos}, Text: text, Val: text}
}

// emit consumes n bytes and produces a token of kind k covering them.
func (l *lexer) emit(k Kind, n int) Token {
	start := l.pos
	l.pos += n
	return l.token(k, start)
}

func (l *lexer) next() (Token, bool) {
	for !l.eof() {
		c := l.current()
		switch {
		case c == '\n':
			return l.emit(Newline, 1), true
		case isSpace(c):
			return l.lexSpace(), true
		case c == '#':
			// The comment body is lexed as ordinary tokens so that a #
			// inside a quoted region stays literal text. The parser skips
			// from Comment to the next newline outside quoted regions.
			return l.emit(Comment, 1), true
		case isDigit(c):
			return l.lexNumber(), true
		}

		switch c {
		case '$':
			if isVarChar(l.peek(1)) {
				return l.lexVariable(), true
			}
			return l.emit(Dollar, 1), true
		case '\'':
			return l.emit(Quote, 1), true
		case '"':
			return l.emit(DoubleQuote, 1), true
		case '(':
			return l.emit(LParen, 1), true
		case ')':
			return l.emit(RParen, 1), true
		case '{':
			return l.emit(LBrace, 1), true
		case '}':
			return l.emit(RBrace, 1), true
		case '[':
			return l.emit(LBracket, 1), true
		case ']':
			return l.emit(RBracket, 1), true
		case ',':
			return l.emit(Comma, 1), true
		case ':':
			return l.emit(Colon, 1), true
		case ';':
			return l.emit(Semicolon, 1), true
		case '@':
			return l.emit(At, 1), true
		case '?':
			return l.emit(QuestionMark, 1), true
		case '.':
			if l.peek(1) == '.' {
				return l.emit(Range, 2), true
			}
			return l.emit(Dot, 1), true
		case '|':
			if l.peek(1) == '|' {
				return l.emit(Or, 2), true
			}
			return l.emit(Pipe, 1), true
		case '&':
			if l.peek(1) == '&' {
				return l.emit(And, 2), true
			}
			return l.emit(Exec, 1), true
		case '=':
			if l.peek(1) == '=' {
				return l.emit(Eq, 2), true
			}
			return l.emit(Assign, 1), true
		case '+':
			if l.peek(1) == '=' {
				return l.emit(AddAssign, 2), true
			}
			return l.emit(Add, 1), true
		case '-':
			if l.peek(1) == '=' {
				return l.emit(SubAssign, 2), true
			}
			return l.emit(Sub, 1), true
		case '/':
			if l.peek(1) == '=' {
				return l.emit(DivAssign, 2), true
			}
			return l.emit(Div, 1), true
		case '%':
			if l.peek(1) == '=' {
				return l.emit(ModAssign, 2), true
			}
			return l.emit(Mod, 1), true
		case '*':
			if l.peek(1) == '*' {
				if l.peek(2) == '=' {
					return l.emit(PowAssign, 3), true
				}
				return l.emit(Pow, 2), true
			}
			if l.peek(1) == '=' {
				return l.emit(MulAssign, 2), true
			}
			return l.emit(Mul, 1), true
		case '<':
			if l.peek(1) == '=' {
				return l.emit(Le, 2), true
			}
			return l.emit(Lt, 1), true
		case '>':
			if l.peek(1) == '=' {
				return l.emit(Ge, 2), true
			}
			return l.emit(Gt, 1), true
		case '!':
			if l.peek(1) == '=' {
				return l.emit(Ne, 2), true
			}
			return l.emit(Not, 1), true
		}

		return l.lexWord(), true
	}
	return Token{}, false
}

func (l *lexer) lexSpace() Token {
	start := l.pos
	for !l.eof() && isSpace(l.current()) {
		l.pos++
	}
	return l.token(Space, start)
}

func (l *lexer) lexVariable() Token {
	start := l.pos
	l.pos++ // $
	for !l.eof() && isVarChar(l.current()) {
		l.pos++
	}
	token := l.token(Variable, start)
	token.Val = token.Text[1:]
	return token
}

// lexNumber scans an integer or float literal. Underscore separators are
// stripped from Val but kept in Text. A '.' switches to float lexing only
// when a digit follows; a second '.' ends the scan with a Symbol so that
// malformed numbers reach the parser as words.
func (l *lexer) lexNumber() Token {
	start := l.pos
	float := false
	var val []byte
	for !l.eof() {
		c := l.current()
		switch {
		case isDigit(c):
			val = append(val, c)
		case c == '_':
			// separator
		case c == '.' && isDigit(l.peek(1)):
			if float {
				return l.token(Symbol, start)
			}
			float = true
			val = append(val, c)
		default:
			goto done
		}
		l.pos++
	}
done:
	token := l.token(Int, start)
	if float {
		token.Kind = Float
	}
	token.Val = string(val)
	return token
}

// lexWord scans a bare word. A backslash keeps the following byte in the
// word even if it would otherwise terminate it; decoding the escape is the
// parser's job.
func (l *lexer) lexWord() Token {
	start := l.pos
	for !l.eof() {
		c := l.current()
		if c == '\\' {
			l.pos++
			if !l.eof() {
				l.pos++
			}
			continue
		}
		if isSpace(c) || c == '\n' || strings.IndexByte(wordStop, c) >= 0 {
			break
		}
		l.pos++
	}
	if l.pos == start {
		// A stop byte with no dedicated token (NUL). Fold it into a
		// one-byte Symbol so the scan always makes progress.
		l.pos++
	}
	token := l.token(Symbol, start)
	if kind, ok := keywords[token.Text]; ok {
		token.Kind = kind
	}
	return token
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isVarChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
