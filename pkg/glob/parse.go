package glob

import (
	"strings"
	"unicode/utf8"
)

// Segment is one unit of a parsed pattern.
type Segment interface {
	segment()
}

// Literal matches the text exactly.
type Literal struct {
	Data string
}

// Slash matches a path separator. Runs of slashes in the pattern collapse
// into one.
type Slash struct{}

// Star matches any run of characters within one path element, including the
// empty run.
type Star struct{}

// Question matches exactly one character within a path element.
type Question struct{}

func (Literal) segment()  {}
func (Slash) segment()    {}
func (Star) segment()     {}
func (Question) segment() {}

// Pattern is a parsed glob pattern.
type Pattern struct {
	Segments []Segment
}

// Parse parses a pattern. Backslash escapes the next character, making it
// literal; a run of stars collapses into one.
func Parse(s string) Pattern {
	var segs []Segment
	p := &parser{src: s}
	for {
		r := p.next()
		switch r {
		case eof:
			return Pattern{segs}
		case '?':
			segs = append(segs, Question{})
		case '*':
			for p.next() == '*' {
			}
			p.backup()
			segs = append(segs, Star{})
		case '/':
			for p.next() == '/' {
			}
			p.backup()
			segs = append(segs, Slash{})
		default:
			var b strings.Builder
		literal:
			for {
				switch r {
				case '?', '*', '/', eof:
					break literal
				case '\\':
					r = p.next()
					if r == eof {
						break literal
					}
					b.WriteRune(r)
				default:
					b.WriteRune(r)
				}
				r = p.next()
			}
			p.backup()
			segs = append(segs, Literal{b.String()})
		}
	}
}

// Escape returns s with every pattern metacharacter escaped, so that Parse
// treats the whole string as literal text.
func Escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '?', '*', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HasMeta reports whether s contains an unescaped pattern metacharacter.
func HasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '?', '*':
			return true
		}
	}
	return false
}

type parser struct {
	src     string
	pos     int
	overEOF int
}

const eof rune = -1

func (p *parser) next() rune {
	if p.pos == len(p.src) {
		p.overEOF++
		return eof
	}
	r, s := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += s
	return r
}

func (p *parser) backup() {
	if p.overEOF > 0 {
		p.overEOF--
		return
	}
	_, s := utf8.DecodeLastRuneInString(p.src[:p.pos])
	p.pos -= s
}
