package parse

import (
	"strings"
	"testing"

	"github.com/krillsh/krill/pkg/tt"
)

func kinds(src string) []Kind {
	var ks []Kind
	for _, token := range lex(src) {
		ks = append(ks, token.Kind)
	}
	return ks
}

func vals(src string) []string {
	var vs []string
	for _, token := range lex(src) {
		vs = append(vs, token.Val)
	}
	return vs
}

func TestLex(t *testing.T) {
	tt.Test(t, tt.Fn("kinds", kinds), tt.Table{
		tt.Args("").Rets([]Kind(nil)),
		tt.Args("echo hi").Rets([]Kind{Symbol, Space, Symbol}),
		tt.Args("1 + 2").Rets([]Kind{Int, Space, Add, Space, Int}),
		tt.Args("2**3").Rets([]Kind{Int, Pow, Int}),
		tt.Args("**= ** *=").Rets([]Kind{PowAssign, Space, Pow, Space, MulAssign}),
		tt.Args("a**=b").Rets([]Kind{Symbol}),
		tt.Args("$x=5").Rets([]Kind{Variable, Assign, Int}),
		tt.Args("$x == $y").Rets([]Kind{Variable, Space, Eq, Space, Variable}),
		tt.Args("a|b||c").Rets([]Kind{Symbol, Pipe, Symbol, Or, Symbol}),
		tt.Args("a&b&&c").Rets([]Kind{Symbol, Exec, Symbol, And, Symbol}),
		tt.Args("0..10").Rets([]Kind{Int, Range, Int}),
		tt.Args("1.5").Rets([]Kind{Float}),
		tt.Args("1.2.3").Rets([]Kind{Symbol, Dot, Int}),
		tt.Args("x;y\nz").Rets([]Kind{Symbol, Semicolon, Symbol, Newline, Symbol}),
		tt.Args("if else while loop for in").Rets([]Kind{
			If, Space, Else, Space, While, Space, Loop, Space, For, Space, In}),
		tt.Args("break return continue fn let export true false").Rets([]Kind{
			Break, Space, Return, Space, Continue, Space, Fn, Space, Let,
			Space, Export, Space, True, Space, False}),
		tt.Args(`'a' "b"`).Rets([]Kind{Quote, Symbol, Quote, Space, DoubleQuote, Symbol, DoubleQuote}),
		tt.Args("@{a:1}").Rets([]Kind{At, LBrace, Symbol, Colon, Int, RBrace}),
		tt.Args("?(x)").Rets([]Kind{QuestionMark, LParen, Symbol, RParen}),
		tt.Args("[1,2]").Rets([]Kind{LBracket, Int, Comma, Int, RBracket}),
		tt.Args("# note\nx").Rets([]Kind{Comment, Space, Symbol, Newline, Symbol}),
		tt.Args("$ $x").Rets([]Kind{Dollar, Space, Variable}),
		tt.Args("foo-bar a.txt").Rets([]Kind{Symbol, Space, Symbol}),
		tt.Args("*.txt").Rets([]Kind{Mul, Dot, Symbol}),
		tt.Args("> >> <=").Rets([]Kind{Gt, Space, Gt, Gt, Space, Le}),
		tt.Args(`a\ b`).Rets([]Kind{Symbol}),
		tt.Args("!x != y").Rets([]Kind{Not, Symbol, Space, Ne, Space, Symbol}),
	})

	tt.Test(t, tt.Fn("vals", vals), tt.Table{
		tt.Args("1_000_000").Rets([]string{"1000000"}),
		tt.Args("1_0.2_5").Rets([]string{"10.25"}),
		tt.Args("$foo_1").Rets([]string{"foo_1"}),
	})
}

// Lexing is total and lossless: every input, including junk bytes, produces
// a contiguous token sequence whose texts concatenate back to the source.
func TestLex_Total(t *testing.T) {
	inputs := []string{
		"",
		"echo hi | grep h > out.txt",
		"let x = 5; while $x > 0 { $x -= 1 }",
		"\x00\x01\xff$((\"'",
		"# just a comment",
		"fn f(a) { return $a ** 2 }",
		"\\",
		"1.2.3.4",
		strings.Repeat("}{", 100),
	}
	for _, src := range inputs {
		tokens := lex(src)
		var b strings.Builder
		offset := 0
		for _, token := range tokens {
			if token.From != offset {
				t.Errorf("lex(%q): token %v starts at %d, want %d", src, token.Kind, token.From, offset)
			}
			offset = token.To
			b.WriteString(token.Text)
		}
		if b.String() != src {
			t.Errorf("lex(%q): texts concatenate to %q", src, b.String())
		}
	}
}

// Re-lexing the exact substring spanned by a token reproduces a token of the
// same kind.
func TestLex_SpanRoundTrip(t *testing.T) {
	inputs := []string{
		"echo hi | grep h",
		"let x = 5 + 4.5 ** 2",
		"for i in 0..10 { echo $i }",
		"@{key: 'value'} != [1, 2]",
	}
	for _, src := range inputs {
		for _, token := range lex(src) {
			again := lex(src[token.From:token.To])
			if len(again) != 1 || again[0].Kind != token.Kind {
				t.Errorf("lex(%q)[%d:%d]: re-lexed %q does not reproduce kind %v",
					src, token.From, token.To, token.Text, token.Kind)
			}
		}
	}
}
