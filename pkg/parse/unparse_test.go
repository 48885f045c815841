package parse

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Unparse output is a fixed point: rendering, reparsing and rendering again
// yields the same text. The inputs cover every statement and literal kind.
func TestUnparse_RoundTrip(t *testing.T) {
	inputs := []string{
		"echo hi there",
		"cat in.txt | grep x | lines > out.txt",
		"echo start >> session.log",
		"sort < data.txt",
		"let x = 5",
		"let x",
		"export LANG = 'C'",
		"$x = $x + 1",
		"$x **= 2",
		"if $a > 0 { echo pos } else if $a < 0 { echo neg } else { echo zero }",
		"while $n > 1 { $n /= 2 }",
		"loop { if $done { break }; continue }",
		"for line in (lines f.txt) { echo $line }",
		"fn fib(n) { if $n < 2 { return $n }; return (fib ($n - 1)) + (fib ($n - 2)) }",
		"let f = {|a, b| $a ** $b }",
		"let g = {|| 'nothing' }",
		"[1, 2.5, 'three', [4], @{k: 'v'}]",
		"@{user: 'ann', id: 7}",
		"@'[0-9]+\\.[0-9]*'",
		`"path: $dir$(len $items)"`,
		`"see figure (1) below"`,
		`"status $?"`,
		"$table.col[0].sub[1]",
		"?(open missing.txt)",
		"true || false && !true",
		"0..10",
		"echo foo$bar.txt 'a b' \"c $d\"",
		"{ let a = 1; { let b = 2 } }",
	}
	for _, src := range inputs {
		ast := mustParse(t, src)
		u1 := Unparse(ast)
		ast2, err := Parse(Source{Name: "[reparse]", Code: u1})
		if err != nil {
			t.Errorf("Unparse(%q) = %q does not reparse: %v", src, u1, err)
			continue
		}
		if u2 := Unparse(ast2); u2 != u1 {
			t.Errorf("unparse of %q not a fixed point:\n first %q\nsecond %q", src, u1, u2)
		}
	}
}

func TestUnparse_Golden(t *testing.T) {
	src := "let x = 1\nwhile $x < 3 { $x += 1 }\necho done"
	ast := mustParse(t, src)
	g := goldie.New(t)
	g.Assert(t, "unparse", []byte(Unparse(ast)))
}
