package diag

import (
	"strconv"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func setCulprit(culprit string) string {
	return culpritStyle.Sprint(culprit)
}

func TestContext(t *testing.T) {
	color.NoColor = false
	defer func() { color.NoColor = true }()

	tests := []struct {
		name    string
		context *Context
		indent  string

		wantShow        string
		wantShowCompact string
	}{
		{
			name:    "single-line culprit",
			context: contextInParen("[test]", "echo (x)"),
			indent:  "_",

			wantShow: lines(
				"[test], line 1:",
				"_echo "+setCulprit("(x)"),
			),
			wantShowCompact: "[test], line 1: echo " + setCulprit("(x)"),
		},
		{
			name:    "multi-line culprit",
			context: contextInParen("[test]", "echo (x\ny) z"),
			indent:  "_",

			wantShow: lines(
				"[test], line 1-2:",
				"_echo "+setCulprit("(x"),
				"_"+setCulprit("y)")+" z",
			),
			wantShowCompact: lines(
				"[test], line 1-2: echo "+setCulprit("(x"),
				"_                 "+setCulprit("y)")+" z",
			),
		},
		{
			name:    "empty culprit",
			context: NewContext("[test]", "echo x", Ranging{5, 5}),

			wantShow: lines(
				"[test], line 1:",
				"echo "+setCulprit("^")+"x",
			),
			wantShowCompact: "[test], line 1: echo " + setCulprit("^") + "x",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.context.Show(test.indent); got != test.wantShow {
				t.Errorf("Show(%q): got %q, want %q", test.indent, got, test.wantShow)
			}
			gotCompact := test.context.ShowCompact(test.indent)
			if gotCompact != test.wantShowCompact {
				t.Errorf("ShowCompact(%q): got %q, want %q",
					test.indent, gotCompact, test.wantShowCompact)
			}
		})
	}
}

// Creates a Context for the first parenthesized part of the source.
func contextInParen(name, src string) *Context {
	from := strings.Index(src, "(")
	to := strings.Index(src, ")") + 1
	return NewContext(name, src, Ranging{From: from, To: to})
}

func lines(lines ...string) string {
	return strings.Join(lines, "\n")
}

func TestRanging(t *testing.T) {
	r := Ranging{From: 1, To: 10}
	if r.Range() != r {
		t.Errorf("Ranging.Range() did not return itself")
	}
	if p := PointRanging(3); p != (Ranging{From: 3, To: 3}) {
		t.Errorf("PointRanging(3) = %v", p)
	}
	if m := MixedRanging(Ranging{1, 5}, Ranging{3, 7}); m != (Ranging{From: 1, To: 7}) {
		t.Errorf("MixedRanging = " + strconv.Itoa(m.From) + ".." + strconv.Itoa(m.To))
	}
}
