package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/krillsh/krill/pkg/parse"
	"github.com/krillsh/krill/pkg/vals"
)

// fakeDispatcher serves a small builtin table and records external
// invocations without spawning anything.
type fakeDispatcher struct {
	aliases   map[string]string
	externals []string
}

func (d *fakeDispatcher) Alias(name string) (string, bool) {
	replacement, ok := d.aliases[name]
	return replacement, ok
}

func (d *fakeDispatcher) Builtin(name string) (BuiltinFn, bool) {
	switch name {
	case "echo":
		return func(c *Context, args []vals.Value) (vals.Value, error) {
			var words []string
			for _, arg := range args {
				if err := vals.ToStrings(arg, &words); err != nil {
					return nil, err
				}
			}
			return strings.Join(words, " "), nil
		}, true
	case "len":
		return func(c *Context, args []vals.Value) (vals.Value, error) {
			if len(args) != 1 {
				return nil, &ArityError{Name: "len", Want: 1, Got: len(args)}
			}
			if list, ok := args[0].(*vals.List); ok {
				return int64(list.Len()), nil
			}
			if s, ok := args[0].(string); ok {
				return int64(len(s)), nil
			}
			return nil, fmt.Errorf("len: cannot measure %s", vals.Kind(args[0]))
		}, true
	case "collect":
		return func(c *Context, args []vals.Value) (vals.Value, error) {
			return vals.NewList(c.In().All()...), nil
		}, true
	case "apply":
		return func(c *Context, args []vals.Value) (vals.Value, error) {
			fn, ok := args[0].(*Fn)
			if !ok {
				return nil, fmt.Errorf("apply: not a closure")
			}
			return c.CallFn(fn, args[1:])
		}, true
	case "exit":
		return func(c *Context, args []vals.Value) (vals.Value, error) {
			return nil, &ExitError{Status: 3}
		}, true
	}
	return nil, false
}

func (d *fakeDispatcher) RunExternal(ctx context.Context, name string, args []string, input string, env []string) (string, int, error) {
	d.externals = append(d.externals, strings.Join(append([]string{name}, args...), " "))
	if name == "failcmd" {
		return "", 1, nil
	}
	return "ran " + name + "\n", 0, nil
}

func newTestEvaler() (*Evaler, *fakeDispatcher) {
	d := &fakeDispatcher{aliases: map[string]string{
		"greet": "echo hello",
		"e":     "echo",
	}}
	ev := New(d)
	ev.Fs = afero.NewMemMapFs()
	ev.Home = "/home/krill"
	return ev, d
}

func evalOn(t *testing.T, ev *Evaler, src string) (vals.Value, error) {
	t.Helper()
	ast, err := parse.Parse(parse.Source{Name: "[test]", Code: src})
	if err != nil {
		t.Fatalf("parse error in %q: %v", src, err)
	}
	return ev.Eval(context.Background(), ast)
}

func evalStr(t *testing.T, src string) (vals.Value, error) {
	t.Helper()
	ev, _ := newTestEvaler()
	return evalOn(t, ev, src)
}

func mustEval(t *testing.T, src string) vals.Value {
	t.Helper()
	v, err := evalStr(t, src)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func testEval(t *testing.T, src string, want vals.Value) {
	t.Helper()
	got := mustEval(t, src)
	if !vals.EqualStrict(got, want) {
		t.Errorf("eval %q = %s, want %s", src, vals.Repr(got), vals.Repr(want))
	}
}

func TestEval_Arithmetic(t *testing.T) {
	testEval(t, "1 + 2 * 3", int64(7))
	testEval(t, "2 ** 3 ** 2", 512.0)
	testEval(t, "10 - 3 - 2", int64(5))
	testEval(t, "(1 + 2) * 3", int64(9))
	testEval(t, "-2 ** 2", 4.0)
	testEval(t, "!false", true)
	testEval(t, "1 + 2 < 2 * 2", true)
	testEval(t, "'a' + 1", "a1")
}

func TestEval_Logic(t *testing.T) {
	testEval(t, "true && false", false)
	testEval(t, "false || 'x'", true)
	testEval(t, "1 < 2 && 3 < 4", true)
}

func TestEval_LogicShortCircuits(t *testing.T) {
	// The right side must not run when the left decides the result.
	testEval(t, `
let x = 0
fn bump() { $x = $x + 1; return true }
false && (bump)
true || (bump)
$x`, int64(0))
	testEval(t, `
let x = 0
fn bump() { $x = $x + 1; return true }
true && (bump)
false || (bump)
$x`, vals.NewList(true, true, int64(2)))
}

func TestEval_Variables(t *testing.T) {
	testEval(t, "let x = 5; $x", int64(5))
	testEval(t, "let x = 5; $x = 7; $x", int64(7))
	testEval(t, "let x = 5; $x += 2; $x", int64(7))
	testEval(t, "let x; $x", nil)

	_, err := evalStr(t, "$nope")
	var undef *UndefinedVarError
	if !errors.As(err, &undef) || undef.Name != "nope" {
		t.Errorf("reading undefined variable: %v", err)
	}
	_, err = evalStr(t, "$nope += 1")
	if !errors.As(err, &undef) {
		t.Errorf("compound assign to undefined variable: %v", err)
	}
}

func TestEval_Scoping(t *testing.T) {
	// A let inside a block is invisible after it.
	_, err := evalStr(t, "if true { let y = 1 }; $y")
	var undef *UndefinedVarError
	if !errors.As(err, &undef) {
		t.Errorf("block-local variable leaked: %v", err)
	}
	// Assignment inside a block mutates the outer binding.
	testEval(t, "let x = 1; if true { $x = 2 }; $x", int64(2))
	// A let inside a block shadows without touching the outer binding.
	testEval(t, "let x = 1; if true { let x = 2 }; $x", int64(1))
	// Assignment to an undeclared name vivifies at the call root.
	testEval(t, "if true { $fresh = 9 }; $fresh", int64(9))
}

func TestEval_ExportRejectsContainers(t *testing.T) {
	var exportErr *ExportError
	_, err := evalStr(t, "export bad = [1, 2]")
	if !errors.As(err, &exportErr) {
		t.Fatalf("exporting a list: %v", err)
	}
	_, err = evalStr(t, "export good = 'ok'; $good = {|a| $a }")
	if !errors.As(err, &exportErr) {
		t.Errorf("assigning a closure to an exported binding: %v", err)
	}
}

func TestEval_If(t *testing.T) {
	testEval(t, "if 1 < 2 { 'yes' } else { 'no' }", "yes")
	testEval(t, "if 1 > 2 { 'yes' } else if 2 > 1 { 'mid' } else { 'no' }", "mid")
	testEval(t, "if false { 'yes' }", nil)
}

func TestEval_Loops(t *testing.T) {
	testEval(t, "let s = 0; for i in 1..5 { $s += $i }; $s", int64(10))
	testEval(t, "let n = 0; while $n < 3 { $n += 1 }; $n", int64(3))
	testEval(t, "let n = 0; loop { $n += 1; if $n == 4 { break } }; $n", int64(4))
	testEval(t, "let s = ''; for w in ['a', 'b'] { $s = $s + $w }; $s", "ab")
	// continue skips the rest of the iteration.
	testEval(t, "let s = 0; for i in 1..6 { if $i % 2 == 0 { continue }; $s += $i }; $s", int64(9))
}

func TestEval_BreakExitsInnermostLoop(t *testing.T) {
	testEval(t, `
let hits = 0
for i in 0..3 {
	for j in 0..10 {
		if $j == 1 { break }
		$hits += 1
	}
}
$hits`, int64(3))
}

func TestEval_Functions(t *testing.T) {
	testEval(t, "fn double(x) { return $x * 2 }; double 21", int64(42))
	testEval(t, "fn fib(n) { if $n < 2 { return $n }; return (fib ($n - 1)) + (fib ($n - 2)) }; fib 10", int64(55))
	// return exits the function, not just the loop around it.
	testEval(t, "fn find() { for i in 0..10 { if $i == 3 { return $i } }; return 0 - 1 }; find", int64(3))
	// A function with no explicit return evaluates to its output.
	testEval(t, "fn none() { let x = 1 }; (none)", nil)
	testEval(t, "fn hello() { 'hi' }; hello", "hi")

	var arity *ArityError
	_, err := evalStr(t, "fn pair(a, b) { return $a }; pair 1")
	if !errors.As(err, &arity) || arity.Want != 2 || arity.Got != 1 {
		t.Errorf("arity mismatch: %v", err)
	}
}

func TestEval_Closures(t *testing.T) {
	// Closures alias their captured bindings: later assignment through the
	// shared chain is visible on call.
	testEval(t, "let x = 1; let c = {|| $x }; $x = 2; &$c", int64(2))
	// A let after capture creates a new binding the closure cannot see; it
	// still resolves through its own chain.
	testEval(t, "fn make() { let x = 1; return {|| $x } }; let c = (make); let x = 9; &$c", int64(1))
	testEval(t, "let add = {|a, b| $a + $b }; apply $add 2 3", int64(5))
	testEval(t, "fn counter() { let n = 0; return {|| $n += 1; return $n } }; let c = (counter); &$c; &$c; &$c",
		vals.NewList(int64(1), int64(2), int64(3)))
}

func TestEval_RecursionLimit(t *testing.T) {
	ev, _ := newTestEvaler()
	ev.MaxDepth = 32
	_, err := evalOn(t, ev, "fn forever() { return (forever) }; forever")
	var rec *RecursionError
	if !errors.As(err, &rec) || rec.Limit != 32 {
		t.Fatalf("unbounded recursion: %v", err)
	}
}

func TestEval_Pipelines(t *testing.T) {
	testEval(t, "echo hi", "hi")
	testEval(t, "echo a b | collect", vals.NewList("a b"))
	testEval(t, "[1, 2] | collect", vals.NewList(vals.NewList(int64(1), int64(2))))
}

func TestEval_Builtins(t *testing.T) {
	testEval(t, "len [1, 2, 3]", int64(3))
	testEval(t, "len 'four'", int64(4))
	testEval(t, "echo (1 + 1) images", "2 images")
}

func TestEval_Aliases(t *testing.T) {
	testEval(t, "greet world", "hello world")
	testEval(t, "e one two", "one two")
}

func TestEval_Externals(t *testing.T) {
	ev, d := newTestEvaler()
	v, err := evalOn(t, ev, "somecmd a b")
	if err != nil {
		t.Fatal(err)
	}
	if !vals.EqualStrict(v, "ran somecmd") {
		t.Errorf("external output = %s", vals.Repr(v))
	}
	if len(d.externals) != 1 || d.externals[0] != "somecmd a b" {
		t.Errorf("externals = %v", d.externals)
	}

	// Exit status of the last external lands in $?.
	v, err = evalOn(t, ev, "failcmd; $?")
	if err != nil {
		t.Fatal(err)
	}
	if !vals.EqualStrict(v, int64(1)) {
		t.Errorf("$? = %s, want 1", vals.Repr(v))
	}
}

func TestEval_UndefinedCommand(t *testing.T) {
	ev := New(nil)
	_, err := evalOn(t, ev, "nosuchcmd")
	var undef *UndefinedCommandError
	if !errors.As(err, &undef) || undef.Name != "nosuchcmd" {
		t.Fatalf("dispatching without a dispatcher: %v", err)
	}
}

func TestEval_ErrorCheck(t *testing.T) {
	testEval(t, "?(1 / 0)", false)
	testEval(t, "?(1 / 1)", true)
	testEval(t, "?($missing)", false)

	// Exit is not a failure the check absorbs.
	_, err := evalStr(t, "?(exit)")
	var exit *ExitError
	if !errors.As(err, &exit) || exit.Status != 3 {
		t.Errorf("exit through ?(): %v", err)
	}
}

func TestEval_Redirects(t *testing.T) {
	ev, _ := newTestEvaler()
	if _, err := evalOn(t, ev, "echo hello > /out.txt"); err != nil {
		t.Fatal(err)
	}
	data, err := afero.ReadFile(ev.Fs, "/out.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\n" {
		t.Errorf("redirected file = %q", data)
	}

	if _, err := evalOn(t, ev, "echo again >> /out.txt"); err != nil {
		t.Fatal(err)
	}
	data, _ = afero.ReadFile(ev.Fs, "/out.txt")
	if string(data) != "hello\nagain\n" {
		t.Errorf("appended file = %q", data)
	}

	v, err := evalOn(t, ev, "collect < /out.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !vals.EqualStrict(v, vals.NewList("hello\nagain\n")) {
		t.Errorf("input redirect = %s", vals.Repr(v))
	}
}

func TestEval_Interrupt(t *testing.T) {
	ev, _ := newTestEvaler()
	ev.Interrupt().Set()
	_, err := evalOn(t, ev, "1 + 1")
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("interrupted eval: %v", err)
	}
	ev.Interrupt().Clear()
	if _, err := evalOn(t, ev, "1 + 1"); err != nil {
		t.Fatalf("eval after clearing interrupt: %v", err)
	}
}

func TestEval_ContextCancellation(t *testing.T) {
	ev, _ := newTestEvaler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ast, err := parse.Parse(parse.Source{Name: "[test]", Code: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ev.Eval(ctx, ast); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("cancelled eval: %v", err)
	}
}

func TestEval_IntLiteralRange(t *testing.T) {
	_, err := evalStr(t, "99999999999999999999")
	var rng *IntRangeError
	if !errors.As(err, &rng) {
		t.Fatalf("oversized literal: %v", err)
	}
}

func TestEval_StringInterpolation(t *testing.T) {
	testEval(t, `"sum: $(1 + 2)"`, "sum: 3")
	testEval(t, `"see figure (1) below"`, "see figure (1) below")
	testEval(t, "$n = 4\n\"n is $n\"", "n is 4")
	testEval(t, "failcmd; \"status $?\"", "status 1")
	testEval(t, `echo "dollar \$ paren ("`, "dollar $ paren (")
}
