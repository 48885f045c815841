package vals

import (
	"errors"
	"math"
	"testing"

	"github.com/krillsh/krill/pkg/tt"
)

func TestAdd(t *testing.T) {
	tt.Test(t, tt.Fn("Add", Add), tt.Table{
		tt.Args(int64(1), int64(2)).Rets(eq(int64(3)), nil),
		tt.Args(int64(1), 0.5).Rets(eq(1.5), nil),
		tt.Args(true, int64(2)).Rets(eq(int64(3)), nil),
		tt.Args(true, 0.5).Rets(eq(1.5), nil),
		tt.Args("foo", "bar").Rets(eq("foobar"), nil),
		tt.Args("n=", int64(4)).Rets(eq("n=4"), nil),
		tt.Args(2.5, " left").Rets(eq("2.5 left"), nil),
		tt.Args(NewList(int64(1)), int64(2)).Rets(eq(NewList(int64(1), int64(2))), nil),
		tt.Args(int64(0), NewList(int64(1))).Rets(eq(NewList(int64(1), int64(0))), nil),
	})
}

func TestSub(t *testing.T) {
	tt.Test(t, tt.Fn("Sub", Sub), tt.Table{
		tt.Args(int64(10), int64(3)).Rets(eq(int64(7)), nil),
		tt.Args(int64(1), 0.5).Rets(eq(0.5), nil),
		tt.Args(true, int64(1)).Rets(eq(int64(0)), nil),
	})
}

func TestMul(t *testing.T) {
	tt.Test(t, tt.Fn("Mul", Mul), tt.Table{
		tt.Args(int64(6), int64(7)).Rets(eq(int64(42)), nil),
		tt.Args(2.0, int64(3)).Rets(eq(6.0), nil),
		tt.Args("ab", int64(3)).Rets(eq("ababab"), nil),
		tt.Args(int64(2), "xy").Rets(eq("xyxy"), nil),
		tt.Args("ab", int64(0)).Rets(eq(""), nil),
		tt.Args("ab", int64(-1)).Rets(eq(""), nil),
		tt.Args(NewList(int64(1)), int64(2)).Rets(eq(NewList(int64(1), int64(1))), nil),
		tt.Args(NewList(int64(1)), int64(0)).Rets(eq(EmptyList), nil),
		tt.Args("ab", true).Rets(eq("ab"), nil),
	})
}

func TestDivPowMod(t *testing.T) {
	tt.Test(t, tt.Fn("Div", Div), tt.Table{
		tt.Args(int64(7), int64(2)).Rets(eq(3.5), nil),
		tt.Args(1.0, int64(4)).Rets(eq(0.25), nil),
	})
	tt.Test(t, tt.Fn("Pow", Pow), tt.Table{
		tt.Args(int64(2), int64(10)).Rets(eq(1024.0), nil),
		tt.Args(int64(2), int64(-1)).Rets(eq(0.5), nil),
	})
	tt.Test(t, tt.Fn("Mod", Mod), tt.Table{
		tt.Args(int64(7), int64(3)).Rets(eq(int64(1)), nil),
		tt.Args(7.5, int64(2)).Rets(eq(1.5), nil),
	})
}

func TestArith_Errors(t *testing.T) {
	var opErr *OpError
	if _, err := Sub("a", int64(1)); !errors.As(err, &opErr) {
		t.Errorf("Sub(string, int): %v, want OpError", err)
	} else if opErr.LHS != "string" || opErr.RHS != "int" {
		t.Errorf("Sub(string, int) error names %s and %s", opErr.LHS, opErr.RHS)
	}
	if _, err := Mul("ab", 1.5); !errors.As(err, &opErr) {
		t.Errorf("Mul(string, float): %v, want OpError", err)
	}
	if _, err := Div(int64(1), int64(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Div by zero: %v", err)
	}
	if _, err := Mod(int64(1), false); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Mod by false: %v", err)
	}
	var ovf *OverflowError
	if _, err := Add(int64(math.MaxInt64), int64(1)); !errors.As(err, &ovf) {
		t.Errorf("Add overflow: %v", err)
	}
	if _, err := Mul(int64(math.MinInt64), int64(-1)); !errors.As(err, &ovf) {
		t.Errorf("Mul overflow: %v", err)
	}
	if _, err := Mul("ab", int64(math.MaxInt64)); !errors.As(err, &ovf) {
		t.Errorf("Mul string repeat overflow: %v", err)
	}
	if _, err := Mul(NewList(int64(1), int64(2)), int64(math.MaxInt64)); !errors.As(err, &ovf) {
		t.Errorf("Mul list repeat overflow: %v", err)
	}
	var unErr *UnaryOpError
	if _, err := Neg("x"); !errors.As(err, &unErr) {
		t.Errorf("Neg(string): %v, want UnaryOpError", err)
	}
}

func TestCompare(t *testing.T) {
	cmpSign := func(op string, a, b Value) int {
		t.Helper()
		c, err := Compare(op, a, b)
		if err != nil {
			t.Fatalf("Compare(%v, %v): %v", a, b, err)
		}
		return c
	}
	if cmpSign("<", int64(1), int64(2)) >= 0 {
		t.Errorf("1 < 2 does not order")
	}
	if cmpSign("<", int64(2), 1.5) <= 0 {
		t.Errorf("2 > 1.5 does not order")
	}
	if cmpSign("<=", true, int64(1)) != 0 {
		t.Errorf("true and 1 do not compare equal")
	}
	if cmpSign(">", "b", "a") <= 0 {
		t.Errorf("strings do not order lexicographically")
	}
	if _, err := Compare("<", "a", int64(1)); err == nil {
		t.Errorf("string < int does not fail")
	}
}

func TestMakeRange(t *testing.T) {
	tt.Test(t, tt.Fn("MakeRange", MakeRange), tt.Table{
		tt.Args(int64(0), int64(3)).Rets(eq(Range{0, 3}), nil),
		tt.Args(false, true).Rets(eq(Range{0, 1}), nil),
	})
	if _, err := MakeRange(1.5, int64(2)); err == nil {
		t.Errorf("float range endpoint does not fail")
	}
}

func TestMatch(t *testing.T) {
	re := &Regex{Pattern: mustCompile("a+"), Text: "a+"}
	m := NewMap()
	m.Set("key", int64(1))
	tt.Test(t, tt.Fn("Match", Match), tt.Table{
		tt.Args("banana", "nan").Rets(true, nil),
		tt.Args("banana", "xyz").Rets(false, nil),
		tt.Args("baa", re).Rets(true, nil),
		tt.Args(NewList(int64(1), int64(2)), int64(2)).Rets(true, nil),
		tt.Args(m, "key").Rets(true, nil),
		tt.Args(m, "other").Rets(false, nil),
	})
}
