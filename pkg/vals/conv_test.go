package vals

import (
	"errors"
	"regexp"
	"testing"

	"github.com/krillsh/krill/pkg/tt"
)

func mustCompile(text string) *regexp.Regexp { return regexp.MustCompile(text) }

func TestToString(t *testing.T) {
	tt.Test(t, tt.Fn("ToString", ToString), tt.Table{
		tt.Args(int64(42)).Rets("42", nil),
		tt.Args(2.5).Rets("2.5", nil),
		tt.Args(512.0).Rets("512", nil),
		tt.Args(true).Rets("true", nil),
		tt.Args("s").Rets("s", nil),
	})
	var convErr *ConversionError
	if _, err := ToString(NewList()); !errors.As(err, &convErr) {
		t.Errorf("ToString(list): %v, want ConversionError", err)
	}
	if _, err := ToString(nil); err == nil {
		t.Errorf("ToString(null) does not fail")
	}
}

func TestToStrings(t *testing.T) {
	var out []string
	err := ToStrings(NewList(int64(1), NewList("a", true), "z"), &out)
	if err != nil {
		t.Fatalf("ToStrings: %v", err)
	}
	want := []string{"1", "a", "true", "z"}
	if len(out) != len(want) {
		t.Fatalf("ToStrings flattened to %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("ToStrings flattened to %v, want %v", out, want)
		}
	}
	if err := ToStrings(NewList(NewMap()), &out); err == nil {
		t.Errorf("flattening a map does not fail")
	}
}

func TestAsIndex(t *testing.T) {
	tt.Test(t, tt.Fn("AsIndex", AsIndex), tt.Table{
		tt.Args(int64(0), 3).Rets(0, nil),
		tt.Args(int64(2), 3).Rets(2, nil),
		tt.Args(int64(-1), 3).Rets(2, nil),
		tt.Args(true, 3).Rets(1, nil),
	})
	var idxErr *IndexError
	if _, err := AsIndex(int64(3), 3); !errors.As(err, &idxErr) {
		t.Errorf("index == len: %v, want IndexError", err)
	}
	if _, err := AsIndex(int64(-4), 3); !errors.As(err, &idxErr) {
		t.Errorf("index too negative: %v, want IndexError", err)
	}
	if _, err := AsIndex("0", 3); err == nil {
		t.Errorf("string index does not fail")
	}
}

func TestIndex(t *testing.T) {
	m := NewMap()
	m.Set("name", "krill")
	tt.Test(t, tt.Fn("Index", Index), tt.Table{
		tt.Args(NewList("a", "b"), int64(1)).Rets(eq("b"), nil),
		tt.Args(NewList("a", "b"), int64(-1)).Rets(eq("b"), nil),
		tt.Args(m, "name").Rets(eq("krill"), nil),
		tt.Args(Range{5, 10}, int64(2)).Rets(eq(int64(7)), nil),
		tt.Args("héllo", int64(1)).Rets(eq("é"), nil),
		tt.Args(Binary{0x41}, int64(0)).Rets(eq(int64(0x41)), nil),
	})
	if _, err := Index(m, "missing"); err == nil {
		t.Errorf("missing map key does not fail")
	}
	if _, err := Index(int64(1), int64(0)); err == nil {
		t.Errorf("indexing an int does not fail")
	}
}

func TestIterate(t *testing.T) {
	collect := func(v Value) []Value {
		t.Helper()
		var got []Value
		if err := Iterate(v, func(item Value) bool {
			got = append(got, item)
			return true
		}); err != nil {
			t.Fatalf("Iterate(%v): %v", v, err)
		}
		return got
	}

	if got := collect(Range{0, 3}); len(got) != 3 || got[0] != int64(0) || got[2] != int64(2) {
		t.Errorf("iterating 0..3 yields %v", got)
	}
	if got := collect(NewList("a", "b")); len(got) != 2 || got[1] != "b" {
		t.Errorf("iterating a list yields %v", got)
	}
	if got := collect("ab"); len(got) != 2 || got[0] != "a" {
		t.Errorf("iterating a string yields %v", got)
	}
	if err := Iterate(int64(1), func(Value) bool { return true }); err == nil {
		t.Errorf("iterating an int does not fail")
	}
}

func TestTable(t *testing.T) {
	tbl := NewTable()
	row := NewMap()
	row.Set("name", "a")
	row.Set("size", int64(1))
	tbl.InsertMap(row)
	row2 := NewMap()
	row2.Set("name", "b")
	row2.Set("mode", "rw")
	tbl.InsertMap(row2)

	if tbl.Len() != 2 {
		t.Fatalf("table has %d rows, want 2", tbl.Len())
	}
	if !tbl.HasColumn("mode") || tbl.HasColumn("owner") {
		t.Errorf("column presence wrong")
	}
	col, err := tbl.Column("size")
	if err != nil {
		t.Fatalf("Column(size): %v", err)
	}
	// The second row never set size; its cell is null.
	if col.Len() != 2 || col.Index(0) != int64(1) || col.Index(1) != nil {
		t.Errorf("size column wrong")
	}
	first := tbl.Row(0)
	if v, _ := first.Get("name"); v != "a" {
		t.Errorf("row 0 name wrong")
	}
	// Columns added by later rows backfill earlier rows with null.
	if v, ok := first.Get("mode"); !ok || v != nil {
		t.Errorf("row 0 mode = %v, %v; want null, true", v, ok)
	}
}
