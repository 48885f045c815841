package vals

import "bytes"

// Equal compares two values with the same coercion rules as the comparison
// operators: Bool/Int/Float compare numerically across kinds, Bool against
// a string or container compares the container's emptiness, and equal kinds
// compare structurally. Values of kinds with no coercion rule are unequal.
// Closures and other external kinds compare by identity.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case bool:
		switch b := b.(type) {
		case bool:
			return a == b
		case int64:
			return boolInt(a) == b
		case float64:
			return boolFloat(a) == b
		case string, *List, *Map, *Table, Range:
			return Bool(b) == a
		}
		return false
	case int64:
		switch b := b.(type) {
		case int64:
			return a == b
		case float64:
			return float64(a) == b
		case bool:
			return a == boolInt(b)
		}
		return false
	case float64:
		switch b := b.(type) {
		case float64:
			return a == b
		case int64:
			return a == float64(b)
		case bool:
			return a == boolFloat(b)
		}
		return false
	case string:
		switch b := b.(type) {
		case string:
			return a == b
		case bool:
			return Bool(a) == b
		}
		return false
	case *List:
		switch b := b.(type) {
		case *List:
			return equalLists(a, b, Equal)
		case bool:
			return Bool(a) == b
		}
		return false
	case *Map:
		switch b := b.(type) {
		case *Map:
			return equalMaps(a, b, Equal)
		case bool:
			return Bool(a) == b
		}
		return false
	case *Table:
		switch b := b.(type) {
		case *Table:
			return equalTables(a, b, Equal)
		case bool:
			return Bool(a) == b
		}
		return false
	case Range:
		switch b := b.(type) {
		case Range:
			return a == b
		case bool:
			return Bool(a) == b
		}
		return false
	case *Regex:
		if b, ok := b.(*Regex); ok {
			return a.Text == b.Text
		}
		return false
	case Binary:
		if b, ok := b.(Binary); ok {
			return bytes.Equal(a, b)
		}
		return false
	default:
		// External kinds (closures) are pointer-backed and compare by
		// identity.
		return Kind(a) == Kind(b) && a == b
	}
}

// EqualStrict is the equality relation used by hashed containers. It is
// stricter than Equal: values of different kinds are never equal, so it is
// consistent with Hash.
func EqualStrict(a, b Value) bool {
	if Kind(a) != Kind(b) {
		return false
	}
	switch a := a.(type) {
	case nil:
		return true
	case bool, int64, float64, string, Range:
		return a == b
	case *List:
		return equalLists(a, b.(*List), EqualStrict)
	case *Map:
		return equalMaps(a, b.(*Map), EqualStrict)
	case *Table:
		return equalTables(a, b.(*Table), EqualStrict)
	case *Regex:
		return a.Text == b.(*Regex).Text
	case Binary:
		return bytes.Equal(a, b.(Binary))
	default:
		return a == b
	}
}

func equalLists(a, b *List, eq func(Value, Value) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !eq(a.Index(i), b.Index(i)) {
			return false
		}
	}
	return true
}

func equalMaps(a, b *Map, eq func(Value, Value) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.Each(func(key string, v Value) bool {
		other, ok := b.Get(key)
		if !ok || !eq(v, other) {
			equal = false
		}
		return equal
	})
	return equal
}

func equalTables(a, b *Table, eq func(Value, Value) bool) bool {
	ah, bh := a.Headers(), b.Headers()
	if len(ah) != len(bh) || a.Len() != b.Len() {
		return false
	}
	for i := range ah {
		if ah[i] != bh[i] {
			return false
		}
	}
	ar, br := a.Rows(), b.Rows()
	for i := range ar {
		for j := range ar[i] {
			if !eq(ar[i][j], br[i][j]) {
				return false
			}
		}
	}
	return true
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
