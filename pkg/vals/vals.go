// Package vals defines the runtime value model: the concrete Go types that
// may appear as shell values, and the coercion tables shared by every
// operator.
//
// Value is an alias for any. The concrete types are:
//
//	nil        null
//	bool       bool
//	int64      int
//	float64    float
//	string     string
//	*List      list
//	*Map       map (insertion-ordered)
//	*Table     table
//	Range      range
//	*Regex     regex
//	Binary     binary
//
// Closures live outside this package and participate through the Kinder
// interface; they compare and hash by identity.
//
// Values are immutable once shared. Operations that "modify" a container
// build a new one; the only in-place mutators (Map.Set, Table.InsertMap)
// are for construction before a value escapes.
package vals

import "regexp"

// Value is a shell runtime value.
type Value = any

// Kinder is implemented by value types defined outside this package to
// report their kind.
type Kinder interface {
	Kind() string
}

// Kind returns the kind of a value as a short name usable in error
// messages.
func Kind(v Value) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case *List:
		return "list"
	case *Map:
		return "map"
	case *Table:
		return "table"
	case Range:
		return "range"
	case *Regex:
		return "regex"
	case Binary:
		return "binary"
	case Kinder:
		return v.Kind()
	default:
		return "unknown"
	}
}

// Bool returns the truthiness of a value: non-zero numbers, non-empty
// containers and strings, and ranges with a non-zero endpoint pair are
// truthy. Null, regexes and closures are falsy.
func Bool(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case *List:
		return v.Len() > 0
	case *Map:
		return v.Len() > 0
	case *Table:
		return v.Len() > 0
	case Range:
		return v.Start != 0 && v.End != 0
	case Binary:
		return len(v) > 0
	default:
		return false
	}
}

// Regex is a compiled regular expression paired with its source text. The
// text, not the compiled form, defines equality and display.
type Regex struct {
	Pattern *regexp.Regexp
	Text    string
}

// Binary is a byte string value.
type Binary []byte
