package vals

import "fmt"

// Repr returns a compact single-line rendering of a value, for diagnostics
// and prompts. It is not a lossless conversion; use ToString for that.
func Repr(v Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool, int64:
		s, _ := ToString(v)
		return s
	case float64:
		return formatFloat(v)
	case string:
		return v
	case *List:
		return fmt.Sprintf("[list with %d items]", v.Len())
	case *Map:
		return fmt.Sprintf("[map with %d entries]", v.Len())
	case *Table:
		return fmt.Sprintf("[table with %d rows]", v.Len())
	case Range:
		return fmt.Sprintf("[range from %d to %d]", v.Start, v.End)
	case *Regex:
		return "/" + v.Text + "/"
	case Binary:
		return fmt.Sprintf("[%d bytes of binary data]", len(v))
	default:
		return "[" + Kind(v) + "]"
	}
}

// Not returns the boolean negation of a value's truthiness.
func Not(v Value) Value { return !Bool(v) }
