package vals

import (
	"math"
	"strings"
)

// Each operator defines its own coercion matrix here; the evaluator and the
// builtins consult these functions instead of re-deriving the tables.

// Add adds two values: numeric addition with Bool as 0/1 and Int+Float
// promoting to Float, string concatenation (a scalar next to a string
// stringifies), and list append on either side.
func Add(a, b Value) (Value, error) {
	if list, ok := a.(*List); ok {
		return list.Conj(b), nil
	}
	if list, ok := b.(*List); ok {
		return list.Conj(a), nil
	}
	_, aStr := a.(string)
	_, bStr := b.(string)
	if (aStr || bStr) && isScalar(a) && isScalar(b) {
		as, _ := ToString(a)
		bs, _ := ToString(b)
		return as + bs, nil
	}
	if la, ok := toInt(a); ok {
		if rb, ok := toInt(b); ok {
			return addInt(la, rb)
		}
	}
	if la, ok := toFloat(a); ok {
		if rb, ok := toFloat(b); ok {
			return la + rb, nil
		}
	}
	return nil, opError("+", a, b)
}

// Sub subtracts numerically; Bool coerces to 0/1.
func Sub(a, b Value) (Value, error) {
	if la, ok := toInt(a); ok {
		if rb, ok := toInt(b); ok {
			return subInt(la, rb)
		}
	}
	if la, ok := toFloat(a); ok {
		if rb, ok := toFloat(b); ok {
			return la - rb, nil
		}
	}
	return nil, opError("-", a, b)
}

// Mul multiplies numerically, and repeats a string or list by an integer
// count. Repetition by a non-integer is a type error; a count below one
// yields the empty string or list.
func Mul(a, b Value) (Value, error) {
	if s, ok := a.(string); ok {
		return repeatString(s, b, a, b)
	}
	if s, ok := b.(string); ok {
		return repeatString(s, a, a, b)
	}
	if list, ok := a.(*List); ok {
		return repeatList(list, b, a, b)
	}
	if list, ok := b.(*List); ok {
		return repeatList(list, a, a, b)
	}
	if la, ok := toInt(a); ok {
		if rb, ok := toInt(b); ok {
			return mulInt(la, rb)
		}
	}
	if la, ok := toFloat(a); ok {
		if rb, ok := toFloat(b); ok {
			return la * rb, nil
		}
	}
	return nil, opError("*", a, b)
}

// Div divides numerically and always yields a Float. Division by zero is an
// error.
func Div(a, b Value) (Value, error) {
	la, aok := toFloat(a)
	rb, bok := toFloat(b)
	if !aok || !bok {
		return nil, opError("/", a, b)
	}
	if rb == 0 {
		return nil, ErrDivisionByZero
	}
	return la / rb, nil
}

// Pow exponentiates numerically and always yields a Float.
func Pow(a, b Value) (Value, error) {
	la, aok := toFloat(a)
	rb, bok := toFloat(b)
	if !aok || !bok {
		return nil, opError("**", a, b)
	}
	return math.Pow(la, rb), nil
}

// Mod takes the remainder; Int%Int stays Int, anything involving a Float
// yields a Float. A zero divisor is an error.
func Mod(a, b Value) (Value, error) {
	if la, ok := toInt(a); ok {
		if rb, ok := toInt(b); ok {
			if rb == 0 {
				return nil, ErrDivisionByZero
			}
			return la % rb, nil
		}
	}
	la, aok := toFloat(a)
	rb, bok := toFloat(b)
	if !aok || !bok {
		return nil, opError("%", a, b)
	}
	if rb == 0 {
		return nil, ErrDivisionByZero
	}
	return math.Mod(la, rb), nil
}

// MakeRange builds a Range from two integer-coercible endpoints.
func MakeRange(a, b Value) (Value, error) {
	la, aok := toInt(a)
	rb, bok := toInt(b)
	if !aok || !bok {
		return nil, opError("..", a, b)
	}
	return Range{Start: la, End: rb}, nil
}

// Compare orders two values, returning a negative, zero or positive result.
// Numbers (with Bool as 0/1) order numerically across kinds; strings order
// lexicographically. Other pairs do not order; op names the operator for
// the error.
func Compare(op string, a, b Value) (int, error) {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs), nil
		}
		return 0, opError(op, a, b)
	}
	la, aok := toFloat(a)
	rb, bok := toFloat(b)
	if !aok || !bok {
		return 0, opError(op, a, b)
	}
	switch {
	case la < rb:
		return -1, nil
	case la > rb:
		return 1, nil
	default:
		return 0, nil
	}
}

// Match reports containment: substring or regex match against a string,
// element containment in a list, key presence in a map, column presence in
// a table.
func Match(a, b Value) (bool, error) {
	switch a := a.(type) {
	case string:
		switch b := b.(type) {
		case string:
			return strings.Contains(a, b), nil
		case *Regex:
			return b.Pattern.MatchString(a), nil
		}
	case *List:
		return a.Contains(b), nil
	case *Map:
		if key, ok := b.(string); ok {
			return a.HasKey(key), nil
		}
	case *Table:
		if key, ok := b.(string); ok {
			return a.HasColumn(key), nil
		}
	}
	return false, opError("match", a, b)
}

// Neg negates a numeric value.
func Neg(v Value) (Value, error) {
	switch v := v.(type) {
	case int64:
		if v == math.MinInt64 {
			return nil, &OverflowError{Op: "-"}
		}
		return -v, nil
	case float64:
		return -v, nil
	case bool:
		return -boolInt(v), nil
	}
	return nil, &UnaryOpError{Op: "-", Operand: Kind(v)}
}

func repeatString(s string, count Value, lhs, rhs Value) (Value, error) {
	n, ok := toInt(count)
	if !ok {
		return nil, opError("*", lhs, rhs)
	}
	if s == "" || n <= 0 {
		return "", nil
	}
	if n > int64(math.MaxInt)/int64(len(s)) {
		return nil, &OverflowError{Op: "*"}
	}
	return strings.Repeat(s, int(n)), nil
}

func repeatList(list *List, count Value, lhs, rhs Value) (Value, error) {
	n, ok := toInt(count)
	if !ok {
		return nil, opError("*", lhs, rhs)
	}
	return list.repeat(n)
}

func addInt(a, b int64) (Value, error) {
	s := a + b
	if (s > a) != (b > 0) && b != 0 {
		return nil, &OverflowError{Op: "+"}
	}
	return s, nil
}

func subInt(a, b int64) (Value, error) {
	d := a - b
	if (d < a) != (b > 0) && b != 0 {
		return nil, &OverflowError{Op: "-"}
	}
	return d, nil
}

func mulInt(a, b int64) (Value, error) {
	if a == 0 || b == 0 {
		return int64(0), nil
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return nil, &OverflowError{Op: "*"}
	}
	p := a * b
	if p/b != a {
		return nil, &OverflowError{Op: "*"}
	}
	return p, nil
}
