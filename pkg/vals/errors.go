package vals

import (
	"errors"
	"fmt"
)

// ErrDivisionByZero is returned by Div and Mod with a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// OpError reports an operator applied to operand kinds it does not support.
type OpError struct {
	Op       string
	LHS, RHS string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("operator %s cannot be applied to %s and %s", e.Op, e.LHS, e.RHS)
}

func opError(op string, a, b Value) error {
	return &OpError{Op: op, LHS: Kind(a), RHS: Kind(b)}
}

// UnaryOpError reports a unary operator applied to an operand kind it does
// not support.
type UnaryOpError struct {
	Op      string
	Operand string
}

func (e *UnaryOpError) Error() string {
	return fmt.Sprintf("unary operator %s cannot be applied to %s", e.Op, e.Operand)
}

// OverflowError reports int64 overflow during arithmetic.
type OverflowError struct {
	Op string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("integer overflow in %s", e.Op)
}

// ConversionError reports a value that cannot be converted to the required
// kind.
type ConversionError struct {
	From, To string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

// IndexError reports an out-of-bounds index.
type IndexError struct {
	Index int64
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of bounds for length %d", e.Index, e.Len)
}

// ColumnError reports a missing table column or map key.
type ColumnError struct {
	Name string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Name)
}
