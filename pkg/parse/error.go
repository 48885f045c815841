package parse

import (
	"github.com/krillsh/krill/pkg/diag"
)

// ErrorKind classifies syntax errors.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	ExpectedToken
	InvalidRegex
	InvalidIdentifier
	InvalidEscape
	ComparisonChaining
	BreakOutsideLoop
	ContinueOutsideLoop
	ReturnOutsideFunction
)

// Error is a syntax error. Parsing stops at the first one; there is no
// recovery and no partial AST.
type Error struct {
	Kind ErrorKind
	Diag diag.Error
}

func (e *Error) Error() string { return e.Diag.Error() }

// Message returns the error text without position information.
func (e *Error) Message() string { return e.Diag.Message }

// Show renders the error with its source context.
func (e *Error) Show(indent string) string { return e.Diag.Show(indent) }

// Range returns the span of the offending source.
func (e *Error) Range() diag.Ranging { return e.Diag.Range() }

func syntaxError(kind ErrorKind, msg string, src Source, r diag.Ranger) *Error {
	return &Error{
		Kind: kind,
		Diag: diag.Error{
			Type:    "syntax error",
			Message: msg,
			Context: *diag.NewContext(src.Name, src.Code, r),
		},
	}
}
