package eval

import (
	"errors"
	"fmt"
)

// ErrInterrupted is returned when evaluation is aborted by the interrupt
// token or by context cancellation.
var ErrInterrupted = errors.New("interrupted")

// ExitError requests process termination with a status. It travels as an
// error because it must cross every evaluation boundary; only the top-level
// driver consumes it.
type ExitError struct {
	Status int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit with status %d", e.Status) }

// RecursionError is raised before a call would exceed the recursion limit.
type RecursionError struct {
	Limit int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("max recursion depth of %d reached", e.Limit)
}

// UndefinedVarError is raised on reading or compound-assigning a name with
// no binding in scope.
type UndefinedVarError struct {
	Name string
}

func (e *UndefinedVarError) Error() string { return fmt.Sprintf("variable $%s is not defined", e.Name) }

// UndefinedCommandError is raised when a command name resolves to neither a
// function, an alias, a builtin, nor an external program.
type UndefinedCommandError struct {
	Name string
}

func (e *UndefinedCommandError) Error() string { return fmt.Sprintf("command %q not found", e.Name) }

// ArityError is raised when a function or closure is called with the wrong
// number of arguments.
type ArityError struct {
	Name string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	name := e.Name
	if name == "" {
		name = "closure"
	}
	return fmt.Sprintf("%s takes %d arguments, got %d", name, e.Want, e.Got)
}

// ExportError is raised when a non-scalar value is bound to an exported
// variable. Exported bindings mirror into the process environment, which
// only holds strings.
type ExportError struct {
	Name string
	Kind string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("cannot export %s value to $%s, only bool, int, float and string can be exported", e.Kind, e.Name)
}

// NoMatchError is raised when a glob pattern matches nothing.
type NoMatchError struct {
	Pattern string
}

func (e *NoMatchError) Error() string { return fmt.Sprintf("no matches found for %q", e.Pattern) }

// IntRangeError is raised when an integer literal does not fit in 64 bits.
type IntRangeError struct {
	Text string
}

func (e *IntRangeError) Error() string {
	return fmt.Sprintf("integer %s does not fit in 64 bits", e.Text)
}
