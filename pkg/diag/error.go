package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Error represents an error with context that can be shown.
type Error struct {
	Type    string
	Message string
	Context Context
}

// Error returns a plain text representation of the error.
func (e *Error) Error() string {
	return e.errorType() + ": " + e.errorPosition() + ": " + e.Message
}

// Range returns the range of the error.
func (e *Error) Range() Ranging {
	return e.Context.Range()
}

var messageStyle = color.New(color.FgRed, color.Bold)

// Show shows the error, with the error message styled and the context
// rendered below it.
func (e *Error) Show(indent string) string {
	header := e.errorType() + ": " + messageStyle.Sprint(e.Message)
	return header + "\n" + indent + "  " + e.Context.ShowCompact(indent+"  ")
}

func (e *Error) errorType() string {
	if e.Type == "" {
		return "error"
	}
	return e.Type
}

func (e *Error) errorPosition() string {
	return fmt.Sprintf("%s, line %d", e.Context.Name, 1+strings.Count(e.Context.Source[:e.Context.From], "\n"))
}
