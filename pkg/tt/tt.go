// Package tt supports table-driven tests with little boilerplate.
package tt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Table is a list of test cases.
type Table []*Case

// Case is one test case: arguments plus expected return values. Build with
// Args(...).Rets(...).
type Case struct {
	args []any
	want []any
}

// Args starts a new Case with the given arguments.
func Args(args ...any) *Case {
	return &Case{args: args}
}

// Rets sets the expected return values and returns the case. An expected
// value may implement Matcher; otherwise values are compared with go-cmp
// using the options given to Test.
func (c *Case) Rets(want ...any) *Case {
	c.want = want
	return c
}

// FnToTest describes the function under test.
type FnToTest struct {
	name string
	body any
}

// Fn describes a function to test.
func Fn(name string, body any) *FnToTest {
	return &FnToTest{name: name, body: body}
}

// T is the subset of testing.T used by Test.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Matcher wraps the Match method.
type Matcher interface {
	Match(got any) bool
}

// Any matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(any) bool { return true }

// Test calls the function on each case and reports mismatching returns.
func Test(t T, fn *FnToTest, table Table, opts ...cmp.Option) {
	t.Helper()
	for _, c := range table {
		got := call(fn.body, c.args)
		for i, want := range c.want {
			if i >= len(got) || !matchOne(want, got[i], opts) {
				t.Errorf("%s(%s) -> %s, want %s",
					fn.name, sprintValues(c.args), sprintValues(got), sprintValues(c.want))
				break
			}
		}
	}
}

func matchOne(want, got any, opts []cmp.Option) bool {
	if m, ok := want.(Matcher); ok {
		return m.Match(got)
	}
	return cmp.Equal(want, got, opts...)
}

func sprintValues(values []any) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", v)
	}
	return b.String()
}

func call(fn any, args []any) []any {
	argValues := make([]reflect.Value, len(args))
	fnType := reflect.TypeOf(fn)
	for i, arg := range args {
		if arg == nil {
			// reflect.ValueOf(nil) is the zero Value; use a typed zero of the
			// parameter instead.
			argValues[i] = reflect.Zero(fnType.In(i))
		} else {
			argValues[i] = reflect.ValueOf(arg)
		}
	}
	retValues := reflect.ValueOf(fn).Call(argValues)
	rets := make([]any, len(retValues))
	for i, ret := range retValues {
		rets[i] = ret.Interface()
	}
	return rets
}
