package eval

import (
	"github.com/krillsh/krill/pkg/parse"
	"github.com/krillsh/krill/pkg/vals"
)

// Fn is a function value: a parameter list and a body paired with the frame
// chain captured at definition time. Named functions and anonymous closures
// share the representation; Name is empty for closures.
//
// Fn participates in the value model through vals.Kinder. Two Fns are equal
// only when they are the same allocation.
type Fn struct {
	Name     string
	Params   []string
	Body     *parse.Block
	captured *Frame
}

// Kind implements vals.Kinder.
func (*Fn) Kind() string { return "closure" }

// Call invokes the function. Arguments bind to parameters by position; a
// count mismatch is an ArityError. The body runs in a fresh call frame whose
// lexical parent is the captured frame, so free names resolve in the scope
// the function was defined in, not the caller's. An explicit return
// supplies the call value; otherwise the call evaluates to its unpacked
// output.
func (fn *Fn) Call(c *Context, args []vals.Value) (vals.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, &ArityError{Name: fn.Name, Want: len(fn.Params), Got: len(args)}
	}
	depth := c.fm.depth + 1
	if depth > c.ev.MaxDepth {
		return nil, &RecursionError{Limit: c.ev.MaxDepth}
	}
	body := callFrame(fn.captured, depth)
	for i, param := range fn.Params {
		body.vars[param] = &binding{value: args[i]}
	}

	out := &OutputStream{}
	callCtx := c.withFrame(body).withStreams(c.in, out)
	ctl, err := callCtx.evalSequence(fn.Body.Sequence)
	if err != nil {
		return nil, err
	}
	if ctl.kind == ctlReturn {
		return ctl.value, nil
	}
	return out.Unpack(), nil
}
