package eval

import (
	"github.com/krillsh/krill/pkg/vals"
)

// binding is one variable slot. Exported bindings mirror into the process
// environment and therefore only hold scalars.
type binding struct {
	value    vals.Value
	exported bool
}

// Frame is one lexical scope: variable and function bindings plus a link to
// the enclosing scope. Frames form a singly-linked chain from innermost to
// outermost; closures keep their defining chain alive by holding a
// reference, so a closure observes later mutation of any binding reachable
// through it.
type Frame struct {
	vars   map[string]*binding
	fns    map[string]*Fn
	parent *Frame

	// callRoot marks the outermost frame of a function call (and the
	// global frame). Auto-vivified assignments land here.
	callRoot bool
	// depth counts nested function calls, checked against the evaluator's
	// recursion limit.
	depth int
}

// NewFrame returns a global frame.
func NewFrame() *Frame {
	return &Frame{
		vars:     make(map[string]*binding),
		fns:      make(map[string]*Fn),
		callRoot: true,
	}
}

// child returns a block scope nested in fm.
func (fm *Frame) child() *Frame {
	return &Frame{
		vars:   make(map[string]*binding),
		fns:    make(map[string]*Fn),
		parent: fm,
		depth:  fm.depth,
	}
}

// callFrame returns the root frame of a function call whose lexical parent
// is the closure's captured frame.
func callFrame(captured *Frame, depth int) *Frame {
	return &Frame{
		vars:     make(map[string]*binding),
		fns:      make(map[string]*Fn),
		parent:   captured,
		callRoot: true,
		depth:    depth,
	}
}

// GetVar looks up a variable, walking outward. The first hit wins.
func (fm *Frame) GetVar(name string) (vals.Value, bool) {
	for f := fm; f != nil; f = f.parent {
		if b, ok := f.vars[name]; ok {
			return b.value, true
		}
	}
	return nil, false
}

// DeclareVar binds a name in the innermost frame, shadowing any outer
// binding. Re-declaring in the same frame replaces the binding.
func (fm *Frame) DeclareVar(name string, v vals.Value, exported bool) error {
	if exported && !exportable(v) {
		return &ExportError{Name: name, Kind: vals.Kind(v)}
	}
	fm.vars[name] = &binding{value: v, exported: exported}
	return nil
}

// AssignVar rewrites the binding in the frame that declared the name,
// walking outward. An undeclared name is created in the outermost frame of
// the current call.
func (fm *Frame) AssignVar(name string, v vals.Value) error {
	for f := fm; f != nil; f = f.parent {
		if b, ok := f.vars[name]; ok {
			if b.exported && !exportable(v) {
				return &ExportError{Name: name, Kind: vals.Kind(v)}
			}
			b.value = v
			return nil
		}
	}
	root := fm
	for !root.callRoot {
		root = root.parent
	}
	root.vars[name] = &binding{value: v}
	return nil
}

// DefineFn binds a function name in the innermost frame.
func (fm *Frame) DefineFn(name string, fn *Fn) {
	fm.fns[name] = fn
}

// GetFn looks up a function, walking outward.
func (fm *Frame) GetFn(name string) (*Fn, bool) {
	for f := fm; f != nil; f = f.parent {
		if fn, ok := f.fns[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Exported collects all exported bindings visible from fm as name=value
// strings, innermost shadowing outermost.
func (fm *Frame) Exported() []string {
	seen := make(map[string]bool)
	var env []string
	for f := fm; f != nil; f = f.parent {
		for name, b := range f.vars {
			if seen[name] {
				continue
			}
			seen[name] = true
			if !b.exported {
				continue
			}
			s, err := vals.ToString(b.value)
			if err != nil {
				continue
			}
			env = append(env, name+"="+s)
		}
	}
	return env
}

func exportable(v vals.Value) bool {
	switch vals.Kind(v) {
	case "bool", "int", "float", "string":
		return true
	}
	return false
}
