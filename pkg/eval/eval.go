// Package eval implements the tree-walking evaluator: lexical scoping over
// a frame chain, closures, pipelines, and argument expansion. Builtins,
// aliases and external processes are reached through the Dispatcher
// interface and are not part of this package.
package eval

import (
	"context"
	"sync/atomic"

	"github.com/spf13/afero"

	"github.com/krillsh/krill/pkg/parse"
	"github.com/krillsh/krill/pkg/vals"
)

// DefaultMaxDepth is the recursion limit used when the configuration does
// not override it.
const DefaultMaxDepth = 1000

// BuiltinFn is the calling contract for builtin commands. Arguments arrive
// fully expanded; the returned value is pushed to the caller's output
// stream.
type BuiltinFn func(c *Context, args []vals.Value) (vals.Value, error)

// Dispatcher resolves command names that are not functions in scope. It is
// implemented by the shell layer.
type Dispatcher interface {
	// Alias returns the replacement text for an alias, if one is defined.
	Alias(name string) (string, bool)
	// Builtin returns the named builtin, if one exists.
	Builtin(name string) (BuiltinFn, bool)
	// RunExternal resolves name on PATH, spawns it with the given
	// arguments and environment, feeds it input on stdin and returns its
	// captured stdout and exit status.
	RunExternal(ctx context.Context, name string, args []string, input string, env []string) (stdout string, status int, err error)
}

// Interrupt is a cancellation token polled between compounds. It is safe
// for concurrent use; a signal handler sets it while the evaluator polls.
type Interrupt struct {
	set atomic.Bool
}

// Set marks the token. The evaluator aborts at the next poll.
func (i *Interrupt) Set() { i.set.Store(true) }

// Clear resets the token.
func (i *Interrupt) Clear() { i.set.Store(false) }

// Pending reports whether the token is set.
func (i *Interrupt) Pending() bool { return i.set.Load() }

// Evaler evaluates parsed source against a global frame.
type Evaler struct {
	// Global is the outermost frame, shared by all evaluations.
	Global *Frame
	// Dispatcher resolves builtins, aliases and external commands.
	Dispatcher Dispatcher
	// Fs is the filesystem used for glob expansion and redirects.
	Fs afero.Fs
	// Home is the directory ~ expands to.
	Home string
	// MaxDepth is the function call recursion limit.
	MaxDepth int

	intr Interrupt
}

// New returns an Evaler with a fresh global frame. The $? status variable
// starts at 0.
func New(d Dispatcher) *Evaler {
	ev := &Evaler{
		Global:     NewFrame(),
		Dispatcher: d,
		Fs:         afero.NewOsFs(),
		MaxDepth:   DefaultMaxDepth,
	}
	ev.Global.vars["?"] = &binding{value: int64(0)}
	return ev
}

// Interrupt returns the evaluator's interrupt token.
func (ev *Evaler) Interrupt() *Interrupt { return &ev.intr }

// SetStatus stores the last pipeline's exit status in $?.
func (ev *Evaler) SetStatus(status int) {
	ev.Global.vars["?"] = &binding{value: int64(status)}
}

// Eval evaluates a parsed source unit in the global scope and returns the
// unpacked output: Null for no output, the value itself for one, a List
// otherwise. Evaluation errors carry no partial output.
func (ev *Evaler) Eval(ctx context.Context, ast *parse.AST) (vals.Value, error) {
	out := &OutputStream{}
	c := &Context{
		ev:    ev,
		goCtx: ctx,
		fm:    ev.Global,
		in:    NewValueStream(nil),
		out:   out,
	}
	if _, err := c.evalSequence(ast.Sequence); err != nil {
		return nil, err
	}
	return out.Unpack(), nil
}

// control is the signal a statement reports alongside its error: how the
// enclosing construct should continue. Only ctlReturn carries a value.
type control struct {
	kind  ctlKind
	value vals.Value
}

type ctlKind int

const (
	ctlNone ctlKind = iota
	ctlBreak
	ctlContinue
	ctlReturn
)

var ctlDone = control{kind: ctlNone}

// Context carries everything one evaluation step needs: the evaluator, the
// Go context, the current frame and the stage's input and output streams.
// Contexts are cheap copies; forking one never affects the parent.
type Context struct {
	ev    *Evaler
	goCtx context.Context
	fm    *Frame
	in    *ValueStream
	out   *OutputStream
}

// Evaler returns the evaluator.
func (c *Context) Evaler() *Evaler { return c.ev }

// Frame returns the current scope.
func (c *Context) Frame() *Frame { return c.fm }

// In returns the input stream of the current pipeline stage.
func (c *Context) In() *ValueStream { return c.in }

// Out returns the output stream of the current pipeline stage.
func (c *Context) Out() *OutputStream { return c.out }

// GoContext returns the Go context evaluation runs under.
func (c *Context) GoContext() context.Context { return c.goCtx }

// CallFn invokes a function value with already-evaluated arguments. It is
// the entry point for builtins that take closures.
func (c *Context) CallFn(fn *Fn, args []vals.Value) (vals.Value, error) {
	return fn.Call(c, args)
}

func (c *Context) withFrame(fm *Frame) *Context {
	fork := *c
	fork.fm = fm
	return &fork
}

func (c *Context) withStreams(in *ValueStream, out *OutputStream) *Context {
	fork := *c
	fork.in = in
	fork.out = out
	return &fork
}

// poll checks the interrupt token and context cancellation. It runs once
// per compound, so a single expression is never interrupted mid-flight.
func (c *Context) poll() error {
	if c.ev.intr.Pending() {
		return ErrInterrupted
	}
	if c.goCtx != nil && c.goCtx.Err() != nil {
		return ErrInterrupted
	}
	return nil
}

// evalSequence evaluates compounds in order. Expression results go to the
// output stream; the first non-ctlNone signal or error stops the sequence.
func (c *Context) evalSequence(seq []parse.Compound) (control, error) {
	for _, compound := range seq {
		if err := c.poll(); err != nil {
			return ctlDone, err
		}
		switch node := compound.(type) {
		case parse.Statement:
			ctl, err := c.evalStmt(node)
			if err != nil || ctl.kind != ctlNone {
				return ctl, err
			}
		case parse.Expr:
			v, err := c.evalExpr(node)
			if err != nil {
				return ctlDone, err
			}
			c.out.Push(v)
		}
	}
	return ctlDone, nil
}

// evalBlock runs a block in a fresh child scope.
func (c *Context) evalBlock(block *parse.Block) (control, error) {
	return c.withFrame(c.fm.child()).evalSequence(block.Sequence)
}

func (c *Context) evalStmt(st parse.Statement) (control, error) {
	switch st := st.(type) {
	case *parse.Block:
		return c.evalBlock(st)
	case *parse.Decl:
		return c.evalDecl(st)
	case *parse.Assignment:
		rhs, err := c.evalExpr(st.Rhs)
		if err != nil {
			return ctlDone, err
		}
		return ctlDone, c.fm.AssignVar(st.Var.Name, rhs)
	case *parse.AssignOp:
		return c.evalAssignOp(st)
	case *parse.IfStmt:
		return c.evalIf(st)
	case *parse.WhileStmt:
		return c.evalWhile(st)
	case *parse.LoopStmt:
		return c.evalLoop(st)
	case *parse.ForStmt:
		return c.evalFor(st)
	case *parse.FnDecl:
		c.fm.DefineFn(st.Name, &Fn{
			Name:     st.Name,
			Params:   paramNames(st.Params),
			Body:     st.Body,
			captured: c.fm,
		})
		return ctlDone, nil
	case *parse.ReturnStmt:
		var v vals.Value
		if st.Value != nil {
			var err error
			v, err = c.evalExpr(st.Value)
			if err != nil {
				return ctlDone, err
			}
		}
		return control{kind: ctlReturn, value: v}, nil
	case *parse.BreakStmt:
		return control{kind: ctlBreak}, nil
	case *parse.ContinueStmt:
		return control{kind: ctlContinue}, nil
	}
	return ctlDone, nil
}

func (c *Context) evalDecl(st *parse.Decl) (control, error) {
	var rhs vals.Value
	if st.Rhs != nil {
		var err error
		rhs, err = c.evalExpr(st.Rhs)
		if err != nil {
			return ctlDone, err
		}
	}
	return ctlDone, c.fm.DeclareVar(st.Var.Name, rhs, st.Export)
}

func (c *Context) evalAssignOp(st *parse.AssignOp) (control, error) {
	old, ok := c.fm.GetVar(st.Var.Name)
	if !ok {
		return ctlDone, &UndefinedVarError{Name: st.Var.Name}
	}
	rhs, err := c.evalExpr(st.Rhs)
	if err != nil {
		return ctlDone, err
	}
	v, err := applyBinOp(st.Op, old, rhs)
	if err != nil {
		return ctlDone, err
	}
	return ctlDone, c.fm.AssignVar(st.Var.Name, v)
}

func (c *Context) evalIf(st *parse.IfStmt) (control, error) {
	cond, err := c.evalExpr(st.Cond)
	if err != nil {
		return ctlDone, err
	}
	if vals.Bool(cond) {
		return c.evalBlock(st.Body)
	}
	if st.Else != nil {
		return c.evalStmt(st.Else)
	}
	return ctlDone, nil
}

func (c *Context) evalWhile(st *parse.WhileStmt) (control, error) {
	for {
		if err := c.poll(); err != nil {
			return ctlDone, err
		}
		cond, err := c.evalExpr(st.Cond)
		if err != nil {
			return ctlDone, err
		}
		if !vals.Bool(cond) {
			return ctlDone, nil
		}
		ctl, err := c.evalBlock(st.Body)
		if err != nil {
			return ctlDone, err
		}
		switch ctl.kind {
		case ctlBreak:
			return ctlDone, nil
		case ctlReturn:
			return ctl, nil
		}
	}
}

func (c *Context) evalLoop(st *parse.LoopStmt) (control, error) {
	for {
		if err := c.poll(); err != nil {
			return ctlDone, err
		}
		ctl, err := c.evalBlock(st.Body)
		if err != nil {
			return ctlDone, err
		}
		switch ctl.kind {
		case ctlBreak:
			return ctlDone, nil
		case ctlReturn:
			return ctl, nil
		}
	}
}

func (c *Context) evalFor(st *parse.ForStmt) (control, error) {
	iter, err := c.evalExpr(st.Iter)
	if err != nil {
		return ctlDone, err
	}
	var (
		ctl     control
		iterErr error
	)
	err = vals.Iterate(iter, func(item vals.Value) bool {
		if iterErr = c.poll(); iterErr != nil {
			return false
		}
		body := c.fm.child()
		body.vars[st.Var.Name] = &binding{value: item}
		ctl, iterErr = c.withFrame(body).evalSequence(st.Body.Sequence)
		if iterErr != nil {
			return false
		}
		switch ctl.kind {
		case ctlBreak:
			ctl = ctlDone
			return false
		case ctlContinue:
			ctl = ctlDone
			return true
		case ctlReturn:
			return false
		}
		return true
	})
	if iterErr != nil {
		return ctlDone, iterErr
	}
	if err != nil {
		return ctlDone, err
	}
	return ctl, nil
}

func paramNames(params []*parse.VarRef) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
