package eval

import (
	"errors"
	"strings"

	"github.com/krillsh/krill/pkg/parse"
	"github.com/krillsh/krill/pkg/vals"
)

func (c *Context) evalExpr(e parse.Expr) (vals.Value, error) {
	switch e := e.(type) {
	case *parse.VarRef:
		return c.evalVar(e)
	case *parse.Binary:
		return c.evalBinary(e)
	case *parse.Unary:
		return c.evalUnary(e)
	case *parse.SubExpr:
		return c.evalExpr(e.Inner)
	case *parse.ErrorCheck:
		return c.evalErrorCheck(e)
	case *parse.Column:
		container, err := c.evalExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		return vals.Column(container, e.Name)
	case *parse.Index:
		return c.evalIndex(e)
	case *parse.Closure:
		return &Fn{Params: paramNames(e.Params), Body: e.Body, captured: c.fm}, nil
	case *parse.Pipeline:
		return c.evalPipe(e)

	case *parse.StringLit:
		return e.Value, nil
	case *parse.IntLit:
		if !e.Value.IsInt64() {
			return nil, &IntRangeError{Text: e.Text}
		}
		return e.Value.Int64(), nil
	case *parse.FloatLit:
		return e.Value, nil
	case *parse.BoolLit:
		return e.Value, nil
	case *parse.ListLit:
		return c.evalList(e)
	case *parse.MapLit:
		return c.evalMap(e)
	case *parse.RegexLit:
		return &vals.Regex{Pattern: e.Pattern, Text: e.Text}, nil
	case *parse.ExpandLit:
		return c.evalExpand(e.Expand)
	}
	return nil, nil
}

func (c *Context) evalVar(ref *parse.VarRef) (vals.Value, error) {
	v, ok := c.fm.GetVar(ref.Name)
	if !ok {
		return nil, &UndefinedVarError{Name: ref.Name}
	}
	return v, nil
}

func (c *Context) evalBinary(e *parse.Binary) (vals.Value, error) {
	// && and || short-circuit and yield a Bool, so they cannot share the
	// eager path below.
	switch e.Op {
	case parse.OpAnd:
		lhs, err := c.evalExpr(e.LHS)
		if err != nil {
			return nil, err
		}
		if !vals.Bool(lhs) {
			return false, nil
		}
		rhs, err := c.evalExpr(e.RHS)
		if err != nil {
			return nil, err
		}
		return vals.Bool(rhs), nil
	case parse.OpOr:
		lhs, err := c.evalExpr(e.LHS)
		if err != nil {
			return nil, err
		}
		if vals.Bool(lhs) {
			return true, nil
		}
		rhs, err := c.evalExpr(e.RHS)
		if err != nil {
			return nil, err
		}
		return vals.Bool(rhs), nil
	}

	lhs, err := c.evalExpr(e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := c.evalExpr(e.RHS)
	if err != nil {
		return nil, err
	}
	return applyBinOp(e.Op, lhs, rhs)
}

// applyBinOp applies an eager binary operator through the per-operator
// coercion functions of the value model.
func applyBinOp(op parse.BinOp, lhs, rhs vals.Value) (vals.Value, error) {
	switch op {
	case parse.OpAdd:
		return vals.Add(lhs, rhs)
	case parse.OpSub:
		return vals.Sub(lhs, rhs)
	case parse.OpMul:
		return vals.Mul(lhs, rhs)
	case parse.OpDiv:
		return vals.Div(lhs, rhs)
	case parse.OpMod:
		return vals.Mod(lhs, rhs)
	case parse.OpPow:
		return vals.Pow(lhs, rhs)
	case parse.OpRange:
		return vals.MakeRange(lhs, rhs)
	case parse.OpEq:
		return vals.Equal(lhs, rhs), nil
	case parse.OpNe:
		return !vals.Equal(lhs, rhs), nil
	case parse.OpLt, parse.OpLe, parse.OpGt, parse.OpGe:
		ord, err := vals.Compare(op.String(), lhs, rhs)
		if err != nil {
			return nil, err
		}
		switch op {
		case parse.OpLt:
			return ord < 0, nil
		case parse.OpLe:
			return ord <= 0, nil
		case parse.OpGt:
			return ord > 0, nil
		default:
			return ord >= 0, nil
		}
	}
	return nil, nil
}

func (c *Context) evalUnary(e *parse.Unary) (vals.Value, error) {
	operand, err := c.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	if e.Op == parse.OpNot {
		return vals.Not(operand), nil
	}
	return vals.Neg(operand)
}

// evalErrorCheck runs the inner expression for its success. Runtime errors
// fold into false; exit and interrupt still propagate since they are not
// failures of the expression.
func (c *Context) evalErrorCheck(e *parse.ErrorCheck) (vals.Value, error) {
	_, err := c.evalExpr(e.Inner)
	if err == nil {
		return true, nil
	}
	var exit *ExitError
	if errors.As(err, &exit) || errors.Is(err, ErrInterrupted) {
		return nil, err
	}
	return false, nil
}

func (c *Context) evalIndex(e *parse.Index) (vals.Value, error) {
	container, err := c.evalExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	index, err := c.evalExpr(e.Index)
	if err != nil {
		return nil, err
	}
	return vals.Index(container, index)
}

func (c *Context) evalList(e *parse.ListLit) (vals.Value, error) {
	items := make([]vals.Value, len(e.Items))
	for i, item := range e.Items {
		v, err := c.evalExpr(item)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return vals.NewList(items...), nil
}

func (c *Context) evalMap(e *parse.MapLit) (vals.Value, error) {
	m := vals.NewMap()
	for _, pair := range e.Pairs {
		kv, err := c.evalExpr(pair.Key)
		if err != nil {
			return nil, err
		}
		key, err := vals.ToString(kv)
		if err != nil {
			return nil, err
		}
		v, err := c.evalExpr(pair.Value)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

// evalExpand resolves an interpolated string: literal fragments pass
// through, embedded variables and expressions stringify. Containers do not
// stringify implicitly.
func (c *Context) evalExpand(expand *parse.Expand) (string, error) {
	var b strings.Builder
	for _, part := range expand.Parts {
		switch part := part.(type) {
		case *parse.ExpandText:
			b.WriteString(part.Text)
		case *parse.ExpandVar:
			v, err := c.evalVar(part.Var)
			if err != nil {
				return "", err
			}
			s, err := vals.ToString(v)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case *parse.ExpandExpr:
			v, err := c.evalExpr(part.Expr)
			if err != nil {
				return "", err
			}
			s, err := vals.ToString(v)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}
