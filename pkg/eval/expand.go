package eval

import (
	"strings"

	"github.com/krillsh/krill/pkg/glob"
	"github.com/krillsh/krill/pkg/parse"
	"github.com/krillsh/krill/pkg/vals"
)

// argPart is one evaluated fragment of an argument. Only bare fragments
// keep their glob metacharacters live; everything else matches literally.
type argPart struct {
	value vals.Value
	bare  bool
}

func (c *Context) evalArgs(args []*parse.Argument) ([]vals.Value, error) {
	values := make([]vals.Value, len(args))
	for i, arg := range args {
		v, err := c.evalArgument(arg)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// evalArgument resolves one argument. Without glob metacharacters the parts
// concatenate into a single string, or pass through unchanged when the
// argument is a single part. With metacharacters the parts become a pattern
// matched against the filesystem; matching nothing is an error rather than
// an empty expansion, and a match always yields a List even when single.
func (c *Context) evalArgument(arg *parse.Argument) (vals.Value, error) {
	isGlob := false
	for _, part := range arg.Parts {
		if bare, ok := part.(*parse.BareArg); ok && glob.HasMeta(bare.Text) {
			isGlob = true
			break
		}
	}

	parts := make([]argPart, 0, len(arg.Parts))
	for i, part := range arg.Parts {
		switch part := part.(type) {
		case *parse.BareArg:
			text := part.Text
			if i == 0 && strings.HasPrefix(text, "~") {
				home := c.ev.Home
				if isGlob {
					home = glob.Escape(home)
				}
				text = home + text[1:]
			}
			parts = append(parts, argPart{value: text, bare: true})
		case *parse.QuotedArg:
			parts = append(parts, argPart{value: part.Text})
		case *parse.ExpandArg:
			s, err := c.evalExpand(part.Expand)
			if err != nil {
				return nil, err
			}
			parts = append(parts, argPart{value: s})
		case *parse.VarArg:
			v, err := c.evalVar(part.Var)
			if err != nil {
				return nil, err
			}
			parts = append(parts, argPart{value: v})
		case *parse.IntArg:
			if !part.Value.IsInt64() {
				return nil, &IntRangeError{Text: part.Text}
			}
			parts = append(parts, argPart{value: part.Value.Int64()})
		case *parse.FloatArg:
			parts = append(parts, argPart{value: part.Value})
		case *parse.ExprArg:
			v, err := c.evalExpr(part.Expr)
			if err != nil {
				return nil, err
			}
			parts = append(parts, argPart{value: v})
		}
	}

	if isGlob {
		return c.expandGlob(parts)
	}
	if len(parts) == 1 {
		return parts[0].value, nil
	}
	var b strings.Builder
	for _, part := range parts {
		s, err := vals.ToString(part.value)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func (c *Context) expandGlob(parts []argPart) (vals.Value, error) {
	var b strings.Builder
	for _, part := range parts {
		s, err := vals.ToString(part.value)
		if err != nil {
			return nil, err
		}
		if part.bare {
			b.WriteString(s)
		} else {
			b.WriteString(glob.Escape(s))
		}
	}
	pattern := b.String()

	var matches []vals.Value
	glob.Glob(c.ev.Fs, pattern, func(path string) bool {
		matches = append(matches, path)
		return true
	})
	if len(matches) == 0 {
		return nil, &NoMatchError{Pattern: pattern}
	}
	return vals.NewList(matches...), nil
}

// argString resolves an argument that must be a single string, such as a
// redirect target.
func (c *Context) argString(arg *parse.Argument) (string, error) {
	v, err := c.evalArgument(arg)
	if err != nil {
		return "", err
	}
	return vals.ToString(v)
}
