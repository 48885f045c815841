package eval

import (
	"os"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/spf13/afero"

	"github.com/krillsh/krill/pkg/parse"
	"github.com/krillsh/krill/pkg/vals"
)

// evalPipe runs a pipeline left to right. Each stage's output becomes the
// next stage's input; redirects attach to the stage before them, input
// redirects replacing its input and output redirects draining its output
// into a file. The pipe's value is the last stage's unpacked output.
func (c *Context) evalPipe(pipe *parse.Pipeline) (vals.Value, error) {
	in := c.in
	var out *OutputStream
	items := pipe.Items
	for i := 0; i < len(items); {
		stage := items[i]
		i++
		var redirs []*parse.Redirect
		for i < len(items) {
			r, ok := items[i].(*parse.Redirect)
			if !ok {
				break
			}
			redirs = append(redirs, r)
			i++
		}

		for _, r := range redirs {
			if r.Dir != parse.RedirIn {
				continue
			}
			content, err := c.readRedirect(r)
			if err != nil {
				return nil, err
			}
			in = NewValueStream([]vals.Value{content})
		}

		out = &OutputStream{}
		stageCtx := c.withStreams(in, out)
		if call, ok := stage.(*parse.Call); ok {
			if err := stageCtx.evalCall(call); err != nil {
				return nil, err
			}
		} else {
			v, err := stageCtx.evalExpr(stage)
			if err != nil {
				return nil, err
			}
			out.Push(v)
		}

		for _, r := range redirs {
			if r.Dir != parse.RedirOut {
				continue
			}
			if err := c.writeRedirect(r, out); err != nil {
				return nil, err
			}
			out = &OutputStream{}
		}
		in = out.Stream()
	}
	return out.Unpack(), nil
}

func (c *Context) readRedirect(r *parse.Redirect) (vals.Value, error) {
	path, err := c.argString(r.File)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(c.ev.Fs, path)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (c *Context) writeRedirect(r *parse.Redirect, out *OutputStream) error {
	path, err := c.argString(r.File)
	if err != nil {
		return err
	}
	text, err := out.Stream().String()
	if err != nil {
		return err
	}
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if r.Append {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := c.ev.Fs.OpenFile(path, flag, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// evalCall resolves and runs one command. Resolution order: a function
// value used directly as the command, functions in scope, one round of
// alias expansion, builtins, then external programs.
func (c *Context) evalCall(call *parse.Call) error {
	// A sole $var command whose value is a function calls it directly,
	// without name resolution.
	if len(call.Command) == 1 {
		if vc, ok := call.Command[0].(*parse.VarCmd); ok {
			v, err := c.evalVar(vc.Var)
			if err != nil {
				return err
			}
			if fn, ok := v.(*Fn); ok {
				args, err := c.evalArgs(call.Args)
				if err != nil {
					return err
				}
				result, err := fn.Call(c, args)
				if err != nil {
					return err
				}
				c.out.Push(result)
				return nil
			}
		}
	}

	name, err := c.commandName(call.Command)
	if err != nil {
		return err
	}
	args, err := c.evalArgs(call.Args)
	if err != nil {
		return err
	}

	if fn, ok := c.fm.GetFn(name); ok {
		return c.runFn(fn, args)
	}

	d := c.ev.Dispatcher
	if d == nil {
		return &UndefinedCommandError{Name: name}
	}

	if replacement, ok := d.Alias(name); ok {
		words, err := shlex.Split(replacement, true)
		if err == nil && len(words) > 0 {
			name = words[0]
			extra := make([]vals.Value, len(words)-1)
			for i, w := range words[1:] {
				extra[i] = w
			}
			args = append(extra, args...)
			// One round only; an alias naming itself falls through to
			// the lookups below.
			if fn, ok := c.fm.GetFn(name); ok {
				return c.runFn(fn, args)
			}
		}
	}

	if builtin, ok := d.Builtin(name); ok {
		result, err := builtin(c, args)
		if err != nil {
			return err
		}
		c.out.Push(result)
		return nil
	}

	return c.runExternal(name, args)
}

func (c *Context) runFn(fn *Fn, args []vals.Value) error {
	result, err := fn.Call(c, args)
	if err != nil {
		return err
	}
	c.out.Push(result)
	return nil
}

// runExternal spawns an external program with flattened string arguments,
// its stdin fed from the input stream. Captured stdout becomes the stage's
// value; the exit status lands in $?.
func (c *Context) runExternal(name string, args []vals.Value) error {
	var argv []string
	for _, arg := range args {
		if err := vals.ToStrings(arg, &argv); err != nil {
			return err
		}
	}
	input, err := c.in.String()
	if err != nil {
		return err
	}
	stdout, status, err := c.ev.Dispatcher.RunExternal(c.goCtx, name, argv, input, c.fm.Exported())
	if err != nil {
		return err
	}
	c.ev.SetStatus(status)
	if stdout != "" {
		c.out.Push(strings.TrimSuffix(stdout, "\n"))
	}
	return nil
}

// commandName builds the command name from its parts; variables and
// interpolations stringify.
func (c *Context) commandName(parts []parse.CommandPart) (string, error) {
	var b strings.Builder
	for _, part := range parts {
		switch part := part.(type) {
		case *parse.BareCmd:
			b.WriteString(part.Text)
		case *parse.VarCmd:
			v, err := c.evalVar(part.Var)
			if err != nil {
				return "", err
			}
			s, err := vals.ToString(v)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case *parse.ExpandCmd:
			s, err := c.evalExpand(part.Expand)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}
