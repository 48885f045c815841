package shell

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/krillsh/krill/pkg/eval"
	"github.com/krillsh/krill/pkg/parse"
	"github.com/krillsh/krill/pkg/vals"
)

// builtinTable builds the builtin command table. Builtins that touch shell
// state (aliases, history) close over sh.
func builtinTable(sh *Shell) map[string]eval.BuiltinFn {
	return map[string]eval.BuiltinFn{
		"exit":    sh.exitFn,
		"cd":      sh.cdFn,
		"pwd":     pwdFn,
		"echo":    echoFn,
		"alias":   sh.aliasFn,
		"unalias": sh.unaliasFn,
		"len":     lenFn,
		"lines":   linesFn,
		"map":     mapFn,
		"filter":  filterFn,
		"first":   firstFn,
		"last":    lastFn,
		"unique":  uniqueFn,
		"assert":  assertFn,
		"history": sh.historyFn,
		"import":  sh.importFn,
	}
}

func (sh *Shell) exitFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	status := 0
	if len(args) > 0 {
		n, ok := args[0].(int64)
		if !ok {
			return nil, fmt.Errorf("exit: status must be an int, got %s", vals.Kind(args[0]))
		}
		status = int(n)
	}
	return nil, &eval.ExitError{Status: status}
}

func (sh *Shell) cdFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	var dir string
	switch len(args) {
	case 0:
		dir = c.Evaler().Home
		if dir == "" {
			return nil, errors.New("cd: home directory unknown")
		}
	case 1:
		s, err := vals.ToString(args[0])
		if err != nil {
			return nil, fmt.Errorf("cd: %w", err)
		}
		dir = s
	default:
		return nil, fmt.Errorf("cd: want at most 1 argument, got %d", len(args))
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("cd: %w", err)
	}
	return nil, nil
}

func pwdFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("pwd: %w", err)
	}
	return wd, nil
}

func echoFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	words := make([]string, len(args))
	for i, arg := range args {
		s, err := vals.ToString(arg)
		if err != nil {
			s = vals.Repr(arg)
		}
		words[i] = s
	}
	return strings.Join(words, " "), nil
}

// aliasFn with no arguments lists aliases as a name to replacement map, with
// one argument shows one alias, and with more defines one.
func (sh *Shell) aliasFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	switch len(args) {
	case 0:
		names := make([]string, 0, len(sh.aliases))
		for name := range sh.aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		m := vals.NewMap()
		for _, name := range names {
			m.Set(name, sh.aliases[name])
		}
		return m, nil
	case 1:
		name, err := vals.ToString(args[0])
		if err != nil {
			return nil, fmt.Errorf("alias: %w", err)
		}
		text, ok := sh.aliases[name]
		if !ok {
			return nil, fmt.Errorf("alias: no alias %q", name)
		}
		return text, nil
	default:
		name, err := vals.ToString(args[0])
		if err != nil {
			return nil, fmt.Errorf("alias: %w", err)
		}
		words := make([]string, len(args)-1)
		for i, arg := range args[1:] {
			s, err := vals.ToString(arg)
			if err != nil {
				return nil, fmt.Errorf("alias: %w", err)
			}
			words[i] = s
		}
		sh.aliases[name] = strings.Join(words, " ")
		return nil, nil
	}
}

func (sh *Shell) unaliasFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("unalias: want 1 argument, got %d", len(args))
	}
	name, err := vals.ToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("unalias: %w", err)
	}
	if _, ok := sh.aliases[name]; !ok {
		return nil, fmt.Errorf("unalias: no alias %q", name)
	}
	delete(sh.aliases, name)
	return nil, nil
}

func lenFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len: want 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case string:
		return int64(utf8.RuneCountInString(v)), nil
	case *vals.List:
		return int64(v.Len()), nil
	case *vals.Map:
		return int64(v.Len()), nil
	case *vals.Table:
		return int64(v.Len()), nil
	case vals.Range:
		return v.Len(), nil
	case vals.Binary:
		return int64(len(v)), nil
	default:
		return nil, fmt.Errorf("len: cannot take length of %s", vals.Kind(args[0]))
	}
}

// linesFn splits its argument, or the input stream when called without one,
// into a list of lines. A single trailing newline does not produce an empty
// final line.
func linesFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	var text string
	switch len(args) {
	case 0:
		s, err := c.In().String()
		if err != nil {
			return nil, fmt.Errorf("lines: %w", err)
		}
		text = s
	case 1:
		s, err := vals.ToString(args[0])
		if err != nil {
			return nil, fmt.Errorf("lines: %w", err)
		}
		text = s
	default:
		return nil, fmt.Errorf("lines: want at most 1 argument, got %d", len(args))
	}
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return vals.NewList(), nil
	}
	parts := strings.Split(text, "\n")
	items := make([]vals.Value, len(parts))
	for i, p := range parts {
		items[i] = p
	}
	return vals.NewList(items...), nil
}

func mapFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	fn, src, err := fnAndSource("map", c, args)
	if err != nil {
		return nil, err
	}
	out := []vals.Value{}
	var callErr error
	err = vals.Iterate(src, func(item vals.Value) bool {
		v, err := c.CallFn(fn, []vals.Value{item})
		if err != nil {
			callErr = err
			return false
		}
		out = append(out, v)
		return true
	})
	if callErr != nil {
		return nil, callErr
	}
	if err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	return vals.NewList(out...), nil
}

// filterFn keeps the items a closure maps to a truthy value. A non-closure
// first argument is a pattern instead: items are kept when they match it
// (substring for strings, regex, containment for containers).
func filterFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	if len(args) >= 1 {
		if _, ok := args[0].(*eval.Fn); !ok {
			return filterMatch(c, args)
		}
	}
	fn, src, err := fnAndSource("filter", c, args)
	if err != nil {
		return nil, err
	}
	out := []vals.Value{}
	var callErr error
	err = vals.Iterate(src, func(item vals.Value) bool {
		v, err := c.CallFn(fn, []vals.Value{item})
		if err != nil {
			callErr = err
			return false
		}
		if vals.Bool(v) {
			out = append(out, item)
		}
		return true
	})
	if callErr != nil {
		return nil, callErr
	}
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return vals.NewList(out...), nil
}

func filterMatch(c *eval.Context, args []vals.Value) (vals.Value, error) {
	if len(args) > 2 {
		return nil, fmt.Errorf("filter: want 1 or 2 arguments, got %d", len(args))
	}
	pattern := args[0]
	var src vals.Value
	if len(args) == 2 {
		src = args[1]
	} else {
		src = vals.NewList(c.In().All()...)
	}
	out := []vals.Value{}
	var matchErr error
	err := vals.Iterate(src, func(item vals.Value) bool {
		ok, err := vals.Match(item, pattern)
		if err != nil {
			matchErr = err
			return false
		}
		if ok {
			out = append(out, item)
		}
		return true
	})
	if matchErr != nil {
		return nil, fmt.Errorf("filter: %w", matchErr)
	}
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return vals.NewList(out...), nil
}

// fnAndSource resolves the fn+container calling convention shared by map and
// filter. The container may be omitted, in which case the input stream is
// collected.
func fnAndSource(name string, c *eval.Context, args []vals.Value) (*eval.Fn, vals.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, nil, fmt.Errorf("%s: want 1 or 2 arguments, got %d", name, len(args))
	}
	fn, ok := args[0].(*eval.Fn)
	if !ok {
		return nil, nil, fmt.Errorf("%s: first argument must be a closure, got %s", name, vals.Kind(args[0]))
	}
	if len(args) == 2 {
		return fn, args[1], nil
	}
	return fn, vals.NewList(c.In().All()...), nil
}

func firstFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	return edgeFn("first", c, args, false)
}

func lastFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	return edgeFn("last", c, args, true)
}

func edgeFn(name string, c *eval.Context, args []vals.Value, last bool) (vals.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: want 1 argument, got %d", name, len(args))
	}
	var found vals.Value
	any := false
	err := vals.Iterate(args[0], func(item vals.Value) bool {
		found = item
		any = true
		return last
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !any {
		return nil, fmt.Errorf("%s: empty %s", name, vals.Kind(args[0]))
	}
	return found, nil
}

func uniqueFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("unique: want 1 argument, got %d", len(args))
	}
	seen := make(map[uint64][]vals.Value)
	out := []vals.Value{}
	err := vals.Iterate(args[0], func(item vals.Value) bool {
		h := vals.Hash(item)
		for _, prev := range seen[h] {
			if vals.EqualStrict(prev, item) {
				return true
			}
		}
		seen[h] = append(seen[h], item)
		out = append(out, item)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("unique: %w", err)
	}
	return vals.NewList(out...), nil
}

func assertFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("assert: want 1 or 2 arguments, got %d", len(args))
	}
	if vals.Bool(args[0]) {
		return nil, nil
	}
	if len(args) == 2 {
		msg, err := vals.ToString(args[1])
		if err != nil {
			msg = vals.Repr(args[1])
		}
		return nil, fmt.Errorf("assertion failed: %s", msg)
	}
	return nil, errors.New("assertion failed")
}

// historyFn returns recent commands as a table with seq and cmd columns.
// Commands that still parse are shown re-serialized in canonical spacing.
// An optional int argument limits the result to the most recent n entries.
func (sh *Shell) historyFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	if sh.st == nil {
		return nil, errors.New("history: no history store")
	}
	limit := -1
	if len(args) > 0 {
		n, ok := args[0].(int64)
		if !ok {
			return nil, fmt.Errorf("history: limit must be an int, got %s", vals.Kind(args[0]))
		}
		limit = int(n)
	}
	next, err := sh.st.NextCmdSeq()
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	from := 0
	if limit >= 0 && next-limit > from {
		from = next - limit
	}
	cmds, err := sh.st.CmdsWithSeq(from, next)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	t := vals.NewTable()
	for _, cmd := range cmds {
		text := cmd.Text
		if ast, err := parse.Parse(parse.Source{Name: "history", Code: text}); err == nil {
			text = parse.Unparse(ast)
		}
		row := vals.NewMap()
		row.Set("seq", int64(cmd.Seq))
		row.Set("cmd", text)
		t.InsertMap(row)
	}
	return t, nil
}

// importFn reads a script file and runs it in the global scope.
func (sh *Shell) importFn(c *eval.Context, args []vals.Value) (vals.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("import: want 1 argument, got %d", len(args))
	}
	path, err := vals.ToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	ast, err := parse.Parse(parse.Source{Name: path, Code: string(code)})
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return c.Evaler().Eval(c.GoContext(), ast)
}
