// Package shell is the terminal-facing layer: the interactive loop, script
// execution, the builtin command table, configuration and external process
// dispatch. The language itself lives in pkg/parse and pkg/eval.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/krillsh/krill/pkg/diag"
	"github.com/krillsh/krill/pkg/eval"
	"github.com/krillsh/krill/pkg/parse"
	"github.com/krillsh/krill/pkg/store"
)

// Shell ties an evaluator to a terminal, a configuration and a history
// store.
type Shell struct {
	cfg      Config
	ev       *eval.Evaler
	st       *store.Store
	aliases  map[string]string
	builtins map[string]eval.BuiltinFn

	stdout io.Writer
	stderr io.Writer
}

// New returns a shell with the given configuration and no history store.
func New(cfg Config) *Shell {
	sh := &Shell{
		cfg:     cfg,
		aliases: make(map[string]string),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for name, text := range cfg.Aliases {
		sh.aliases[name] = text
	}
	sh.ev = eval.New(dispatcher{sh})
	sh.ev.MaxDepth = cfg.RecursionLimit
	if home, err := os.UserHomeDir(); err == nil {
		sh.ev.Home = home
	}
	sh.builtins = builtinTable(sh)
	return sh
}

// Evaler returns the shell's evaluator.
func (sh *Shell) Evaler() *eval.Evaler { return sh.ev }

// SetStore attaches a history store. The shell does not close it.
func (sh *Shell) SetStore(st *store.Store) { sh.st = st }

// RunCode parses and evaluates one unit of source. The result value is
// printed to stdout; errors are reported to stderr. The returned error is
// non-nil only for ExitError, which the caller must honor.
func (sh *Shell) RunCode(ctx context.Context, name, code string) error {
	ast, err := parse.Parse(parse.Source{Name: name, Code: code})
	if err != nil {
		fmt.Fprintln(sh.stderr, diag.ShowError(err))
		return nil
	}
	v, err := sh.ev.Eval(ctx, ast)
	if err != nil {
		var exit *eval.ExitError
		if errors.As(err, &exit) {
			return exit
		}
		fmt.Fprintln(sh.stderr, diag.ShowError(err))
		return nil
	}
	sh.printValue(v)
	return nil
}

// RunScript reads and runs a script file. The exit status is 0 on success,
// 2 when the file cannot be read or parsed, 1 on a runtime error, and the
// explicit status when the script exits.
func (sh *Shell) RunScript(ctx context.Context, path string) int {
	name, err := filepath.Abs(path)
	if err != nil {
		name = path
	}
	code, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(sh.stderr, "cannot read script %q: %v\n", path, err)
		return 2
	}
	return sh.runScriptCode(ctx, name, string(code))
}

// RunCommand runs code given on the command line (-c).
func (sh *Shell) RunCommand(ctx context.Context, code string) int {
	return sh.runScriptCode(ctx, "code from -c", code)
}

func (sh *Shell) runScriptCode(ctx context.Context, name, code string) int {
	ast, err := parse.Parse(parse.Source{Name: name, Code: code})
	if err != nil {
		fmt.Fprintln(sh.stderr, diag.ShowError(err))
		return 2
	}
	if _, err := sh.ev.Eval(ctx, ast); err != nil {
		var exit *eval.ExitError
		if errors.As(err, &exit) {
			return exit.Status
		}
		fmt.Fprintln(sh.stderr, diag.ShowError(err))
		return 1
	}
	return 0
}

// prompt renders the configured prompt format: %u is the user name, %w the
// working directory with the home prefix shortened to ~.
func (sh *Shell) prompt() string {
	p := sh.cfg.Prompt
	if strings.Contains(p, "%u") {
		name := "?"
		if u, err := user.Current(); err == nil {
			name = u.Username
		}
		p = strings.ReplaceAll(p, "%u", name)
	}
	if strings.Contains(p, "%w") {
		wd, err := os.Getwd()
		if err != nil {
			wd = "?"
		} else if home := sh.ev.Home; home != "" && strings.HasPrefix(wd, home) {
			wd = "~" + wd[len(home):]
		}
		p = strings.ReplaceAll(p, "%w", wd)
	}
	return p
}
