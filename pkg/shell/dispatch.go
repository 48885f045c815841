package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/krillsh/krill/pkg/eval"
)

// dispatcher implements eval.Dispatcher for the shell: its alias table, the
// builtin table, and real process execution.
type dispatcher struct {
	sh *Shell
}

func (d dispatcher) Alias(name string) (string, bool) {
	replacement, ok := d.sh.aliases[name]
	return replacement, ok
}

func (d dispatcher) Builtin(name string) (eval.BuiltinFn, bool) {
	fn, ok := d.sh.builtins[name]
	return fn, ok
}

// RunExternal resolves name on PATH and runs it to completion. Stdout is
// captured for the pipeline; stderr passes through to the terminal.
func (d dispatcher) RunExternal(ctx context.Context, name string, args []string, input string, env []string) (string, int, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", 0, &eval.UndefinedCommandError{Name: name}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = strings.NewReader(input)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = d.sh.stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out.String(), exitErr.ExitCode(), nil
		}
		return "", 0, err
	}
	return out.String(), 0, nil
}
