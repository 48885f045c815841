package shell

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/krillsh/krill/pkg/eval"
	"github.com/krillsh/krill/pkg/store"
)

// historyLoad bounds how many stored commands are fed into the line editor
// at startup.
const historyLoad = 1000

// Interact runs the read-eval-print loop until EOF or an exit command and
// returns the exit status. When stdin is not a terminal the input is read
// whole and run as a script.
func (sh *Shell) Interact(ctx context.Context) int {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		code, err := io.ReadAll(os.Stdin)
		if err != nil {
			return 2
		}
		return sh.runScriptCode(ctx, "stdin", string(code))
	}

	restore := handleSignals(sh.ev)
	defer restore()

	ed := liner.NewLiner()
	defer ed.Close()
	ed.SetCtrlCAborts(true)
	sh.loadHistory(ed)

	for {
		line, err := ed.Prompt(sh.prompt())
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			return 0
		case err != nil:
			return 2
		}
		if line == "" {
			continue
		}
		ed.AppendHistory(line)
		if sh.st != nil {
			// History failures must not kill the session.
			sh.st.AddCmd(line)
		}
		sh.ev.Interrupt().Clear()
		if err := sh.RunCode(ctx, "interactive", line); err != nil {
			var exit *eval.ExitError
			if errors.As(err, &exit) {
				return exit.Status
			}
			return 1
		}
	}
}

func (sh *Shell) loadHistory(ed *liner.State) {
	if sh.st == nil {
		return
	}
	next, err := sh.st.NextCmdSeq()
	if err != nil {
		return
	}
	from := next - historyLoad
	if from < 0 {
		from = 0
	}
	sh.st.IterateCmds(from, next, func(cmd store.Cmd) {
		ed.AppendHistory(cmd.Text)
	})
}
