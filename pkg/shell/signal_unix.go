//go:build unix

package shell

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/krillsh/krill/pkg/eval"
)

// handleSignals routes SIGINT to the evaluator's interrupt flag so that a
// running evaluation stops at its next poll instead of killing the process.
// The returned function restores the default disposition.
func handleSignals(ev *eval.Evaler) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGINT)
	go func() {
		for range ch {
			ev.Interrupt().Set()
		}
	}()
	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
