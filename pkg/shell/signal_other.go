//go:build !unix

package shell

import (
	"os"
	"os/signal"

	"github.com/krillsh/krill/pkg/eval"
)

func handleSignals(ev *eval.Evaler) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
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
