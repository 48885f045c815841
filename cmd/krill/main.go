// Krill is an interactive command shell with its own scripting language.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/krillsh/krill/pkg/lsp"
	"github.com/krillsh/krill/pkg/shell"
	"github.com/krillsh/krill/pkg/store"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		code    string
		norc    bool
		logPath string
		status  int
	)

	root := &cobra.Command{
		Use:           "krill [script]",
		Short:         "krill is an interactive shell and scripting language",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if logPath != "" {
				f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("cannot open log file: %w", err)
				}
				defer f.Close()
				log.SetOutput(f)
			} else {
				log.SetOutput(nullWriter{})
			}

			cfg := shell.DefaultConfig()
			if !norc {
				path, err := shell.RCPath()
				if err == nil {
					cfg, err = shell.LoadConfig(path)
					if err != nil {
						return fmt.Errorf("cannot load %s: %w", path, err)
					}
				}
			}

			sh := shell.New(cfg)
			ctx := context.Background()

			switch {
			case code != "":
				status = sh.RunCommand(ctx, code)
			case len(args) == 1:
				status = sh.RunScript(ctx, args[0])
			default:
				attachHistory(sh, cfg)
				status = sh.Interact(ctx)
			}
			return nil
		},
	}
	root.Flags().StringVarP(&code, "command", "c", "", "run the given code instead of reading input")
	root.Flags().BoolVar(&norc, "norc", false, "skip the rc file")
	root.PersistentFlags().StringVar(&logPath, "log", "", "write debug logs to this file")

	root.AddCommand(&cobra.Command{
		Use:   "lsp",
		Short: "run a language server on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return lsp.Run(context.Background(), os.Stdin, os.Stdout)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "krill:", err)
		return 2
	}
	return status
}

// attachHistory opens the history store for an interactive session. History
// is an amenity; failure to open it degrades to a session without recall.
func attachHistory(sh *shell.Shell, cfg shell.Config) {
	path := cfg.HistoryFile
	if path == "" {
		p, err := shell.HistoryPath()
		if err != nil {
			log.Printf("no history path: %v", err)
			return
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("cannot create history directory: %v", err)
		return
	}
	st, err := store.Open(path)
	if err != nil {
		log.Printf("cannot open history store: %v", err)
		return
	}
	sh.SetStore(st)
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
