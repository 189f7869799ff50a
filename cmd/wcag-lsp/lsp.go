package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wcaglsp/internal/lsp"
)

var (
	lspDebounceMS int
	lspTrace      bool
)

func init() {
	lspCmd.Flags().IntVar(&lspDebounceMS, "debounce", 150, "diagnostic debounce window in milliseconds")
	lspCmd.Flags().BoolVar(&lspTrace, "trace", false, "log scheduling and publish decisions to stderr")
}

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the accessibility language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	maxDiagnostics, _ := cmd.Flags().GetInt("max-diagnostics")
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:       time.Duration(lspDebounceMS) * time.Millisecond,
		MaxDiagnostics: maxDiagnostics,
		Trace:          lspTrace,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
