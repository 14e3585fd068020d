// Package internal contains the command tree of the zodgen CLI.
package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Run executes the CLI with args, writing generated output to stdout.
func Run(ctx context.Context, args []string, stdout io.Writer) error {
	root := NewRootCmd(stdout)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCmd builds the zodgen command tree.
func NewRootCmd(stdout io.Writer) *cobra.Command {
	var verbose bool
	var undo func()

	root := &cobra.Command{
		Use:           "zodgen",
		Short:         "Compile OpenAPI and JSON Schema documents into zod validators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			restore := zap.ReplaceGlobals(logger)
			undo = func() {
				_ = logger.Sync()
				restore()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if undo != nil {
				undo()
			}
		},
	}
	root.SetOut(stdout)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCheckCmd())
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Development = true
	}
	return cfg.Build()
}
