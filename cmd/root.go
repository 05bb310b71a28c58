// Package cmd assembles the ticks command tree.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
	"github.com/thenoetrevino/ticks/internal/cli/checklist"
	"github.com/thenoetrevino/ticks/internal/cli/serve"
	"github.com/thenoetrevino/ticks/internal/cli/unassigned"
	"github.com/thenoetrevino/ticks/internal/cli/use"
	"github.com/thenoetrevino/ticks/internal/logging"
)

// NewRootCmd builds the full command tree
func NewRootCmd() *cobra.Command {
	var logCloser io.Closer

	rootCmd := &cobra.Command{
		Use:   "ticks",
		Short: "Ticks - checklists for work items, in the terminal",
		Long: `Ticks manages the checklists of work items and lets you volunteer for
work nobody has picked up. Run "ticks serve" for a local API server and
"ticks daemon" for live updates between open views.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				level = os.Getenv("TICKS_LOG_LEVEL")
			}
			closer, err := logging.Init(level)
			if err != nil {
				// Commands still work without a log file.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				return nil
			}
			logCloser = closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(checklist.ChecklistCmd())
	rootCmd.AddCommand(unassigned.UnassignedCmd())
	rootCmd.AddCommand(use.UseCmd())
	rootCmd.AddCommand(serve.ServeCmd())
	rootCmd.AddCommand(serve.DaemonCmd())

	return rootCmd
}

// Execute runs the command tree and returns the process exit code
func Execute() int {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	if err == nil {
		return cli.ExitSuccess
	}

	var exitErr *cli.ExitStatusError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// Anything else comes from cobra itself: unknown commands, flags or arguments.
	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\nRun '%s --help' for usage.\n", err, rootCmd.CommandPath())
	return cli.ExitUsage
}
