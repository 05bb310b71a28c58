package checklist

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/app"
	"github.com/thenoetrevino/ticks/internal/cli"
	"github.com/thenoetrevino/ticks/internal/launcher"
	tuichecklist "github.com/thenoetrevino/ticks/internal/tui/checklist"
	"github.com/thenoetrevino/ticks/internal/tui/state"
)

// TuiCmd returns the interactive checklist subcommand
func TuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit the checklist interactively with live updates",
		Args:  cobra.NoArgs,
		RunE:  runTui,
	}
}

func runTui(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cli.NewFormatter(cmd)
	notes := state.NewNotificationState()
	conn := state.NewConnectionState(state.Connected)

	c, err := cli.GetCLIFromContext(ctx, true, app.WithNotifyFunc(state.NotifyFunc(conn, notes)))
	if err != nil {
		_ = out.Error("INITIALIZATION_ERROR", err.Error())
		return &cli.ExitStatusError{Code: cli.ExitError, Err: err}
	}
	defer func() { _ = c.Close() }()

	key, err := c.ChecklistKey(cmd)
	if err != nil {
		return out.Usage("MISSING_ISSUE", err.Error(), "Pass --issue")
	}

	ctrl := tuichecklist.NewController(key, c.App.ChecklistService, tuichecklist.WithNotifier(notes))
	defer ctrl.Close()

	model := tuichecklist.NewModel(ctrl, c.App.Checklists, c.Config.KeyMappings, c.Config.User.ID, notes).
		WithConnection(conn)
	if err := launcher.Launch(ctx, c.App, model); err != nil {
		return out.Fail(err, "")
	}
	return nil
}
