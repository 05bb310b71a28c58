// Package checklist implements the "ticks checklist" commands.
package checklist

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
	"github.com/thenoetrevino/ticks/internal/models"
)

// ChecklistCmd returns the checklist parent command
func ChecklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checklist",
		Aliases: []string{"cl"},
		Short:   "Manage the checklist of a work item",
		Long: `Manage the checklist of a work item.

Items are addressed by ID or by their position in "ticks checklist list".`,
	}
	cli.AddKeyFlags(cmd)

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(AddCmd())
	cmd.AddCommand(ToggleCmd())
	cmd.AddCommand(RenameCmd())
	cmd.AddCommand(AssignCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(TuiCmd())

	return cmd
}

// session is the state shared by every checklist command
type session struct {
	ctx context.Context
	cli *cli.CLI
	key models.ChecklistKey
	out *cli.OutputFormatter
}

// open builds the session. Failures are printed before they are returned.
func open(cmd *cobra.Command, live bool) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cli.NewFormatter(cmd)

	c, err := cli.GetCLIFromContext(ctx, live)
	if err != nil {
		if fmtErr := out.Error("INITIALIZATION_ERROR", err.Error()); fmtErr != nil {
			return nil, fmtErr
		}
		return nil, &cli.ExitStatusError{Code: cli.ExitError, Err: err}
	}

	key, err := c.ChecklistKey(cmd)
	if err != nil {
		_ = c.Close()
		return nil, out.Usage("MISSING_ISSUE", err.Error(),
			"Pass --issue, and set workspace and project in the config or with --workspace/--project")
	}
	return &session{ctx: ctx, cli: c, key: key, out: out}, nil
}

func (s *session) close() {
	_ = s.cli.Close()
}

// snapshot fetches the current checklist, bypassing anything cached
func (s *session) snapshot() (*models.Snapshot, error) {
	snapshot, err := s.cli.App.Checklists.Revalidate(s.ctx, s.key)
	if err != nil {
		return nil, s.out.Fail(err, "Failed to load checklist")
	}
	if snapshot == nil {
		return nil, s.out.Fail(errors.New("empty checklist response"), "Failed to load checklist")
	}
	return snapshot, nil
}

// item resolves ref against the current checklist
func (s *session) item(ref string) (int, models.ChecklistItem, []models.ChecklistItem, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return -1, models.ChecklistItem{}, nil, err
	}
	pos, item, err := cli.ResolveItem(snapshot.Items, ref)
	if err != nil {
		return -1, item, nil, s.out.Fail(err, "")
	}
	return pos, item, snapshot.Items, nil
}
