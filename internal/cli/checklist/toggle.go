package checklist

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
)

// ToggleCmd returns the checklist toggle subcommand
func ToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "toggle ITEM",
		Aliases: []string{"check", "done"},
		Short:   "Flip an item between done and not done",
		Args:    cobra.ExactArgs(1),
		RunE:    runToggle,
	}
	cli.AddOutputFlags(cmd)
	return cmd
}

func runToggle(cmd *cobra.Command, args []string) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	_, item, _, err := s.item(args[0])
	if err != nil {
		return err
	}

	updated, err := s.cli.App.ChecklistService.ToggleCompletion(s.ctx, s.key, item)
	if err != nil {
		return s.out.Fail(err, "Failed to update checklist item")
	}

	msg := fmt.Sprintf("✓ Completed '%s'", updated.Name)
	if !updated.IsCompleted {
		msg = fmt.Sprintf("○ Reopened '%s'", updated.Name)
	}
	return s.out.Result(updated, msg)
}
