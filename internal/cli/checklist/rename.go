package checklist

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
)

// RenameCmd returns the checklist rename subcommand
func RenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename ITEM NAME...",
		Short: "Rename an item",
		Long:  "Rename an item. A blank or unchanged name leaves the item as it is.",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runRename,
	}
	cli.AddOutputFlags(cmd)
	return cmd
}

func runRename(cmd *cobra.Command, args []string) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	_, item, _, err := s.item(args[0])
	if err != nil {
		return err
	}

	updated, err := s.cli.App.ChecklistService.Rename(s.ctx, s.key, item, strings.Join(args[1:], " "))
	if err != nil {
		return s.out.Fail(err, "Failed to update checklist item")
	}
	if updated.Name == item.Name {
		return s.out.Result(updated, fmt.Sprintf("Unchanged '%s'", updated.Name))
	}
	return s.out.Result(updated, fmt.Sprintf("✓ Renamed '%s' to '%s'", item.Name, updated.Name))
}
