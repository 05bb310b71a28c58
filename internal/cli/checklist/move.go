package checklist

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
	"github.com/thenoetrevino/ticks/internal/models"
)

// MoveCmd returns the checklist move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move ITEM POSITION",
		Short: "Move an item to a 1-based position",
		Args:  cobra.ExactArgs(2),
		RunE:  runMove,
	}
	cli.AddOutputFlags(cmd)
	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	to, err := strconv.Atoi(args[1])
	if err != nil {
		return s.out.Usage("INVALID_POSITION", fmt.Sprintf("position %q is not a number", args[1]), "")
	}

	from, item, items, err := s.item(args[0])
	if err != nil {
		return err
	}
	if to < 1 || to > len(items) {
		return s.out.Usage("INVALID_POSITION",
			fmt.Sprintf("position %d is out of range 1-%d", to, len(items)), "")
	}
	if from == to-1 {
		return s.out.Result(item, fmt.Sprintf("'%s' is already at position %d", item.Name, to))
	}

	sortOrder, ok := models.SortOrderForMove(items, from, to-1)
	if !ok {
		return s.out.Usage("INVALID_POSITION", fmt.Sprintf("cannot move to position %d", to), "")
	}

	updated, err := s.cli.App.ChecklistService.Reorder(s.ctx, s.key, item, sortOrder)
	if err != nil {
		return s.out.Fail(err, "Failed to update checklist item")
	}
	return s.out.Result(updated, fmt.Sprintf("✓ Moved '%s' to position %d", updated.Name, to))
}
