package checklist

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
	checklistsvc "github.com/thenoetrevino/ticks/internal/services/checklist"
)

// AddCmd returns the checklist add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add an item to the checklist",
		Long: `Add an item to the checklist. Words are joined with spaces.

Examples:
  ticks checklist add --issue 7b1e write migration
  ticks checklist add --issue 7b1e --assignee u2 "review schema"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().String("assignee", "", "User ID to assign the item to")
	cmd.Flags().Float64("sort-order", 0, "Explicit sort position (server default when omitted)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	req := checklistsvc.CreateRequest{Name: strings.Join(args, " ")}
	if assignee, _ := cmd.Flags().GetString("assignee"); assignee != "" {
		req.AssigneeID = &assignee
	}
	if cmd.Flags().Changed("sort-order") {
		sortOrder, _ := cmd.Flags().GetFloat64("sort-order")
		req.SortOrder = &sortOrder
	}

	item, err := s.cli.App.ChecklistService.Create(s.ctx, s.key, req)
	if err != nil {
		return s.out.Fail(err, "Failed to create checklist item")
	}
	return s.out.Result(item, fmt.Sprintf("✓ Added '%s' (%s)", item.Name, item.ID))
}
