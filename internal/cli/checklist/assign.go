package checklist

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
)

// AssignCmd returns the checklist assign subcommand
func AssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign ITEM [USER]",
		Short: "Assign an item to a user",
		Long:  "Assign an item to USER, or to yourself when USER is omitted. --none clears the assignee.",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runAssign,
	}
	cmd.Flags().Bool("none", false, "Clear the assignee")
	cli.AddOutputFlags(cmd)
	return cmd
}

func runAssign(cmd *cobra.Command, args []string) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	var assignee *string
	if none, _ := cmd.Flags().GetBool("none"); !none {
		userID := s.cli.Config.User.ID
		if len(args) == 2 {
			userID = args[1]
		}
		if userID == "" {
			return s.out.Usage("MISSING_USER", "no user given and user.id is not configured",
				"Pass USER or set user.id in the config file")
		}
		assignee = &userID
	} else if len(args) == 2 {
		return s.out.Usage("CONFLICTING_ARGS", "USER cannot be combined with --none", "")
	}

	_, item, _, err := s.item(args[0])
	if err != nil {
		return err
	}

	updated, err := s.cli.App.ChecklistService.Reassign(s.ctx, s.key, item, assignee)
	if err != nil {
		return s.out.Fail(err, "Failed to update checklist item")
	}
	if assignee == nil {
		return s.out.Result(updated, fmt.Sprintf("✓ Unassigned '%s'", updated.Name))
	}
	return s.out.Result(updated, fmt.Sprintf("✓ Assigned '%s' to %s", updated.Name, *assignee))
}
