package checklist

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
)

// DeleteCmd returns the checklist delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete ITEM",
		Aliases: []string{"rm"},
		Short:   "Delete an item",
		Long:    "Delete an item (requires confirmation unless --force or --quiet).",
		Args:    cobra.ExactArgs(1),
		RunE:    runDelete,
	}
	cmd.Flags().Bool("force", false, "Skip confirmation")
	cli.AddOutputFlags(cmd)
	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	_, item, _, err := s.item(args[0])
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force && s.out.Human() {
		fmt.Fprintf(s.out.Out, "Delete checklist item '%s'? (y/N): ", item.Name)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(s.out.Out, "Cancelled")
			return nil
		}
	}

	if err := s.cli.App.ChecklistService.Delete(s.ctx, s.key, item.ID); err != nil {
		return s.out.Fail(err, "Failed to delete checklist item")
	}

	if s.out.Quiet {
		return nil
	}
	if s.out.JSON {
		return s.out.Success(map[string]string{"item_id": item.ID})
	}
	fmt.Fprintf(s.out.Out, "✓ Deleted '%s'\n", item.Name)
	return nil
}
