// Package unassigned implements the "ticks unassigned" commands.
package unassigned

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/app"
	"github.com/thenoetrevino/ticks/internal/cli"
	"github.com/thenoetrevino/ticks/internal/cli/styles"
	"github.com/thenoetrevino/ticks/internal/launcher"
	"github.com/thenoetrevino/ticks/internal/models"
	"github.com/thenoetrevino/ticks/internal/tui/home"
	"github.com/thenoetrevino/ticks/internal/tui/state"
)

// UnassignedCmd returns the unassigned parent command
func UnassignedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unassigned",
		Short: "List and claim work items nobody is assigned to",
	}
	cmd.PersistentFlags().String("workspace", "", "Workspace slug (defaults to the configured workspace)")

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ClaimCmd())
	cmd.AddCommand(TuiCmd())

	return cmd
}

// ListCmd returns the unassigned list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List unassigned work items, newest first",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}
	cli.AddOutputFlags(cmd)
	return cmd
}

// ClaimCmd returns the unassigned claim subcommand
func ClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim WORK_ITEM",
		Short: "Assign an unassigned work item to yourself",
		Long: `Assign an unassigned work item to the configured user.

WORK_ITEM is an ID or a sequence number such as 12 or #12.`,
		Args: cobra.ExactArgs(1),
		RunE: runClaim,
	}
	cli.AddOutputFlags(cmd)
	return cmd
}

// TuiCmd returns the interactive unassigned subcommand
func TuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and claim unassigned work items interactively",
		Args:  cobra.NoArgs,
		RunE:  runTui,
	}
}

type session struct {
	ctx context.Context
	cli *cli.CLI
	key models.WorkspaceUserKey
	out *cli.OutputFormatter
}

func open(cmd *cobra.Command, live bool, opts ...app.Option) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cli.NewFormatter(cmd)

	c, err := cli.GetCLIFromContext(ctx, live, opts...)
	if err != nil {
		if fmtErr := out.Error("INITIALIZATION_ERROR", err.Error()); fmtErr != nil {
			return nil, fmtErr
		}
		return nil, &cli.ExitStatusError{Code: cli.ExitError, Err: err}
	}

	key := c.App.UnassignedKey()
	if workspace, _ := cmd.Flags().GetString("workspace"); workspace != "" {
		key.WorkspaceSlug = workspace
	}
	if key.WorkspaceSlug == "" {
		_ = c.Close()
		return nil, out.Usage("MISSING_WORKSPACE", "workspace is required",
			"Pass --workspace or set workspace in the config file")
	}
	return &session{ctx: ctx, cli: c, key: key, out: out}, nil
}

func (s *session) close() {
	_ = s.cli.Close()
}

// issues lists the workspace's unassigned work items straight from the server.
// The cache only holds lists for a known user, so it is not used here.
func (s *session) issues() ([]models.Issue, error) {
	issues, err := s.cli.App.WorkItemService.ListUnassigned(s.ctx, s.key.WorkspaceSlug)
	if err != nil {
		return nil, s.out.Fail(err, "Failed to load unassigned work items")
	}
	return issues, nil
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	issues, err := s.issues()
	if err != nil {
		return err
	}

	if s.out.JSON {
		return s.out.Success(issues)
	}
	if s.out.Quiet {
		for _, issue := range issues {
			fmt.Fprintln(s.out.Out, issue.ID)
		}
		return nil
	}

	if len(issues) == 0 {
		fmt.Fprintln(s.out.Out, styles.SubtitleStyle.Render("No unassigned work items"))
		return nil
	}
	fmt.Fprintln(s.out.Out, styles.TitleStyle.Render(fmt.Sprintf("Unassigned in %s (%d)", s.key.WorkspaceSlug, len(issues))))
	for _, issue := range issues {
		fmt.Fprintf(s.out.Out, "%s %s %s\n",
			styles.SubtitleStyle.Render(fmt.Sprintf("#%-4d", issue.SequenceID)),
			issue.Name,
			styles.SubtitleStyle.Render(issue.CreatedAt.Format("2006-01-02")))
	}
	return nil
}

func runClaim(cmd *cobra.Command, args []string) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	issues, err := s.issues()
	if err != nil {
		return err
	}
	issue, err := cli.ResolveIssue(issues, args[0])
	if err != nil {
		return s.out.Fail(err, "")
	}

	if err := s.cli.App.WorkItemService.Claim(s.ctx, s.key.WorkspaceSlug, issue, s.cli.Config.User.ID); err != nil {
		return s.out.Fail(err, home.ClaimFailedMessage)
	}
	return s.out.Result(issue, fmt.Sprintf("✓ %s (#%d %s)", home.ClaimSucceededMessage, issue.SequenceID, issue.Name))
}

func runTui(cmd *cobra.Command, args []string) error {
	notes := state.NewNotificationState()
	s, err := open(cmd, true, app.WithNotifyFunc(state.NotifyFunc(nil, notes)))
	if err != nil {
		return err
	}
	defer s.close()

	if s.key.UserID == "" {
		return s.out.Usage("MISSING_USER", "user.id is not configured",
			"Set user.id in the config file or TICKS_USER_ID")
	}

	ctrl := home.NewUnassignedController(s.key.WorkspaceSlug, s.key.UserID, s.cli.App.WorkItemService, notes, nil)
	defer ctrl.Close()

	model := home.NewUnassignedModel(ctrl, s.cli.App.Unassigned, notes)
	if err := launcher.Launch(s.ctx, s.cli.App, model); err != nil {
		return s.out.Fail(err, "")
	}
	return nil
}
