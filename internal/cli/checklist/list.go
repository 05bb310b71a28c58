package checklist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
	"github.com/thenoetrevino/ticks/internal/cli/styles"
	"github.com/thenoetrevino/ticks/internal/models"
)

// markdownWidth is the wrap width of --markdown output
const markdownWidth = 80

// ListCmd returns the checklist list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "show"},
		Short:   "Show the checklist and its progress",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}

	cmd.Flags().Bool("markdown", false, "Render the checklist as a markdown task list")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	snapshot, err := s.snapshot()
	if err != nil {
		return err
	}

	if s.out.JSON {
		return s.out.Success(snapshot)
	}
	if s.out.Quiet {
		for _, item := range snapshot.Items {
			fmt.Fprintln(s.out.Out, item.ID)
		}
		return nil
	}

	if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
		rendered, err := RenderMarkdown(snapshot, markdownWidth)
		if err != nil {
			return s.out.Fail(err, "Failed to render checklist")
		}
		_, err = fmt.Fprint(s.out.Out, rendered)
		return err
	}

	fmt.Fprintln(s.out.Out, styles.TitleStyle.Render("Checklist "+s.key.String())+"  "+styles.Progress(snapshot.Progress))
	if len(snapshot.Items) == 0 {
		fmt.Fprintln(s.out.Out, styles.SubtitleStyle.Render("No checklist items"))
		return nil
	}
	for i, item := range snapshot.Items {
		fmt.Fprintln(s.out.Out, styles.ItemLine(i+1, item))
	}
	return nil
}

// Markdown formats the checklist as a GitHub task list
func Markdown(snapshot *models.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Checklist %s\n\n", snapshot.Progress)
	if len(snapshot.Items) == 0 {
		b.WriteString("_No checklist items_\n")
		return b.String()
	}
	for _, item := range snapshot.Items {
		box := " "
		if item.IsCompleted {
			box = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s", box, item.Name)
		if item.AssigneeDetail != nil {
			fmt.Fprintf(&b, " (@%s)", item.AssigneeDetail.DisplayName)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMarkdown renders Markdown(snapshot) for the terminal
func RenderMarkdown(snapshot *models.Snapshot, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(Markdown(snapshot))
}
