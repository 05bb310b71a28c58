package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/models"
)

// RefError means an item or work item reference matched nothing
type RefError struct {
	Kind string
	Ref  string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

// AddKeyFlags registers the flags addressing one work item's checklist
func AddKeyFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("issue", "", "Work item ID (required)")
	cmd.PersistentFlags().String("project", "", "Project ID (defaults to the configured project)")
	cmd.PersistentFlags().String("workspace", "", "Workspace slug (defaults to the configured workspace)")
}

// ChecklistKey builds the checklist key from flags, falling back to the config
func (c *CLI) ChecklistKey(cmd *cobra.Command) (models.ChecklistKey, error) {
	issue, _ := cmd.Flags().GetString("issue")
	project, _ := cmd.Flags().GetString("project")
	workspace, _ := cmd.Flags().GetString("workspace")

	key := c.App.ChecklistKey(project, issue)
	if workspace != "" {
		key.WorkspaceSlug = workspace
	}
	if !key.Valid() {
		return key, fmt.Errorf("workspace, project and --issue are required (got %q)", key.String())
	}
	return key, nil
}

// ResolveItem finds an item by ID or by its 1-based position
func ResolveItem(items []models.ChecklistItem, ref string) (int, models.ChecklistItem, error) {
	for i, item := range items {
		if item.ID == ref {
			return i, item, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(items) {
		return n - 1, items[n-1], nil
	}
	return -1, models.ChecklistItem{}, &RefError{Kind: "checklist item", Ref: ref}
}

// ResolveIssue finds a work item by ID or by sequence number ("12" or "#12")
func ResolveIssue(issues []models.Issue, ref string) (models.Issue, error) {
	for _, issue := range issues {
		if issue.ID == ref {
			return issue, nil
		}
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		for _, issue := range issues {
			if issue.SequenceID == n {
				return issue, nil
			}
		}
	}
	return models.Issue{}, &RefError{Kind: "work item", Ref: ref}
}
