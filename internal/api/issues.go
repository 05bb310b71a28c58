package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/thenoetrevino/ticks/internal/models"
)

// UnassignedFilter is the assignees filter value that matches issues with nobody assigned
const UnassignedFilter = "None"

// IssueQuery holds the filters for a workspace issue listing.
// Zero values are left out of the request.
type IssueQuery struct {
	Assignees []string
	OrderBy   string
	PerPage   int
	GroupBy   string
}

func (q IssueQuery) values() url.Values {
	v := url.Values{}
	if len(q.Assignees) > 0 {
		v.Set("assignees", strings.Join(q.Assignees, ","))
	}
	if q.OrderBy != "" {
		v.Set("order_by", q.OrderBy)
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.GroupBy != "" {
		v.Set("group_by", q.GroupBy)
	}
	return v
}

// ListWorkspaceIssues lists issues across every project of a workspace.
func (c *Client) ListWorkspaceIssues(ctx context.Context, workspaceSlug string, query IssueQuery) (*models.IssuesResponse, error) {
	if workspaceSlug == "" {
		return nil, fmt.Errorf("workspace slug is required")
	}

	endpoint := c.endpoint(query.values(), "workspaces", workspaceSlug, "issues")
	var resp models.IssuesResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp, "Failed to load work items"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateIssueAssignees replaces the assignees of an issue.
func (c *Client) UpdateIssueAssignees(ctx context.Context, workspaceSlug, projectID, issueID string, assigneeIDs []string) error {
	if workspaceSlug == "" || projectID == "" || issueID == "" {
		return fmt.Errorf("workspace, project and issue are required")
	}
	if assigneeIDs == nil {
		assigneeIDs = []string{}
	}

	endpoint := c.endpoint(nil, "workspaces", workspaceSlug, "projects", projectID, "issues", issueID)
	body := map[string][]string{"assignee_ids": assigneeIDs}
	return c.do(ctx, http.MethodPatch, endpoint, body, nil, "Failed to update work item")
}
