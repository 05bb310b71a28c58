package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thenoetrevino/ticks/internal/database"
	"github.com/thenoetrevino/ticks/internal/events"
	"github.com/thenoetrevino/ticks/internal/models"
)

const (
	defaultPerPage = 100
	maxPerPage     = 1000
)

// handleListIssues lists work items across a workspace.
// assignees=None selects unassigned items; group_by=project groups by project id.
func (s *Server) handleListIssues(c *gin.Context) {
	filter := database.IssueFilter{Limit: defaultPerPage}

	switch assignees := c.Query("assignees"); assignees {
	case "":
	case "None":
		filter.Unassigned = true
	default:
		filter.AssigneeIDs = strings.Split(assignees, ",")
	}

	switch order := c.Query("order_by"); order {
	case "", "created_at":
	case "-created_at":
		filter.NewestFirst = true
	default:
		abortField(c, "order_by", "Unsupported ordering "+strconv.Quote(order))
		return
	}

	if raw := c.Query("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			abortField(c, "per_page", "A valid integer is required.")
			return
		}
		filter.Limit = min(n, maxPerPage)
	}

	groupBy := c.Query("group_by")
	if groupBy != "" && groupBy != "project" {
		abortField(c, "group_by", "Unsupported grouping "+strconv.Quote(groupBy))
		return
	}

	issues, err := s.store.ListIssues(c.Request.Context(), c.Param("slug"), filter)
	if err != nil {
		s.internalError(c, "failed to list issues", err)
		return
	}

	if groupBy == "" {
		c.JSON(http.StatusOK, models.IssuesResponse{Shape: models.IssuesFlat, Flat: issues})
		return
	}
	grouped := make(map[string][]models.Issue)
	for _, issue := range issues {
		grouped[issue.ProjectID] = append(grouped[issue.ProjectID], issue)
	}
	c.JSON(http.StatusOK, models.IssuesResponse{Shape: models.IssuesGrouped, Grouped: grouped})
}

type updateIssueBody struct {
	AssigneeIDs *[]string `json:"assignee_ids"`
}

func (s *Server) handleUpdateIssue(c *gin.Context) {
	var body updateIssueBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": msgBadJSON})
		return
	}
	issue := issueFrom(c)
	if body.AssigneeIDs == nil {
		c.JSON(http.StatusOK, issue)
		return
	}

	ctx := c.Request.Context()
	if err := s.store.SetIssueAssignees(ctx, issue.ID, *body.AssigneeIDs); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortField(c, "assignee_ids", msgUnknownUser)
			return
		}
		s.internalError(c, "failed to update assignees", err)
		return
	}

	updated, err := s.store.GetIssue(ctx, c.Param("slug"), issue.ProjectID, issue.ID)
	if err != nil {
		s.internalError(c, "failed to reload issue", err)
		return
	}
	s.publish(events.IssueChanged(c.Param("slug"), issue.ProjectID, issue.ID))
	c.JSON(http.StatusOK, updated)
}
