package server

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thenoetrevino/ticks/internal/database"
	"github.com/thenoetrevino/ticks/internal/events"
	"github.com/thenoetrevino/ticks/internal/models"
)

type createItemBody struct {
	Name        *string  `json:"name"`
	IsCompleted *bool    `json:"is_completed"`
	AssigneeID  *string  `json:"assignee_id"`
	SortOrder   *float64 `json:"sort_order"`
}

func checklistKey(c *gin.Context) models.ChecklistKey {
	return models.ChecklistKey{
		WorkspaceSlug: c.Param("slug"),
		ProjectID:     c.Param("project"),
		IssueID:       c.Param("issue"),
	}
}

// validateName trims and checks a name, aborting the request when it is invalid
func validateName(c *gin.Context, name *string) (string, bool) {
	if name == nil {
		abortField(c, "name", msgRequired)
		return "", false
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		abortField(c, "name", msgBlank)
		return "", false
	}
	if utf8.RuneCountInString(trimmed) > models.MaxChecklistItemNameLength {
		abortField(c, "name", msgTooLong)
		return "", false
	}
	return trimmed, true
}

// validateAssignee checks that a non-empty assignee refers to a known user
func (s *Server) validateAssignee(c *gin.Context, id *string) (*string, bool) {
	if id == nil || *id == "" {
		return nil, true
	}
	if _, err := s.store.GetUser(c.Request.Context(), *id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortField(c, "assignee_id", msgUnknownUser)
			return nil, false
		}
		s.internalError(c, "failed to load user", err)
		return nil, false
	}
	return id, true
}

func (s *Server) complete(c *gin.Context, item *models.ChecklistItem) {
	now := s.stamp()
	item.IsCompleted = true
	item.CompletedAt = &now
	item.CompletedBy = nil
	if who := actor(c); who != "" {
		item.CompletedBy = &who
	}
}

func uncomplete(item *models.ChecklistItem) {
	item.IsCompleted = false
	item.CompletedAt = nil
	item.CompletedBy = nil
}

func (s *Server) handleListChecklist(c *gin.Context) {
	issue := issueFrom(c)
	items, err := s.store.ListChecklistItems(c.Request.Context(), issue.ID)
	if err != nil {
		s.internalError(c, "failed to list checklist", err)
		return
	}
	c.JSON(http.StatusOK, models.Snapshot{Items: items, Progress: models.ComputeProgress(items)})
}

func (s *Server) handleCreateItem(c *gin.Context) {
	var body createItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": msgBadJSON})
		return
	}
	name, ok := validateName(c, body.Name)
	if !ok {
		return
	}
	assignee, ok := s.validateAssignee(c, body.AssigneeID)
	if !ok {
		return
	}

	now := s.stamp()
	who := actor(c)
	item := &models.ChecklistItem{
		ID:        uuid.NewString(),
		IssueID:   issueFrom(c).ID,
		Name:      name,
		Assignee:  assignee,
		SortOrder: models.DefaultSortOrder,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: who,
		UpdatedBy: who,
	}
	if body.SortOrder != nil {
		item.SortOrder = *body.SortOrder
	}
	if body.IsCompleted != nil && *body.IsCompleted {
		s.complete(c, item)
	}

	created, err := s.store.CreateChecklistItem(c.Request.Context(), item)
	if err != nil {
		s.internalError(c, "failed to create checklist item", err)
		return
	}
	s.recordActivity(c, "created", created, false, true)
	s.publish(events.ChecklistChanged(checklistKey(c)))
	c.JSON(http.StatusCreated, created)
}

// loadItem fetches the item addressed by the path or answers 404
func (s *Server) loadItem(c *gin.Context) (*models.ChecklistItem, bool) {
	item, err := s.store.GetChecklistItem(c.Request.Context(), issueFrom(c).ID, c.Param("item"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortError(c, http.StatusNotFound, msgItemMissing)
			return nil, false
		}
		s.internalError(c, "failed to load checklist item", err)
		return nil, false
	}
	return item, true
}

func (s *Server) handleGetItem(c *gin.Context) {
	item, ok := s.loadItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleUpdateItem(c *gin.Context) {
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": msgBadJSON})
		return
	}
	item, ok := s.loadItem(c)
	if !ok {
		return
	}
	if req.IsEmpty() {
		c.JSON(http.StatusOK, item)
		return
	}

	if req.Name != nil {
		name, ok := validateName(c, req.Name)
		if !ok {
			return
		}
		item.Name = name
	}
	if req.AssigneeSet {
		assignee, ok := s.validateAssignee(c, req.AssigneeID)
		if !ok {
			return
		}
		item.Assignee = assignee
	}
	wasCompleted := item.IsCompleted
	if req.IsCompleted != nil && *req.IsCompleted != item.IsCompleted {
		if *req.IsCompleted {
			s.complete(c, item)
		} else {
			uncomplete(item)
		}
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	item.UpdatedAt = s.stamp()
	item.UpdatedBy = actor(c)

	updated, err := s.store.UpdateChecklistItem(c.Request.Context(), item)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortError(c, http.StatusNotFound, msgItemMissing)
			return
		}
		s.internalError(c, "failed to update checklist item", err)
		return
	}
	completionChanged := updated.IsCompleted != wasCompleted
	s.recordActivity(c, "updated", updated, completionChanged, completionChanged && updated.IsCompleted)
	s.publish(events.ChecklistChanged(checklistKey(c)))
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteItem(c *gin.Context) {
	item, ok := s.loadItem(c)
	if !ok {
		return
	}
	err := s.store.DeleteChecklistItem(c.Request.Context(), item.IssueID, item.ID, actor(c), s.stamp())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abortError(c, http.StatusNotFound, msgItemMissing)
			return
		}
		s.internalError(c, "failed to delete checklist item", err)
		return
	}
	s.recordActivity(c, "deleted", item, false, false)
	s.publish(events.ChecklistChanged(checklistKey(c)))
	c.Status(http.StatusNoContent)
}

// recordActivity writes the work item activity entry for a checklist write.
// completed is only logged when the write changed completion; notify marks
// entries that should reach the work item's subscribers.
func (s *Server) recordActivity(c *gin.Context, action string, item *models.ChecklistItem, completionChanged, notify bool) {
	attrs := []any{
		"action", action,
		"actor_id", actor(c),
		"workspace", c.Param("slug"),
		"project_id", c.Param("project"),
		"issue_id", item.IssueID,
		"checklist_item_id", item.ID,
		"name", item.Name,
		"notify", notify,
	}
	if completionChanged {
		attrs = append(attrs, "completed", item.IsCompleted)
	}
	s.logger.Info("checklist activity", attrs...)
}
