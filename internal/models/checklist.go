package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// MaxChecklistItemNameLength is the longest name, in characters, a checklist item may carry.
const MaxChecklistItemNameLength = 500

// DefaultSortOrder is the position the server assigns when a create request omits one.
const DefaultSortOrder = 65535

// ChecklistKey identifies the checklist of one work item.
type ChecklistKey struct {
	WorkspaceSlug string
	ProjectID     string
	IssueID       string
}

// CacheKey returns the cache identifier for the checklist.
// ok is false when any segment is missing; such keys must never be fetched.
func (k ChecklistKey) CacheKey() (key string, ok bool) {
	if !k.Valid() {
		return "", false
	}
	return fmt.Sprintf("CHECKLIST_%s_%s_%s", k.WorkspaceSlug, k.ProjectID, k.IssueID), true
}

// Valid reports whether every segment of the key is present
func (k ChecklistKey) Valid() bool {
	return k.WorkspaceSlug != "" && k.ProjectID != "" && k.IssueID != ""
}

// String implements fmt.Stringer
func (k ChecklistKey) String() string {
	return k.WorkspaceSlug + "/" + k.ProjectID + "/" + k.IssueID
}

// ChecklistItem is a single checkable sub-task of a work item.
// CompletedAt and CompletedBy are written by the server only.
type ChecklistItem struct {
	ID                string     `json:"id"`
	IssueID           string     `json:"issue_id"`
	Name              string     `json:"name"`
	IsCompleted       bool       `json:"is_completed"`
	CompletedAt       *time.Time `json:"completed_at"`
	CompletedBy       *string    `json:"completed_by"`
	CompletedByDetail *UserLite  `json:"completed_by_detail"`
	Assignee          *string    `json:"assignee"`
	AssigneeDetail    *UserLite  `json:"assignee_detail"`
	SortOrder         float64    `json:"sort_order"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CreatedBy         string     `json:"created_by"`
	UpdatedBy         string     `json:"updated_by"`
}

// AssigneeID returns the assignee user id, or "" when unassigned
func (i ChecklistItem) AssigneeID() string {
	if i.Assignee == nil {
		return ""
	}
	return *i.Assignee
}

// GetID returns the item ID
func (i ChecklistItem) GetID() string { return i.ID }

// Snapshot is the materialized checklist of a work item: its ordered items plus progress.
type Snapshot struct {
	Items    []ChecklistItem `json:"checklist_items"`
	Progress Progress        `json:"progress"`
}

// Item returns the item with the given id
func (s *Snapshot) Item(id string) (ChecklistItem, bool) {
	if s == nil {
		return ChecklistItem{}, false
	}
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return ChecklistItem{}, false
}

// CreateItemRequest is the body of a checklist item create call.
type CreateItemRequest struct {
	Name        string   `json:"name"`
	IsCompleted *bool    `json:"is_completed,omitempty"`
	AssigneeID  *string  `json:"assignee_id,omitempty"`
	SortOrder   *float64 `json:"sort_order,omitempty"`
}

// UpdateItemRequest is a partial update of a checklist item.
// Nil fields are left out of the payload. Assignee changes are only sent when
// AssigneeSet is true, in which case a nil AssigneeID is encoded as null and
// clears the assignment.
type UpdateItemRequest struct {
	Name        *string
	IsCompleted *bool
	SortOrder   *float64
	AssigneeSet bool
	AssigneeID  *string
}

// IsEmpty reports whether the request carries no field at all
func (r UpdateItemRequest) IsEmpty() bool {
	return r.Name == nil && r.IsCompleted == nil && r.SortOrder == nil && !r.AssigneeSet
}

// MarshalJSON encodes only the fields that are set
func (r UpdateItemRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 4)
	if r.Name != nil {
		body["name"] = *r.Name
	}
	if r.IsCompleted != nil {
		body["is_completed"] = *r.IsCompleted
	}
	if r.SortOrder != nil {
		body["sort_order"] = *r.SortOrder
	}
	if r.AssigneeSet {
		if r.AssigneeID == nil {
			body["assignee_id"] = nil
		} else {
			body["assignee_id"] = *r.AssigneeID
		}
	}
	return json.Marshal(body)
}

// UnmarshalJSON decodes a partial payload, keeping an explicit "assignee_id": null
// distinct from an absent key.
func (r *UpdateItemRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = UpdateItemRequest{}
	if v, ok := raw["name"]; ok {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			return fmt.Errorf("name: %w", err)
		}
		r.Name = &name
	}
	if v, ok := raw["is_completed"]; ok {
		var done bool
		if err := json.Unmarshal(v, &done); err != nil {
			return fmt.Errorf("is_completed: %w", err)
		}
		r.IsCompleted = &done
	}
	if v, ok := raw["sort_order"]; ok {
		var order float64
		if err := json.Unmarshal(v, &order); err != nil {
			return fmt.Errorf("sort_order: %w", err)
		}
		r.SortOrder = &order
	}
	if v, ok := raw["assignee_id"]; ok {
		r.AssigneeSet = true
		if !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			var id string
			if err := json.Unmarshal(v, &id); err != nil {
				return fmt.Errorf("assignee_id: %w", err)
			}
			if id != "" {
				r.AssigneeID = &id
			}
		}
	}
	return nil
}
