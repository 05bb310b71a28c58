package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// UserLite is the compact user representation embedded in API payloads
type UserLite struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// Issue is the work item summary shown on the home widgets
type Issue struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	SequenceID  int       `json:"sequence_id"`
	StateID     string    `json:"state_id,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	AssigneeIDs []string  `json:"assignee_ids"`
	IsEpic      bool      `json:"is_epic"`
	TypeID      *string   `json:"type_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetID returns the issue ID
func (i Issue) GetID() string { return i.ID }

// WorkspaceUserKey identifies per-user workspace lists such as the unassigned widget
type WorkspaceUserKey struct {
	WorkspaceSlug string
	UserID        string
}

// CacheKey returns the cache identifier, ok is false if either segment is missing
func (k WorkspaceUserKey) CacheKey() (string, bool) {
	if k.WorkspaceSlug == "" || k.UserID == "" {
		return "", false
	}
	return "UNASSIGNED_WORK_ITEMS_" + k.WorkspaceSlug, true
}

// IssuesShape tags the variant held by an IssuesResponse
type IssuesShape int

const (
	// IssuesFlat is an ungrouped list of issues
	IssuesFlat IssuesShape = iota
	// IssuesGrouped maps a group key (state, project, ...) to its issues
	IssuesGrouped
)

// IssuesResponse is the result of a workspace issue listing.
// Exactly one of Flat or Grouped is meaningful, as selected by Shape.
type IssuesResponse struct {
	Shape   IssuesShape
	Flat    []Issue
	Grouped map[string][]Issue
}

// Flatten returns every issue in the response. Grouped issues are emitted group by
// group in key order.
func (r IssuesResponse) Flatten() []Issue {
	if r.Shape == IssuesFlat {
		return r.Flat
	}

	keys := make([]string, 0, len(r.Grouped))
	for k := range r.Grouped {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var all []Issue
	for _, k := range keys {
		all = append(all, r.Grouped[k]...)
	}
	return all
}

type issueGroup struct {
	Results []Issue `json:"results"`
}

// UnmarshalJSON accepts the three shapes the issues endpoint produces:
// a bare array, {"results": [...]}, and {"results": {"<group>": {"results": [...]}}}.
func (r *IssuesResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = IssuesResponse{}

	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &r.Flat)
	}

	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	results := bytes.TrimSpace(envelope.Results)
	switch {
	case len(results) == 0 || bytes.Equal(results, []byte("null")):
		return nil
	case results[0] == '[':
		return json.Unmarshal(results, &r.Flat)
	case results[0] == '{':
		var groups map[string]issueGroup
		if err := json.Unmarshal(results, &groups); err != nil {
			return fmt.Errorf("grouped issues: %w", err)
		}
		r.Shape = IssuesGrouped
		r.Grouped = make(map[string][]Issue, len(groups))
		for k, g := range groups {
			r.Grouped[k] = g.Results
		}
		return nil
	default:
		return ErrUnknownIssuesShape
	}
}

// MarshalJSON writes the envelope form of whichever variant is held
func (r IssuesResponse) MarshalJSON() ([]byte, error) {
	if r.Shape == IssuesFlat {
		flat := r.Flat
		if flat == nil {
			flat = []Issue{}
		}
		return json.Marshal(map[string]any{"results": flat})
	}

	groups := make(map[string]issueGroup, len(r.Grouped))
	for k, issues := range r.Grouped {
		groups[k] = issueGroup{Results: issues}
	}
	return json.Marshal(map[string]any{"results": groups})
}
