package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/thenoetrevino/ticks/internal/api"
	"github.com/thenoetrevino/ticks/internal/models"
)

// TransportCall records one call made against FakeChecklistTransport
type TransportCall struct {
	Method string // "get", "create", "update", "delete"
	Key    models.ChecklistKey
	ItemID string
	Create *models.CreateItemRequest
	Update *models.UpdateItemRequest
}

// FakeChecklistTransport is an in-memory checklist API. It keeps items per key,
// behaves like the server on partial updates and records every call.
type FakeChecklistTransport struct {
	mu     sync.Mutex
	items  map[models.ChecklistKey][]models.ChecklistItem
	calls  []TransportCall
	nextID int

	// Err, when set, is returned by every call instead of touching state
	Err error
	// Gate, when set, blocks every mutation until a value is received
	Gate chan struct{}
	// Actor is recorded as completed_by when an item is completed
	Actor string
}

// NewFakeChecklistTransport creates an empty fake transport
func NewFakeChecklistTransport() *FakeChecklistTransport {
	return &FakeChecklistTransport{
		items: make(map[models.ChecklistKey][]models.ChecklistItem),
		Actor: "user-1",
	}
}

var _ api.ChecklistTransport = (*FakeChecklistTransport)(nil)

// Seed adds items to the checklist of key and returns them with ids assigned
func (f *FakeChecklistTransport) Seed(key models.ChecklistKey, names ...string) []models.ChecklistItem {
	f.mu.Lock()
	defer f.mu.Unlock()

	seeded := make([]models.ChecklistItem, 0, len(names))
	for _, name := range names {
		item := f.newItemLocked(key, name)
		item.SortOrder = float64(len(f.items[key])+1) * 1000
		f.items[key] = append(f.items[key], item)
		seeded = append(seeded, item)
	}
	return seeded
}

// Calls returns a copy of the recorded calls
func (f *FakeChecklistTransport) Calls() []TransportCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TransportCall(nil), f.calls...)
}

// CallCount returns how many calls of method were made ("" counts all)
func (f *FakeChecklistTransport) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if method == "" || c.Method == method {
			n++
		}
	}
	return n
}

// MutationCount returns how many create, update and delete calls were made
func (f *FakeChecklistTransport) MutationCount() int {
	return f.CallCount("") - f.CallCount("get")
}

func (f *FakeChecklistTransport) record(call TransportCall) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.Err
	gate := f.Gate
	f.mu.Unlock()

	if call.Method != "get" && gate != nil {
		<-gate
	}
	return err
}

func (f *FakeChecklistTransport) newItemLocked(key models.ChecklistKey, name string) models.ChecklistItem {
	f.nextID++
	now := time.Date(2025, 1, 1, 0, 0, f.nextID, 0, time.UTC)
	return models.ChecklistItem{
		ID:        fmt.Sprintf("item-%d", f.nextID),
		IssueID:   key.IssueID,
		Name:      name,
		SortOrder: models.DefaultSortOrder,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: f.Actor,
		UpdatedBy: f.Actor,
	}
}

func notFound(message string) error {
	return &api.APIError{Kind: api.KindNotFound, StatusCode: http.StatusNotFound, Message: message}
}

// GetChecklist implements api.ChecklistTransport
func (f *FakeChecklistTransport) GetChecklist(_ context.Context, key models.ChecklistKey) (*models.Snapshot, error) {
	if err := f.record(TransportCall{Method: "get", Key: key}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	items := append([]models.ChecklistItem{}, f.items[key]...)
	models.SortItems(items)
	return &models.Snapshot{Items: items, Progress: models.ComputeProgress(items)}, nil
}

// CreateChecklistItem implements api.ChecklistTransport
func (f *FakeChecklistTransport) CreateChecklistItem(_ context.Context, key models.ChecklistKey, req models.CreateItemRequest) (*models.ChecklistItem, error) {
	if err := f.record(TransportCall{Method: "create", Key: key, Create: &req}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.TrimSpace(req.Name) == "" {
		return nil, &api.APIError{
			Kind:        api.KindServerRejection,
			StatusCode:  http.StatusBadRequest,
			Message:     "name: This field may not be blank.",
			FieldErrors: map[string][]string{"name": {"This field may not be blank."}},
		}
	}

	item := f.newItemLocked(key, strings.TrimSpace(req.Name))
	if req.IsCompleted != nil && *req.IsCompleted {
		f.completeLocked(&item)
	}
	if req.AssigneeID != nil {
		id := *req.AssigneeID
		item.Assignee = &id
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	f.items[key] = append(f.items[key], item)
	return &item, nil
}

// UpdateChecklistItem implements api.ChecklistTransport
func (f *FakeChecklistTransport) UpdateChecklistItem(_ context.Context, key models.ChecklistKey, itemID string, req models.UpdateItemRequest) (*models.ChecklistItem, error) {
	if err := f.record(TransportCall{Method: "update", Key: key, ItemID: itemID, Update: &req}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.items[key]
	for i := range items {
		if items[i].ID != itemID {
			continue
		}
		item := &items[i]
		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.IsCompleted != nil && *req.IsCompleted != item.IsCompleted {
			if *req.IsCompleted {
				f.completeLocked(item)
			} else {
				item.IsCompleted = false
				item.CompletedAt = nil
				item.CompletedBy = nil
			}
		}
		if req.SortOrder != nil {
			item.SortOrder = *req.SortOrder
		}
		if req.AssigneeSet {
			item.Assignee = req.AssigneeID
		}
		updated := *item
		return &updated, nil
	}
	return nil, notFound("Checklist item not found")
}

// DeleteChecklistItem implements api.ChecklistTransport
func (f *FakeChecklistTransport) DeleteChecklistItem(_ context.Context, key models.ChecklistKey, itemID string) error {
	if err := f.record(TransportCall{Method: "delete", Key: key, ItemID: itemID}); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.items[key]
	for i := range items {
		if items[i].ID == itemID {
			f.items[key] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return notFound("Checklist item not found")
}

func (f *FakeChecklistTransport) completeLocked(item *models.ChecklistItem) {
	now := time.Now().UTC()
	actor := f.Actor
	item.IsCompleted = true
	item.CompletedAt = &now
	item.CompletedBy = &actor
}
