// Package checklist is the terminal front-end of a work item's checklist:
// a Controller owning transient edit state and a bubbletea Model driving it.
package checklist

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"github.com/thenoetrevino/ticks/internal/api"
	"github.com/thenoetrevino/ticks/internal/models"
	checklistsvc "github.com/thenoetrevino/ticks/internal/services/checklist"
	"github.com/thenoetrevino/ticks/internal/tui/state"
)

// Controller errors. Commands rejected with one of these were never dispatched.
var (
	ErrCreationInFlight = errors.New("a checklist item is already being created")
	ErrItemBusy         = errors.New("checklist item has a command in flight")
	ErrDisabled         = errors.New("checklist is read-only")
	ErrClosed           = errors.New("checklist controller is closed")
)

// Notifier receives user-visible messages ("info", "warning", "error").
// *state.NotificationState implements it.
type Notifier interface {
	Notify(level, message string)
}

// State is an immutable snapshot of the controller's transient state.
type State struct {
	CreationBuffer   string
	CreationInFlight bool
	EditingItemID    string
	EditingBuffer    string
	Committing       bool
	Disabled         bool
	// Pending holds the ids of items with a command in flight
	Pending map[string]bool
}

// IsEditing reports whether itemID is the item being edited
func (s State) IsEditing(itemID string) bool {
	return itemID != "" && s.EditingItemID == itemID
}

// IsPending reports whether itemID has a command in flight
func (s State) IsPending(itemID string) bool {
	return s.Pending[itemID]
}

// Option configures a Controller
type Option func(*Controller)

// WithNotifier sets where failures and confirmations are reported
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the controller logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller maps user actions on one checklist to service commands. It
// allows one edit session and one creation at a time and at most one
// command per item. It is safe for concurrent use.
type Controller struct {
	key      models.ChecklistKey
	service  checklistsvc.Service
	notifier Notifier
	logger   *slog.Logger

	mu               sync.Mutex
	creation         *state.InputState
	creationInFlight bool
	editing          *state.InputState
	editingItem      *models.ChecklistItem
	committing       bool
	disabled         bool
	pending          map[string]bool
	closed           bool
	subs             map[int]chan State
	nextSub          int
}

type discardNotifier struct{}

func (discardNotifier) Notify(string, string) {}

// NewController creates a controller for the checklist identified by key
func NewController(key models.ChecklistKey, service checklistsvc.Service, opts ...Option) *Controller {
	c := &Controller{
		key:      key,
		service:  service,
		notifier: discardNotifier{},
		logger:   slog.Default(),
		// Length limits are enforced by the service so they surface as validation errors.
		creation: &state.InputState{},
		editing:  &state.InputState{},
		pending:  make(map[string]bool),
		subs:     make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the checklist the controller acts on
func (c *Controller) Key() models.ChecklistKey {
	return c.key
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe returns a channel receiving a snapshot after every state change.
// Only the latest snapshot is buffered. Call cancel to unsubscribe.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.stateLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Close discards the results of commands still in flight and closes
// every subscription.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// SetDisabled toggles read-only mode. Disabling ends an edit session that is
// not committing.
func (c *Controller) SetDisabled(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = disabled
	if disabled && !c.committing {
		c.clearEditLocked()
	}
	c.publishLocked()
}

// SetCreationBuffer replaces the text of the new item input
func (c *Controller) SetCreationBuffer(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creation.Set(value)
	c.publishLocked()
}

// SubmitCreate creates an item from the creation buffer. The buffer is
// cleared on success and kept on failure. A second submit while one is in
// flight returns ErrCreationInFlight without dispatching.
func (c *Controller) SubmitCreate(ctx context.Context) (item *models.ChecklistItem, err error) {
	c.mu.Lock()
	if err := c.admitLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.creationInFlight {
		c.mu.Unlock()
		return nil, ErrCreationInFlight
	}
	req := checklistsvc.CreateRequest{Name: c.creation.Buffer}
	c.creationInFlight = true
	c.publishLocked()
	c.mu.Unlock()

	defer func() {
		c.settle(err, "Failed to create checklist item", func() {
			c.creationInFlight = false
			if err == nil {
				c.creation.Clear()
			}
		})
	}()

	return c.service.Create(ctx, c.key, req)
}

// BeginEdit starts an edit session on item with its name as the buffer.
// Any other session is abandoned.
func (c *Controller) BeginEdit(item models.ChecklistItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.admitLocked(); err != nil {
		return err
	}
	if c.committing || c.pending[item.ID] {
		return ErrItemBusy
	}

	c.editingItem = &item
	c.editing.Set(item.Name)
	c.editing.SnapshotInitialBuffer()
	c.publishLocked()
	return nil
}

// SetEditBuffer replaces the text of the rename input
func (c *Controller) SetEditBuffer(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editingItem == nil || c.committing {
		return
	}
	c.editing.Set(value)
	c.publishLocked()
}

// CancelEdit ends the edit session without dispatching. A session that is
// already committing runs to completion.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.committing {
		return
	}
	c.clearEditLocked()
	c.publishLocked()
}

// CommitEdit renames the item being edited. It returns ErrItemBusy while
// another command on the item is in flight. An empty or unchanged buffer
// ends the session without dispatching. On failure the session stays open
// with its buffer so the user can retry.
func (c *Controller) CommitEdit(ctx context.Context) (err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.editingItem == nil {
		c.mu.Unlock()
		return nil
	}
	if c.committing || c.pending[c.editingItem.ID] {
		c.mu.Unlock()
		return ErrItemBusy
	}
	if c.editing.IsEmpty() || !c.editing.HasInputChanges() {
		c.clearEditLocked()
		c.publishLocked()
		c.mu.Unlock()
		return nil
	}

	item := *c.editingItem
	name := c.editing.TrimmedBuffer()
	c.committing = true
	c.pending[item.ID] = true
	c.publishLocked()
	c.mu.Unlock()

	defer func() {
		c.settle(err, "Failed to rename checklist item", func() {
			c.committing = false
			delete(c.pending, item.ID)
			if err == nil && c.editingItem != nil && c.editingItem.ID == item.ID {
				c.clearEditLocked()
			}
		})
	}()

	_, err = c.service.Rename(ctx, c.key, item, name)
	return err
}

// Toggle flips the completion of item
func (c *Controller) Toggle(ctx context.Context, item models.ChecklistItem) error {
	return c.runItem(item.ID, "Failed to update checklist item", func() error {
		_, err := c.service.ToggleCompletion(ctx, c.key, item)
		return err
	})
}

// Reassign sets the assignee of item; nil clears it.
func (c *Controller) Reassign(ctx context.Context, item models.ChecklistItem, assigneeID *string) error {
	return c.runItem(item.ID, "Failed to assign checklist item", func() error {
		_, err := c.service.Reassign(ctx, c.key, item, assigneeID)
		return err
	})
}

// Move sets the sort position of item
func (c *Controller) Move(ctx context.Context, item models.ChecklistItem, sortOrder float64) error {
	return c.runItem(item.ID, "Failed to move checklist item", func() error {
		_, err := c.service.Reorder(ctx, c.key, item, sortOrder)
		return err
	})
}

// Delete removes the item. A missing item is reported at info level and its
// NotFound error returned so callers can carry on.
func (c *Controller) Delete(ctx context.Context, itemID string) error {
	err := c.runItem(itemID, "Failed to delete checklist item", func() error {
		return c.service.Delete(ctx, c.key, itemID)
	})
	if err == nil {
		c.mu.Lock()
		if !c.closed && c.editingItem != nil && c.editingItem.ID == itemID && !c.committing {
			c.clearEditLocked()
			c.publishLocked()
		}
		c.mu.Unlock()
	}
	return err
}

// runItem dispatches op holding the advisory lock on itemID
func (c *Controller) runItem(itemID, fallback string, op func() error) (err error) {
	c.mu.Lock()
	if err := c.admitLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.pending[itemID] {
		c.mu.Unlock()
		return ErrItemBusy
	}
	c.pending[itemID] = true
	c.publishLocked()
	c.mu.Unlock()

	defer func() {
		c.settle(err, fallback, func() {
			delete(c.pending, itemID)
		})
	}()

	return op()
}

// settle applies cleanup under the lock and reports err. Once closed only the
// cleanup runs.
func (c *Controller) settle(err error, fallback string, cleanup func()) {
	c.mu.Lock()
	cleanup()
	closed := c.closed
	c.publishLocked()
	c.mu.Unlock()

	if closed {
		if err != nil {
			c.logger.Debug("discarding checklist command result after close", "key", c.key.String(), "error", err)
		}
		return
	}
	if err != nil {
		c.report(err, fallback)
	}
}

func (c *Controller) report(err error, fallback string) {
	switch {
	case checklistsvc.IsValidation(err):
		var v *checklistsvc.ValidationError
		errors.As(err, &v)
		c.notifier.Notify("error", v.Error())
	case api.IsNotFound(err):
		c.notifier.Notify("info", "Checklist item no longer exists")
	default:
		c.logger.Warn("checklist command failed", "key", c.key.String(), "error", err)
		c.notifier.Notify("error", api.Message(err, fallback))
	}
}

func (c *Controller) admitLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.disabled {
		return ErrDisabled
	}
	return nil
}

func (c *Controller) clearEditLocked() {
	c.editingItem = nil
	c.editing.Clear()
}

func (c *Controller) stateLocked() State {
	s := State{
		CreationBuffer:   c.creation.Buffer,
		CreationInFlight: c.creationInFlight,
		EditingBuffer:    c.editing.Buffer,
		Committing:       c.committing,
		Disabled:         c.disabled,
		Pending:          maps.Clone(c.pending),
	}
	if c.editingItem != nil {
		s.EditingItemID = c.editingItem.ID
	}
	return s
}

func (c *Controller) publishLocked() {
	if c.closed {
		return
	}
	s := c.stateLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
