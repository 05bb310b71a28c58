package cache

import (
	"context"
	"testing"

	"github.com/thenoetrevino/ticks/internal/events"
	"github.com/thenoetrevino/ticks/internal/models"
	"github.com/thenoetrevino/ticks/internal/testutil"
)

var checklistKey = models.ChecklistKey{WorkspaceSlug: "acme", ProjectID: "p1", IssueID: "i1"}

func TestChecklistStore_AbsentIssueNeverFetches(t *testing.T) {
	transport := testutil.NewFakeChecklistTransport()
	store := NewChecklistStore(transport)
	defer store.Close()

	res := store.Read(models.ChecklistKey{WorkspaceSlug: "acme", ProjectID: "p1"})
	store.Wait()

	if res.HasValue || res.IsLoading {
		t.Errorf("Expected empty result, got %+v", res)
	}
	if transport.CallCount("get") != 0 {
		t.Errorf("Expected no fetch, got %d", transport.CallCount("get"))
	}
}

func TestChecklistStore_LoadsSortedSnapshot(t *testing.T) {
	transport := testutil.NewFakeChecklistTransport()
	transport.Seed(checklistKey, "first", "second", "third")
	store := NewChecklistStore(transport)
	defer store.Close()

	snapshot, err := store.Load(context.Background(), checklistKey)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(snapshot.Items) != 3 || snapshot.Items[0].Name != "first" || snapshot.Items[2].Name != "third" {
		t.Errorf("Unexpected items %+v", snapshot.Items)
	}
	if err := snapshot.VerifyProgress(); err != nil {
		t.Errorf("Expected consistent progress, got %v", err)
	}
}

func TestChecklistStore_ChangeEventForOtherIssueIsIgnored(t *testing.T) {
	transport := testutil.NewFakeChecklistTransport()
	store := NewChecklistStore(transport)
	defer store.Close()

	if _, err := store.Load(context.Background(), checklistKey); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	other := checklistKey
	other.IssueID = "i2"
	store.HandleEvent(context.Background(), events.ChecklistChanged(other))
	store.HandleEvent(context.Background(), events.IssueChanged("acme", "p1", "i1"))
	store.Wait()
	if transport.CallCount("get") != 1 {
		t.Errorf("Expected no refetch, got %d fetches", transport.CallCount("get"))
	}

	store.HandleEvent(context.Background(), events.ChecklistChanged(checklistKey))
	store.Wait()
	if transport.CallCount("get") != 2 {
		t.Errorf("Expected one refetch, got %d fetches", transport.CallCount("get"))
	}
}

func TestUnassignedStore_IssueEventsInvalidateWorkspace(t *testing.T) {
	fetches := 0
	store := NewUnassignedStore(func(ctx context.Context, key models.WorkspaceUserKey) ([]models.Issue, error) {
		fetches++
		return []models.Issue{{ID: "i1"}}, nil
	})
	defer store.Close()

	key := models.WorkspaceUserKey{WorkspaceSlug: "acme", UserID: "u1"}
	if _, err := store.Load(context.Background(), key); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	store.HandleEvent(context.Background(), events.IssueChanged("globex", "p1", "i9"))
	store.Wait()
	store.HandleEvent(context.Background(), events.IssueChanged("acme", "p1", "i1"))
	store.Wait()

	if fetches != 2 {
		t.Errorf("Expected one refetch for the matching workspace, got %d fetches", fetches)
	}
}
