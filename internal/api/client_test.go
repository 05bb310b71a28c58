package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thenoetrevino/ticks/internal/models"
)

// ============================================================================
// Test Helpers
// ============================================================================

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

// setupServer starts a server that records the request and answers with
// the given status and body.
func setupServer(t *testing.T, status int, body string) (*Client, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*rec = recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Body:   string(data),
			Header: r.Header.Clone(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithAPIKey("secret"), WithActor("user-1"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, rec
}

var testKey = models.ChecklistKey{WorkspaceSlug: "acme", ProjectID: "p1", IssueID: "i1"}

// ============================================================================
// Construction
// ============================================================================

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a url", "/relative"} {
		if _, err := NewClient(raw); err == nil {
			t.Errorf("Expected error for base URL %q", raw)
		}
	}
}

// ============================================================================
// Checklist calls
// ============================================================================

func TestGetChecklist(t *testing.T) {
	client, rec := setupServer(t, http.StatusOK, `{
		"checklist_items": [{"id": "c1", "name": "One", "is_completed": true, "sort_order": 65535.0}],
		"progress": {"total": 1, "completed": 1, "percentage": 100.0}
	}`)

	snapshot, err := client.GetChecklist(context.Background(), testKey)
	if err != nil {
		t.Fatalf("GetChecklist failed: %v", err)
	}

	if rec.Method != http.MethodGet || rec.Path != "/api/workspaces/acme/projects/p1/work-items/i1/checklist/" {
		t.Errorf("Unexpected request %s %s", rec.Method, rec.Path)
	}
	if rec.Header.Get("X-API-Key") != "secret" || rec.Header.Get("X-User-ID") != "user-1" {
		t.Errorf("Expected auth and actor headers, got %v", rec.Header)
	}
	if len(snapshot.Items) != 1 || snapshot.Progress.Completed != 1 {
		t.Errorf("Unexpected snapshot %+v", snapshot)
	}
}

func TestGetChecklist_EmptyItemsNeverNil(t *testing.T) {
	client, _ := setupServer(t, http.StatusOK, `{"progress": {"total": 0, "completed": 0, "percentage": 0}}`)

	snapshot, err := client.GetChecklist(context.Background(), testKey)
	if err != nil {
		t.Fatalf("GetChecklist failed: %v", err)
	}
	if snapshot.Items == nil {
		t.Error("Expected empty slice, got nil")
	}
}

func TestGetChecklist_IncompleteKeyNeverSends(t *testing.T) {
	client, rec := setupServer(t, http.StatusOK, `{}`)

	_, err := client.GetChecklist(context.Background(), models.ChecklistKey{WorkspaceSlug: "acme", ProjectID: "p1"})
	if !errors.Is(err, ErrIncompleteKey) {
		t.Errorf("Expected ErrIncompleteKey, got %v", err)
	}
	if rec.Method != "" {
		t.Errorf("Expected no request, got %s %s", rec.Method, rec.Path)
	}
}

func TestCreateChecklistItem_SendsOnlyGivenFields(t *testing.T) {
	client, rec := setupServer(t, http.StatusCreated, `{"id": "c9", "name": "Ship it", "is_completed": false}`)

	done := false
	item, err := client.CreateChecklistItem(context.Background(), testKey, models.CreateItemRequest{
		Name:        "Ship it",
		IsCompleted: &done,
	})
	if err != nil {
		t.Fatalf("CreateChecklistItem failed: %v", err)
	}

	if rec.Method != http.MethodPost {
		t.Errorf("Expected POST, got %s", rec.Method)
	}
	if rec.Body != `{"name":"Ship it","is_completed":false}` {
		t.Errorf("Unexpected body %s", rec.Body)
	}
	if rec.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type, got %q", rec.Header.Get("Content-Type"))
	}
	if item.ID != "c9" {
		t.Errorf("Expected item c9, got %+v", item)
	}
}

func TestUpdateChecklistItem_PartialBody(t *testing.T) {
	client, rec := setupServer(t, http.StatusOK, `{"id": "c1", "is_completed": true}`)

	done := true
	if _, err := client.UpdateChecklistItem(context.Background(), testKey, "c1", models.UpdateItemRequest{IsCompleted: &done}); err != nil {
		t.Fatalf("UpdateChecklistItem failed: %v", err)
	}

	if rec.Method != http.MethodPatch || rec.Path != "/api/workspaces/acme/projects/p1/work-items/i1/checklist/c1/" {
		t.Errorf("Unexpected request %s %s", rec.Method, rec.Path)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(rec.Body), &body); err != nil {
		t.Fatalf("Body is not JSON: %v", err)
	}
	if len(body) != 1 || body["is_completed"] != true {
		t.Errorf("Expected only is_completed, got %v", body)
	}
}

func TestDeleteChecklistItem_NoContent(t *testing.T) {
	client, rec := setupServer(t, http.StatusNoContent, ``)

	if err := client.DeleteChecklistItem(context.Background(), testKey, "c1"); err != nil {
		t.Fatalf("DeleteChecklistItem failed: %v", err)
	}
	if rec.Method != http.MethodDelete || rec.Body != "" {
		t.Errorf("Unexpected request %s with body %q", rec.Method, rec.Body)
	}
}

func TestDeleteChecklistItem_NotFound(t *testing.T) {
	client, _ := setupServer(t, http.StatusNotFound, `{"error": "Checklist item not found"}`)

	err := client.DeleteChecklistItem(context.Background(), testKey, "missing")
	if !IsNotFound(err) {
		t.Fatalf("Expected not found error, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %+v", apiErr)
	}
	if apiErr.Message != "Checklist item not found" {
		t.Errorf("Unexpected message %q", apiErr.Message)
	}
}

func TestCreateChecklistItem_ValidationRejection(t *testing.T) {
	client, _ := setupServer(t, http.StatusBadRequest, `{"name": ["This field may not be blank."]}`)

	_, err := client.CreateChecklistItem(context.Background(), testKey, models.CreateItemRequest{Name: "x"})
	if !IsServerRejection(err) || IsNotFound(err) {
		t.Fatalf("Expected server rejection, got %v", err)
	}
	if got := Message(err, ""); got != "name: This field may not be blank." {
		t.Errorf("Unexpected message %q", got)
	}
}

func TestServerErrorWithoutBodyUsesFallback(t *testing.T) {
	client, _ := setupServer(t, http.StatusInternalServerError, ``)

	_, err := client.GetChecklist(context.Background(), testKey)
	if got := Message(err, ""); got != "Failed to load checklist" {
		t.Errorf("Expected fallback message, got %q", got)
	}
}

func TestTransportUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(url)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.GetChecklist(context.Background(), testKey)
	if !IsTransportUnavailable(err) {
		t.Fatalf("Expected transport unavailable, got %v", err)
	}
	if Message(err, "") != "Network error" {
		t.Errorf("Expected Network error message, got %q", Message(err, ""))
	}
}

// ============================================================================
// Issue calls
// ============================================================================

func TestListWorkspaceIssues_Query(t *testing.T) {
	client, rec := setupServer(t, http.StatusOK, `{"results": [{"id": "i1"}]}`)

	resp, err := client.ListWorkspaceIssues(context.Background(), "acme", IssueQuery{
		Assignees: []string{UnassignedFilter},
		OrderBy:   "-created_at",
		PerPage:   100,
	})
	if err != nil {
		t.Fatalf("ListWorkspaceIssues failed: %v", err)
	}

	if rec.Path != "/api/workspaces/acme/issues/" {
		t.Errorf("Unexpected path %s", rec.Path)
	}
	if rec.Query != "assignees=None&order_by=-created_at&per_page=100" {
		t.Errorf("Unexpected query %s", rec.Query)
	}
	if len(resp.Flatten()) != 1 {
		t.Errorf("Expected one issue, got %+v", resp)
	}
}

func TestUpdateIssueAssignees(t *testing.T) {
	client, rec := setupServer(t, http.StatusOK, `{"id": "i1"}`)

	if err := client.UpdateIssueAssignees(context.Background(), "acme", "p1", "i1", []string{"u1"}); err != nil {
		t.Fatalf("UpdateIssueAssignees failed: %v", err)
	}
	if rec.Method != http.MethodPatch || rec.Path != "/api/workspaces/acme/projects/p1/issues/i1/" {
		t.Errorf("Unexpected request %s %s", rec.Method, rec.Path)
	}
	if rec.Body != `{"assignee_ids":["u1"]}` {
		t.Errorf("Unexpected body %s", rec.Body)
	}
}

func TestEndpoint_EscapesSegments(t *testing.T) {
	client, err := NewClient("http://example.test/base/")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	got := client.endpoint(nil, "workspaces", "a b/c")
	if got != "http://example.test/base/api/workspaces/a%20b%2Fc/" {
		t.Errorf("Unexpected endpoint %s", got)
	}
}
