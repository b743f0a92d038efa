package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adityakx/sehat/internal/memory"
)

type fakeQueue struct {
	enqueued []string
	full     bool
}

func (q *fakeQueue) Enqueue(userID, text string) bool {
	if q.full {
		return false
	}
	q.enqueued = append(q.enqueued, userID+":"+text)
	return true
}

func newTestServer(q *fakeQueue, store memory.Store) *Server {
	if store == nil {
		store = memory.NewInMemoryStore()
	}
	return NewServer(Options{
		Queue:       q,
		Store:       store,
		VerifyToken: "secret-token",
		Services:    map[string]bool{"whatsapp": true, "gemini": false},
	})
}

func TestVerifyHandshake(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid",
			query:      "hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345",
			wantStatus: http.StatusOK,
			wantBody:   "12345",
		},
		{
			name:       "wrong token",
			query:      "hub.mode=subscribe&hub.verify_token=nope&hub.challenge=12345",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wrong mode",
			query:      "hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=12345",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing params",
			query:      "hub.challenge=12345",
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeQueue{}, nil)
			req := httptest.NewRequest(http.MethodGet, "/webhook?"+tt.query, nil)
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Fatalf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestWebhookEnqueuesMessages(t *testing.T) {
	q := &fakeQueue{}
	s := newTestServer(q, nil)

	payload := `{
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "15550001111", "type": "text", "text": {"body": "hello"}},
			{"from": "15550002222", "type": "text", "text": {"body": "hi"}}
		]}}]}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Fatalf("body = %q, want OK", rec.Body.String())
	}
	if len(q.enqueued) != 2 {
		t.Fatalf("enqueued = %v, want 2 messages", q.enqueued)
	}
	if q.enqueued[0] != "15550001111:hello" {
		t.Fatalf("enqueued[0] = %q", q.enqueued[0])
	}
}

func TestWebhookAcknowledgesWhenQueueFull(t *testing.T) {
	q := &fakeQueue{full: true}
	s := newTestServer(q, nil)

	payload := `{"entry": [{"changes": [{"value": {"messages": [
		{"from": "15550001111", "type": "text", "text": {"body": "hello"}}
	]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when dropping", rec.Code)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	s := newTestServer(&fakeQueue{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"entry": [`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthReportsServices(t *testing.T) {
	s := newTestServer(&fakeQueue{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Status   string          `json:"status"`
		Services map[string]bool `json:"services"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "healthy" {
		t.Fatalf("status = %q, want healthy", body.Status)
	}
	if !body.Services["whatsapp"] || body.Services["gemini"] {
		t.Fatalf("services = %v", body.Services)
	}
}

func TestStats(t *testing.T) {
	store := memory.NewInMemoryStore()
	ctx := context.Background()
	for _, turn := range []memory.Turn{
		{UserID: "alice", Message: "a", Response: "r"},
		{UserID: "alice", Message: "b", Response: "r"},
		{UserID: "bob", Message: "c", Response: "r"},
	} {
		if err := store.AppendTurn(ctx, turn); err != nil {
			t.Fatalf("AppendTurn() error = %v", err)
		}
	}

	s := newTestServer(&fakeQueue{}, store)
	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		TotalConversations int64 `json:"total_conversations"`
		UniqueUsers        int64 `json:"unique_users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.TotalConversations != 3 || body.UniqueUsers != 2 {
		t.Fatalf("stats = %+v, want 3 turns and 2 users", body)
	}
}
