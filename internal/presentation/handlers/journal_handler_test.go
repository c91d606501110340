package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/application/services"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
	"github.com/bimakw/staking-gateway/internal/testutil"
)

func setupJournalHandlerTest(t *testing.T) (chi.Router, *testutil.MockJournalRepository) {
	t.Helper()
	repo := testutil.NewMockJournalRepository()
	ctx := context.Background()

	for _, e := range []entities.JournalEntry{
		{ActionID: "a", Action: "deposit", Phase: "started"},
		{ActionID: "a", Action: "deposit", Phase: "confirmed", TxHash: "0x01"},
		{ActionID: "b", Action: "claimReward", Phase: "started"},
	} {
		entry := e
		if err := repo.Record(ctx, &entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	r := chi.NewRouter()
	NewJournalHandler(services.NewJournalService(repo, zap.NewNop()), zap.NewNop()).RegisterRoutes(r)
	return r, repo
}

func TestJournalHandler_GetRecent(t *testing.T) {
	r, _ := setupJournalHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/journal?limit=2", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data []entities.JournalEntry `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Data))
	}
	if resp.Data[0].ActionID != "b" {
		t.Errorf("expected newest entry first, got %s", resp.Data[0].ActionID)
	}
}

func TestJournalHandler_GetByAction(t *testing.T) {
	r, _ := setupJournalHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/journal/a", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data []entities.JournalEntry `json:"data"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Data) != 2 || resp.Data[1].TxHash != "0x01" {
		t.Errorf("unexpected entries %+v", resp.Data)
	}
}

func TestJournalHandler_GetByAction_NotFound(t *testing.T) {
	r, _ := setupJournalHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/journal/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestJournalHandler_RepositoryError(t *testing.T) {
	r, repo := setupJournalHandlerTest(t)
	repo.RecentFunc = func(ctx context.Context, limit int) ([]entities.JournalEntry, error) {
		return nil, errors.New("database down")
	}

	req := httptest.NewRequest(http.MethodGet, "/journal", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestEventsHandler_Stream(t *testing.T) {
	source := &testutil.MockEventSource{
		Past: []entities.PhaseEvent{
			{ActionID: "old-1", Action: "deposit", Phase: entities.PhaseStarted},
			{ActionID: "old-1", Action: "deposit", Phase: entities.PhaseConfirmed},
		},
		Live: []entities.PhaseEvent{
			{ActionID: "new-1", Action: "buyToken", Phase: entities.PhaseSubmitted, TxHash: "0xff"},
		},
	}
	handler := NewEventsHandler(source, zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(handler.Stream))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"?replay=1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", ct)
	}

	var ids []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(ids) < 2 {
		if line := scanner.Text(); strings.HasPrefix(line, "id: ") {
			ids = append(ids, strings.TrimPrefix(line, "id: "))
		}
	}

	expected := []string{"old-1-confirmed", "new-1-submitted"}
	if len(ids) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, ids)
	}
	for i := range expected {
		if ids[i] != expected[i] {
			t.Errorf("event %d: expected %s, got %s", i, expected[i], ids[i])
		}
	}
}

func TestEventsHandler_SubscribeError(t *testing.T) {
	handler := NewEventsHandler(&testutil.MockEventSource{SubscribeErr: errors.New("redis down")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()

	handler.Stream(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}
