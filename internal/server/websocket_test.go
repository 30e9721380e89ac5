package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lgiavedoni/claw-tools/internal/types"
)

// dialStream connects a WebSocket client to the feed stream endpoint
func dialStream(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/feed/stream" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	return conn
}

func TestFeedStream_InitialSnapshot(t *testing.T) {
	_, mux := setupTestServer(t)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	conn := dialStream(t, ts, "")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg streamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read initial snapshot: %v", err)
	}

	if len(msg.Events) != 3 {
		t.Fatalf("got %d events in snapshot, want 3", len(msg.Events))
	}
	if msg.Total != 3 {
		t.Errorf("total = %d, want 3", msg.Total)
	}
	if msg.Events[0].EventType != types.EventUserMessage {
		t.Errorf("events[0].EventType = %q, want user-message", msg.Events[0].EventType)
	}
}

func TestFeedStream_LevelFilter(t *testing.T) {
	_, mux := setupTestServer(t)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	conn := dialStream(t, ts, "?level=error")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg streamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read initial snapshot: %v", err)
	}

	if len(msg.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(msg.Events))
	}
	if msg.Events[0].Level != "ERROR" {
		t.Errorf("level = %q, want ERROR", msg.Events[0].Level)
	}
}

func TestFeedStream_MissingFileNotice(t *testing.T) {
	_, mux := setupTestServer(t)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	conn := dialStream(t, ts, "?file=missing.log")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg streamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read initial snapshot: %v", err)
	}

	if len(msg.Events) != 0 {
		t.Errorf("got %d events, want 0", len(msg.Events))
	}
	if msg.Notice == "" {
		t.Error("expected explanatory notice for missing file")
	}
}

func TestFeedStream_RejectsInvalidLimit(t *testing.T) {
	_, mux := setupTestServer(t)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/feed/stream?limit=abc"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail for invalid limit")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 response, got %v", resp)
	}
}
