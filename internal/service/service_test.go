package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lgiavedoni/claw-tools/internal/classify"
	"github.com/lgiavedoni/claw-tools/internal/parser"
	"github.com/lgiavedoni/claw-tools/internal/reader"
	"github.com/lgiavedoni/claw-tools/internal/types"
)

// fixtureLines is a realistic slice of gateway log output: noise lines,
// background chatter, conversation markers and an error.
var fixtureLines = []string{
	"",
	"==== session started 2024-01-01 ====",
	`{"time":"2024-01-01T10:00:00Z","0":"{\"subsystem\":\"gateway/inbound\"}","1":{"body":"hello"},"2":"received user message","_meta":{"logLevelName":"INFO"}}`,
	`{"time":"2024-01-01T10:00:01Z","0":"{\"subsystem\":\"agent/embedded\"}","1":"run start model=gpt-4","_meta":{"logLevelName":"INFO"}}`,
	`{"time":"2024-01-01T10:00:02Z","0":"{\"subsystem\":\"gateway/heartbeat\"}","1":"periodic tick 42","_meta":{"logLevelName":"DEBUG"}}`,
	"not json at all",
	`{"time":"2024-01-01T10:00:03Z","0":"{\"subsystem\":\"agent/tools\"}","1":{"tool":"browser"},"2":"tool start","_meta":{"logLevelName":"INFO"}}`,
	`{"time":"2024-01-01T10:00:04Z","0":"{\"subsystem\":\"gateway\"}","1":"connection refused","_meta":{"logLevelName":"ERROR"}}`,
	`{"time":"2024-01-01T10:00:05Z","0":"{\"subsystem\":\"gateway/outbound\"}","1":{"text":"Hi there"},"2":"auto-reply sent","_meta":{"logLevelName":"INFO"}}`,
}

func newTestService() *FeedService {
	return NewFeedService(
		parser.NewLineParser(),
		classify.NewClassifier(classify.DefaultConfig()),
		reader.NewFileReader(),
	)
}

func writeFixture(t *testing.T, lines []string) (dir, file string) {
	t.Helper()
	dir = t.TempDir()
	file = "session.log"
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return dir, file
}

func TestFeedService_ClassifyAll_CountsAndOrder(t *testing.T) {
	s := newTestService()

	events := s.ClassifyAll(fixtureLines)

	// N raw lines, M parsed, K visible: K <= M <= N.
	n := len(fixtureLines)
	m := 6 // parseable JSON lines in the fixture
	k := len(events)
	if k > m || m > n {
		t.Errorf("expected K <= M <= N, got K=%d M=%d N=%d", k, m, n)
	}

	// Heartbeat suppressed, everything else visible in original order.
	wantTypes := []types.EventType{
		types.EventUserMessage,
		types.EventAgentThinking,
		types.EventToolUse,
		types.EventError,
		types.EventAgentResponse,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].EventType != want {
			t.Errorf("events[%d].EventType = %q, want %q", i, events[i].EventType, want)
		}
	}
}

func TestFeedService_Feed(t *testing.T) {
	s := newTestService()
	dir, file := writeFixture(t, fixtureLines)

	result, err := s.Feed(dir, file, 0, "")
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if result.Total != 5 || result.Showing != 5 {
		t.Errorf("total=%d showing=%d, want 5/5", result.Total, result.Showing)
	}
	if result.Notice != "" {
		t.Errorf("unexpected notice %q", result.Notice)
	}
}

func TestFeedService_Feed_Limit(t *testing.T) {
	s := newTestService()
	dir, file := writeFixture(t, fixtureLines)

	result, err := s.Feed(dir, file, 2, "")
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if result.Total != 5 {
		t.Errorf("total = %d, want 5 (pre-truncation count)", result.Total)
	}
	if result.Showing != 2 || len(result.Events) != 2 {
		t.Fatalf("showing = %d, want 2", result.Showing)
	}
	// The most recent two events.
	if result.Events[0].EventType != types.EventError {
		t.Errorf("events[0] = %q, want error", result.Events[0].EventType)
	}
	if result.Events[1].EventType != types.EventAgentResponse {
		t.Errorf("events[1] = %q, want agent-response", result.Events[1].EventType)
	}
}

func TestFeedService_Feed_LevelFilter(t *testing.T) {
	s := newTestService()
	dir, file := writeFixture(t, fixtureLines)

	result, err := s.Feed(dir, file, 0, "error")
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if result.Showing != 1 {
		t.Fatalf("showing = %d, want 1 error-level event", result.Showing)
	}
	if result.Events[0].Level != "ERROR" {
		t.Errorf("level = %q, want ERROR", result.Events[0].Level)
	}
	if result.Total != 5 {
		t.Errorf("total = %d, want 5", result.Total)
	}
}

func TestFeedService_Feed_MissingFile(t *testing.T) {
	s := newTestService()

	result, err := s.Feed(t.TempDir(), "missing.log", 50, "")
	if err != nil {
		t.Fatalf("Feed() error = %v, missing file must not fail the request", err)
	}
	if len(result.Events) != 0 {
		t.Errorf("got %d events for missing file, want 0", len(result.Events))
	}
	if result.Notice == "" {
		t.Error("expected explanatory notice for missing file")
	}
}

func TestFeedService_Feed_EmptyFile(t *testing.T) {
	s := newTestService()
	dir, file := writeFixture(t, []string{""})

	result, err := s.Feed(dir, file, 50, "")
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if result.Total != 0 || result.Showing != 0 || result.Notice != "" {
		t.Errorf("unexpected result for empty file: %+v", result)
	}
}

func TestFeedService_Files(t *testing.T) {
	s := newTestService()
	dir, _ := writeFixture(t, fixtureLines)

	files, err := s.Files(dir)
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if len(files) != 1 || files[0].Name != "session.log" {
		t.Errorf("unexpected file list: %v", files)
	}

	// Missing directory degrades to an empty list, not an error.
	files, err = s.Files("/nonexistent-dir-for-test")
	if err != nil {
		t.Fatalf("Files() error = %v for missing dir", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files for missing dir, want 0", len(files))
	}
}
