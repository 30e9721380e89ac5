package types

import (
	"encoding/json"
	"testing"
)

func TestRawRecord_Args(t *testing.T) {
	record := RawRecord{
		"0": `{"subsystem":"gateway/inbound"}`,
		"1": map[string]interface{}{"body": "hello"},
		"2": "received user message",
	}

	args := record.Args()
	if args.ModuleDescriptor != `{"subsystem":"gateway/inbound"}` {
		t.Errorf("ModuleDescriptor = %v", args.ModuleDescriptor)
	}
	payload, ok := args.Payload.(map[string]interface{})
	if !ok || payload["body"] != "hello" {
		t.Errorf("Payload = %v", args.Payload)
	}
	if args.TrailingMessage != "received user message" {
		t.Errorf("TrailingMessage = %v", args.TrailingMessage)
	}
}

func TestRawRecord_Args_MissingSlots(t *testing.T) {
	record := RawRecord{"1": "just a message"}

	args := record.Args()
	if args.ModuleDescriptor != nil {
		t.Errorf("expected nil ModuleDescriptor, got %v", args.ModuleDescriptor)
	}
	if args.Payload != "just a message" {
		t.Errorf("Payload = %v", args.Payload)
	}
	if args.TrailingMessage != nil {
		t.Errorf("expected nil TrailingMessage, got %v", args.TrailingMessage)
	}
}

func TestRawRecord_Meta(t *testing.T) {
	record := RawRecord{
		"_meta": map[string]interface{}{"logLevelName": "WARN"},
	}

	meta := record.Meta()
	if meta == nil {
		t.Fatal("expected metadata object")
	}
	if meta["logLevelName"] != "WARN" {
		t.Errorf("logLevelName = %v, want WARN", meta["logLevelName"])
	}

	if (RawRecord{}).Meta() != nil {
		t.Error("expected nil metadata for record without _meta")
	}
	if (RawRecord{"_meta": "not an object"}).Meta() != nil {
		t.Error("expected nil metadata for non-object _meta")
	}
}

func TestClassifiedEvent_JSONSerialization(t *testing.T) {
	event := &ClassifiedEvent{
		Time:       "10:30:00",
		Timestamp:  "2024-01-01T10:30:00Z",
		Level:      "INFO",
		Subsystem:  "agent/embedded",
		EventType:  EventAgentResponse,
		Message:    "Response ready in 2.3s",
		RawMessage: "prompt end elapsed=2300ms",
		Data:       map[string]interface{}{"tool": "calendar"},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Failed to marshal ClassifiedEvent: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal ClassifiedEvent: %v", err)
	}

	// The dashboard client depends on these exact field names.
	for _, key := range []string{"time", "timestamp", "level", "subsystem", "eventType", "message", "rawMessage", "data", "raw"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing JSON field %q", key)
		}
	}
	if decoded["eventType"] != "agent-response" {
		t.Errorf("eventType = %v, want agent-response", decoded["eventType"])
	}
}

func TestFeedResult_NoticeOmittedWhenEmpty(t *testing.T) {
	data, err := json.Marshal(&FeedResult{Events: []*ClassifiedEvent{}})
	if err != nil {
		t.Fatalf("Failed to marshal FeedResult: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal FeedResult: %v", err)
	}
	if _, ok := decoded["notice"]; ok {
		t.Error("empty notice should be omitted from JSON")
	}
}
