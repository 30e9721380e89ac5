package types

// EventType is the display category a log record is classified into.
type EventType string

const (
	EventUserMessage   EventType = "user-message"
	EventAgentThinking EventType = "agent-thinking"
	EventAgentResponse EventType = "agent-response"
	EventToolUse       EventType = "tool-use"
	EventError         EventType = "error"
	EventSystem        EventType = "system"
)

// RawRecord is one parsed JSON object from a single log line. The agent's
// logger emits an open schema, so this stays an untyped map.
type RawRecord map[string]interface{}

// LogArgs is the positional-argument tuple carried by a RawRecord under the
// string keys "0", "1" and "2". Which slot holds what varies per record;
// the named accessors keep the extraction logic in one place.
type LogArgs struct {
	ModuleDescriptor interface{} // slot "0": JSON-encoded subsystem descriptor or plain text
	Payload          interface{} // slot "1": structured payload object or message text
	TrailingMessage  interface{} // slot "2": free-text message
}

// Args extracts the positional tuple from the record.
func (r RawRecord) Args() LogArgs {
	return LogArgs{
		ModuleDescriptor: r["0"],
		Payload:          r["1"],
		TrailingMessage:  r["2"],
	}
}

// Meta returns the record's nested metadata object, or nil if absent.
func (r RawRecord) Meta() map[string]interface{} {
	if m, ok := r["_meta"].(map[string]interface{}); ok {
		return m
	}
	return nil
}

// ClassifiedEvent is the unit delivered to the dashboard client.
type ClassifiedEvent struct {
	Time       string                 `json:"time"`      // locale clock string, "" if no timestamp
	Timestamp  interface{}            `json:"timestamp"` // original value, kept for sorting
	Level      string                 `json:"level"`
	Subsystem  string                 `json:"subsystem"`
	EventType  EventType              `json:"eventType"`
	Message    string                 `json:"message"`
	RawMessage string                 `json:"rawMessage"`
	Data       map[string]interface{} `json:"data"`
	Raw        RawRecord              `json:"raw"`
}

// FeedResult is the payload the HTTP boundary returns for one feed request.
type FeedResult struct {
	Events  []*ClassifiedEvent `json:"events"`
	Total   int                `json:"total"`   // classified events before truncation
	Showing int                `json:"showing"` // after truncation and level filter
	Notice  string             `json:"notice,omitempty"`
}

// FileInfo describes one log file available in the watched directory.
type FileInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}
