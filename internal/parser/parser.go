package parser

import (
	"encoding/json"
	"strings"

	"github.com/lgiavedoni/claw-tools/internal/interfaces"
	"github.com/lgiavedoni/claw-tools/internal/types"
)

// LineParser extracts one JSON record from one raw log line.
//
// The agent writes two line shapes: plain JSON objects (one per line) and
// lines with a human-readable prefix followed by a JSON object, e.g.
// "2024-01-01 10:00:00 gateway {...}". Both are handled; anything else is
// noise and yields nil.
type LineParser struct{}

// NewLineParser creates a parser for the agent's log line formats
func NewLineParser() interfaces.LineParser {
	return &LineParser{}
}

// Parse extracts a RawRecord from a single line. Returns nil for empty,
// non-JSON or malformed lines; parse failures are expected and never
// surface as errors.
func (p *LineParser) Parse(line string) types.RawRecord {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	// The whole line is a JSON object.
	if strings.HasPrefix(trimmed, "{") {
		if record := decodeObject(trimmed); record != nil {
			return record
		}
	}

	// Otherwise tolerate an arbitrary non-JSON prefix: take the trailing
	// substring starting at the last "{" that still parses as an object.
	// Scanning backwards from the end skips closing braces of nested
	// objects until the outermost opening brace of the payload is found.
	for idx := strings.LastIndex(trimmed, "{"); idx >= 0; idx = strings.LastIndex(trimmed[:idx], "{") {
		if record := decodeObject(trimmed[idx:]); record != nil {
			return record
		}
	}

	return nil
}

// decodeObject unmarshals s into a RawRecord, returning nil on failure.
func decodeObject(s string) types.RawRecord {
	var record types.RawRecord
	if err := json.Unmarshal([]byte(s), &record); err != nil {
		return nil
	}
	return record
}
