package interfaces

import "github.com/lgiavedoni/claw-tools/internal/types"

// LineParser defines the interface for extracting a JSON record from one
// raw log line
type LineParser interface {
	// Parse extracts a RawRecord from a single line of log text.
	// Returns nil for empty, non-JSON or malformed lines; never errors,
	// since noise lines are expected in the stream.
	Parse(line string) types.RawRecord
}
