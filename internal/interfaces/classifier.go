package interfaces

import "github.com/lgiavedoni/claw-tools/internal/types"

// EventClassifier defines the interface for turning a raw log record into
// a displayable feed event
type EventClassifier interface {
	// Classify maps a RawRecord to a ClassifiedEvent. Returns nil when the
	// record is suppressed or carries no message-like content. Must be a
	// pure function: same record in, same event out.
	Classify(record types.RawRecord) *types.ClassifiedEvent
}
