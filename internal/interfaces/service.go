package interfaces

import "github.com/lgiavedoni/claw-tools/internal/types"

// FeedService defines the interface for the central feed assembly service
type FeedService interface {
	// ClassifyAll runs every line through the parser and classifier,
	// preserving input order and dropping unparsable or suppressed records.
	ClassifyAll(lines []string) []*types.ClassifiedEvent

	// Feed reads the named log file and returns the most recent limit
	// events, optionally filtered by level. A missing file yields an empty
	// result with an explanatory notice, not an error.
	Feed(dir, file string, limit int, level string) (*types.FeedResult, error)

	// Files lists the log files available in dir.
	Files(dir string) ([]types.FileInfo, error)

	// GetStats returns service statistics
	GetStats() ServiceStats
}

// ServiceStats represents statistics about the feed service
type ServiceStats struct {
	LinesRead       int64 `json:"lines_read"`
	RecordsParsed   int64 `json:"records_parsed"`
	EventsDelivered int64 `json:"events_delivered"`
	FeedRequests    int64 `json:"feed_requests"`
	FailedReads     int64 `json:"failed_reads"`
}
