package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lgiavedoni/claw-tools/internal/interfaces"
	"github.com/lgiavedoni/claw-tools/internal/metrics"
	"github.com/lgiavedoni/claw-tools/internal/reader"
	"github.com/lgiavedoni/claw-tools/internal/types"
)

// FeedService assembles the event feed for one request: read the log file,
// parse each line, classify each record, truncate and filter. It holds no
// per-request state, so concurrent requests are independent.
type FeedService struct {
	parser     interfaces.LineParser
	classifier interfaces.EventClassifier
	reader     interfaces.LogReader

	metrics *metrics.FeedMetrics
	monitor *metrics.Monitor

	// Statistics
	stats      interfaces.ServiceStats
	statsMutex sync.RWMutex
}

// NewFeedService creates a new FeedService instance
func NewFeedService(parser interfaces.LineParser, classifier interfaces.EventClassifier, logReader interfaces.LogReader) *FeedService {
	return &FeedService{
		parser:     parser,
		classifier: classifier,
		reader:     logReader,
		metrics:    metrics.GetFeedMetrics(),
	}
}

// SetMonitor attaches a latency monitor fed by every Feed call
func (s *FeedService) SetMonitor(m *metrics.Monitor) {
	s.monitor = m
}

// ClassifyAll runs every line through the parser and classifier, dropping
// unparsable lines and suppressed records while preserving input order.
func (s *FeedService) ClassifyAll(lines []string) []*types.ClassifiedEvent {
	events := make([]*types.ClassifiedEvent, 0, len(lines))
	var parsed int64

	for _, line := range lines {
		record := s.parser.Parse(line)
		s.metrics.RecordParsedLine(record != nil)
		if record == nil {
			continue
		}
		parsed++

		event := s.classifier.Classify(record)
		if event == nil {
			s.metrics.RecordClassification("", true)
			continue
		}
		s.metrics.RecordClassification(event.EventType, false)
		events = append(events, event)
	}

	s.updateStats(func(stats *interfaces.ServiceStats) {
		stats.LinesRead += int64(len(lines))
		stats.RecordsParsed += parsed
		stats.EventsDelivered += int64(len(events))
	})

	return events
}

// Feed reads the named log file and returns the most recent limit events,
// optionally filtered by level. A missing file is not a failure: the
// result carries a notice and zero events so the dashboard still renders.
func (s *FeedService) Feed(dir, file string, limit int, level string) (*types.FeedResult, error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		s.metrics.RecordFeedRequest(elapsed)
		if s.monitor != nil {
			s.monitor.Observe(elapsed)
		}
	}()

	s.updateStats(func(stats *interfaces.ServiceStats) {
		stats.FeedRequests++
	})

	lines, err := s.reader.ReadLines(dir, file)
	if err != nil {
		if errors.Is(err, reader.ErrNotFound) {
			s.metrics.FeedNotFoundTotal.Inc()
			return &types.FeedResult{
				Events: []*types.ClassifiedEvent{},
				Notice: fmt.Sprintf("log file %q not found in %s", file, dir),
			}, nil
		}
		s.metrics.FeedReadErrorsTotal.Inc()
		s.updateStats(func(stats *interfaces.ServiceStats) {
			stats.FailedReads++
		})
		return nil, fmt.Errorf("failed to read feed source: %w", err)
	}

	events := s.ClassifyAll(lines)
	total := len(events)

	// Most recent N, then the optional post-hoc level filter.
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	if level != "" {
		filtered := make([]*types.ClassifiedEvent, 0, len(events))
		for _, event := range events {
			if strings.EqualFold(event.Level, level) {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}

	return &types.FeedResult{
		Events:  events,
		Total:   total,
		Showing: len(events),
	}, nil
}

// Files lists the log files available in dir.
func (s *FeedService) Files(dir string) ([]types.FileInfo, error) {
	files, err := s.reader.ListFiles(dir)
	if err != nil {
		if errors.Is(err, reader.ErrNotFound) {
			return []types.FileInfo{}, nil
		}
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	return files, nil
}

// GetStats returns service statistics
func (s *FeedService) GetStats() interfaces.ServiceStats {
	s.statsMutex.RLock()
	defer s.statsMutex.RUnlock()
	return s.stats
}

// updateStats safely updates the service statistics
func (s *FeedService) updateStats(updateFunc func(*interfaces.ServiceStats)) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()
	updateFunc(&s.stats)
}
