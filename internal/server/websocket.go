package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lgiavedoni/claw-tools/internal/types"
)

const (
	// writeTimeout bounds every WebSocket write
	writeTimeout = 10 * time.Second
	// readTimeout is refreshed on every pong from the client
	readTimeout = 60 * time.Second
	// pingInterval keeps idle connections alive
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The polling API is already open cross-origin; the stream follows.
		return true
	},
}

// streamMessage is one live feed push to a connected client.
type streamMessage struct {
	Events []*types.ClassifiedEvent `json:"events"`
	Total  int                      `json:"total"`
	Notice string                   `json:"notice,omitempty"`
}

// handleFeedStream upgrades the connection and pushes newly classified
// events as the log file grows. The file is still read whole on every
// poll; the stream only diffs on the classified event count.
func (s *HTTPServer) handleFeedStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	dir, file, _, level, err := s.parseFeedQuery(r)
	if err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	s.metrics.StreamClientsActive.Inc()
	s.updateStats(func(stats *HTTPServerStats) {
		stats.StreamClients++
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.streamFeed(conn, dir, file, level)
	}()
}

// streamFeed runs one live feed connection until the client disconnects or
// the server shuts down.
func (s *HTTPServer) streamFeed(conn *websocket.Conn, dir, file, level string) {
	defer func() {
		conn.Close()
		s.metrics.StreamClientsActive.Dec()
		s.updateStats(func(stats *HTTPServerStats) {
			stats.StreamClients--
		})
	}()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	// Reader goroutine only detects client disconnection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pollTicker := time.NewTicker(s.config.PollInterval)
	defer pollTicker.Stop()
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	// Initial snapshot: the most recent events, then diffs only.
	delivered := 0
	if msg, total, ok := s.pollFeed(dir, file, level, 0); ok {
		if max := s.config.DefaultLimit; max > 0 && len(msg.Events) > max {
			msg.Events = msg.Events[len(msg.Events)-max:]
		}
		if err := writeMessage(conn, msg); err != nil {
			return
		}
		delivered = total
	}

	for {
		select {
		case <-done:
			return

		case <-s.ctx.Done():
			return

		case <-pollTicker.C:
			msg, total, ok := s.pollFeed(dir, file, level, delivered)
			if !ok {
				continue
			}
			if len(msg.Events) == 0 && msg.Notice == "" {
				delivered = total
				continue
			}
			if err := writeMessage(conn, msg); err != nil {
				return
			}
			delivered = total

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// pollFeed re-reads the log file and returns the events classified after
// the first `delivered` ones.
func (s *HTTPServer) pollFeed(dir, file, level string, delivered int) (streamMessage, int, bool) {
	// limit 0: the diff needs the full classified sequence.
	result, err := s.feedService.Feed(dir, file, 0, level)
	if err != nil {
		log.Printf("Feed stream poll error: %v", err)
		return streamMessage{}, 0, false
	}

	events := result.Events
	if delivered > 0 && delivered <= len(events) {
		events = events[delivered:]
	}

	return streamMessage{
		Events: events,
		Total:  result.Total,
		Notice: result.Notice,
	}, len(result.Events), true
}

// writeMessage sends one JSON message with the write deadline applied.
func writeMessage(conn *websocket.Conn, msg streamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("WebSocket write error: %v", err)
		return err
	}
	return nil
}
