// loggen writes synthetic gateway log lines for demos and local testing.
// The output matches the positional tslog layout clawtail classifies.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var (
	outDir   = flag.String("dir", "logs", "Output directory")
	outFile  = flag.String("file", "openclaw.log", "Output file name")
	count    = flag.Int("count", 200, "Number of lines to write")
	interval = flag.Duration("interval", 0, "Delay between lines (0 writes all at once)")
	seed     = flag.Int64("seed", 0, "Random seed (0 uses current time)")
)

// line is one synthetic record in the gateway's positional layout.
type line struct {
	subsystem string
	level     string
	message   string
	payload   map[string]interface{}
}

var samples = []line{
	{"gateway/inbound", "INFO", "received user message", map[string]interface{}{"body": "what's on my calendar today?"}},
	{"agent/embedded", "INFO", "run start model=anthropic/claude-4", nil},
	{"agent/embedded", "INFO", "prompt start model=anthropic/claude-4", nil},
	{"agent/tools", "INFO", "tool start", map[string]interface{}{"tool": "calendar"}},
	{"agent/tools", "INFO", "tool end", map[string]interface{}{"tool": "calendar"}},
	{"agent/embedded", "INFO", "prompt end elapsed=2450ms", nil},
	{"agent/embedded", "INFO", "run end took 3100ms", nil},
	{"gateway/outbound", "INFO", "auto-reply sent", map[string]interface{}{"text": "You have two meetings today."}},
	{"gateway/outbound", "INFO", "message sent to +1 555 010 2030", nil},
	{"gateway/session", "INFO", "session state changed idle -> active", nil},
	{"gateway/heartbeat", "DEBUG", "periodic tick", nil},
	{"memory/embedding", "DEBUG", "embedded 12 chunks", nil},
	{"internal/diagnostics", "DEBUG", "gc pause 2ms", nil},
	{"gateway", "ERROR", "connection refused: upstream api", nil},
	{"gateway", "ERROR", "(node:1) DeprecationWarning: punycode is deprecated", nil},
}

func main() {
	flag.Parse()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	path := filepath.Join(*outDir, *outFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	sessionID := uuid.NewString()
	log.Printf("Writing %d lines to %s (session %s)", *count, path, sessionID)

	for i := 0; i < *count; i++ {
		sample := samples[rng.Intn(len(samples))]
		if _, err := fmt.Fprintln(f, render(sample, sessionID)); err != nil {
			log.Fatalf("Write failed: %v", err)
		}
		if *interval > 0 {
			time.Sleep(*interval)
		}
	}

	log.Printf("Done")
}

// render encodes one sample as a JSON log line.
func render(l line, sessionID string) string {
	descriptor, _ := json.Marshal(map[string]string{"subsystem": l.subsystem, "session": sessionID})

	record := map[string]interface{}{
		"time": time.Now().Format(time.RFC3339Nano),
		"0":    string(descriptor),
		"_meta": map[string]interface{}{
			"logLevelName": l.level,
			"date":         time.Now().Format(time.RFC3339Nano),
		},
	}
	if l.payload != nil {
		record["1"] = l.payload
		record["2"] = l.message
	} else {
		record["1"] = l.message
	}

	out, _ := json.Marshal(record)
	return string(out)
}
