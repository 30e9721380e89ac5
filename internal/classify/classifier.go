package classify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lgiavedoni/claw-tools/internal/types"
)

// Config controls the parts of classification that differ between agent
// deployments. The suppression sets are configuration on purpose: which
// background subsystems are hidden varies between gateway revisions.
type Config struct {
	// AgentSentinel is the subsystem assigned to records whose first
	// positional argument is plain text from the top-level agent process.
	AgentSentinel string

	// SuppressedSubsystems hides records whose subsystem contains any of
	// these fragments, regardless of level.
	SuppressedSubsystems []string

	// InfraWarningPatterns suppresses error-level records matching known
	// non-actionable runtime noise (deprecations, env-var warnings,
	// process banners).
	InfraWarningPatterns []string
}

// DefaultConfig returns the suppression sets observed in current gateway logs
func DefaultConfig() Config {
	return Config{
		AgentSentinel: "openclaw",
		SuppressedSubsystems: []string{
			"heartbeat",
			"memory",
			"embedding",
			"diagnostics",
			"plugins",
			"socket",
		},
		InfraWarningPatterns: []string{
			"DeprecationWarning",
			"ExperimentalWarning",
			"NODE_TLS_REJECT_UNAUTHORIZED",
			"punycode",
			"--max-old-space-size",
			"====",
		},
	}
}

// Classifier maps raw agent log records to displayable feed events.
// It is stateless apart from its configuration; Classify is pure.
type Classifier struct {
	cfg   Config
	rules []rule
}

// NewClassifier creates a classifier with the given configuration
func NewClassifier(cfg Config) *Classifier {
	if cfg.AgentSentinel == "" {
		cfg.AgentSentinel = DefaultConfig().AgentSentinel
	}
	c := &Classifier{cfg: cfg}
	c.rules = defaultRules()
	return c
}

// fields holds everything extracted from one record before rule matching.
type fields struct {
	Timestamp  interface{}
	Level      string
	Subsystem  string
	RawMessage string
	Data       map[string]interface{}
}

// Classify maps a RawRecord to a ClassifiedEvent, or nil when the record
// is suppressed or yields no message. Extraction failures degrade to less
// specific output; they never propagate.
func (c *Classifier) Classify(record types.RawRecord) *types.ClassifiedEvent {
	if record == nil {
		return nil
	}

	f := c.extract(record)

	for _, r := range c.rules {
		out, ok := r.apply(c, f)
		if !ok {
			continue
		}
		if out.Suppress || out.Message == "" {
			return nil
		}
		return &types.ClassifiedEvent{
			Time:       formatClock(f.Timestamp),
			Timestamp:  f.Timestamp,
			Level:      f.Level,
			Subsystem:  f.Subsystem,
			EventType:  out.Type,
			Message:    out.Message,
			RawMessage: f.RawMessage,
			Data:       f.Data,
			Raw:        record,
		}
	}

	// No rule matched: fail closed rather than showing a raw dump.
	return nil
}

// extract pulls the timestamp, level, subsystem, message and payload out of
// the record's positional-argument layout.
func (c *Classifier) extract(record types.RawRecord) *fields {
	f := &fields{
		Level:     "UNKNOWN",
		Subsystem: "system",
		Data:      map[string]interface{}{},
	}

	f.Timestamp = record["time"]
	meta := record.Meta()
	if f.Timestamp == nil && meta != nil {
		f.Timestamp = meta["date"]
	}
	if meta != nil {
		if lvl, ok := meta["logLevelName"].(string); ok && lvl != "" {
			f.Level = strings.ToUpper(strings.TrimSpace(lvl))
		}
	}

	args := record.Args()
	f.Subsystem = c.subsystemOf(args.ModuleDescriptor)
	f.RawMessage = rawMessageOf(args)
	if payload, ok := args.Payload.(map[string]interface{}); ok && payload != nil {
		f.Data = payload
	}

	return f
}

// subsystemOf resolves the originating component from the first positional
// argument. The gateway logs a JSON-encoded descriptor for embedded
// subsystems and plain text for its own top-level output.
func (c *Classifier) subsystemOf(descriptor interface{}) string {
	switch v := descriptor.(type) {
	case nil:
		return "system"
	case map[string]interface{}:
		return descriptorName(v, "system")
	case string:
		if !strings.HasPrefix(strings.TrimSpace(v), "{") {
			return c.cfg.AgentSentinel
		}
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return c.cfg.AgentSentinel
		}
		return descriptorName(parsed, "system")
	default:
		return c.cfg.AgentSentinel
	}
}

// descriptorName reads the subsystem name from a parsed descriptor object.
func descriptorName(desc map[string]interface{}, fallback string) string {
	if s, ok := desc["subsystem"].(string); ok && s != "" {
		return s
	}
	if s, ok := desc["module"].(string); ok && s != "" {
		return s
	}
	return fallback
}

// rawMessageOf picks the first message-like positional argument: the
// trailing message, then a string payload, then plain top-level text.
func rawMessageOf(args types.LogArgs) string {
	if s, ok := args.TrailingMessage.(string); ok {
		if t := strings.TrimSpace(s); t != "" {
			return t
		}
	}
	if s, ok := args.Payload.(string); ok {
		if t := strings.TrimSpace(stripANSI(s)); t != "" {
			return t
		}
	}
	if s, ok := args.ModuleDescriptor.(string); ok && !strings.HasPrefix(strings.TrimSpace(s), "{") {
		if t := strings.TrimSpace(stripANSI(s)); t != "" {
			return t
		}
	}
	return ""
}

var ansiRe = regexp.MustCompile("\x1b\\[[0-9;]*m")

// stripANSI removes color escape sequences the gateway writes to its
// combined stdout log.
func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// formatClock renders the record timestamp as a wall-clock string for the
// feed; precision sorting uses the untouched Timestamp field instead.
func formatClock(ts interface{}) string {
	switch v := ts.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.Local().Format("15:04:05")
			}
		}
		return v
	case float64:
		// Epoch values: milliseconds when large enough, else seconds.
		if v > 1e12 {
			return time.UnixMilli(int64(v)).Local().Format("15:04:05")
		}
		if v > 0 {
			return time.Unix(int64(v), 0).Local().Format("15:04:05")
		}
		return ""
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
