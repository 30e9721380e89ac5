package classify

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lgiavedoni/claw-tools/internal/types"
)

// outcome is the result of one matched rule: either a typed event with a
// derived message, or a suppression.
type outcome struct {
	Type     types.EventType
	Message  string
	Suppress bool
}

// rule is one predicate+transform pair. Rules are evaluated in order and
// the first match wins, so list position encodes precedence.
type rule struct {
	name  string
	apply func(c *Classifier, f *fields) (outcome, bool)
}

// defaultRules returns the ordered rule list. Precedence: conversation
// events first, then background suppression, then generic errors, then
// gateway state changes, then the fail-closed catch-all.
func defaultRules() []rule {
	return []rule{
		{name: "user-message", apply: matchUserMessage},
		{name: "auto-reply", apply: matchAutoReply},
		{name: "agent-lifecycle", apply: matchLifecycle},
		{name: "tool-use", apply: matchToolUse},
		{name: "outbound-delivery", apply: matchOutbound},
		{name: "background-subsystem", apply: matchBackgroundSubsystem},
		{name: "error-level", apply: matchErrorLevel},
		{name: "state-transition", apply: matchStateTransition},
		{name: "catch-all", apply: matchCatchAll},
	}
}

// containsAny reports whether the lowercased message contains any marker.
func containsAny(msg string, markers ...string) bool {
	lower := strings.ToLower(msg)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// payloadText returns the first non-empty string value among the given
// payload keys.
func payloadText(data map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := data[k].(string); ok {
			if t := strings.TrimSpace(s); t != "" {
				return t
			}
		}
	}
	return ""
}

// matchUserMessage handles inbound user message markers.
func matchUserMessage(c *Classifier, f *fields) (outcome, bool) {
	if !containsAny(f.RawMessage, "received user message", "inbound message", "message received") {
		return outcome{}, false
	}
	msg := payloadText(f.Data, "body", "text", "content")
	if msg == "" {
		msg = f.RawMessage
	}
	return outcome{Type: types.EventUserMessage, Message: msg}, true
}

// matchAutoReply handles auto-reply-sent markers.
func matchAutoReply(c *Classifier, f *fields) (outcome, bool) {
	if !containsAny(f.RawMessage, "auto-reply sent", "auto reply sent", "reply queued") {
		return outcome{}, false
	}
	msg := payloadText(f.Data, "text", "reply", "body")
	if msg == "" {
		msg = f.RawMessage
	}
	return outcome{Type: types.EventAgentResponse, Message: msg}, true
}

var (
	modelRe    = regexp.MustCompile(`model[=:]\s*([A-Za-z0-9._/:-]+)`)
	durationRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ms\b`)
)

// matchLifecycle handles agent run and prompt lifecycle markers, templating
// in the model identifier or elapsed duration when present.
func matchLifecycle(c *Classifier, f *fields) (outcome, bool) {
	lower := strings.ToLower(f.RawMessage)
	model := extractModel(f)
	elapsed := extractDuration(f.RawMessage)

	switch {
	case strings.Contains(lower, "run start"):
		if model != "" {
			return outcome{Type: types.EventAgentThinking, Message: fmt.Sprintf("Agent run started (%s)", model)}, true
		}
		return outcome{Type: types.EventAgentThinking, Message: "Agent run started"}, true

	case strings.Contains(lower, "prompt start"):
		if model != "" {
			return outcome{Type: types.EventAgentThinking, Message: fmt.Sprintf("Thinking (%s)...", model)}, true
		}
		return outcome{Type: types.EventAgentThinking, Message: "Thinking..."}, true

	case strings.Contains(lower, "prompt end"):
		if elapsed != "" {
			return outcome{Type: types.EventAgentThinking, Message: fmt.Sprintf("Response ready in %s", elapsed)}, true
		}
		return outcome{Type: types.EventAgentThinking, Message: "Response ready"}, true

	case strings.Contains(lower, "run end"), strings.Contains(lower, "run done"), lower == "done":
		if elapsed != "" {
			return outcome{Type: types.EventAgentThinking, Message: fmt.Sprintf("Agent run finished in %s", elapsed)}, true
		}
		return outcome{Type: types.EventAgentThinking, Message: "Agent run finished"}, true

	case strings.Contains(lower, "aborted"):
		return outcome{Type: types.EventAgentThinking, Message: "Agent run aborted"}, true
	}

	return outcome{}, false
}

// extractModel finds the model identifier in the payload or message and
// strips the vendor prefix ("anthropic/claude-x" -> "claude-x").
func extractModel(f *fields) string {
	model := payloadText(f.Data, "model")
	if model == "" {
		if m := modelRe.FindStringSubmatch(f.RawMessage); m != nil {
			model = m[1]
		}
	}
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	return model
}

// extractDuration finds an elapsed-milliseconds submatch and renders it in
// a human unit.
func extractDuration(msg string) string {
	m := durationRe.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	var ms float64
	if _, err := fmt.Sscanf(m[1], "%f", &ms); err != nil {
		return ""
	}
	return humanDuration(time.Duration(ms * float64(time.Millisecond)))
}

// humanDuration renders a duration the way the dashboard shows it.
func humanDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

var toolNameRe = regexp.MustCompile(`tool[=:]\s*"?([A-Za-z0-9._-]+)"?`)

// matchToolUse handles tool invocation start/end markers.
func matchToolUse(c *Classifier, f *fields) (outcome, bool) {
	lower := strings.ToLower(f.RawMessage)
	start := containsAny(lower, "tool start", "invoking tool", "tool call")
	end := strings.Contains(lower, "tool end")
	if !start && !end {
		return outcome{}, false
	}

	name := payloadText(f.Data, "tool", "toolName", "name")
	if name == "" {
		if m := toolNameRe.FindStringSubmatch(f.RawMessage); m != nil {
			name = m[1]
		}
	}

	switch {
	case end && name != "":
		return outcome{Type: types.EventToolUse, Message: fmt.Sprintf("Tool finished: %s", name)}, true
	case end:
		return outcome{Type: types.EventToolUse, Message: "Tool finished"}, true
	case name != "":
		return outcome{Type: types.EventToolUse, Message: fmt.Sprintf("Using tool: %s", name)}, true
	default:
		return outcome{Type: types.EventToolUse, Message: "Using tool"}, true
	}
}

var recipientRe = regexp.MustCompile(`\+?\d[\d\s().-]{5,}\d`)

// matchOutbound handles outbound channel delivery markers ("sent to ...").
func matchOutbound(c *Classifier, f *fields) (outcome, bool) {
	lower := strings.ToLower(f.RawMessage)
	idx := strings.Index(lower, "sent to")
	if idx < 0 {
		return outcome{}, false
	}

	rest := strings.TrimSpace(f.RawMessage[idx+len("sent to"):])
	recipient := ""
	if m := recipientRe.FindString(rest); m != "" {
		recipient = strings.TrimSpace(m)
	} else if parts := strings.Fields(rest); len(parts) > 0 {
		recipient = parts[0]
	}

	if recipient != "" {
		return outcome{Type: types.EventAgentResponse, Message: fmt.Sprintf("Reply sent to %s", recipient)}, true
	}
	return outcome{Type: types.EventAgentResponse, Message: "Reply sent"}, true
}

// matchBackgroundSubsystem suppresses high-volume subsystems that carry no
// user-relevant signal. Evaluated before the error rule so suppression
// holds regardless of level.
func matchBackgroundSubsystem(c *Classifier, f *fields) (outcome, bool) {
	lower := strings.ToLower(f.Subsystem)
	for _, frag := range c.cfg.SuppressedSubsystems {
		if frag != "" && strings.Contains(lower, strings.ToLower(frag)) {
			return outcome{Suppress: true}, true
		}
	}
	return outcome{}, false
}

// matchErrorLevel surfaces error-level records verbatim, except known
// infrastructure noise.
func matchErrorLevel(c *Classifier, f *fields) (outcome, bool) {
	if f.Level != "ERROR" && f.Level != "FATAL" {
		return outcome{}, false
	}
	for _, pat := range c.cfg.InfraWarningPatterns {
		if pat != "" && containsAny(f.RawMessage, strings.ToLower(pat)) {
			return outcome{Suppress: true}, true
		}
	}
	return outcome{Type: types.EventError, Message: f.RawMessage}, true
}

var stateRe = regexp.MustCompile(`state(?: changed)?(?: from)?\s+(\w+)\s*(?:->|to)\s*(\w+)`)

// matchStateTransition handles session and gateway state changes.
func matchStateTransition(c *Classifier, f *fields) (outcome, bool) {
	lower := strings.ToLower(f.RawMessage)

	if m := stateRe.FindStringSubmatch(lower); m != nil {
		return outcome{Type: types.EventSystem, Message: fmt.Sprintf("Session state: %s -> %s", m[1], m[2])}, true
	}

	switch {
	case strings.Contains(lower, "gateway started"):
		return outcome{Type: types.EventSystem, Message: "Gateway started"}, true
	case strings.Contains(lower, "gateway stopped"):
		return outcome{Type: types.EventSystem, Message: "Gateway stopped"}, true
	}

	return outcome{}, false
}

// matchCatchAll suppresses everything no prior rule recognized.
func matchCatchAll(c *Classifier, f *fields) (outcome, bool) {
	return outcome{Suppress: true}, true
}
