// Package eventlog writes append-only JSONL diagnostics for the caption
// pipeline. Events are best-effort: a failed write never disturbs
// ingestion or sealing.
package eventlog

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventVersion is the current event schema version.
const EventVersion = 1

// Event types emitted by the pipeline.
const (
	EventTypeCaptionDropped = "caption_dropped"
	EventTypeWindowSealed   = "window_sealed"
	EventTypeOracleError    = "oracle_error"
	EventTypeDrain          = "drain"
	EventTypeSourceError    = "source_error"
)

// Event captures one pipeline activity record.
type Event struct {
	Version     int    `json:"v"`
	TimestampMs int64  `json:"ts_ms"`
	EventID     string `json:"event_id"`
	Type        string `json:"type"`

	// Window context, where applicable
	Range string `json:"range,omitempty"`
	Count int    `json:"count,omitempty"`

	// Extended fields
	Source    string  `json:"source,omitempty"` // summary source: "claude", "heuristic", "sentinel"
	Error     string  `json:"error,omitempty"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
}

// WithRange sets the window range label.
func (e Event) WithRange(label string) Event {
	e.Range = label
	return e
}

// WithCount sets the caption count.
func (e Event) WithCount(count int) Event {
	e.Count = count
	return e
}

// WithSource sets the summary source.
func (e Event) WithSource(source string) Event {
	e.Source = source
	return e
}

// WithError sets the error field.
func (e Event) WithError(err string) Event {
	e.Error = err
	return e
}

// WithLatency sets the latency field in milliseconds.
func (e Event) WithLatency(latencyMs float64) Event {
	e.LatencyMs = latencyMs
	return e
}

// GenerateEventID returns an evt- prefixed 8-hex identifier.
func GenerateEventID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		n := time.Now().UnixNano()
		buf[0] = byte(n)
		buf[1] = byte(n >> 8)
		buf[2] = byte(n >> 16)
		buf[3] = byte(n >> 24)
	}
	return "evt-" + hex.EncodeToString(buf)
}

// NewEvent creates a new event of the given type with defaults filled.
func NewEvent(eventType string) Event {
	return Event{
		Version:     EventVersion,
		TimestampMs: time.Now().UnixMilli(),
		EventID:     GenerateEventID(),
		Type:        eventType,
	}
}

// Log writes append-only JSONL event records.
type Log struct {
	path string
	mu   sync.Mutex
}

// New creates an event log writing to <logDir>/events.jsonl.
func New(logDir string) *Log {
	return &Log{path: filepath.Join(logDir, "events.jsonl")}
}

// Record appends an event, filling schema defaults for zero fields.
func (l *Log) Record(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Version == 0 {
		event.Version = EventVersion
	}
	if event.TimestampMs == 0 {
		event.TimestampMs = time.Now().UnixMilli()
	}
	if event.EventID == "" {
		event.EventID = GenerateEventID()
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(payload, '\n')); err != nil {
		return err
	}

	return nil
}
