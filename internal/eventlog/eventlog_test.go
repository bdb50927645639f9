package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestRecordFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)

	ev := NewEvent(EventTypeWindowSealed).
		WithRange("10:00:00 - 10:00:30").
		WithCount(3).
		WithSource("claude")
	if err := l.Record(ev); err != nil {
		t.Fatalf("Record: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))

	if gjson.Get(line, "v").Int() != EventVersion {
		t.Errorf("expected schema version %d, got %s", EventVersion, line)
	}
	if gjson.Get(line, "type").String() != EventTypeWindowSealed {
		t.Errorf("unexpected type in %s", line)
	}
	if gjson.Get(line, "range").String() != "10:00:00 - 10:00:30" {
		t.Errorf("unexpected range in %s", line)
	}
	if gjson.Get(line, "count").Int() != 3 {
		t.Errorf("unexpected count in %s", line)
	}
	if !strings.HasPrefix(gjson.Get(line, "event_id").String(), "evt-") {
		t.Errorf("expected evt- prefixed id in %s", line)
	}
	if gjson.Get(line, "ts_ms").Int() == 0 {
		t.Errorf("expected timestamp filled in %s", line)
	}
}

func TestRecordAppends(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)

	for i := 0; i < 3; i++ {
		if err := l.Record(NewEvent(EventTypeCaptionDropped)); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 appended events, got %d", len(lines))
	}
}

func TestGenerateEventIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateEventID()
		if seen[id] {
			t.Fatalf("duplicate event id %s", id)
		}
		seen[id] = true
	}
}
