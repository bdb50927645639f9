// Package report renders timeline state: a live view for the running
// daemon and a final per-window report at shutdown. Pure read
// projections; nothing here mutates the timeline.
package report

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/norm/captiond/internal/timeline"
)

// Entry is one completed window in the final report.
type Entry struct {
	Range   string
	Count   int
	Summary string
}

// Reporter reads timeline state for display.
type Reporter struct {
	timeline *timeline.Timeline
}

// New creates a reporter over the timeline.
func New(tl *timeline.Timeline) *Reporter {
	return &Reporter{timeline: tl}
}

// LiveView renders the current state as display lines: the latest
// caption, the open window's range and count, and the most recently
// completed window's summary.
func (r *Reporter) LiveView() string {
	var lines []string

	if latest, ok := r.timeline.LatestCaption(); ok {
		lines = append(lines, "Current: "+latest.Text())
	} else {
		lines = append(lines, "Current: waiting for captions...")
	}

	if info, ok := r.timeline.Current(); ok {
		lines = append(lines, "Window: "+info.RangeLabel)
		lines = append(lines, fmt.Sprintf("Captions in window: %d", info.Count))
	}

	completed := r.timeline.Completed()
	if len(completed) > 0 {
		last := completed[len(completed)-1]
		if summary, sealed := last.Summary(); sealed {
			lines = append(lines, "Latest summary: "+summary)
		}
	}

	return strings.Join(lines, "\n")
}

// FinalReport returns one entry per completed window, chronologically.
func (r *Reporter) FinalReport() []Entry {
	completed := r.timeline.Completed()
	entries := make([]Entry, 0, len(completed))
	for _, w := range completed {
		summary, sealed := w.Summary()
		if !sealed {
			summary = "Not available"
		}
		entries = append(entries, Entry{
			Range:   w.RangeLabel(),
			Count:   w.Len(),
			Summary: summary,
		})
	}
	return entries
}

// RenderFinal formats the final report as a text block for stdout.
func (r *Reporter) RenderFinal() string {
	entries := r.FinalReport()
	if len(entries) == 0 {
		return "No completed windows to report\n"
	}

	var b strings.Builder
	rule := strings.Repeat("=", 80)
	b.WriteString(rule + "\n")
	b.WriteString("CAPTION SUMMARY REPORT\n")
	b.WriteString(rule + "\n")

	for i, e := range entries {
		fmt.Fprintf(&b, "\nWindow %d: %s\n", i+1, e.Range)
		fmt.Fprintf(&b, "Captions: %d\n", e.Count)
		fmt.Fprintf(&b, "Summary: %s\n", e.Summary)
		b.WriteString(strings.Repeat("-", 40) + "\n")
	}
	fmt.Fprintf(&b, "\nDropped captions: %d\n", r.timeline.Dropped())
	return b.String()
}

// EncodeJSON renders the final report as JSONL, one object per window.
func (r *Reporter) EncodeJSON() ([]byte, error) {
	var b strings.Builder
	for i, e := range r.FinalReport() {
		line := "{}"
		var err error
		for _, kv := range []struct {
			key string
			val interface{}
		}{
			{"window", i + 1},
			{"range", e.Range},
			{"captions", e.Count},
			{"summary", e.Summary},
		} {
			line, err = sjson.Set(line, kv.key, kv.val)
			if err != nil {
				return nil, fmt.Errorf("report: encode window %d: %w", i+1, err)
			}
		}
		b.WriteString(line + "\n")
	}
	return []byte(b.String()), nil
}
