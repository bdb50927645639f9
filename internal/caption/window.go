package caption

import (
	"strings"
	"time"
)

// EmptySummary is the sentinel summary for windows that close with no
// captions. Empty windows never reach the oracle.
const EmptySummary = "no activity observed in this window"

// Window is a half-open time bucket [Start, End) of captions. Captions are
// kept in arrival order, which may differ from capture order under
// concurrent producers. A window is sealed at most once; sealing is the
// timeline's responsibility, Window itself does not guard against a second
// Seal call.
type Window struct {
	start    time.Time
	duration time.Duration

	captions   []Caption
	summary    string
	summarized bool
}

// NewWindow creates an open window covering [start, start+duration).
func NewWindow(start time.Time, duration time.Duration) *Window {
	return &Window{start: start, duration: duration}
}

// Start returns the inclusive lower bound of the window.
func (w *Window) Start() time.Time { return w.start }

// End returns the exclusive upper bound of the window.
func (w *Window) End() time.Time { return w.start.Add(w.duration) }

// Duration returns the window width.
func (w *Window) Duration() time.Duration { return w.duration }

// Offer appends the caption if its capture instant falls inside
// [Start, End) and reports whether it was accepted. Rejection is silent
// and normal: the caption belongs to another window.
func (w *Window) Offer(c Caption) bool {
	at := c.CapturedAt()
	if at.Before(w.start) || !at.Before(w.End()) {
		return false
	}
	w.captions = append(w.captions, c)
	return true
}

// IsExpired reports whether the window's range has fully elapsed at now.
func (w *Window) IsExpired(now time.Time) bool {
	return !now.Before(w.End())
}

// Seal records the final summary. Membership is frozen by the caller
// before Seal; once sealed no caption is ever added.
func (w *Window) Seal(summary string) {
	w.summary = summary
	w.summarized = true
}

// Summary returns the summary text and whether the window is sealed.
func (w *Window) Summary() (string, bool) {
	return w.summary, w.summarized
}

// Len returns the number of captions in the window.
func (w *Window) Len() int { return len(w.captions) }

// Captions returns the contained captions in arrival order.
func (w *Window) Captions() []Caption {
	out := make([]Caption, len(w.captions))
	copy(out, w.captions)
	return out
}

// RenderedText joins the captions' display lines, one per line, in
// arrival order. This is the oracle input and display form only.
func (w *Window) RenderedText() string {
	lines := make([]string, len(w.captions))
	for i, c := range w.captions {
		lines[i] = c.DisplayLine()
	}
	return strings.Join(lines, "\n")
}

// RangeLabel returns the human-readable time range, "HH:MM:SS - HH:MM:SS".
func (w *Window) RangeLabel() string {
	return w.start.Format("15:04:05") + " - " + w.End().Format("15:04:05")
}
