// Package timeline owns the sequence of caption windows: assignment,
// expiry detection, rollover, and at-most-once summarization.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/norm/captiond/internal/caption"
	"github.com/norm/captiond/internal/eventlog"
	"github.com/norm/captiond/internal/oracle"
)

// ErrInvalidDuration is returned for a non-positive window duration.
var ErrInvalidDuration = errors.New("timeline: window duration must be positive")

// ErrNoOracle is returned when no oracle is configured.
var ErrNoOracle = errors.New("timeline: oracle is required")

// SourceSentinel marks summaries that never reached the oracle.
const SourceSentinel = "sentinel"

// EventSink receives pipeline diagnostics. eventlog.Log satisfies it; a
// nil sink disables diagnostics.
type EventSink interface {
	Record(ev eventlog.Event) error
}

// Config holds timeline configuration.
type Config struct {
	// WindowDuration is the fixed width of every window. Must be positive.
	WindowDuration time.Duration

	// OracleTimeout bounds each summarization call (default 30s).
	OracleTimeout time.Duration

	// Oracle summarizes sealed non-empty windows.
	Oracle oracle.Oracle

	// Events receives diagnostics (optional).
	Events EventSink
}

// Timeline partitions caption time into consecutive fixed-duration
// windows. Ingest is safe to call from any number of producers
// concurrently with Tick; the current window is the single shared mutable
// resource and every touch of it happens under mu. Sealed windows are
// immutable once they appear in completed.
//
// Summarization runs on a dedicated sealer goroutine fed by a channel, so
// a slow or hung oracle never blocks Ingest. Each expired window is
// enqueued exactly once, and the single consumer appends to completed in
// dequeue order, which keeps completed chronological.
type Timeline struct {
	cfg Config

	mu        sync.Mutex
	current   *caption.Window
	completed []*caption.Window
	latest    caption.Caption
	hasLatest bool
	dropped   int
	draining  bool

	sealCh chan *caption.Window
	sealWG sync.WaitGroup
}

// New creates a timeline and starts its sealer. Callers must end the
// timeline with Drain, even when the current window is empty.
func New(cfg Config) (*Timeline, error) {
	if cfg.WindowDuration <= 0 {
		return nil, ErrInvalidDuration
	}
	if cfg.Oracle == nil {
		return nil, ErrNoOracle
	}
	if cfg.OracleTimeout <= 0 {
		cfg.OracleTimeout = 30 * time.Second
	}

	t := &Timeline{
		cfg:    cfg,
		sealCh: make(chan *caption.Window, 16),
	}
	go t.runSealer()
	return t, nil
}

// Ingest assigns the caption to the current window, creating the first
// window at the caption's capture instant if none exists yet. A caption
// outside the current window's range is dropped silently and counted.
func (t *Timeline) Ingest(c caption.Caption) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.latest = c
	t.hasLatest = true

	if t.draining {
		t.dropped++
		return
	}

	if t.current == nil {
		t.current = caption.NewWindow(c.CapturedAt(), t.cfg.WindowDuration)
	}

	if !t.current.Offer(c) {
		t.dropped++
		t.record(eventlog.NewEvent(eventlog.EventTypeCaptionDropped).
			WithRange(t.current.RangeLabel()))
	}
}

// Tick checks the current window against now and performs every due
// seal-and-rollover. If several windows' worth of time elapsed since the
// last call, each elapsed window (possibly empty) is sealed in order and
// the replacement always starts at the sealed window's end, never at now.
// Returns the number of windows handed to the sealer.
func (t *Timeline) Tick(now time.Time) int {
	t.mu.Lock()
	if t.draining || t.current == nil {
		t.mu.Unlock()
		return 0
	}

	var expired []*caption.Window
	for t.current.IsExpired(now) {
		w := t.current
		t.current = caption.NewWindow(w.End(), t.cfg.WindowDuration)
		expired = append(expired, w)
	}
	t.sealWG.Add(len(expired))
	t.mu.Unlock()

	// Channel sends happen outside the lock: the sealer needs mu to
	// append, so holding it across a send on a full channel would
	// deadlock.
	for _, w := range expired {
		t.sealCh <- w
	}
	return len(expired)
}

// Drain ends the timeline: a non-empty current window is sealed
// immediately (ahead of its natural expiry), an empty one is discarded.
// Blocks until every pending seal has completed. Callers must stop the
// tick driver first; after Drain returns the timeline accepts no more
// work and further captions are dropped.
func (t *Timeline) Drain() {
	t.mu.Lock()
	if t.draining {
		t.mu.Unlock()
		return
	}
	t.draining = true

	var last *caption.Window
	if t.current != nil && t.current.Len() > 0 {
		last = t.current
	}
	t.current = nil
	if last != nil {
		t.sealWG.Add(1)
	}
	t.mu.Unlock()

	if last != nil {
		t.sealCh <- last
	}
	t.sealWG.Wait()
	close(t.sealCh)

	t.record(eventlog.NewEvent(eventlog.EventTypeDrain).
		WithCount(len(t.Completed())))
}

// Flush blocks until every window already handed to the sealer is sealed.
// Intended for tests and for read-after-tick consistency; Drain implies it.
func (t *Timeline) Flush() {
	t.sealWG.Wait()
}

// runSealer is the single consumer that summarizes and seals windows. It
// is the only code path that calls Seal, which gives at-most-once sealing
// by construction.
func (t *Timeline) runSealer() {
	for w := range t.sealCh {
		t.sealOne(w)
		t.sealWG.Done()
	}
}

// sealOne summarizes one window and appends it to completed. Oracle
// failure is recoverable: the window is sealed with an error marker and
// the timeline keeps running.
func (t *Timeline) sealOne(w *caption.Window) {
	summary, source := t.summarize(w)

	t.mu.Lock()
	w.Seal(summary)
	t.completed = append(t.completed, w)
	t.mu.Unlock()

	t.record(eventlog.NewEvent(eventlog.EventTypeWindowSealed).
		WithRange(w.RangeLabel()).
		WithCount(w.Len()).
		WithSource(source))
}

// summarize builds the oracle input for a window and invokes the oracle.
// Empty windows get the fixed sentinel without an oracle call.
func (t *Timeline) summarize(w *caption.Window) (summary, source string) {
	if w.Len() == 0 {
		return caption.EmptySummary, SourceSentinel
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.OracleTimeout)
	defer cancel()

	started := time.Now()
	result, err := t.cfg.Oracle.Summarize(ctx, w.RenderedText(), w.RangeLabel())
	if err != nil {
		log.Printf("timeline: summarize %s: %v", w.RangeLabel(), err)
		t.record(eventlog.NewEvent(eventlog.EventTypeOracleError).
			WithRange(w.RangeLabel()).
			WithError(err.Error()).
			WithLatency(float64(time.Since(started).Milliseconds())))
		return fmt.Sprintf("summary error: %v", err), SourceSentinel
	}
	return result.Text, result.Source
}

// LatestCaption returns the most recently ingested caption, if any.
func (t *Timeline) LatestCaption() (caption.Caption, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.hasLatest
}

// CurrentInfo describes the open window for display.
type CurrentInfo struct {
	RangeLabel string
	Start      time.Time
	End        time.Time
	Count      int
}

// Current returns a snapshot of the open window, if present.
func (t *Timeline) Current() (CurrentInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return CurrentInfo{}, false
	}
	return CurrentInfo{
		RangeLabel: t.current.RangeLabel(),
		Start:      t.current.Start(),
		End:        t.current.End(),
		Count:      t.current.Len(),
	}, true
}

// Completed returns the sealed windows in chronological order.
func (t *Timeline) Completed() []*caption.Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*caption.Window, len(t.completed))
	copy(out, t.completed)
	return out
}

// Dropped returns the count of captions rejected at ingest.
func (t *Timeline) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

func (t *Timeline) record(ev eventlog.Event) {
	if t.cfg.Events == nil {
		return
	}
	if err := t.cfg.Events.Record(ev); err != nil {
		log.Printf("timeline: event log: %v", err)
	}
}
