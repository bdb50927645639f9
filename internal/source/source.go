// Package source provides caption producers for the timeline: a JSONL
// file tail for production and a scripted source for demos and tests.
// Capturing frames and talking to a vision model happen outside this
// process; captiond only consumes the resulting caption stream.
package source

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/norm/captiond/internal/caption"
)

// Source asynchronously produces captions. Start blocks until ctx is
// cancelled or the source is exhausted; Captions is closed when Start
// returns.
type Source interface {
	Captions() <-chan caption.Caption
	Start(ctx context.Context) error
}

// ScriptEntry is one scripted caption with its offset from script start.
type ScriptEntry struct {
	Text   string
	Offset time.Duration
}

// ScriptSource replays a fixed caption schedule. Useful for demos and
// integration tests; capture instants come from the injected clock.
type ScriptSource struct {
	entries []ScriptEntry
	clock   clockwork.Clock
	out     chan caption.Caption
}

// NewScriptSource creates a source replaying entries in order.
func NewScriptSource(entries []ScriptEntry, clock clockwork.Clock) *ScriptSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ScriptSource{
		entries: entries,
		clock:   clock,
		out:     make(chan caption.Caption, 64),
	}
}

// Captions returns the output channel.
func (s *ScriptSource) Captions() <-chan caption.Caption { return s.out }

// Start emits each entry at its offset and returns when the script is
// exhausted or ctx is cancelled.
func (s *ScriptSource) Start(ctx context.Context) error {
	defer close(s.out)

	start := s.clock.Now()
	for _, e := range s.entries {
		due := start.Add(e.Offset)
		if wait := due.Sub(s.clock.Now()); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.clock.After(wait):
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case s.out <- caption.New(e.Text, s.clock.Now()):
		}
	}
	return nil
}
