package timeline

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Runner drives Timeline.Tick on a fixed poll interval. The clock is
// injectable so tests can step time deterministically.
type Runner struct {
	timeline *Timeline
	interval time.Duration
	clock    clockwork.Clock
}

// NewRunner creates a runner polling the timeline every interval.
func NewRunner(t *Timeline, interval time.Duration, clock clockwork.Clock) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{timeline: t, interval: interval, clock: clock}
}

// Start polls until ctx is cancelled. The caller drains the timeline
// after Start returns; the runner itself never seals on shutdown, so
// there is exactly one sealing authority at any moment.
func (r *Runner) Start(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			r.timeline.Tick(r.clock.Now())
		}
	}
}
