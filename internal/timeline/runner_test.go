package timeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestRunnerTicksOnInterval(t *testing.T) {
	fc := clockwork.NewFakeClockAt(origin)
	tl := newTestTimeline(t, 10*time.Second, &fakeOracle{})
	defer tl.Drain()

	tl.Ingest(capAt("x", 0))

	r := NewRunner(tl, time.Second, fc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	// Wait for the runner's ticker to register, then walk the clock past
	// the window end until the runner has observed an expiry. Fake ticker
	// ticks can coalesce, so advance until the seal is visible rather
	// than counting polls.
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := fc.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("runner ticker never registered: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(tl.Completed()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("runner never sealed the expired window")
		}
		fc.Advance(time.Second)
		time.Sleep(time.Millisecond)
	}
	tl.Flush()

	completed := tl.Completed()
	if completed[0].Len() != 1 {
		t.Errorf("expected first sealed window to hold the caption, got %d", completed[0].Len())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled from Start, got %v", err)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	tl := newTestTimeline(t, time.Second, &fakeOracle{})
	defer tl.Drain()

	r := NewRunner(tl, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
