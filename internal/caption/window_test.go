package caption

import (
	"strings"
	"testing"
	"time"
)

var origin = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestNewTrimsText(t *testing.T) {
	c := New("  a person at a desk  ", origin)
	if c.Text() != "a person at a desk" {
		t.Errorf("expected trimmed text, got %q", c.Text())
	}
}

func TestDisplayLine(t *testing.T) {
	c := New("a cup on the table", time.Date(2025, 6, 1, 14, 3, 9, 0, time.UTC))
	want := "[14:03:09] a cup on the table"
	if got := c.DisplayLine(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestOfferRange(t *testing.T) {
	w := NewWindow(origin, 30*time.Second)

	cases := []struct {
		name   string
		at     time.Time
		accept bool
	}{
		{"at start", origin, true},
		{"inside", origin.Add(15 * time.Second), true},
		{"just before end", origin.Add(30*time.Second - time.Nanosecond), true},
		{"at end", origin.Add(30 * time.Second), false},
		{"before start", origin.Add(-time.Second), false},
	}

	for _, tc := range cases {
		got := w.Offer(New("x", tc.at))
		if got != tc.accept {
			t.Errorf("%s: expected accept=%v, got %v", tc.name, tc.accept, got)
		}
	}

	if w.Len() != 3 {
		t.Errorf("expected 3 accepted captions, got %d", w.Len())
	}
}

func TestOfferPreservesArrivalOrder(t *testing.T) {
	w := NewWindow(origin, time.Minute)

	// Out of capture order on purpose.
	w.Offer(New("second", origin.Add(20*time.Second)))
	w.Offer(New("first", origin.Add(5*time.Second)))

	got := w.Captions()
	if got[0].Text() != "second" || got[1].Text() != "first" {
		t.Errorf("expected arrival order preserved, got %q then %q", got[0].Text(), got[1].Text())
	}
}

func TestIsExpired(t *testing.T) {
	w := NewWindow(origin, 10*time.Second)

	if w.IsExpired(origin.Add(9 * time.Second)) {
		t.Error("window should not be expired before its end")
	}
	if !w.IsExpired(origin.Add(10 * time.Second)) {
		t.Error("window should be expired exactly at its end")
	}
	if !w.IsExpired(origin.Add(time.Hour)) {
		t.Error("window should be expired past its end")
	}
}

func TestSeal(t *testing.T) {
	w := NewWindow(origin, time.Second)

	if _, sealed := w.Summary(); sealed {
		t.Fatal("new window must not be sealed")
	}

	w.Seal("people moved around")
	summary, sealed := w.Summary()
	if !sealed {
		t.Fatal("expected sealed window")
	}
	if summary != "people moved around" {
		t.Errorf("unexpected summary %q", summary)
	}
}

func TestRenderedText(t *testing.T) {
	w := NewWindow(origin, time.Minute)
	w.Offer(New("a desk", origin.Add(time.Second)))
	w.Offer(New("a chair", origin.Add(2*time.Second)))

	got := w.RenderedText()
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "[10:00:01] a desk" || lines[1] != "[10:00:02] a chair" {
		t.Errorf("unexpected rendering: %q", got)
	}
}

func TestRenderedTextEmpty(t *testing.T) {
	w := NewWindow(origin, time.Minute)
	if got := w.RenderedText(); got != "" {
		t.Errorf("expected empty rendering, got %q", got)
	}
}

func TestRangeLabel(t *testing.T) {
	w := NewWindow(origin, 30*time.Second)
	want := "10:00:00 - 10:00:30"
	if got := w.RangeLabel(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
