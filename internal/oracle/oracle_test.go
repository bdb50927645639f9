package oracle

import (
	"context"
	"strings"
	"testing"
)

func TestHeuristicEmpty(t *testing.T) {
	result, err := Heuristic{}.Summarize(context.Background(), "", "10:00:00 - 10:00:30")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if result.Source != "heuristic" {
		t.Errorf("expected heuristic source, got %q", result.Source)
	}
	if !strings.Contains(result.Text, "no captions") {
		t.Errorf("unexpected text %q", result.Text)
	}
}

func TestHeuristicDigestsFirstAndLast(t *testing.T) {
	rendered := "[10:00:01] a person sits down\n[10:00:15] a cup appears\n[10:00:29] the person leaves"
	result, err := Heuristic{}.Summarize(context.Background(), rendered, "10:00:00 - 10:00:30")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if !strings.Contains(result.Text, "3 captions") {
		t.Errorf("expected caption count in digest, got %q", result.Text)
	}
	if !strings.Contains(result.Text, "a person sits down") {
		t.Errorf("expected first caption in digest, got %q", result.Text)
	}
	if !strings.Contains(result.Text, "the person leaves") {
		t.Errorf("expected last caption in digest, got %q", result.Text)
	}
	if strings.Contains(result.Text, "[10:00:01]") {
		t.Errorf("timestamps must be stripped from digest, got %q", result.Text)
	}
}

func TestHeuristicSingleCaption(t *testing.T) {
	result, err := Heuristic{}.Summarize(context.Background(), "[10:00:01] only one", "10:00:00 - 10:00:30")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.Contains(result.Text, "only one") {
		t.Errorf("unexpected text %q", result.Text)
	}
	if strings.Contains(result.Text, "Ended with") {
		t.Errorf("single caption must not have an ending line, got %q", result.Text)
	}
}

func TestStripStamp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"[10:00:01] text here", "text here"},
		{"no stamp", "no stamp"},
		{"[broken stamp", "[broken stamp"},
	}
	for _, tc := range cases {
		if got := stripStamp(tc.in); got != tc.want {
			t.Errorf("stripStamp(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
