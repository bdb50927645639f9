// Package oracle provides summarization backends for completed caption
// windows: a Claude client and a heuristic fallback for keyless runs.
package oracle

import (
	"context"
	"fmt"
	"strings"
)

// Result holds a window summary and where it came from.
type Result struct {
	Text   string
	Source string // "claude" or "heuristic"
}

// Oracle summarizes the rendered captions of a completed window. rendered
// is the window's caption lines, rangeLabel its human-readable time range.
// Any failure is recoverable for the caller; the timeline seals the window
// with an error marker and moves on.
type Oracle interface {
	Summarize(ctx context.Context, rendered, rangeLabel string) (Result, error)
}

// summaryPrompt is the system prompt for window summarization. It asks for
// a declarative account of object movements rather than scene aesthetics.
const summaryPrompt = `You are a video caption summarizer. Analyze captions from a %s window and create a declarative summary focused on object movements.

For each object or person in the scene, identify:
1. Initial location/position
2. Movement trajectory (where it moved to)
3. Final location/position
4. Whether it remained stationary

Format the summary as:
"Object started at [initial_location], moved to [final_location]. Object2 began at [initial_location], remained stationary."

Focus on object identification, clear starting positions, movement paths and destinations, and stationary objects. Avoid colors, lighting, emotional descriptions, and static background detail.`

// buildUserContent assembles the oracle input from the rendered captions
// and the window's range label.
func buildUserContent(rendered, rangeLabel string) string {
	return fmt.Sprintf("Captions from %s:\n%s\n\nProvide a declarative summary of object movements:", rangeLabel, rendered)
}

// Heuristic is a no-network fallback oracle used when no API key is
// configured. It digests the first and last captions of the window.
type Heuristic struct{}

// Summarize implements Oracle without calling any external service.
func (Heuristic) Summarize(_ context.Context, rendered, rangeLabel string) (Result, error) {
	lines := splitNonEmpty(rendered)
	if len(lines) == 0 {
		return Result{Text: "no captions in " + rangeLabel, Source: "heuristic"}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d captions between %s. ", len(lines), rangeLabel)
	b.WriteString("Opened with: " + stripStamp(lines[0]))
	if len(lines) > 1 {
		b.WriteString(" Ended with: " + stripStamp(lines[len(lines)-1]))
	}
	return Result{Text: b.String(), Source: "heuristic"}, nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// stripStamp drops the leading "[HH:MM:SS] " stamp from a rendered line.
func stripStamp(line string) string {
	if strings.HasPrefix(line, "[") {
		if idx := strings.Index(line, "] "); idx != -1 {
			return line[idx+2:]
		}
	}
	return line
}
