// Package caption defines the caption value type and the fixed-duration
// time window that buckets captions for summarization.
package caption

import (
	"strings"
	"time"
)

// Caption is a single scene description with its capture instant.
// Immutable after construction.
type Caption struct {
	text       string
	capturedAt time.Time
}

// New creates a caption. Text is trimmed; no further validation is done,
// empty text is still a valid caption.
func New(text string, capturedAt time.Time) Caption {
	return Caption{
		text:       strings.TrimSpace(text),
		capturedAt: capturedAt,
	}
}

// Text returns the trimmed caption text.
func (c Caption) Text() string { return c.text }

// CapturedAt returns the instant the caption was produced.
func (c Caption) CapturedAt() time.Time { return c.capturedAt }

// DisplayLine renders the caption as "[HH:MM:SS] text".
func (c Caption) DisplayLine() string {
	return "[" + c.capturedAt.Format("15:04:05") + "] " + c.text
}
