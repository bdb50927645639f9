package source

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/gjson"

	"github.com/norm/captiond/internal/caption"
)

// FileSource tails a captions file and emits one caption per appended
// line. Lines are either JSON objects ({"text": "...", "ts_ms": 1718...})
// or plain text; plain lines and JSON lines without a timestamp are
// stamped with the arrival time. The watcher follows the parent directory
// so file recreation and truncation are handled.
type FileSource struct {
	path    string
	watcher *fsnotify.Watcher
	out     chan caption.Caption

	offset  int64
	partial []byte
}

// NewFileSource creates a source tailing path. The file does not need to
// exist yet.
func NewFileSource(path string) (*FileSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileSource{
		path:    path,
		watcher: watcher,
		out:     make(chan caption.Caption, 1024),
	}, nil
}

// Captions returns the output channel.
func (s *FileSource) Captions() <-chan caption.Caption { return s.out }

// Close releases the underlying watcher.
func (s *FileSource) Close() error {
	return s.watcher.Close()
}

// Start watches for appends until ctx is cancelled. Content already in
// the file at start is skipped: the tail begins at the current size, the
// daemon only captions forward.
func (s *FileSource) Start(ctx context.Context) error {
	defer close(s.out)

	if err := s.watcher.Add(filepath.Dir(s.path)); err != nil {
		return err
	}

	if info, err := os.Stat(s.path); err == nil {
		s.offset = info.Size()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.watcher.Errors:
			if err != nil {
				return err
			}
		case event := <-s.watcher.Events:
			if event.Name != s.path {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				s.offset = 0
				s.partial = nil
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := s.readNew(); err != nil {
					log.Printf("source: read %s: %v (skipping)", s.path, err)
				}
			}
		}
	}
}

// readNew consumes bytes appended since the last read, carrying any
// trailing partial line over to the next read.
func (s *FileSource) readNew() error {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if info.Size() < s.offset {
		// Truncated, start over.
		s.offset = 0
		s.partial = nil
	}
	if info.Size() == s.offset {
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, info.Size()-s.offset)
	n, err := f.ReadAt(buf, s.offset)
	if err != nil && n == 0 {
		return err
	}
	s.offset += int64(n)

	data := append(s.partial, buf[:n]...)
	lines := bytes.Split(data, []byte("\n"))
	s.partial = lines[len(lines)-1]

	for _, line := range lines[:len(lines)-1] {
		s.emitLine(line)
	}
	return nil
}

// emitLine parses one line into a caption and emits it. A full channel
// drops the caption rather than stalling the tail.
func (s *FileSource) emitLine(line []byte) {
	text := strings.TrimSpace(string(line))
	if text == "" {
		return
	}

	at := time.Now()
	if gjson.ValidBytes(line) {
		parsed := gjson.GetBytes(line, "text")
		if !parsed.Exists() {
			return
		}
		text = parsed.String()
		if ts := gjson.GetBytes(line, "ts_ms"); ts.Exists() {
			at = time.UnixMilli(ts.Int())
		}
	}

	select {
	case s.out <- caption.New(text, at):
	default:
		log.Printf("source: caption dropped (channel full): %q", text)
	}
}
