package video

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/banshee-data/steering.dataset/internal/frame"
)

// MemorySource replays a fixed list of frames.
type MemorySource struct {
	frames   []*frame.Frame
	reported int
	pos      int
	closed   bool
}

// NewMemorySource returns a source that yields frames in order.
func NewMemorySource(frames []*frame.Frame) *MemorySource {
	return &MemorySource{frames: frames, reported: len(frames)}
}

// WithReportedCount overrides the advisory FrameCount, for exercising
// containers whose metadata is wrong.
func (s *MemorySource) WithReportedCount(n int) *MemorySource {
	s.reported = n
	return s
}

func (s *MemorySource) FrameCount() int { return s.reported }

// Next returns a copy of the next frame so callers cannot alter the fixture.
func (s *MemorySource) Next() (*frame.Frame, error) {
	if s.closed || s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f.Clone(), nil
}

func (s *MemorySource) Close() error {
	s.closed = true
	return nil
}

// MemoryOpener serves registered frame lists by path and counts how many
// sources are still open.
type MemoryOpener struct {
	mu     sync.Mutex
	videos map[string][]*frame.Frame
	counts map[string]int
	open   int
}

// NewMemoryOpener creates an empty opener.
func NewMemoryOpener() *MemoryOpener {
	return &MemoryOpener{
		videos: make(map[string][]*frame.Frame),
		counts: make(map[string]int),
	}
}

// Add registers frames under path.
func (o *MemoryOpener) Add(path string, frames ...*frame.Frame) {
	o.mu.Lock()
	defer o.mu.Unlock()
	path = filepath.Clean(path)
	o.videos[path] = frames
	o.counts[path] = len(frames)
}

// SetReportedCount overrides the advisory frame count for path.
func (o *MemoryOpener) SetReportedCount(path string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counts[filepath.Clean(path)] = n
}

// Open returns a fresh source over the frames registered at path.
func (o *MemoryOpener) Open(ctx context.Context, path string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	path = filepath.Clean(path)
	frames, ok := o.videos[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	o.open++
	src := NewMemorySource(frames).WithReportedCount(o.counts[path])
	return &trackedSource{MemorySource: src, opener: o}, nil
}

// OpenCount reports sources opened and not yet closed.
func (o *MemoryOpener) OpenCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

type trackedSource struct {
	*MemorySource
	opener *MemoryOpener
	once   sync.Once
}

func (s *trackedSource) Close() error {
	s.once.Do(func() {
		s.opener.mu.Lock()
		s.opener.open--
		s.opener.mu.Unlock()
	})
	return s.MemorySource.Close()
}
