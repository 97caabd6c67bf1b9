// Package video decodes session recordings into BGR frames.
//
// A Source yields frames one at a time until io.EOF. FFmpegOpener drives an
// external ffmpeg process; MemoryOpener serves in-memory fixtures.
package video

import (
	"context"
	"errors"

	"github.com/banshee-data/steering.dataset/internal/frame"
)

// ErrFrameDecode marks a frame the decoder started but could not finish.
// It is never reported as end-of-stream.
var ErrFrameDecode = errors.New("video: frame decode failed")

// ErrDecoderUnavailable marks an ffmpeg or ffprobe binary that could not be
// started. It never matches fs.ErrNotExist, which is reserved for the
// recording itself.
var ErrDecoderUnavailable = errors.New("video: decoder unavailable")

// Source is an open video resource.
type Source interface {
	// FrameCount is the container's frame count. It is advisory and may
	// disagree with the number of frames Next actually yields.
	FrameCount() int

	// Next decodes the next frame. It returns io.EOF after the last frame.
	Next() (*frame.Frame, error)

	// Close releases the decoder.
	Close() error
}

// Opener opens a Source by path. A missing path yields an error matching
// fs.ErrNotExist; a decoder that cannot run yields ErrDecoderUnavailable.
type Opener interface {
	Open(ctx context.Context, path string) (Source, error)
}
