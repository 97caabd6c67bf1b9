// Package testutil provides shared fixtures for the dataset pipeline tests:
// synthetic frames, steering logs and in-memory sessions.
package testutil

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/banshee-data/steering.dataset/internal/frame"
	"github.com/banshee-data/steering.dataset/internal/fsutil"
	"github.com/banshee-data/steering.dataset/internal/video"
)

// GradientFrame returns a height×width BGR frame whose blue channel ramps
// with the column, green with the row, and red with both, so crops, flips
// and resizes all change the content in detectable ways.
func GradientFrame(height, width int) *frame.Frame {
	f := frame.New(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.Set(y, x,
				uint8(x*255/max(width-1, 1)),
				uint8(y*255/max(height-1, 1)),
				uint8((x+2*y)%256))
		}
	}
	return f
}

// SolidFrame returns a frame filled with one BGR colour.
func SolidFrame(height, width int, b, g, r uint8) *frame.Frame {
	f := frame.New(height, width)
	for i := 0; i < len(f.Pix); i += frame.Channels {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2] = b, g, r
	}
	return f
}

// SeededFrame returns a GradientFrame offset by seed, so consecutive frames
// of a fixture video differ.
func SeededFrame(height, width, seed int) *frame.Frame {
	f := GradientFrame(height, width)
	for i := range f.Pix {
		f.Pix[i] = uint8((int(f.Pix[i]) + seed*37) % 256)
	}
	return f
}

// SteeringCSV renders a telemetry log with a frame_index column and a
// wheel column holding values.
func SteeringCSV(values ...float64) []byte {
	var sb strings.Builder
	sb.WriteString("ts_micro,frame_index,wheel\n")
	for i, v := range values {
		fmt.Fprintf(&sb, "%d,%d,%s\n", 1464650070000000+i*50000, i, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return []byte(sb.String())
}

// Session is one in-memory recording.
type Session struct {
	VideoPath     string
	TelemetryPath string
	Frames        []*frame.Frame
	Labels        []float64
}

// Install registers each session's video with videos and writes its
// telemetry log to fsys.
func Install(t testing.TB, videos *video.MemoryOpener, fsys *fsutil.MemoryFileSystem, sessions ...Session) {
	t.Helper()
	for _, s := range sessions {
		if s.VideoPath != "" {
			videos.Add(s.VideoPath, s.Frames...)
		}
		if s.TelemetryPath != "" {
			if err := fsys.WriteFile(s.TelemetryPath, SteeringCSV(s.Labels...), 0644); err != nil {
				t.Fatalf("write telemetry fixture %s: %v", s.TelemetryPath, err)
			}
		}
	}
}

// Frames returns n SeededFrames of the given size.
func Frames(n, height, width int) []*frame.Frame {
	out := make([]*frame.Frame, n)
	for i := range out {
		out[i] = SeededFrame(height, width, i)
	}
	return out
}

// MirrorOf returns a column-reversed copy of f.
func MirrorOf(f *frame.Frame) *frame.Frame {
	out := f.Clone()
	frame.Mirror(out)
	return out
}
