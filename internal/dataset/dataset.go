package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/steering.dataset/internal/frame"
)

// SessionStats records what one session contributed to a Dataset.
type SessionStats struct {
	Epoch         int
	ColorMode     frame.ColorMode
	Mirror        bool
	ProbedFrames  int // container metadata, advisory
	DecodedFrames int
	LabelRows     int
	Examples      int // frames kept after count reconciliation
}

// Dataset is an ordered set of examples. Frames[i] is labelled by Labels[i]
// unless the build ran under CountLenient with mismatched sessions.
type Dataset struct {
	Frames   []*frame.Frame
	Labels   []float64
	Sessions []SessionStats
}

// Len returns the number of frames.
func (d *Dataset) Len() int { return len(d.Frames) }

// Aligned reports whether every frame has exactly one label.
func (d *Dataset) Aligned() bool { return len(d.Frames) == len(d.Labels) }

// FrameShape returns (N, height, width, channels). Height and width are
// zero for an empty dataset.
func (d *Dataset) FrameShape() (int, int, int, int) {
	if len(d.Frames) == 0 {
		return 0, 0, 0, frame.Channels
	}
	return len(d.Frames), d.Frames[0].Height, d.Frames[0].Width, frame.Channels
}

// LabelColumn returns the labels as an N×1 matrix, or nil when there are
// no labels. The matrix owns a copy of the data.
func (d *Dataset) LabelColumn() *mat.Dense {
	if len(d.Labels) == 0 {
		return nil
	}
	data := make([]float64, len(d.Labels))
	copy(data, d.Labels)
	return mat.NewDense(len(data), 1, data)
}

// Concat joins datasets in argument order: all frames, then all labels,
// each in part order. Frame pointers are shared with the parts.
func Concat(parts ...*Dataset) *Dataset {
	var nf, nl, ns int
	for _, p := range parts {
		if p == nil {
			continue
		}
		nf += len(p.Frames)
		nl += len(p.Labels)
		ns += len(p.Sessions)
	}
	out := &Dataset{
		Frames:   make([]*frame.Frame, 0, nf),
		Labels:   make([]float64, 0, nl),
		Sessions: make([]SessionStats, 0, ns),
	}
	for _, p := range parts {
		if p == nil {
			continue
		}
		out.Frames = append(out.Frames, p.Frames...)
		out.Labels = append(out.Labels, p.Labels...)
		out.Sessions = append(out.Sessions, p.Sessions...)
	}
	return out
}
