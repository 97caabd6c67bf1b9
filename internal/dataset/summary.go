package dataset

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the steering label distribution of a dataset.
type Summary struct {
	Count    int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Negative int
	Zero     int
	Positive int
}

// Summarize computes label statistics. A flip-augmented training set is
// symmetric, so its Mean is zero up to rounding and Negative equals Positive.
func Summarize(labels []float64) Summary {
	s := Summary{Count: len(labels)}
	if len(labels) == 0 {
		return s
	}
	if len(labels) == 1 {
		s.Mean = labels[0]
	} else {
		s.Mean, s.StdDev = stat.MeanStdDev(labels, nil)
	}
	s.Min = floats.Min(labels)
	s.Max = floats.Max(labels)
	for _, v := range labels {
		switch {
		case v < 0:
			s.Negative++
		case v > 0:
			s.Positive++
		default:
			s.Zero++
		}
	}
	return s
}

// Summary is shorthand for Summarize(d.Labels).
func (d *Dataset) Summary() Summary { return Summarize(d.Labels) }
