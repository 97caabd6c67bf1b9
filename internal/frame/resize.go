package frame

import "math"

// tap is one source sample contributing to a destination sample.
type tap struct {
	src    int
	weight float64
}

// areaTaps maps each of dst output positions to the source positions its
// footprint overlaps, weighted by the fraction of the footprint each source
// cell covers. Output cell d spans [d*scale, (d+1)*scale) in source space.
// Weights for every output position sum to 1.
func areaTaps(src, dst int) [][]tap {
	scale := float64(src) / float64(dst)
	taps := make([][]tap, dst)
	for d := 0; d < dst; d++ {
		lo := float64(d) * scale
		hi := math.Min(lo+scale, float64(src))

		var row []tap
		var sum float64
		for s := int(math.Floor(lo)); s < src && float64(s) < hi; s++ {
			a := math.Max(lo, float64(s))
			b := math.Min(hi, float64(s+1))
			if b <= a {
				continue
			}
			row = append(row, tap{src: s, weight: b - a})
			sum += b - a
		}
		if len(row) == 0 {
			// Only reachable through float rounding at the far edge.
			row = []tap{{src: src - 1, weight: 1}}
			sum = 1
		}
		for i := range row {
			row[i].weight /= sum
		}
		taps[d] = row
	}
	return taps
}

// resizeArea resamples the crop c of src to height×width by area averaging.
// The two axes are separable: a horizontal pass accumulates into a float
// buffer and a vertical pass produces the rounded output.
func resizeArea(src *Frame, c Crop, height, width int) *Frame {
	xTaps := areaTaps(c.Cols(), width)
	yTaps := areaTaps(c.Rows(), height)

	rows := c.Rows()
	horiz := make([]float64, rows*width*Channels)
	for y := 0; y < rows; y++ {
		srcRow := src.offset(c.Top+y, c.Left)
		dstRow := y * width * Channels
		for x, xt := range xTaps {
			var s0, s1, s2 float64
			for _, t := range xt {
				i := srcRow + t.src*Channels
				s0 += float64(src.Pix[i]) * t.weight
				s1 += float64(src.Pix[i+1]) * t.weight
				s2 += float64(src.Pix[i+2]) * t.weight
			}
			o := dstRow + x*Channels
			horiz[o] = s0
			horiz[o+1] = s1
			horiz[o+2] = s2
		}
	}

	out := New(height, width)
	for y, yt := range yTaps {
		for x := 0; x < width; x++ {
			var s0, s1, s2 float64
			for _, t := range yt {
				i := (t.src*width + x) * Channels
				s0 += horiz[i] * t.weight
				s1 += horiz[i+1] * t.weight
				s2 += horiz[i+2] * t.weight
			}
			out.Set(y, x, saturate(s0), saturate(s1), saturate(s2))
		}
	}
	return out
}

// saturate rounds half-to-even and clamps to the uint8 range.
func saturate(v float64) uint8 {
	r := math.RoundToEven(v)
	switch {
	case r <= 0:
		return 0
	case r >= 255:
		return 255
	default:
		return uint8(r)
	}
}
