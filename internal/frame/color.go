package frame

import "fmt"

// ColorMode selects the channel layout of a normalised frame.
type ColorMode int

const (
	// Native keeps the decoder's BGR order.
	Native ColorMode = iota
	// LumaChroma converts to YUV (Y, U, V order).
	LumaChroma
)

func (m ColorMode) String() string {
	switch m {
	case Native:
		return "native"
	case LumaChroma:
		return "yuv"
	default:
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
}

// BGR→YUV weights. Chroma channels are offset to 128.
const (
	r2y = 0.299
	g2y = 0.587
	b2y = 0.114
	b2u = 0.492
	r2v = 0.877

	chromaOffset = 128.0
)

// toYUV converts a BGR frame to YUV in place.
func toYUV(f *Frame) {
	for i := 0; i+2 < len(f.Pix); i += Channels {
		b := float64(f.Pix[i])
		g := float64(f.Pix[i+1])
		r := float64(f.Pix[i+2])

		y := r2y*r + g2y*g + b2y*b
		f.Pix[i] = saturate(y)
		f.Pix[i+1] = saturate((b-y)*b2u + chromaOffset)
		f.Pix[i+2] = saturate((r-y)*r2v + chromaOffset)
	}
}
