package frame

// Params configures Transform.
type Params struct {
	TargetHeight int
	TargetWidth  int
	ColorMode    ColorMode
	Mirror       bool
}

// Transform crops, resizes, optionally recolours and optionally mirrors src.
// The result is always TargetHeight×TargetWidth×3 and src is left untouched.
func Transform(src *Frame, p Params) (*Frame, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	crop, err := CropFor(src.Height, src.Width, p.TargetHeight, p.TargetWidth)
	if err != nil {
		return nil, err
	}

	out := resizeArea(src, crop, p.TargetHeight, p.TargetWidth)
	if p.ColorMode == LumaChroma {
		toYUV(out)
	}
	if p.Mirror {
		Mirror(out)
	}
	return out, nil
}

// Mirror reverses the column order of f in place.
func Mirror(f *Frame) {
	for y := 0; y < f.Height; y++ {
		for l, r := 0, f.Width-1; l < r; l, r = l+1, r-1 {
			li := f.offset(y, l)
			ri := f.offset(y, r)
			f.Pix[li], f.Pix[ri] = f.Pix[ri], f.Pix[li]
			f.Pix[li+1], f.Pix[ri+1] = f.Pix[ri+1], f.Pix[li+1]
			f.Pix[li+2], f.Pix[ri+2] = f.Pix[ri+2], f.Pix[li+2]
		}
	}
}
