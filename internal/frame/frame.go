package frame

import (
	"fmt"
	"image"
	"image/color"
)

// Channels is the number of interleaved samples per pixel.
const Channels = 3

// Frame is a row-major, channel-interleaved 8-bit image.
// Decoded frames arrive in BGR order; normalised frames are either BGR or
// YUV depending on the ColorMode they were produced with.
type Frame struct {
	Height int
	Width  int
	Pix    []uint8 // len == Height*Width*Channels
}

// New allocates a zeroed frame of the given size.
func New(height, width int) *Frame {
	return &Frame{
		Height: height,
		Width:  width,
		Pix:    make([]uint8, height*width*Channels),
	}
}

// Shape returns (height, width, channels).
func (f *Frame) Shape() (int, int, int) {
	return f.Height, f.Width, Channels
}

// offset returns the index of the first sample of pixel (y, x).
func (f *Frame) offset(y, x int) int {
	return (y*f.Width + x) * Channels
}

// At returns channel c of pixel (y, x).
func (f *Frame) At(y, x, c int) uint8 {
	return f.Pix[f.offset(y, x)+c]
}

// Set writes the three channels of pixel (y, x).
func (f *Frame) Set(y, x int, c0, c1, c2 uint8) {
	i := f.offset(y, x)
	f.Pix[i] = c0
	f.Pix[i+1] = c1
	f.Pix[i+2] = c2
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := &Frame{Height: f.Height, Width: f.Width, Pix: make([]uint8, len(f.Pix))}
	copy(out.Pix, f.Pix)
	return out
}

// Validate checks that the pixel buffer matches the declared dimensions.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("frame: nil frame")
	}
	if f.Height < 0 || f.Width < 0 {
		return fmt.Errorf("frame: negative dimensions %dx%d", f.Height, f.Width)
	}
	if want := f.Height * f.Width * Channels; len(f.Pix) != want {
		return fmt.Errorf("frame: pixel buffer holds %d samples, want %d for %dx%d", len(f.Pix), want, f.Height, f.Width)
	}
	return nil
}

// ToImage renders a BGR frame as an RGBA image. YUV frames come out as
// false colour, which is still useful for eyeballing the crop.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := f.offset(y, x)
			img.SetRGBA(x, y, color.RGBA{R: f.Pix[i+2], G: f.Pix[i+1], B: f.Pix[i], A: 0xff})
		}
	}
	return img
}

// FromImage converts any image into a BGR frame.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := New(b.Dy(), b.Dx())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			f.Set(y, x, uint8(bl>>8), uint8(g>>8), uint8(r>>8))
		}
	}
	return f
}
