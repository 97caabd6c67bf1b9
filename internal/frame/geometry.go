package frame

import (
	"errors"
	"fmt"
	"math"
)

// BottomCut is the number of rows removed from the bottom of every frame.
// It hides the car bonnet for the fixed dashcam mount the recordings use.
const BottomCut = 150

// ErrInvalidGeometry is matched by every GeometryError.
var ErrInvalidGeometry = errors.New("frame: invalid crop geometry")

// GeometryError describes a crop that cannot be computed for a frame.
type GeometryError struct {
	Height, Width int
	Reason        string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("frame: invalid crop geometry for %dx%d input: %s", e.Height, e.Width, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidGeometry.
func (e *GeometryError) Unwrap() error { return ErrInvalidGeometry }

// Crop is a half-open pixel rectangle: rows [Top, Bottom), cols [Left, Right).
type Crop struct {
	Top, Bottom int
	Left, Right int
}

// Rows returns the crop height.
func (c Crop) Rows() int { return c.Bottom - c.Top }

// Cols returns the crop width.
func (c Crop) Cols() int { return c.Right - c.Left }

// CropFor computes the crop window for an input of height×width so that the
// cropped region has the aspect ratio of targetHeight×targetWidth.
//
// The top third and the bottom BottomCut rows are dropped. The remaining
// band sets the crop height; the width follows from the target aspect ratio
// and is centred with symmetric padding rounded half-to-even. Padding that
// comes out non-positive is clamped to zero, so narrow inputs keep their
// full width instead of indexing outside the frame.
func CropFor(height, width, targetHeight, targetWidth int) (Crop, error) {
	if targetHeight <= 0 || targetWidth <= 0 {
		return Crop{}, &GeometryError{Height: height, Width: width,
			Reason: fmt.Sprintf("target %dx%d must be positive", targetHeight, targetWidth)}
	}
	if height <= BottomCut {
		return Crop{}, &GeometryError{Height: height, Width: width,
			Reason: fmt.Sprintf("height must exceed the %d-row bottom cut", BottomCut)}
	}

	top := height / 3
	bottom := height - BottomCut
	if bottom <= top {
		return Crop{}, &GeometryError{Height: height, Width: width,
			Reason: fmt.Sprintf("bottom row %d is not below top row %d", bottom, top)}
	}

	ratio := float64(targetHeight) / float64(targetWidth)
	cropWidth := float64(bottom-top) / ratio
	padding := int(math.RoundToEven((float64(width) - cropWidth) / 2))
	if padding < 0 {
		padding = 0
	}

	c := Crop{Top: top, Bottom: bottom, Left: padding, Right: width - padding}
	if c.Cols() <= 0 {
		return Crop{}, &GeometryError{Height: height, Width: width,
			Reason: fmt.Sprintf("padding %d leaves no columns", padding)}
	}
	return c, nil
}
