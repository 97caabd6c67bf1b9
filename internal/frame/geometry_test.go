package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		height, width  int
		targetH, targW int
		want           Crop
	}{
		{"square input", 300, 300, 66, 200, Crop{Top: 100, Bottom: 150, Left: 74, Right: 226}},
		{"vga dashcam", 480, 640, 66, 200, Crop{Top: 160, Bottom: 330, Left: 62, Right: 578}},
		{"hd dashcam", 720, 1280, 66, 200, Crop{Top: 240, Bottom: 570, Left: 140, Right: 1140}},
		{"narrow input clamps padding", 300, 100, 66, 200, Crop{Top: 100, Bottom: 150, Left: 0, Right: 100}},
		{"half padding rounds down to even", 300, 55, 1, 1, Crop{Top: 100, Bottom: 150, Left: 2, Right: 53}},
		{"half padding rounds up to even", 300, 57, 1, 1, Crop{Top: 100, Bottom: 150, Left: 4, Right: 53}},
		{"one usable row", 226, 401, 1, 1, Crop{Top: 75, Bottom: 76, Left: 200, Right: 201}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CropFor(tt.height, tt.width, tt.targetH, tt.targW)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCropFor_AspectRatio(t *testing.T) {
	c, err := CropFor(720, 1280, 66, 200)
	require.NoError(t, err)
	// 330 rows at 66:200 is 1000 columns.
	assert.Equal(t, 330, c.Rows())
	assert.Equal(t, 1000, c.Cols())
}

func TestCropFor_Degenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		height, width  int
		targetH, targW int
	}{
		{"height equals bottom cut", 150, 300, 66, 200},
		{"height below bottom cut", 100, 300, 66, 200},
		{"bottom above top", 200, 300, 66, 200},
		{"bottom equals top", 225, 300, 66, 200},
		{"zero target height", 300, 300, 0, 200},
		{"negative target width", 300, 300, 66, -1},
		{"padding consumes width", 226, 2, 1000, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := CropFor(tt.height, tt.width, tt.targetH, tt.targW)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGeometry))

			var ge *GeometryError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, tt.height, ge.Height)
			assert.Equal(t, tt.width, ge.Width)
		})
	}
}
