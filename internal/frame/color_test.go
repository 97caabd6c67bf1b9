package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToYUV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		b, g, r uint8
		y, u, v uint8
	}{
		{"gray is centred", 100, 100, 100, 100, 128, 128},
		{"black", 0, 0, 0, 0, 128, 128},
		{"white", 255, 255, 255, 255, 128, 128},
		{"red saturates V", 0, 0, 255, 76, 90, 255},
		{"blue", 255, 0, 0, 29, 239, 103},
		{"green clamps V at zero", 0, 255, 0, 150, 54, 0},
		{"mixed", 10, 200, 30, 128, 70, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := New(1, 1)
			f.Set(0, 0, tt.b, tt.g, tt.r)
			toYUV(f)
			assert.Equal(t, []uint8{tt.y, tt.u, tt.v}, f.Pix)
		})
	}
}

func TestColorModeString(t *testing.T) {
	assert.Equal(t, "native", Native.String())
	assert.Equal(t, "yuv", LumaChroma.String())
	assert.Equal(t, "ColorMode(7)", ColorMode(7).String())
}
