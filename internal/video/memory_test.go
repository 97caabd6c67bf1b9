package video

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/steering.dataset/internal/frame"
)

func TestMemoryOpener(t *testing.T) {
	a := frame.New(2, 2)
	a.Set(0, 0, 10, 20, 30)
	b := frame.New(2, 2)

	o := NewMemoryOpener()
	o.Add("/data/epoch01_front.mp4", a, b)

	src, err := o.Open(context.Background(), "/data/epoch01_front.mp4")
	require.NoError(t, err)
	assert.Equal(t, 1, o.OpenCount())
	assert.Equal(t, 2, src.FrameCount())

	got, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(20), got.At(0, 0, 1))

	got.Set(0, 0, 0, 0, 0)
	assert.Equal(t, uint8(10), a.At(0, 0, 0), "fixture must not be mutated through returned frames")

	_, err = src.Next()
	require.NoError(t, err)
	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
	assert.Equal(t, 0, o.OpenCount())
}

func TestMemoryOpener_NotFound(t *testing.T) {
	o := NewMemoryOpener()
	_, err := o.Open(context.Background(), "/data/epoch05_front.mp4")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryOpener_ReportedCount(t *testing.T) {
	o := NewMemoryOpener()
	o.Add("/v.mp4", frame.New(1, 1))
	o.SetReportedCount("/v.mp4", 40)

	src, err := o.Open(context.Background(), "/v.mp4")
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, 40, src.FrameCount())
}

func TestMemoryOpener_CanceledContext(t *testing.T) {
	o := NewMemoryOpener()
	o.Add("/v.mp4", frame.New(1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Open(ctx, "/v.mp4")
	assert.ErrorIs(t, err, context.Canceled)
}
