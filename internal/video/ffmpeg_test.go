package video

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbe(t *testing.T) {
	t.Parallel()

	t.Run("full metadata", func(t *testing.T) {
		t.Parallel()
		out := []byte(`{"streams":[{"codec_name":"h264","width":1280,"height":720,"r_frame_rate":"20/1","nb_frames":"2700"}]}`)
		res, err := parseProbe(out)
		require.NoError(t, err)
		assert.Equal(t, ProbeResult{Width: 1280, Height: 720, Frames: 2700, Codec: "h264", FrameRate: "20/1"}, res)
	})

	t.Run("frame count not available", func(t *testing.T) {
		t.Parallel()
		out := []byte(`{"streams":[{"codec_name":"mjpeg","width":640,"height":480,"nb_frames":"N/A"}]}`)
		res, err := parseProbe(out)
		require.NoError(t, err)
		assert.Zero(t, res.Frames)
	})

	t.Run("no stream", func(t *testing.T) {
		t.Parallel()
		_, err := parseProbe([]byte(`{"streams":[]}`))
		assert.Error(t, err)
	})

	t.Run("bad size", func(t *testing.T) {
		t.Parallel()
		_, err := parseProbe([]byte(`{"streams":[{"width":0,"height":480}]}`))
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		t.Parallel()
		_, err := parseProbe([]byte("ffprobe: command not found"))
		assert.Error(t, err)
	})
}

func TestDecodeArgsRequestPackedBGR(t *testing.T) {
	args := decodeArgs("/data/epoch01_front.mp4")
	assert.Contains(t, args, "bgr24")
	assert.Contains(t, args, "rawvideo")
	assert.Equal(t, "pipe:1", args[len(args)-1])
}

func TestRawSource_SlicesFrames(t *testing.T) {
	probe := ProbeResult{Width: 2, Height: 2, Frames: 5}
	payload := bytes.Repeat([]byte{1, 2, 3}, 4)
	payload = append(payload, bytes.Repeat([]byte{9, 8, 7}, 4)...)

	src := newRawSource(io.NopCloser(bytes.NewReader(payload)), probe)
	defer src.Close()

	assert.Equal(t, 5, src.FrameCount())

	f1, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), f1.At(1, 1, 0))

	f2, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), f2.At(0, 0, 2))

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF, "end of stream is sticky")
}

func TestRawSource_TruncatedFrame(t *testing.T) {
	probe := ProbeResult{Width: 2, Height: 2}
	payload := bytes.Repeat([]byte{1}, 12+5)

	src := newRawSource(io.NopCloser(bytes.NewReader(payload)), probe)
	_, err := src.Next()
	require.NoError(t, err)

	_, err = src.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFrameDecode))
	assert.False(t, errors.Is(err, io.EOF))
}

func TestRawSource_ProducerFailure(t *testing.T) {
	probe := ProbeResult{Width: 1, Height: 1}
	src := newRawSource(io.NopCloser(bytes.NewReader([]byte{1, 2, 3})), probe)
	src.wait = func() error { return errors.New("exit status 1: invalid NAL unit") }

	_, err := src.Next()
	require.NoError(t, err)

	_, err = src.Next()
	assert.ErrorIs(t, err, ErrFrameDecode)
}

func TestRawSource_CloseKillsUnfinished(t *testing.T) {
	probe := ProbeResult{Width: 1, Height: 1}
	src := newRawSource(io.NopCloser(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6})), probe)
	killed, waited := false, false
	src.kill = func() { killed = true }
	src.wait = func() error { waited = true; return nil }

	_, err := src.Next()
	require.NoError(t, err)
	require.NoError(t, src.Close())
	assert.True(t, killed)
	assert.True(t, waited)
}

func TestFFmpegOpener_MissingFile(t *testing.T) {
	o := FFmpegOpener{}
	_, err := o.Open(context.Background(), filepath.Join(t.TempDir(), "epoch03_front.mp4"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFFmpegOpener_MissingProbeBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "epoch03_front.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))

	o := FFmpegOpener{FFprobePath: filepath.Join(dir, "bin", "ffprobe")}
	_, err := o.Open(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecoderUnavailable)
	assert.False(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "ffprobe")
}
