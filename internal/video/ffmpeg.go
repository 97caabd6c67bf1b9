package video

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/banshee-data/steering.dataset/internal/frame"
)

// FFmpegOpener decodes recordings by piping raw bgr24 frames out of an
// ffmpeg process. Dimensions and the advisory frame count come from ffprobe.
type FFmpegOpener struct {
	FFmpegPath  string // defaults to "ffmpeg"
	FFprobePath string // defaults to "ffprobe"
}

// ProbeResult is the subset of ffprobe stream metadata the decoder needs.
type ProbeResult struct {
	Width     int
	Height    int
	Frames    int // nb_frames; 0 when the container does not say
	Codec     string
	FrameRate string
}

func (o FFmpegOpener) ffmpeg() string {
	if o.FFmpegPath == "" {
		return "ffmpeg"
	}
	return o.FFmpegPath
}

func (o FFmpegOpener) ffprobe() string {
	if o.FFprobePath == "" {
		return "ffprobe"
	}
	return o.FFprobePath
}

// Open probes path and starts the decoder.
func (o FFmpegOpener) Open(ctx context.Context, path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	probe, err := o.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, o.ffmpeg(), decodeArgs(path)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrDecoderUnavailable, o.ffmpeg(), err)
	}
	diagf("decoding %s: %dx%d %s, %d frames advertised", path, probe.Width, probe.Height, probe.Codec, probe.Frames)

	src := newRawSource(stdout, probe)
	src.wait = func() error {
		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil
	}
	src.kill = func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}
	return src, nil
}

// Probe reads stream metadata for the first video stream of path.
func (o FFmpegOpener) Probe(ctx context.Context, path string) (ProbeResult, error) {
	out, err := exec.CommandContext(ctx, o.ffprobe(), probeArgs(path)...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ProbeResult{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return ProbeResult{}, fmt.Errorf("%w: start %s: %v", ErrDecoderUnavailable, o.ffprobe(), err)
	}
	return parseProbe(out)
}

func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height,nb_frames,r_frame_rate",
		"-of", "json",
		path,
	}
}

func decodeArgs(path string) []string {
	return []string{
		"-nostdin",
		"-v", "error",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"pipe:1",
	}
}

type probeJSON struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		NbFrames   string `json:"nb_frames"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

func parseProbe(data []byte) (ProbeResult, error) {
	var p probeJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return ProbeResult{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(p.Streams) == 0 {
		return ProbeResult{}, fmt.Errorf("ffprobe: no video stream")
	}
	s := p.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return ProbeResult{}, fmt.Errorf("ffprobe: invalid stream size %dx%d", s.Width, s.Height)
	}
	res := ProbeResult{Width: s.Width, Height: s.Height, Codec: s.CodecName, FrameRate: s.RFrameRate}
	// nb_frames is "N/A" for some containers; treat as unknown.
	if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
		res.Frames = n
	}
	return res, nil
}

// rawSource slices a stream of packed bgr24 frames.
type rawSource struct {
	r      *bufio.Reader
	closer io.Closer
	probe  ProbeResult
	index  int

	wait func() error // reaps the producer once the stream ends
	kill func()

	done bool
	err  error
}

func newRawSource(rc io.ReadCloser, probe ProbeResult) *rawSource {
	return &rawSource{
		r:      bufio.NewReaderSize(rc, probe.Width*probe.Height*frame.Channels),
		closer: rc,
		probe:  probe,
	}
}

func (s *rawSource) FrameCount() int { return s.probe.Frames }

func (s *rawSource) Next() (*frame.Frame, error) {
	if s.done {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}

	f := frame.New(s.probe.Height, s.probe.Width)
	_, err := io.ReadFull(s.r, f.Pix)
	switch {
	case err == nil:
		s.index++
		tracef("frame %d decoded", s.index)
		return f, nil
	case errors.Is(err, io.EOF):
		s.done = true
		if s.wait != nil {
			if werr := s.wait(); werr != nil {
				s.err = fmt.Errorf("%w: after frame %d: %v", ErrFrameDecode, s.index, werr)
				opsf("%v", s.err)
				return nil, s.err
			}
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
		s.err = fmt.Errorf("%w: frame %d truncated", ErrFrameDecode, s.index+1)
		opsf("%v", s.err)
		if s.wait != nil {
			_ = s.wait()
		}
		return nil, s.err
	default:
		s.done = true
		s.err = fmt.Errorf("%w: frame %d: %v", ErrFrameDecode, s.index+1, err)
		opsf("%v", s.err)
		if s.kill != nil {
			s.kill()
		}
		if s.wait != nil {
			_ = s.wait()
		}
		return nil, s.err
	}
}

func (s *rawSource) Close() error {
	// cmd.Wait closes the pipe itself once the stream has been drained.
	err := s.closer.Close()
	if errors.Is(err, os.ErrClosed) {
		err = nil
	}
	if !s.done {
		s.done = true
		if s.kill != nil {
			s.kill()
		}
		if s.wait != nil {
			_ = s.wait()
		}
	}
	return err
}
