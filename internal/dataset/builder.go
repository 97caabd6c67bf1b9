package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/steering.dataset/internal/frame"
	"github.com/banshee-data/steering.dataset/internal/telemetry"
	"github.com/banshee-data/steering.dataset/internal/video"
)

// CountPolicy decides what happens when a session decodes a different
// number of frames than its telemetry log has rows.
type CountPolicy int

const (
	// CountStrict fails the build with ErrMismatchedCount.
	CountStrict CountPolicy = iota
	// CountTruncate drops the tail of the longer side.
	CountTruncate
	// CountLenient keeps both sides as they are. The resulting dataset
	// is misaligned from the first mismatched session onwards.
	CountLenient
)

func (p CountPolicy) String() string {
	switch p {
	case CountStrict:
		return "strict"
	case CountTruncate:
		return "truncate"
	case CountLenient:
		return "lenient"
	default:
		return fmt.Sprintf("CountPolicy(%d)", int(p))
	}
}

// ParseCountPolicy parses strict, truncate or lenient.
func ParseCountPolicy(s string) (CountPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return CountStrict, nil
	case "truncate":
		return CountTruncate, nil
	case "lenient":
		return CountLenient, nil
	default:
		return CountStrict, fmt.Errorf("unknown count policy %q", s)
	}
}

// Config holds the Builder settings.
type Config struct {
	TargetHeight    int
	TargetWidth     int
	TrainEpochs     []int
	EvalEpochs      []int
	TelemetryColumn string
	CountPolicy     CountPolicy
	Workers         int // frame transforms in flight per session; <=1 is sequential
}

// DefaultConfig returns the 66×200 geometry with sessions 1-9 for training
// and 10 for evaluation.
func DefaultConfig() Config {
	return Config{
		TargetHeight:    66,
		TargetWidth:     200,
		TrainEpochs:     []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
		EvalEpochs:      []int{10},
		TelemetryColumn: telemetry.DefaultColumn,
		CountPolicy:     CountStrict,
		Workers:         1,
	}
}

// Builder assembles datasets from sessions. It keeps no state between
// Build calls and no reference to the datasets it returns.
type Builder struct {
	cfg      Config
	resolver PathResolver
	videos   video.Opener
	tables   telemetry.Opener
}

// NewBuilder creates a Builder. Zero-valued geometry, column and worker
// settings fall back to DefaultConfig.
func NewBuilder(cfg Config, resolver PathResolver, videos video.Opener, tables telemetry.Opener) *Builder {
	def := DefaultConfig()
	if cfg.TargetHeight == 0 {
		cfg.TargetHeight = def.TargetHeight
	}
	if cfg.TargetWidth == 0 {
		cfg.TargetWidth = def.TargetWidth
	}
	if cfg.TelemetryColumn == "" {
		cfg.TelemetryColumn = def.TelemetryColumn
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Builder{cfg: cfg, resolver: resolver, videos: videos, tables: tables}
}

// Config returns the effective configuration.
func (b *Builder) Config() Config { return b.cfg }

// Build processes each epoch in order and concatenates their examples.
// Labels are negated when mirror is set. Any session failure aborts the
// build; no partial dataset is returned.
func (b *Builder) Build(ctx context.Context, epochs []int, mode frame.ColorMode, mirror bool) (*Dataset, error) {
	params := frame.Params{
		TargetHeight: b.cfg.TargetHeight,
		TargetWidth:  b.cfg.TargetWidth,
		ColorMode:    mode,
		Mirror:       mirror,
	}

	ds := &Dataset{}
	for _, epoch := range epochs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build canceled before epoch %02d: %w", epoch, err)
		}
		s, err := b.buildSession(ctx, epoch, params)
		if err != nil {
			return nil, err
		}
		ds.Frames = append(ds.Frames, s.frames...)
		ds.Labels = append(ds.Labels, s.labels...)
		ds.Sessions = append(ds.Sessions, s.stats)
	}
	return ds, nil
}

type sessionResult struct {
	frames []*frame.Frame
	labels []float64
	stats  SessionStats
}

// buildSession handles one epoch. Both resources are closed before it
// returns, whichever step fails.
func (b *Builder) buildSession(ctx context.Context, epoch int, params frame.Params) (sessionResult, error) {
	stats := SessionStats{Epoch: epoch, ColorMode: params.ColorMode, Mirror: params.Mirror}

	videoPath := b.resolver.Resolve(epoch, KindVideo)
	src, err := b.videos.Open(ctx, videoPath)
	if err != nil {
		return sessionResult{}, openError(epoch, videoPath, err)
	}
	defer closeQuietly(src, epoch, videoPath)
	stats.ProbedFrames = src.FrameCount()

	frames, err := b.decodeAll(ctx, src, params)
	if err != nil {
		op := "decode"
		if errors.Is(err, frame.ErrInvalidGeometry) {
			op = "transform"
		}
		return sessionResult{}, &SessionError{Epoch: epoch, Op: op, Path: videoPath, Err: err}
	}
	stats.DecodedFrames = len(frames)

	tablePath := b.resolver.Resolve(epoch, KindTelemetry)
	table, err := b.tables.Open(tablePath)
	if err != nil {
		return sessionResult{}, openError(epoch, tablePath, err)
	}
	defer closeQuietly(table, epoch, tablePath)

	labels, err := table.ReadColumn(b.cfg.TelemetryColumn)
	if err != nil {
		return sessionResult{}, &SessionError{Epoch: epoch, Op: "read", Path: tablePath, Err: err}
	}
	stats.LabelRows = len(labels)

	if params.Mirror {
		for i := range labels {
			labels[i] *= -1.0
		}
	}

	frames, labels, err = b.reconcile(epoch, frames, labels)
	if err != nil {
		return sessionResult{}, &SessionError{Epoch: epoch, Op: "align", Err: err}
	}
	stats.Examples = len(frames)

	diagf("epoch %02d: %d frames decoded (%d advertised), %d labels, mode=%s mirror=%t",
		epoch, stats.DecodedFrames, stats.ProbedFrames, stats.LabelRows, params.ColorMode, params.Mirror)
	return sessionResult{frames: frames, labels: labels, stats: stats}, nil
}

// maxPrealloc caps the slice reserved from the advisory frame count.
const maxPrealloc = 1 << 12

// decodeAll drains src, transforming frames in batches of Workers*4 so at
// most one batch of raw frames is held at a time. Batch results are written
// into index slots, so output order is decode order.
func (b *Builder) decodeAll(ctx context.Context, src video.Source, params frame.Params) ([]*frame.Frame, error) {
	workers := b.cfg.Workers
	batchSize := workers * 4

	var out []*frame.Frame
	if n := src.FrameCount(); n > 0 {
		out = make([]*frame.Frame, 0, min(n, maxPrealloc))
	}
	batch := make([]*frame.Frame, 0, batchSize)

	flush := func() error {
		start := len(out)
		out = append(out, make([]*frame.Frame, len(batch))...)
		defer func() { batch = batch[:0] }()

		if workers <= 1 {
			for i, raw := range batch {
				f, err := frame.Transform(raw, params)
				if err != nil {
					return fmt.Errorf("frame %d: %w", start+i, err)
				}
				out[start+i] = f
			}
			return nil
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, raw := range batch {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				f, err := frame.Transform(raw, params)
				if err != nil {
					return fmt.Errorf("frame %d: %w", start+i, err)
				}
				out[start+i] = f
				return nil
			})
		}
		return g.Wait()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(out)+len(batch), err)
		}
		tracef("frame %d decoded %dx%d", len(out)+len(batch), raw.Height, raw.Width)
		batch = append(batch, raw)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *Builder) reconcile(epoch int, frames []*frame.Frame, labels []float64) ([]*frame.Frame, []float64, error) {
	nf, nl := len(frames), len(labels)
	if nf == nl {
		return frames, labels, nil
	}
	switch b.cfg.CountPolicy {
	case CountTruncate:
		n := min(nf, nl)
		opsf("epoch %02d: %d frames vs %d labels, truncating to %d", epoch, nf, nl, n)
		return frames[:n], labels[:n], nil
	case CountLenient:
		opsf("epoch %02d: %d frames vs %d labels, keeping both; dataset is misaligned", epoch, nf, nl)
		return frames, labels, nil
	default:
		return nil, nil, fmt.Errorf("%w: %d frames, %d labels", ErrMismatchedCount, nf, nl)
	}
}

func closeQuietly(c io.Closer, epoch int, path string) {
	if err := c.Close(); err != nil {
		opsf("epoch %02d: close %s: %v", epoch, path, err)
	}
}
