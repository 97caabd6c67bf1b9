package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/banshee-data/steering.dataset/internal/frame"
)

// Variant names one of the four published dataset compositions.
type Variant int

const (
	VariantTrainNative Variant = iota
	VariantTrainLumaChroma
	VariantEvalNative
	VariantEvalLumaChroma
)

var variantNames = map[Variant]string{
	VariantTrainNative:     "train-native",
	VariantTrainLumaChroma: "train-yuv",
	VariantEvalNative:      "eval-native",
	VariantEvalLumaChroma:  "eval-yuv",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ColorMode returns the colour mode the variant is built with.
func (v Variant) ColorMode() frame.ColorMode {
	if v == VariantTrainLumaChroma || v == VariantEvalLumaChroma {
		return frame.LumaChroma
	}
	return frame.Native
}

// Training reports whether the variant is flip-augmented over the
// training sessions.
func (v Variant) Training() bool {
	return v == VariantTrainNative || v == VariantTrainLumaChroma
}

// ParseVariant accepts the String form; "rgb" is an alias for "native".
func ParseVariant(s string) (Variant, error) {
	want := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "rgb", "native")
	for v, name := range variantNames {
		if name == want {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown variant %q (want train-native, train-yuv, eval-native or eval-yuv)", s)
}

// TrainNative builds the training sessions mirrored, then unmirrored, in
// native colour. The result holds twice the sessions' frames.
func (b *Builder) TrainNative(ctx context.Context) (*Dataset, error) {
	return b.augmented(ctx, b.cfg.TrainEpochs, frame.Native)
}

// TrainLumaChroma is TrainNative in YUV.
func (b *Builder) TrainLumaChroma(ctx context.Context) (*Dataset, error) {
	return b.augmented(ctx, b.cfg.TrainEpochs, frame.LumaChroma)
}

// EvalNative builds the evaluation sessions once, unmirrored.
func (b *Builder) EvalNative(ctx context.Context) (*Dataset, error) {
	return b.Build(ctx, b.cfg.EvalEpochs, frame.Native, false)
}

// EvalLumaChroma is EvalNative in YUV.
func (b *Builder) EvalLumaChroma(ctx context.Context) (*Dataset, error) {
	return b.Build(ctx, b.cfg.EvalEpochs, frame.LumaChroma, false)
}

// BuildVariant dispatches to the entry point for v.
func (b *Builder) BuildVariant(ctx context.Context, v Variant) (*Dataset, error) {
	switch v {
	case VariantTrainNative:
		return b.TrainNative(ctx)
	case VariantTrainLumaChroma:
		return b.TrainLumaChroma(ctx)
	case VariantEvalNative:
		return b.EvalNative(ctx)
	case VariantEvalLumaChroma:
		return b.EvalLumaChroma(ctx)
	default:
		return nil, fmt.Errorf("unknown variant %d", int(v))
	}
}

func (b *Builder) augmented(ctx context.Context, epochs []int, mode frame.ColorMode) (*Dataset, error) {
	mirrored, err := b.Build(ctx, epochs, mode, true)
	if err != nil {
		return nil, fmt.Errorf("mirrored pass: %w", err)
	}
	plain, err := b.Build(ctx, epochs, mode, false)
	if err != nil {
		return nil, fmt.Errorf("unmirrored pass: %w", err)
	}
	return Concat(mirrored, plain), nil
}
