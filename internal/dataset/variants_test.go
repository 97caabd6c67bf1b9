package dataset_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/steering.dataset/internal/dataset"
	"github.com/banshee-data/steering.dataset/internal/frame"
	"github.com/banshee-data/steering.dataset/internal/testutil"
)

func TestTrainNative_FlipAugments(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	raw := fx.session(t, 1, 2, 300, 300, 0.5, -0.3)
	b := fx.builder(dataset.Config{TrainEpochs: []int{1}, EvalEpochs: []int{2}})

	ds, err := b.TrainNative(context.Background())
	require.NoError(t, err)

	require.Equal(t, 4, ds.Len())
	assert.Equal(t, []float64{-0.5, 0.3, 0.5, -0.3}, ds.Labels)

	plain := transformAll(t, raw, frame.Native, false)
	got := pixels(ds)
	assert.Equal(t, plain, got[2:])
	for i := 0; i < 2; i++ {
		assert.Equal(t, testutil.MirrorOf(ds.Frames[i+2]).Pix, got[i], "frame %d", i)
		h, w, c := ds.Frames[i].Shape()
		assert.Equal(t, [3]int{66, 200, 3}, [3]int{h, w, c})
	}

	require.Len(t, ds.Sessions, 2)
	assert.True(t, ds.Sessions[0].Mirror)
	assert.False(t, ds.Sessions[1].Mirror)
	assert.Zero(t, fx.videos.OpenCount())
}

func TestTrainLumaChroma_DoublesAllSessions(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.session(t, 1, 3, 300, 300, 0.1, 0.2, 0.3)
	fx.session(t, 2, 2, 480, 640, -1, 1)
	b := fx.builder(dataset.Config{TrainEpochs: []int{1, 2}})

	ds, err := b.TrainLumaChroma(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, ds.Len())
	assert.Equal(t, []float64{-0.1, -0.2, -0.3, 1, -1, 0.1, 0.2, 0.3, -1, 1}, ds.Labels)

	s := ds.Summary()
	assert.Equal(t, s.Negative, s.Positive)
	assert.InDelta(t, 0, s.Mean, 1e-12)
	for _, st := range ds.Sessions {
		assert.Equal(t, frame.LumaChroma, st.ColorMode)
	}
}

func TestTrainVariantsDifferOnlyInColor(t *testing.T) {
	fx := newFixture()
	fx.session(t, 1, 2, 300, 300, 0.5, -0.3)
	b := fx.builder(dataset.Config{TrainEpochs: []int{1}})

	native, err := b.TrainNative(context.Background())
	require.NoError(t, err)
	yuv, err := b.TrainLumaChroma(context.Background())
	require.NoError(t, err)

	assert.Equal(t, native.Labels, yuv.Labels)
	assert.Equal(t, native.Len(), yuv.Len())
	assert.NotEqual(t, pixels(native), pixels(yuv))
}

func TestEvalVariants_SinglePassUnmirrored(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	raw := fx.session(t, 10, 3, 300, 300, 0.25, 0, -0.75)
	b := fx.builder(dataset.DefaultConfig())

	nat, err := b.EvalNative(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0, -0.75}, nat.Labels)
	assert.Equal(t, transformAll(t, raw, frame.Native, false), pixels(nat))

	yuv, err := b.EvalLumaChroma(context.Background())
	require.NoError(t, err)
	assert.Equal(t, nat.Labels, yuv.Labels)
	assert.Equal(t, transformAll(t, raw, frame.LumaChroma, false), pixels(yuv))
}

func TestTrainNative_MissingSessionFailsWholeVariant(t *testing.T) {
	fx := newFixture()
	fx.session(t, 1, 2, 300, 300, 0.5, -0.3)
	b := fx.builder(dataset.Config{TrainEpochs: []int{1, 2}})

	ds, err := b.TrainNative(context.Background())
	require.Error(t, err)
	assert.Nil(t, ds)
	assert.True(t, errors.Is(err, dataset.ErrSessionNotFound))
	assert.Contains(t, err.Error(), "mirrored pass")
	assert.Zero(t, fx.videos.OpenCount())
}

func TestBuildVariant(t *testing.T) {
	fx := newFixture()
	fx.session(t, 1, 1, 300, 300, 0.4)
	fx.session(t, 2, 1, 300, 300, -0.2)
	b := fx.builder(dataset.Config{TrainEpochs: []int{1}, EvalEpochs: []int{2}})

	wantLabels := map[dataset.Variant][]float64{
		dataset.VariantTrainNative:     {-0.4, 0.4},
		dataset.VariantTrainLumaChroma: {-0.4, 0.4},
		dataset.VariantEvalNative:      {-0.2},
		dataset.VariantEvalLumaChroma:  {-0.2},
	}
	for v, want := range wantLabels {
		ds, err := b.BuildVariant(context.Background(), v)
		require.NoError(t, err, v.String())
		assert.Equal(t, want, ds.Labels, v.String())
		assert.Equal(t, v.ColorMode(), ds.Sessions[0].ColorMode, v.String())
	}

	_, err := b.BuildVariant(context.Background(), dataset.Variant(9))
	assert.Error(t, err)
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in   string
		want dataset.Variant
	}{
		{"train-native", dataset.VariantTrainNative},
		{"train-rgb", dataset.VariantTrainNative},
		{"TRAIN-YUV", dataset.VariantTrainLumaChroma},
		{"eval-native", dataset.VariantEvalNative},
		{" eval-yuv ", dataset.VariantEvalLumaChroma},
	}
	for _, tt := range tests {
		got, err := dataset.ParseVariant(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := dataset.ParseVariant("test-native")
	assert.Error(t, err)
}

func TestVariantProperties(t *testing.T) {
	assert.True(t, dataset.VariantTrainNative.Training())
	assert.True(t, dataset.VariantTrainLumaChroma.Training())
	assert.False(t, dataset.VariantEvalNative.Training())
	assert.False(t, dataset.VariantEvalLumaChroma.Training())

	assert.Equal(t, frame.Native, dataset.VariantEvalNative.ColorMode())
	assert.Equal(t, frame.LumaChroma, dataset.VariantTrainLumaChroma.ColorMode())
	assert.Equal(t, "eval-yuv", dataset.VariantEvalLumaChroma.String())
	assert.Equal(t, "Variant(9)", dataset.Variant(9).String())
}
