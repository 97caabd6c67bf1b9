// Package dataset turns recorded driving sessions into aligned
// (frame, steering label) examples.
//
// A Builder walks sessions in order. For each one it decodes the video,
// normalises every frame through frame.Transform, reads the steering column
// from the telemetry log, negates labels for mirrored variants and
// reconciles the two counts under the configured CountPolicy. Sessions are
// fully independent: both resources are released before the next session
// opens, and any error aborts the whole build.
//
// Variant entry points (TrainNative, TrainLumaChroma, EvalNative,
// EvalLumaChroma) compose Build calls into the augmented sets used for
// training and evaluation.
package dataset
