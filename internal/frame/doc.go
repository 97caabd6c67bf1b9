// Package frame owns the per-frame normalisation step of the dataset
// pipeline.
//
// Responsibilities: the interleaved 8-bit Frame container, the fixed
// dashcam crop geometry, area-averaging resize, BGR→YUV conversion and
// horizontal mirroring. Key entry point: Transform.
//
// Everything here is pure. Transform never mutates its input and holds no
// state between calls, so callers may fan frames out across goroutines as
// long as they keep output order.
package frame
