// Package pixaro is a scene-referred image adjustment engine for photo
// editing: given a decoded photograph and an AdjustmentState describing the
// enabled adjustment modules, it renders interactive previews and
// full-resolution exports.
//
// The root package holds the shared vocabulary: the float32 RGBA Image
// buffer, the AdjustmentState record, the DepthMap used by lens blur, the
// structured Error type, and the accelerator registry. The actual work
// lives in the sub-packages:
//
//   - colorspace: pure color-space math (sRGB, XYZ, Lab/LCH, ProPhoto,
//     UCS, JzAzBz, Bradford adaptation, Kelvin white points)
//   - pipeline: the ordered adjustment pipeline producing pixels
//   - health: GPU lifecycle, context-loss recovery and fallback selection
//   - scheduler: per-frame coalescing of render requests
//   - quality: preview/export working-resolution policy
//   - depth: asynchronous depth-map acquisition for lens blur
//
// GPU acceleration is optional and enabled via blank import:
//
//	import _ "github.com/pixaro/pixaro/gpu"
//
// Without it every stage runs on the CPU path; the rendered pixels are
// identical either way.
package pixaro
