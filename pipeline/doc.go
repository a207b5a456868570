// Package pipeline turns an AdjustmentState and a source image into final
// pixels.
//
// Stages run in a fixed scene-referred order: geometry and linearization
// first, then exposure, white balance, tone mapping, color grading,
// saturation/vibrance, the HSL mixer, detail, lens blur, effects, and
// finally the output transform back to display sRGB. A stage whose module
// is disabled is skipped entirely and changes nothing.
//
// The pipeline never mutates its inputs: each Render call clones the
// adjustment snapshot, renders into fresh buffers, and returns a new
// image.
package pipeline
