// Package gpu implements the wgpu/hal compute backend for the fused
// pointwise color transform. It is wired into the engine through
// pixaro.RegisterAccelerator; see the top-level gpu package for the
// blank-import registration entry point.
package gpu
