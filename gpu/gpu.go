//go:build !nogpu

// Package gpu registers the wgpu compute accelerator for the fused
// pointwise color stages (exposure, white balance, contrast, sigmoid,
// output encode).
//
// Import this package to enable GPU execution of preview renders whose
// adjustment state collapses to a single pointwise pass. Spatial stages
// always run on the CPU.
//
// If GPU initialization fails (no Vulkan available), registration still
// succeeds and rendering transparently falls back to CPU.
//
// Usage:
//
//	import _ "github.com/pixaro/pixaro/gpu" // enable GPU acceleration
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/pixaro/pixaro"
	gpuimpl "github.com/pixaro/pixaro/internal/gpu"
)

func init() {
	accel := &gpuimpl.ColorAccelerator{}
	if err := pixaro.RegisterAccelerator(accel); err != nil {
		pixaro.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the accelerator to reuse a shared GPU device
// from an external provider instead of creating its own instance. Useful
// when the host application already drives a window surface through
// gpucontext and wants a single device for preview and display.
//
// The provider must also expose HAL types via HalDevice()/HalQueue() for
// the compute pipelines to be recreated on the shared device.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return pixaro.SetAcceleratorDeviceProvider(provider)
}
