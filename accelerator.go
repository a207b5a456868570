package pixaro

import (
	"errors"
	"sync"
)

// AcceleratedOp describes pipeline stage groups for GPU capability checking.
type AcceleratedOp uint32

const (
	// AccelColorTransform represents the fused pointwise color stages
	// (exposure, white balance, tone mapping, output encode).
	AccelColorTransform AcceleratedOp = 1 << iota

	// AccelHistogram represents histogram accumulation.
	AccelHistogram

	// AccelSpatial represents spatial filters (blur, guided filter).
	AccelSpatial
)

// ColorTransform is the flattened per-pixel transform a GPU accelerator may
// execute in place of the CPU color stages. All fields are resolved
// constants: the pipeline folds an AdjustmentState snapshot into this form
// so the accelerator never interprets adjustment semantics itself.
type ColorTransform struct {
	// ExposureGain is the linear multiplier 2^EV.
	ExposureGain float32

	// WhiteBalance is the row-major 3x3 chromatic adaptation matrix,
	// identity when white balance is disabled.
	WhiteBalance [9]float32

	// Contrast is the slope of the midpoint-anchored contrast curve,
	// 1 when contrast is neutral.
	Contrast float32

	// SigmoidContrast and SigmoidGrey parameterize the sigmoid tone
	// curve; SigmoidContrast <= 0 disables the curve.
	SigmoidContrast float32
	SigmoidSkew     float32
	SigmoidGrey     float32

	// EncodeSRGB selects the final linear-to-sRGB encode.
	EncodeSRGB bool
}

// RenderTarget provides pixel buffer access for accelerator output.
// Data is float32 RGBA, 4 samples per pixel, laid out row by row.
type RenderTarget struct {
	Data          []float32
	Width, Height int
}

// Accelerator is an optional GPU execution provider for the pointwise
// color stages.
//
// When registered via RegisterAccelerator, the pipeline tries GPU execution
// first for supported operations. If the accelerator returns
// ErrFallbackToCPU or any error, rendering transparently falls back to the
// CPU implementation, which is the reference for all stages.
//
// Implementations are provided by GPU backend packages. Users opt in via
// blank import:
//
//	import _ "github.com/pixaro/pixaro/gpu" // enables GPU acceleration
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu", "vulkan").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the given
	// operation. This is a fast check used to skip GPU entirely for
	// unsupported operations.
	CanAccelerate(op AcceleratedOp) bool

	// ApplyColorTransform executes the fused pointwise transform over the
	// source buffer, writing results to the target. Source and target
	// must have identical dimensions.
	// Returns ErrFallbackToCPU if the transform cannot be accelerated.
	ApplyColorTransform(target RenderTarget, src []float32, t ColorTransform) error
}

// DeviceProviderAware is an optional interface for accelerators that can
// share GPU resources with an external provider (e.g., a window surface).
// When SetDeviceProvider is called, the accelerator reuses the provided GPU
// device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers a GPU accelerator for optional GPU
// rendering.
//
// Only one accelerator can be registered. Subsequent calls replace the
// previous one. The accelerator's Init() method is called during
// registration. If Init() fails, the accelerator is not registered and the
// error is returned.
//
// Typical usage via blank import in GPU backend packages:
//
//	func init() {
//	    pixaro.RegisterAccelerator(NewWGPUAccelerator())
//	}
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("pixaro: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// GetAccelerator returns the currently registered accelerator, or nil if
// none.
func GetAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any methods
// that return wgpu/hal types.
func SetAcceleratorDeviceProvider(provider any) error {
	a := GetAccelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
