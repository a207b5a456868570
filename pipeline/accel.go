package pipeline

import (
	"errors"
	"log/slog"
	"math"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/colorspace"
)

var identity9 = [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}

func exp2(v float64) float64 { return math.Exp2(v) }

func colorBalanceMatrix(temperature, tint float64) [9]float32 {
	return colorspace.WhiteBalanceMatrix(temperature, tint).Float32()
}

// pointwiseOnly reports whether the state collapses to the fused pointwise
// color transform: exposure, contrast, white balance and the sigmoid
// curve, with every spatial or per-hue stage neutral.
func pointwiseOnly(s *pixaro.AdjustmentState) bool {
	if s.Geometry.Crop != nil || s.Geometry.Straighten != 0 {
		return false
	}
	if s.Basic.Highlights != 0 || s.Basic.Shadows != 0 ||
		s.Basic.Whites != 0 || s.Basic.Blacks != 0 {
		return false
	}
	if s.Filmic.Enabled || s.ColorBalance.Enabled || s.LensBlur.Enabled {
		return false
	}
	if s.Color != (pixaro.ColorAdjust{}) || s.HSL != (pixaro.HSLMixer{}) {
		return false
	}
	if s.Detail.Guided.Enabled || s.Detail.Laplacian.Enabled || s.Detail.Sharpen.Amount > 0 {
		return false
	}
	if s.Effects.VignetteAmount != 0 || s.Effects.GrainAmount > 0 {
		return false
	}
	return true
}

// foldTransform flattens the state into the accelerator's transform
// description.
func foldTransform(s *pixaro.AdjustmentState) pixaro.ColorTransform {
	t := pixaro.ColorTransform{
		ExposureGain: float32(exp2(s.Basic.Exposure)),
		Contrast:     float32(1 + s.Basic.Contrast/100),
		WhiteBalance: identity9,
		EncodeSRGB:   true,
	}
	if s.WhiteBalance.Enabled {
		t.WhiteBalance = colorBalanceMatrix(s.WhiteBalance.Temperature, s.WhiteBalance.Tint)
	}
	if s.Sigmoid.Enabled {
		t.SigmoidContrast = float32(s.Sigmoid.Contrast)
		t.SigmoidSkew = float32(s.Sigmoid.Skew)
		t.SigmoidGrey = float32(s.Sigmoid.MiddleGrey)
	}
	return t
}

// tryAccelerated renders the frame on the registered GPU accelerator when
// the state is expressible as a pointwise transform. Returns (nil, false)
// when the CPU path should run instead; any accelerator failure falls
// back silently apart from a log line.
func (p *Pipeline) tryAccelerated(src *pixaro.Image, s *pixaro.AdjustmentState) (*pixaro.Image, bool) {
	if !p.useAccel || !pointwiseOnly(s) {
		return nil, false
	}
	accel := pixaro.GetAccelerator()
	if accel == nil || !accel.CanAccelerate(pixaro.AccelColorTransform) {
		return nil, false
	}

	out := pixaro.NewImage(src.Width(), src.Height(), pixaro.ColorSpaceSRGB)
	target := pixaro.RenderTarget{
		Data:   out.Data(),
		Width:  out.Width(),
		Height: out.Height(),
	}
	err := accel.ApplyColorTransform(target, src.Data(), foldTransform(s))
	if err != nil {
		if errors.Is(err, pixaro.ErrFallbackToCPU) {
			pixaro.Logger().Debug("accelerator declined color transform",
				slog.String("accelerator", accel.Name()))
		} else {
			pixaro.Logger().Warn("accelerator failed, using CPU path",
				slog.String("accelerator", accel.Name()),
				slog.String("error", err.Error()))
		}
		return nil, false
	}
	return out, true
}
