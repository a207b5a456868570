//go:build !nogpu

package gpu

import (
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/pixaro/pixaro"
)

func TestParamsLayoutMatchesShader(t *testing.T) {
	// The WGSL Params struct is 80 bytes: 16 (dims + two scalars),
	// 48 (three vec4 rows), 16 (sigmoid scalars + encode flag).
	if got := unsafe.Sizeof(colorParams{}); got != 80 {
		t.Fatalf("colorParams size = %d, want 80", got)
	}
	var p colorParams
	if off := unsafe.Offsetof(p.WB0); off != 16 {
		t.Errorf("WB0 offset = %d, want 16", off)
	}
	if off := unsafe.Offsetof(p.SigmoidContrast); off != 64 {
		t.Errorf("SigmoidContrast offset = %d, want 64", off)
	}
}

func TestMakeParams(t *testing.T) {
	tr := pixaro.ColorTransform{
		ExposureGain: 2,
		WhiteBalance: [9]float32{1, 2, 3, 4, 5, 6, 7, 8, 9},
		Contrast:     1.2,
		EncodeSRGB:   true,
	}
	p := makeParams(640, 480, tr)
	if p.Width != 640 || p.Height != 480 {
		t.Errorf("dims = %dx%d, want 640x480", p.Width, p.Height)
	}
	if p.WB1 != [4]float32{4, 5, 6, 0} {
		t.Errorf("WB1 = %v, want second matrix row", p.WB1)
	}
	if p.EncodeSRGB != 1 {
		t.Errorf("EncodeSRGB = %d, want 1", p.EncodeSRGB)
	}
	// Sigmoid disabled: all sigmoid params stay zero so the shader
	// skips the curve.
	if p.SigmoidContrast != 0 || p.SigmoidSkewPow != 0 || p.SigmoidGrey != 0 {
		t.Errorf("sigmoid params = %v/%v/%v, want zero when disabled",
			p.SigmoidContrast, p.SigmoidSkewPow, p.SigmoidGrey)
	}

	tr.SigmoidContrast = 1.5
	tr.SigmoidSkew = 1
	tr.SigmoidGrey = 0.1845
	p = makeParams(16, 16, tr)
	if p.SigmoidSkewPow != 2 {
		t.Errorf("SigmoidSkewPow = %v, want 2 for skew 1", p.SigmoidSkewPow)
	}
}

func TestFloatPackRoundTrip(t *testing.T) {
	src := []float32{0, 0.5, 1, -2.25, float32(math.Pi), 1e-9}
	packed := packFloats(src)
	if len(packed) != len(src)*4 {
		t.Fatalf("packed len = %d, want %d", len(packed), len(src)*4)
	}
	dst := make([]float32, len(src))
	unpackFloats(packed, dst)
	for i := range src {
		if dst[i] != src[i] {
			t.Errorf("round trip [%d] = %v, want %v", i, dst[i], src[i])
		}
	}
}

func TestCanAccelerate(t *testing.T) {
	a := &ColorAccelerator{}
	if !a.CanAccelerate(pixaro.AccelColorTransform) {
		t.Error("color transform should be supported")
	}
	if a.CanAccelerate(pixaro.AccelSpatial) {
		t.Error("spatial ops are CPU only")
	}
	if a.CanAccelerate(pixaro.AccelHistogram) {
		t.Error("histogram is CPU only")
	}
}

func TestApplyFallsBackWithoutDevice(t *testing.T) {
	a := &ColorAccelerator{}
	target := pixaro.RenderTarget{Data: make([]float32, 16), Width: 2, Height: 2}
	err := a.ApplyColorTransform(target, make([]float32, 16), pixaro.ColorTransform{})
	if !errors.Is(err, pixaro.ErrFallbackToCPU) {
		t.Fatalf("err = %v, want ErrFallbackToCPU when GPU is not ready", err)
	}
}

func TestShaderSourceEmbedded(t *testing.T) {
	if colorTransformWGSL == "" {
		t.Fatal("color transform shader source is empty")
	}
}
