package quality

import (
	"math"
	"testing"

	"github.com/pixaro/pixaro"
)

func TestFitWithinPreservesAspect(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		maxDim int
	}{
		{"landscape 3:2", 6000, 4000, 2048},
		{"portrait 2:3", 4000, 6000, 2048},
		{"square", 5000, 5000, 2048},
		{"panorama", 12000, 2400, 2048},
		{"odd ratio", 4031, 2687, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nw, nh := FitWithin(tt.w, tt.h, tt.maxDim)
			if nw > tt.maxDim || nh > tt.maxDim {
				t.Fatalf("FitWithin = %dx%d exceeds cap %d", nw, nh, tt.maxDim)
			}
			// Aspect error below one pixel after rounding.
			srcAspect := float64(tt.w) / float64(tt.h)
			impliedH := float64(nw) / srcAspect
			if math.Abs(impliedH-float64(nh)) >= 1 {
				t.Errorf("aspect drift: %dx%d vs %dx%d (%.3f px)",
					tt.w, tt.h, nw, nh, math.Abs(impliedH-float64(nh)))
			}
		})
	}
}

func TestFitWithinNoUpscale(t *testing.T) {
	w, h := FitWithin(800, 600, 2048)
	if w != 800 || h != 600 {
		t.Errorf("small image resized to %dx%d", w, h)
	}
}

func TestWorkingSizeExportBypassesCap(t *testing.T) {
	m := NewManager(2048)
	w, h := m.WorkingSize(6000, 4000, ModeExport)
	if w != 6000 || h != 4000 {
		t.Errorf("export size = %dx%d, want full resolution", w, h)
	}
	w, h = m.WorkingSize(6000, 4000, ModePreview)
	if w != 2048 {
		t.Errorf("preview width = %d, want 2048", w)
	}
	if h == 4000 {
		t.Error("preview height not scaled")
	}
}

func TestScaleIdentityIsPassThrough(t *testing.T) {
	m := NewManager(2048)
	src := pixaro.NewImage(640, 480, pixaro.ColorSpaceSRGB)
	out := m.Scale(src, ModePreview)
	if out != src {
		t.Error("scale factor 1.0 must return the input image unchanged")
	}
}

func TestScaleHalvesLargeDownscales(t *testing.T) {
	m := NewManager(512)
	src := pixaro.NewImage(4096, 2048, pixaro.ColorSpaceSRGB)
	// Checkerboard: naive large-step subsampling would alias badly;
	// box halving averages toward mid grey.
	data := src.Data()
	for y := 0; y < 2048; y++ {
		for x := 0; x < 4096; x++ {
			v := float32((x + y) % 2)
			i := (y*4096 + x) * 4
			data[i], data[i+1], data[i+2], data[i+3] = v, v, v, 1
		}
	}

	out := m.Scale(src, ModePreview)
	if out.Width() != 512 || out.Height() != 256 {
		t.Fatalf("scaled to %dx%d, want 512x256", out.Width(), out.Height())
	}
	r, _, _, _ := out.Pixel(256, 128)
	if r < 0.4 || r > 0.6 {
		t.Errorf("checkerboard averaged to %v, want ~0.5 (aliasing)", r)
	}
}

func TestScaleFractionalStep(t *testing.T) {
	m := NewManager(1000)
	src := pixaro.NewImage(1400, 700, pixaro.ColorSpaceSRGB)
	out := m.Scale(src, ModePreview)
	if out.Width() != 1000 || out.Height() != 500 {
		t.Errorf("scaled to %dx%d, want 1000x500", out.Width(), out.Height())
	}
	if out.Space() != src.Space() {
		t.Error("color space tag lost in resample")
	}
}

func TestScaleKeepsFloatPrecision(t *testing.T) {
	// The fractional step must stay in float: a uniform scene-referred
	// value above 1.0 survives resampling unclipped, and a value that has
	// no exact 8-bit representation comes through without quantization.
	const want = 2.5
	m := NewManager(100)
	src := pixaro.NewImage(150, 150, pixaro.ColorSpaceLinear)
	data := src.Data()
	for i := 0; i < len(data); i += 4 {
		data[i], data[i+1], data[i+2], data[i+3] = want, want, want, 1
	}

	out := m.Scale(src, ModePreview)
	if out.Width() != 100 || out.Height() != 100 {
		t.Fatalf("scaled to %dx%d, want 100x100", out.Width(), out.Height())
	}
	od := out.Data()
	for i := 0; i < len(od); i += 4 {
		if d := math.Abs(float64(od[i]) - want); d > 1e-4 {
			t.Fatalf("sample %d = %v, want %v unclipped", i/4, od[i], want)
		}
	}

	const fine = 0.5003 // between two 8-bit codes
	for i := 0; i < len(data); i += 4 {
		data[i], data[i+1], data[i+2] = fine, fine, fine
	}
	out = m.Scale(src, ModePreview)
	od = out.Data()
	if d := math.Abs(float64(od[0]) - fine); d > 1e-4 {
		t.Errorf("sample 0 = %v, want %v without 8-bit rounding", od[0], fine)
	}
}

func TestNewManagerDefault(t *testing.T) {
	if NewManager(0).MaxDimension() != DefaultMaxDimension {
		t.Error("zero maxDim should use the default")
	}
}
