package pipeline

import "github.com/pixaro/pixaro/colorspace"

// Transfer-function lookup tables. Decoding happens once per pixel per
// frame, so the pow calls are replaced by a 4096-entry table with linear
// interpolation; the error is below half an 8-bit step.

const lutSize = 4096

var (
	srgbToLinearTab [lutSize + 1]float32
	linearToSRGBTab [lutSize + 1]float32
)

func init() {
	for i := 0; i <= lutSize; i++ {
		v := float64(i) / lutSize
		srgbToLinearTab[i] = float32(colorspace.SRGBToLinear(v))
		linearToSRGBTab[i] = float32(colorspace.LinearToSRGB(v))
	}
}

func srgbToLinearLUT(v float32) float32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return srgbToLinearTab[lutSize] + (v-1)*2.4 // tangent continuation
	}
	f := v * lutSize
	i := int(f)
	t := f - float32(i)
	return srgbToLinearTab[i] + (srgbToLinearTab[i+1]-srgbToLinearTab[i])*t
}

func linearToSRGBLUT(v float32) float32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	f := v * lutSize
	i := int(f)
	t := f - float32(i)
	return linearToSRGBTab[i] + (linearToSRGBTab[i+1]-linearToSRGBTab[i])*t
}

func clamp01f(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
