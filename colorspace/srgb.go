package colorspace

import "math"

// SRGBToLinear converts a gamma-encoded sRGB component to linear light
// using the piecewise IEC 61966-2-1 transfer function.
func SRGBToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// LinearToSRGB converts a linear-light component to gamma-encoded sRGB.
func LinearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// SRGBToLinear32 is the float32 form used in pixel loops.
func SRGBToLinear32(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow(float64(v+0.055)/1.055, 2.4))
}

// LinearToSRGB32 is the float32 form used in pixel loops.
func LinearToSRGB32(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}

// Rec. 709 luma weights for linear RGB.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// Luminance returns the relative luminance of a linear RGB triple using
// Rec. 709 weights.
func Luminance(r, g, b float64) float64 {
	return LumaR*r + LumaG*g + LumaB*b
}

// Luminance32 is the float32 form used in pixel loops.
func Luminance32(r, g, b float32) float32 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}
