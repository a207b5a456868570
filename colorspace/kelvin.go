package colorspace

import "math"

// Illuminant presets for the white balance temperature control, in Kelvin.
const (
	KelvinCandle      = 1850.0
	KelvinTungsten    = 3200.0
	KelvinFluorescent = 4000.0
	KelvinDaylight    = 5500.0
	KelvinFlash       = 6000.0
	KelvinCloudy      = 6500.0
	KelvinShade       = 7500.0
)

// KelvinWhitePoint returns the XYZ white point (Y=1) of a blackbody-like
// illuminant at the given correlated color temperature, using the CIE
// daylight-locus polynomial approximation. Temperatures are clamped to
// [1000, 40000] so extreme slider values stay finite.
func KelvinWhitePoint(kelvin float64) [3]float64 {
	if math.IsNaN(kelvin) {
		kelvin = 6500
	}
	if kelvin < 1000 {
		kelvin = 1000
	}
	if kelvin > 40000 {
		kelvin = 40000
	}

	// Kim et al. cubic spline fit of the Planckian locus.
	t := 1000 / kelvin
	t2 := t * t
	t3 := t2 * t

	var cx float64
	if kelvin < 4000 {
		cx = -0.2661239*t3 - 0.2343589*t2 + 0.8776956*t + 0.179910
	} else {
		cx = -3.0258469*t3 + 2.1070379*t2 + 0.2226347*t + 0.240390
	}

	x2 := cx * cx
	x3 := x2 * cx
	var cy float64
	switch {
	case kelvin < 2222:
		cy = -1.1063814*x3 - 1.34811020*x2 + 2.18555832*cx - 0.20219683
	case kelvin < 4000:
		cy = -0.9549476*x3 - 1.37418593*x2 + 2.09137015*cx - 0.16748867
	default:
		cy = 3.0817580*x3 - 5.87338670*x2 + 3.75112997*cx - 0.37001483
	}

	return [3]float64{cx / cy, 1, (1 - cx - cy) / cy}
}

// KelvinToRGB returns per-channel multipliers in [0,1] for a light source
// at the given temperature, using the piecewise log/power blackbody
// approximation. Channel values are normalized from the usual 8-bit fit.
func KelvinToRGB(kelvin float64) (r, g, b float64) {
	if math.IsNaN(kelvin) {
		kelvin = 6500
	}
	if kelvin < 1000 {
		kelvin = 1000
	}
	if kelvin > 40000 {
		kelvin = 40000
	}
	t := kelvin / 100

	if t <= 66 {
		r = 255
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
	}

	if t <= 66 {
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}

	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	}

	return clamp01(r / 255), clamp01(g / 255), clamp01(b / 255)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
