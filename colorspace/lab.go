package colorspace

import "math"

const (
	labEpsilon = 216.0 / 24389.0 // (6/29)^3
	labKappa   = 24389.0 / 27.0  // (29/3)^3
)

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return (labKappa*t + 16) / 116
}

func labFInv(t float64) float64 {
	t3 := t * t * t
	if t3 > labEpsilon {
		return t3
	}
	return (116*t - 16) / labKappa
}

// XYZToLab converts CIE XYZ to CIELAB relative to the D65 white point.
// L is in [0,100] for in-gamut input.
func XYZToLab(x, y, z float64) (l, a, b float64) {
	fx := labF(x / WhiteD65[0])
	fy := labF(y / WhiteD65[1])
	fz := labF(z / WhiteD65[2])
	return 116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)
}

// LabToXYZ converts CIELAB relative to D65 back to CIE XYZ.
func LabToXYZ(l, a, b float64) (x, y, z float64) {
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200
	return labFInv(fx) * WhiteD65[0], labFInv(fy) * WhiteD65[1], labFInv(fz) * WhiteD65[2]
}

// LabToLCH converts CIELAB to its cylindrical form. Hue is in radians,
// in (-pi, pi].
func LabToLCH(l, a, b float64) (lum, c, h float64) {
	return l, math.Hypot(a, b), math.Atan2(b, a)
}

// LCHToLab converts cylindrical LCH back to CIELAB.
func LCHToLab(l, c, h float64) (lum, a, b float64) {
	return l, c * math.Cos(h), c * math.Sin(h)
}
