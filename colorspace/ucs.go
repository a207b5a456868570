package colorspace

import "math"

// The grading stage works in a cylindrical uniform color space (JCH)
// derived from CIE 1976 u'v' chromaticity: J is CIE lightness, C scales
// the u'v' distance from the white point by lightness so chroma stays
// roughly uniform across tones, and H is the u'v' hue angle. The space is
// exactly invertible, which the grading stage relies on.

var ucsWhiteU, ucsWhiteV = uvPrime(WhiteD65[0], WhiteD65[1], WhiteD65[2])

func uvPrime(x, y, z float64) (u, v float64) {
	d := x + 15*y + 3*z
	if d == 0 {
		return 0, 0
	}
	return 4 * x / d, 9 * y / d
}

// RGBToUCS converts linear sRGB to the grading space. J is lightness in
// [0,1] for in-gamut input, C is chroma, H is hue in radians.
func RGBToUCS(r, g, b float64) (j, c, h float64) {
	x, y, z := LinearToXYZ(r, g, b)
	if y < 0 {
		y = 0
	}

	l := labF(y/WhiteD65[1])*116 - 16
	if l < 0 {
		l = 0
	}
	j = l / 100

	u, v := uvPrime(x, y, z)
	du := u - ucsWhiteU
	dv := v - ucsWhiteV
	c = 13 * (l / 100) * math.Hypot(du, dv)
	h = math.Atan2(dv, du)
	return j, c, h
}

// UCSToRGB converts the grading space back to linear sRGB.
func UCSToRGB(j, c, h float64) (r, g, b float64) {
	if j <= 0 {
		return 0, 0, 0
	}
	l := j * 100
	y := labFInv((l+16)/116) * WhiteD65[1]

	sat := c / (13 * j)
	u := ucsWhiteU + sat*math.Cos(h)
	v := ucsWhiteV + sat*math.Sin(h)

	// Invert u'v' back to XYZ at the recovered Y.
	if v <= 0 {
		return XYZToLinear(0, y, 0)
	}
	x := y * 9 * u / (4 * v)
	z := y * (12 - 3*u - 20*v) / (4 * v)
	return XYZToLinear(x, y, z)
}
