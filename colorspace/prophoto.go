package colorspace

import "math"

// ProPhoto RGB (ROMM) primaries to CIE XYZ under its native D50 white.
var ProPhotoToXYZ = Mat3{
	0.7976749, 0.1351917, 0.0313534,
	0.2880402, 0.7118741, 0.0000857,
	0.0000000, 0.0000000, 0.8252100,
}

// CIE XYZ (D50) to ProPhoto RGB.
var XYZToProPhoto = Mat3{
	1.3459433, -0.2556075, -0.0511118,
	-0.5445989, 1.5081673, 0.0205351,
	0.0000000, 0.0000000, 1.2118128,
}

const prophotoEt = 1.0 / 512.0

// ProPhotoEncode applies the ROMM transfer function to a linear component.
func ProPhotoEncode(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v < prophotoEt {
		return v * 16
	}
	return math.Pow(v, 1.0/1.8)
}

// ProPhotoDecode inverts the ROMM transfer function.
func ProPhotoDecode(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v < prophotoEt*16 {
		return v / 16
	}
	return math.Pow(v, 1.8)
}

// LinearToProPhoto converts linear sRGB (D65) to linear ProPhoto RGB,
// including the D65 to D50 Bradford adaptation.
func LinearToProPhoto(r, g, b float64) (float64, float64, float64) {
	x, y, z := LinearToXYZ(r, g, b)
	x, y, z = d65ToD50.Apply(x, y, z)
	return XYZToProPhoto.Apply(x, y, z)
}

// ProPhotoToLinear converts linear ProPhoto RGB back to linear sRGB.
func ProPhotoToLinear(r, g, b float64) (float64, float64, float64) {
	x, y, z := ProPhotoToXYZ.Apply(r, g, b)
	x, y, z = d50ToD65.Apply(x, y, z)
	return XYZToLinear(x, y, z)
}

var (
	d65ToD50 = BradfordAdaptation(WhiteD65, WhiteD50)
	d50ToD65 = BradfordAdaptation(WhiteD50, WhiteD65)
)
