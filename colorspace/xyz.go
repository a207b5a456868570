package colorspace

// Standard illuminant white points in XYZ, normalized to Y=1.
var (
	WhiteD65 = [3]float64{0.95047, 1.0, 1.08883}
	WhiteD50 = [3]float64{0.96422, 1.0, 0.82521}
)

// Linear sRGB to CIE XYZ (D65), IEC 61966-2-1.
var RGBToXYZ = Mat3{
	0.4124564, 0.3575761, 0.1804375,
	0.2126729, 0.7151522, 0.0721750,
	0.0193339, 0.1191920, 0.9503041,
}

// CIE XYZ (D65) to linear sRGB.
var XYZToRGB = Mat3{
	3.2404542, -1.5371385, -0.4985314,
	-0.9692660, 1.8760108, 0.0415560,
	0.0556434, -0.2040259, 1.0572252,
}

// LinearToXYZ converts linear sRGB to CIE XYZ under D65.
func LinearToXYZ(r, g, b float64) (x, y, z float64) {
	return RGBToXYZ.Apply(r, g, b)
}

// XYZToLinear converts CIE XYZ under D65 to linear sRGB.
func XYZToLinear(x, y, z float64) (r, g, b float64) {
	return XYZToRGB.Apply(x, y, z)
}
