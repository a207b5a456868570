package colorspace

// Bradford cone response matrix and its inverse (Lam's sharpened LMS).
var (
	bradfordM = Mat3{
		0.8951000, 0.2664000, -0.1614000,
		-0.7502000, 1.7135000, 0.0367000,
		0.0389000, -0.0685000, 1.0296000,
	}
	bradfordMInv = Mat3{
		0.9869929, -0.1470543, 0.1599627,
		0.4323053, 0.5183603, 0.0492912,
		-0.0085287, 0.0400428, 0.9684867,
	}
)

// BradfordAdaptation returns the 3x3 XYZ-to-XYZ matrix that adapts colors
// from the source white point to the destination white point using the
// Bradford cone transform.
func BradfordAdaptation(srcWhite, dstWhite [3]float64) Mat3 {
	sl, sm, ss := bradfordM.Apply(srcWhite[0], srcWhite[1], srcWhite[2])
	dl, dm, ds := bradfordM.Apply(dstWhite[0], dstWhite[1], dstWhite[2])

	scale := Mat3{
		dl / sl, 0, 0,
		0, dm / sm, 0,
		0, 0, ds / ss,
	}
	return bradfordMInv.Mul(scale).Mul(bradfordM)
}

// WhiteBalanceMatrix builds the linear-RGB matrix that re-renders a scene
// shot under the given correlated color temperature and tint as if it were
// shot under D65. Tint is in [-150,150]: negative shifts toward green,
// positive toward magenta.
func WhiteBalanceMatrix(temperature, tint float64) Mat3 {
	src := KelvinWhitePoint(temperature)

	// Tint slides the white point along the y axis of the chromaticity
	// diagram, scaled so the full slider range stays plausible.
	x, y, z := src[0], src[1], src[2]
	sum := x + y + z
	cx := x / sum
	cy := y/sum + tint*-0.0001
	if cy < 0.01 {
		cy = 0.01
	}
	src = [3]float64{cx / cy, 1, (1 - cx - cy) / cy}

	adapt := BradfordAdaptation(src, WhiteD65)
	return XYZToRGB.Mul(adapt).Mul(RGBToXYZ)
}
