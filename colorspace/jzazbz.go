package colorspace

import "math"

// JzAzBz (Safdar et al. 2017): a perceptually uniform space designed for
// HDR luminance ranges, with better hue linearity than CIELAB well above
// diffuse white. Round trips through XYZ with the PQ transfer function.

const (
	jzB  = 1.15
	jzG  = 0.66
	jzC1 = 3424.0 / 4096
	jzC2 = 2413.0 / 128
	jzC3 = 2392.0 / 128
	jzN  = 2610.0 / 16384
	jzP  = 1.7 * 2523.0 / 32
	jzD  = -0.56
	jzD0 = 1.6295499532821566e-11
)

var (
	jzXYZToLMS = Mat3{
		0.41478972, 0.579999, 0.0146480,
		-0.2015100, 1.120649, 0.0531008,
		-0.0166008, 0.264800, 0.6684799,
	}
	jzLMSToIab = Mat3{
		0.5, 0.5, 0,
		3.524000, -4.066708, 0.542708,
		0.199076, 1.096799, -1.295875,
	}
	jzLMSToXYZ = jzXYZToLMS.Inverse()
	jzIabToLMS = jzLMSToIab.Inverse()
)

// PQ-style transfer function used by JzAzBz.
func jzPQ(v float64) float64 {
	if v < 0 {
		v = 0
	}
	vn := math.Pow(v/10000, jzN)
	return math.Pow((jzC1+jzC2*vn)/(1+jzC3*vn), jzP)
}

func jzPQInv(v float64) float64 {
	if v <= 0 {
		return 0
	}
	vp := math.Pow(v, 1/jzP)
	num := jzC1 - vp
	den := jzC3*vp - jzC2
	if den == 0 {
		return 0
	}
	return 10000 * math.Pow(num/den, 1/jzN)
}

// XYZToJzAzBz converts CIE XYZ (D65, Y=1 at diffuse white, scaled to
// 100 cd/m2 internally) to JzAzBz.
func XYZToJzAzBz(x, y, z float64) (jz, az, bz float64) {
	// Absolute luminance assumption: Y=1 maps to 100 cd/m2.
	x, y, z = x*100, y*100, z*100

	xp := jzB*x - (jzB-1)*z
	yp := jzG*y - (jzG-1)*x

	l, m, s := jzXYZToLMS.Apply(xp, yp, z)
	lp, mp, sp := jzPQ(l), jzPQ(m), jzPQ(s)

	iz, a, b := jzLMSToIab.Apply(lp, mp, sp)
	jz = (1+jzD)*iz/(1+jzD*iz) - jzD0
	return jz, a, b
}

// JzAzBzToXYZ converts JzAzBz back to CIE XYZ (D65, Y=1 diffuse white).
func JzAzBzToXYZ(jz, az, bz float64) (x, y, z float64) {
	jz += jzD0
	iz := jz / (1 + jzD - jzD*jz)

	lp, mp, sp := jzIabToLMS.Apply(iz, az, bz)
	l, m, s := jzPQInv(lp), jzPQInv(mp), jzPQInv(sp)

	xp, yp, zp := jzLMSToXYZ.Apply(l, m, s)
	x = (xp + (jzB-1)*zp) / jzB
	y = (yp + (jzG-1)*x) / jzG
	return x / 100, y / 100, zp / 100
}
