package colorspace

import (
	"math"
	"testing"
)

func near(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s: got %v, want %v (tol %v)", msg, got, want, tol)
	}
}

func TestSRGBTransferRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 0.0031308, 0.04045, 0.18, 0.5, 0.999, 1} {
		got := LinearToSRGB(SRGBToLinear(v))
		near(t, got, v, 1e-9, "sRGB round trip")
	}
}

func TestSRGBTransferEndpoints(t *testing.T) {
	near(t, SRGBToLinear(0), 0, 0, "black")
	near(t, SRGBToLinear(1), 1, 1e-12, "white")
	// Mid grey: 0.5 encoded is about 21.4% linear.
	near(t, SRGBToLinear(0.5), 0.2140, 1e-3, "mid grey")
}

func TestLuminanceRec709(t *testing.T) {
	near(t, Luminance(1, 0, 0), 0.2126, 1e-9, "red")
	near(t, Luminance(0, 1, 0), 0.7152, 1e-9, "green")
	near(t, Luminance(0, 0, 1), 0.0722, 1e-9, "blue")
	near(t, Luminance(1, 1, 1), 1, 1e-9, "white")
}

func TestXYZRoundTrip(t *testing.T) {
	colors := [][3]float64{
		{0, 0, 0}, {1, 1, 1}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{0.18, 0.18, 0.18}, {0.7, 0.2, 0.05},
	}
	for _, c := range colors {
		x, y, z := LinearToXYZ(c[0], c[1], c[2])
		r, g, b := XYZToLinear(x, y, z)
		near(t, r, c[0], 1e-5, "XYZ round trip r")
		near(t, g, c[1], 1e-5, "XYZ round trip g")
		near(t, b, c[2], 1e-5, "XYZ round trip b")
	}
}

func TestXYZWhitePoint(t *testing.T) {
	x, y, z := LinearToXYZ(1, 1, 1)
	near(t, x, WhiteD65[0], 1e-4, "D65 X")
	near(t, y, 1, 1e-4, "D65 Y")
	near(t, z, WhiteD65[2], 1e-4, "D65 Z")
}

func TestLabKnownValues(t *testing.T) {
	// D65 white maps to L=100, a=b=0.
	l, a, b := XYZToLab(WhiteD65[0], WhiteD65[1], WhiteD65[2])
	near(t, l, 100, 1e-6, "white L")
	near(t, a, 0, 1e-6, "white a")
	near(t, b, 0, 1e-6, "white b")

	// 18% grey sits near L=49.5.
	l, _, _ = XYZToLab(0.18*WhiteD65[0], 0.18, 0.18*WhiteD65[2])
	near(t, l, 49.496, 1e-2, "18 percent grey L")
}

func TestLabRoundTrip(t *testing.T) {
	colors := [][3]float64{
		{0.95, 1, 1.08}, {0.18, 0.18, 0.18}, {0.4, 0.2, 0.05}, {0.001, 0.002, 0.001},
	}
	for _, c := range colors {
		l, a, b := XYZToLab(c[0], c[1], c[2])
		x, y, z := LabToXYZ(l, a, b)
		near(t, x, c[0], 1e-5, "Lab round trip x")
		near(t, y, c[1], 1e-5, "Lab round trip y")
		near(t, z, c[2], 1e-5, "Lab round trip z")
	}
}

func TestLCHRoundTrip(t *testing.T) {
	l, a, b := 52.0, 23.5, -11.2
	lum, c, h := LabToLCH(l, a, b)
	l2, a2, b2 := LCHToLab(lum, c, h)
	near(t, l2, l, 1e-9, "LCH L")
	near(t, a2, a, 1e-9, "LCH a")
	near(t, b2, b, 1e-9, "LCH b")
}

func TestProPhotoRoundTrip(t *testing.T) {
	colors := [][3]float64{
		{0.18, 0.18, 0.18}, {0.9, 0.1, 0.1}, {0.05, 0.4, 0.2},
	}
	for _, c := range colors {
		pr, pg, pb := LinearToProPhoto(c[0], c[1], c[2])
		r, g, b := ProPhotoToLinear(pr, pg, pb)
		near(t, r, c[0], 1e-4, "ProPhoto round trip r")
		near(t, g, c[1], 1e-4, "ProPhoto round trip g")
		near(t, b, c[2], 1e-4, "ProPhoto round trip b")
	}
}

func TestProPhotoTransferRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 1.0 / 512, 0.1, 0.5, 1} {
		near(t, ProPhotoDecode(ProPhotoEncode(v)), v, 1e-9, "ROMM transfer")
	}
}

func TestUCSRoundTrip(t *testing.T) {
	colors := [][3]float64{
		{0.18, 0.18, 0.18}, {0.6, 0.3, 0.1}, {0.05, 0.25, 0.4}, {0.9, 0.85, 0.8},
	}
	for _, c := range colors {
		j, ch, h := RGBToUCS(c[0], c[1], c[2])
		r, g, b := UCSToRGB(j, ch, h)
		near(t, r, c[0], 1e-4, "UCS round trip r")
		near(t, g, c[1], 1e-4, "UCS round trip g")
		near(t, b, c[2], 1e-4, "UCS round trip b")
	}
}

func TestUCSNeutralHasNoChroma(t *testing.T) {
	_, c, _ := RGBToUCS(0.5, 0.5, 0.5)
	near(t, c, 0, 1e-4, "grey chroma")
}

func TestJzAzBzRoundTrip(t *testing.T) {
	colors := [][3]float64{
		{0.2, 0.21, 0.19}, {0.95, 1, 1.08}, {0.5, 0.1, 0.05},
	}
	for _, c := range colors {
		jz, az, bz := XYZToJzAzBz(c[0], c[1], c[2])
		x, y, z := JzAzBzToXYZ(jz, az, bz)
		near(t, x, c[0], 1e-4, "JzAzBz round trip x")
		near(t, y, c[1], 1e-4, "JzAzBz round trip y")
		near(t, z, c[2], 1e-4, "JzAzBz round trip z")
	}
}

func TestJzAzBzMonotoneInLuminance(t *testing.T) {
	prev := -1.0
	for _, y := range []float64{0.01, 0.05, 0.18, 0.5, 1, 2, 5} {
		jz, _, _ := XYZToJzAzBz(y*WhiteD65[0], y, y*WhiteD65[2])
		if jz <= prev {
			t.Fatalf("Jz not monotone: Jz(%v) = %v <= %v", y, jz, prev)
		}
		prev = jz
	}
}

func TestBradfordIdentity(t *testing.T) {
	m := BradfordAdaptation(WhiteD65, WhiteD65)
	for i, v := range m {
		near(t, v, Identity3[i], 1e-9, "Bradford identity")
	}
}

func TestBradfordPreservesWhite(t *testing.T) {
	m := BradfordAdaptation(WhiteD50, WhiteD65)
	x, y, z := m.Apply(WhiteD50[0], WhiteD50[1], WhiteD50[2])
	near(t, x, WhiteD65[0], 1e-6, "adapted white X")
	near(t, y, WhiteD65[1], 1e-6, "adapted white Y")
	near(t, z, WhiteD65[2], 1e-6, "adapted white Z")
}

func TestKelvinWhitePointFinite(t *testing.T) {
	for k := 1000.0; k <= 40000; k += 250 {
		w := KelvinWhitePoint(k)
		for i, v := range w {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("KelvinWhitePoint(%v)[%d] = %v", k, i, v)
			}
		}
		if w[1] != 1 {
			t.Fatalf("KelvinWhitePoint(%v) Y = %v, want 1", k, w[1])
		}
	}
}

func TestKelvinToRGBRange(t *testing.T) {
	for k := 1000.0; k <= 40000; k += 100 {
		r, g, b := KelvinToRGB(k)
		for _, v := range []float64{r, g, b} {
			if math.IsNaN(v) || v < 0 || v > 1 {
				t.Fatalf("KelvinToRGB(%v) out of range: %v %v %v", k, r, g, b)
			}
		}
	}
}

func TestKelvinToRGBWarmVsCool(t *testing.T) {
	// Candlelight is red-heavy, overcast blue sky is blue-heavy.
	r, _, b := KelvinToRGB(2000)
	if r <= b {
		t.Errorf("2000K should be warm: r=%v b=%v", r, b)
	}
	r, _, b = KelvinToRGB(20000)
	if b < r {
		t.Errorf("20000K should be cool: r=%v b=%v", r, b)
	}
}

func TestKelvinPresetsOrdered(t *testing.T) {
	presets := []float64{
		KelvinCandle, KelvinTungsten, KelvinFluorescent,
		KelvinDaylight, KelvinFlash, KelvinCloudy, KelvinShade,
	}
	for i, k := range presets {
		if k < 1000 || k > 40000 {
			t.Errorf("preset %d = %vK outside the valid range", i, k)
		}
		if i > 0 && k <= presets[i-1] {
			t.Errorf("preset %d = %vK not warmer-to-cooler ordered", i, k)
		}
	}
}

func TestKelvinD65IsNearNeutral(t *testing.T) {
	w := KelvinWhitePoint(6504)
	near(t, w[0], WhiteD65[0], 0.01, "6504K X")
	near(t, w[2], WhiteD65[2], 0.03, "6504K Z")
}

func TestKelvinClampsExtremes(t *testing.T) {
	lo := KelvinWhitePoint(-100)
	hi := KelvinWhitePoint(1e9)
	if lo != KelvinWhitePoint(1000) {
		t.Error("low temperatures not clamped")
	}
	if hi != KelvinWhitePoint(40000) {
		t.Error("high temperatures not clamped")
	}
	nan := KelvinWhitePoint(math.NaN())
	if nan != KelvinWhitePoint(6500) {
		t.Error("NaN temperature not defaulted")
	}
}

func TestWhiteBalanceNeutralAtD65(t *testing.T) {
	m := WhiteBalanceMatrix(6504, 0)
	r, g, b := m.Apply(0.5, 0.5, 0.5)
	near(t, r, 0.5, 0.01, "neutral WB r")
	near(t, g, 0.5, 0.01, "neutral WB g")
	near(t, b, 0.5, 0.01, "neutral WB b")
}

func TestWhiteBalanceWarmsLowKelvin(t *testing.T) {
	// Adapting a tungsten shot toward D65 lifts blue relative to red.
	m := WhiteBalanceMatrix(3200, 0)
	r, _, b := m.Apply(0.5, 0.5, 0.5)
	if b <= r {
		t.Errorf("3200K correction should raise blue above red: r=%v b=%v", r, b)
	}
}

func TestHSLRoundTrip(t *testing.T) {
	colors := [][3]float64{
		{0, 0, 0}, {1, 1, 1}, {0.5, 0.5, 0.5},
		{1, 0, 0}, {0.2, 0.6, 0.4}, {0.9, 0.1, 0.7},
	}
	for _, c := range colors {
		h, s, l := RGBToHSL(c[0], c[1], c[2])
		r, g, b := HSLToRGB(h, s, l)
		near(t, r, c[0], 1e-9, "HSL round trip r")
		near(t, g, c[1], 1e-9, "HSL round trip g")
		near(t, b, c[2], 1e-9, "HSL round trip b")
	}
}

func TestHSLPrimaries(t *testing.T) {
	h, s, l := RGBToHSL(1, 0, 0)
	near(t, h, 0, 1e-9, "red hue")
	near(t, s, 1, 1e-9, "red sat")
	near(t, l, 0.5, 1e-9, "red lightness")

	h, _, _ = RGBToHSL(0, 1, 0)
	near(t, h, 120, 1e-9, "green hue")
	h, _, _ = RGBToHSL(0, 0, 1)
	near(t, h, 240, 1e-9, "blue hue")
}

func TestMat3Inverse(t *testing.T) {
	id := RGBToXYZ.Mul(RGBToXYZ.Inverse())
	for i, v := range id {
		near(t, v, Identity3[i], 1e-6, "M * M^-1")
	}
}
