package pipeline

import (
	"math"

	"github.com/pixaro/pixaro"
)

// Middle grey reference for the tone-compression stages, scene-linear.
const middleGrey = 0.1845

// filmicCurve maps a scene-linear value to display-linear [0,1] using a
// log-space dynamic range defined in EV around middle grey: BlackPoint EV
// maps to 0, WhitePoint EV maps to 1, and the latitude is the share of the
// range kept straight between a polynomial toe and shoulder.
type filmicCurve struct {
	blackEV float64
	rangeEV float64
	latLow  float64
	latHigh float64
	toePow  float64
	shldPow float64
}

func newFilmicCurve(f *pixaro.Filmic) filmicCurve {
	dr := f.WhitePoint - f.BlackPoint
	lat := f.Latitude / 100
	center := 0.5 + f.Balance/100*0.5*(1-lat)
	return filmicCurve{
		blackEV: f.BlackPoint,
		rangeEV: dr,
		latLow:  clampF64(center-lat/2, 0, 1),
		latHigh: clampF64(center+lat/2, 0, 1),
		toePow:  contrastPower(f.ShadowContrast),
		shldPow: contrastPower(f.HighlightContrast),
	}
}

func contrastPower(s pixaro.ContrastShape) float64 {
	switch s {
	case pixaro.ContrastHard:
		return 3
	case pixaro.ContrastSafe:
		return 1.5
	default:
		return 2
	}
}

func (c filmicCurve) eval(v float64) float64 {
	if v <= 0 {
		return 0
	}
	t := (math.Log2(v/middleGrey) - c.blackEV) / c.rangeEV
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	switch {
	case t < c.latLow && c.latLow > 0:
		// Toe: power ease-in joining the linear section with matched value.
		u := t / c.latLow
		t = c.latLow * math.Pow(u, c.toePow)
	case t > c.latHigh && c.latHigh < 1:
		// Shoulder: mirrored power ease-out.
		u := (1 - t) / (1 - c.latHigh)
		t = 1 - (1-c.latHigh)*math.Pow(u, c.shldPow)
	}

	// The log mapping is display-referred; return to linear light.
	return math.Pow(t, 2.2)
}

// applyFilmic compresses the scene dynamic range with the filmic curve.
// The curve runs on the max-RGB norm and channels are scaled by the common
// ratio, preserving hue through the compression.
func (p *Pipeline) applyFilmic(buf *pixaro.Image, f *pixaro.Filmic) {
	curve := newFilmicCurve(f)

	data := buf.Data()
	w := buf.Width()
	p.pool.ForRows(buf.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			r, g, b := data[i], data[i+1], data[i+2]
			norm := r
			if g > norm {
				norm = g
			}
			if b > norm {
				norm = b
			}
			if norm <= 0 {
				data[i], data[i+1], data[i+2] = 0, 0, 0
				continue
			}
			scale := float32(curve.eval(float64(norm))) / norm
			data[i] = r * scale
			data[i+1] = g * scale
			data[i+2] = b * scale
		}
	})
}

// sigmoidCurve is the S-curve f(x) = x^c / (x^c + (1-x)^c) applied to a
// Reinhard-normalized value anchored so MiddleGrey maps to x = 0.5. Skew
// bends the normalization toward shadows (negative) or highlights.
type sigmoidCurve struct {
	contrast float64
	skewPow  float64
	knee     float64
}

func newSigmoidCurve(s *pixaro.Sigmoid) sigmoidCurve {
	return sigmoidCurve{
		contrast: s.Contrast,
		skewPow:  math.Exp2(s.Skew),
		knee:     s.MiddleGrey,
	}
}

func (c sigmoidCurve) eval(v float64) float64 {
	if v <= 0 {
		return 0
	}
	x := v / (v + c.knee)
	x = math.Pow(x, c.skewPow)
	if x >= 1 {
		return 1
	}
	xc := math.Pow(x, c.contrast)
	ic := math.Pow(1-x, c.contrast)
	return xc / (xc + ic)
}

// applySigmoid applies the sigmoid tone curve per channel. When Filmic is
// also enabled it has already run; this stage always runs second.
func (p *Pipeline) applySigmoid(buf *pixaro.Image, s *pixaro.Sigmoid) {
	curve := newSigmoidCurve(s)

	data := buf.Data()
	w := buf.Width()
	p.pool.ForRows(buf.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			data[i] = float32(curve.eval(float64(data[i])))
			data[i+1] = float32(curve.eval(float64(data[i+1])))
			data[i+2] = float32(curve.eval(float64(data[i+2])))
		}
	})
}

func clampF64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
