package pipeline

import "github.com/pixaro/pixaro"

// encode converts the linear working buffer to display sRGB, applying the
// configured tone operator to values above 1.0 first so earlier stages may
// produce scene-referred highlights without hard clipping.
func (p *Pipeline) encode(buf *pixaro.Image) *pixaro.Image {
	out := pixaro.NewImage(buf.Width(), buf.Height(), pixaro.ColorSpaceSRGB)
	src := buf.Data()
	dst := out.Data()
	w := buf.Width()

	p.pool.ForRows(buf.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			r, g, b := src[i], src[i+1], src[i+2]
			switch p.tone {
			case ToneReinhard:
				r, g, b = reinhard(r), reinhard(g), reinhard(b)
			case ToneACES:
				r, g, b = acesTonemap(r), acesTonemap(g), acesTonemap(b)
			}
			dst[i] = linearToSRGBLUT(clamp01f(r))
			dst[i+1] = linearToSRGBLUT(clamp01f(g))
			dst[i+2] = linearToSRGBLUT(clamp01f(b))
			dst[i+3] = clamp01f(src[i+3])
		}
	})
	return out
}

// reinhard is the classic x/(1+x) global operator. It only compresses;
// values stay below 1 and small values are nearly unchanged.
func reinhard(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return v / (1 + v)
}

// acesTonemap is the ACES filmic approximation (Narkowicz 2015 fit).
func acesTonemap(v float32) float32 {
	if v <= 0 {
		return 0
	}
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	return clamp01f(v * (a*v + b) / (v*(c*v+d) + e))
}
