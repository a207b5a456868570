package pipeline

import (
	"math"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/colorspace"
)

// applyBasic applies exposure, contrast and the four tonal-zone sliders.
// All-zero sliders are a strict no-op.
func (p *Pipeline) applyBasic(buf *pixaro.Image, b *pixaro.Basic) {
	if *b == (pixaro.Basic{}) {
		return
	}

	gain := float32(math.Exp2(b.Exposure))
	contrast := float32(1 + b.Contrast/100)
	highlights := float32(b.Highlights / 100)
	shadows := float32(b.Shadows / 100)
	whites := float32(b.Whites / 100)
	blacks := float32(b.Blacks / 100)
	zoned := highlights != 0 || shadows != 0 || whites != 0 || blacks != 0

	data := buf.Data()
	w := buf.Width()
	p.pool.ForRows(buf.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			r, g, bl := data[i]*gain, data[i+1]*gain, data[i+2]*gain

			if contrast != 1 {
				// Midpoint-anchored linear contrast around 18% grey
				// encoded at 0.5 after gamma; in linear that pivot is
				// mid-grey scene luminance.
				const pivot = 0.18
				r = (r-pivot)*contrast + pivot
				g = (g-pivot)*contrast + pivot
				bl = (bl-pivot)*contrast + pivot
			}

			if zoned {
				lum := colorspace.Luminance32(r, g, bl)
				enc := linearToSRGBLUT(clamp01f(lum))

				// Zone masks: smooth ramps that vanish at the midtone.
				hiMask := rampUp(enc, 0.5, 0.3)
				shMask := rampUp(1-enc, 0.5, 0.3)
				whMask := rampUp(enc, 0.75, 0.2)
				blMask := rampUp(1-enc, 0.75, 0.2)

				m := float32(1)
				m *= 1 + highlights*0.6*hiMask
				m *= 1 + shadows*0.6*shMask
				m *= 1 + whites*0.4*whMask
				m *= 1 + blacks*0.4*blMask
				if m < 0 {
					m = 0
				}
				r *= m
				g *= m
				bl *= m
			}

			if r < 0 {
				r = 0
			}
			if g < 0 {
				g = 0
			}
			if bl < 0 {
				bl = 0
			}
			data[i], data[i+1], data[i+2] = r, g, bl
		}
	})
}

// rampUp is clamp((v-start)/width, 0, 1), the mask ramp used by the tonal
// zone sliders. It is exactly 0 for v <= start.
func rampUp(v, start, width float32) float32 {
	t := (v - start) / width
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t
}
