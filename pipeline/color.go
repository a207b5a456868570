package pipeline

import (
	"math"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/colorspace"
)

// applyVibranceSaturation adjusts chroma in HSL. Saturation scales all
// colors uniformly; vibrance boosts in proportion to (1 - saturation), so
// muted colors move most and saturated ones barely change. Hue and
// lightness are preserved exactly.
func (p *Pipeline) applyVibranceSaturation(buf *pixaro.Image, c *pixaro.ColorAdjust) {
	if c.Vibrance == 0 && c.Saturation == 0 {
		return
	}
	vib := c.Vibrance / 100
	sat := 1 + c.Saturation/100

	data := buf.Data()
	w := buf.Width()
	p.pool.ForRows(buf.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			h, s, l := colorspace.RGBToHSL(float64(data[i]), float64(data[i+1]), float64(data[i+2]))
			if s == 0 {
				continue
			}
			if vib != 0 {
				// Boost proportional to how muted the color already is.
				s += vib * (1 - s)
			}
			s = clampF64(s*sat, 0, 1)
			r, g, b := colorspace.HSLToRGB(h, s, l)
			data[i], data[i+1], data[i+2] = float32(r), float32(g), float32(b)
		}
	})
}

// Base hues of the mixer buckets, degrees.
var bandHues = [pixaro.BandCount]float64{0, 30, 60, 120, 180, 240, 280, 320}

// bandWeight is the soft triangular window of a bucket around its base
// hue, with full weight at the center falling to zero at +-bandWidth.
func bandWeight(hue, base float64) float64 {
	const bandWidth = 45
	d := math.Abs(math.Mod(hue-base+540, 360) - 180)
	if d >= bandWidth {
		return 0
	}
	return 1 - d/bandWidth
}

// applyHSLMixer applies the 8-bucket hue/saturation/luminance shifts.
// Each pixel blends the contributions of every bucket whose window covers
// its hue.
func (p *Pipeline) applyHSLMixer(buf *pixaro.Image, m *pixaro.HSLMixer) {
	active := false
	for i := range m.Bands {
		if m.Bands[i] != (pixaro.HSLBand{}) {
			active = true
			break
		}
	}
	if !active {
		return
	}

	data := buf.Data()
	w := buf.Width()
	p.pool.ForRows(buf.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			h, s, l := colorspace.RGBToHSL(float64(data[i]), float64(data[i+1]), float64(data[i+2]))
			if s == 0 {
				continue
			}

			var dh, ds, dl float64
			for band := range m.Bands {
				b := &m.Bands[band]
				if *b == (pixaro.HSLBand{}) {
					continue
				}
				wgt := bandWeight(h, bandHues[band]) * s
				if wgt == 0 {
					continue
				}
				dh += b.Hue / 100 * 30 * wgt
				ds += b.Saturation / 100 * wgt
				dl += b.Luminance / 100 * 0.5 * wgt
			}

			h += dh
			s = clampF64(s*(1+ds), 0, 1)
			l = clampF64(l*(1+dl), 0, 1)
			r, g, b := colorspace.HSLToRGB(h, s, l)
			data[i], data[i+1], data[i+2] = float32(r), float32(g), float32(b)
		}
	})
}
