package pipeline

import (
	"math"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/colorspace"
)

// applyColorBalance performs the four-zone color grade in the cylindrical
// grading space. Shadow and highlight masks are built from the grey
// fulcrum and zone weights; the midtone mask is the remainder, so the
// three tonal masks always sum to one before the global zone is added.
func (p *Pipeline) applyColorBalance(buf *pixaro.Image, cb *pixaro.ColorBalance) {
	// Lightness of the grey fulcrum in the grading space.
	jf, _, _ := colorspace.RGBToUCS(cb.GreyFulcrum, cb.GreyFulcrum, cb.GreyFulcrum)
	jContrast, _, _ := colorspace.RGBToUCS(cb.ContrastFulcrum, cb.ContrastFulcrum, cb.ContrastFulcrum)
	if jf <= 0 {
		jf = 0.5
	}
	if jContrast <= 0 {
		jContrast = 0.5
	}

	data := buf.Data()
	w := buf.Width()
	p.pool.ForRows(buf.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			r, g, b := float64(data[i]), float64(data[i+1]), float64(data[i+2])
			j, c, h := colorspace.RGBToUCS(r, g, b)

			sh := clampF64(cb.ShadowsWeight*(1-smoothstep(0, 2*jf, j)), 0, 1)
			hi := clampF64(cb.HighlightsWeight*smoothstep(jf, 1, j), 0, 1)
			if sh+hi > 1 {
				norm := sh + hi
				sh /= norm
				hi /= norm
			}
			mid := 1 - sh - hi

			j, c, h = gradeZone(j, c, h, &cb.Shadows, sh)
			j, c, h = gradeZone(j, c, h, &cb.Midtones, mid)
			j, c, h = gradeZone(j, c, h, &cb.Highlights, hi)
			j, c, h = gradeZone(j, c, h, &cb.Global, 1)

			if cb.Contrast != 0 && j > 0 {
				j = jContrast * math.Pow(j/jContrast, 1+cb.Contrast)
			}
			if cb.Vibrance != 0 {
				// Chroma-aware boost: muted colors move most.
				sat := clampF64(c/0.2, 0, 1)
				c *= 1 + cb.Vibrance*(1-sat)
			}

			r, g, b = colorspace.UCSToRGB(clampF64(j, 0, 4), math.Max(c, 0), h)
			data[i] = float32(math.Max(r, 0))
			data[i+1] = float32(math.Max(g, 0))
			data[i+2] = float32(math.Max(b, 0))
		}
	})
}

func gradeZone(j, c, h float64, z *pixaro.BalanceZone, mask float64) (float64, float64, float64) {
	if mask <= 0 || (z.Luminance == 0 && z.Chroma == 0 && z.Hue == 0) {
		return j, c, h
	}
	j += z.Luminance * mask
	c = math.Max(c*(1+z.Chroma*mask), 0)
	h += z.Hue * mask
	return j, c, h
}

func smoothstep(edge0, edge1, v float64) float64 {
	t := clampF64((v-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
