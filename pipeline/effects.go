package pipeline

import (
	"math"

	"github.com/pixaro/pixaro"
)

// applyEffects applies vignette and grain, the last creative stages
// before output encoding.
func (p *Pipeline) applyEffects(buf *pixaro.Image, e *pixaro.Effects) {
	if e.VignetteAmount != 0 {
		p.applyVignette(buf, e)
	}
	if e.GrainAmount > 0 {
		p.applyGrain(buf, e)
	}
}

// applyVignette darkens (positive amount) or lifts (negative) the frame
// radially. Midpoint sets where the falloff starts as a fraction of the
// half-diagonal; feather controls how gradually it reaches the corners.
func (p *Pipeline) applyVignette(buf *pixaro.Image, e *pixaro.Effects) {
	w, h := buf.Width(), buf.Height()
	data := buf.Data()

	amount := float32(e.VignetteAmount / 100)
	mid := float32(e.VignetteMidpoint)
	feather := float32(e.VignetteFeather)
	if feather < 0.01 {
		feather = 0.01
	}

	cx := float32(w-1) / 2
	cy := float32(h-1) / 2
	invDiag := 1 / float32(math.Hypot(float64(cx), float64(cy)))

	p.pool.ForRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			dy := (float32(y) - cy) * invDiag
			for x := 0; x < w; x++ {
				dx := (float32(x) - cx) * invDiag
				dist := float32(math.Hypot(float64(dx), float64(dy)))

				t := (dist - mid) / feather
				if t <= 0 {
					continue
				}
				if t > 1 {
					t = 1
				}
				t = t * t * (3 - 2*t)

				gain := 1 - amount*t
				if gain < 0 {
					gain = 0
				}
				i := (y*w + x) * 4
				data[i] *= gain
				data[i+1] *= gain
				data[i+2] *= gain
			}
		}
	})
}

// Grain cell size in pixels per GrainSize step.
func grainCell(size pixaro.GrainSize) int {
	switch size {
	case pixaro.GrainFine:
		return 1
	case pixaro.GrainCoarse:
		return 4
	default:
		return 2
	}
}

// applyGrain adds procedural film grain. The noise field is a hash of the
// cell coordinates, so it is deterministic for a given image size and
// stable across renders; roughness mixes in a second, offset octave.
func (p *Pipeline) applyGrain(buf *pixaro.Image, e *pixaro.Effects) {
	w, h := buf.Width(), buf.Height()
	data := buf.Data()

	amount := float32(e.GrainAmount/100) * 0.15
	rough := float32(e.GrainRoughness)
	cell := grainCell(e.GrainSize)

	p.pool.ForRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			gy := y / cell
			for x := 0; x < w; x++ {
				gx := x / cell
				n := hashNoise(gx, gy)
				if rough > 0 {
					n = n*(1-rough*0.5) + hashNoise(gx+7919, gy+104729)*rough*0.5
				}

				i := (y*w + x) * 4
				// Luminance-weighted so grain shows in midtones, not in
				// crushed blacks or clipped whites.
				lum := 0.2126*data[i] + 0.7152*data[i+1] + 0.0722*data[i+2]
				weight := lum * (1 - clamp01f(lum))
				g := n * amount * 4 * weight
				for ch := 0; ch < 3; ch++ {
					v := data[i+ch] + g
					if v < 0 {
						v = 0
					}
					data[i+ch] = v
				}
			}
		}
	})
}

// hashNoise returns deterministic noise in [-0.5, 0.5] for a lattice
// coordinate.
func hashNoise(x, y int) float32 {
	n := uint32(x)*374761393 + uint32(y)*668265263
	n = (n ^ (n >> 13)) * 1274126177
	n ^= n >> 16
	return float32(n)/float32(math.MaxUint32) - 0.5
}
