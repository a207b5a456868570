package pipeline

import (
	"math"

	"github.com/pixaro/pixaro"
)

// applyLensBlur blurs each pixel by a radius derived from how far its
// depth lies outside the focus band around FocusDepth. In-focus pixels
// are untouched, and the radius grows linearly with depth distance up to
// the amount-scaled maximum. Sampling uses a disc of taps against the
// sharp source, so blurred background never bleeds focus changes back
// into itself.
func (p *Pipeline) applyLensBlur(buf *pixaro.Image, lb *pixaro.LensBlur) {
	w, h := buf.Width(), buf.Height()
	src := buf.Clone()
	srcData := src.Data()
	data := buf.Data()

	maxRadius := lb.Amount / 100 * 24
	focus := float32(lb.FocusDepth)
	band := float32(lb.FocusRange)
	depth := p.depth

	p.pool.ForRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(h)
			for x := 0; x < w; x++ {
				u := (float32(x) + 0.5) / float32(w)
				d := depth.Sample(u, v)

				dist := float32(math.Abs(float64(d - focus)))
				if dist <= band {
					continue
				}
				radius := float64(dist-band) / float64(1-band+1e-6) * maxRadius
				if radius < 0.5 {
					continue
				}
				if radius > maxRadius {
					radius = maxRadius
				}

				r, g, b, a := discSample(srcData, w, h, x, y, radius)
				i := (y*w + x) * 4
				data[i], data[i+1], data[i+2], data[i+3] = r, g, b, a
			}
		}
	})
}

// discSample averages taps on concentric rings of the given radius,
// approximating a bokeh disc.
func discSample(src []float32, w, h, cx, cy int, radius float64) (r, g, b, a float32) {
	var count float32

	tap := func(x, y int) {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		i := (y*w + x) * 4
		r += src[i]
		g += src[i+1]
		b += src[i+2]
		a += src[i+3]
		count++
	}

	tap(cx, cy)
	rings := int(math.Ceil(radius / 2))
	if rings < 1 {
		rings = 1
	}
	for ring := 1; ring <= rings; ring++ {
		rr := radius * float64(ring) / float64(rings)
		taps := 4 * ring
		for t := 0; t < taps; t++ {
			ang := 2 * math.Pi * float64(t) / float64(taps)
			tap(cx+int(rr*math.Cos(ang)+0.5), cy+int(rr*math.Sin(ang)+0.5))
		}
	}

	return r / count, g / count, b / count, a / count
}

// renderDepthOverlay replaces the buffer with the grayscale depth map,
// the visualization used while placing the focus plane.
func (p *Pipeline) renderDepthOverlay(buf *pixaro.Image) {
	w, h := buf.Width(), buf.Height()
	data := buf.Data()
	depth := p.depth

	p.pool.ForRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(h)
			for x := 0; x < w; x++ {
				u := (float32(x) + 0.5) / float32(w)
				d := clamp01f(depth.Sample(u, v))
				// The overlay is display-referred; store the linearized
				// value so the output encode brings it back to the raw
				// depth reading.
				g := srgbToLinearLUT(d)
				i := (y*w + x) * 4
				data[i], data[i+1], data[i+2] = g, g, g
			}
		}
	})
}
