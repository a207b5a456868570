package pipeline

import (
	"math"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/colorspace"
)

// applyDetail runs the detail stack in order: guided filter, local
// Laplacian contrast, unsharp mask. Each sub-stage is skipped when
// disabled or neutral.
func (p *Pipeline) applyDetail(buf *pixaro.Image, d *pixaro.Detail) {
	if d.Guided.Enabled && d.Guided.Strength != 0 {
		p.applyGuidedFilter(buf, &d.Guided)
	}
	if d.Laplacian.Enabled && d.Laplacian.Strength != 0 &&
		(d.Laplacian.Detail != 0 || d.Laplacian.Coarse != 0) {
		p.applyLocalLaplacian(buf, &d.Laplacian)
	}
	if d.Sharpen.Amount > 0 {
		p.applyUnsharpMask(buf, &d.Sharpen)
	}
}

// luminancePlane extracts the Rec. 709 luminance into a fresh plane.
func luminancePlane(buf *pixaro.Image) []float32 {
	w, h := buf.Width(), buf.Height()
	data := buf.Data()
	lum := getTempBuf(w * h)
	for i := 0; i < w*h; i++ {
		lum[i] = colorspace.Luminance32(data[i*4], data[i*4+1], data[i*4+2])
	}
	return lum
}

// scaleByLuminance rescales each pixel's channels by newLum/oldLum,
// preserving chromaticity while the luminance plane is reshaped.
func scaleByLuminance(buf *pixaro.Image, oldLum, newLum []float32) {
	data := buf.Data()
	n := buf.Width() * buf.Height()
	for i := 0; i < n; i++ {
		o := oldLum[i]
		if o <= 1e-6 {
			continue
		}
		s := newLum[i] / o
		if s < 0 {
			s = 0
		}
		data[i*4] *= s
		data[i*4+1] *= s
		data[i*4+2] *= s
	}
}

// applyGuidedFilter smooths or sharpens using the self-guided filter:
// per-window linear regression of the image against itself, with epsilon
// controlling how strongly edges are preserved. Strength moves luminance
// toward the filtered plane (negative) or away from it (positive),
// leaving edges free of halos either way.
func (p *Pipeline) applyGuidedFilter(buf *pixaro.Image, g *pixaro.GuidedFilter) {
	w, h := buf.Width(), buf.Height()
	lum := luminancePlane(buf)
	defer putTempBuf(lum)

	n := w * h
	sq := getTempBuf(n)
	meanI := getTempBuf(n)
	corrI := getTempBuf(n)
	a := getTempBuf(n)
	b := getTempBuf(n)
	meanA := getTempBuf(n)
	meanB := getTempBuf(n)
	defer func() {
		putTempBuf(sq)
		putTempBuf(meanI)
		putTempBuf(corrI)
		putTempBuf(a)
		putTempBuf(b)
		putTempBuf(meanA)
		putTempBuf(meanB)
	}()

	for i := 0; i < n; i++ {
		sq[i] = lum[i] * lum[i]
	}
	boxMean(lum, meanI, w, h, g.Radius, p.pool)
	boxMean(sq, corrI, w, h, g.Radius, p.pool)

	eps := float32(g.Epsilon)
	for i := 0; i < n; i++ {
		variance := corrI[i] - meanI[i]*meanI[i]
		if variance < 0 {
			variance = 0
		}
		a[i] = variance / (variance + eps)
		b[i] = meanI[i] * (1 - a[i])
	}
	boxMean(a, meanA, w, h, g.Radius, p.pool)
	boxMean(b, meanB, w, h, g.Radius, p.pool)

	// q is the edge-preserving estimate; strength blends along I - q.
	strength := float32(g.Strength)
	newLum := sq // reuse
	for i := 0; i < n; i++ {
		q := meanA[i]*lum[i] + meanB[i]
		newLum[i] = lum[i] + strength*(lum[i]-q)
	}
	scaleByLuminance(buf, lum, newLum)
}

// applyLocalLaplacian reshapes local contrast with a two-band pyramid:
// the fine band (luminance minus a small blur) is scaled by Detail, the
// coarse band (small blur minus large blur) by Coarse, both modulated by
// Strength.
func (p *Pipeline) applyLocalLaplacian(buf *pixaro.Image, l *pixaro.LocalLaplacian) {
	w, h := buf.Width(), buf.Height()
	n := w * h
	lum := luminancePlane(buf)
	small := getTempBuf(n)
	large := getTempBuf(n)
	defer func() {
		putTempBuf(lum)
		putTempBuf(small)
		putTempBuf(large)
	}()

	boxMean(lum, small, w, h, 2, p.pool)
	boxMean(lum, large, w, h, 16, p.pool)

	fineGain := float32(1 + l.Detail*l.Strength)
	coarseGain := float32(1 + l.Coarse*l.Strength)
	newLum := small // reuse after reading
	for i := 0; i < n; i++ {
		fine := lum[i] - small[i]
		coarse := small[i] - large[i]
		newLum[i] = large[i] + coarse*coarseGain + fine*fineGain
	}
	scaleByLuminance(buf, lum, newLum)
}

// applyUnsharpMask sharpens by adding back the difference between the
// image and a Gaussian blur at Radius, gated by Threshold so flat areas
// and noise are untouched.
func (p *Pipeline) applyUnsharpMask(buf *pixaro.Image, s *pixaro.Sharpen) {
	blurred := buf.Clone()
	gaussianBlurRGBA(blurred, s.Radius, p.pool)

	amount := float32(s.Amount / 100)
	threshold := float32(s.Threshold)
	data := buf.Data()
	blur := blurred.Data()
	w := buf.Width()

	p.pool.ForRows(buf.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			dLum := colorspace.Luminance32(
				data[i]-blur[i], data[i+1]-blur[i+1], data[i+2]-blur[i+2])
			mag := float32(math.Abs(float64(dLum)))
			if mag <= threshold {
				continue
			}
			// Soft gate just above the threshold avoids banding.
			gate := float32(1)
			if threshold > 0 && mag < threshold*2 {
				gate = (mag - threshold) / threshold
			}
			k := amount * gate
			for ch := 0; ch < 3; ch++ {
				v := data[i+ch] + k*(data[i+ch]-blur[i+ch])
				if v < 0 {
					v = 0
				}
				data[i+ch] = v
			}
		}
	})
}
