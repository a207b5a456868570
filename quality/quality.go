// Package quality computes working resolutions and performs the
// corresponding resampling. Interactive edits run at a capped preview
// size; export renders at full source resolution.
package quality

import (
	"golang.org/x/image/draw"

	"github.com/pixaro/pixaro"
)

// Mode selects the resolution policy.
type Mode uint8

const (
	// ModePreview caps the working resolution at the manager's max
	// dimension.
	ModePreview Mode = iota

	// ModeExport processes at full source resolution.
	ModeExport
)

// DefaultMaxDimension is the preview cap used when none is configured.
const DefaultMaxDimension = 2048

// Manager decides working resolutions and scales source images to them.
type Manager struct {
	maxDim int
}

// NewManager creates a manager with the given preview cap. Zero or
// negative uses DefaultMaxDimension.
func NewManager(maxDim int) *Manager {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	return &Manager{maxDim: maxDim}
}

// MaxDimension returns the preview cap.
func (m *Manager) MaxDimension() int { return m.maxDim }

// FitWithin returns the largest w x h size that fits inside the cap while
// preserving the aspect ratio to under one pixel of rounding error. Sizes
// already inside the cap are returned unchanged.
func FitWithin(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		nw := maxDim
		nh := (h*maxDim + w/2) / w
		if nh < 1 {
			nh = 1
		}
		return nw, nh
	}
	nh := maxDim
	nw := (w*maxDim + h/2) / h
	if nw < 1 {
		nw = 1
	}
	return nw, nh
}

// WorkingSize returns the render resolution for the image under the given
// mode.
func (m *Manager) WorkingSize(srcW, srcH int, mode Mode) (int, int) {
	if mode == ModeExport {
		return srcW, srcH
	}
	return FitWithin(srcW, srcH, m.maxDim)
}

// Scale resizes the image for the given mode. A scale factor of 1 returns
// the input untouched, with no resampling pass. Downscales beyond 2x run
// iterative 2x box halving before a final Catmull-Rom step, which avoids
// the aliasing a single large resize would produce.
func (m *Manager) Scale(src *pixaro.Image, mode Mode) *pixaro.Image {
	w, h := m.WorkingSize(src.Width(), src.Height(), mode)
	if w == src.Width() && h == src.Height() {
		return src
	}

	work := src
	for work.Width() >= 2*w && work.Height() >= 2*h {
		work = halve(work)
	}
	if work.Width() == w && work.Height() == h {
		return work
	}
	return resample(work, w, h)
}

// halve box-downsamples by exactly 2x in each dimension.
func halve(src *pixaro.Image) *pixaro.Image {
	w := src.Width() / 2
	h := src.Height() / 2
	out := pixaro.NewImage(w, h, src.Space())
	srcData := src.Data()
	dstData := out.Data()
	srcW := src.Width()

	for y := 0; y < h; y++ {
		r0 := (2 * y) * srcW * 4
		r1 := (2*y + 1) * srcW * 4
		for x := 0; x < w; x++ {
			i0 := r0 + 2*x*4
			i1 := r1 + 2*x*4
			di := (y*w + x) * 4
			for ch := 0; ch < 4; ch++ {
				dstData[di+ch] = (srcData[i0+ch] + srcData[i0+4+ch] +
					srcData[i1+ch] + srcData[i1+4+ch]) * 0.25
			}
		}
	}
	return out
}

// resample performs the final fractional step with Catmull-Rom filtering,
// separably, on the float32 buffer. The working image stays full precision:
// no 8-bit quantization and no clipping of >1 samples on the way into the
// pipeline.
func resample(src *pixaro.Image, w, h int) *pixaro.Image {
	tmp := pixaro.NewImage(w, src.Height(), src.Space())
	resampleAxis(src.Data(), tmp.Data(), src.Width(), src.Height(), w, true)
	out := pixaro.NewImage(w, h, src.Space())
	resampleAxis(tmp.Data(), out.Data(), src.Height(), w, h, false)
	return out
}

// resampleAxis filters one axis from srcN to dstN samples using the
// Catmull-Rom kernel, widened by the scale factor when minifying.
// horizontal selects which axis varies; the other axis has `lines` rows
// (or columns).
func resampleAxis(src, dst []float32, srcN, lines, dstN int, horizontal bool) {
	kernel := draw.CatmullRom
	scale := float64(srcN) / float64(dstN)
	kscale := scale
	if kscale < 1 {
		kscale = 1
	}
	support := kernel.Support * kscale

	// Per-destination-sample contribution windows are identical for every
	// line; compute them once.
	type tapRange struct{ lo, hi int }
	ranges := make([]tapRange, dstN)
	weights := make([][]float64, dstN)
	for d := 0; d < dstN; d++ {
		center := (float64(d)+0.5)*scale - 0.5
		lo := int(center - support + 0.5)
		hi := int(center + support + 0.5)
		if lo < 0 {
			lo = 0
		}
		if hi > srcN-1 {
			hi = srcN - 1
		}
		ws := make([]float64, hi-lo+1)
		var sum float64
		for s := lo; s <= hi; s++ {
			wgt := kernel.At((float64(s) - center) / kscale)
			ws[s-lo] = wgt
			sum += wgt
		}
		if sum != 0 {
			for i := range ws {
				ws[i] /= sum
			}
		}
		ranges[d] = tapRange{lo, hi}
		weights[d] = ws
	}

	srcStride := srcN * 4
	if !horizontal {
		srcStride = lines * 4
	}
	for line := 0; line < lines; line++ {
		for d := 0; d < dstN; d++ {
			rng := ranges[d]
			ws := weights[d]
			var acc [4]float64
			for s := rng.lo; s <= rng.hi; s++ {
				var i int
				if horizontal {
					i = line*srcStride + s*4
				} else {
					i = s*srcStride + line*4
				}
				wgt := ws[s-rng.lo]
				acc[0] += wgt * float64(src[i])
				acc[1] += wgt * float64(src[i+1])
				acc[2] += wgt * float64(src[i+2])
				acc[3] += wgt * float64(src[i+3])
			}
			var di int
			if horizontal {
				di = line*dstN*4 + d*4
			} else {
				di = d*lines*4 + line*4
			}
			dst[di] = float32(acc[0])
			dst[di+1] = float32(acc[1])
			dst[di+2] = float32(acc[2])
			dst[di+3] = float32(acc[3])
		}
	}
}
