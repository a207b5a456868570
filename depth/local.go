package depth

import (
	"context"
	"math"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/colorspace"
)

// Local estimation resolution cap. The heuristic map is low-frequency by
// construction, so a small grid is enough and keeps each chunk cheap.
const localMaxDim = 256

// localRowsPerStep bounds the work done by one Step call to a few
// milliseconds even on slow machines.
const localRowsPerStep = 64

// LocalEstimator computes the offline fallback depth map incrementally:
// a center-weighted radial field biased by pixel luminance (bright areas
// read as closer), then smoothed. Call Step until it reports completion;
// each call does a bounded amount of work so the caller can interleave
// other duties.
type LocalEstimator struct {
	src    *pixaro.Image
	dm     *pixaro.DepthMap
	w, h   int
	row    int
	smooth bool
}

// NewLocalEstimator starts an estimation over the image.
func NewLocalEstimator(img *pixaro.Image) *LocalEstimator {
	w, h := img.Width(), img.Height()
	if w > localMaxDim || h > localMaxDim {
		if w >= h {
			h = h * localMaxDim / w
			w = localMaxDim
		} else {
			w = w * localMaxDim / h
			h = localMaxDim
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}
	return &LocalEstimator{
		src: img,
		dm:  pixaro.NewDepthMap(w, h),
		w:   w,
		h:   h,
	}
}

// Step advances the estimation and reports whether it is complete.
func (e *LocalEstimator) Step() bool {
	if e.smooth {
		return true
	}
	if e.row < e.h {
		end := e.row + localRowsPerStep
		if end > e.h {
			end = e.h
		}
		e.fillRows(e.row, end)
		e.row = end
		return false
	}

	e.smoothAndNormalize()
	e.smooth = true
	return true
}

// Result returns the finished depth map. Nil until Step reports
// completion.
func (e *LocalEstimator) Result() *pixaro.DepthMap {
	if !e.smooth {
		return nil
	}
	return e.dm
}

func (e *LocalEstimator) fillRows(y0, y1 int) {
	srcW, srcH := e.src.Width(), e.src.Height()
	out := e.dm.Data()
	cx := float64(e.w-1) / 2
	cy := float64(e.h-1) / 2
	invDiag := 1 / math.Hypot(cx+1, cy+1)

	for y := y0; y < y1; y++ {
		sy := y * srcH / e.h
		for x := 0; x < e.w; x++ {
			sx := x * srcW / e.w
			r, g, b, _ := e.src.Pixel(sx, sy)
			lum := float64(colorspace.Luminance32(r, g, b))

			radial := math.Hypot(float64(x)-cx, float64(y)-cy) * invDiag

			// Frame edges read as background (low), bright centered
			// subjects as near (high).
			d := 0.6*(1-radial) + 0.4*clamp01(lum)
			out[y*e.w+x] = float32(d)
		}
	}
}

func (e *LocalEstimator) smoothAndNormalize() {
	out := e.dm.Data()
	radius := e.w / 16
	if radius < 1 {
		radius = 1
	}
	boxSmooth(out, e.w, e.h, radius)

	minV, maxV := float32(1e9), float32(-1e9)
	for _, v := range out {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if span := maxV - minV; span > 1e-6 {
		inv := 1 / span
		for i := range out {
			out[i] = (out[i] - minV) * inv
		}
	}
}

// boxSmooth runs a separable sliding-window mean in place.
func boxSmooth(data []float32, w, h, radius int) {
	tmp := make([]float32, len(data))

	for y := 0; y < h; y++ {
		row := y * w
		var sum float32
		count := 0
		for x := -radius; x <= radius && x < w; x++ {
			if x >= 0 {
				sum += data[row+x]
				count++
			}
		}
		for x := 0; x < w; x++ {
			tmp[row+x] = sum / float32(count)
			if add := x + radius + 1; add < w {
				sum += data[row+add]
				count++
			}
			if sub := x - radius; sub >= 0 {
				sum -= data[row+sub]
				count--
			}
		}
	}

	for x := 0; x < w; x++ {
		var sum float32
		count := 0
		for y := -radius; y <= radius && y < h; y++ {
			if y >= 0 {
				sum += tmp[y*w+x]
				count++
			}
		}
		for y := 0; y < h; y++ {
			data[y*w+x] = sum / float32(count)
			if add := y + radius + 1; add < h {
				sum += tmp[add*w+x]
				count++
			}
			if sub := y - radius; sub >= 0 {
				sum -= tmp[sub*w+x]
				count--
			}
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EstimateLocal runs the chunked estimator to completion, yielding to ctx
// between chunks, and caches the result for the photo.
func (c *Client) EstimateLocal(ctx context.Context, photoID string, img *pixaro.Image) (*pixaro.DepthMap, error) {
	if m, ok := c.cache.Get(photoID); ok {
		return m, nil
	}

	est := NewLocalEstimator(img)
	for !est.Step() {
		select {
		case <-ctx.Done():
			return nil, pixaro.WrapError(pixaro.CodeDepthTimeout, pixaro.SeverityError, true,
				"Local depth estimation was cancelled", ctx.Err())
		default:
		}
	}

	dm := est.Result()
	c.cache.Set(photoID, dm)
	c.mu.Lock()
	if photoID == c.activePhoto {
		c.cache.Pin(photoID)
	}
	c.mu.Unlock()
	return dm, nil
}
