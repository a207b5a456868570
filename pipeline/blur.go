package pipeline

import (
	"math"
	"sync"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/internal/parallel"
)

var tempBufPool = sync.Pool{
	New: func() any { return []float32(nil) },
}

func getTempBuf(n int) []float32 {
	buf := tempBufPool.Get().([]float32)
	if cap(buf) < n {
		buf = make([]float32, n)
	}
	return buf[:n]
}

func putTempBuf(buf []float32) {
	tempBufPool.Put(buf[:0])
}

// gaussianKernel builds a normalized 1D kernel for the given sigma. The
// radius covers three standard deviations.
func gaussianKernel(sigma float64) []float32 {
	radius := int(math.Ceil(sigma * 3))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float32, 2*radius+1)
	var sum float32
	inv := -1 / (2 * sigma * sigma)
	for i := -radius; i <= radius; i++ {
		v := float32(math.Exp(float64(i*i) * inv))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianBlurRGBA blurs the color channels in place with a separable
// Gaussian. Alpha is left untouched. Edges clamp.
func gaussianBlurRGBA(img *pixaro.Image, sigma float64, pool *parallel.WorkerPool) {
	if sigma <= 0 {
		return
	}
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	w, h := img.Width(), img.Height()
	data := img.Data()

	tmp := getTempBuf(w * h * 4)
	defer putTempBuf(tmp)

	// Horizontal pass into tmp.
	pool.ForRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * w * 4
			for x := 0; x < w; x++ {
				var r, g, b float32
				for k := -radius; k <= radius; k++ {
					sx := x + k
					if sx < 0 {
						sx = 0
					} else if sx >= w {
						sx = w - 1
					}
					kv := kernel[k+radius]
					i := row + sx*4
					r += data[i] * kv
					g += data[i+1] * kv
					b += data[i+2] * kv
				}
				i := row + x*4
				tmp[i] = r
				tmp[i+1] = g
				tmp[i+2] = b
				tmp[i+3] = data[i+3]
			}
		}
	})

	// Vertical pass back into data.
	pool.ForRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				var r, g, b float32
				for k := -radius; k <= radius; k++ {
					sy := y + k
					if sy < 0 {
						sy = 0
					} else if sy >= h {
						sy = h - 1
					}
					kv := kernel[k+radius]
					i := (sy*w + x) * 4
					r += tmp[i] * kv
					g += tmp[i+1] * kv
					b += tmp[i+2] * kv
				}
				i := (y*w + x) * 4
				data[i] = r
				data[i+1] = g
				data[i+2] = b
			}
		}
	})
}

// boxMean computes the sliding-window mean of a single-channel plane with
// the given radius, writing into dst. Implemented with running sums per
// row and per column, so cost is independent of the radius.
func boxMean(src, dst []float32, w, h, radius int, pool *parallel.WorkerPool) {
	tmp := getTempBuf(w * h)
	defer putTempBuf(tmp)

	// Horizontal running sums.
	pool.ForRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * w
			var sum float32
			count := 0
			for x := -radius; x <= radius && x < w; x++ {
				if x >= 0 {
					sum += src[row+x]
					count++
				}
			}
			for x := 0; x < w; x++ {
				tmp[row+x] = sum / float32(count)
				add := x + radius + 1
				if add < w {
					sum += src[row+add]
					count++
				}
				sub := x - radius
				if sub >= 0 {
					sum -= src[row+sub]
					count--
				}
			}
		}
	})

	// Vertical running sums, column-banded for parallelism.
	pool.ForRows(w, func(x0, x1 int) {
		for x := x0; x < x1; x++ {
			var sum float32
			count := 0
			for y := -radius; y <= radius && y < h; y++ {
				if y >= 0 {
					sum += tmp[y*w+x]
					count++
				}
			}
			for y := 0; y < h; y++ {
				dst[y*w+x] = sum / float32(count)
				add := y + radius + 1
				if add < h {
					sum += tmp[add*w+x]
					count++
				}
				sub := y - radius
				if sub >= 0 {
					sum -= tmp[sub*w+x]
					count--
				}
			}
		}
	})
}
