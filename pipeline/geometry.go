package pipeline

import (
	"math"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/internal/parallel"
)

// cropImage copies the crop window into a new image. The caller has
// already validated the bounds.
func cropImage(src *pixaro.Image, c pixaro.Crop) *pixaro.Image {
	out := pixaro.NewImage(c.Width, c.Height, src.Space())
	srcData := src.Data()
	dstData := out.Data()
	srcW := src.Width()

	for y := 0; y < c.Height; y++ {
		srcOff := ((c.Y+y)*srcW + c.X) * 4
		dstOff := y * c.Width * 4
		copy(dstData[dstOff:dstOff+c.Width*4], srcData[srcOff:srcOff+c.Width*4])
	}
	return out
}

// rotateImage rotates the image by angle degrees around its center with
// bilinear sampling, keeping the original dimensions. Revealed corners are
// transparent black; the UI is expected to pair straightening with a crop.
func rotateImage(src *pixaro.Image, angleDeg float64, pool *parallel.WorkerPool) *pixaro.Image {
	w, h := src.Width(), src.Height()
	out := pixaro.NewImage(w, h, src.Space())

	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	cx := float64(w-1) / 2
	cy := float64(h-1) / 2

	pool.ForRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			dy := float64(y) - cy
			for x := 0; x < w; x++ {
				dx := float64(x) - cx
				// Inverse mapping into the source.
				sx := cos*dx + sin*dy + cx
				sy := -sin*dx + cos*dy + cy
				r, g, b, a := bilinear(src, sx, sy)
				out.SetPixel(x, y, r, g, b, a)
			}
		}
	})
	return out
}

// bilinear samples the image at a fractional position. Samples outside
// the frame are transparent black.
func bilinear(img *pixaro.Image, fx, fy float64) (r, g, b, a float32) {
	w, h := img.Width(), img.Height()
	if fx < -1 || fy < -1 || fx > float64(w) || fy > float64(h) {
		return 0, 0, 0, 0
	}

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	r00, g00, b00, a00 := img.Pixel(x0, y0)
	r10, g10, b10, a10 := img.Pixel(x0+1, y0)
	r01, g01, b01, a01 := img.Pixel(x0, y0+1)
	r11, g11, b11, a11 := img.Pixel(x0+1, y0+1)

	lerp := func(a, b, t float32) float32 { return a + (b-a)*t }
	r = lerp(lerp(r00, r10, tx), lerp(r01, r11, tx), ty)
	g = lerp(lerp(g00, g10, tx), lerp(g01, g11, tx), ty)
	b = lerp(lerp(b00, b10, tx), lerp(b01, b11, tx), ty)
	a = lerp(lerp(a00, a10, tx), lerp(a01, a11, tx), ty)
	return r, g, b, a
}
