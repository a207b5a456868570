package depth

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/colorspace"
)

// colorizedThreshold is the mean per-pixel channel divergence above which
// a depth rendering is treated as colorized rather than grayscale.
const colorizedThreshold = 0.02

// NormalizeDepthImage decodes a depth rendering (grayscale or colorized)
// and normalizes it to a [0,1] depth map using perceptual luminance, with
// the full range stretched so the farthest pixel reads 0 and the nearest
// reads 1. Depth renderings encode near content bright, so brightness
// ordering carries over directly.
func NormalizeDepthImage(data []byte) (*pixaro.DepthMap, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, pixaro.WrapError(pixaro.CodeDepthRejected, pixaro.SeverityError, true,
			"Depth service returned an unreadable image", err)
	}
	return normalizeImage(img), nil
}

func normalizeImage(img image.Image) *pixaro.DepthMap {
	rgba := toRGBA(img)
	w := rgba.Rect.Dx()
	h := rgba.Rect.Dy()
	dm := pixaro.NewDepthMap(w, h)
	out := dm.Data()

	colorized := isColorized(rgba)

	minV := float32(1)
	maxV := float32(0)
	for i, pi := 0, 0; i < w*h; i, pi = i+1, pi+4 {
		r := float32(rgba.Pix[pi]) / 255
		g := float32(rgba.Pix[pi+1]) / 255
		b := float32(rgba.Pix[pi+2]) / 255

		var v float32
		if colorized {
			// Colorized renderings map depth to brightness through a
			// palette; perceptual luminance recovers the ordering.
			v = colorspace.Luminance32(r, g, b)
		} else {
			v = r
		}
		out[i] = v
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
	return dm
}

// isColorized measures the mean divergence between channels; a grayscale
// encoding keeps all three equal up to compression noise.
func isColorized(rgba *image.RGBA) bool {
	n := rgba.Rect.Dx() * rgba.Rect.Dy()
	if n == 0 {
		return false
	}
	var total float64
	for pi := 0; pi < n*4; pi += 4 {
		r := int(rgba.Pix[pi])
		g := int(rgba.Pix[pi+1])
		b := int(rgba.Pix[pi+2])
		max := r
		min := r
		for _, v := range [2]int{g, b} {
			if v > max {
				max = v
			}
			if v < min {
				min = v
			}
		}
		total += float64(max-min) / 255
	}
	return total/float64(n) > colorizedThreshold
}

// toRGBA converts any decoded image to RGBA.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
