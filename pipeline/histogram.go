package pipeline

import "github.com/pixaro/pixaro"

// Histogram holds 256-bin channel and luminance distributions of a
// rendered frame.
type Histogram struct {
	R, G, B, Lum [256]uint32

	// Samples is the number of pixels accumulated.
	Samples int
}

// maxHistogramDim caps the sampling grid; frames larger than this are
// strided, which keeps histogram cost bounded regardless of frame size.
const maxHistogramDim = 256

// ComputeHistogram accumulates a histogram from a display-referred frame.
// Large frames are sampled on a grid of at most 256x256 positions.
func ComputeHistogram(img *pixaro.Image) *Histogram {
	h := &Histogram{}
	if img == nil {
		return h
	}
	w, height := img.Width(), img.Height()

	strideX := (w + maxHistogramDim - 1) / maxHistogramDim
	strideY := (height + maxHistogramDim - 1) / maxHistogramDim
	if strideX < 1 {
		strideX = 1
	}
	if strideY < 1 {
		strideY = 1
	}

	data := img.Data()
	for y := 0; y < height; y += strideY {
		row := y * w * 4
		for x := 0; x < w; x += strideX {
			i := row + x*4
			r := binOf(data[i])
			g := binOf(data[i+1])
			b := binOf(data[i+2])
			h.R[r]++
			h.G[g]++
			h.B[b]++
			h.Lum[binOf(0.2126*data[i]+0.7152*data[i+1]+0.0722*data[i+2])]++
			h.Samples++
		}
	}
	return h
}

func binOf(v float32) int {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return int(v * 255.999)
}
