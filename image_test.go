package pixaro

import (
	"image"
	"image/color"
	"testing"
)

func TestImageRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{G: 128, A: 255})
	src.SetRGBA(2, 1, color.RGBA{B: 64, A: 255})

	img := FromImage(src)
	if img.Width() != 3 || img.Height() != 2 {
		t.Fatalf("dimensions = %dx%d, want 3x2", img.Width(), img.Height())
	}
	if img.Space() != ColorSpaceSRGB {
		t.Errorf("space = %v, want sRGB", img.Space())
	}

	out := img.ToRGBA()
	for i, want := range src.Pix {
		if out.Pix[i] != want {
			t.Fatalf("pix[%d] = %d, want %d", i, out.Pix[i], want)
		}
	}
}

func TestImagePixelBounds(t *testing.T) {
	img := NewImage(2, 2, ColorSpaceLinear)
	img.SetPixel(1, 1, 0.5, 0.25, 0.125, 1)

	r, g, b, a := img.Pixel(1, 1)
	if r != 0.5 || g != 0.25 || b != 0.125 || a != 1 {
		t.Errorf("Pixel(1,1) = %v,%v,%v,%v", r, g, b, a)
	}

	// Out-of-bounds reads return zero, writes are dropped.
	if r, _, _, _ := img.Pixel(-1, 0); r != 0 {
		t.Error("out-of-bounds read not zero")
	}
	img.SetPixel(5, 5, 1, 1, 1, 1)
}

func TestImageClone(t *testing.T) {
	img := NewImage(2, 1, ColorSpaceLinear)
	img.SetPixel(0, 0, 1, 0, 0, 1)

	c := img.Clone()
	c.SetPixel(0, 0, 0, 1, 0, 1)

	if r, _, _, _ := img.Pixel(0, 0); r != 1 {
		t.Error("clone shares backing data")
	}
}

func TestClampByte(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{2.5, 255},
	}
	for _, tt := range tests {
		if got := clampByte(tt.in); got != tt.want {
			t.Errorf("clampByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
