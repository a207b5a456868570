package pixaro

import (
	"image"
	"image/color"
)

// ColorSpace tags the encoding of an Image's RGB samples.
type ColorSpace uint8

const (
	// ColorSpaceSRGB is gamma-encoded sRGB, the interchange encoding.
	ColorSpaceSRGB ColorSpace = iota

	// ColorSpaceLinear is linear-light RGB with sRGB primaries, the
	// pipeline's scene-referred working encoding.
	ColorSpaceLinear
)

// String returns the color space name.
func (s ColorSpace) String() string {
	switch s {
	case ColorSpaceSRGB:
		return "sRGB"
	case ColorSpaceLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// Image is a rectangular float32 RGBA pixel buffer, 4 samples per pixel,
// laid out row by row. Values are nominally in [0,1] but linear buffers may
// exceed 1.0 between pipeline stages; the output transform compresses them.
//
// Images are treated as immutable once handed across a component boundary:
// the pipeline renders into a fresh buffer on every call and never mutates
// its input.
type Image struct {
	width  int
	height int
	space  ColorSpace
	data   []float32
}

// NewImage creates an image with the given dimensions, zero-filled.
func NewImage(width, height int, space ColorSpace) *Image {
	return &Image{
		width:  width,
		height: height,
		space:  space,
		data:   make([]float32, width*height*4),
	}
}

// Width returns the width in pixels.
func (p *Image) Width() int { return p.width }

// Height returns the height in pixels.
func (p *Image) Height() int { return p.height }

// Space returns the color space tag.
func (p *Image) Space() ColorSpace { return p.space }

// Data returns the raw sample slice (RGBA, 4 floats per pixel).
func (p *Image) Data() []float32 { return p.data }

// Pixel returns the RGBA samples at (x, y). Out-of-bounds reads return
// transparent black.
func (p *Image) Pixel(x, y int) (r, g, b, a float32) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0, 0, 0, 0
	}
	i := (y*p.width + x) * 4
	return p.data[i], p.data[i+1], p.data[i+2], p.data[i+3]
}

// SetPixel sets the RGBA samples at (x, y). Out-of-bounds writes are
// ignored.
func (p *Image) SetPixel(x, y int, r, g, b, a float32) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i] = r
	p.data[i+1] = g
	p.data[i+2] = b
	p.data[i+3] = a
}

// Clone returns a deep copy with the same dimensions and color space.
func (p *Image) Clone() *Image {
	c := &Image{
		width:  p.width,
		height: p.height,
		space:  p.space,
		data:   make([]float32, len(p.data)),
	}
	copy(c.data, p.data)
	return c
}

// WithSpace returns a shallow re-tag of the image. The caller asserts the
// samples are already encoded in the given space.
func (p *Image) WithSpace(space ColorSpace) *Image {
	return &Image{width: p.width, height: p.height, space: space, data: p.data}
}

// FromImage converts a standard library image to an sRGB-tagged Image.
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := NewImage(w, h, ColorSpaceSRGB)

	// Fast path for the common decode result.
	if rgba, ok := img.(*image.RGBA); ok {
		for i, v := range rgba.Pix[:w*h*4] {
			out.data[i] = float32(v) / 255
		}
		return out
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*w + x) * 4
			out.data[i] = float32(r) / 65535
			out.data[i+1] = float32(g) / 65535
			out.data[i+2] = float32(b) / 65535
			out.data[i+3] = float32(a) / 65535
		}
	}
	return out
}

// ToRGBA converts the image to an 8-bit image.RGBA, clamping samples to
// [0,1] and rounding.
func (p *Image) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i, v := range p.data {
		img.Pix[i] = clampByte(v)
	}
	return img
}

// At implements the image.Image interface.
func (p *Image) At(x, y int) color.Color {
	r, g, b, a := p.Pixel(x, y)
	return color.NRGBA{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: clampByte(a)}
}

// Bounds implements the image.Image interface.
func (p *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// clampByte clamps a [0,1] sample to [0,255] with rounding.
func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Metadata describes a decoded photograph as delivered by the decode
// collaborator alongside its pixel buffer.
type Metadata struct {
	// PhotoID identifies the photo across components (depth cache key,
	// stale-delivery guard).
	PhotoID string

	// SourceWidth and SourceHeight are the dimensions of the original
	// file before any working-resolution scaling.
	SourceWidth  int
	SourceHeight int

	// Format is the container format the photo was decoded from.
	Format string
}
