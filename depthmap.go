package pixaro

// DepthMap is a single-channel depth image with values in [0,1], where 0 is
// farthest and 1 is nearest. It is stored at its own resolution and sampled
// with bilinear interpolation by consumers whose buffers differ in size.
type DepthMap struct {
	width  int
	height int
	data   []float32
}

// NewDepthMap creates a zero-filled depth map.
func NewDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]float32, width*height),
	}
}

// Width returns the width in samples.
func (d *DepthMap) Width() int { return d.width }

// Height returns the height in samples.
func (d *DepthMap) Height() int { return d.height }

// Data returns the raw sample slice, row by row.
func (d *DepthMap) Data() []float32 { return d.data }

// At returns the depth at (x, y), clamping coordinates to the map bounds.
func (d *DepthMap) At(x, y int) float32 {
	if x < 0 {
		x = 0
	} else if x >= d.width {
		x = d.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= d.height {
		y = d.height - 1
	}
	return d.data[y*d.width+x]
}

// Sample bilinearly interpolates the depth at normalized coordinates
// (u, v) in [0,1].
func (d *DepthMap) Sample(u, v float32) float32 {
	fx := u*float32(d.width) - 0.5
	fy := v*float32(d.height) - 0.5
	x0 := int(fx)
	y0 := int(fy)
	if fx < 0 {
		x0--
	}
	if fy < 0 {
		y0--
	}
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	d00 := d.At(x0, y0)
	d10 := d.At(x0+1, y0)
	d01 := d.At(x0, y0+1)
	d11 := d.At(x0+1, y0+1)

	top := d00 + (d10-d00)*tx
	bot := d01 + (d11-d01)*tx
	return top + (bot-top)*ty
}

// Clone returns a deep copy.
func (d *DepthMap) Clone() *DepthMap {
	c := NewDepthMap(d.width, d.height)
	copy(c.data, d.data)
	return c
}
