package pipeline

import (
	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/colorspace"
)

// applyWhiteBalance adapts the scene white point via the Bradford matrix
// derived from the temperature/tint sliders.
func (p *Pipeline) applyWhiteBalance(buf *pixaro.Image, wb *pixaro.WhiteBalance) {
	m := colorspace.WhiteBalanceMatrix(wb.Temperature, wb.Tint).Float32()

	data := buf.Data()
	w := buf.Width()
	p.pool.ForRows(buf.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			r, g, b := data[i], data[i+1], data[i+2]
			nr := m[0]*r + m[1]*g + m[2]*b
			ng := m[3]*r + m[4]*g + m[5]*b
			nb := m[6]*r + m[7]*g + m[8]*b
			if nr < 0 {
				nr = 0
			}
			if ng < 0 {
				ng = 0
			}
			if nb < 0 {
				nb = 0
			}
			data[i], data[i+1], data[i+2] = nr, ng, nb
		}
	})
}
