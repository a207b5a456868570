package pipeline

import (
	"log/slog"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/internal/parallel"
)

// ToneOperator selects the optional compression applied to out-of-range
// linear values just before the sRGB encode.
type ToneOperator uint8

const (
	// ToneClip hard-clips to [0,1] during encoding.
	ToneClip ToneOperator = iota

	// ToneReinhard applies x/(1+x) compression.
	ToneReinhard

	// ToneACES applies the ACES filmic approximation.
	ToneACES
)

// Pipeline applies adjustment stages to images. It owns a worker pool for
// row-parallel stages and is safe for sequential reuse across photos; a
// single Pipeline must not run concurrent Render calls.
type Pipeline struct {
	pool     *parallel.WorkerPool
	depth    *pixaro.DepthMap
	depthID  string
	tone     ToneOperator
	useAccel bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithToneOperator selects the pre-encode compression for values above
// 1.0. The default is ToneClip, which leaves in-range images bit-stable.
func WithToneOperator(op ToneOperator) Option {
	return func(p *Pipeline) { p.tone = op }
}

// WithWorkers sets the worker count for row-parallel stages. Zero or
// negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.pool.Close()
		p.pool = parallel.NewWorkerPool(n)
	}
}

// WithoutAcceleration disables the registered GPU accelerator for this
// pipeline, forcing the CPU reference path.
func WithoutAcceleration() Option {
	return func(p *Pipeline) { p.useAccel = false }
}

// New creates a pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		pool:     parallel.NewWorkerPool(0),
		useAccel: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close releases the worker pool.
func (p *Pipeline) Close() {
	p.pool.Close()
}

// SetDepthMap installs the depth map for the given photo. The lens-blur
// stage only consumes it when the rendered photo ID matches, so a late
// arrival for a previous photo can never blur the wrong image.
func (p *Pipeline) SetDepthMap(photoID string, depth *pixaro.DepthMap) {
	p.depthID = photoID
	p.depth = depth
}

// Render applies the adjustment snapshot to the source image and returns
// the finished sRGB frame. The source and state are never mutated.
// photoID associates the render with depth-map deliveries; pass "" when
// lens blur is unused.
func (p *Pipeline) Render(src *pixaro.Image, state pixaro.AdjustmentState, photoID string) (*pixaro.Image, error) {
	if src == nil || src.Width() == 0 || src.Height() == 0 {
		return nil, pixaro.NewError(pixaro.CodeNoImage, pixaro.SeverityError, true,
			"No image is loaded")
	}
	s := state.Clamped()

	// Fast path: a state that is purely pointwise can run fused on the
	// GPU; any failure there falls through to the CPU stages.
	if out, ok := p.tryAccelerated(src, &s); ok {
		return out, nil
	}

	// Stage 1: geometry, then linearize into the working buffer.
	buf := p.applyGeometry(src, &s)

	p.applyBasic(buf, &s.Basic)

	if s.WhiteBalance.Enabled {
		p.applyWhiteBalance(buf, &s.WhiteBalance)
	}
	if s.Filmic.Enabled {
		p.applyFilmic(buf, &s.Filmic)
	}
	if s.Sigmoid.Enabled {
		p.applySigmoid(buf, &s.Sigmoid)
	}
	if s.ColorBalance.Enabled {
		p.applyColorBalance(buf, &s.ColorBalance)
	}
	p.applyVibranceSaturation(buf, &s.Color)
	p.applyHSLMixer(buf, &s.HSL)
	p.applyDetail(buf, &s.Detail)

	if s.LensBlur.Enabled && p.depth != nil && p.depthID == photoID {
		if s.LensBlur.ShowDepth {
			p.renderDepthOverlay(buf)
		} else {
			p.applyLensBlur(buf, &s.LensBlur)
		}
	}
	p.applyEffects(buf, &s.Effects)

	out := p.encode(buf)
	return out, nil
}

// RenderOriginal renders the image with every module at its default,
// producing the unedited photo for comparison view. The caller's state is
// untouched.
func (p *Pipeline) RenderOriginal(src *pixaro.Image) (*pixaro.Image, error) {
	return p.Render(src, pixaro.DefaultState(), "")
}

// applyGeometry validates and applies the crop, applies straightening, and
// converts the result to linear light. A crop that does not fit the
// current image is dropped and logged, never clamped.
func (p *Pipeline) applyGeometry(src *pixaro.Image, s *pixaro.AdjustmentState) *pixaro.Image {
	work := src

	if c := s.Geometry.Crop; c != nil {
		if c.ValidFor(src.Width(), src.Height()) {
			work = cropImage(src, *c)
		} else {
			pixaro.Logger().Warn("dropping stale crop",
				slog.Int("cropW", c.Width), slog.Int("cropH", c.Height),
				slog.Int("imageW", src.Width()), slog.Int("imageH", src.Height()))
		}
	}

	if s.Geometry.Straighten != 0 {
		work = rotateImage(work, s.Geometry.Straighten, p.pool)
	} else if work == src {
		work = src.Clone()
	}

	p.linearize(work)
	return work.WithSpace(pixaro.ColorSpaceLinear)
}

// linearize converts the buffer from encoded sRGB to linear in place.
func (p *Pipeline) linearize(img *pixaro.Image) {
	if img.Space() != pixaro.ColorSpaceSRGB {
		return
	}
	data := img.Data()
	w := img.Width()
	p.pool.ForRows(img.Height(), func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			data[i] = srgbToLinearLUT(data[i])
			data[i+1] = srgbToLinearLUT(data[i+1])
			data[i+2] = srgbToLinearLUT(data[i+2])
		}
	})
}
