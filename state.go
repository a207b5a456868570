package pixaro

import (
	"encoding/json"
	"math"
)

// AdjustmentState is the complete, serializable description of every edit
// applied to a photo. It is a plain value: each render consumes a snapshot
// and the pipeline never mutates it. A group with Enabled=false is a strict
// no-op for its stage.
type AdjustmentState struct {
	Basic        Basic        `json:"basic"`
	WhiteBalance WhiteBalance `json:"whiteBalance"`
	Color        ColorAdjust  `json:"color"`
	HSL          HSLMixer     `json:"hsl"`
	Filmic       Filmic       `json:"filmic"`
	Sigmoid      Sigmoid      `json:"sigmoid"`
	ColorBalance ColorBalance `json:"colorBalance"`
	Detail       Detail       `json:"detail"`
	Effects      Effects      `json:"effects"`
	Geometry     Geometry     `json:"geometry"`
	LensBlur     LensBlur     `json:"lensBlur"`

	// Removals is the ordered list of removal/healing records. The engine
	// does not interpret them; they are carried verbatim so a state round
	// trip preserves edits applied by an external healing tool.
	Removals []json.RawMessage `json:"removals,omitempty"`
}

// Basic holds the tonal sliders. Exposure is in EV stops; the rest are
// percentages in [-100,100].
type Basic struct {
	Exposure   float64 `json:"exposure"`
	Contrast   float64 `json:"contrast"`
	Highlights float64 `json:"highlights"`
	Shadows    float64 `json:"shadows"`
	Whites     float64 `json:"whites"`
	Blacks     float64 `json:"blacks"`
}

// WhiteBalance adapts the scene white point. Temperature is in Kelvin,
// tint in [-150,150] (negative green, positive magenta).
type WhiteBalance struct {
	Enabled     bool    `json:"enabled"`
	Temperature float64 `json:"temperature"`
	Tint        float64 `json:"tint"`
}

// ColorAdjust holds the global vibrance and saturation sliders, [-100,100].
type ColorAdjust struct {
	Vibrance   float64 `json:"vibrance"`
	Saturation float64 `json:"saturation"`
}

// HSLBand is one hue bucket of the HSL mixer; all shifts are in [-100,100].
type HSLBand struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Luminance  float64 `json:"luminance"`
}

// HSL mixer bucket indices, in hue order starting at red.
const (
	BandRed = iota
	BandOrange
	BandYellow
	BandGreen
	BandAqua
	BandBlue
	BandPurple
	BandMagenta
	BandCount
)

// HSLMixer shifts hue, saturation and luminance per named hue bucket.
type HSLMixer struct {
	Bands [BandCount]HSLBand `json:"bands"`
}

// ContrastShape selects the shoulder/toe shape of the filmic curve.
type ContrastShape uint8

const (
	ContrastSoft ContrastShape = iota
	ContrastHard
	ContrastSafe
)

// Filmic is the filmic tone-compression stage. White and black points are
// relative EV, latitude is a percentage of the dynamic range kept linear.
type Filmic struct {
	Enabled           bool          `json:"enabled"`
	WhitePoint        float64       `json:"whitePoint"`
	BlackPoint        float64       `json:"blackPoint"`
	Latitude          float64       `json:"latitude"`
	Balance           float64       `json:"balance"`
	ShadowContrast    ContrastShape `json:"shadowContrast"`
	HighlightContrast ContrastShape `json:"highlightContrast"`
}

// Sigmoid is the sigmoid tone-compression stage. When both Filmic and
// Sigmoid are enabled, Filmic runs first.
type Sigmoid struct {
	Enabled    bool    `json:"enabled"`
	Contrast   float64 `json:"contrast"`
	Skew       float64 `json:"skew"`
	MiddleGrey float64 `json:"middleGrey"`
}

// BalanceZone is one tonal zone of the color-balance stage. Hue is in
// radians; luminance and chroma are signed offsets.
type BalanceZone struct {
	Luminance float64 `json:"luminance"`
	Chroma    float64 `json:"chroma"`
	Hue       float64 `json:"hue"`
}

// ColorBalance is the four-zone color grading stage, applied in a
// perceptually uniform space.
type ColorBalance struct {
	Enabled         bool        `json:"enabled"`
	Shadows          BalanceZone `json:"shadows"`
	Midtones         BalanceZone `json:"midtones"`
	Highlights       BalanceZone `json:"highlights"`
	Global           BalanceZone `json:"global"`
	ShadowsWeight    float64     `json:"shadowsWeight"`
	HighlightsWeight float64     `json:"highlightsWeight"`
	GreyFulcrum      float64     `json:"greyFulcrum"`
	Contrast         float64     `json:"contrast"`
	ContrastFulcrum  float64     `json:"contrastFulcrum"`
	Vibrance         float64     `json:"vibrance"`
}

// GuidedFilter is the edge-aware smoothing/texture control.
type GuidedFilter struct {
	Enabled  bool    `json:"enabled"`
	Radius   int     `json:"radius"`
	Epsilon  float64 `json:"epsilon"`
	Strength float64 `json:"strength"`
}

// LocalLaplacian is the multi-scale local contrast control.
type LocalLaplacian struct {
	Enabled  bool    `json:"enabled"`
	Detail   float64 `json:"detail"`
	Coarse   float64 `json:"coarse"`
	Strength float64 `json:"strength"`
}

// Sharpen is classic unsharp masking. Threshold gates low-amplitude
// differences so noise is not amplified.
type Sharpen struct {
	Amount    float64 `json:"amount"`
	Radius    float64 `json:"radius"`
	Threshold float64 `json:"threshold"`
}

// Detail groups the three detail controls, applied guided filter first,
// then local Laplacian, then sharpening.
type Detail struct {
	Guided    GuidedFilter   `json:"guided"`
	Laplacian LocalLaplacian `json:"laplacian"`
	Sharpen   Sharpen        `json:"sharpen"`
}

// GrainSize selects the procedural grain kernel scale.
type GrainSize uint8

const (
	GrainFine GrainSize = iota
	GrainMedium
	GrainCoarse
)

// Effects holds the finishing effects: vignette and film grain.
type Effects struct {
	VignetteAmount   float64   `json:"vignetteAmount"`
	VignetteMidpoint float64   `json:"vignetteMidpoint"`
	VignetteFeather  float64   `json:"vignetteFeather"`
	GrainAmount      float64   `json:"grainAmount"`
	GrainSize        GrainSize `json:"grainSize"`
	GrainRoughness   float64   `json:"grainRoughness"`
}

// Crop is a pixel-space crop rectangle. It is only meaningful for the
// image it was computed against; the pipeline re-validates it per render.
type Crop struct {
	X           int      `json:"x"`
	Y           int      `json:"y"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	AspectRatio *float64 `json:"aspectRatio"`
}

// ValidFor reports whether the crop lies fully inside a w×h image.
func (c Crop) ValidFor(w, h int) bool {
	return c.X >= 0 && c.Y >= 0 && c.Width > 0 && c.Height > 0 &&
		c.X+c.Width <= w && c.Y+c.Height <= h
}

// Geometry holds the crop and straighten controls. A nil Crop means the
// full frame. Straighten is in degrees, [-45,45].
type Geometry struct {
	Crop       *Crop   `json:"crop"`
	Straighten float64 `json:"straighten"`
}

// LensBlur is the depth-aware background blur. FocusDepth and FocusRange
// are in normalized depth [0,1] (0 far, 1 near); pixels whose depth lies
// within FocusRange of FocusDepth stay sharp.
type LensBlur struct {
	Enabled    bool    `json:"enabled"`
	Amount     float64 `json:"amount"`
	FocusDepth float64 `json:"focusDepth"`
	FocusRange float64 `json:"focusRange"`
	ShowDepth  bool    `json:"showDepth"`
}

// DefaultState returns the neutral state a freshly loaded photo starts
// with. Rendering it must reproduce the source image exactly.
func DefaultState() AdjustmentState {
	return AdjustmentState{
		WhiteBalance: WhiteBalance{Temperature: 6500},
		Filmic: Filmic{
			WhitePoint: 4,
			BlackPoint: -8,
			Latitude:   33,
		},
		Sigmoid: Sigmoid{
			Contrast:   1.5,
			MiddleGrey: 0.1845,
		},
		ColorBalance: ColorBalance{
			ShadowsWeight:    1,
			HighlightsWeight: 1,
			GreyFulcrum:      0.1845,
			ContrastFulcrum:  0.1845,
		},
		Detail: Detail{
			Guided:    GuidedFilter{Radius: 8, Epsilon: 0.01},
			Laplacian: LocalLaplacian{Strength: 1},
			Sharpen:   Sharpen{Radius: 1},
		},
		Effects: Effects{
			VignetteMidpoint: 0.5,
			VignetteFeather:  0.5,
			GrainSize:        GrainMedium,
		},
		LensBlur: LensBlur{FocusRange: 0.1},
	}
}

// Clone returns an independent deep copy of the state.
func (s AdjustmentState) Clone() AdjustmentState {
	c := s
	if s.Geometry.Crop != nil {
		crop := *s.Geometry.Crop
		if s.Geometry.Crop.AspectRatio != nil {
			ratio := *s.Geometry.Crop.AspectRatio
			crop.AspectRatio = &ratio
		}
		c.Geometry.Crop = &crop
	}
	if s.Removals != nil {
		c.Removals = make([]json.RawMessage, len(s.Removals))
		for i, r := range s.Removals {
			c.Removals[i] = append(json.RawMessage(nil), r...)
		}
	}
	return c
}

// Clamped returns a copy with every numeric parameter forced into its
// documented range. The producer is expected to enforce ranges already;
// this is the defensive bound the pipeline applies so out-of-contract
// values degrade instead of crashing.
func (s AdjustmentState) Clamped() AdjustmentState {
	c := s.Clone()
	c.Basic.Exposure = clampF(c.Basic.Exposure, -5, 5)
	c.Basic.Contrast = clampF(c.Basic.Contrast, -100, 100)
	c.Basic.Highlights = clampF(c.Basic.Highlights, -100, 100)
	c.Basic.Shadows = clampF(c.Basic.Shadows, -100, 100)
	c.Basic.Whites = clampF(c.Basic.Whites, -100, 100)
	c.Basic.Blacks = clampF(c.Basic.Blacks, -100, 100)

	c.WhiteBalance.Temperature = clampF(c.WhiteBalance.Temperature, 2000, 25000)
	c.WhiteBalance.Tint = clampF(c.WhiteBalance.Tint, -150, 150)

	c.Color.Vibrance = clampF(c.Color.Vibrance, -100, 100)
	c.Color.Saturation = clampF(c.Color.Saturation, -100, 100)

	for i := range c.HSL.Bands {
		b := &c.HSL.Bands[i]
		b.Hue = clampF(b.Hue, -100, 100)
		b.Saturation = clampF(b.Saturation, -100, 100)
		b.Luminance = clampF(b.Luminance, -100, 100)
	}

	c.Filmic.WhitePoint = clampF(c.Filmic.WhitePoint, 0.1, 16)
	c.Filmic.BlackPoint = clampF(c.Filmic.BlackPoint, -16, -0.1)
	c.Filmic.Latitude = clampF(c.Filmic.Latitude, 1, 99)
	c.Filmic.Balance = clampF(c.Filmic.Balance, -50, 50)

	c.Sigmoid.Contrast = clampF(c.Sigmoid.Contrast, 0.1, 10)
	c.Sigmoid.Skew = clampF(c.Sigmoid.Skew, -5, 5)
	c.Sigmoid.MiddleGrey = clampF(c.Sigmoid.MiddleGrey, 0.01, 0.5)

	c.ColorBalance.ShadowsWeight = clampF(c.ColorBalance.ShadowsWeight, 0, 3)
	c.ColorBalance.HighlightsWeight = clampF(c.ColorBalance.HighlightsWeight, 0, 3)
	c.ColorBalance.GreyFulcrum = clampF(c.ColorBalance.GreyFulcrum, 0.01, 0.5)
	c.ColorBalance.ContrastFulcrum = clampF(c.ColorBalance.ContrastFulcrum, 0.01, 0.5)
	c.ColorBalance.Contrast = clampF(c.ColorBalance.Contrast, -1, 1)
	c.ColorBalance.Vibrance = clampF(c.ColorBalance.Vibrance, -1, 1)

	if c.Detail.Guided.Radius < 1 {
		c.Detail.Guided.Radius = 1
	}
	if c.Detail.Guided.Radius > 64 {
		c.Detail.Guided.Radius = 64
	}
	c.Detail.Guided.Epsilon = clampF(c.Detail.Guided.Epsilon, 1e-6, 1)
	c.Detail.Guided.Strength = clampF(c.Detail.Guided.Strength, -1, 1)
	c.Detail.Laplacian.Detail = clampF(c.Detail.Laplacian.Detail, -1, 1)
	c.Detail.Laplacian.Coarse = clampF(c.Detail.Laplacian.Coarse, -1, 1)
	c.Detail.Laplacian.Strength = clampF(c.Detail.Laplacian.Strength, 0, 2)
	c.Detail.Sharpen.Amount = clampF(c.Detail.Sharpen.Amount, 0, 300)
	c.Detail.Sharpen.Radius = clampF(c.Detail.Sharpen.Radius, 0.1, 10)
	c.Detail.Sharpen.Threshold = clampF(c.Detail.Sharpen.Threshold, 0, 1)

	c.Effects.VignetteAmount = clampF(c.Effects.VignetteAmount, -100, 100)
	c.Effects.VignetteMidpoint = clampF(c.Effects.VignetteMidpoint, 0, 1)
	c.Effects.VignetteFeather = clampF(c.Effects.VignetteFeather, 0, 1)
	c.Effects.GrainAmount = clampF(c.Effects.GrainAmount, 0, 100)
	c.Effects.GrainRoughness = clampF(c.Effects.GrainRoughness, 0, 1)

	// A non-finite angle means no rotation, not the clamp floor; check
	// before clampF maps NaN into range.
	if !validAngle(c.Geometry.Straighten) {
		c.Geometry.Straighten = 0
	}
	c.Geometry.Straighten = clampF(c.Geometry.Straighten, -45, 45)

	c.LensBlur.Amount = clampF(c.LensBlur.Amount, 0, 100)
	c.LensBlur.FocusDepth = clampF(c.LensBlur.FocusDepth, 0, 1)
	c.LensBlur.FocusRange = clampF(c.LensBlur.FocusRange, 0, 1)

	return c
}

func validAngle(deg float64) bool {
	return !math.IsNaN(deg) && !math.IsInf(deg, 0)
}

func clampF(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
