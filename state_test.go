package pixaro

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCropValidFor(t *testing.T) {
	tests := []struct {
		name string
		crop Crop
		w, h int
		want bool
	}{
		{"fits exactly", Crop{X: 0, Y: 0, Width: 700, Height: 500}, 700, 500, true},
		{"interior", Crop{X: 10, Y: 20, Width: 100, Height: 100}, 700, 500, true},
		{"stale from larger image", Crop{X: 100, Y: 100, Width: 800, Height: 600}, 700, 500, false},
		{"negative origin", Crop{X: -1, Y: 0, Width: 10, Height: 10}, 700, 500, false},
		{"zero size", Crop{X: 0, Y: 0, Width: 0, Height: 10}, 700, 500, false},
		{"overhangs right", Crop{X: 650, Y: 0, Width: 100, Height: 100}, 700, 500, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.crop.ValidFor(tt.w, tt.h); got != tt.want {
				t.Errorf("ValidFor(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestClampedRanges(t *testing.T) {
	s := DefaultState()
	s.Basic.Exposure = 12
	s.Basic.Contrast = -500
	s.WhiteBalance.Temperature = 100
	s.Geometry.Straighten = 90
	s.LensBlur.FocusDepth = 2
	s.Color.Vibrance = math.NaN()

	c := s.Clamped()
	if c.Basic.Exposure != 5 {
		t.Errorf("exposure = %v, want 5", c.Basic.Exposure)
	}
	if c.Basic.Contrast != -100 {
		t.Errorf("contrast = %v, want -100", c.Basic.Contrast)
	}
	if c.WhiteBalance.Temperature != 2000 {
		t.Errorf("temperature = %v, want 2000", c.WhiteBalance.Temperature)
	}
	if c.Geometry.Straighten != 45 {
		t.Errorf("straighten = %v, want 45", c.Geometry.Straighten)
	}
	if c.LensBlur.FocusDepth != 1 {
		t.Errorf("focusDepth = %v, want 1", c.LensBlur.FocusDepth)
	}
	if math.IsNaN(c.Color.Vibrance) {
		t.Error("vibrance NaN survived clamping")
	}

	// Original untouched.
	if s.Basic.Exposure != 12 {
		t.Error("Clamped mutated the receiver")
	}
}

func TestClampedNonFiniteStraightenIsNoRotation(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
	}{
		{"nan", math.NaN()},
		{"posInf", math.Inf(1)},
		{"negInf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultState()
			s.Geometry.Straighten = tt.angle
			if got := s.Clamped().Geometry.Straighten; got != 0 {
				t.Errorf("straighten = %v, want 0 for a non-finite angle", got)
			}
		})
	}
}

func TestRemovalsCarriedThroughCloneAndJSON(t *testing.T) {
	s := DefaultState()
	s.Removals = []json.RawMessage{
		json.RawMessage(`{"mask":"m1","op":"heal"}`),
		json.RawMessage(`{"mask":"m2","op":"clone","source":[4,5]}`),
	}

	c := s.Clone()
	c.Removals[0][2] = 'X'
	if string(s.Removals[0]) != `{"mask":"m1","op":"heal"}` {
		t.Errorf("clone shares removal records: %s", s.Removals[0])
	}

	// Clamped must not touch the records either.
	cl := s.Clamped()
	if len(cl.Removals) != 2 || string(cl.Removals[1]) != string(s.Removals[1]) {
		t.Errorf("Clamped altered removals: %v", cl.Removals)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var back AdjustmentState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Removals) != 2 {
		t.Fatalf("round trip kept %d removals, want 2", len(back.Removals))
	}
	var rec struct {
		Mask string `json:"mask"`
		Op   string `json:"op"`
	}
	if err := json.Unmarshal(back.Removals[1], &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Mask != "m2" || rec.Op != "clone" {
		t.Errorf("removal record = %+v, want mask m2 op clone", rec)
	}
}

func TestCloneIndependence(t *testing.T) {
	ratio := 1.5
	s := DefaultState()
	s.Geometry.Crop = &Crop{X: 1, Y: 2, Width: 3, Height: 4, AspectRatio: &ratio}

	c := s.Clone()
	c.Geometry.Crop.X = 99
	*c.Geometry.Crop.AspectRatio = 2.0

	if s.Geometry.Crop.X != 1 {
		t.Errorf("clone shares crop: X = %d", s.Geometry.Crop.X)
	}
	if *s.Geometry.Crop.AspectRatio != 1.5 {
		t.Errorf("clone shares aspect ratio: %v", *s.Geometry.Crop.AspectRatio)
	}
}

func TestDefaultStateDisablesOptionalStages(t *testing.T) {
	s := DefaultState()
	if s.WhiteBalance.Enabled || s.Filmic.Enabled || s.Sigmoid.Enabled ||
		s.ColorBalance.Enabled || s.Detail.Guided.Enabled ||
		s.Detail.Laplacian.Enabled || s.LensBlur.Enabled {
		t.Error("default state must not enable any optional stage")
	}
	if s.Basic != (Basic{}) {
		t.Errorf("default basic sliders not neutral: %+v", s.Basic)
	}
	if s.Geometry.Crop != nil {
		t.Error("default state must not carry a crop")
	}
}
