package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/pipeline"
)

func testImage() *pixaro.Image {
	return pixaro.NewImage(8, 8, pixaro.ColorSpaceSRGB)
}

func TestCoalescesBurstToLatestState(t *testing.T) {
	var mu sync.Mutex
	var rendered []float64

	render := func(_ *pixaro.Image, state pixaro.AdjustmentState, _ string) (*pixaro.Image, error) {
		mu.Lock()
		rendered = append(rendered, state.Basic.Exposure)
		mu.Unlock()
		return testImage(), nil
	}

	frames := make(chan Result, 64)
	s := New(render, func(r Result) { frames <- r },
		WithFrameInterval(30*time.Millisecond))
	defer s.Close()

	img := testImage()
	for i := 1; i <= 20; i++ {
		st := pixaro.DefaultState()
		st.Basic.Exposure = float64(i) * 0.1
		s.Request(img, st, "p")
	}

	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered")
	}
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, rendered)
	// The burst must collapse: far fewer renders than requests, and the
	// last render uses the final state.
	assert.Less(t, len(rendered), 20, "burst was not coalesced")
	assert.InDelta(t, 2.0, rendered[len(rendered)-1], 1e-9,
		"last render must use the latest state")
}

func TestDeliversEveryStateEventually(t *testing.T) {
	var count atomic.Int64
	render := func(*pixaro.Image, pixaro.AdjustmentState, string) (*pixaro.Image, error) {
		count.Add(1)
		return testImage(), nil
	}

	done := make(chan struct{}, 8)
	s := New(render, func(Result) { done <- struct{}{} },
		WithFrameInterval(time.Millisecond))
	defer s.Close()

	img := testImage()
	s.Request(img, pixaro.DefaultState(), "p")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("frame not delivered")
	}

	s.Request(img, pixaro.DefaultState(), "p")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second frame not delivered")
	}
	assert.EqualValues(t, 2, count.Load())
}

func TestRenderErrorsSurfaceAsResults(t *testing.T) {
	render := func(*pixaro.Image, pixaro.AdjustmentState, string) (*pixaro.Image, error) {
		return nil, pixaro.NewError(pixaro.CodeRenderFailed, pixaro.SeverityError, true, "boom")
	}

	results := make(chan Result, 1)
	s := New(render, func(r Result) { results <- r },
		WithFrameInterval(time.Millisecond))
	defer s.Close()

	s.Request(testImage(), pixaro.DefaultState(), "p")

	select {
	case r := <-results:
		require.NotNil(t, r.Err)
		assert.Equal(t, pixaro.CodeRenderFailed, r.Err.Code)
		assert.Nil(t, r.Image)
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}
}

func TestPlainErrorsAreWrapped(t *testing.T) {
	render := func(*pixaro.Image, pixaro.AdjustmentState, string) (*pixaro.Image, error) {
		return nil, errors.New("plain failure")
	}

	results := make(chan Result, 1)
	s := New(render, func(r Result) { results <- r },
		WithFrameInterval(time.Millisecond))
	defer s.Close()

	s.Request(testImage(), pixaro.DefaultState(), "p")
	select {
	case r := <-results:
		require.NotNil(t, r.Err)
		assert.NotEmpty(t, r.Err.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}
}

func TestHistogramRateLimit(t *testing.T) {
	render := func(*pixaro.Image, pixaro.AdjustmentState, string) (*pixaro.Image, error) {
		return testImage(), nil
	}

	var histCount atomic.Int64
	frames := make(chan Result, 256)
	s := New(render, func(r Result) { frames <- r },
		WithFrameInterval(time.Millisecond),
		WithHistogram(func(*pipeline.Histogram) { histCount.Add(1) }))
	defer s.Close()

	// Drive renders steadily for ~600ms; at <=2 histograms/second no
	// more than 2 samples can occur.
	img := testImage()
	deadline := time.Now().Add(600 * time.Millisecond)
	for time.Now().Before(deadline) {
		s.Request(img, pixaro.DefaultState(), "p")
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	got := histCount.Load()
	assert.GreaterOrEqual(t, got, int64(1), "histogram never sampled")
	assert.LessOrEqual(t, got, int64(2), "histogram rate limit exceeded")
}

func TestRequestDoesNotShareStateWithCaller(t *testing.T) {
	captured := make(chan *pixaro.Crop, 1)
	render := func(_ *pixaro.Image, st pixaro.AdjustmentState, _ string) (*pixaro.Image, error) {
		captured <- st.Geometry.Crop
		return testImage(), nil
	}

	s := New(render, nil, WithFrameInterval(time.Millisecond))
	defer s.Close()

	st := pixaro.DefaultState()
	st.Geometry.Crop = &pixaro.Crop{X: 1, Y: 1, Width: 4, Height: 4}
	s.Request(testImage(), st, "p")

	select {
	case crop := <-captured:
		require.NotNil(t, crop)
		assert.NotSame(t, st.Geometry.Crop, crop,
			"scheduler must snapshot the state, not alias the caller's")
	case <-time.After(2 * time.Second):
		t.Fatal("render never ran")
	}
}
