// Package health owns the GPU lifecycle around the adjustment pipeline.
//
// The controller is an explicit state machine: Uninitialized -> Ready ->
// ContextLost -> Ready (restored) or Disposed. Every render goes through
// it, so callers get a uniform {success, error} result and never a panic
// for an expected failure mode. The controller is the only component that
// touches GPU resources; restoration recreates them, reloads the held
// image and replays the last adjustment snapshot.
package health

import (
	"log/slog"
	"sync"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/pipeline"
)

// State is the controller lifecycle state.
type State uint8

const (
	StateUninitialized State = iota
	StateReady
	StateContextLost
	StateDisposed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateContextLost:
		return "context-lost"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a controller operation. Err is non-nil exactly
// when Success is false, except for the one-time degraded-mode warning
// which reports an error alongside success.
type Result struct {
	Success bool
	Image   *pixaro.Image
	Err     *pixaro.Error
}

// Controller guards the pipeline with the lifecycle state machine.
// All methods are safe for concurrent use; renders are serialized.
type Controller struct {
	mu    sync.Mutex
	state State
	pipe  *pixaroPipeline

	// degraded is set when no GPU acceleration is available; rendering
	// continues on the CPU path.
	degraded      bool
	fatalReported bool

	// Last successful inputs, replayed on restoration.
	lastImage   *pixaro.Image
	lastState   pixaro.AdjustmentState
	lastPhotoID string
	hasLast     bool
}

// pixaroPipeline is the slice of pipeline.Pipeline the controller uses,
// extracted so tests can inject failures.
type pixaroPipeline struct {
	p      *pipeline.Pipeline
	render func(*pixaro.Image, pixaro.AdjustmentState, string) (*pixaro.Image, error)
}

// NewController creates an uninitialized controller around a pipeline.
func NewController(p *pipeline.Pipeline) *Controller {
	return &Controller{
		pipe: &pixaroPipeline{p: p, render: p.Render},
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initialize detects rendering capability and moves to Ready. With no
// registered GPU accelerator the controller still becomes Ready in
// degraded (CPU) mode, and the returned result carries the one-time fatal
// capability error; subsequent calls do not repeat it.
func (c *Controller) Initialize() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisposed {
		return disposedResult()
	}
	if c.state == StateReady {
		return Result{Success: true}
	}

	res := Result{Success: true}
	if pixaro.GetAccelerator() == nil {
		c.degraded = true
		if !c.fatalReported {
			c.fatalReported = true
			res.Err = pixaro.NewError(pixaro.CodeGPUUnavailable, pixaro.SeverityFatal, false,
				"GPU acceleration is unavailable; falling back to software rendering")
			pixaro.Logger().Warn("no GPU accelerator registered, entering degraded mode")
		}
	}
	c.state = StateReady
	return res
}

// Render runs the pipeline for the given inputs. The inputs are retained
// for replay after a context restoration.
func (c *Controller) Render(img *pixaro.Image, state pixaro.AdjustmentState, photoID string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateDisposed:
		return disposedResult()
	case StateUninitialized:
		return Result{Err: pixaro.NewError(pixaro.CodeRenderFailed, pixaro.SeverityError, true,
			"Renderer is not initialized")}
	case StateContextLost:
		return Result{Err: pixaro.NewError(pixaro.CodeContextLost, pixaro.SeverityError, true,
			"GPU context lost; restore in progress")}
	}

	return c.renderLocked(img, state, photoID)
}

func (c *Controller) renderLocked(img *pixaro.Image, state pixaro.AdjustmentState, photoID string) Result {
	frame, err := c.pipe.render(img, state, photoID)
	if err != nil {
		e := pixaro.AsError(err)
		if e.Code == pixaro.CodeContextLost {
			// Resource-lifecycle failures move the state machine; the
			// caller retries after restoration.
			c.state = StateContextLost
		}
		return Result{Err: e}
	}

	c.lastImage = img
	c.lastState = state.Clone()
	c.lastPhotoID = photoID
	c.hasLast = true
	return Result{Success: true, Image: frame}
}

// SetDepthMap forwards a depth map to the pipeline under the controller's
// lock, keeping GPU ownership in one place.
func (c *Controller) SetDepthMap(photoID string, depth *pixaro.DepthMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		return
	}
	c.pipe.p.SetDepthMap(photoID, depth)
}

// NotifyContextLost records a GPU context loss. The controller absorbs
// the event (no automatic runtime recovery runs underneath it) and waits
// for Restore. Repeated notifications are idempotent.
func (c *Controller) NotifyContextLost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return
	}
	c.state = StateContextLost
	pixaro.Logger().Warn("GPU context lost", slog.String("state", c.state.String()))
}

// Restore recreates GPU resources and replays the most recent render.
// Restoring twice in a row produces the same pixels as restoring once:
// reinitializing the accelerator is idempotent and the replay re-runs the
// identical retained snapshot.
func (c *Controller) Restore() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateDisposed:
		return disposedResult()
	case StateUninitialized:
		return Result{Err: pixaro.NewError(pixaro.CodeRenderFailed, pixaro.SeverityError, true,
			"Renderer is not initialized")}
	}

	if accel := pixaro.GetAccelerator(); accel != nil {
		// Recreate device resources before touching the pipeline again.
		accel.Close()
		if err := accel.Init(); err != nil {
			c.degraded = true
			pixaro.Logger().Warn("accelerator reinit failed, staying on CPU path",
				slog.String("error", err.Error()))
		}
	}
	c.state = StateReady

	if !c.hasLast {
		return Result{Success: true}
	}
	return c.renderLocked(c.lastImage, c.lastState, c.lastPhotoID)
}

// Degraded reports whether the controller is running without GPU
// acceleration.
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// Dispose releases the pipeline and moves to the terminal state. Safe to
// call multiple times.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		return
	}
	c.state = StateDisposed
	c.lastImage = nil
	c.hasLast = false
	c.pipe.p.Close()
}

func disposedResult() Result {
	return Result{Err: pixaro.NewError(pixaro.CodeDisposed, pixaro.SeverityError, false,
		"Renderer has been disposed")}
}
