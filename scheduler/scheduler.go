// Package scheduler coalesces adjustment changes into frames.
//
// Interactive sliders can emit hundreds of state changes per second. The
// scheduler keeps a single pending request per frame slot: requests
// arriving before the next frame boundary replace each other, the renderer
// only ever sees the latest snapshot, and a superseded request is
// discarded without being partially executed. Histogram sampling is
// decoupled from frame delivery and rate-limited.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/pipeline"
)

// RenderFunc produces a frame from a source image and adjustment
// snapshot.
type RenderFunc func(img *pixaro.Image, state pixaro.AdjustmentState, photoID string) (*pixaro.Image, error)

// Result is a finished frame delivery. Err is set when the render failed;
// Image is nil in that case.
type Result struct {
	Image *pixaro.Image
	Err   *pixaro.Error
}

// request is one coalescible render request.
type request struct {
	img     *pixaro.Image
	state   pixaro.AdjustmentState
	photoID string
	seq     uint64
}

// Scheduler serializes renders to one per frame interval, last write
// wins. It owns a single worker goroutine; Request is safe to call from
// any goroutine.
type Scheduler struct {
	render      RenderFunc
	onFrame     func(Result)
	onHistogram func(*pipeline.Histogram)

	frameInterval time.Duration
	histInterval  time.Duration

	mu      sync.Mutex
	pending *request
	seq     uint64

	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithFrameInterval sets the minimum spacing between renders. The default
// is 16ms, one display frame at 60Hz.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.frameInterval = d }
}

// WithHistogram installs a histogram consumer. Histograms are sampled at
// most twice per second from delivered frames.
func WithHistogram(fn func(*pipeline.Histogram)) Option {
	return func(s *Scheduler) { s.onHistogram = fn }
}

// New creates and starts a scheduler. onFrame receives every delivered
// frame (or failure) on the scheduler goroutine and must not block for
// long.
func New(render RenderFunc, onFrame func(Result), opts ...Option) *Scheduler {
	s := &Scheduler{
		render:        render,
		onFrame:       onFrame,
		frameInterval: 16 * time.Millisecond,
		histInterval:  500 * time.Millisecond,
		notify:        make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

// Request submits a render. If another request is already waiting for the
// next frame slot it is replaced, not queued.
func (s *Scheduler) Request(img *pixaro.Image, state pixaro.AdjustmentState, photoID string) {
	s.mu.Lock()
	s.seq++
	replaced := s.pending != nil
	s.pending = &request{img: img, state: state.Clone(), photoID: photoID, seq: s.seq}
	s.mu.Unlock()

	if replaced {
		pixaro.Logger().Debug("render request superseded")
	}
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Close stops the worker. A pending request that has not started is
// dropped. Close is safe to call once.
func (s *Scheduler) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	var lastFrame time.Time
	var lastHist time.Time

	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
		}

		// Frame pacing: wait out the remainder of the frame interval so
		// bursts coalesce into the latest snapshot.
		if wait := s.frameInterval - time.Since(lastFrame); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-s.done:
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		s.mu.Lock()
		req := s.pending
		s.pending = nil
		s.mu.Unlock()
		if req == nil {
			continue
		}

		lastFrame = time.Now()
		frame, err := s.render(req.img, req.state, req.photoID)

		var res Result
		if err != nil {
			res.Err = pixaro.AsError(err)
			pixaro.Logger().Warn("render failed",
				slog.String("code", res.Err.Code),
				slog.String("error", res.Err.Error()))
		} else {
			res.Image = frame
		}
		if s.onFrame != nil {
			s.onFrame(res)
		}

		if res.Image != nil && s.onHistogram != nil &&
			time.Since(lastHist) >= s.histInterval {
			lastHist = time.Now()
			s.onHistogram(pipeline.ComputeHistogram(res.Image))
		}
	}
}
