// Package depth acquires per-photo depth maps for the lens-blur stage.
//
// The remote protocol is asynchronous: the client submits a downscaled
// JPEG, receives a prediction ID while the model warms up, and polls with
// exponential backoff until the depth map URL resolves or the retry
// budget runs out. A daily request quota is enforced against an untrusted
// persistence record, and finished maps are cached per photo with the
// active photo pinned against eviction. A chunked local heuristic serves
// as the offline fallback.
package depth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nfnt/resize"

	"github.com/pixaro/pixaro"
	"github.com/pixaro/pixaro/internal/cache"
)

// Quality selects the submission resolution.
type Quality string

const (
	QualityNormal Quality = "normal"
	QualityHigh   Quality = "high"
)

// maxSubmitDim returns the long-edge cap for the submitted image.
func maxSubmitDim(q Quality) int {
	if q == QualityHigh {
		return 1024
	}
	return 768
}

// Status is the client's request state machine.
type Status uint8

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusPolling
	StatusReady
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusPolling:
		return "polling"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RetryPolicy bounds the polling loop. Delay for attempt n is
// BaseDelay * 2^n, capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the remote model's typical warm-up window.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 8,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

func (r RetryPolicy) delay(attempt int) time.Duration {
	d := r.BaseDelay << uint(attempt)
	if d > r.MaxDelay || d <= 0 {
		return r.MaxDelay
	}
	return d
}

// DefaultDailyQuota is the request budget per local calendar day.
const DefaultDailyQuota = 25

// DefaultCacheSize is the number of depth maps retained across photos.
const DefaultCacheSize = 8

// Client talks to the depth estimation service. It is safe for concurrent
// use; one remote request runs at a time per Client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      RetryPolicy
	dailyLimit int
	quota      QuotaStore
	now        func() time.Time

	cache  *cache.Cache[string, *pixaro.DepthMap]
	status atomic.Uint32

	// reqMu serializes the remote submit/poll protocol; callers queuing
	// behind it re-check the cache so duplicate requests collapse.
	reqMu sync.Mutex

	mu          sync.Mutex
	activePhoto string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy overrides the polling policy.
func WithRetryPolicy(r RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = r }
}

// WithDailyQuota sets the per-day request budget.
func WithDailyQuota(n int) ClientOption {
	return func(c *Client) { c.dailyLimit = n }
}

// WithQuotaStore installs the persistence collaborator for the quota
// record. Without one the quota is tracked in memory only.
func WithQuotaStore(s QuotaStore) ClientOption {
	return func(c *Client) { c.quota = s }
}

// WithCacheSize sets the number of cached depth maps.
func WithCacheSize(n int) ClientOption {
	return func(c *Client) { c.cache = cache.New[string, *pixaro.DepthMap](n, nil) }
}

// withClock overrides time for tests.
func withClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client against the service base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		retry:      DefaultRetryPolicy(),
		dailyLimit: DefaultDailyQuota,
		quota:      newMemoryQuotaStore(),
		now:        time.Now,
		cache:      cache.New[string, *pixaro.DepthMap](DefaultCacheSize, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current request state.
func (c *Client) Status() Status {
	return Status(c.status.Load())
}

func (c *Client) setStatus(s Status) {
	c.status.Store(uint32(s))
}

// SetActivePhoto pins the given photo's depth map (if cached) against
// eviction and unpins the rest. Call when the edited photo changes.
func (c *Client) SetActivePhoto(photoID string) {
	c.mu.Lock()
	c.activePhoto = photoID
	c.mu.Unlock()
	c.cache.UnpinAll()
	c.cache.Pin(photoID)
}

// Cached returns the cached depth map for the photo, if present.
func (c *Client) Cached(photoID string) (*pixaro.DepthMap, bool) {
	return c.cache.Get(photoID)
}

// DepthMap returns the depth map for the photo, submitting to the remote
// service when it is not cached. The returned map is keyed by photoID:
// callers must discard the result if the edited photo changed while the
// request was in flight.
func (c *Client) DepthMap(ctx context.Context, photoID string, img *pixaro.Image, q Quality) (*pixaro.DepthMap, error) {
	if m, ok := c.cache.Get(photoID); ok {
		return m, nil
	}

	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	// A concurrent caller may have completed this photo while we queued.
	if m, ok := c.cache.Get(photoID); ok {
		return m, nil
	}

	if err := c.consumeQuota(ctx); err != nil {
		c.setStatus(StatusFailed)
		return nil, err
	}

	c.setStatus(StatusSubmitting)
	dm, err := c.request(ctx, img, q)
	if err != nil {
		c.setStatus(StatusFailed)
		return nil, err
	}
	c.setStatus(StatusReady)

	c.cache.Set(photoID, dm)
	c.mu.Lock()
	if photoID == c.activePhoto {
		c.cache.Pin(photoID)
	}
	c.mu.Unlock()
	return dm, nil
}

// Wire format of the depth service.
type depthRequest struct {
	Image        string `json:"image,omitempty"`
	Quality      string `json:"quality,omitempty"`
	PredictionID string `json:"predictionId,omitempty"`
}

type depthResponse struct {
	Success      bool   `json:"success"`
	PredictionID string `json:"predictionId"`
	DepthMapURL  string `json:"depthMapUrl"`
	Error        string `json:"error"`
}

// request runs the submit/poll protocol to completion.
func (c *Client) request(ctx context.Context, img *pixaro.Image, q Quality) (*pixaro.DepthMap, error) {
	payload, err := encodeSubmission(img, q)
	if err != nil {
		return nil, pixaro.WrapError(pixaro.CodeDepthRejected, pixaro.SeverityError, true,
			"Could not prepare the image for depth estimation", err)
	}

	resp, err := c.post(ctx, depthRequest{Image: payload, Quality: string(q)})
	if err != nil {
		return nil, err
	}

	attempt := 0
	for resp.DepthMapURL == "" {
		if resp.PredictionID == "" {
			return nil, pixaro.NewError(pixaro.CodeDepthRejected, pixaro.SeverityError, true,
				"Depth service rejected the image: "+resp.Error)
		}
		if attempt >= c.retry.MaxAttempts {
			return nil, pixaro.NewError(pixaro.CodeDepthTimeout, pixaro.SeverityError, true,
				"Depth estimation timed out while the model was starting")
		}

		c.setStatus(StatusPolling)
		timer := time.NewTimer(c.retry.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, pixaro.WrapError(pixaro.CodeDepthTimeout, pixaro.SeverityError, true,
				"Depth estimation was cancelled", ctx.Err())
		case <-timer.C:
		}
		attempt++

		resp, err = c.post(ctx, depthRequest{PredictionID: resp.PredictionID})
		if err != nil {
			return nil, err
		}
	}

	return c.fetchDepthMap(ctx, resp.DepthMapURL)
}

func (c *Client) post(ctx context.Context, body depthRequest) (*depthResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, pixaro.WrapError(pixaro.CodeDepthRejected, pixaro.SeverityError, false,
			"Could not encode the depth request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/depth", bytes.NewReader(raw))
	if err != nil {
		return nil, pixaro.WrapError(pixaro.CodeDepthRejected, pixaro.SeverityError, false,
			"Could not build the depth request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pixaro.WrapError(pixaro.CodeDepthTimeout, pixaro.SeverityError, true,
			"Depth service is unreachable", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusAccepted {
		return nil, pixaro.NewError(pixaro.CodeDepthRejected, pixaro.SeverityError, true,
			fmt.Sprintf("Depth service returned status %d", httpResp.StatusCode))
	}

	var resp depthResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, pixaro.WrapError(pixaro.CodeDepthRejected, pixaro.SeverityError, true,
			"Depth service returned a malformed response", err)
	}
	return &resp, nil
}

// fetchDepthMap downloads and normalizes the finished depth image.
func (c *Client) fetchDepthMap(ctx context.Context, url string) (*pixaro.DepthMap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pixaro.WrapError(pixaro.CodeDepthRejected, pixaro.SeverityError, true,
			"Invalid depth map location", err)
	}
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pixaro.WrapError(pixaro.CodeDepthTimeout, pixaro.SeverityError, true,
			"Could not download the depth map", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 64<<20))
	if err != nil {
		return nil, pixaro.WrapError(pixaro.CodeDepthTimeout, pixaro.SeverityError, true,
			"Depth map download was interrupted", err)
	}

	dm, err := NormalizeDepthImage(body)
	if err != nil {
		return nil, err
	}
	pixaro.Logger().Debug("depth map ready",
		slog.Int("width", dm.Width()), slog.Int("height", dm.Height()))
	return dm, nil
}

// encodeSubmission downscales the image to the quality cap and encodes it
// as base64 JPEG.
func encodeSubmission(img *pixaro.Image, q Quality) (string, error) {
	rgba := img.ToRGBA()

	maxDim := maxSubmitDim(q)
	w, h := img.Width(), img.Height()
	if w > maxDim || h > maxDim {
		if w >= h {
			rgba = toRGBA(resize.Resize(uint(maxDim), 0, rgba, resize.Lanczos3))
		} else {
			rgba = toRGBA(resize.Resize(0, uint(maxDim), rgba, resize.Lanczos3))
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: 90}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
