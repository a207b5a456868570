package pixaro

import (
	"errors"
	"fmt"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this
// operation. The caller should transparently fall back to CPU rendering.
var ErrFallbackToCPU = errors.New("pixaro: falling back to CPU rendering")

// Severity classifies how an Error affects the session.
type Severity uint8

const (
	// SeverityWarning is a degraded but fully usable condition.
	SeverityWarning Severity = iota

	// SeverityError is a failed operation that can be retried.
	SeverityError

	// SeverityFatal is an unrecoverable capability loss (no GPU at all).
	SeverityFatal
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error codes reported on the public surface. Stage-local input problems
// (stale crop, out-of-range slider values) are corrected in place and never
// produce an Error.
const (
	CodeGPUUnavailable = "gpu_unavailable" // no adapter / no compute support
	CodeContextLost    = "context_lost"    // device lost mid-session
	CodeShaderCompile  = "shader_compile"  // stage shader failed to build
	CodeRenderFailed   = "render_failed"   // pipeline could not produce pixels
	CodeDisposed       = "disposed"        // controller used after Dispose
	CodeNoImage        = "no_image"        // render requested with no image
	CodeDepthTimeout   = "depth_timeout"   // remote model never became ready
	CodeDepthQuota     = "depth_quota"     // daily estimation budget exhausted
	CodeDepthRejected  = "depth_rejected"  // remote model rejected the image
)

// Error is the structured error returned by every public entry point for
// expected failure modes. Callers never receive a panic or an untyped error
// for conditions listed in the taxonomy; programmer errors (mismatched
// buffer sizes and the like) are allowed to fail loudly instead.
type Error struct {
	// Code identifies the failure class (Code* constants).
	Code string

	// Severity classifies the impact.
	Severity Severity

	// Recoverable reports whether retrying the operation can succeed
	// (possibly after the controller restores the GPU context).
	Recoverable bool

	// UserMessage is a short, presentable description.
	UserMessage string

	// Details carries diagnostic context not meant for end users.
	Details string

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pixaro: %s (%s): %v", e.Code, e.Severity, e.Err)
	}
	return fmt.Sprintf("pixaro: %s (%s): %s", e.Code, e.Severity, e.UserMessage)
}

// Unwrap returns the wrapped cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates an Error with the given classification.
func NewError(code string, severity Severity, recoverable bool, userMessage string) *Error {
	return &Error{
		Code:        code,
		Severity:    severity,
		Recoverable: recoverable,
		UserMessage: userMessage,
	}
}

// WrapError creates an Error wrapping an underlying cause.
func WrapError(code string, severity Severity, recoverable bool, userMessage string, err error) *Error {
	return &Error{
		Code:        code,
		Severity:    severity,
		Recoverable: recoverable,
		UserMessage: userMessage,
		Err:         err,
	}
}

// AsError extracts a *Error from err, wrapping unknown errors as a
// recoverable render failure so the structured contract holds at the
// boundary.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return WrapError(CodeRenderFailed, SeverityError, true, "rendering failed", err)
}
