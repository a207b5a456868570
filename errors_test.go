package pixaro

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("device lost")
	e := WrapError(CodeContextLost, SeverityError, true, "GPU context lost", cause)
	if !errors.Is(e, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}

	wrapped := fmt.Errorf("render: %w", e)
	got := AsError(wrapped)
	if got.Code != CodeContextLost {
		t.Errorf("code = %q, want %q", got.Code, CodeContextLost)
	}
}

func TestAsErrorFallback(t *testing.T) {
	plain := errors.New("something broke")
	e := AsError(plain)
	if e.Code != CodeRenderFailed {
		t.Errorf("code = %q, want %q", e.Code, CodeRenderFailed)
	}
	if !e.Recoverable {
		t.Error("plain errors should map to a recoverable error")
	}
	if !errors.Is(e, plain) {
		t.Error("original error not preserved")
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityFatal.String() != "fatal" {
		t.Errorf("fatal = %q", SeverityFatal.String())
	}
	if Severity(99).String() != "unknown" {
		t.Errorf("bogus severity = %q", Severity(99).String())
	}
}

func TestDepthMapSample(t *testing.T) {
	d := NewDepthMap(2, 2)
	copy(d.Data(), []float32{0, 1, 0, 1})

	if got := d.Sample(0.25, 0.5); got != 0 {
		t.Errorf("Sample left = %v, want 0", got)
	}
	if got := d.Sample(0.75, 0.5); got != 1 {
		t.Errorf("Sample right = %v, want 1", got)
	}
	mid := d.Sample(0.5, 0.5)
	if mid < 0.49 || mid > 0.51 {
		t.Errorf("Sample center = %v, want 0.5", mid)
	}
}
