package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestExecuteAllRunsEverything(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Close()

	var count atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { count.Add(1) }
	}
	p.ExecuteAll(work)

	if count.Load() != 100 {
		t.Errorf("executed %d items, want 100", count.Load())
	}
}

func TestForRowsCoversAllRows(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Close()

	const height = 123
	seen := make([]atomic.Int32, height)
	p.ForRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			seen[y].Add(1)
		}
	})

	for y := range seen {
		if seen[y].Load() != 1 {
			t.Fatalf("row %d visited %d times", y, seen[y].Load())
		}
	}
}

func TestForRowsSmallHeightRunsInline(t *testing.T) {
	p := NewWorkerPool(8)
	defer p.Close()

	calls := 0
	p.ForRows(3, func(y0, y1 int) {
		calls++
		if y0 != 0 || y1 != 3 {
			t.Errorf("band = [%d,%d), want [0,3)", y0, y1)
		}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCloseWaitsForQueuedWork(t *testing.T) {
	p := NewWorkerPool(2)

	var mu sync.Mutex
	done := 0
	work := make([]func(), 20)
	for i := range work {
		work[i] = func() {
			mu.Lock()
			done++
			mu.Unlock()
		}
	}
	p.ExecuteAll(work)
	p.Close()

	if done != 20 {
		t.Errorf("done = %d, want 20", done)
	}
	// Close is idempotent.
	p.Close()
}

func TestDefaultWorkerCount(t *testing.T) {
	p := NewWorkerPool(0)
	defer p.Close()
	if p.Workers() < 1 {
		t.Errorf("Workers = %d", p.Workers())
	}
}
