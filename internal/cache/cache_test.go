package cache

import "testing"

func TestCacheEvictsLRU(t *testing.T) {
	var evicted []string
	c := New[string, int](2, func(k string, _ int) { evicted = append(evicted, k) })

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
}

func TestCachePinnedEntrySurvives(t *testing.T) {
	c := New[string, int](2, nil)
	c.Set("active", 1)
	c.Pin("active")
	c.Set("b", 2)
	c.Get("b") // active is now least recent
	c.Set("c", 3)

	if _, ok := c.Get("active"); !ok {
		t.Error("pinned entry was evicted")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("unpinned LRU entry should have been evicted instead")
	}

	c.Unpin("active")
	c.Set("d", 4)
	c.Set("e", 5)
	if _, ok := c.Get("active"); ok {
		t.Error("unpinned entry should be evictable again")
	}
}

func TestCacheAllPinnedGrowsPastCapacity(t *testing.T) {
	c := New[string, int](1, nil)
	c.Set("a", 1)
	c.Pin("a")
	c.Set("b", 2)
	c.Pin("b")
	c.Set("c", 3)

	if c.Len() < 3 {
		t.Errorf("Len = %d, want 3 (pinned entries must not be dropped)", c.Len())
	}
}

func TestCacheSetUpdatesExisting(t *testing.T) {
	c := New[string, int](2, nil)
	c.Set("a", 1)
	c.Set("a", 9)
	if v, _ := c.Get("a"); v != 9 {
		t.Errorf("a = %d, want 9", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	calls := 0
	c := New[string, int](0, func(string, int) { calls++ })
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still present")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	if calls != 0 {
		t.Error("Delete/Clear must not invoke the eviction callback")
	}
}
