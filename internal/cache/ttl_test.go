package cache

import (
	"os"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTTLCache_ExpiryBoundary(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewTTLCacheWithClock[string](clock.Now)

	c.Set("feed", "value", time.Hour)

	clock.Advance(59 * time.Minute)
	if v, ok := c.Get("feed"); !ok || v != "value" {
		t.Fatalf("Expected value at T+59m, got %q (found=%v)", v, ok)
	}

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("feed"); ok {
		t.Fatal("Expected entry to be absent at T+61m")
	}

	if c.Len() != 0 {
		t.Errorf("Expected expired entry to be evicted on read, len=%d", c.Len())
	}
}

func TestTTLCache_SetReplacesWholeValue(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewTTLCacheWithClock[map[string]struct{}](clock.Now)

	first := map[string]struct{}{"a": {}}
	c.Set("k", first, time.Hour)

	second := map[string]struct{}{"b": {}}
	c.Set("k", second, time.Hour)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Expected value")
	}
	if _, has := got["a"]; has {
		t.Error("Expected old set to be replaced, not merged")
	}
	if _, has := got["b"]; !has {
		t.Error("Expected new set")
	}
}

func TestTTLCache_MissingAndDelete(t *testing.T) {
	c := NewTTLCache[int]()
	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss")
	}

	c.Set("x", 42, time.Minute)
	c.Delete("x")
	if _, ok := c.Get("x"); ok {
		t.Error("Expected deleted key to be absent")
	}
}

func TestTTLCache_ConcurrentAccess(t *testing.T) {
	c := NewTTLCache[int]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set("shared", n, time.Minute)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = c.Get("shared")
		}()
	}
	wg.Wait()

	if _, ok := c.Get("shared"); !ok {
		t.Error("Expected shared key to be present")
	}
}

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache[time.Time](time.Hour, time.Minute)
	created := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)

	c.Set("example.com", created, 0)
	got, ok := c.Get("example.com")
	if !ok || !got.Equal(created) {
		t.Fatalf("Expected cached time, got %v (found=%v)", got, ok)
	}

	c.Delete("example.com")
	if _, ok := c.Get("example.com"); ok {
		t.Error("Expected miss after delete")
	}

	c.Set("a", created, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("Expected expired entry to be absent")
	}

	c.Set("b", created, 0)
	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("Expected miss after clear")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	disk := NewDiskCache[map[string]struct{}](t.TempDir(), nil)
	disk.now = clock.Now

	disk.Set("openphish", map[string]struct{}{"http://a.example/": {}}, time.Hour)

	got, ok := disk.Get("openphish")
	if !ok {
		t.Fatal("Expected disk hit")
	}
	if _, listed := got["http://a.example/"]; !listed {
		t.Errorf("Expected stored set, got %v", got)
	}

	clock.Advance(61 * time.Minute)
	if _, ok := disk.Get("openphish"); ok {
		t.Error("Expected entry expired after 61 minutes")
	}
}

func TestDiskCache_CorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache[string](dir, nil)

	if err := os.WriteFile(disk.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := disk.Get("k"); ok {
		t.Error("Expected corrupt entry to be a miss")
	}
	if _, err := os.Stat(disk.path("k")); !os.IsNotExist(err) {
		t.Error("Expected corrupt entry removed")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	writer := NewLayeredCache[string](dir, nil)
	writer.Set("phishtank", "payload", time.Hour)

	// A fresh process sees only the disk layer
	reader := NewLayeredCache[string](dir, nil)
	if reader.memory.Len() != 0 {
		t.Fatal("Expected empty memory layer")
	}

	got, ok := reader.Get("phishtank")
	if !ok || got != "payload" {
		t.Fatalf("Expected disk hit, got %q, %v", got, ok)
	}
	if reader.memory.Len() != 1 {
		t.Error("Expected disk hit promoted to memory")
	}

	reader.Delete("phishtank")
	if _, ok := writer.disk.Get("phishtank"); ok {
		t.Error("Expected delete to reach the disk layer")
	}
}
