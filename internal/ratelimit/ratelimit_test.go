package ratelimit

import (
	"testing"
	"time"
)

func TestAllowConsumesTokens(t *testing.T) {
	t.Parallel()

	r := NewRegistry(3)
	for i := range 3 {
		res := r.Allow("u1")
		if !res.Allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
		if res.Limit != 3 {
			t.Errorf("limit = %d, want 3", res.Limit)
		}
	}
	res := r.Allow("u1")
	if res.Allowed {
		t.Fatal("fourth request should be rejected")
	}
	if res.RetryAfterSeconds <= 0 {
		t.Errorf("retryAfter = %v, want > 0", res.RetryAfterSeconds)
	}
}

func TestKeysAreIsolated(t *testing.T) {
	t.Parallel()

	r := NewRegistry(1)
	if !r.Allow("u1").Allowed {
		t.Fatal("u1 first request should pass")
	}
	if r.Allow("u1").Allowed {
		t.Fatal("u1 second request should fail")
	}
	if !r.Allow("u2").Allowed {
		t.Error("u2 should have its own bucket")
	}
}

func TestZeroMeansUnlimited(t *testing.T) {
	t.Parallel()

	r := NewRegistry(0)
	for range 100 {
		if !r.Allow("u1").Allowed {
			t.Fatal("unlimited registry should always allow")
		}
	}
}

func TestLazyRefill(t *testing.T) {
	t.Parallel()

	// 600 per minute refills at 10 tokens/second.
	r := NewRegistry(600)
	for range 600 {
		r.Allow("u1")
	}
	if r.Allow("u1").Allowed {
		t.Fatal("bucket should be empty")
	}
	time.Sleep(150 * time.Millisecond)
	if !r.Allow("u1").Allowed {
		t.Error("expected refill after sleep")
	}
}

func TestEvictStale(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10)
	r.Allow("old")
	time.Sleep(20 * time.Millisecond)
	cutoff := time.Now()
	r.Allow("fresh")

	if got := r.EvictStale(cutoff); got != 1 {
		t.Errorf("evicted = %d, want 1", got)
	}
	r.mu.RLock()
	_, oldOK := r.limiters["old"]
	_, freshOK := r.limiters["fresh"]
	r.mu.RUnlock()
	if oldOK || !freshOK {
		t.Errorf("old present = %v, fresh present = %v", oldOK, freshOK)
	}
}
