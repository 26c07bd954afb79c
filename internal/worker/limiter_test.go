package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_KeyIsRegistrableDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://login.example.com/foo", "example.com"},
		{"https://www.example.com", "example.com"},
		{"paypa1-secure.tk", "paypa1-secure.tk"},
		{"https://a.b.example.co.uk/x", "example.co.uk"},
	}

	for _, tt := range tests {
		if got := Key(tt.url); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestLimiter_SharesBucketAcrossSubdomains(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://a.example.com"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	// Same registrable domain, bucket empty: must not clear before deadline
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(short, "http://b.example.com"); err == nil {
		t.Error("expected second subdomain to share the exhausted bucket")
	}

	// Different domain has its own bucket
	if err := limiter.Wait(ctx, "http://other.org"); err != nil {
		t.Errorf("wait failed for independent domain: %v", err)
	}
}

func TestLimiter_NonPositiveRateIsUnlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	for i := 0; i < 20; i++ {
		if err := limiter.Wait(ctx, "http://example.com"); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}
}
