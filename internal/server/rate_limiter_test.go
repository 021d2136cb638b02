package server

import (
	"testing"
	"time"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow("fk_key"); !ok {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	ok, retryAfter := limiter.Allow("fk_key")
	if ok {
		t.Fatalf("third request in the window must be denied")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("unexpected retry-after %v", retryAfter)
	}

	// Other keys have their own budget.
	if ok, _ := limiter.Allow("other"); !ok {
		t.Fatalf("distinct key should pass")
	}

	if ok, _ := limiter.Allow(""); ok {
		t.Fatalf("empty key must be denied")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := newRateLimiter(1, 10*time.Millisecond)

	if ok, _ := limiter.Allow("fk_key"); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, _ := limiter.Allow("fk_key"); ok {
		t.Fatalf("second request in the window must be denied")
	}

	time.Sleep(25 * time.Millisecond)
	if ok, _ := limiter.Allow("fk_key"); !ok {
		t.Fatalf("request after the window should pass")
	}
}
