package backoff

import (
	"testing"
	"time"

	"github.com/jangulo01/webhookd/internal/domain"
)

func TestDelay_Linear(t *testing.T) {
	tests := []struct {
		retryCount int
		expected   time.Duration
	}{
		{0, 10 * time.Second},
		{1, 20 * time.Second},
		{2, 30 * time.Second},
	}

	for _, tt := range tests {
		got := Delay(domain.BackoffLinear, tt.retryCount, 10, 1.0, 3600)
		if got != tt.expected {
			t.Errorf("Delay(linear, %d) = %v, expected %v", tt.retryCount, got, tt.expected)
		}
	}
}

func TestDelay_Exponential(t *testing.T) {
	tests := []struct {
		retryCount int
		expected   time.Duration
	}{
		{0, 10 * time.Second},
		{1, 20 * time.Second},
		{2, 40 * time.Second},
		{3, 80 * time.Second},
	}

	for _, tt := range tests {
		got := Delay(domain.BackoffExponential, tt.retryCount, 10, 2.0, 3600)
		if got != tt.expected {
			t.Errorf("Delay(exponential, %d) = %v, expected %v", tt.retryCount, got, tt.expected)
		}
	}
}

func TestDelay_Fixed(t *testing.T) {
	for _, retryCount := range []int{0, 1, 5, 20} {
		got := Delay(domain.BackoffFixed, retryCount, 15, 2.0, 3600)
		if got != 15*time.Second {
			t.Errorf("Delay(fixed, %d) = %v, expected 15s", retryCount, got)
		}
	}
}

func TestDelay_CapsAtMaxInterval(t *testing.T) {
	got := Delay(domain.BackoffExponential, 10, 10, 2.0, 60)
	if got != 60*time.Second {
		t.Errorf("Delay should cap at max_interval_s=60, got %v", got)
	}
}

func TestDelay_UnknownStrategyFallsBackToExponential(t *testing.T) {
	// factor argument is ignored for an unrecognized strategy; the fallback
	// always uses unknownStrategyFactor (2.0).
	got := Delay(domain.BackoffStrategy("nonsense"), 1, 10, 3.0, 3600)
	want := 20 * time.Second
	if got != want {
		t.Errorf("Delay(unknown, 1) = %v, expected %v", got, want)
	}
}

func TestDelay_Monotonic(t *testing.T) {
	var prev time.Duration
	for n := 0; n < 5; n++ {
		d := Delay(domain.BackoffExponential, n, 5, 2.0, 3600)
		if d < prev {
			t.Fatalf("Delay is not monotonically non-decreasing at retryCount=%d: %v < %v", n, d, prev)
		}
		prev = d
	}
}

func TestNextRetry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := NextRetry(now, 30*time.Second)
	want := time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextRetry = %v, expected %v", got, want)
	}
}
