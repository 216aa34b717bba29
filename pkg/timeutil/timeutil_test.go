package timeutil

import (
	"math/rand"
	"testing"
	"time"
)

func TestMaxDuration(t *testing.T) {
	tests := []struct {
		name      string
		durations []time.Duration
		want      time.Duration
	}{
		{
			name:      "multiple values returns maximum",
			durations: []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 200 * time.Millisecond},
			want:      500 * time.Millisecond,
		},
		{
			name:      "single value returns that value",
			durations: []time.Duration{300 * time.Millisecond},
			want:      300 * time.Millisecond,
		},
		{
			name:      "empty slice returns zero",
			durations: []time.Duration{},
			want:      0,
		},
		{
			name:      "negative durations handled correctly",
			durations: []time.Duration{-100 * time.Millisecond, 50 * time.Millisecond, -200 * time.Millisecond},
			want:      50 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDuration(tt.durations)
			if got != tt.want {
				t.Errorf("MaxDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDurationPtr(t *testing.T) {
	d := 5 * time.Second
	ptr := DurationPtr(d)

	if ptr == nil {
		t.Fatal("DurationPtr returned nil")
	}

	if *ptr != d {
		t.Errorf("DurationPtr() = %v, want %v", *ptr, d)
	}
}

func TestComputeJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	if got := ComputeJitter(0, *rng); got != 0 {
		t.Errorf("ComputeJitter(0) = %v, want 0", got)
	}
	if got := ComputeJitter(-100*time.Millisecond, *rng); got != 0 {
		t.Errorf("ComputeJitter(negative) = %v, want 0", got)
	}

	max := 1000 * time.Millisecond
	for i := 0; i < 100; i++ {
		got := ComputeJitter(max, *rng)
		if got < 0 || got >= max {
			t.Fatalf("ComputeJitter() = %v, want in [0, %v)", got, max)
		}
	}
}

func TestExponentialBackoffDelay(t *testing.T) {
	tests := []struct {
		name         string
		backoffCount int
		backoffParam BackoffParam
		want         time.Duration
	}{
		{
			name:         "first backoff waits the initial duration",
			backoffCount: 1,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			want:         1 * time.Second,
		},
		{
			name:         "second backoff doubles",
			backoffCount: 2,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			want:         2 * time.Second,
		},
		{
			name:         "third backoff quadruples",
			backoffCount: 3,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			want:         4 * time.Second,
		},
		{
			name:         "backoff hits max cap",
			backoffCount: 10,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 10*time.Second),
			want:         10 * time.Second,
		},
		{
			name:         "multiplier of 1 keeps the delay flat",
			backoffCount: 5,
			backoffParam: NewBackoffParam(1*time.Second, 1.0, 30*time.Second),
			want:         1 * time.Second,
		},
		{
			name:         "fractional multiplier",
			backoffCount: 2,
			backoffParam: NewBackoffParam(1*time.Second, 1.5, 30*time.Second),
			want:         time.Duration(float64(1*time.Second) * 1.5),
		},
		{
			name:         "count below one treated as one",
			backoffCount: 0,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			want:         1 * time.Second,
		},
		{
			name:         "negative count treated as one",
			backoffCount: -3,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			want:         1 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))
			got := ExponentialBackoffDelay(tt.backoffCount, 0, *rng, tt.backoffParam)
			if got != tt.want {
				t.Errorf("ExponentialBackoffDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExponentialBackoffDelay_JitterRange(t *testing.T) {
	jitter := 50 * time.Millisecond
	backoffParam := NewBackoffParam(1*time.Second, 2.0, 30*time.Second)
	rng := rand.New(rand.NewSource(42))

	baseDelay := 4 * time.Second // count=3: 1 * 2^(3-1) = 4 seconds

	for i := 0; i < 1000; i++ {
		got := ExponentialBackoffDelay(3, jitter, *rng, backoffParam)
		if got < baseDelay || got >= baseDelay+jitter {
			t.Fatalf("ExponentialBackoffDelay() = %v, want in [%v, %v)", got, baseDelay, baseDelay+jitter)
		}
	}
}
