package limiter_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/pypi-scraper/pkg/limiter"
)

// TestRateLimiter_ConcurrentAccess exercises the limiter from many goroutines.
// Run with -race to catch unsynchronized access.
func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(10 * time.Millisecond)
	rl.SetJitter(5 * time.Millisecond)
	rl.SetRandomSeed(42)

	const goroutines = 16
	const iterations = 100

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			host := fmt.Sprintf("host-%d.example.com", id%4)
			for i := 0; i < iterations; i++ {
				rl.MarkLastFetchAsNow(host)
				if delay := rl.ResolveDelay(host); delay < 0 {
					t.Errorf("ResolveDelay = %v, want >= 0", delay)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestRateLimiter_ConcurrentSetters(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				rl.SetBaseDelay(time.Duration(id) * time.Millisecond)
				rl.SetJitter(time.Duration(i) * time.Microsecond)
				rl.SetRandomSeed(int64(id*1000 + i))
				_ = rl.ResolveDelay("pypi.org")
			}
		}(g)
	}
	wg.Wait()
}
