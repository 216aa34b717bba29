package limiter

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/pypi-scraper/pkg/timeutil"
)

// RateLimiter
// Specialized component to pace requests against the package index
// Responsibilities:
// - Bookkeep each hostname's last fetch timestamp
// - Compute the remaining polite delay for a hostname given base delay and jitter
// - Make sure successive metadata fetches do not hammer the index
type RateLimiter interface {
	SetBaseDelay(baseDelay time.Duration)
	SetJitter(jitter time.Duration)
	SetRandomSeed(randomSeed int64)
	MarkLastFetchAsNow(host string)
	ResolveDelay(host string) time.Duration
}

type ConcurrentRateLimiter struct {
	mu          sync.RWMutex
	rngMu       sync.Mutex
	baseDelay   time.Duration
	jitter      time.Duration
	hostTimings map[string]hostTiming
	rng         *rand.Rand
}

func NewConcurrentRateLimiter() *ConcurrentRateLimiter {
	return &ConcurrentRateLimiter{
		hostTimings: make(map[string]hostTiming),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ConcurrentRateLimiter) SetBaseDelay(baseDelay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.baseDelay = baseDelay
}

func (r *ConcurrentRateLimiter) SetJitter(jitter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jitter = jitter
}

func (r *ConcurrentRateLimiter) SetRandomSeed(randomSeed int64) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	r.rng = rand.New(rand.NewSource(randomSeed))
}

// Mark the given host lastFetch to time.Now()
func (r *ConcurrentRateLimiter) MarkLastFetchAsNow(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	currentHostTiming, exists := r.hostTimings[host]
	if exists {
		currentHostTiming.lastFetchAt = time.Now()
		r.hostTimings[host] = currentHostTiming
	} else {
		r.hostTimings[host] = hostTiming{
			lastFetchAt: time.Now(),
		}
	}
}

// computeJitter returns a pseudo-random duration between 0 and max
func (r *ConcurrentRateLimiter) computeJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return timeutil.ComputeJitter(max, *r.rng)
}

// ResolveDelay computes the remaining wait before the host may be fetched again.
// FinalDelay = baseDelay + jitter, minus the time already elapsed since the
// host was last fetched. A host that was never fetched waits nothing.
func (r *ConcurrentRateLimiter) ResolveDelay(host string) time.Duration {
	// copy needed state under read lock, then compute without holding r.mu
	r.mu.RLock()
	currentHostTiming, exists := r.hostTimings[host]
	base := r.baseDelay
	jitter := r.jitter
	r.mu.RUnlock()

	if !exists {
		return time.Duration(0)
	}

	finalDelay := base + r.computeJitter(jitter)

	elapsed := time.Since(currentHostTiming.lastFetchAt)
	if elapsed < finalDelay {
		return finalDelay - elapsed
	}

	return time.Duration(0)
}

func (r *ConcurrentRateLimiter) GetBaseDelay() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseDelay
}

func (r *ConcurrentRateLimiter) GetJitter() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jitter
}
