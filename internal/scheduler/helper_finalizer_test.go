package scheduler_test

import (
	"sync"
	"time"
)

// finalizerSpy captures final run stats so tests can assert the
// exactly-once contract.
type finalizerSpy struct {
	mu    sync.Mutex
	calls []finalStats
}

type finalStats struct {
	totalPackages int
	totalWritten  int
	totalErrors   int
	duration      time.Duration
}

func (f *finalizerSpy) RecordFinalRunStats(
	totalPackages int,
	totalWritten int,
	totalErrors int,
	duration time.Duration,
) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, finalStats{
		totalPackages: totalPackages,
		totalWritten:  totalWritten,
		totalErrors:   totalErrors,
		duration:      duration,
	})
}

func (f *finalizerSpy) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *finalizerSpy) lastCall() finalStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}
