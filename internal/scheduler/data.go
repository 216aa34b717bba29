package scheduler

import (
	"sync"

	"github.com/rohmanhakim/pypi-scraper/internal/storage"
)

// PackageFailure names one package that could not be fetched or written,
// and why. Failures are report entries, never run aborts.
type PackageFailure struct {
	Name   string
	Reason string
}

// Report is the terminal summary of one scrape run.
// Every resolved package name appears exactly once: either counted in
// Succeeded (with its write result in Written, dry runs excepted) or
// listed in Failed.
type Report struct {
	Succeeded      int
	Failed         []PackageFailure
	Written        []storage.WriteResult
	TotalResolved  int
	PriorDocuments int
}

// reportBuilder is the only state shared between workers; every append
// goes through the mutex.
type reportBuilder struct {
	mu        sync.Mutex
	succeeded int
	failed    []PackageFailure
	written   []storage.WriteResult
}

func (b *reportBuilder) recordSuccess(result storage.WriteResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.succeeded++
	b.written = append(b.written, result)
}

func (b *reportBuilder) recordDryRunSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.succeeded++
}

func (b *reportBuilder) recordFailure(name string, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failed = append(b.failed, PackageFailure{Name: name, Reason: reason})
}

func (b *reportBuilder) snapshot(totalResolved int, priorDocuments int) Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	failed := make([]PackageFailure, len(b.failed))
	copy(failed, b.failed)
	written := make([]storage.WriteResult, len(b.written))
	copy(written, b.written)
	return Report{
		Succeeded:      b.succeeded,
		Failed:         failed,
		Written:        written,
		TotalResolved:  totalResolved,
		PriorDocuments: priorDocuments,
	}
}
