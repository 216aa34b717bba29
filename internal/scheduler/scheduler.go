package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rohmanhakim/pypi-scraper/internal/config"
	"github.com/rohmanhakim/pypi-scraper/internal/document"
	"github.com/rohmanhakim/pypi-scraper/internal/fetcher"
	"github.com/rohmanhakim/pypi-scraper/internal/resolver"
	"github.com/rohmanhakim/pypi-scraper/internal/storage"
	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/internal/worklist"
	"github.com/rohmanhakim/pypi-scraper/pkg/hashutil"
	"github.com/rohmanhakim/pypi-scraper/pkg/limiter"
	"github.com/rohmanhakim/pypi-scraper/pkg/retry"
	"github.com/rohmanhakim/pypi-scraper/pkg/timeutil"
)

/*
 Scheduler is the sole control-plane authority of a scrape run.

 - Resolver failure is fatal: no package list, nothing to do.
 - Per-package failures (fetch, validation, write) are downgraded to
   report entries; one bad package never aborts the run.
 - Pipeline stages may detect and classify failure, but must never decide
   retry, continuation, or abortion.
 - Telemetry emission is observational only and MUST NOT influence
   scheduling, retries, or run termination.

 Scheduler Responsibilities:
 - Coordinate the run lifecycle
 - Fan package names out to workers and pace requests via the limiter
 - Aggregate the per-run Report
 - Manage graceful shutdown: on cancellation, stop handing out new names;
   in-flight attempts finish, remaining names are reported as failures
 - The sole authority on: retry / continue / abort
*/

type Scheduler struct {
	telemetrySink   telemetry.Sink
	runFinalizer    telemetry.RunFinalizer
	packageResolver resolver.Resolver
	documentFetcher document.Fetcher
	storageSink     storage.Sink
	rateLimiter     limiter.RateLimiter
}

func NewScheduler(cfg config.Config, log telemetry.Recorder) Scheduler {
	httpFetcher := fetcher.NewHttpFetcher(&log, cfg.Timeout())
	indexResolver := resolver.NewIndexResolver(&log, &httpFetcher, cfg.IndexURL(), cfg.UserAgent())
	metadataFetcher := document.NewMetadataFetcher(&log, &httpFetcher, cfg.IndexURL(), cfg.UserAgent())
	localSink := storage.NewLocalSink(&log)
	rateLimiter := limiter.NewConcurrentRateLimiter()
	return Scheduler{
		telemetrySink:   &log,
		runFinalizer:    &log,
		packageResolver: &indexResolver,
		documentFetcher: &metadataFetcher,
		storageSink:     &localSink,
		rateLimiter:     rateLimiter,
	}
}

// NewSchedulerWithDeps creates a Scheduler with injected dependencies for testing.
// Tests provide stage fakes to exercise orchestration behavior without real
// network or disk I/O.
func NewSchedulerWithDeps(
	telemetrySink telemetry.Sink,
	runFinalizer telemetry.RunFinalizer,
	packageResolver resolver.Resolver,
	documentFetcher document.Fetcher,
	storageSink storage.Sink,
	rateLimiter limiter.RateLimiter,
) Scheduler {
	return Scheduler{
		telemetrySink:   telemetrySink,
		runFinalizer:    runFinalizer,
		packageResolver: packageResolver,
		documentFetcher: documentFetcher,
		storageSink:     storageSink,
		rateLimiter:     rateLimiter,
	}
}

// Run executes one scrape: resolve the package list once, then fetch and
// persist every package's metadata document. The returned error is non-nil
// only for fatal conditions (resolution failure); per-package failures live
// in the Report.
func (s *Scheduler) Run(ctx context.Context, cfg config.Config) (Report, error) {
	runStartTime := time.Now()

	builder := &reportBuilder{}
	var totalResolved int
	var priorDocuments int

	// Final stats are recorded exactly once, even on fatal paths
	defer func() {
		report := builder.snapshot(totalResolved, priorDocuments)
		s.runFinalizer.RecordFinalRunStats(
			totalResolved,
			len(report.Written),
			len(report.Failed),
			time.Since(runStartTime),
		)
	}()

	retryParam := retry.NewRetryParam(
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempts(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)

	// 1. Resolve the package list. Fatal on failure: nothing to do.
	names, resolveErr := s.packageResolver.Resolve(ctx, retryParam)
	if resolveErr != nil {
		return Report{}, resolveErr
	}
	totalResolved = len(names)

	// 2. Prior-run context, purely informational
	existing, listErr := s.storageSink.ListExisting(cfg.DataDir())
	if listErr == nil {
		priorDocuments = len(existing)
	}

	// 3. Pace requests against the index host
	s.rateLimiter.SetBaseDelay(cfg.BaseDelay())
	s.rateLimiter.SetJitter(cfg.Jitter())
	s.rateLimiter.SetRandomSeed(cfg.RandomSeed())
	indexHost := cfg.IndexURL().Host

	// 4. Fan out to workers. Iterations are independent; the report builder
	// is the only shared state.
	pending := worklist.NewFIFOQueue[string]()
	for _, name := range names {
		pending.Enqueue(name)
	}

	nameCh := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range nameCh {
				s.processPackage(ctx, cfg, name, indexHost, retryParam, builder)
			}
		}()
	}

	// Hand out names until the queue drains or the context is canceled.
	// Cancellation stops new work; names never handed out are reported
	// as failures so the report still covers every resolved name.
dispatch:
	for {
		name, ok := pending.Dequeue()
		if !ok {
			break
		}
		select {
		case nameCh <- name:
		case <-ctx.Done():
			builder.recordFailure(name, "run canceled: "+ctx.Err().Error())
			for {
				remaining, more := pending.Dequeue()
				if !more {
					break
				}
				builder.recordFailure(remaining, "run canceled: "+ctx.Err().Error())
			}
			break dispatch
		}
	}
	close(nameCh)
	wg.Wait()

	return builder.snapshot(totalResolved, priorDocuments), nil
}

// processPackage runs the fetch-then-write pipeline for one package name.
// Every failure path records exactly one report entry for the name.
func (s *Scheduler) processPackage(
	ctx context.Context,
	cfg config.Config,
	name string,
	indexHost string,
	retryParam retry.RetryParam,
	builder *reportBuilder,
) {
	// Politeness: wait out the remaining delay for this host, then claim it
	if delay := s.rateLimiter.ResolveDelay(indexHost); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			builder.recordFailure(name, "run canceled: "+ctx.Err().Error())
			return
		}
	}
	s.rateLimiter.MarkLastFetchAsNow(indexHost)

	doc, fetchErr := s.documentFetcher.FetchMetadata(ctx, name, retryParam)
	if fetchErr != nil {
		// telemetry already emitted by the stage; record for the report
		builder.recordFailure(name, fetchErr.Error())
		return
	}

	if cfg.DryRun() {
		builder.recordDryRunSuccess()
		return
	}

	writeResult, writeErr := s.storageSink.Write(cfg.DataDir(), doc, hashutil.HashAlgoBLAKE3)
	if writeErr != nil {
		builder.recordFailure(name, writeErr.Error())
		return
	}

	builder.recordSuccess(writeResult)
}
