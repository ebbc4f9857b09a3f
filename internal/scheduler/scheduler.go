// Package scheduler fans a batch of files out across a bounded pool of
// concurrent pipeline runs (spec.md 5): a counting semaphore caps
// parallelism, a MemoryMonitor throttles admission under pressure, and
// cancellation is cooperative — in-flight files finish, new ones stop
// being admitted.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Sumatoshi-tech/javafmt/internal/pipeline"
)

// Config tunes the scheduler's admission control.
type Config struct {
	// MaxConcurrency bounds how many files are formatted at once. <= 0
	// defaults to 1 (fully sequential).
	MaxConcurrency int64

	// Monitor reports memory pressure before each admission. Nil
	// disables pressure-based throttling.
	Monitor MemoryMonitor

	// PressureThreshold is the Pressure() value at or above which the
	// scheduler stops admitting new files until pressure subsides.
	// Defaults to 1.0 (only throttle once the budget is exhausted).
	PressureThreshold float64

	// PollInterval is how often the scheduler rechecks memory pressure
	// while throttled. Defaults to 50ms.
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 1
	}

	if c.PressureThreshold <= 0 {
		c.PressureThreshold = 1.0
	}

	if c.PollInterval <= 0 {
		c.PollInterval = 50 * time.Millisecond
	}

	return c
}

// Scheduler runs a pipeline.Pipeline over many files with bounded,
// memory-aware concurrency.
type Scheduler struct {
	cfg      Config
	pipeline *pipeline.Pipeline
	sem      *semaphore.Weighted
	cancel   atomic.Bool
}

// New constructs a Scheduler over p using cfg.
func New(p *pipeline.Pipeline, cfg Config) *Scheduler {
	cfg = cfg.withDefaults()

	return &Scheduler{
		cfg:      cfg,
		pipeline: p,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrency),
	}
}

// Cancel requests that the scheduler stop admitting new files. Files
// already running are allowed to finish — the pipeline's own stages
// are not preemptible mid-file (spec.md 5's cooperative-cancellation
// note).
func (s *Scheduler) Cancel() { s.cancel.Store(true) }

// Run processes every path in paths, admitting up to Config.MaxConcurrency
// at a time, and returns an aggregate BatchResult. A single file's
// failure never aborts the batch; ctx cancellation or a prior Cancel()
// call stops new admissions but still waits for in-flight files.
func (s *Scheduler) Run(ctx context.Context, paths []string) pipeline.BatchResult {
	var (
		mu     sync.Mutex
		result pipeline.BatchResult
		wg     sync.WaitGroup
	)

	for _, path := range paths {
		if s.cancel.Load() || ctx.Err() != nil {
			mu.Lock()
			result.SkippedCount++
			mu.Unlock()

			continue
		}

		s.waitForMemoryHeadroom(ctx)

		if err := s.sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			result.SkippedCount++
			mu.Unlock()

			continue
		}

		wg.Add(1)

		go func(path string) {
			defer wg.Done()
			defer s.sem.Release(1)

			res := s.pipeline.Process(ctx, path)

			mu.Lock()
			defer mu.Unlock()

			if res.Success() {
				result.SuccessCount++
			} else {
				result.ErrorCount++
				result.Errors = append(result.Errors, res.Err)
			}
		}(path)
	}

	wg.Wait()

	return result
}

// waitForMemoryHeadroom blocks, polling at PollInterval, while the
// configured Monitor reports pressure at or above PressureThreshold. A
// nil Monitor or a cancelled context returns immediately.
func (s *Scheduler) waitForMemoryHeadroom(ctx context.Context) {
	if s.cfg.Monitor == nil {
		return
	}

	for s.cfg.Monitor.Pressure() >= s.cfg.PressureThreshold {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.PollInterval):
		}

		if s.cancel.Load() {
			return
		}
	}
}
