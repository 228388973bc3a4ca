package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"assetpress/internal/budget"
	"assetpress/internal/manifest"
)

// Summary aggregates one run's outcomes for the host's logging and failure
// policy.
type Summary struct {
	RunID     string
	Processed int
	Skipped   int
	Rejected  int
	BytesIn   int64
	BytesOut  int64
	Duration  time.Duration
}

// Run walks the static root and processes every candidate, fanning out
// across workers. Per-file errors are counted, never propagated; the two
// run-level failures are a broken walk and a manifest flush error. On
// cancellation between files the manifest is still flushed for work already
// completed, so the next run resumes cleanly.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	state := budget.NewRunState()
	summary := Summary{RunID: state.ID()}

	if !o.cfg.Enabled {
		o.logger.Info("pipeline disabled, nothing to do", "run", state.ID())
		return summary, nil
	}

	candidates, err := listCandidates(o.root)
	if err != nil {
		return summary, fmt.Errorf("list candidates: %w", err)
	}

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	o.logger.Info("run started",
		"run", state.ID(), "root", o.root,
		"candidates", len(candidates), "workers", workers)

	var mu sync.Mutex
	var results []Result

	var g errgroup.Group
	g.SetLimit(workers)
	for _, candidate := range candidates {
		// Admitted files run to completion; cancellation only takes effect
		// between files.
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := o.Process(candidate, state)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; per-file failures live in results

	updates := manifest.New()
	for _, res := range results {
		switch res.Outcome {
		case OutcomeProcessed:
			summary.Processed++
			summary.BytesOut += res.BytesOut
			updates.Upsert(res.LogicalPath, res.FinalName)
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeRejected:
			summary.Rejected++
			o.logger.Warn("file rejected",
				"run", state.ID(), "path", res.LogicalPath,
				"reason", res.Reason, "error", res.Err)
		}
	}
	_, summary.BytesIn = state.Stats()

	if err := o.flushManifest(ctx, updates); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(start)
	o.logger.Info("run complete",
		"run", state.ID(),
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"rejected", summary.Rejected,
		"bytes_in", summary.BytesIn,
		"bytes_out", summary.BytesOut,
		"duration", summary.Duration)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// flushManifest merges this run's updates into the persisted manifest and
// saves it. Already-written artifacts are not rolled back on failure:
// reprocessing is safe, so the write semantics are at-least-once.
func (o *Orchestrator) flushManifest(ctx context.Context, updates *manifest.Manifest) error {
	if updates.Len() == 0 {
		return nil
	}

	existing, err := o.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	if existing == nil {
		existing = manifest.New()
	}
	existing.Merge(updates)

	if err := o.store.Save(ctx, existing); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}
