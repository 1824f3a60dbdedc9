package collect

import (
	"context"
	"log/slog"
	"time"

	"github.com/stashmetrics/stash-exporter/internal/config"
	"github.com/stashmetrics/stash-exporter/internal/stash"
)

// Source is what the orchestrator needs from the upstream layer: one
// statistics snapshot and one scene working set per cycle.
type Source interface {
	FetchStats(ctx context.Context) (stash.Stats, error)
	FetchScenes(ctx context.Context, pageSize, maxScenes int) ([]stash.Scene, error)
}

// Orchestrator drives the scrape loop: at most one cycle in flight, cycles
// started on a fixed wall-clock cadence, results published into the Store.
type Orchestrator struct {
	src       Source
	store     *Store
	interval  time.Duration
	pageSize  int
	maxScenes int

	sleep func(ctx context.Context, d time.Duration) // injectable for tests
}

// NewOrchestrator wires an Orchestrator from the exporter config.
func NewOrchestrator(src Source, store *Store, cfg config.ExporterConfig) *Orchestrator {
	return &Orchestrator{
		src:       src,
		store:     store,
		interval:  cfg.ScrapeInterval,
		pageSize:  cfg.ScenePageSize,
		maxScenes: cfg.MaxScenes,
		sleep:     sleepCtx,
	}
}

// Run executes scrape cycles until ctx is cancelled. Cancellation is checked
// before and after the inter-cycle sleep, never mid-cycle: a cycle in flight
// always completes or fails cleanly first.
func (o *Orchestrator) Run(ctx context.Context) {
	slog.Info("scrape loop starting",
		"interval", o.interval,
		"page_size", o.pageSize,
		"max_scenes", o.maxScenes,
	)

	for {
		if ctx.Err() != nil {
			slog.Info("scrape loop stopping")
			return
		}

		start := time.Now()
		o.RunCycle(ctx)
		elapsed := time.Since(start)

		// Cadence is interval-from-start: sleep only what remains after the
		// cycle's own work, and not at all when a cycle overran.
		wait := o.interval - elapsed
		if wait < 0 {
			wait = 0
		}
		o.sleep(ctx, wait)
	}
}

// RunCycle performs one fetch→aggregate→publish pass. An upstream failure in
// either fetch step flips liveness down and leaves all previously published
// metrics untouched; aggregation is skipped entirely for that cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	start := time.Now()

	stats, err := o.src.FetchStats(ctx)
	if err != nil {
		o.failCycle("stats fetch", err, start)
		return
	}

	scenes, err := o.src.FetchScenes(ctx, o.pageSize, o.maxScenes)
	if err != nil {
		o.failCycle("scene fetch", err, start)
		return
	}

	ms := NewMetricSet()
	ms.ApplyStats(stats)
	ms.ApplyScenes(scenes)

	took := time.Since(start)
	o.store.Publish(ms, took)
	slog.Info("scrape cycle complete", "scenes", len(scenes), "took", took)
}

// failCycle records a failed cycle. Upstream errors are the expected outage
// signal and log as warnings; anything else is a defect and logs as an
// error so it is never silently swallowed.
func (o *Orchestrator) failCycle(step string, err error, start time.Time) {
	took := time.Since(start)
	if stash.IsUpstream(err) {
		slog.Warn("scrape cycle failed, keeping last metrics",
			"step", step, "took", took, "err", err)
	} else {
		slog.Error("scrape cycle failed with non-upstream error",
			"step", step, "took", took, "err", err)
	}
	o.store.PublishFailure(took)
}

// sleepCtx blocks for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
