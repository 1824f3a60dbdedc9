// Package collect turns upstream fetch results into the exporter's published
// metric state and drives the periodic scrape loop.
//
// MetricSet is one cycle's worth of derived metrics: the 1:1 library-stats
// gauges, the playtime distribution, and the metadata-coverage counts and
// ratios. It is built fresh every cycle and handed to the Store, which is
// the only state that outlives a cycle.
//
// Store is the single-writer / multi-reader boundary: the orchestrator
// publishes into it at the end of each cycle, the HTTP exposition reads
// consistent copies out of it at any time. On a failed cycle only the
// liveness flag flips — every other value stays at its last published state,
// so consumers see stale-but-present metrics during an outage rather than a
// gap.
//
// Orchestrator runs the loop: stats fetch, scene fetch, aggregate, publish,
// then sleep whatever remains of the interval so cycles start on a fixed
// cadence. Cancellation is cooperative and only honored between cycles.
package collect
