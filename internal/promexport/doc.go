// Package promexport serves the exporter's HTTP surface.
//
// GET /metrics reads one consistent snapshot out of the collect.Store,
// builds dto.MetricFamily values (one gauge family per derived metric plus a
// histogram for the playtime distribution, cumulated here at publish time),
// and writes them in whatever exposition format the scraper negotiates via
// expfmt. Before the first completed cycle only stash_up is exposed, at 0.
//
// GET /healthz returns a small JSON body (liveness, last scrape time and
// duration, cycle/failure counters) for container orchestration probes.
package promexport
