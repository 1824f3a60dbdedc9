package promexport

import (
	"math"
	"sort"

	dto "github.com/prometheus/client_model/go"

	"github.com/stashmetrics/stash-exporter/internal/collect"
)

// Exported family names owned by this package (the per-gauge names come from
// the collect package's MetricSet).
const (
	famUp             = "stash_up"
	famPlaytime       = "stash_scenes_playtime_seconds"
	famLastScrapeTime = "stash_last_scrape_timestamp_seconds"
	famLastScrapeDur  = "stash_last_scrape_duration_seconds"
	famCycles         = "stash_scrape_cycles_total"
	famFailures       = "stash_scrape_failures_total"
)

// gaugeHelp documents every gauge the aggregator can emit. Names not listed
// here (none today) fall back to a generic string rather than breaking the
// exposition.
var gaugeHelp = map[string]string{
	"stash_scene_count":         "Number of scenes in the library.",
	"stash_scenes_size":         "Total size of all scenes in bytes.",
	"stash_scenes_duration":     "Total duration of all scenes in seconds.",
	"stash_image_count":         "Number of images in the library.",
	"stash_images_size":         "Total size of all images in bytes.",
	"stash_gallery_count":       "Number of galleries in the library.",
	"stash_performer_count":     "Number of performers in the library.",
	"stash_studio_count":        "Number of studios in the library.",
	"stash_group_count":         "Number of groups in the library.",
	"stash_tag_count":           "Number of tags in the library.",
	"stash_total_o_count":       "Total o-count across the library.",
	"stash_total_play_duration": "Total play duration in seconds, as reported by the library stats.",
	"stash_total_play_count":    "Total play count, as reported by the library stats.",
	"stash_scenes_played":       "Number of scenes that have been played at least once.",

	collect.MetricScenesScraped:   "Number of scenes fetched and aggregated in the last cycle.",
	collect.MetricPlayCountSum:    "Sum of play_count over the fetched scenes (cross-check against stash_total_play_count).",
	collect.MetricPlayDurationSum: "Sum of play_duration over the fetched scenes (cross-check against stash_total_play_duration).",

	"stash_scenes_organized_count":       "Scenes marked organized.",
	"stash_scenes_organized_ratio":       "Fraction of scenes marked organized.",
	"stash_scenes_with_stash_id_count":   "Scenes with at least one external stash id.",
	"stash_scenes_with_stash_id_ratio":   "Fraction of scenes with at least one external stash id.",
	"stash_scenes_with_tags_count":       "Scenes with at least one tag.",
	"stash_scenes_with_tags_ratio":       "Fraction of scenes with at least one tag.",
	"stash_scenes_with_performers_count": "Scenes with at least one performer.",
	"stash_scenes_with_performers_ratio": "Fraction of scenes with at least one performer.",
	"stash_scenes_with_studio_count":     "Scenes with a studio set.",
	"stash_scenes_with_studio_ratio":     "Fraction of scenes with a studio set.",
	"stash_scenes_with_markers_count":    "Scenes with at least one marker.",
	"stash_scenes_with_markers_ratio":    "Fraction of scenes with at least one marker.",
}

// buildFamilies turns a store snapshot into the full exposition, sorted by
// family name. ms is nil before the first successful cycle; in that case
// only stash_up (and, once any cycle ran, the scrape meta-metrics) appear.
func buildFamilies(ms *collect.MetricSet, st collect.ScrapeStatus) []*dto.MetricFamily {
	var fams []*dto.MetricFamily

	up := 0.0
	if st.Up {
		up = 1
	}
	fams = append(fams, gaugeFamily(famUp,
		"Whether the last scrape of the Stash API succeeded.", up))

	if st.Cycles > 0 {
		fams = append(fams,
			gaugeFamily(famLastScrapeTime,
				"Unix time of the last scrape cycle, successful or not.",
				float64(st.LastScrape.Unix())),
			gaugeFamily(famLastScrapeDur,
				"Duration of the last scrape cycle in seconds.",
				st.LastDuration.Seconds()),
			counterFamily(famCycles,
				"Total scrape cycles run since the exporter started.",
				float64(st.Cycles)),
			counterFamily(famFailures,
				"Scrape cycles that failed against the Stash API.",
				float64(st.Failures)),
		)
	}

	if ms != nil {
		names := make([]string, 0, len(ms.Gauges))
		for name := range ms.Gauges {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			help, ok := gaugeHelp[name]
			if !ok {
				help = "Stash exporter gauge."
			}
			fams = append(fams, gaugeFamily(name, help, ms.Gauges[name]))
		}
		fams = append(fams, playtimeFamily(ms))
	}

	sort.Slice(fams, func(i, j int) bool { return fams[i].GetName() < fams[j].GetName() })
	return fams
}

// playtimeFamily converts the aggregator's absolute bucket counts into a
// cumulative Prometheus histogram, the only place cumulation happens.
func playtimeFamily(ms *collect.MetricSet) *dto.MetricFamily {
	buckets := make([]*dto.Bucket, 0, len(collect.PlaytimeBounds)+1)
	var cum uint64
	for i, bound := range collect.PlaytimeBounds {
		cum += ms.PlaytimeCounts[i]
		buckets = append(buckets, &dto.Bucket{
			CumulativeCount: u64p(cum),
			UpperBound:      f64p(bound),
		})
	}
	cum += ms.PlaytimeCounts[len(collect.PlaytimeBounds)]
	buckets = append(buckets, &dto.Bucket{
		CumulativeCount: u64p(cum),
		UpperBound:      f64p(math.Inf(1)),
	})

	return &dto.MetricFamily{
		Name: strp(famPlaytime),
		Help: strp("Distribution of per-scene play duration in seconds."),
		Type: dto.MetricType_HISTOGRAM.Enum(),
		Metric: []*dto.Metric{{
			Histogram: &dto.Histogram{
				SampleCount: u64p(ms.SceneTotal),
				SampleSum:   f64p(ms.PlaytimeSum),
				Bucket:      buckets,
			},
		}},
	}
}

func gaugeFamily(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   strp(name),
		Help:   strp(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: f64p(value)}}},
	}
}

func counterFamily(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   strp(name),
		Help:   strp(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: f64p(value)}}},
	}
}

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }
func u64p(u uint64) *uint64   { return &u }
