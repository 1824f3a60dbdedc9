package collect

import (
	"github.com/stashmetrics/stash-exporter/internal/stash"
)

// PlaytimeBounds are the upper bounds, in seconds, of the per-scene playtime
// distribution. They define ranges [0,60), [60,600), [600,3600) plus an
// implicit unbounded top bucket, so len(bounds)+1 buckets in total.
var PlaytimeBounds = []float64{60, 600, 3600}

// Metric names for the scene-derived gauges. The library-stats gauges are
// named 1:1 after the upstream snapshot fields and set in ApplyStats.
const (
	MetricScenesScraped   = "stash_scenes_scraped"
	MetricPlayCountSum    = "stash_scenes_play_count_sum"
	MetricPlayDurationSum = "stash_scenes_play_duration_sum"
)

// MetricSet is one scrape cycle's complete derived output. It holds plain
// values only — no locks, no identity — and is built from scratch each
// cycle, then swapped into the Store wholesale.
type MetricSet struct {
	// Gauges maps metric name to value: the stats snapshot copied 1:1 plus
	// the coverage counts/ratios and cross-check totals.
	Gauges map[string]float64

	// PlaytimeCounts holds the absolute (non-cumulative) per-bucket scene
	// counts, parallel to PlaytimeBounds with one extra top bucket.
	// Cumulative summation for histogram exposition happens at publish time.
	PlaytimeCounts []uint64

	// PlaytimeSum is the summed play duration across all scenes, used as the
	// histogram sample sum.
	PlaytimeSum float64

	// SceneTotal is the number of scenes aggregated this cycle.
	SceneTotal uint64
}

// NewMetricSet returns an empty MetricSet ready for one cycle's aggregation.
func NewMetricSet() *MetricSet {
	return &MetricSet{
		Gauges:         make(map[string]float64),
		PlaytimeCounts: make([]uint64, len(PlaytimeBounds)+1),
	}
}

// ApplyStats copies the library statistics snapshot 1:1 into gauges, in the
// snapshot's native units. No conversion happens here.
func (m *MetricSet) ApplyStats(s stash.Stats) {
	m.Gauges["stash_scene_count"] = s.SceneCount
	m.Gauges["stash_scenes_size"] = s.ScenesSize
	m.Gauges["stash_scenes_duration"] = s.ScenesDuration
	m.Gauges["stash_image_count"] = s.ImageCount
	m.Gauges["stash_images_size"] = s.ImagesSize
	m.Gauges["stash_gallery_count"] = s.GalleryCount
	m.Gauges["stash_performer_count"] = s.PerformerCount
	m.Gauges["stash_studio_count"] = s.StudioCount
	m.Gauges["stash_group_count"] = s.GroupCount
	m.Gauges["stash_tag_count"] = s.TagCount
	m.Gauges["stash_total_o_count"] = s.TotalOCount
	m.Gauges["stash_total_play_duration"] = s.TotalPlayDuration
	m.Gauges["stash_total_play_count"] = s.TotalPlayCount
	m.Gauges["stash_scenes_played"] = s.ScenesPlayed
}

// ApplyScenes folds the fetched scene collection into the playtime
// distribution, the metadata-coverage counts/ratios, and the cross-check
// play totals, in a single pass. An empty collection yields zero counts and
// zero ratios — never NaN.
func (m *MetricSet) ApplyScenes(scenes []stash.Scene) {
	var (
		organized      int
		withExternalID int
		withTags       int
		withPerformers int
		withStudio     int
		withMarkers    int
		playCountSum   float64
	)

	for _, sc := range scenes {
		// Every scene lands in exactly one bucket; a never-played scene
		// counts in the lowest one.
		m.PlaytimeCounts[playtimeBucket(sc.PlayDuration)]++
		m.PlaytimeSum += sc.PlayDuration
		playCountSum += float64(sc.PlayCount)

		if sc.Organized {
			organized++
		}
		if len(sc.StashIDs) > 0 {
			withExternalID++
		}
		if len(sc.Tags) > 0 {
			withTags++
		}
		if len(sc.Performers) > 0 {
			withPerformers++
		}
		if sc.Studio != nil {
			withStudio++
		}
		if len(sc.SceneMarkers) > 0 {
			withMarkers++
		}
	}

	total := len(scenes)
	m.SceneTotal = uint64(total)
	m.Gauges[MetricScenesScraped] = float64(total)
	m.Gauges[MetricPlayCountSum] = playCountSum
	m.Gauges[MetricPlayDurationSum] = m.PlaytimeSum

	m.setCoverage("organized", organized, total)
	m.setCoverage("with_stash_id", withExternalID, total)
	m.setCoverage("with_tags", withTags, total)
	m.setCoverage("with_performers", withPerformers, total)
	m.setCoverage("with_studio", withStudio, total)
	m.setCoverage("with_markers", withMarkers, total)
}

// setCoverage records one metadata predicate as a raw count gauge and a
// ratio gauge in [0,1]. The ratio of an empty collection is defined as 0 so
// the metric is always representable.
func (m *MetricSet) setCoverage(name string, count, total int) {
	m.Gauges["stash_scenes_"+name+"_count"] = float64(count)
	ratio := 0.0
	if total > 0 {
		ratio = float64(count) / float64(total)
	}
	m.Gauges["stash_scenes_"+name+"_ratio"] = ratio
}

// playtimeBucket returns the index of the bucket containing d seconds of
// play: the first bound strictly greater than d, or the top bucket.
func playtimeBucket(d float64) int {
	for i, bound := range PlaytimeBounds {
		if d < bound {
			return i
		}
	}
	return len(PlaytimeBounds)
}

// Clone returns a deep copy, so readers can hold a MetricSet while the next
// cycle is being published.
func (m *MetricSet) Clone() *MetricSet {
	if m == nil {
		return nil
	}
	out := &MetricSet{
		Gauges:         make(map[string]float64, len(m.Gauges)),
		PlaytimeCounts: make([]uint64, len(m.PlaytimeCounts)),
		PlaytimeSum:    m.PlaytimeSum,
		SceneTotal:     m.SceneTotal,
	}
	for k, v := range m.Gauges {
		out.Gauges[k] = v
	}
	copy(out.PlaytimeCounts, m.PlaytimeCounts)
	return out
}
