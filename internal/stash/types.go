package stash

// Stats is the flat library statistics snapshot returned by the stats query.
// Fields the server omits decode to zero; the aggregator copies them 1:1
// into gauges, so a missing field surfaces as a zero gauge, not an error.
type Stats struct {
	SceneCount     float64 `json:"scene_count"`
	ScenesSize     float64 `json:"scenes_size"`
	ScenesDuration float64 `json:"scenes_duration"`

	ImageCount float64 `json:"image_count"`
	ImagesSize float64 `json:"images_size"`

	GalleryCount   float64 `json:"gallery_count"`
	PerformerCount float64 `json:"performer_count"`
	StudioCount    float64 `json:"studio_count"`
	GroupCount     float64 `json:"group_count"`
	TagCount       float64 `json:"tag_count"`

	TotalOCount       float64 `json:"total_o_count"`
	TotalPlayDuration float64 `json:"total_play_duration"`
	TotalPlayCount    float64 `json:"total_play_count"`
	ScenesPlayed      float64 `json:"scenes_played"`
}

// IDRef is a related entity reduced to its identifier. The aggregator only
// cares about "has at least one", never about which one.
type IDRef struct {
	ID string `json:"id"`
}

// ExternalID is one (endpoint, id) pair linking a scene to an external
// metadata source.
type ExternalID struct {
	Endpoint string `json:"endpoint"`
	StashID  string `json:"stash_id"`
}

// Scene is one catalog item, carrying only the fields the aggregator needs.
// Every field is optional on the wire: an absent field decodes to the zero
// value (empty slice, nil studio, zero counters).
type Scene struct {
	Organized    bool         `json:"organized"`
	StashIDs     []ExternalID `json:"stash_ids"`
	Tags         []IDRef      `json:"tags"`
	Performers   []IDRef      `json:"performers"`
	Studio       *IDRef       `json:"studio"`
	SceneMarkers []IDRef      `json:"scene_markers"`

	PlayCount    int      `json:"play_count"`
	PlayDuration float64  `json:"play_duration"`
	PlayHistory  []string `json:"play_history"`
}
