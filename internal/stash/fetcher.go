package stash

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Fetcher retrieves the statistics snapshot and the scene working set from
// the upstream API via an Executor. It owns the pagination policy; the
// transport owns timeouts and auth.
type Fetcher struct {
	exec Executor
}

// NewFetcher returns a Fetcher using the given transport.
func NewFetcher(exec Executor) *Fetcher {
	return &Fetcher{exec: exec}
}

// statsPayload is the "data" shape of the library stats query.
type statsPayload struct {
	Stats Stats `json:"stats"`
}

// FetchStats runs the library statistics query. The returned snapshot is
// complete for this cycle; missing fields are zero.
func (f *Fetcher) FetchStats(ctx context.Context) (Stats, error) {
	data, err := f.exec.Execute(ctx, libraryStatsQuery, nil)
	if err != nil {
		return Stats{}, err
	}
	var payload statsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Stats{}, &UpstreamError{Op: "decode stats", Err: err}
	}
	return payload.Stats, nil
}

// findScenesPayload is the "data" shape of both scene queries. Count is only
// populated by the paginated query; both fields tolerate absence.
type findScenesPayload struct {
	FindScenes struct {
		Count  int     `json:"count"`
		Scenes []Scene `json:"scenes"`
	} `json:"findScenes"`
}

// FetchScenes retrieves the full scene working set for one scrape cycle.
//
// pageSize -1 disables pagination: a single request fetches everything, then
// the result is truncated locally when maxScenes > 0. Any other pageSize
// paginates from page 1; the first page's count field is the authoritative
// total. maxScenes <= 0 means unbounded.
//
// A failure on any page aborts the whole fetch — a cycle's record set is
// all-or-nothing.
func (f *Fetcher) FetchScenes(ctx context.Context, pageSize, maxScenes int) ([]Scene, error) {
	if pageSize == -1 {
		return f.fetchAllScenes(ctx, maxScenes)
	}
	return f.fetchScenesPaged(ctx, pageSize, maxScenes)
}

func (f *Fetcher) fetchAllScenes(ctx context.Context, maxScenes int) ([]Scene, error) {
	data, err := f.exec.Execute(ctx, scenesQuery, nil)
	if err != nil {
		return nil, err
	}
	var payload findScenesPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &UpstreamError{Op: "decode scenes", Err: err}
	}
	scenes := payload.FindScenes.Scenes
	if maxScenes > 0 && len(scenes) > maxScenes {
		slog.Debug("truncating unpaginated scene fetch",
			"fetched", len(scenes), "max_scenes", maxScenes)
		scenes = scenes[:maxScenes]
	}
	return scenes, nil
}

func (f *Fetcher) fetchScenesPaged(ctx context.Context, pageSize, maxScenes int) ([]Scene, error) {
	var scenes []Scene
	total := 0

	for page := 1; ; page++ {
		data, err := f.exec.Execute(ctx, scenesPagedQuery, map[string]any{
			"page":     page,
			"per_page": pageSize,
		})
		if err != nil {
			return nil, err
		}
		var payload findScenesPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, &UpstreamError{Op: "decode scenes page", Err: err}
		}

		if page == 1 {
			total = payload.FindScenes.Count
			want := total
			if maxScenes > 0 && maxScenes < want {
				want = maxScenes
			}
			slog.Debug("scene pagination started",
				"total", total, "page_size", pageSize, "will_fetch", want)
		}

		// An empty page means the server has nothing more to give, even if
		// the reported total says otherwise.
		if len(payload.FindScenes.Scenes) == 0 {
			return scenes, nil
		}

		scenes = append(scenes, payload.FindScenes.Scenes...)

		if maxScenes > 0 && len(scenes) >= maxScenes {
			return scenes[:maxScenes], nil
		}
		if len(scenes) >= total {
			return scenes, nil
		}
	}
}
