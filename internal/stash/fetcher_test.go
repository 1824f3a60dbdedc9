package stash

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

// execFunc adapts a closure to the Executor interface.
type execFunc func(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)

func (f execFunc) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	return f(ctx, query, variables)
}

// scenesJSON renders a findScenes payload with n placeholder scenes and the
// given total count.
func scenesJSON(t *testing.T, count, n int) json.RawMessage {
	t.Helper()
	scenes := make([]map[string]any, n)
	for i := range scenes {
		scenes[i] = map[string]any{"play_count": 1}
	}
	data, err := json.Marshal(map[string]any{
		"findScenes": map[string]any{"count": count, "scenes": scenes},
	})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// pagedExec serves pages of sizes pages[i] for page i+1, recording requested
// page numbers. total is the count reported on every page.
func pagedExec(t *testing.T, total int, pages []int, gotPages *[]int) execFunc {
	return func(_ context.Context, query string, vars map[string]any) (json.RawMessage, error) {
		if query != scenesPagedQuery {
			t.Fatalf("unexpected query: %.40q", query)
		}
		page, ok := vars["page"].(int)
		if !ok {
			t.Fatalf("page variable missing or not int: %v", vars["page"])
		}
		*gotPages = append(*gotPages, page)
		n := 0
		if page-1 < len(pages) {
			n = pages[page-1]
		}
		return scenesJSON(t, total, n), nil
	}
}

func TestFetchScenes_Paginated(t *testing.T) {
	// 5 scenes total served as pages of 2, 2, 1.
	var gotPages []int
	f := NewFetcher(pagedExec(t, 5, []int{2, 2, 1}, &gotPages))

	scenes, err := f.FetchScenes(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("FetchScenes() error = %v", err)
	}
	if len(scenes) != 5 {
		t.Errorf("scenes = %d, want 5", len(scenes))
	}
	if len(gotPages) != 3 {
		t.Errorf("page requests = %v, want exactly 3", gotPages)
	}
	for i, p := range gotPages {
		if p != i+1 {
			t.Errorf("page request %d = %d, want %d", i, p, i+1)
		}
	}
}

func TestFetchScenes_TruncatesAtMax(t *testing.T) {
	var gotPages []int
	f := NewFetcher(pagedExec(t, 5, []int{2, 2, 1}, &gotPages))

	scenes, err := f.FetchScenes(context.Background(), 2, 3)
	if err != nil {
		t.Fatalf("FetchScenes() error = %v", err)
	}
	if len(scenes) != 3 {
		t.Errorf("scenes = %d, want exactly 3 after truncation", len(scenes))
	}
	// 2 pages suffice to reach 4 >= 3; page 3 must never be requested.
	if len(gotPages) != 2 {
		t.Errorf("page requests = %v, want 2", gotPages)
	}
}

func TestFetchScenes_UnboundedMax(t *testing.T) {
	for _, max := range []int{0, -1} {
		var gotPages []int
		f := NewFetcher(pagedExec(t, 5, []int{2, 2, 1}, &gotPages))

		scenes, err := f.FetchScenes(context.Background(), 2, max)
		if err != nil {
			t.Fatalf("FetchScenes(max=%d) error = %v", max, err)
		}
		if len(scenes) != 5 {
			t.Errorf("max=%d: scenes = %d, want all 5", max, len(scenes))
		}
	}
}

func TestFetchScenes_StopsOnEmptyPage(t *testing.T) {
	// Server claims 10 scenes but runs dry after one page of 2. The empty
	// page must terminate the loop instead of spinning on the bogus total.
	var gotPages []int
	f := NewFetcher(pagedExec(t, 10, []int{2}, &gotPages))

	scenes, err := f.FetchScenes(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("FetchScenes() error = %v", err)
	}
	if len(scenes) != 2 {
		t.Errorf("scenes = %d, want the 2 actually served", len(scenes))
	}
	if len(gotPages) != 2 {
		t.Errorf("page requests = %v, want 2 (data page + empty page)", gotPages)
	}
}

func TestFetchScenes_Unpaginated(t *testing.T) {
	calls := 0
	f := NewFetcher(execFunc(func(_ context.Context, query string, vars map[string]any) (json.RawMessage, error) {
		calls++
		if query != scenesQuery {
			t.Fatalf("unexpected query: %.40q", query)
		}
		if vars != nil {
			t.Errorf("unpaginated query sent variables: %v", vars)
		}
		return scenesJSON(t, 0, 4), nil
	}))

	scenes, err := f.FetchScenes(context.Background(), -1, 0)
	if err != nil {
		t.Fatalf("FetchScenes() error = %v", err)
	}
	if len(scenes) != 4 {
		t.Errorf("scenes = %d, want 4", len(scenes))
	}
	if calls != 1 {
		t.Errorf("requests = %d, want 1", calls)
	}
}

func TestFetchScenes_UnpaginatedTruncates(t *testing.T) {
	f := NewFetcher(execFunc(func(context.Context, string, map[string]any) (json.RawMessage, error) {
		return scenesJSON(t, 0, 4), nil
	}))

	scenes, err := f.FetchScenes(context.Background(), -1, 3)
	if err != nil {
		t.Fatalf("FetchScenes() error = %v", err)
	}
	if len(scenes) != 3 {
		t.Errorf("scenes = %d, want 3 after local truncation", len(scenes))
	}
}

func TestFetchScenes_MissingFieldsTolerated(t *testing.T) {
	// Payload without count or scenes: both default to empty, no error.
	f := NewFetcher(execFunc(func(context.Context, string, map[string]any) (json.RawMessage, error) {
		return json.RawMessage(`{"findScenes": {}}`), nil
	}))

	scenes, err := f.FetchScenes(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("FetchScenes() error = %v", err)
	}
	if len(scenes) != 0 {
		t.Errorf("scenes = %d, want 0", len(scenes))
	}
}

func TestFetchScenes_ErrorAbortsWholeFetch(t *testing.T) {
	// Page 1 succeeds, page 2 fails: no partial result may escape.
	f := NewFetcher(execFunc(func(_ context.Context, _ string, vars map[string]any) (json.RawMessage, error) {
		if vars["page"].(int) == 1 {
			return scenesJSON(t, 4, 2), nil
		}
		return nil, &UpstreamError{Op: "graphql post", Err: fmt.Errorf("connection reset")}
	}))

	scenes, err := f.FetchScenes(context.Background(), 2, 0)
	if err == nil {
		t.Fatal("FetchScenes() expected error")
	}
	if !IsUpstream(err) {
		t.Errorf("error %v should be classified as upstream", err)
	}
	if scenes != nil {
		t.Errorf("scenes = %v, want nil on failure", scenes)
	}
}

func TestFetchStats(t *testing.T) {
	f := NewFetcher(execFunc(func(_ context.Context, query string, _ map[string]any) (json.RawMessage, error) {
		if query != libraryStatsQuery {
			t.Fatalf("unexpected query: %.40q", query)
		}
		return json.RawMessage(`{"stats": {"scene_count": 10, "scenes_duration": 3600}}`), nil
	}))

	stats, err := f.FetchStats(context.Background())
	if err != nil {
		t.Fatalf("FetchStats() error = %v", err)
	}
	if stats.SceneCount != 10 {
		t.Errorf("SceneCount = %v, want 10", stats.SceneCount)
	}
	if stats.ScenesDuration != 3600 {
		t.Errorf("ScenesDuration = %v, want 3600", stats.ScenesDuration)
	}
	// Fields absent from the response default to zero.
	if stats.TagCount != 0 {
		t.Errorf("TagCount = %v, want 0", stats.TagCount)
	}
}

func TestSceneDecode_MissingFields(t *testing.T) {
	var sc Scene
	if err := json.Unmarshal([]byte(`{}`), &sc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if sc.Organized || sc.Studio != nil || len(sc.Tags) != 0 ||
		sc.PlayCount != 0 || sc.PlayDuration != 0 || len(sc.PlayHistory) != 0 {
		t.Errorf("empty scene did not decode to zero values: %+v", sc)
	}
}
