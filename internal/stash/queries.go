package stash

// libraryStatsQuery returns the aggregated library counters. All fields are
// already totals on the Stash side, so this is cheap regardless of library
// size.
const libraryStatsQuery = `
query LibraryStats {
  stats {
    scene_count
    scenes_size
    scenes_duration

    image_count
    images_size

    gallery_count
    performer_count
    studio_count
    group_count
    tag_count

    total_o_count
    total_play_duration
    total_play_count
    scenes_played
  }
}`

// scenesQuery fetches every scene in one response (per_page: -1 is the Stash
// convention for "no pagination"). Only the fields needed for coverage and
// playtime aggregation are requested.
const scenesQuery = `
query ScenePlayHistory {
  findScenes(filter: { per_page: -1 }) {
    scenes {
      organized
      stash_ids { endpoint stash_id }
      tags { id }
      performers { id }
      studio { id }
      scene_markers { id }

      play_count
      play_duration
      play_history
    }
  }
}`

// scenesPagedQuery is the paginated variant of scenesQuery for large
// libraries. The first page's count field is the authoritative total.
const scenesPagedQuery = `
query ScenePlayHistoryPaginated($page: Int!, $per_page: Int!) {
  findScenes(filter: { page: $page, per_page: $per_page }) {
    count
    scenes {
      organized
      stash_ids { endpoint stash_id }
      tags { id }
      performers { id }
      studio { id }
      scene_markers { id }

      play_count
      play_duration
      play_history
    }
  }
}`
