// Package config loads and watches the exporter configuration file
// (config.yaml).
//
// Top-level types:
//   - Config{Stash, Exporter} — full config tree parsed from YAML
//   - StashConfig — url, api_key_env, timeout, tls; APIKey() resolves the
//     credential from the environment so it never lives in the file
//   - ExporterConfig — listen_port, scrape_interval, scene_page_size
//     (-1 disables pagination), max_scenes (<=0 unbounded), log_level
//
// Load(path) reads the YAML file, applies defaults (60s interval, port 9090,
// page size 1000, 30s upstream timeout, info logging), then validates
// required fields and sentinels.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create
// pattern used by atomic-save editors by re-adding the watch after the
// event.
package config
