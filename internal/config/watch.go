package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path and calls onChange with a freshly parsed Config each
// time the file is rewritten. It blocks until ctx is cancelled.
//
// A reload that fails validation is logged and dropped; the previously
// active config stays in effect and onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				reload(path, onChange)
				// Atomic saves (vim, VS Code) replace the inode; re-add the
				// path so subsequent writes are still seen.
				_ = watcher.Add(path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

func reload(path string, onChange func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed — keeping previous config",
			"path", path, "err", err)
		return
	}
	slog.Info("config: reloaded", "path", path, "log_level", cfg.Exporter.LogLevel)
	onChange(cfg)
}
