package commands

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces editor save bursts into one re-check.
const debounceDelay = 100 * time.Millisecond

// watchCheck runs the metadata check, then re-runs it whenever a model or
// schema file changes. Blocks until the context is cancelled. Check failures
// are reported per run but never stop the watch.
func watchCheck(ctx context.Context, cmdCtx *CommandContext) error {
	runOnce := func() {
		if err := runCheck(ctx, cmdCtx); err != nil {
			cmdCtx.Renderer.Warning(err.Error())
		}
	}

	runOnce()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, cmdCtx.Cfg.ModelsDir); err != nil {
		return err
	}
	// Schema files can live anywhere under the root; watching the root
	// non-recursively covers the common top-level layout.
	if err := watcher.Add(cmdCtx.Cfg.ProjectRoot); err != nil {
		cmdCtx.Logger.Debug("failed to watch project root", "error", err)
	}

	cmdCtx.Renderer.Printf("\nWatching %s for changes (Ctrl+C to stop)\n", cmdCtx.Cfg.ModelsDir)

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			ext := filepath.Ext(event.Name)
			if ext != ".sql" && ext != ".yml" && ext != ".yaml" {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				cmdCtx.Logger.Debug("file changed, re-checking", "file", event.Name)
				runOnce()
			})

		case err := <-watcher.Errors:
			cmdCtx.Logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
