package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/leadflowhq/leadflow/internal/model"
)

// Watch reloads the config file whenever it is written and hands the
// fresh config to onReload. It blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *log.Logger, onReload func(model.Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace the file on save, which
	// would drop a watch set on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				logger.Printf("[ERROR] config_reload_failed path=%s err=%v", path, err)
				continue
			}
			logger.Printf("[INFO] config_reloaded path=%s", path)
			onReload(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("[ERROR] fsnotify error=%v", err)
		}
	}
}
