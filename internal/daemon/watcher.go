package daemon

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/1broseidon/isim/internal/logger"
)

// debounce coalesces the burst of events editors emit for one save.
const debounce = 100 * time.Millisecond

// ConfigWatcher re-applies the config file whenever it changes.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	reload   func(context.Context) error
}

// NewConfigWatcher watches the directory holding path, which also catches
// editors that replace the file by rename.
func NewConfigWatcher(path string, reload func(context.Context) error) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	return &ConfigWatcher{
		watcher:  watcher,
		filePath: path,
		reload:   reload,
	}, nil
}

// Run delivers reloads until ctx ends. Reload failures are logged and the
// previous config stays in effect.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	log := logger.FromContext(ctx)
	filename := filepath.Base(w.filePath)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case <-timer.C:
			log.Debug("config file changed", zap.String("file", w.filePath))
			if err := w.reload(ctx); err != nil {
				log.Warn("failed to reload config", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", zap.Error(err))
		}
	}
}
