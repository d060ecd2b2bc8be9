package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// SpoolWatcher invokes a handler for event files as the task manager drops
// them into the spool directory.
type SpoolWatcher interface {
	// Watch blocks until ctx is cancelled, calling handle for every
	// created or rewritten .json file in the spool directory. Handler
	// errors are reported through onError and do not stop the watch.
	Watch(ctx context.Context, handle func(path string) error, onError func(error)) error
}

type fsnotifySpoolWatcher struct {
	dir string
}

// NewSpoolWatcher creates a SpoolWatcher over the given spool directory.
func NewSpoolWatcher(dir string) SpoolWatcher {
	return &fsnotifySpoolWatcher{dir: dir}
}

func (w *fsnotifySpoolWatcher) Watch(ctx context.Context, handle func(path string) error, onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating spool watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching spool directory %s: %w", w.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if err := handle(event.Name); err != nil && onError != nil {
				onError(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(fmt.Errorf("spool watcher: %w", err))
			}
		}
	}
}
