package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

const (
	debounce     = 150 * time.Millisecond
	pollInterval = 50 * time.Millisecond
)

// watch re-applies changed sources until ctx is done. poll, if set, runs
// periodically on the calling goroutine so a GL window stays responsive.
func (b *builder) watch(ctx context.Context, poll func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to start watcher")
	}
	defer w.Close()

	if err := b.watchDirs(w); err != nil {
		return err
	}
	b.log.Info("watching for changes", "manifest", b.path)

	pending := make(map[string]bool)
	flush := time.NewTimer(debounce)
	flush.Stop()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				pending[filepath.Clean(ev.Name)] = true
				flush.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.log.Warn("watcher error", "err", err)
		case <-flush.C:
			if err := b.reload(pending); err != nil {
				b.log.Error("reload failed", "err", err)
			}
			clear(pending)
			if err := b.watchDirs(w); err != nil {
				b.log.Warn("watch update failed", "err", err)
			}
		case <-tick.C:
			if poll != nil {
				poll()
			}
		}
	}
}

// watchDirs watches the directories of the manifest and of every file source.
func (b *builder) watchDirs(w *fsnotify.Watcher) error {
	dirs := map[string]bool{filepath.Dir(b.path): true}
	for _, s := range b.manifest.Sources {
		if s.Path != "" {
			dirs[filepath.Dir(s.Path)] = true
		}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return errors.Wrapf(err, "failed to watch %q", d)
		}
	}
	return nil
}
