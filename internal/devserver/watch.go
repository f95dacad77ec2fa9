package devserver

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch watches dir recursively and invokes fn once per burst of file
// changes, debounced so a build writing many files triggers a single
// reload. Blocks until ctx is cancelled.
func Watch(ctx context.Context, dir string, debounce time.Duration, fn func(paths []string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	addTree := func(root string) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				_ = w.Add(path)
			}
			return nil
		})
	}
	addTree(dir)

	var pending []string
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// New directories need their own watches.
				addTree(ev.Name)
			}
			pending = append(pending, ev.Name)
			timer.Reset(debounce)
		case _, ok := <-w.Errors:
			if !ok {
				return nil
			}
		case <-timer.C:
			if len(pending) > 0 {
				batch := pending
				pending = nil
				fn(batch)
			}
		}
	}
}
