package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/vecglyph/vecglyph/engine/core"
)

// Watcher reloads the configuration whenever its file changes on disk.
// Reload errors keep the previous configuration and log a warning, so a
// half-saved edit never takes the process down.
type Watcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	done     chan struct{}
	onChange func(Config)
}

// Watch starts watching path and calls onChange with each successfully
// reloaded configuration. onChange runs on the watcher goroutine.
func Watch(path string, onChange func(Config)) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directory, not the file: editors replace files on save
	// and a file watch dies with the old inode
	if err := fsWatch.Add(filepath.Dir(path)); err != nil {
		fsWatch.Close()
		return nil, err
	}
	w := &Watcher{
		path:     path,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		onChange: onChange,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				core.LogWarn("config reload failed, keeping previous: %v", err)
				continue
			}
			core.LogInfo("config reloaded from %s", w.path)
			w.onChange(cfg)
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogWarn("config watcher: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsnotify.Close()
}
