package application

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = 300 * time.Millisecond

// Watcher re-runs the pipeline whenever Terraform sources under the watched
// directory change, coalescing bursts of filesystem events. An optional
// interval additionally re-runs on a fixed ticker.
type Watcher struct {
	log      *zap.Logger
	dir      string
	interval time.Duration
	run      func(ctx context.Context)
}

func NewWatcher(log *zap.Logger, dir string, interval time.Duration, run func(ctx context.Context)) *Watcher {
	return &Watcher{log: log, dir: dir, interval: interval, run: run}
}

func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	if err := addRecursive(fw, w.dir); err != nil {
		return err
	}

	var tick <-chan time.Time
	if w.interval > 0 {
		t := time.NewTicker(w.interval)
		defer t.Stop()
		tick = t.C
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	arm := func() {
		if timer == nil {
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
			return
		}
		timer.Reset(debounce)
	}

	w.log.Info("watching", zap.String("dir", w.dir), zap.Duration("interval", w.interval))
	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-fire:
			w.run(ctx)
		case <-tick:
			w.run(ctx)
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// New subdirectories must be picked up for recursive watch.
				_ = addRecursive(fw, ev.Name)
			}
			if !watchedFile(ev.Name) {
				continue
			}
			arm()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func watchedFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasSuffix(base, ".tf.json") {
		return true
	}
	switch filepath.Ext(base) {
	case ".tf", ".tofu":
		return true
	}
	return false
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if base := filepath.Base(path); base == ".git" || base == ".terraform" {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
