package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"docprint/internal/codec"
	"docprint/internal/logging"
)

const (
	defaultDebounce = 200 * time.Millisecond
	watchTick       = 50 * time.Millisecond
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce is how long a file must stay quiet before it is reprinted.
	Debounce time.Duration
	// OnReport receives the initial run and every rerun.
	OnReport func(*Report, error)
}

// Watch prints paths once and then reprints doc files as they change, until
// ctx is canceled. Each rerun gets its own run id and timer. Output files
// are never picked up as inputs.
func Watch(ctx context.Context, paths []string, opts PrintOptions, wopts WatchOptions) error {
	if wopts.Debounce <= 0 {
		wopts.Debounce = defaultDebounce
	}
	logger := logging.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := watcher.Close(); cerr != nil {
			logger.Warn("closing file watcher failed", zap.Error(cerr))
		}
	}()

	for _, dir := range watchDirs(paths) {
		if err := watcher.Add(dir); err != nil {
			return err
		}
		logger.Debug("watching", zap.String("dir", dir))
	}

	known := make(map[string]struct{})
	report, err := Run(ctx, paths, opts)
	if report != nil {
		for _, res := range report.Results {
			known[res.Path] = struct{}{}
		}
	}
	deliver(wopts, report, err)

	outputs := make(map[string]struct{}, len(known))
	for path := range known {
		outputs[OutputPath(path)] = struct{}{}
	}
	isInput := func(path string) bool {
		if _, ok := outputs[path]; ok {
			return false
		}
		if _, ok := known[path]; ok {
			return true
		}
		return codec.IsDocFile(path)
	}

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(name); err == nil && info.IsDir() {
					if err := watcher.Add(name); err != nil {
						logger.Warn("watching new directory failed", zap.String("dir", name), zap.Error(err))
					}
					continue
				}
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if isInput(name) {
				pending[name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", zap.Error(err))

		case now := <-ticker.C:
			batch := due(pending, now, wopts.Debounce)
			if len(batch) == 0 {
				continue
			}
			rerun := opts
			rerun.RunID = uuid.Nil
			rerun.Timer = nil
			report, err := Run(ctx, batch, rerun)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if report != nil {
				for _, res := range report.Results {
					known[res.Path] = struct{}{}
					outputs[OutputPath(res.Path)] = struct{}{}
				}
			}
			deliver(wopts, report, err)
		}
	}
}

func deliver(wopts WatchOptions, report *Report, err error) {
	if wopts.OnReport != nil {
		wopts.OnReport(report, err)
	}
}

// due removes and returns the pending files quiet for at least debounce
// that still exist.
func due(pending map[string]time.Time, now time.Time, debounce time.Duration) []string {
	var batch []string
	for path, at := range pending {
		if now.Sub(at) < debounce {
			continue
		}
		delete(pending, path)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			batch = append(batch, path)
		}
	}
	sort.Strings(batch)
	return batch
}

// watchDirs lists the directories to watch: every directory under a
// directory argument, and the parent of each file argument.
func watchDirs(paths []string) []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		_ = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	sort.Strings(dirs)
	return dirs
}
