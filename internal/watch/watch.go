// Package watch calls back when a repository changes, so reports can be
// regenerated while the user works.
package watch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/git2html/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

type Options struct {
	Delay time.Duration
	// Ignore lists paths whose events never trigger, typically the report
	// being written inside the repository.
	Ignore []string
	// IgnorePatterns are filepath.Match globs checked against base names.
	IgnorePatterns []string
}

// Run watches root and its .git directory until ctx is done, calling onChange
// once per burst of relevant events.
func Run(ctx context.Context, root string, opts Options, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
	}()
	for path := range watchPaths(root) {
		slog.Debug("adding path to FS watcher", slog.String("path", path))
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	d := debounce.New(delay, onChange)
	defer d.Stop()

	ignored := make(map[string]struct{}, len(opts.Ignore))
	for _, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			ignored[abs] = struct{}{}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(ev.Name) {
				continue
			}
			if _, skip := ignored[ev.Name]; skip || matchesAny(opts.IgnorePatterns, ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			d.Trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				d.Trigger()
				continue
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

// watchPaths yields the worktree root and, when present, its .git directory.
// fsnotify is not recursive, so nested worktree edits are only seen through
// the index and refs they eventually touch.
func watchPaths(root string) iter.Seq[string] {
	if root == "" {
		return func(func(string) bool) {}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	uniquePaths := map[string]struct{}{abs: {}}
	gitDir := filepath.Join(abs, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		uniquePaths[gitDir] = struct{}{}
	}
	return maps.Keys(uniquePaths)
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc"
}

func matchesAny(patterns []string, name string) bool {
	base := filepath.Base(name)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}
