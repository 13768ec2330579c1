// Package watch regenerates the report whenever files below the root change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/codedoc/internal/utils"
)

const (
	errorCreateWatcherFormat = "create filesystem watcher: %w"
	errorRegisterRootFormat  = "watch %s: %w"

	warningRegisterDirectoryMessage = "unable to watch directory"
	warningWatcherErrorMessage      = "filesystem watcher error"
	warningRegenerateFailedMessage  = "regeneration failed"
)

// IgnoreFunc reports whether a slash-separated path relative to the root is
// outside the watched set.
type IgnoreFunc func(relativePath string, isDirectory bool) bool

// RegenerateFunc produces a fresh report.
type RegenerateFunc func(ctx context.Context) error

// Config configures a Watcher.
type Config struct {
	RootDirectory string
	Debounce      time.Duration
	MinInterval   time.Duration
	Ignore        IgnoreFunc
	Regenerate    RegenerateFunc
	Logger        *zap.Logger
	Clock         func() time.Time
}

// Watcher serializes regenerations triggered by filesystem events.
type Watcher struct {
	config       Config
	absoluteRoot string
	logger       *zap.Logger
	clock        func() time.Time
}

// NewWatcher validates the configuration and returns a Watcher.
func NewWatcher(config Config) (*Watcher, error) {
	if config.Regenerate == nil {
		return nil, errors.New("watch requires a regenerate function")
	}
	absoluteRoot, absoluteError := filepath.Abs(config.RootDirectory)
	if absoluteError != nil {
		return nil, fmt.Errorf(errorRegisterRootFormat, config.RootDirectory, absoluteError)
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	if config.Ignore == nil {
		config.Ignore = func(string, bool) bool { return false }
	}
	return &Watcher{config: config, absoluteRoot: absoluteRoot, logger: logger, clock: clock}, nil
}

// Run generates once, then regenerates after changes until ctx is cancelled.
// Cancellation is not an error.
func (watcher *Watcher) Run(ctx context.Context) error {
	fileSystemWatcher, createError := fsnotify.NewWatcher()
	if createError != nil {
		return fmt.Errorf(errorCreateWatcherFormat, createError)
	}
	defer fileSystemWatcher.Close()

	if registerError := watcher.registerTree(fileSystemWatcher, watcher.absoluteRoot); registerError != nil {
		return registerError
	}

	watcher.regenerate(ctx)

	triggers := make(chan struct{}, 1)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return watcher.collectEvents(groupCtx, fileSystemWatcher, triggers)
	})
	group.Go(func() error {
		return watcher.scheduleRegenerations(groupCtx, triggers)
	})
	waitError := group.Wait()
	if waitError != nil && !errors.Is(waitError, context.Canceled) {
		return waitError
	}
	return nil
}

// registerTree adds directory and every non-ignored directory below it.
func (watcher *Watcher) registerTree(fileSystemWatcher *fsnotify.Watcher, directory string) error {
	return filepath.WalkDir(directory, func(currentPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if currentPath == watcher.absoluteRoot {
				return fmt.Errorf(errorRegisterRootFormat, currentPath, walkError)
			}
			watcher.logger.Warn(warningRegisterDirectoryMessage, zap.String("path", currentPath), zap.Error(walkError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.IsDir() {
			return nil
		}
		if currentPath != watcher.absoluteRoot && watcher.config.Ignore(watcher.relativePath(currentPath), true) {
			return filepath.SkipDir
		}
		if addError := fileSystemWatcher.Add(currentPath); addError != nil {
			if currentPath == watcher.absoluteRoot {
				return fmt.Errorf(errorRegisterRootFormat, currentPath, addError)
			}
			watcher.logger.Warn(warningRegisterDirectoryMessage, zap.String("path", currentPath), zap.Error(addError))
		}
		return nil
	})
}

func (watcher *Watcher) collectEvents(ctx context.Context, fileSystemWatcher *fsnotify.Watcher, triggers chan<- struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, open := <-fileSystemWatcher.Events:
			if !open {
				return nil
			}
			isDirectory := false
			if info, statError := os.Stat(event.Name); statError == nil && info.IsDir() {
				isDirectory = true
			}
			if !watcher.ShouldTrigger(event.Name, isDirectory) {
				continue
			}
			if isDirectory && event.Has(fsnotify.Create) {
				if registerError := watcher.registerTree(fileSystemWatcher, event.Name); registerError != nil {
					watcher.logger.Warn(warningRegisterDirectoryMessage, zap.String("path", event.Name), zap.Error(registerError))
				}
			}
			watcher.logger.Debug("change detected", zap.String("path", watcher.relativePath(event.Name)), zap.String("op", event.Op.String()))
			select {
			case triggers <- struct{}{}:
			default:
			}
		case watchError, open := <-fileSystemWatcher.Errors:
			if !open {
				return nil
			}
			watcher.logger.Warn(warningWatcherErrorMessage, zap.Error(watchError))
		}
	}
}

func (watcher *Watcher) scheduleRegenerations(ctx context.Context, triggers <-chan struct{}) error {
	schedule := Schedule{Debounce: watcher.config.Debounce, MinInterval: watcher.config.MinInterval}
	schedule.MarkRun(watcher.clock())

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-triggers:
			now := watcher.clock()
			timer.Reset(schedule.NextRun(now).Sub(now))
		case <-timer.C:
			schedule.MarkRun(watcher.clock())
			watcher.regenerate(ctx)
		}
	}
}

func (watcher *Watcher) regenerate(ctx context.Context) {
	if regenerateError := watcher.config.Regenerate(ctx); regenerateError != nil {
		watcher.logger.Warn(warningRegenerateFailedMessage, zap.Error(regenerateError))
	}
}

// ShouldTrigger reports whether a change at absolutePath warrants a regeneration.
func (watcher *Watcher) ShouldTrigger(absolutePath string, isDirectory bool) bool {
	if !utils.IsWithinDirectory(watcher.absoluteRoot, absolutePath) {
		return false
	}
	return !watcher.config.Ignore(watcher.relativePath(absolutePath), isDirectory)
}

func (watcher *Watcher) relativePath(absolutePath string) string {
	return utils.RelativePathOrSelf(absolutePath, watcher.absoluteRoot)
}

// Schedule decides when the next regeneration may run: Debounce after the
// latest change, and never sooner than MinInterval after the previous run.
type Schedule struct {
	Debounce    time.Duration
	MinInterval time.Duration
	lastRun     time.Time
}

// MarkRun records a regeneration started at runTime.
func (schedule *Schedule) MarkRun(runTime time.Time) {
	schedule.lastRun = runTime
}

// NextRun returns the earliest regeneration time for a change observed at changeTime.
func (schedule *Schedule) NextRun(changeTime time.Time) time.Time {
	nextRun := changeTime.Add(schedule.Debounce)
	if !schedule.lastRun.IsZero() {
		earliest := schedule.lastRun.Add(schedule.MinInterval)
		if nextRun.Before(earliest) {
			nextRun = earliest
		}
	}
	return nextRun
}
