package watch

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/presencewatch/presencewatch/internal/core/status"
	"github.com/presencewatch/presencewatch/internal/data/logfile"
	"github.com/presencewatch/presencewatch/internal/util"
)

// Notifier receives a finalized snapshot and performs the side-effecting
// hub update.
type Notifier interface {
	Publish(ctx context.Context, snap status.Snapshot) error
}

// Config holds the watch loop parameters.
type Config struct {
	LogDir       string
	FilePrefix   string
	PollInterval time.Duration
}

// State is the watch loop's coarse lifecycle state.
type State int

const (
	StateLocating State = iota
	StateTailing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateLocating:
		return "locating"
	case StateTailing:
		return "tailing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Watcher drives the locate/tail/notify cycle. All state is owned by the
// single Run goroutine; poll ticks and file-change events funnel into one
// select loop, so snapshot updates are serialized by construction.
type Watcher struct {
	cfg       Config
	locator   *logfile.Locator
	extractor *status.Extractor
	tracker   *status.Tracker
	notifier  Notifier

	state  State
	cursor *logfile.Cursor
}

// New creates a watcher for the configured log directory.
func New(cfg Config, notifier Notifier) *Watcher {
	return &Watcher{
		cfg:       cfg,
		locator:   logfile.NewLocator(cfg.LogDir, cfg.FilePrefix),
		extractor: status.NewExtractor(),
		tracker:   status.NewTracker(),
		notifier:  notifier,
		state:     StateLocating,
	}
}

// State returns the loop's current lifecycle state.
func (w *Watcher) State() State {
	return w.state
}

// Snapshot returns the current status snapshot.
func (w *Watcher) Snapshot() status.Snapshot {
	return w.tracker.Current()
}

// Run executes the watch loop until the context is cancelled or the log
// directory disappears. A missing directory is the only fatal condition and
// is returned as an error wrapping logfile.ErrDirectoryNotFound.
func (w *Watcher) Run(ctx context.Context) error {
	active, err := w.locateWithRetry(ctx)
	if err != nil {
		w.state = StateStopped
		return err
	}
	if ctx.Err() != nil {
		w.state = StateStopped
		return nil
	}

	// Startup full-file pass, so the hub reflects true current state
	// immediately instead of waiting for the next log write.
	if err := w.startTailing(ctx, active); err != nil {
		util.LogErrorf("Initial scan of %s failed: %v", active.Path, err)
	}

	// File-change events supplement the poll ticker; the loop degrades to
	// polling alone if the subscription cannot be established.
	var fsEvents chan fsnotify.Event
	var fsErrors chan error
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		util.LogWarnf("File watch unavailable, falling back to polling: %v", err)
	} else {
		defer fsw.Close()
		if err := fsw.Add(w.cfg.LogDir); err != nil {
			util.LogWarnf("Cannot watch %s, falling back to polling: %v", w.cfg.LogDir, err)
		} else {
			fsEvents = fsw.Events
			fsErrors = fsw.Errors
		}
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down watch loop")
			w.state = StateStopped
			return nil

		case <-ticker.C:
			if stop := w.tick(ctx); stop {
				return w.stopDirectoryGone()
			}

		case event, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if !relevantEvent(event) {
				continue
			}
			if stop := w.tick(ctx); stop {
				return w.stopDirectoryGone()
			}

		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			util.LogErrorf("File monitoring error: %v", err)
		}
	}
}

// relevantEvent filters directory noise down to log file writes and
// rotations.
func relevantEvent(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".log" {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create)
}

// locateWithRetry waits for a matching log file to appear. A missing
// directory is fatal; an empty directory is retried every poll interval.
func (w *Watcher) locateWithRetry(ctx context.Context) (logfile.LogFile, error) {
	w.state = StateLocating
	for {
		active, err := w.locator.Locate()
		if err == nil {
			return active, nil
		}
		if errors.Is(err, logfile.ErrDirectoryNotFound) {
			return logfile.LogFile{}, err
		}
		if errors.Is(err, logfile.ErrNoLogFile) {
			util.LogDebugf("No log file yet in %s, waiting", w.cfg.LogDir)
		} else {
			util.LogErrorf("Locate failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return logfile.LogFile{}, nil
		case <-time.After(w.cfg.PollInterval):
		}
	}
}

// startTailing runs a full-file pass over the active file and leaves the
// cursor positioned where the pass ended. Also used when rotation hands the
// loop a fresh file.
func (w *Watcher) startTailing(ctx context.Context, active logfile.LogFile) error {
	w.state = StateLocating
	w.cursor = nil

	cursor, err := logfile.OpenCursorAtStart(active.Path)
	if err != nil {
		return err
	}
	lines, _, err := cursor.ReadNew()
	if err != nil {
		return err
	}

	facts := w.extractor.ExtractAll(lines)
	snap, changed := w.tracker.ApplyFullScan(facts)
	util.LogInfof("Scanned %s: %d lines, availability=%s notifications=%s call=%q",
		active.Path, len(lines), snap.Availability, snap.NotificationCount, snap.CallStatus)
	if changed {
		w.publish(ctx, snap)
	}

	w.cursor = cursor
	w.state = StateTailing
	return nil
}

// tick re-derives the active file and processes newly appended lines.
// Returns true when the loop must stop because the directory disappeared.
func (w *Watcher) tick(ctx context.Context) bool {
	active, err := w.locator.Locate()
	if errors.Is(err, logfile.ErrDirectoryNotFound) {
		return true
	}
	if err != nil {
		// Directory still there but empty or unreadable; keep the current
		// cursor and retry next tick.
		util.LogDebugf("Locate failed during tailing: %v", err)
		return false
	}

	// A newer file means the app rotated logs; restart with a full pass.
	if w.cursor == nil || active.Path != w.cursor.Path() {
		if w.cursor != nil {
			util.LogInfof("Log rotated to %s", active.Path)
		}
		if err := w.startTailing(ctx, active); err != nil {
			util.LogErrorf("Scan of %s failed: %v", active.Path, err)
		}
		return false
	}

	lines, truncated, err := w.cursor.ReadNew()
	if err != nil {
		// Transient read failure: abort this tick, next tick retries
		// against a fresh file scan.
		util.LogErrorf("Read of %s failed: %v", w.cursor.Path(), err)
		w.cursor = nil
		return false
	}
	if truncated {
		if err := w.startTailing(ctx, active); err != nil {
			util.LogErrorf("Rescan of %s failed: %v", active.Path, err)
		}
		return false
	}
	if len(lines) == 0 {
		return false
	}

	// Incremental mode: the most recent match in the batch is authoritative.
	facts := w.extractor.ExtractLatest(lines)
	if len(facts) == 0 {
		return false
	}
	snap, changed := w.tracker.Apply(facts)
	if changed {
		util.LogInfof("Status update found in the log: availability=%s notifications=%s call=%q",
			snap.Availability, snap.NotificationCount, snap.CallStatus)
		w.publish(ctx, snap)
	}
	return false
}

// publish pushes the snapshot. Failures are logged and never block the next
// tick; the local snapshot stays optimistic and the hub catches up on the
// next successful push.
func (w *Watcher) publish(ctx context.Context, snap status.Snapshot) {
	if err := w.notifier.Publish(ctx, snap); err != nil {
		util.LogErrorf("Hub update failed: %v", err)
	}
}

func (w *Watcher) stopDirectoryGone() error {
	w.state = StateStopped
	util.LogError("Log directory does not exist, check configuration.")
	return logfile.ErrDirectoryNotFound
}
