package logfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/presencewatch/presencewatch/internal/util"
)

var (
	// ErrDirectoryNotFound means the configured log directory does not exist.
	// Fatal at startup; mid-run it stops the watch loop.
	ErrDirectoryNotFound = errors.New("log directory not found")

	// ErrNoLogFile means the directory exists but holds no matching log file.
	// Retryable on the next tick.
	ErrNoLogFile = errors.New("no matching log file")
)

// LogFile is one candidate log file with its creation time as decoded from
// the filename.
type LogFile struct {
	Path      string
	CreatedAt time.Time
}

// Locator finds the most recently created log file in a directory. Filenames
// embed the creation time as PREFIX_YYYY-MM-DD_HH-MM-SS.ffffff.log.
type Locator struct {
	dir     string
	pattern *regexp.Regexp
}

// NewLocator creates a Locator for the given directory and filename prefix.
func NewLocator(dir, prefix string) *Locator {
	return &Locator{
		dir:     dir,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `_(\d{4}-\d{2}-\d{2})_(\d{2}-\d{2}-\d{2}\.\d+)\.log$`),
	}
}

// Locate returns the matching file with the greatest decoded timestamp.
// Names that match the shape but fail timestamp parsing are skipped. Ties
// are broken by the lexicographically later filename.
func (l *Locator) Locate() (LogFile, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return LogFile{}, fmt.Errorf("%w: %s", ErrDirectoryNotFound, l.dir)
		}
		return LogFile{}, fmt.Errorf("read log directory %s: %w", l.dir, err)
	}

	var (
		best     LogFile
		bestName string
		found    bool
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		m := l.pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		// The parse layout has no fractional part; time.Parse accepts the
		// fractional seconds in the input regardless of their width.
		created, err := time.Parse("2006-01-02 15-04-05", m[1]+" "+m[2])
		if err != nil {
			util.LogDebugf("Skipping %s: undecodable timestamp: %v", name, err)
			continue
		}

		if !found || created.After(best.CreatedAt) ||
			(created.Equal(best.CreatedAt) && name > bestName) {
			best = LogFile{Path: filepath.Join(l.dir, name), CreatedAt: created}
			bestName = name
			found = true
		}
	}

	if !found {
		return LogFile{}, fmt.Errorf("%w in %s", ErrNoLogFile, l.dir)
	}
	return best, nil
}
