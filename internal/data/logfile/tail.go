package logfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/presencewatch/presencewatch/internal/util"
)

// ReadAllLines reads a whole log file and returns its lines, for full-file
// passes. A trailing newline does not produce an empty final line.
func ReadAllLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log file %s: %w", path, err)
	}
	return splitLines(string(data)), nil
}

// Cursor tracks a byte offset into a growing log file and yields the
// complete lines appended since the previous read. It detects in-place
// truncation and file replacement via size and inode.
type Cursor struct {
	path      string
	offset    int64
	inode     uint64
	remainder string
}

// OpenCursorAtStart positions a cursor at the beginning of the file, so the
// first ReadNew returns the file's existing complete lines. Used for the
// full-file pass; subsequent reads continue from where that pass ended.
// An unterminated trailing line is held back until its newline arrives, so
// it surfaces on a later read rather than in the initial pass.
func OpenCursorAtStart(path string) (*Cursor, error) {
	info, err := util.GetFileInfo(path)
	if err != nil {
		return nil, fmt.Errorf("stat log file %s: %w", path, err)
	}
	return &Cursor{path: path, inode: info.Inode}, nil
}

// OpenCursorAtEnd positions a cursor at the current end of the file, so only
// content appended afterwards is returned.
func OpenCursorAtEnd(path string) (*Cursor, error) {
	info, err := util.GetFileInfo(path)
	if err != nil {
		return nil, fmt.Errorf("stat log file %s: %w", path, err)
	}
	return &Cursor{path: path, offset: info.Size, inode: info.Inode}, nil
}

// Path returns the file this cursor is attached to.
func (c *Cursor) Path() string {
	return c.path
}

// ReadNew returns the complete lines appended since the last read. The
// second return value reports that the file shrank or was replaced in place,
// in which case the caller should run a fresh full-file pass; the cursor
// itself yields no lines for that read.
func (c *Cursor) ReadNew() ([]string, bool, error) {
	info, err := util.GetFileInfo(c.path)
	if err != nil {
		return nil, false, fmt.Errorf("stat log file %s: %w", c.path, err)
	}

	if info.Inode != c.inode || info.Size < c.offset {
		util.LogDebugf("Log file %s was truncated or replaced, resetting cursor", c.path)
		c.offset = info.Size
		c.inode = info.Inode
		c.remainder = ""
		return nil, true, nil
	}
	if info.Size == c.offset {
		return nil, false, nil
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, false, fmt.Errorf("open log file %s: %w", c.path, err)
	}
	defer f.Close()

	if _, err := f.Seek(c.offset, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("seek log file %s: %w", c.path, err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, fmt.Errorf("read log file %s: %w", c.path, err)
	}
	c.offset += int64(len(data))

	// Only complete lines are surfaced; a trailing partial line waits for
	// the next read.
	buf := c.remainder + string(data)
	lines := strings.Split(buf, "\n")
	c.remainder = lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.TrimSuffix(line, "\r"))
	}
	return out, false, nil
}

func splitLines(data string) []string {
	if data == "" {
		return nil
	}
	data = strings.TrimSuffix(data, "\n")
	lines := strings.Split(data, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
