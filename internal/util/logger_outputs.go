package util

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// formatEntry renders a log entry in the given format.
func formatEntry(entry LogEntry, format LogFormat) (string, error) {
	if format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	timestamp := entry.Timestamp.Format("2006/01/02 15:04:05")
	output := fmt.Sprintf("%s [%s] %s", timestamp, entry.Level, entry.Message)

	if len(entry.Fields) > 0 {
		fieldStrs := make([]string, 0, len(entry.Fields))
		for k, v := range entry.Fields {
			fieldStrs = append(fieldStrs, fmt.Sprintf("%s=%v", k, v))
		}
		output += " " + strings.Join(fieldStrs, " ")
	}
	return output, nil
}

// ConsoleOutput writes logs to console
type ConsoleOutput struct {
	writer io.Writer
	format LogFormat
	mu     sync.Mutex
}

// NewConsoleOutput creates a new console output
func NewConsoleOutput(writer io.Writer, format LogFormat) Output {
	return &ConsoleOutput{
		writer: writer,
		format: format,
	}
}

// Write writes a log entry to console
func (c *ConsoleOutput) Write(entry LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	output, err := formatEntry(entry, c.format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.writer, output)
	return err
}

// Close closes the console output
func (c *ConsoleOutput) Close() error {
	return nil
}

// RotatingFileOutput writes logs to a file and rotates it either when it
// grows past a size limit or when a time interval elapses. Rotated files are
// kept as path.1 (newest) through path.N (oldest).
type RotatingFileOutput struct {
	path        string
	format      LogFormat
	maxBytes    int64         // > 0 enables size-based rotation
	interval    time.Duration // used when maxBytes == 0
	backupCount int

	file     *os.File
	size     int64
	openedAt time.Time
	mu       sync.Mutex
}

// NewRotatingFileOutput opens (or creates) the log file at path. With
// maxBytes > 0 the file rotates by size; otherwise it rotates every
// interval. backupCount rotated files are retained.
func NewRotatingFileOutput(path string, format LogFormat, maxBytes int64, backupCount int, interval time.Duration) (*RotatingFileOutput, error) {
	o := &RotatingFileOutput{
		path:        path,
		format:      format,
		maxBytes:    maxBytes,
		interval:    interval,
		backupCount: backupCount,
	}
	if err := o.open(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *RotatingFileOutput) open() error {
	file, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	o.file = file
	o.size = info.Size()
	o.openedAt = time.Now()
	return nil
}

// Write writes a log entry, rotating first if the policy calls for it.
func (o *RotatingFileOutput) Write(entry LogEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	output, err := formatEntry(entry, o.format)
	if err != nil {
		return err
	}

	if o.shouldRotate(int64(len(output)) + 1) {
		if err := o.rotate(); err != nil {
			return err
		}
	}

	n, err := fmt.Fprintln(o.file, output)
	o.size += int64(n)
	return err
}

func (o *RotatingFileOutput) shouldRotate(pending int64) bool {
	if o.maxBytes > 0 {
		return o.size+pending > o.maxBytes
	}
	if o.interval > 0 {
		return time.Since(o.openedAt) >= o.interval
	}
	return false
}

// rotate shifts path.N-1 -> path.N, ..., path -> path.1 and reopens a fresh
// file at path.
func (o *RotatingFileOutput) rotate() error {
	if err := o.file.Close(); err != nil {
		return err
	}

	for i := o.backupCount - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", o.path, i)
		to := fmt.Sprintf("%s.%d", o.path, i+1)
		if _, err := os.Stat(from); err == nil {
			if err := os.Rename(from, to); err != nil {
				return err
			}
		}
	}
	if o.backupCount > 0 {
		if err := os.Rename(o.path, o.path+".1"); err != nil && !os.IsNotExist(err) {
			return err
		}
	} else {
		if err := os.Remove(o.path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return o.open()
}

// Close closes the file
func (o *RotatingFileOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.file.Close()
}
