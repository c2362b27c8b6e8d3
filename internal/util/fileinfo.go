package util

import (
	"os"

	"golang.org/x/sys/unix"
)

// FileInfo contains the file identity the tail cursor tracks: current size
// and inode number.
type FileInfo struct {
	Size  int64  // File size in bytes
	Inode uint64 // Inode number (unique file identifier on Unix-like systems)
}

// GetFileInfo retrieves size and inode for a file. Supported on Linux and
// macOS.
func GetFileInfo(filepath string) (*FileInfo, error) {
	var stat unix.Stat_t
	if err := unix.Stat(filepath, &stat); err != nil {
		return nil, &os.PathError{Op: "stat", Path: filepath, Err: err}
	}

	return &FileInfo{
		Size:  stat.Size,
		Inode: stat.Ino,
	}, nil
}
