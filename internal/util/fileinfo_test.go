package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0644))

	info, err := GetFileInfo(path)

	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size)
	assert.NotZero(t, info.Inode)
}

func TestGetFileInfoMissingFile(t *testing.T) {
	_, err := GetFileInfo(filepath.Join(t.TempDir(), "nope"))

	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestGetFileInfoInodeChangesOnReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0644))
	before, err := GetFileInfo(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.WriteFile(path, []byte("two\n"), 0644))
	after, err := GetFileInfo(path)
	require.NoError(t, err)

	assert.NotEqual(t, before.Inode, after.Inode)
}
