package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteCreatesParents(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "a", "b", "c.txt")

	require.NoError(t, AtomicWrite(dst, strings.NewReader("content")))

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(raw))

	// No temp file left behind.
	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCopyFilePreservesMetadata(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sh")
	dst := filepath.Join(dir, "out", "dst.sh")

	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0755))
	mtime := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	n, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime), "mtime carried over")
}

func TestBackupFileNaming(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	backupDir := filepath.Join(dir, "bak")
	backupPath, err := BackupFile(path, backupDir)
	require.NoError(t, err)

	assert.Regexp(t, `notes\.txt\.\d{14}\.bak$`, backupPath)
	raw, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(raw))

	// Original stays in place.
	assert.FileExists(t, path)
}

func TestBackupFileDefaultDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	backupPath, err := BackupFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultBackupDirName), filepath.Dir(backupPath))
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	require.NoError(t, RemoveIfExists(path))
	require.NoError(t, RemoveIfExists(path))
	assert.NoFileExists(t, path)
}
