package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const backupTimeFormat = "20060102150405"

// DefaultBackupDirName is the hidden sibling directory used for backups
// when no explicit backup directory is configured.
const DefaultBackupDirName = ".envsync-backup"

func AtomicWrite(dst string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}

	tmp := dst + ".envsync.tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}

// CopyFile copies content and essential metadata (mode, mtime) from src
// to dst, creating parent directories as needed. Returns the number of
// bytes copied.
func CopyFile(src, dst string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("failed to stat src: %w", err)
	}

	f, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open src: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if err := AtomicWrite(dst, f); err != nil {
		return 0, err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to chmod dst: %w", err)
	}

	if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		return 0, fmt.Errorf("failed to set mtime: %w", err)
	}

	return info.Size(), nil
}

// BackupFile snapshots path into backupDir under
// <name>.<YYYYMMDDHHMMSS>.bak. An empty backupDir selects a hidden
// sibling directory of path. The original is left in place.
func BackupFile(path, backupDir string) (string, error) {
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(path), DefaultBackupDirName)
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	name := fmt.Sprintf("%s.%s.bak", filepath.Base(path), time.Now().Format(backupTimeFormat))
	backupPath := filepath.Join(backupDir, name)

	if _, err := CopyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to backup %s: %w", path, err)
	}

	return backupPath, nil
}

func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}
