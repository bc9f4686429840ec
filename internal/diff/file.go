package diff

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// mtimeTolerance is the fast-path window: equal-size files whose mtimes
// are within it are treated as equal without reading content. This
// trades a small false-negative risk for never hashing unchanged trees.
const mtimeTolerance = 2 // seconds

const probeSize = 1024

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".rst": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".ini": true, ".cfg": true, ".conf": true, ".env": true,
	".py": true, ".go": true, ".js": true, ".ts": true, ".rb": true,
	".sh": true, ".bash": true, ".zsh": true, ".fish": true,
	".c": true, ".h": true, ".cpp": true, ".rs": true, ".java": true,
	".html": true, ".css": true, ".xml": true, ".csv": true,
	".sql": true, ".lock": true,
}

// FilesEqual reports whether two regular files have equivalent content.
// Size mismatch fails fast; equal sizes with near-identical mtimes pass
// without reading; otherwise text files are compared line by line and
// binary files by whole-file hash.
func FilesEqual(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", a, err)
	}

	bi, err := os.Stat(b)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", b, err)
	}

	if ai.Size() != bi.Size() {
		return false, nil
	}

	delta := ai.ModTime().Sub(bi.ModTime()).Seconds()
	if delta < 0 {
		delta = -delta
	}
	if delta < mtimeTolerance {
		return true, nil
	}

	text, err := isTextFile(a)
	if err != nil {
		return false, err
	}

	if text {
		return linesEqual(a, b)
	}

	return hashesEqual(a, b)
}

func isTextFile(path string) (bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if textExtensions[ext] {
		return true, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	buf := make([]byte, probeSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to probe %s: %w", path, err)
	}
	buf = buf[:n]

	if bytes.IndexByte(buf, 0) >= 0 {
		return false, nil
	}

	// Allow a rune cut off by the probe boundary.
	for i := 0; i < utf8.UTFMax-1 && len(buf) > 0 && !utf8.Valid(buf); i++ {
		buf = buf[:len(buf)-1]
	}

	return utf8.Valid(buf), nil
}

func linesEqual(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", a, err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(fa)

	fb, err := os.Open(b)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", b, err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(fb)

	sa := bufio.NewScanner(fa)
	sb := bufio.NewScanner(fb)
	sa.Buffer(make([]byte, 64*1024), 1024*1024)
	sb.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		okA := sa.Scan()
		okB := sb.Scan()

		if okA != okB {
			return false, nil
		}
		if !okA {
			break
		}
		if sa.Text() != sb.Text() {
			return false, nil
		}
	}

	if err := sa.Err(); err != nil {
		return false, fmt.Errorf("failed to read %s: %w", a, err)
	}
	if err := sb.Err(); err != nil {
		return false, fmt.Errorf("failed to read %s: %w", b, err)
	}

	return true, nil
}

func hashesEqual(a, b string) (bool, error) {
	ha, err := checksum(a)
	if err != nil {
		return false, err
	}

	hb, err := checksum(b)
	if err != nil {
		return false, err
	}

	return bytes.Equal(ha, hb), nil
}

func checksum(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return h.Sum(nil), nil
}
