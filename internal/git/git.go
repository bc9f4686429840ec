package git

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// All operations shell out to the git CLI; the exit code is the sole
// success signal and stderr is folded into the returned error.

func run(dir string, args ...string) (string, error) {
	full := append([]string{"-C", dir}, args...)
	cmd := exec.Command("git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s failed: %s", args[0], msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func IsRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

// HeadRef resolves the current revision pointer of the repository.
func HeadRef(path string) (string, error) {
	return run(path, "rev-parse", "HEAD")
}

func CurrentBranch(path string) (string, error) {
	return run(path, "rev-parse", "--abbrev-ref", "HEAD")
}

// IsClean reports whether the working tree has no uncommitted changes,
// untracked files included.
func IsClean(path string) (bool, error) {
	out, err := run(path, "status", "--porcelain")
	if err != nil {
		return false, err
	}

	return out == "", nil
}

func Clone(src, dst string) error {
	cmd := exec.Command("git", "clone", src, dst)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("git clone failed: %s", msg)
	}

	return nil
}

// AddRemote registers url under name. Re-adding an existing remote is
// not an error.
func AddRemote(path, name, url string) error {
	if _, err := run(path, "remote", "add", name, url); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return err
	}

	return nil
}

func Fetch(path, remote string) error {
	_, err := run(path, "fetch", remote)
	return err
}

func ResetHard(path, ref string) error {
	_, err := run(path, "reset", "--hard", ref)
	return err
}

func CleanUntracked(path string) error {
	_, err := run(path, "clean", "-fd")
	return err
}
