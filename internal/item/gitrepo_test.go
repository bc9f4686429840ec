package item

import (
	"os/exec"
	"path/filepath"
	"testing"

	"envsync/internal/config"
	"envsync/internal/git"
	"envsync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func initRepo(t *testing.T, dir string) {
	t.Helper()
	gitRun(t, dir, "init", "-b", "main", ".")
	gitRun(t, dir, "config", "user.email", "test@example.com")
	gitRun(t, dir, "config", "user.name", "test")
}

func commitFile(t *testing.T, dir, name, content string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, name), []byte(content))
	gitRun(t, dir, "add", name)
	gitRun(t, dir, "commit", "-m", "add "+name)
}

func TestGitRepoSyncClonesMissingTarget(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, writeDir(src))
	initRepo(t, src)
	commitFile(t, src, "a.txt", "a\n")

	g := NewGitRepo(src, dst, testEnv(t, nil))

	needed, err := g.NeedsSync()
	require.NoError(t, err)
	require.True(t, needed)

	res := g.Sync()
	require.True(t, res.Success)
	assert.True(t, res.ChangesMade)
	assert.True(t, git.IsRepo(dst))
	assert.Equal(t, []byte("a\n"), readFile(t, filepath.Join(dst, "a.txt")))
}

func TestGitRepoSyncEqualRefsIsNoOp(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, writeDir(src))
	initRepo(t, src)
	commitFile(t, src, "a.txt", "a\n")
	gitRun(t, dir, "clone", src, dst)

	g := NewGitRepo(src, dst, testEnv(t, nil))

	needed, err := g.NeedsSync()
	require.NoError(t, err)
	assert.False(t, needed)

	res := g.Sync()
	require.True(t, res.Success)
	assert.False(t, res.ChangesMade)
	assert.Equal(t, "already in sync", res.Message)
}

func TestGitRepoSyncResetsTargetToSourceTip(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, writeDir(src))
	initRepo(t, src)
	commitFile(t, src, "a.txt", "a\n")
	gitRun(t, dir, "clone", src, dst)
	commitFile(t, src, "b.txt", "b\n")

	res := NewGitRepo(src, dst, testEnv(t, nil)).Sync()
	require.True(t, res.Success)
	assert.True(t, res.ChangesMade)

	srcRef, err := git.HeadRef(src)
	require.NoError(t, err)
	dstRef, err := git.HeadRef(dst)
	require.NoError(t, err)
	assert.Equal(t, srcRef, dstRef)
}

func TestGitRepoSyncDirtyTargetIsSafetyStop(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, writeDir(src))
	initRepo(t, src)
	commitFile(t, src, "a.txt", "a\n")
	gitRun(t, dir, "clone", src, dst)
	commitFile(t, src, "b.txt", "b\n")

	// Uncommitted local edit in the target.
	writeFile(t, filepath.Join(dst, "a.txt"), []byte("local edit\n"))

	env := testEnv(t, func(c *config.SyncConfig) { c.Strategy = model.StrategyMerge })

	res := NewGitRepo(src, dst, env).Sync()
	require.False(t, res.Success)
	assert.Contains(t, res.Message, "uncommitted changes")
}

func TestGitRepoSyncSourceWinsDiscardsDirtyTarget(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, writeDir(src))
	initRepo(t, src)
	commitFile(t, src, "a.txt", "a\n")
	gitRun(t, dir, "clone", src, dst)
	commitFile(t, src, "b.txt", "b\n")

	writeFile(t, filepath.Join(dst, "a.txt"), []byte("local edit\n"))
	writeFile(t, filepath.Join(dst, "untracked.txt"), []byte("scratch\n"))

	res := NewGitRepo(src, dst, testEnv(t, nil)).Sync()
	require.True(t, res.Success)
	assert.True(t, res.ChangesMade)
	assert.Equal(t, []byte("a\n"), readFile(t, filepath.Join(dst, "a.txt")))
	assert.NoFileExists(t, filepath.Join(dst, "untracked.txt"))
	assert.FileExists(t, filepath.Join(dst, "b.txt"))
}

func TestGitRepoSyncNonRepoSourceFails(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, writeDir(src))

	res := NewGitRepo(src, filepath.Join(dir, "dst"), testEnv(t, nil)).Sync()
	require.False(t, res.Success)
	assert.Contains(t, res.Message, "not a git repository")
}

func TestGitRepoSyncNonRepoTargetFails(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, writeDir(src))
	initRepo(t, src)
	commitFile(t, src, "a.txt", "a\n")

	require.NoError(t, writeDir(dst))
	writeFile(t, filepath.Join(dst, "random.txt"), []byte("pre-existing\n"))

	res := NewGitRepo(src, dst, testEnv(t, nil)).Sync()
	require.False(t, res.Success)
	assert.Contains(t, res.Message, "not a git repository")
}
