package item

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"envsync/internal/config"
	"envsync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJSON(t *testing.T, path string) any {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal(readFile(t, path), &doc))
	return doc
}

func TestConfigSyncCreatesMissingTargetVerbatim(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`{"b": 2, "a": 1}`)
	src := writeFile(t, filepath.Join(dir, "src", "settings.json"), raw)
	dst := filepath.Join(dir, "dst", "settings.json")

	res := NewConfig(src, dst, testEnv(t, nil)).Sync()
	require.True(t, res.Success)
	assert.True(t, res.ChangesMade)
	assert.Equal(t, int64(len(raw)), res.BytesTransferred)
	assert.Equal(t, raw, readFile(t, dst))
}

func TestConfigSyncAlreadyInSync(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "src", "s.json"), []byte(`{"a": 1, "b": 2}`))
	dst := writeFile(t, filepath.Join(dir, "dst", "s.json"), []byte("{\"b\": 2,\n \"a\": 1}"))

	res := NewConfig(src, dst, testEnv(t, nil)).Sync()
	require.True(t, res.Success)
	assert.False(t, res.ChangesMade)
	assert.Equal(t, "already in sync", res.Message)
}

func TestConfigSyncSourceWins(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "src", "s.json"), []byte(`{"a": 1}`))
	dst := writeFile(t, filepath.Join(dir, "dst", "s.json"), []byte(`{"a": 2, "extra": true}`))

	res := NewConfig(src, dst, testEnv(t, nil)).Sync()
	require.True(t, res.Success)
	assert.True(t, res.ChangesMade)
	assert.Equal(t, 1, res.ConflictsResolved)
	assert.Equal(t, parseJSON(t, `{"a": 1}`), readJSON(t, dst))
}

func TestConfigSyncTargetWins(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "src", "s.json"), []byte(`{"a": 1}`))
	dst := writeFile(t, filepath.Join(dir, "dst", "s.json"), []byte(`{"a": 2}`))

	env := testEnv(t, func(c *config.SyncConfig) { c.Strategy = model.StrategyTargetWins })

	res := NewConfig(src, dst, env).Sync()
	require.True(t, res.Success)
	assert.False(t, res.ChangesMade)
	assert.Equal(t, parseJSON(t, `{"a": 2}`), readJSON(t, dst))
}

func TestConfigSyncMerge(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "src", "s.json"), []byte(`{"a": 1, "b": {"c": 2}}`))
	dst := writeFile(t, filepath.Join(dir, "dst", "s.json"), []byte(`{"b": {"d": 3}, "e": 4}`))

	env := testEnv(t, func(c *config.SyncConfig) { c.Strategy = model.StrategyMerge })

	res := NewConfig(src, dst, env).Sync()
	require.True(t, res.Success)
	assert.True(t, res.ChangesMade)
	assert.Equal(t, parseJSON(t, `{"a": 1, "b": {"c": 2, "d": 3}, "e": 4}`), readJSON(t, dst))
}

func TestConfigSyncMergeIdempotent(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`{"a": [1, 2], "b": {"c": true}}`)
	src := writeFile(t, filepath.Join(dir, "src", "s.json"), content)
	dst := filepath.Join(dir, "dst", "s.json")

	env := testEnv(t, func(c *config.SyncConfig) { c.Strategy = model.StrategyMerge })

	res := NewConfig(src, dst, env).Sync()
	require.True(t, res.Success)
	require.True(t, res.ChangesMade)

	res = NewConfig(src, dst, env).Sync()
	require.True(t, res.Success)
	assert.False(t, res.ChangesMade)
	assert.Equal(t, 0, res.ConflictsResolved)
}

func TestConfigSyncSkipAndManualLeaveTarget(t *testing.T) {
	for _, strategy := range []model.ConflictStrategy{model.StrategySkip, model.StrategyManual} {
		t.Run(string(strategy), func(t *testing.T) {
			dir := t.TempDir()
			src := writeFile(t, filepath.Join(dir, "src", "s.json"), []byte(`{"a": 1}`))
			dst := writeFile(t, filepath.Join(dir, "dst", "s.json"), []byte(`{"a": 2}`))

			env := testEnv(t, func(c *config.SyncConfig) { c.Strategy = strategy })

			res := NewConfig(src, dst, env).Sync()
			require.True(t, res.Success)
			assert.False(t, res.ChangesMade)
			assert.Equal(t, parseJSON(t, `{"a": 2}`), readJSON(t, dst))
		})
	}
}

func TestConfigSyncMalformedTargetFails(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "src", "s.json"), []byte(`{"a": 1}`))
	dst := writeFile(t, filepath.Join(dir, "dst", "s.json"), []byte(`{broken`))

	res := NewConfig(src, dst, testEnv(t, nil)).Sync()
	require.False(t, res.Success)
	require.Error(t, res.Err)
	// The malformed target must not be overwritten blindly.
	assert.Equal(t, []byte(`{broken`), readFile(t, dst))
}

func TestConfigSyncDryRun(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "src", "s.json"), []byte(`{"a": 1}`))
	dst := writeFile(t, filepath.Join(dir, "dst", "s.json"), []byte(`{"a": 2}`))

	env := testEnv(t, func(c *config.SyncConfig) { c.DryRun = true })

	res := NewConfig(src, dst, env).Sync()
	require.True(t, res.Success)
	assert.False(t, res.ChangesMade)
	assert.Equal(t, parseJSON(t, `{"a": 2}`), readJSON(t, dst))
}
