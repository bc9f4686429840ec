package manager

import (
	"os"
	"path/filepath"
	"strings"

	"envsync/internal/config"
	"envsync/internal/git"
	"envsync/internal/item"
	"envsync/internal/logger"
	"envsync/internal/model"

	"go.uber.org/zap"
)

// Manager classifies (source, target) pairs into sync item kinds,
// drives their synchronization and owns the append-only result log for
// one run.
type Manager struct {
	cfg     *config.SyncConfig
	env     *item.Env
	results []model.SyncResult
}

func New(cfg *config.SyncConfig) (*Manager, error) {
	env, err := item.NewEnv(cfg)
	if err != nil {
		return nil, err
	}

	return &Manager{cfg: cfg, env: env}, nil
}

// Classify maps the source path's on-disk shape to an item kind:
// a directory carrying .git is a repository, any other directory is a
// tree, a .json file is a structured config, everything else is a
// plain file.
func Classify(src string) model.ItemKind {
	info, err := os.Stat(src)
	if err == nil && info.IsDir() {
		if git.IsRepo(src) {
			return model.KindGitRepo
		}
		return model.KindDirectory
	}

	if strings.EqualFold(filepath.Ext(src), ".json") {
		return model.KindConfig
	}

	return model.KindFile
}

// Sync reconciles one pair and appends the outcome to the result log.
// Item failures are captured in the result, never raised.
func (m *Manager) Sync(src, dst string) model.SyncResult {
	kind := Classify(src)

	var it item.Item
	switch kind {
	case model.KindGitRepo:
		it = item.NewGitRepo(src, dst, m.env)
	case model.KindDirectory:
		it = item.NewDirectory(src, dst, m.env)
	case model.KindConfig:
		it = item.NewConfig(src, dst, m.env)
	default:
		it = item.NewFile(src, dst, m.env)
	}

	logger.Log.Debug("syncing item",
		zap.String("src", src),
		zap.String("dst", dst),
		zap.String("kind", string(kind)))

	res := it.Sync()
	m.results = append(m.results, res)
	return res
}

// Run synchronizes the configured top-level pair and returns the full
// result log. A run always completes, even when items failed.
func (m *Manager) Run() []model.SyncResult {
	m.Sync(m.cfg.SourceRoot, m.cfg.TargetRoot)
	return m.Results()
}

func (m *Manager) Results() []model.SyncResult {
	out := make([]model.SyncResult, len(m.results))
	copy(out, m.results)
	return out
}
