package item

import (
	"fmt"

	"envsync/internal/git"
	"envsync/internal/logger"
	"envsync/internal/model"

	"go.uber.org/zap"
)

// remoteName is the remote under which the source repository is
// registered in the target. Registration is idempotent.
const remoteName = "envsync-source"

// GitRepo converges a target repository onto the source repository's
// current branch tip via fetch and forced reset.
type GitRepo struct {
	src string
	dst string
	env *Env
}

func NewGitRepo(src, dst string, env *Env) *GitRepo {
	return &GitRepo{src: src, dst: dst, env: env}
}

func (g *GitRepo) Kind() model.ItemKind { return model.KindGitRepo }
func (g *GitRepo) SourcePath() string   { return g.src }
func (g *GitRepo) TargetPath() string   { return g.dst }

// NeedsSync compares the two HEAD refs. An unresolvable ref on either
// side counts as divergence.
func (g *GitRepo) NeedsSync() (bool, error) {
	if !exists(g.src) || g.env.Filter.Match(g.src) {
		return false, nil
	}

	if !exists(g.dst) {
		return true, nil
	}

	srcRef, err := git.HeadRef(g.src)
	if err != nil {
		return true, nil
	}

	dstRef, err := git.HeadRef(g.dst)
	if err != nil {
		return true, nil
	}

	return srcRef != dstRef, nil
}

func (g *GitRepo) Sync() model.SyncResult {
	res := model.SyncResult{
		Success:   true,
		ItemPath:  g.src,
		Kind:      model.KindGitRepo,
		Direction: g.env.Cfg.Direction,
	}

	if g.env.Filter.Match(g.src) {
		res.Message = "excluded"
		return res
	}

	if !git.IsRepo(g.src) {
		return g.fail(res, fmt.Errorf("source is not a git repository: %s", g.src))
	}

	if !exists(g.dst) {
		if g.env.Cfg.DryRun {
			res.Message = "would clone"
			return res
		}

		if err := git.Clone(g.src, g.dst); err != nil {
			return g.fail(res, err)
		}

		res.ChangesMade = true
		res.Message = "cloned"

		logger.Log.Info("repository cloned",
			zap.String("src", g.src),
			zap.String("dst", g.dst))

		return res
	}

	if !git.IsRepo(g.dst) {
		return g.fail(res, fmt.Errorf("target exists but is not a git repository: %s", g.dst))
	}

	needed, err := g.NeedsSync()
	if err != nil {
		return g.fail(res, err)
	}
	if !needed {
		res.Message = "already in sync"
		return res
	}

	if g.env.Cfg.DryRun {
		res.Message = "would synchronize"
		return res
	}

	clean, err := git.IsClean(g.dst)
	if err != nil {
		return g.fail(res, err)
	}

	if !clean {
		// A dirty target is a safety stop unless the strategy
		// explicitly sacrifices target state.
		if g.env.Cfg.Strategy != model.StrategySourceWins {
			return g.fail(res, fmt.Errorf("target has uncommitted changes: %s", g.dst))
		}

		if err := git.ResetHard(g.dst, "HEAD"); err != nil {
			return g.fail(res, err)
		}
		if err := git.CleanUntracked(g.dst); err != nil {
			return g.fail(res, err)
		}
		res.ConflictsResolved = 1
	}

	if err := git.AddRemote(g.dst, remoteName, g.src); err != nil {
		return g.fail(res, err)
	}

	if err := git.Fetch(g.dst, remoteName); err != nil {
		return g.fail(res, err)
	}

	branch, err := git.CurrentBranch(g.dst)
	if err != nil {
		return g.fail(res, err)
	}

	if err := git.ResetHard(g.dst, remoteName+"/"+branch); err != nil {
		return g.fail(res, err)
	}

	res.ChangesMade = true
	res.Message = "reset to source branch tip"

	logger.Log.Info("repository synced",
		zap.String("src", g.src),
		zap.String("dst", g.dst),
		zap.String("branch", branch))

	return res
}

func (g *GitRepo) fail(res model.SyncResult, err error) model.SyncResult {
	res.Success = false
	res.Err = err
	res.Message = fmt.Sprintf("failed to sync repository: %v", err)

	logger.Log.Error("repository sync failed",
		zap.String("src", g.src),
		zap.String("dst", g.dst),
		zap.Error(err))

	return res
}
