package item

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"envsync/internal/diff"
	"envsync/internal/logger"
	"envsync/internal/model"
	"envsync/internal/util"

	"go.uber.org/zap"
)

// Config reconciles a structured configuration document (JSON). Unlike
// plain files it compares and merges structure, not bytes.
type Config struct {
	src string
	dst string
	env *Env
}

func NewConfig(src, dst string, env *Env) *Config {
	return &Config{src: src, dst: dst, env: env}
}

func (c *Config) Kind() model.ItemKind { return model.KindConfig }
func (c *Config) SourcePath() string   { return c.src }
func (c *Config) TargetPath() string   { return c.dst }

func (c *Config) NeedsSync() (bool, error) {
	if !exists(c.src) || c.env.Filter.Match(c.src) {
		return false, nil
	}

	if !exists(c.dst) {
		return true, nil
	}

	return !diff.JSONEqual(c.src, c.dst), nil
}

func (c *Config) Sync() model.SyncResult {
	res := model.SyncResult{
		Success:   true,
		ItemPath:  c.src,
		Kind:      model.KindConfig,
		Direction: c.env.Cfg.Direction,
	}

	if c.env.Filter.Match(c.src) {
		res.Message = "excluded"
		return res
	}

	if !exists(c.src) {
		res.Message = "source missing, nothing to do"
		return res
	}

	srcRaw, err := os.ReadFile(c.src)
	if err != nil {
		return c.fail(res, err)
	}

	if !exists(c.dst) {
		if c.env.Cfg.DryRun {
			res.Message = "would synchronize"
			return res
		}

		if err := util.AtomicWrite(c.dst, bytes.NewReader(srcRaw)); err != nil {
			return c.fail(res, err)
		}

		res.ChangesMade = true
		res.BytesTransferred = int64(len(srcRaw))
		res.Message = "created"
		return res
	}

	if diff.JSONEqual(c.src, c.dst) {
		res.Message = "already in sync"
		return res
	}

	if c.env.Cfg.DryRun {
		res.Message = "would synchronize"
		return res
	}

	// Never overwrite a target we cannot parse.
	dstRaw, err := os.ReadFile(c.dst)
	if err != nil {
		return c.fail(res, err)
	}

	var dstDoc any
	if err := json.Unmarshal(dstRaw, &dstDoc); err != nil {
		return c.fail(res, fmt.Errorf("target config is malformed: %w", err))
	}

	switch c.env.Cfg.Strategy {
	case model.StrategySourceWins:
		srcDoc, err := parseDoc(srcRaw, c.src)
		if err != nil {
			return c.fail(res, err)
		}
		if err := c.write(srcDoc, &res); err != nil {
			return c.fail(res, err)
		}
		res.ConflictsResolved = 1
		res.Message = "synchronized (source wins)"

	case model.StrategyTargetWins:
		res.Message = "target wins, kept as-is"

	case model.StrategyMerge:
		srcDoc, err := parseDoc(srcRaw, c.src)
		if err != nil {
			return c.fail(res, err)
		}
		merged, conflicts := deepMerge(srcDoc, dstDoc)
		if err := c.write(merged, &res); err != nil {
			return c.fail(res, err)
		}
		res.ConflictsResolved = conflicts
		res.Message = fmt.Sprintf("merged, %d conflicts resolved", conflicts)

	case model.StrategyManual, model.StrategySkip:
		res.Message = "skipped"

	default:
		return c.fail(res, fmt.Errorf("unknown strategy: %s", c.env.Cfg.Strategy))
	}

	if res.ChangesMade {
		logger.Log.Info("config synced",
			zap.String("src", c.src),
			zap.String("dst", c.dst),
			zap.String("strategy", string(c.env.Cfg.Strategy)),
			zap.Int("conflicts", res.ConflictsResolved))
	}

	return res
}

func (c *Config) write(doc any, res *model.SyncResult) error {
	if c.env.Cfg.BackupEnabled {
		if _, err := util.BackupFile(c.dst, c.env.Cfg.BackupDir); err != nil {
			return err
		}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	raw = append(raw, '\n')

	if err := util.AtomicWrite(c.dst, bytes.NewReader(raw)); err != nil {
		return err
	}

	res.ChangesMade = true
	res.BytesTransferred = int64(len(raw))
	return nil
}

func parseDoc(raw []byte, path string) (any, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config %s is malformed: %w", path, err)
	}

	return doc, nil
}

func (c *Config) fail(res model.SyncResult, err error) model.SyncResult {
	res.Success = false
	res.Err = err
	res.Message = fmt.Sprintf("failed to sync config: %v", err)

	logger.Log.Error("config sync failed",
		zap.String("src", c.src),
		zap.String("dst", c.dst),
		zap.Error(err))

	return res
}
