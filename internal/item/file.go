package item

import (
	"fmt"

	"envsync/internal/diff"
	"envsync/internal/logger"
	"envsync/internal/model"
	"envsync/internal/util"

	"go.uber.org/zap"
)

type File struct {
	src string
	dst string
	env *Env
}

func NewFile(src, dst string, env *Env) *File {
	return &File{src: src, dst: dst, env: env}
}

func (f *File) Kind() model.ItemKind { return model.KindFile }
func (f *File) SourcePath() string   { return f.src }
func (f *File) TargetPath() string   { return f.dst }

func (f *File) NeedsSync() (bool, error) {
	if !exists(f.src) || f.env.Filter.Match(f.src) {
		return false, nil
	}

	if !exists(f.dst) {
		return true, nil
	}

	eq, err := diff.FilesEqual(f.src, f.dst)
	if err != nil {
		return false, err
	}

	return !eq, nil
}

func (f *File) Sync() model.SyncResult {
	res := model.SyncResult{
		Success:   true,
		ItemPath:  f.src,
		Kind:      model.KindFile,
		Direction: f.env.Cfg.Direction,
	}

	if f.env.Filter.Match(f.src) {
		res.Message = "excluded"
		return res
	}

	if !exists(f.src) {
		res.Message = "source missing, nothing to do"
		return res
	}

	targetExists := exists(f.dst)
	if targetExists {
		eq, err := diff.FilesEqual(f.src, f.dst)
		if err != nil {
			return f.fail(res, err)
		}
		if eq {
			res.Message = "already in sync"
			return res
		}

		proceed, reason := f.env.Resolver.Overwrite(f.src)
		if !proceed {
			res.Message = reason
			return res
		}
		res.ConflictsResolved = 1
	}

	if f.env.Cfg.DryRun {
		res.Message = "would synchronize"
		return res
	}

	if targetExists && f.env.Cfg.BackupEnabled {
		if _, err := util.BackupFile(f.dst, f.env.Cfg.BackupDir); err != nil {
			return f.fail(res, err)
		}
	}

	n, err := util.CopyFile(f.src, f.dst)
	if err != nil {
		return f.fail(res, err)
	}

	res.ChangesMade = true
	res.BytesTransferred = n
	res.Message = "synchronized"

	logger.Log.Info("file synced",
		zap.String("src", f.src),
		zap.String("dst", f.dst),
		zap.Int64("bytes", n))

	return res
}

func (f *File) fail(res model.SyncResult, err error) model.SyncResult {
	res.Success = false
	res.Err = err
	res.Message = fmt.Sprintf("failed to sync file: %v", err)

	logger.Log.Error("file sync failed",
		zap.String("src", f.src),
		zap.String("dst", f.dst),
		zap.Error(err))

	return res
}
