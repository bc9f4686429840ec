package item

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"envsync/internal/logger"
	"envsync/internal/model"
	"envsync/internal/pool"
	"envsync/internal/util"

	"go.uber.org/zap"
)

// Directory reconciles the recursive file sets of two trees. Child
// items run on a task pool scoped to this call; deletions happen
// sequentially after the pool drains.
type Directory struct {
	src string
	dst string
	env *Env
}

func NewDirectory(src, dst string, env *Env) *Directory {
	return &Directory{src: src, dst: dst, env: env}
}

func (d *Directory) Kind() model.ItemKind { return model.KindDirectory }
func (d *Directory) SourcePath() string   { return d.src }
func (d *Directory) TargetPath() string   { return d.dst }

func (d *Directory) NeedsSync() (bool, error) {
	if !exists(d.src) || d.env.Filter.Match(d.src) {
		return false, nil
	}

	srcFiles, err := d.listFiles(d.src)
	if err != nil {
		return false, err
	}

	dstFiles, err := d.listFiles(d.dst)
	if err != nil {
		return false, err
	}

	toAdd, toUpdate, toRemove := splitSets(srcFiles, dstFiles)
	if len(toAdd) > 0 || len(toRemove) > 0 {
		return true, nil
	}

	for _, rel := range toUpdate {
		needed, err := d.child(rel).NeedsSync()
		if err != nil {
			return false, err
		}
		if needed {
			return true, nil
		}
	}

	return false, nil
}

func (d *Directory) Sync() model.SyncResult {
	res := model.SyncResult{
		Success:   true,
		ItemPath:  d.src,
		Kind:      model.KindDirectory,
		Direction: d.env.Cfg.Direction,
	}

	if d.env.Filter.Match(d.src) {
		res.Message = "excluded"
		return res
	}

	if !exists(d.src) {
		res.Message = "source missing, nothing to do"
		return res
	}

	srcFiles, err := d.listFiles(d.src)
	if err != nil {
		return d.fail(res, err)
	}

	dstFiles, err := d.listFiles(d.dst)
	if err != nil {
		return d.fail(res, err)
	}

	toAdd, toUpdate, toRemove := splitSets(srcFiles, dstFiles)

	if d.env.Cfg.DryRun {
		res.Message = fmt.Sprintf("would synchronize: %d to add, %d to check, %d to remove",
			len(toAdd), len(toUpdate), len(toRemove))
		return res
	}

	p, err := pool.New(d.env.Cfg.MaxWorkers)
	if err != nil {
		return d.fail(res, err)
	}
	defer p.Shutdown(true)

	var ids []int
	var failures []string

	submit := func(child Item) {
		id, err := p.Submit(func() (any, error) {
			r := child.Sync()
			return r, r.Err
		}, pool.PriorityNormal)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", child.SourcePath(), err))
			return
		}
		ids = append(ids, id)
	}

	for _, rel := range toAdd {
		submit(d.child(rel))
	}

	for _, rel := range toUpdate {
		child := d.child(rel)
		needed, err := child.NeedsSync()
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", child.SourcePath(), err))
			continue
		}
		if needed {
			submit(child)
		}
	}

	results, err := p.WaitAll(ids, 0)
	if err != nil {
		return d.fail(res, err)
	}

	var synced int
	for _, id := range ids {
		r := results[id]
		child, ok := r.Value.(model.SyncResult)
		if !ok {
			failures = append(failures, fmt.Sprintf("task %d: %v", id, r.Err))
			continue
		}
		if !child.Success {
			failures = append(failures, child.Message)
			continue
		}

		synced++
		if child.ChangesMade {
			res.ChangesMade = true
		}
		res.BytesTransferred += child.BytesTransferred
		res.ConflictsResolved += child.ConflictsResolved
	}

	removed, removeFailures := d.removeOrphans(toRemove)
	failures = append(failures, removeFailures...)
	if removed > 0 {
		res.ChangesMade = true
	}

	res.Message = fmt.Sprintf("synchronized %d files, removed %d", synced, removed)
	if len(failures) > 0 {
		// Partial success is the normal case; child failures are
		// reported but do not fail the directory as a whole.
		res.Message += fmt.Sprintf(", %d failed: %s", len(failures), strings.Join(failures, "; "))
	}

	logger.Log.Info("directory synced",
		zap.String("src", d.src),
		zap.String("dst", d.dst),
		zap.Int("synced", synced),
		zap.Int("removed", removed),
		zap.Int("failed", len(failures)))

	return res
}

// removeOrphans deletes target-only files unless the active strategy is
// TargetWins, which keeps target-side additions.
func (d *Directory) removeOrphans(toRemove []string) (int, []string) {
	if d.env.Resolver.Strategy() == model.StrategyTargetWins {
		return 0, nil
	}

	var removed int
	var failures []string

	for _, rel := range toRemove {
		path := filepath.Join(d.dst, filepath.FromSlash(rel))

		if d.env.Cfg.BackupEnabled {
			if _, err := util.BackupFile(path, d.env.Cfg.BackupDir); err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", path, err))
				continue
			}
		}

		if err := util.RemoveIfExists(path); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		removed++
	}

	return removed, failures
}

// child classifies one relative path into a File or Config item with
// the directory's roots applied.
func (d *Directory) child(rel string) Item {
	src := filepath.Join(d.src, filepath.FromSlash(rel))
	dst := filepath.Join(d.dst, filepath.FromSlash(rel))

	if strings.EqualFold(filepath.Ext(rel), ".json") {
		return NewConfig(src, dst, d.env)
	}

	return NewFile(src, dst, d.env)
}

// listFiles enumerates non-excluded regular files below root, keyed by
// slash-separated path relative to root. A missing root is an empty
// set, not an error.
func (d *Directory) listFiles(root string) (map[string]bool, error) {
	files := make(map[string]bool)
	if !exists(root) {
		return files, nil
	}

	err := filepath.WalkDir(root, func(path string, de os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		if de.IsDir() && de.Name() == util.DefaultBackupDirName {
			return filepath.SkipDir
		}

		if d.env.Filter.Match(path) {
			if de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if de.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return files, nil
}

func splitSets(src, dst map[string]bool) (toAdd, toUpdate, toRemove []string) {
	for rel := range src {
		if dst[rel] {
			toUpdate = append(toUpdate, rel)
		} else {
			toAdd = append(toAdd, rel)
		}
	}

	for rel := range dst {
		if !src[rel] {
			toRemove = append(toRemove, rel)
		}
	}

	sort.Strings(toAdd)
	sort.Strings(toUpdate)
	sort.Strings(toRemove)
	return toAdd, toUpdate, toRemove
}

func (d *Directory) fail(res model.SyncResult, err error) model.SyncResult {
	res.Success = false
	res.Err = err
	res.Message = fmt.Sprintf("failed to sync directory: %v", err)

	logger.Log.Error("directory sync failed",
		zap.String("src", d.src),
		zap.String("dst", d.dst),
		zap.Error(err))

	return res
}
