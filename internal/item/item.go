package item

import (
	"os"

	"envsync/internal/config"
	"envsync/internal/conflict"
	"envsync/internal/diff"
	"envsync/internal/model"
)

// Item is one unit of reconciliation work over a (source, target)
// pair. Items are created fresh per comparison and discarded after
// producing a SyncResult; the source path is never mutated.
type Item interface {
	Kind() model.ItemKind
	SourcePath() string
	TargetPath() string
	NeedsSync() (bool, error)
	Sync() model.SyncResult
}

// Env carries the run-scoped collaborators every item needs. All
// dependencies are passed explicitly; there is no process-wide state.
type Env struct {
	Cfg      *config.SyncConfig
	Filter   *diff.ExcludeFilter
	Resolver *conflict.Resolver
}

// NewEnv validates the configuration and builds the shared filter and
// resolver. Invalid strategy, direction, worker-count or exclude
// patterns fail here, never silently defaulted.
func NewEnv(cfg *config.SyncConfig) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	filter, err := diff.NewExcludeFilter(cfg.ExcludePatterns, cfg.IncludeHidden)
	if err != nil {
		return nil, err
	}

	resolver, err := conflict.NewResolver(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	return &Env{Cfg: cfg, Filter: filter, Resolver: resolver}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
