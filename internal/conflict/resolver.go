package conflict

import (
	"envsync/internal/logger"
	"envsync/internal/model"

	"go.uber.org/zap"
)

// Resolver applies the single conflict strategy active for a run
// whenever source and target both exist and differ.
type Resolver struct {
	strategy model.ConflictStrategy
}

func NewResolver(strategy model.ConflictStrategy) (*Resolver, error) {
	if _, err := model.ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}

	return &Resolver{strategy: strategy}, nil
}

func (r *Resolver) Strategy() model.ConflictStrategy {
	return r.strategy
}

// Overwrite decides whether the source content should replace the
// diverging target at path. For plain file content the Merge strategy
// behaves like SourceWins, since a structural merge is only defined for
// config documents.
func (r *Resolver) Overwrite(path string) (bool, string) {
	logger.Log.Warn("conflict detected",
		zap.String("path", path),
		zap.String("strategy", string(r.strategy)))

	switch r.strategy {
	case model.StrategySourceWins, model.StrategyMerge:
		return true, "source wins"

	case model.StrategyTargetWins:
		logger.Log.Info("conflict resolved: target kept",
			zap.String("path", path))
		return false, "target wins, kept as-is"

	case model.StrategyManual:
		logger.Log.Info("conflict left for manual resolution",
			zap.String("path", path))
		return false, "manual resolution required"

	case model.StrategySkip:
		logger.Log.Info("conflict skipped",
			zap.String("path", path))
		return false, "skipped"

	default:
		return false, "unknown strategy"
	}
}
