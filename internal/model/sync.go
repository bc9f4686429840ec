package model

import "fmt"

type ItemKind string

const (
	KindFile      ItemKind = "FILE"
	KindDirectory ItemKind = "DIRECTORY"
	KindConfig    ItemKind = "CONFIG"
	KindGitRepo   ItemKind = "GIT_REPO"
)

type Direction string

const (
	SourceToTarget Direction = "SOURCE_TO_TARGET"
	TargetToSource Direction = "TARGET_TO_SOURCE"
	Bidirectional  Direction = "BIDIRECTIONAL"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case SourceToTarget, TargetToSource, Bidirectional:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction: %s", s)
	}
}

// ConflictStrategy decides what happens when source and target both
// exist and differ. Exactly one strategy is active per run.
type ConflictStrategy string

const (
	StrategySourceWins ConflictStrategy = "SOURCE_WINS"
	StrategyTargetWins ConflictStrategy = "TARGET_WINS"
	StrategyMerge      ConflictStrategy = "MERGE"
	StrategyManual     ConflictStrategy = "MANUAL"
	StrategySkip       ConflictStrategy = "SKIP"
)

func ParseStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case StrategySourceWins, StrategyTargetWins, StrategyMerge, StrategyManual, StrategySkip:
		return ConflictStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown conflict strategy: %s", s)
	}
}

// SyncResult records the outcome of one sync item invocation.
// It is created once and never mutated afterwards.
type SyncResult struct {
	Success           bool
	ItemPath          string
	Kind              ItemKind
	Direction         Direction
	Message           string
	Err               error
	ChangesMade       bool
	ConflictsResolved int
	BytesTransferred  int64
}
