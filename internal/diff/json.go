package diff

import (
	"encoding/json"
	"os"
	"reflect"

	"envsync/internal/logger"

	"go.uber.org/zap"
)

// JSONEqual reports whether two JSON documents are structurally equal,
// ignoring key order and formatting. A read or parse failure on either
// side counts as "not equal" so a sync attempt is forced; it is logged
// as a warning, never surfaced to the caller.
func JSONEqual(a, b string) bool {
	da, ok := parseJSONFile(a)
	if !ok {
		return false
	}

	db, ok := parseJSONFile(b)
	if !ok {
		return false
	}

	return reflect.DeepEqual(da, db)
}

func parseJSONFile(path string) (any, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Log.Warn("failed to read config for comparison",
			zap.String("path", path),
			zap.Error(err))
		return nil, false
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Log.Warn("config is not valid JSON, forcing sync",
			zap.String("path", path),
			zap.Error(err))
		return nil, false
	}

	return doc, true
}
