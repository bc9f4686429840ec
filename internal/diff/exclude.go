package diff

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ExcludeFilter decides which paths are left out of synchronization.
// A path is excluded when any pattern matches its string form, or when
// hidden entries are not included and the leaf name starts with a dot.
type ExcludeFilter struct {
	patterns      []*regexp.Regexp
	includeHidden bool
}

// NewExcludeFilter compiles the given patterns. An invalid pattern is a
// configuration error and fails construction.
func NewExcludeFilter(patterns []string, includeHidden bool) (*ExcludeFilter, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	return &ExcludeFilter{patterns: compiled, includeHidden: includeHidden}, nil
}

func (f *ExcludeFilter) Match(path string) bool {
	normalized := filepath.ToSlash(path)
	for _, re := range f.patterns {
		if re.MatchString(normalized) {
			return true
		}
	}

	if !f.includeHidden {
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && base != "." && base != ".." {
			return true
		}
	}

	return false
}
