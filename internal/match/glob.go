package match

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobScore returns 1 if any pattern matches any path and 0 otherwise.
// Malformed patterns never match.
func GlobScore(patterns, paths []string) float64 {
	if globMatch(patterns, normalizePaths(paths), nil) {
		return 1
	}
	return 0
}

// globMatch reports whether any valid pattern matches any path. Matching is
// case-sensitive; "*" stays within a path segment and "**" spans segments.
// onInvalid is called for every malformed pattern, which is then skipped.
func globMatch(patterns, paths []string, onInvalid func(pattern string)) bool {
	if len(patterns) == 0 || len(paths) == 0 {
		return false
	}
	for _, pattern := range patterns {
		if pattern == "" || !doublestar.ValidatePattern(pattern) {
			if onInvalid != nil {
				onInvalid(pattern)
			}
			continue
		}
		for _, p := range paths {
			ok, err := doublestar.Match(pattern, p)
			if err != nil {
				if onInvalid != nil {
					onInvalid(pattern)
				}
				break
			}
			if ok {
				return true
			}
		}
	}
	return false
}

// normalizePaths converts paths to forward slashes and strips a leading "./".
func normalizePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.ReplaceAll(p, `\`, "/")
		p = strings.TrimPrefix(p, "./")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
