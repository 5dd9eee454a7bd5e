package minify

import (
	"path"
	"strings"
)

// Excluded reports whether an asset handle or URL matches any of the
// configured exclusion patterns. A pattern matches as a plain substring, as
// a glob against the full handle, or as a glob against its base name, so
// both `jquery*` and `/wp-includes/` style entries work.
func Excluded(handle string, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if !strings.ContainsAny(p, "*?[") && strings.Contains(handle, p) {
			return true
		}
		if ok, _ := path.Match(p, handle); ok {
			return true
		}
		if ok, _ := path.Match(p, path.Base(handle)); ok {
			return true
		}
	}
	return false
}
