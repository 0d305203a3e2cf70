package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var errEmptyPath = errors.New("empty path")

// Canonicalize returns the absolute, symlink-free form of path, the way
// realpath(3) does. The path must exist.
//
// Relative paths are prefixed with the working directory without lexical
// cleaning so ".." is applied after symlinks are followed.
func Canonicalize(path string) (string, error) {
	if path == "" {
		return "", errEmptyPath
	}
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		path = wd + string(filepath.Separator) + path
	}
	return filepath.EvalSymlinks(path)
}

// hasRelativeMarker reports whether p starts with "./", ".\", "../" or "..\".
func hasRelativeMarker(p string) bool {
	if len(p) <= 2 || p[0] != '.' {
		return false
	}
	if isSeparator(p[1]) {
		return true
	}
	return p[1] == '.' && isSeparator(p[2])
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}

// WorkingPath returns the path that is handed to Canonicalize: base
// prepended verbatim when rel carries a relative marker, rel otherwise.
func WorkingPath(rel, base string) string {
	if base != "" && hasRelativeMarker(rel) {
		return base + rel
	}
	return rel
}

// splitName returns the index where the file name starts in full. Both
// separators are accepted. Without a separator the whole string is the name.
func splitName(full string) int {
	return strings.LastIndexAny(full, `/\`) + 1
}
