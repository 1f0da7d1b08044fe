package reconcile

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
)

// BareName strips the version and tag from a dependency directory name.
// Only name, name-version and name-version-tag are accepted; anything else
// is a Pattern error, including names that contain hyphens themselves.
func BareName(entry string) (string, error) {
	segments := strings.Split(entry, "-")
	if len(segments) > 3 {
		return "", errors.Newf(errors.ErrPattern,
			"cannot derive an application name from %q: expected name, name-version or name-version-tag", entry).
			WithDetail("entry", entry).
			WithDetail("segments", len(segments))
	}
	if segments[0] == "" {
		return "", errors.Newf(errors.ErrPattern,
			"cannot derive an application name from %q: empty name", entry).
			WithDetail("entry", entry)
	}
	return segments[0], nil
}

// HexSourceName returns what follows separator in the last element of path.
// The separator must occur exactly once.
func HexSourceName(path, separator string) (string, error) {
	base := filepath.Base(filepath.Clean(path))
	parts := strings.Split(base, separator)
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.Newf(errors.ErrPattern,
			"cannot derive a plugin name from %q: expected <prefix>%s<name>", path, separator).
			WithDetail("path", path)
	}
	return parts[1], nil
}

// SplitPaths splits a delimited path list, dropping empty elements
func SplitPaths(list string, delimiters string) []string {
	return strings.FieldsFunc(list, func(r rune) bool {
		return strings.ContainsRune(delimiters, r)
	})
}
