// Package pathguard confines candidate paths to a configured root.
//
// Every path handed to the pipeline is validated here before any read or
// write touches the filesystem. Validation is pure path arithmetic; it never
// stats or resolves symlinks, so it is safe to call on paths that do not
// exist yet (compressed siblings, hashed copies).
package pathguard

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a candidate path escapes the root.
var ErrPathTraversal = errors.New("path escapes static root")

// Validate resolves candidate against root and returns the cleaned absolute
// path. It rejects absolute candidates, Windows volume names, and any path
// whose normalized form is not a descendant of root.
func Validate(root, candidate string) (string, error) {
	if candidate == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathTraversal)
	}
	if filepath.IsAbs(candidate) || strings.HasPrefix(candidate, "/") {
		return "", fmt.Errorf("%w: absolute path %q", ErrPathTraversal, candidate)
	}
	// IsLocal rejects "..", rooted paths, volume names, and reserved names in
	// one pass, after lexical normalization.
	if !filepath.IsLocal(filepath.FromSlash(candidate)) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, candidate)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	resolved := filepath.Join(absRoot, filepath.FromSlash(candidate))

	// Join cleans the result; verify it is still inside the root. This is a
	// belt against future changes to the checks above, not a reachable path
	// with IsLocal in place.
	rel, err := filepath.Rel(absRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves outside %q", ErrPathTraversal, candidate, root)
	}

	return resolved, nil
}
