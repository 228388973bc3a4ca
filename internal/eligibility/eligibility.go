// Package eligibility decides which transforms apply to a candidate file.
//
// Classification is pure string and pattern logic: no filesystem access, no
// ordering side effects. The same path and rules always produce the same
// class, which keeps the predicate trivially testable in isolation.
package eligibility

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Class is the outcome of classifying one candidate.
type Class int

const (
	// ClassSkip excludes the file from both minification and compression.
	ClassSkip Class = iota
	// ClassMinifyOnly marks the file for minification but not compression.
	ClassMinifyOnly
	// ClassCompressOnly marks the file for compression but not minification.
	ClassCompressOnly
	// ClassBoth marks the file for minification and compression.
	ClassBoth
)

func (c Class) String() string {
	switch c {
	case ClassSkip:
		return "skip"
	case ClassMinifyOnly:
		return "minify"
	case ClassCompressOnly:
		return "compress"
	case ClassBoth:
		return "minify+compress"
	default:
		return "unknown"
	}
}

// Minify reports whether the class includes minification.
func (c Class) Minify() bool { return c == ClassMinifyOnly || c == ClassBoth }

// Compress reports whether the class includes compression.
func (c Class) Compress() bool { return c == ClassCompressOnly || c == ClassBoth }

// preMinifiedMarkers are filename fragments identifying content that was
// already minified upstream. Marker checks always win over extension
// eligibility: reprocessing such files double-minifies at best and amplifies
// compression bombs at worst.
var preMinifiedMarkers = []string{".min.", "-min."}

// minifiable holds the asset kinds the minifier understands. All other
// eligible extensions are compression candidates only.
var minifiable = map[string]bool{"css": true, "js": true}

// Rules is the subset of configuration the classifier needs.
type Rules struct {
	// Extensions eligible for processing, lowercase, without leading dot.
	Extensions []string
	// ExcludePatterns are ordered doublestar globs; first match wins and the
	// candidate is skipped.
	ExcludePatterns []string
}

// Classify returns the transform class for the slash-separated logical path.
func Classify(logicalPath string, rules Rules) Class {
	ext := Extension(logicalPath)
	if ext == "" || !containsExt(rules.Extensions, ext) {
		return ClassSkip
	}

	base := path.Base(logicalPath)
	for _, marker := range preMinifiedMarkers {
		if strings.Contains(base, marker) {
			return ClassSkip
		}
	}

	for _, pattern := range rules.ExcludePatterns {
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return ClassSkip
		}
		if strings.Contains(pattern, "/") || strings.Contains(pattern, "**") {
			if matched, err := doublestar.Match(pattern, logicalPath); err == nil && matched {
				return ClassSkip
			}
		}
	}

	if minifiable[ext] {
		return ClassBoth
	}
	return ClassCompressOnly
}

// Extension returns the lowercase extension of the path without the dot, or
// "" when there is none.
func Extension(logicalPath string) string {
	ext := path.Ext(logicalPath)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if strings.ToLower(strings.TrimPrefix(e, ".")) == ext {
			return true
		}
	}
	return false
}
