// Package pathutil canonicalizes filesystem paths so that every path
// comparison in the pipeline uses the same normalized form.
package pathutil

import (
	"path/filepath"
	"runtime"

	"golang.org/x/text/cases"
)

// caseInsensitive reports whether the platform's default filesystem folds case.
var caseInsensitive = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

// Canonical returns the absolute, lexically cleaned, slash-normalized form of
// path. It never touches the filesystem; symlinks are not resolved.
func Canonical(path string) string {
	if path == "" {
		return ""
	}
	candidate := filepath.FromSlash(path)
	if abs, err := filepath.Abs(candidate); err == nil {
		candidate = abs
	}
	return filepath.ToSlash(filepath.Clean(candidate))
}

// Norm returns the comparison key for path: the canonical form, case-folded
// on platforms whose filesystems are case-insensitive. Two paths denote the
// same file iff their Norm results are equal.
func Norm(path string) string {
	canon := Canonical(path)
	if canon == "" {
		return ""
	}
	if caseInsensitive {
		return cases.Fold().String(canon)
	}
	return canon
}

// Equal reports whether a and b denote the same file.
func Equal(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return Norm(a) == Norm(b)
}
