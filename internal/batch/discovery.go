// Package batch discovers chart images for directory-wide processing runs.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/synospot/synospot/internal/utils"
)

// Discover finds the chart images under dir, sorted by path so batch output
// order is stable. When recursive is false only the top level is scanned.
// A non-empty pattern restricts results to base names matching the glob.
func Discover(dir string, recursive bool, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var paths []string
	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldInclude(path, pattern) {
			paths = append(paths, path)
		}
		return nil
	}
	if err := filepath.Walk(dir, walkFn); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// shouldInclude reports whether path is a chart image matching the glob.
func shouldInclude(path, pattern string) bool {
	if !utils.IsSupportedImage(path) {
		return false
	}
	if pattern == "" {
		return true
	}
	matched, err := filepath.Match(pattern, filepath.Base(path))
	return err == nil && matched
}
