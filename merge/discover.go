// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package merge

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover returns regular files under dir, at any depth, whose path relative
// to dir matches pattern. A pattern without a slash matches file names, so
// "*.sql" finds both "a.sql" and "nested/b.sql".
//
// Paths are joined with dir and sorted, so the result doesn't depend on the
// order in which the file system lists directories.
func Discover(dir, pattern string) ([]string, error) {
	if pattern == "" || path.IsAbs(pattern) || filepath.IsAbs(pattern) || !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: incorrect filename pattern %q", ErrDiscovery, pattern)
	}
	if dir == "" {
		dir = "."
	}

	var files []string
	err := doublestar.GlobWalk(os.DirFS(dir), "**/"+pattern, func(rel string, d fs.DirEntry) error {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if !isRegular(full, d) {
			return nil
		}
		files = append(files, full)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files matching %q found in %s", ErrDiscovery, pattern, dir)
	}

	slices.Sort(files)
	return files, nil
}

// isRegular reports whether the entry is a regular file, following symlinks.
func isRegular(full string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(full)
	return err == nil && fi.Mode().IsRegular()
}
