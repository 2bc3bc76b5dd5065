package parser

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Discover returns every regular file under root, recursively, regardless of
// extension. Paths are sorted for deterministic ordering.
//
// A root that cannot be read is reported as a *DiscoveryError. Subdirectories
// that cannot be read are skipped and passed to skipped, if non-nil.
func Discover(root string, skipped func(path string, err error)) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Root: root, Err: fs.ErrInvalid}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if skipped != nil {
				skipped(path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	sort.Strings(files)
	return files, nil
}
