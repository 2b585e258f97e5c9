// Package fsutil holds the few filesystem operations the bundler performs on
// its output: atomic writes and removal of consumed source typings.
//
// Conventions:
//   - Writes go to a temporary sibling (".tmp-<base>-*") and are renamed into
//     place, so readers never observe a partially written bundle.
//   - Removal is best-effort per file; the first error is reported after all
//     files were tried.
package fsutil

import (
	"errors"
	"os"
	"path/filepath"
)

// EnsureDir creates dir and its parents if missing.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteFileAtomic writes data to path via a temporary file in the same
// directory followed by a rename. Parent directories are created.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}
	tmp, f, err := createTempFile(dir, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp) // best-effort cleanup
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// RemoveTypings deletes every path except keep and returns the paths that
// were removed. Files already gone are skipped silently.
func RemoveTypings(paths []string, keep string) ([]string, error) {
	var removed []string
	var errs []error
	for _, p := range paths {
		if p == keep {
			continue
		}
		if err := os.Remove(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		removed = append(removed, p)
	}
	return removed, errors.Join(errs...)
}

// createTempFile creates a temporary file in the target directory with a
// name derived from base, returning its path and an *os.File ready for
// writing. Caller is responsible for closing it.
func createTempFile(dir, base string) (string, *os.File, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+base+"-")
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}
