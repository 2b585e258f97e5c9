// Package graph discovers every declaration file reachable from an entry
// file, indexes the ambient modules they declare, and decides which of them
// end up in the bundle.
//
// Design goals:
//   - Deterministic output: breadth-first traversal, first-visit order kept
//   - Each file parsed exactly once regardless of cycles
//   - Explicit state: the FileMap and ExportIndex are values passed around,
//     never package globals
//
// Notes:
//   - Discovery follows reference directives and relative imports only.
//     Named imports are resolved later through the ExportIndex.
//   - Paths are absolute and OS-specific; relative paths handed to the
//     exclude predicate use forward slashes.
package graph

import (
	"fmt"

	"github.com/charmbracelet/log"

	"dts-bundle/internal/dts"
	"dts-bundle/internal/trace"
)

// ParseFunc parses the declaration file at an absolute path.
type ParseFunc func(path string) (*dts.File, error)

// FileMap holds every file discovered from the entry file.
type FileMap struct {
	Entry *dts.File
	Files map[string]*dts.File
	// Order lists Files keys in discovery order.
	Order []string
}

// Lookup returns the parsed file at path.
func (fm *FileMap) Lookup(path string) (*dts.File, bool) {
	f, ok := fm.Files[path]
	return f, ok
}

// Len is the number of parsed files.
func (fm *FileMap) Len() int { return len(fm.Order) }

// BuildFileMap parses entry and, breadth-first, every file it references or
// relatively imports. A file that cannot be read or parsed aborts the walk.
func BuildFileMap(entry string, parse ParseFunc, logger *log.Logger) (*FileMap, error) {
	logger = trace.Or(logger)
	trace.Section(logger, "parse files")

	fm := &FileMap{Files: make(map[string]*dts.File)}
	queue := []string{entry}
	seen := make(map[string]struct{})
	for len(queue) > 0 {
		target := queue[0]
		queue = queue[1:]
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}

		f, err := parse(target)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", target, err)
		}
		if fm.Entry == nil {
			fm.Entry = f
		}
		fm.Files[f.Path] = f
		fm.Order = append(fm.Order, f.Path)

		for _, next := range f.References {
			if _, ok := seen[next]; !ok {
				queue = append(queue, next)
			}
		}
		for _, next := range f.RelativeImports {
			if _, ok := seen[next]; !ok {
				queue = append(queue, next)
			}
		}
	}
	return fm, nil
}
