package graph

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"dts-bundle/internal/dts"
	"dts-bundle/internal/trace"
)

// ExcludeFunc decides whether a file is left out of the bundle. relPath is
// relative to the base directory with forward slashes; external is true when
// the file was reached through a named import.
type ExcludeFunc func(relPath string, external bool) bool

// MissingFileError reports an import edge whose target was never parsed.
type MissingFileError struct {
	From string
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s imports %s, which is not in the file map", e.From, e.Path)
}

// ResolveOptions configures ResolveInclusion.
type ResolveOptions struct {
	BaseDir   string
	Exclude   ExcludeFunc
	Externals bool
	Logger    *log.Logger
}

// Inclusion partitions the files reachable from the entry file.
type Inclusion struct {
	// Used is the bundle content in first-visit order.
	Used []*dts.File
	// Excluded holds files rejected by the exclude predicate.
	Excluded []string
	// ExternalDeps holds files declaring named modules that were not inlined
	// because externals are disabled.
	ExternalDeps []string
}

// IsUsed reports whether path is part of the bundle.
func (inc *Inclusion) IsUsed(path string) bool {
	for _, f := range inc.Used {
		if f.Path == path {
			return true
		}
	}
	return false
}

// ResolveInclusion walks breadth-first from fm.Entry over named imports
// (through idx) and relative imports (through fm).
//
// The exclude predicate is checked per edge. A file already visited through
// an included edge stays in the bundle even if a later edge excludes it, and
// a file excluded on one edge may still be included through another.
func ResolveInclusion(fm *FileMap, idx ExportIndex, opts ResolveOptions) (*Inclusion, error) {
	logger := trace.Or(opts.Logger)
	trace.Section(logger, "determine typings to include")

	exclude := opts.Exclude
	if exclude == nil {
		exclude = func(string, bool) bool { return false }
	}
	inc := &Inclusion{}
	if fm.Entry == nil {
		return inc, nil
	}

	queue := []*dts.File{fm.Entry}
	seen := make(map[string]struct{})
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if _, ok := seen[f.Path]; ok {
			continue
		}
		seen[f.Path] = struct{}{}
		logger.Debug(f.Name, "file", f.Path)
		inc.Used = append(inc.Used, f)

		for _, name := range f.ExternalImports {
			owner, ok := idx[name]
			if !ok {
				continue
			}
			switch {
			case exclude(relPath(opts.BaseDir, owner.Path), true):
				logger.Debug(" - exclude external filter", "module", name)
				inc.Excluded = pushUnique(inc.Excluded, owner.Path)
			case !opts.Externals:
				logger.Debug(" - exclude external", "module", name)
				inc.ExternalDeps = pushUnique(inc.ExternalDeps, owner.Path)
			default:
				logger.Debug(" - include external", "module", name)
				queue = append(queue, owner)
			}
		}

		for _, path := range f.RelativeImports {
			target, ok := fm.Lookup(path)
			if !ok {
				return nil, &MissingFileError{From: f.Path, Path: path}
			}
			if exclude(relPath(opts.BaseDir, target.Path), false) {
				logger.Debug(" - exclude internal filter", "file", path)
				inc.Excluded = pushUnique(inc.Excluded, target.Path)
				continue
			}
			logger.Debug(" - import relative", "file", path)
			queue = append(queue, target)
		}
	}
	return inc, nil
}

func relPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func pushUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
