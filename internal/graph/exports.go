package graph

import (
	"fmt"

	"github.com/charmbracelet/log"

	"dts-bundle/internal/dts"
	"dts-bundle/internal/trace"
)

// ExportIndex maps an ambient module name to the file declaring it.
type ExportIndex map[string]*dts.File

// DuplicateExportError reports an ambient module declared by two files.
type DuplicateExportError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateExportError) Error() string {
	return fmt.Sprintf("ambient module %q declared twice: %s and %s", e.Name, e.First, e.Second)
}

// BuildExportIndex indexes the ambient exports of every file in fm, in
// discovery order. Ambient module names are one global namespace.
func BuildExportIndex(fm *FileMap, logger *log.Logger) (ExportIndex, error) {
	logger = trace.Or(logger)
	trace.Section(logger, "map exports")

	idx := make(ExportIndex)
	for _, path := range fm.Order {
		f := fm.Files[path]
		for _, name := range f.AmbientExports {
			if prev, dup := idx[name]; dup {
				return nil, &DuplicateExportError{Name: name, First: prev.Path, Second: f.Path}
			}
			idx[name] = f
			logger.Debug("- export", "name", name, "file", f.Path)
		}
	}
	return idx, nil
}
