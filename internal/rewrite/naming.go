// Package rewrite renames the module identifiers of bundled files into a
// collision-free namespace derived from the entry file's export name.
package rewrite

import (
	"path/filepath"
	"strings"

	"dts-bundle/internal/dts"
)

// Namer derives module identifiers from file paths. It is a plain value:
// build it once per run and pass it wherever names are needed.
type Namer struct {
	BaseDir   string // absolute project root
	MainFile  string // absolute entry file
	Name      string // export name of the bundle
	Prefix    string
	Separator string
}

// ModName is the project-relative path of file with the declaration suffix
// removed, using OS separators.
func (n Namer) ModName(file string) string {
	trimmed := filepath.Join(filepath.Dir(file), strings.TrimSuffix(filepath.Base(file), dts.Suffix))
	rel, err := filepath.Rel(n.BaseDir, trimmed)
	if err != nil {
		return trimmed
	}
	return rel
}

// ExportName is the identifier file bundles to. The entry file owns the
// bare bundle name.
func (n Namer) ExportName(file string) string {
	if file == n.MainFile {
		return n.Name
	}
	return n.RawExportName(file)
}

// RawExportName is ExportName without the entry special case.
func (n Namer) RawExportName(file string) string {
	return n.Prefix + n.Name + n.Separator + n.Sanitize(n.ModName(file))
}

// LibName namespaces a named module under the entry file's identifier.
func (n Namer) LibName(ref string) string {
	return n.RawExportName(n.MainFile) + n.Separator + n.Prefix + n.Separator + ref
}

// Sanitize replaces parent-directory markers and path separators.
func (n Namer) Sanitize(name string) string {
	name = strings.ReplaceAll(name, "..", "--")
	name = strings.ReplaceAll(name, `\`, n.Separator)
	return strings.ReplaceAll(name, "/", n.Separator)
}
