// Package bundle runs the declaration bundling pipeline and renders its
// single text artifact.
//
// The artifact layout is:
//
//	// Generated by dts-bundle v<version>
//	// Dependencies for this module:     (only with external dependencies)
//	//   <relpath>
//	<blank>
//	declare module '<export>' {          (project-owned files)
//	    <lines>
//	}
//	<lines>                              (files outside the project set)
//
// Design goals:
//   - Deterministic output: the same inputs produce byte-identical content
//   - Everything is assembled in memory and written once
package bundle

import (
	"path/filepath"
	"strings"

	"dts-bundle/internal/dts"
	"dts-bundle/internal/graph"
	"dts-bundle/internal/textutil"
)

// Version is stamped into the banner line.
var Version = "0.7.3"

// AssembleOptions controls the rendering of a bundle.
type AssembleOptions struct {
	BaseDir string
	Newline string
	Indent  string
}

// Assemble renders the used files of inc into the bundle text.
func Assemble(inc *graph.Inclusion, opts AssembleOptions) string {
	nl := opts.Newline
	var b strings.Builder
	b.WriteString("// Generated by dts-bundle v" + Version + nl)
	if len(inc.ExternalDeps) > 0 {
		b.WriteString("// Dependencies for this module:" + nl)
		for _, p := range inc.ExternalDeps {
			b.WriteString("//   " + relSlash(opts.BaseDir, p) + nl)
		}
	}
	b.WriteString(nl)

	blocks := make([]string, len(inc.Used))
	for i, f := range inc.Used {
		blocks[i] = renderFile(f, opts)
	}
	b.WriteString(strings.Join(blocks, nl))
	b.WriteString(nl)
	return b.String()
}

func renderFile(f *dts.File, opts AssembleOptions) string {
	nl := opts.Newline
	reindent := textutil.Reindenter(f.Indent, opts.Indent)
	lines := f.Texts()
	for i, l := range lines {
		lines[i] = reindent(l)
	}
	if !f.Owned {
		return strings.Join(lines, nl) + nl
	}

	var b strings.Builder
	b.WriteString("declare module '" + f.ExportName + "' {" + nl)
	if len(lines) > 0 {
		b.WriteString(opts.Indent + strings.Join(lines, nl+opts.Indent))
	}
	b.WriteString(nl + "}" + nl)
	return b.String()
}

func relSlash(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
