// Package dts scans TypeScript declaration files line by line and turns each
// one into a File: the references and imports it depends on, the ambient
// modules it declares, and the lines that survive into the bundle.
//
// Design goals:
//   - No AST: recognition is purely line-shaped, so unknown constructs fall
//     through as plain content instead of failing.
//   - Rewrite-friendly: import and ambient-module lines keep their specifier
//     split into four spans so it can be substituted later without touching
//     the surrounding syntax.
//   - Single owner: Lines is the only storage for line records; rewrite
//     candidates are index lists into it.
package dts

// Suffix is the only file suffix treated as a declaration file.
const Suffix = ".d.ts"

// Syntax identifies which line shape produced a Specifier.
type Syntax int

const (
	// SyntaxRequire is `import x = require('m');`.
	SyntaxRequire Syntax = iota + 1
	// SyntaxES is `import ... from 'm';` or `export ... from 'm';`.
	SyntaxES
	// SyntaxAmbient is `declare module 'm' {`.
	SyntaxAmbient
)

func (s Syntax) String() string {
	switch s {
	case SyntaxRequire:
		return "require"
	case SyntaxES:
		return "es"
	case SyntaxAmbient:
		return "ambient"
	default:
		return "unknown"
	}
}

// Specifier is a module name captured from a line together with the text
// around it. Lead + Quote + Name + Trail reproduces the original line; Trail
// starts with the closing quote.
type Specifier struct {
	Lead   string
	Quote  string
	Name   string
	Trail  string
	Syntax Syntax
	// Target is the absolute file a relative import points at; empty for
	// named modules and ambient headers.
	Target string
}

// With returns the line with the module name replaced by name.
func (s Specifier) With(name string) string {
	return s.Lead + s.Quote + name + s.Trail
}

// Relative reports whether the specifier was resolved to a project file.
func (s Specifier) Relative() bool { return s.Target != "" }

// Line is one output line of a parsed file. Modified, once set by the
// rewriter, takes precedence over Original.
type Line struct {
	Original    string
	Modified    string
	HasModified bool
	Spec        *Specifier
}

// Text is the line as it should be emitted.
func (l Line) Text() string {
	if l.HasModified {
		return l.Modified
	}
	return l.Original
}

// SetModified records the rewritten form of the line.
func (l *Line) SetModified(s string) {
	l.Modified = s
	l.HasModified = true
}

// File is the parse result of one declaration file. It is created once by
// Parse and afterwards only the Modified slot of its Lines changes.
type File struct {
	Path       string // absolute path, primary key
	Name       string // project-relative module path without Suffix
	Indent     string // indentation unit detected in the file
	ExportName string // module identifier the file bundles to

	References      []string // absolute paths from reference directives
	ExternalImports []string // bare module names
	RelativeImports []string // absolute paths of relatively imported files
	AmbientExports  []string // ambient module names declared here

	// ExternalReferences are the References that fall outside the project
	// file set. Reported only.
	ExternalReferences []string

	Lines        []Line
	AmbientLines []int // indexes into Lines
	ImportLines  []int // indexes into Lines

	// Owned is true when the file lives in the project file set and will be
	// wrapped in its own ambient module block.
	Owned bool
}

// Texts returns the emitted text of every line, in order.
func (f *File) Texts() []string {
	out := make([]string, len(f.Lines))
	for i, l := range f.Lines {
		out[i] = l.Text()
	}
	return out
}

// pushUnique appends v unless already present, keeping first-seen order.
func pushUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
