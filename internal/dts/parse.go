package dts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"dts-bundle/internal/textutil"
	"dts-bundle/internal/trace"
)

var errMalformedAmbient = errors.New("ambient module header without a readable name")

// MalformedLineError reports input the parser cannot make sense of.
type MalformedLineError struct {
	Path string
	Line int // 1-based
	Text string
	Err  error
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.Path, e.Line, e.Err, e.Text)
}

func (e *MalformedLineError) Unwrap() error { return e.Err }

// Namer names modules by file. It is satisfied by rewrite.Namer.
type Namer interface {
	ModName(file string) string
	ExportName(file string) string
}

// Options carries what Parse needs to know about the surrounding project.
type Options struct {
	// Indent is used when no indentation can be detected in the file.
	Indent string
	// Externals marks named imports as rewrite candidates.
	Externals bool
	// IsProjectFile reports membership of the project file set.
	IsProjectFile func(path string) bool
	Namer         Namer
	Logger        *log.Logger
}

// Parse reads and parses the declaration file at path.
func Parse(path string, opts Options) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read typing: %w", err)
	}
	return ParseSource(path, b, opts)
}

// ParseSource parses src as the content of the declaration file at path.
func ParseSource(path string, src []byte, opts Options) (*File, error) {
	logger := trace.Or(opts.Logger)
	isProject := opts.IsProjectFile
	if isProject == nil {
		isProject = func(string) bool { return false }
	}

	code := textutil.Normalize(src)
	indent := textutil.DetectIndent(code)
	if indent == "" {
		indent = opts.Indent
	}

	f := &File{
		Path:   path,
		Indent: indent,
		Owned:  isProject(path),
	}
	if opts.Namer != nil {
		f.Name = opts.Namer.ModName(path)
		f.ExportName = opts.Namer.ExportName(path)
	}
	logger.Debug("parse", "name", f.Name, "file", path)

	dir := filepath.Dir(path)
	sc := NewScanner(f.Owned)
	for i, line := range textutil.SplitLines(code) {
		ev, err := sc.Scan(line)
		if err != nil {
			return nil, &MalformedLineError{Path: path, Line: i + 1, Text: line, Err: err}
		}
		for _, d := range ev.Doc {
			f.Lines = append(f.Lines, Line{Original: d})
		}

		switch ev.Kind {
		case KindBlank:
			f.Lines = append(f.Lines, Line{})

		case KindReference:
			ref := resolve(dir, ev.Ref)
			if isProject(ref) {
				logger.Debug(" - reference source typing", "ref", ev.Ref, "path", ref)
			} else {
				logger.Debug(" - reference external typing", "ref", ev.Ref, "path", ref)
				f.ExternalReferences = pushUnique(f.ExternalReferences, ref)
			}
			f.References = pushUnique(f.References, ref)

		case KindImport:
			spec := ev.Spec
			if IsFileSpecifier(spec.Name) {
				spec.Target = resolve(dir, spec.Name) + Suffix
				logger.Debug(" - import relative", "module", spec.Name, "path", spec.Target)
				f.RelativeImports = pushUnique(f.RelativeImports, spec.Target)
				f.ImportLines = append(f.ImportLines, len(f.Lines))
			} else {
				logger.Debug(" - import external", "module", spec.Name)
				f.ExternalImports = pushUnique(f.ExternalImports, spec.Name)
				if opts.Externals {
					f.ImportLines = append(f.ImportLines, len(f.Lines))
				}
			}
			f.Lines = append(f.Lines, Line{Original: line, Spec: spec})

		case KindAmbient:
			logger.Debug(" - declare", "module", ev.Spec.Name)
			f.AmbientExports = pushUnique(f.AmbientExports, ev.Spec.Name)
			f.AmbientLines = append(f.AmbientLines, len(f.Lines))
			f.Lines = append(f.Lines, Line{Original: line, Spec: ev.Spec})

		case KindContent:
			f.Lines = append(f.Lines, Line{Original: ev.Text})
		}
	}
	if sc.Pending() {
		logger.Warn("unterminated block comment", "file", path)
	}
	return f, nil
}

// resolve turns a path written in a file into an absolute, cleaned path.
func resolve(dir, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
