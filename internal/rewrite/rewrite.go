package rewrite

import (
	"github.com/charmbracelet/log"

	"dts-bundle/internal/dts"
	"dts-bundle/internal/trace"
)

// Specifier returns the replacement module name for spec, and false when
// the line must stay as it is.
//
// Relative imports point at the target file's export name. Named imports and
// ambient headers are moved under LibName, but only when the name is a plain
// identifier; scoped or path-like names are left alone.
func (n Namer) Specifier(spec *dts.Specifier) (string, bool) {
	if spec == nil {
		return "", false
	}
	if spec.Relative() {
		return n.ExportName(spec.Target), true
	}
	if !dts.IsIdentifier(spec.Name) {
		return "", false
	}
	return n.LibName(spec.Name), true
}

// Apply sets the Modified text of every rewrite candidate line of the given
// files and returns the number of lines changed. The replacement is always
// computed from the captured spans, never from a previous Modified value, so
// applying it again yields the same text.
func Apply(files []*dts.File, n Namer, logger *log.Logger) int {
	logger = trace.Or(logger)
	changed := 0
	for _, f := range files {
		logger.Debug(f.Name)
		for _, idxs := range [][]int{f.AmbientLines, f.ImportLines} {
			for _, i := range idxs {
				line := &f.Lines[i]
				name, ok := n.Specifier(line.Spec)
				if !ok {
					line.SetModified(line.Original)
					continue
				}
				line.SetModified(line.Spec.With(name))
				if line.Modified != line.Original {
					changed++
				}
				logger.Debug(" - rewrite", "from", line.Original, "to", line.Modified)
			}
		}
	}
	return changed
}
