// Package walkwalk provides a deterministic, filterable filesystem walker
// used to gather the declaration files of a project.
package walkwalk

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// TypingsPattern matches every declaration file below the walk root.
const TypingsPattern = "**/*.d.ts"

// DefaultIgnore lists directories never descended into.
var DefaultIgnore = []string{"**/.git", "**/.git/**"}

type walkState struct {
	root   string
	ignore []string
	files  []string
}

// CollectTypings walks baseDir and returns the absolute paths of all
// declaration files, sorted. ignore holds doublestar patterns matched against
// the slash-separated path relative to baseDir; a matching directory is not
// descended into.
func CollectTypings(baseDir string, ignore []string) ([]string, error) {
	root, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	for _, p := range ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, &PatternError{Pattern: p}
		}
	}
	ws := &walkState{root: root, ignore: append(append([]string(nil), DefaultIgnore...), ignore...)}
	if err := filepath.WalkDir(root, ws.visit); err != nil {
		return nil, err
	}
	sort.Strings(ws.files)
	return ws.files, nil
}

// PatternError reports an ignore glob doublestar cannot parse.
type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return "invalid ignore pattern: " + e.Pattern
}

func (ws *walkState) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		// The root itself must be readable; anything below is best-effort.
		if path == ws.root {
			return err
		}
		return nil
	}
	rel, ok := ws.relative(path)
	if !ok {
		return nil
	}
	if rel != "." && ws.shouldSkip(rel) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if d.IsDir() {
		return nil
	}
	if match, _ := doublestar.Match(TypingsPattern, rel); match {
		ws.files = append(ws.files, path)
	}
	return nil
}

func (ws *walkState) relative(path string) (string, bool) {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	return rel, true
}

func (ws *walkState) shouldSkip(rel string) bool {
	for _, p := range ws.ignore {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
