// Package diff renders unified diffs between an existing bundle on disk and
// a freshly generated one. It uses github.com/pmezard/go-difflib/difflib to
// produce classic unified patches (---/+++ headers, @@ hunks, lines prefixed
// with ' ', '-', '+').
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Options controls patch generation behavior.
type Options struct {
	// MaxBytes is a guardrail on input size (old+new). When exceeded,
	// a minimal placeholder patch is returned and oversize=true.
	// 0 means "no limit".
	MaxBytes int

	// Context controls the number of context lines in unified hunks.
	// If 0, default to 3.
	Context int
}

// Unified produces a unified patch for a↦b. The body is empty when both
// sides are equal. oversize reports that the diff was omitted due to size.
func Unified(aName, bName string, a, b []byte, opt Options) (body string, oversize bool) {
	if string(a) == string(b) {
		return "", false
	}
	if opt.MaxBytes > 0 && (len(a)+len(b)) > opt.MaxBytes {
		return omitted(aName, bName), true
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		// Line-equal inputs that differ only in the final newline.
		return omitted(aName, bName), false
	}
	return s, false
}

// splitLinesKeepNL splits into lines and keeps newline characters,
// which produces better unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}

// omitted returns a compact placeholder when no line diff can be shown.
func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted\n", aName, bName)
}
