// Package textutil holds the small text helpers shared by the declaration
// parser and the output assembler: BOM/whitespace normalisation, line
// splitting, indentation detection and re-indentation.
package textutil

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const bom = "\uFEFF"

var reLineBreak = regexp.MustCompile(`\r?\n`)

// StripBOM removes a single leading byte-order mark, if present.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, bom)
}

// TrimTrailingSpace drops every trailing whitespace rune, newlines included.
func TrimTrailingSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// Normalize prepares raw file content for line scanning: BOM stripped and
// trailing whitespace removed.
func Normalize(b []byte) string {
	return TrimTrailingSpace(StripBOM(string(b)))
}

// SplitLines splits on LF or CRLF. An empty input yields one empty line so
// that every file contributes at least one line record.
func SplitLines(s string) []string {
	return reLineBreak.Split(s, -1)
}

// DetectIndent returns the dominant indentation unit of src, or "" when no
// indented line is found.
//
// Tabs win when at least as many lines are tab-indented as space-indented.
// For spaces the most frequent positive step between consecutive indented
// lines is used (ties resolve to the smaller step). Lines whose content
// starts with '*' are ignored: they are block comment continuations and sit
// one column off the real grid.
func DetectIndent(src string) string {
	var tabs, spaces, prev int
	steps := make(map[int]int)
	for _, line := range SplitLines(src) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		body := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(body, "*") {
			continue
		}
		lead := line[:len(line)-len(body)]
		switch {
		case lead == "":
			prev = 0
		case lead[0] == '\t':
			tabs++
			continue
		default:
			spaces++
			n := len(lead) - len(strings.TrimLeft(lead, " "))
			if d := n - prev; d > 0 {
				steps[d]++
			}
			prev = n
		}
	}
	if tabs == 0 && spaces == 0 {
		return ""
	}
	if tabs >= spaces {
		return "\t"
	}
	if len(steps) == 0 {
		return ""
	}
	keys := make([]int, 0, len(steps))
	for k := range steps {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if steps[k] > steps[best] {
			best = k
		}
	}
	return strings.Repeat(" ", best)
}

// Reindenter returns a function that replaces the leading run of actual
// units of a line with the same number of use units. Mid-line occurrences are
// never touched. When actual is empty or equal to use the identity is returned.
func Reindenter(actual, use string) func(string) string {
	if actual == "" || actual == use {
		return func(line string) string { return line }
	}
	return func(line string) string {
		n := 0
		rest := line
		for strings.HasPrefix(rest, actual) {
			rest = rest[len(actual):]
			n++
		}
		if n == 0 {
			return line
		}
		return strings.Repeat(use, n) + rest
	}
}
