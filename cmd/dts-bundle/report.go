package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"dts-bundle/internal/bundle"
)

// renderStats summarises a bundle run as a borderless table.
func renderStats(res *bundle.Result) string {
	used := make(map[string]bool, len(res.Used))
	for _, p := range res.Used {
		used[p] = true
	}
	count := func(paths []string, want bool) int {
		n := 0
		for _, p := range paths {
			if used[p] == want {
				n++
			}
		}
		return n
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	tbl.AppendHeader(table.Row{"typings", "count"})
	tbl.AppendRow(table.Row{"used source", count(res.SourceTypings, true)})
	tbl.AppendRow(table.Row{"unused source", count(res.SourceTypings, false)})
	tbl.AppendRow(table.Row{"excluded", len(res.Excluded)})
	tbl.AppendRow(table.Row{"used external", count(res.ExternalTypings, true)})
	tbl.AppendRow(table.Row{"unused external", count(res.ExternalTypings, false)})
	tbl.AppendRow(table.Row{"external dependencies", len(res.ExternalDeps)})
	tbl.AppendFooter(table.Row{"output", humanize.Bytes(uint64(len(res.Content)))})
	return tbl.Render() + "\n"
}

// writeDiff prints a unified diff, coloring removed and added lines when
// color output is enabled.
func writeDiff(w io.Writer, body string) {
	del := color.New(color.FgRed)
	add := color.New(color.FgGreen)
	hunk := color.New(color.FgCyan)
	for _, line := range strings.SplitAfter(body, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			fmt.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			del.Fprint(w, line)
		case strings.HasPrefix(line, "+"):
			add.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			hunk.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}
