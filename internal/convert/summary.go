package convert

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/thiagokokada/git2html/internal/git"
)

// maxSummaryFiles caps the per-file table; larger changes only get totals.
const maxSummaryFiles = 50

// PrintSummary reports where the file went and, when stats is set, what it
// contains.
func PrintSummary(w io.Writer, res *Result, stats bool) {
	path := res.Path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	color.New(color.FgGreen).Fprintf(w, "Report written: %s\n", path)
	color.New(color.FgHiBlack).Fprintf(w, "  Size: %s\n", humanize.Bytes(uint64(res.Size)))
	if !stats {
		return
	}

	if res.Command == git.CommandLog {
		color.New(color.FgGreen).Fprintf(w, "  Converted %d %s\n", res.Stats.Commits, plural(res.Stats.Commits, "commit"))
		return
	}
	if res.Command == git.CommandShow {
		color.New(color.FgCyan).Fprintf(w, "  Commits: %d\n", res.Stats.Commits)
	}
	fmt.Fprintln(w)
	color.New(color.FgCyan).Fprintln(w, "Change statistics:")
	color.New(color.FgGreen).Fprintf(w, "  + %d %s added\n", res.Stats.Added, plural(res.Stats.Added, "line"))
	color.New(color.FgRed).Fprintf(w, "  - %d %s removed\n", res.Stats.Removed, plural(res.Stats.Removed, "line"))
	color.New(color.FgBlue).Fprintf(w, "  %d %s changed\n", len(res.Stats.Files), plural(len(res.Stats.Files), "file"))

	if n := len(res.Stats.Files); n > 0 && n <= maxSummaryFiles {
		fmt.Fprintln(w)
		fmt.Fprintln(w, fileTable(res.Stats.Files))
	}
}

func fileTable(files []FileStat) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(table.Row{"File", "Change", "+", "-"})
	for _, f := range files {
		tbl.AppendRow(table.Row{f.Path, string(f.Kind), "+" + strconv.Itoa(f.Added), "-" + strconv.Itoa(f.Removed)})
	}
	return tbl.Render()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
