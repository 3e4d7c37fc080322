package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
)

const defaultSummaryTopFiles = 10

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newColor(enabled bool, attributes ...color.Attribute) *color.Color {
	c := color.New(attributes...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// PrintSummary writes the totals, a table of the top level folders and the
// files with the most lazy load candidates.
func PrintSummary(w io.Writer, report *Report, topFiles int, colorEnabled bool) {
	totals := report.Totals()
	bold := newColor(colorEnabled, color.Bold)
	green := newColor(colorEnabled, color.FgGreen)
	yellow := newColor(colorEnabled, color.FgYellow)
	red := newColor(colorEnabled, color.FgRed)

	bold.Fprintf(w, "Analysed %d files in %s (%s)\n", totals.NoOfSubFiles, report.Root, humanize.Bytes(uint64(totals.Size)))
	green.Fprintf(w, "  Can be lazy loaded:     %d\n", totals.CanBeLazyLoaded)
	yellow.Fprintf(w, "  Already lazy loaded:    %d\n", totals.AlreadyLazyLoaded)
	fmt.Fprintf(w, "  Cannot be lazy loaded:  %d\n", totals.CanNotBeLazyLoaded)
	if len(report.Failures) > 0 {
		red.Fprintf(w, "  Failed files:           %d\n", len(report.Failures))
	}

	if root, ok := report.Folders[rootFolderKey]; ok && len(root.FoldersInside) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, folderTable(report, root).Render())
	}

	if files := filesWithCandidates(report, topFiles); len(files) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, candidateTable(report, files).Render())
	}
}

func newSummaryTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	return tbl
}

func folderTable(report *Report, root *FolderReport) table.Writer {
	tbl := newSummaryTable()
	tbl.AppendHeader(table.Row{"Folder", "Files", "Size", "Can be lazy", "Already lazy", "Cannot be lazy"})
	for _, key := range root.FoldersInside {
		folder := report.Folders[key]
		tbl.AppendRow(table.Row{key, folder.NoOfSubFiles, humanize.Bytes(uint64(folder.Size)), folder.CanBeLazyLoaded, folder.AlreadyLazyLoaded, folder.CanNotBeLazyLoaded})
	}
	tbl.AppendFooter(table.Row{"Total", root.NoOfSubFiles, humanize.Bytes(uint64(root.Size)), root.CanBeLazyLoaded, root.AlreadyLazyLoaded, root.CanNotBeLazyLoaded})
	return tbl
}

func filesWithCandidates(report *Report, limit int) []string {
	keys := []string{}
	for key, file := range report.Files {
		if len(file.CanBeLazyLoaded) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := len(report.Files[keys[i]].CanBeLazyLoaded), len(report.Files[keys[j]].CanBeLazyLoaded)
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func candidateTable(report *Report, keys []string) table.Writer {
	tbl := newSummaryTable()
	tbl.AppendHeader(table.Row{"File", "Can be lazy", "Size"})
	for _, key := range keys {
		file := report.Files[key]
		tbl.AppendRow(table.Row{key, len(file.CanBeLazyLoaded), humanize.Bytes(uint64(file.Size))})
	}
	return tbl
}
