package main

import (
	"bytes"
	"sort"
)

// TextEdit replaces the byte range [Start, End) of a source text with Text.
type TextEdit struct {
	Start int
	End   int
	Text  []byte
}

// ApplyTextEdits applies non-overlapping edits to content and returns a new slice.
// When edits overlap the longest one wins; equal lengths fall back to the earliest start.
func ApplyTextEdits(content []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}

	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		lenI := sorted[i].End - sorted[i].Start
		lenJ := sorted[j].End - sorted[j].Start
		if lenI != lenJ {
			return lenI > lenJ
		}
		return sorted[i].Start < sorted[j].Start
	})

	var picked []TextEdit
	for _, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(content) {
			continue
		}
		overlaps := false
		for _, p := range picked {
			if e.Start < p.End && p.Start < e.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			picked = append(picked, e)
		}
	}

	sort.Slice(picked, func(i, j int) bool {
		return picked[i].Start < picked[j].Start
	})

	var buf bytes.Buffer
	buf.Grow(len(content))
	lastPos := 0
	for _, e := range picked {
		if e.Start > lastPos {
			buf.Write(content[lastPos:e.Start])
		}
		buf.Write(e.Text)
		lastPos = e.End
	}
	if lastPos < len(content) {
		buf.Write(content[lastPos:])
	}

	return buf.Bytes()
}

// maskEdit builds an edit that blanks content[start:end] with spaces, keeping line breaks.
func maskEdit(content []byte, start, end int) TextEdit {
	blank := make([]byte, end-start)
	for i := range blank {
		switch content[start+i] {
		case '\n', '\r':
			blank[i] = content[start+i]
		default:
			blank[i] = ' '
		}
	}
	return TextEdit{Start: start, End: end, Text: blank}
}
