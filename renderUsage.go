package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/tidwall/jsonc"
)

type renderTreeSource struct {
	FileName     string `json:"fileName"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber"`
}

type renderTreeNode struct {
	ID     json.RawMessage   `json:"id"`
	Name   string            `json:"name"`
	Source *renderTreeSource `json:"source"`
}

// LoadRenderUsage reads a render tree dump, either an object keyed by node id
// or an array of nodes, and returns one record per node that has a source
// location. Relative file names are resolved against root.
func LoadRenderUsage(path string, root string) ([]RenderUsageRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read render tree: %w", err)
	}
	records, err := ParseRenderUsage(content, root)
	if err != nil {
		return nil, fmt.Errorf("invalid render tree %s: %w", path, err)
	}
	return records, nil
}

func ParseRenderUsage(content []byte, root string) ([]RenderUsageRecord, error) {
	content = jsonc.ToJSON(content)

	var byID map[string]renderTreeNode
	if err := json.Unmarshal(content, &byID); err != nil {
		var list []renderTreeNode
		if listErr := json.Unmarshal(content, &list); listErr != nil {
			return nil, err
		}
		byID = make(map[string]renderTreeNode, len(list))
		for i, node := range list {
			byID[nodeKey(node.ID, i)] = node
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return lessNodeID(ids[i], ids[j])
	})

	records := make([]RenderUsageRecord, 0, len(ids))
	for _, id := range ids {
		node := byID[id]
		if node.Source == nil || node.Source.FileName == "" {
			continue
		}
		records = append(records, RenderUsageRecord{
			ComponentName: node.Name,
			SourceFile:    NormalizeRecordPath(node.Source.FileName, root),
			SourceLine:    node.Source.LineNumber,
			SourceColumn:  node.Source.ColumnNumber,
		})
	}
	return records, nil
}

func nodeKey(id json.RawMessage, index int) string {
	if len(id) == 0 {
		return strconv.Itoa(index)
	}
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		return s
	}
	return string(id)
}

// lessNodeID orders numeric ids numerically and everything else lexically after them.
func lessNodeID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
