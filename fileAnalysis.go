package main

import (
	"fmt"
	"path/filepath"
	"slices"
)

// CandidateEntry is a binding that may be converted to a lazy import.
type CandidateEntry struct {
	Path       string `json:"path"`
	ExportName string `json:"exportName"`
}

// ExportIdentity unifies the same exported value across all of its importers.
type ExportIdentity struct {
	Path       string
	ExportName string
}

func (c CandidateEntry) Identity() ExportIdentity {
	return ExportIdentity{Path: c.Path, ExportName: c.ExportName}
}

// FileAnalysis is the per-file candidate table. It is built once per run and
// afterwards only shrinks, when candidates are suppressed.
type FileAnalysis struct {
	Path               string
	Size               int64
	Source             []byte
	Imports            []ImportBinding
	Dynamic            []DynamicImportBinding
	AlreadyLazyLoaded  int
	CanNotBeLazyLoaded int
	Diagnostics        []string

	candidateOrder []string
	candidates     map[string]CandidateEntry
}

func newFileAnalysis(path string, source []byte) *FileAnalysis {
	return &FileAnalysis{
		Path:       path,
		Size:       int64(len(source)),
		Source:     source,
		candidates: map[string]CandidateEntry{},
	}
}

func (f *FileAnalysis) addCandidate(localName string, entry CandidateEntry) {
	if _, exists := f.candidates[localName]; exists {
		return
	}
	f.candidates[localName] = entry
	f.candidateOrder = append(f.candidateOrder, localName)
}

func (f *FileAnalysis) removeCandidate(localName string) bool {
	if _, exists := f.candidates[localName]; !exists {
		return false
	}
	delete(f.candidates, localName)
	f.candidateOrder = slices.DeleteFunc(f.candidateOrder, func(name string) bool {
		return name == localName
	})
	return true
}

// removeIdentity drops every candidate with the given identity and returns how many were removed.
func (f *FileAnalysis) removeIdentity(identity ExportIdentity) int {
	removed := 0
	for _, localName := range slices.Clone(f.candidateOrder) {
		if f.candidates[localName].Identity() == identity && f.removeCandidate(localName) {
			removed++
		}
	}
	return removed
}

// CandidateNames returns the local names of surviving candidates in scan order.
func (f *FileAnalysis) CandidateNames() []string {
	return slices.Clone(f.candidateOrder)
}

func (f *FileAnalysis) Candidate(localName string) (CandidateEntry, bool) {
	entry, ok := f.candidates[localName]
	return entry, ok
}

// CanBeLazyLoaded returns a copy of the surviving candidates keyed by local name.
func (f *FileAnalysis) CanBeLazyLoaded() map[string]CandidateEntry {
	out := make(map[string]CandidateEntry, len(f.candidates))
	for k, v := range f.candidates {
		out[k] = v
	}
	return out
}

// buildFileAnalysis runs the per-file pipeline: strip comments, scan, decompose,
// resolve modules and default export identities, then build the candidate table.
func (a *Analyzer) buildFileAnalysis(path string) (*FileAnalysis, error) {
	source, err := a.read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fa := newFileAnalysis(path, source)
	dir := filepath.Dir(path)
	scan := ScanImports(StripComments(source))

	for _, dynamic := range scan.Dynamic {
		dynamic.RawText = string(source[dynamic.Start:dynamic.End])
		fa.Dynamic = append(fa.Dynamic, dynamic)
		if a.resolver.Resolve(dynamic.ModuleSpecifier, dir).IsInternal {
			fa.AlreadyLazyLoaded++
		}
	}

	for _, stmt := range scan.Static {
		binding := DecomposeImport(stmt)
		if binding.IsEmpty() {
			continue
		}
		binding.RawText = string(source[stmt.Start:stmt.End])

		resolved := a.resolver.Resolve(stmt.ModuleSpecifier, dir)
		binding.ResolvedModulePath = resolved.Path
		binding.IsInternal = resolved.IsInternal

		if resolved.IsInternal && !binding.TypeOnly {
			a.addBindingCandidates(fa, &binding)
		}
		fa.Imports = append(fa.Imports, binding)
	}

	if a.markup != nil {
		a.applyMarkupFilter(fa)
	}
	if a.syntax != nil {
		fa.Diagnostics = append(fa.Diagnostics, a.syntax(path, source)...)
	}

	return fa, nil
}

func (a *Analyzer) addBindingCandidates(fa *FileAnalysis, binding *ImportBinding) {
	target := binding.ResolvedModulePath

	if binding.Default != nil {
		name, _ := a.defaults.Resolve(target)
		binding.Default.ResolvedExportName = name
		fa.addCandidate(binding.Default.LocalName, CandidateEntry{Path: target, ExportName: name})
	}

	if binding.Namespace != "" {
		fa.addCandidate(binding.Namespace, CandidateEntry{Path: target, ExportName: binding.Namespace})
	}

	for _, named := range binding.Named {
		if named.TypeOnly {
			continue
		}
		exportName := named.ExportedName
		if exportName == "default" {
			exportName, _ = a.defaults.Resolve(target)
		}
		fa.addCandidate(named.LocalName, CandidateEntry{Path: target, ExportName: exportName})
	}
}

func (a *Analyzer) applyMarkupFilter(fa *FileAnalysis) {
	for _, localName := range fa.CandidateNames() {
		entry := fa.candidates[localName]
		ok, err := a.markup.ReturnsMarkup(entry.Path, entry.ExportName)
		if err != nil {
			a.logger.Warn("markup check failed", "path", entry.Path, "export", entry.ExportName, "error", err)
			continue
		}
		if !ok {
			fa.removeCandidate(localName)
		}
	}
}
