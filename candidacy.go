package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RenderUsageRecord states that ComponentName is instantiated at the given
// source location. A zero SourceColumn means the column is unknown.
type RenderUsageRecord struct {
	ComponentName string
	SourceFile    string
	SourceLine    int
	SourceColumn  int
}

// MarkupFilter reports whether an export of a file is a function that returns UI markup.
type MarkupFilter interface {
	ReturnsMarkup(path string, exportName string) (bool, error)
}

// SyntaxChecker returns parse diagnostics for a source file.
type SyntaxChecker func(path string, source []byte) []string

type FileFailure struct {
	Path string
	Err  error
}

type AnalyzerOptions struct {
	Aliases     TsConfigAliases
	Markup      MarkupFilter
	Syntax      SyntaxChecker
	Concurrency int
	Logger      *slog.Logger
	ReadFile    func(path string) ([]byte, error)
}

// Analyzer owns all caches of one analysis run.
type Analyzer struct {
	read        func(path string) ([]byte, error)
	resolver    *ModuleResolver
	defaults    *DefaultExportResolver
	markup      MarkupFilter
	syntax      SyntaxChecker
	concurrency int
	logger      *slog.Logger

	mu       sync.Mutex
	files    map[string]*FileAnalysis
	failures map[string]error
}

func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	read := opts.ReadFile
	if read == nil {
		read = func(path string) ([]byte, error) {
			return os.ReadFile(DenormalizePathForOS(path))
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0) * 2
	}

	resolver := NewModuleResolver(opts.Aliases)
	return &Analyzer{
		read:        read,
		resolver:    resolver,
		defaults:    NewDefaultExportResolver(read, resolver),
		markup:      opts.Markup,
		syntax:      opts.Syntax,
		concurrency: concurrency,
		logger:      logger,
		files:       map[string]*FileAnalysis{},
		failures:    map[string]error{},
	}
}

// FileAnalysis returns the candidate table of path, building it on first use.
func (a *Analyzer) FileAnalysis(path string) (*FileAnalysis, error) {
	a.mu.Lock()
	if fa, ok := a.files[path]; ok {
		a.mu.Unlock()
		return fa, nil
	}
	if err, ok := a.failures[path]; ok {
		a.mu.Unlock()
		return nil, err
	}
	a.mu.Unlock()

	fa, err := a.buildFileAnalysis(path)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.failures[path] = err
		return nil, err
	}
	if existing, ok := a.files[path]; ok {
		return existing, nil
	}
	a.files[path] = fa
	return fa, nil
}

// BuildAll builds the candidate tables of paths in parallel. Unreadable files
// are recorded as failures and do not stop the build.
func (a *Analyzer) BuildAll(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := a.FileAnalysis(path); err != nil {
				a.logger.Warn("skipping file", "path", path, "error", err)
				return nil
			}
			a.logger.Debug("analysed file", "path", path)
			return nil
		})
	}

	return g.Wait()
}

type AnalysisResult struct {
	Files      map[string]*FileAnalysis
	Failures   []FileFailure
	Suppressed []ExportIdentity
}

// Run builds the tables of files and of every file named by records, matches
// render usage against the built tables and then propagates suppression.
func (a *Analyzer) Run(ctx context.Context, files []string, records []RenderUsageRecord) (*AnalysisResult, error) {
	paths := slices.Clone(files)
	for _, record := range records {
		if record.SourceFile != "" {
			paths = append(paths, record.SourceFile)
		}
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	if err := a.BuildAll(ctx, paths); err != nil {
		return nil, fmt.Errorf("failed to build file analyses: %w", err)
	}

	seeds := a.matchRenderUsage(records)
	suppressed := a.propagateSuppression(seeds)

	a.mu.Lock()
	defer a.mu.Unlock()

	result := &AnalysisResult{
		Files:      make(map[string]*FileAnalysis, len(a.files)),
		Suppressed: suppressed,
	}
	for path, fa := range a.files {
		result.Files[path] = fa
	}
	for path, err := range a.failures {
		result.Failures = append(result.Failures, FileFailure{Path: path, Err: err})
	}
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Path < result.Failures[j].Path
	})

	return result, nil
}

// matchRenderUsage returns, in record order, the identities of candidates that
// records show to be rendered. Matching reads tables that are not yet pruned,
// so the outcome does not depend on record order.
func (a *Analyzer) matchRenderUsage(records []RenderUsageRecord) []ExportIdentity {
	var seeds []ExportIdentity
	seen := map[RenderUsageRecord]bool{}

	for _, record := range records {
		if record.SourceFile == "" || record.SourceLine <= 0 || seen[record] {
			continue
		}
		seen[record] = true

		a.mu.Lock()
		fa, ok := a.files[record.SourceFile]
		a.mu.Unlock()
		if !ok {
			continue
		}

		statement, ok := renderStatement(fa.Source, record.SourceLine, record.SourceColumn)
		if !ok {
			a.logger.Debug("render location outside of file", "path", record.SourceFile, "line", record.SourceLine, "column", record.SourceColumn)
			continue
		}

		if entry, ok := firstMatchingCandidate(fa, tokenizeRenderStatement(statement), record.ComponentName); ok {
			seeds = append(seeds, entry.Identity())
		}
	}

	return seeds
}

// firstMatchingCandidate returns the first candidate in scan order whose local
// name is one of tokens and whose export name is componentName.
func firstMatchingCandidate(fa *FileAnalysis, tokens []string, componentName string) (CandidateEntry, bool) {
	for _, localName := range fa.candidateOrder {
		entry := fa.candidates[localName]
		if entry.ExportName != componentName {
			continue
		}
		if slices.Contains(tokens, localName) {
			return entry, true
		}
	}
	return CandidateEntry{}, false
}

// propagateSuppression removes every suppressed identity from every file that
// imports it. Each newly suppressed identity is queued once and the loop runs
// until the queue is empty.
func (a *Analyzer) propagateSuppression(seeds []ExportIdentity) []ExportIdentity {
	a.mu.Lock()
	defer a.mu.Unlock()

	importers := map[ExportIdentity][]*FileAnalysis{}
	for _, fa := range a.files {
		for _, localName := range fa.candidateOrder {
			identity := fa.candidates[localName].Identity()
			if !slices.Contains(importers[identity], fa) {
				importers[identity] = append(importers[identity], fa)
			}
		}
	}

	suppressed := map[ExportIdentity]bool{}
	var order []ExportIdentity
	queue := []ExportIdentity{}
	for _, seed := range seeds {
		if !suppressed[seed] {
			suppressed[seed] = true
			order = append(order, seed)
			queue = append(queue, seed)
		}
	}

	for len(queue) > 0 {
		identity := queue[0]
		queue = queue[1:]

		for _, fa := range importers[identity] {
			fa.CanNotBeLazyLoaded += fa.removeIdentity(identity)
		}
	}

	return order
}

// locateOffset converts a 1-based line and column into a byte offset.
func locateOffset(source []byte, line, column int) (int, bool) {
	if line <= 0 || column <= 0 {
		return 0, false
	}

	lineStart := 0
	for current := 1; current < line; current++ {
		next := bytes.IndexByte(source[lineStart:], '\n')
		if next < 0 {
			return 0, false
		}
		lineStart += next + 1
	}

	lineEnd := len(source)
	if next := bytes.IndexByte(source[lineStart:], '\n'); next >= 0 {
		lineEnd = lineStart + next
	}

	offset := lineStart + column - 1
	if offset >= lineEnd {
		return 0, false
	}
	return offset, true
}

// renderStatement returns the text following the element opening at the given
// location up to `>`. Without a column the whole line, from its first byte
// up to the line break, is used.
func renderStatement(source []byte, line, column int) ([]byte, bool) {
	if column <= 0 {
		start, ok := locateOffset(source, line, 1)
		if !ok {
			return nil, false
		}
		end := bytes.IndexByte(source[start:], '\n')
		if end < 0 {
			return source[start:], true
		}
		return source[start : start+end], true
	}

	offset, ok := locateOffset(source, line, column)
	if !ok {
		return nil, false
	}
	rest := source[offset+1:]
	end := bytes.IndexByte(rest, '>')
	if end < 0 {
		return nil, true
	}
	return rest[:end], true
}

// tokenizeRenderStatement splits on every run of non identifier characters.
func tokenizeRenderStatement(statement []byte) []string {
	var tokens []string
	start := -1
	for i, c := range statement {
		if isValidIdentifierChar(c) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, string(statement[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, string(statement[start:]))
	}
	return tokens
}
