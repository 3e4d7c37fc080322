package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

type FileReport struct {
	Name               string                    `json:"name"`
	Path               string                    `json:"path"`
	Size               int64                     `json:"size"`
	Type               string                    `json:"type"`
	AlreadyLazyLoaded  int                       `json:"alreadyLazyLoaded"`
	CanBeLazyLoaded    map[string]CandidateEntry `json:"canBeLazyLoaded"`
	CanNotBeLazyLoaded int                       `json:"canNotBeLazyLoaded"`
	ParentFolder       string                    `json:"parentFolder"`
	Diagnostics        []string                  `json:"diagnostics,omitempty"`
}

type FolderReport struct {
	Name               string   `json:"name"`
	Path               string   `json:"path"`
	Size               int64    `json:"size"`
	Type               string   `json:"type"`
	AlreadyLazyLoaded  int      `json:"alreadyLazyLoaded"`
	CanBeLazyLoaded    int      `json:"canBeLazyLoaded"`
	CanNotBeLazyLoaded int      `json:"canNotBeLazyLoaded"`
	NoOfSubFolders     int      `json:"noOfSubFolders"`
	NoOfSubFiles       int      `json:"noOfSubFiles"`
	FoldersInside      []string `json:"foldersInside"`
	FilesInside        []string `json:"filesInside"`
	ParentFolder       string   `json:"parentFolder,omitempty"`
}

type FailureReport struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report is the aggregated result keyed by root relative paths.
type Report struct {
	Root     string                   `json:"root"`
	Files    map[string]*FileReport   `json:"files"`
	Folders  map[string]*FolderReport `json:"folders"`
	Failures []FailureReport          `json:"failures,omitempty"`
}

const rootFolderKey = "/"

// BuildReport aggregates file analyses below root into file and folder
// entries. Analyses outside root are left out. Folder counts include
// everything below the folder.
func BuildReport(root string, analyses map[string]*FileAnalysis) *Report {
	root = filepath.Clean(DenormalizePathForOS(root))
	report := &Report{
		Root:    NormalizePathForInternal(root),
		Files:   map[string]*FileReport{},
		Folders: map[string]*FolderReport{},
	}

	paths := make([]string, 0, len(analyses))
	for p := range analyses {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	for _, p := range paths {
		key, ok := ReportKey(root, p)
		if !ok || key == rootFolderKey {
			continue
		}
		fa := analyses[p]
		file := &FileReport{
			Name:               path.Base(key),
			Path:               fa.Path,
			Size:               fa.Size,
			Type:               strings.TrimPrefix(path.Ext(key), "."),
			AlreadyLazyLoaded:  fa.AlreadyLazyLoaded,
			CanBeLazyLoaded:    fa.CanBeLazyLoaded(),
			CanNotBeLazyLoaded: fa.CanNotBeLazyLoaded,
			ParentFolder:       path.Dir(key),
			Diagnostics:        fa.Diagnostics,
		}
		report.Files[key] = file
		report.addFile(root, key, file)
	}

	for _, folder := range report.Folders {
		slices.Sort(folder.FoldersInside)
		slices.Sort(folder.FilesInside)
	}
	return report
}

// folder returns the entry for key, creating it and its ancestors as needed.
func (r *Report) folder(root string, key string) *FolderReport {
	if existing, ok := r.Folders[key]; ok {
		return existing
	}

	folder := &FolderReport{
		Name:          path.Base(key),
		Path:          NormalizePathForInternal(filepath.Join(root, filepath.FromSlash(key))),
		Type:          "folder",
		FoldersInside: []string{},
		FilesInside:   []string{},
	}
	if key == rootFolderKey {
		folder.Name = filepath.Base(root)
		folder.Path = NormalizePathForInternal(root)
		r.Folders[key] = folder
		return folder
	}

	folder.ParentFolder = path.Dir(key)
	r.Folders[key] = folder
	parent := r.folder(root, folder.ParentFolder)
	parent.FoldersInside = append(parent.FoldersInside, key)
	for ancestor := parent; ; ancestor = r.Folders[ancestor.ParentFolder] {
		ancestor.NoOfSubFolders++
		if ancestor.ParentFolder == "" {
			break
		}
	}
	return folder
}

func (r *Report) addFile(root string, key string, file *FileReport) {
	parent := r.folder(root, file.ParentFolder)
	parent.FilesInside = append(parent.FilesInside, key)

	for ancestor := parent; ; ancestor = r.Folders[ancestor.ParentFolder] {
		ancestor.Size += file.Size
		ancestor.NoOfSubFiles++
		ancestor.AlreadyLazyLoaded += file.AlreadyLazyLoaded
		ancestor.CanBeLazyLoaded += len(file.CanBeLazyLoaded)
		ancestor.CanNotBeLazyLoaded += file.CanNotBeLazyLoaded
		if ancestor.ParentFolder == "" {
			break
		}
	}
}

// AddFailures lists per-file failures that occurred during analysis.
func (r *Report) AddFailures(failures []FileFailure) {
	for _, failure := range failures {
		r.Failures = append(r.Failures, FailureReport{Path: failure.Path, Error: failure.Err.Error()})
	}
}

// Totals returns the root folder entry, or an empty one when nothing was analysed.
func (r *Report) Totals() FolderReport {
	if root, ok := r.Folders[rootFolderKey]; ok {
		return *root
	}
	return FolderReport{Name: filepath.Base(r.Root), Type: "folder"}
}

func (r *Report) WriteJSON(outputPath string) error {
	content, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, append(content, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
