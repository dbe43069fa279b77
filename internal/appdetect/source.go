// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
)

// EvidenceSource is the read-only view of a tree that detectors consume.
//
// Paths are slash separated and relative to the tree root.
type EvidenceSource interface {
	// FindFile returns the shallowest file with the exact base name.
	FindFile(name string) (string, bool)
	// FindDir returns the shallowest directory with the exact base name.
	FindDir(name string) (string, bool)
	// FindAllByExtension returns files with the extension (without the dot) in walk order.
	FindAllByExtension(ext string) []string
	// ReadText returns the contents of a file. Errors wrap ErrIO.
	ReadText(path string) (string, error)
	// AllExtensions returns the distinct file extensions present, sorted.
	AllExtensions() []string
	// IsDir reports whether the relative path is a walked directory.
	IsDir(path string) bool
	// Stats returns structural counts of the walked tree.
	Stats() TreeStats
}

// TreeStats holds structural counts of a walked tree, after exclusions.
type TreeStats struct {
	FileCount int   `json:"fileCount"`
	DirCount  int   `json:"directoryCount"`
	SizeBytes int64 `json:"sizeBytes"`
}

// Source is an EvidenceSource built from a single walk of a file system.
type Source struct {
	fsys fs.FS

	files      []string
	byName     map[string][]string
	dirsByName map[string][]string
	dirs       map[string]struct{}
	byExt      map[string][]string
	stats      TreeStats
}

// NewDirSource walks the directory at root.
func NewDirSource(root string, excludePatterns []string) (*Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return newEmptySource(), fmt.Errorf("%w: %w", ErrIO, err)
	}

	if !info.IsDir() {
		return newEmptySource(), fmt.Errorf("%w: %s is not a directory", ErrIO, root)
	}

	return NewSource(os.DirFS(root), excludePatterns)
}

func newEmptySource() *Source {
	return &Source{
		byName:     map[string][]string{},
		dirsByName: map[string][]string{},
		dirs:       map[string]struct{}{},
		byExt:      map[string][]string{},
	}
}

// NewSource walks fsys once and indexes every file not matched by excludePatterns.
//
// Unreadable entries are skipped. The returned error lists them, and the returned Source is always usable.
func NewSource(fsys fs.FS, excludePatterns []string) (*Source, error) {
	s := newEmptySource()
	s.fsys = fsys

	var walkErr error
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			walkErr = multierr.Append(walkErr, fmt.Errorf("%w: %s: %w", ErrIO, p, err))
			if d != nil && d.IsDir() && p != "." {
				return fs.SkipDir
			}

			return nil
		}

		if p == "." {
			return nil
		}

		if excluded(p, excludePatterns) {
			if d.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		name := d.Name()
		if d.IsDir() {
			s.dirs[p] = struct{}{}
			s.dirsByName[name] = append(s.dirsByName[name], p)
			s.stats.DirCount++
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		s.files = append(s.files, p)
		s.byName[name] = append(s.byName[name], p)
		if ext := extension(name); ext != "" {
			s.byExt[ext] = append(s.byExt[ext], p)
		}

		s.stats.FileCount++
		if info, err := d.Info(); err == nil {
			s.stats.SizeBytes += info.Size()
		} else {
			log.Printf("reading file info for %s: %v", p, err)
		}

		return nil
	})

	return s, multierr.Append(walkErr, err)
}

func excluded(p string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}

	return false
}

func extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}

	return name[i+1:]
}

func shallowest(paths []string) (string, bool) {
	if len(paths) == 0 {
		return "", false
	}

	best := paths[0]
	for _, p := range paths[1:] {
		if strings.Count(p, "/") < strings.Count(best, "/") {
			best = p
		}
	}

	return best, true
}

func (s *Source) FindFile(name string) (string, bool) {
	return shallowest(s.byName[name])
}

func (s *Source) FindDir(name string) (string, bool) {
	return shallowest(s.dirsByName[name])
}

func (s *Source) FindAllByExtension(ext string) []string {
	return slices.Clone(s.byExt[ext])
}

func (s *Source) ReadText(p string) (string, error) {
	if s.fsys == nil {
		return "", fmt.Errorf("%w: %s: no tree", ErrIO, p)
	}

	content, err := fs.ReadFile(s.fsys, path.Clean(p))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrIO, p, err)
	}

	return string(content), nil
}

func (s *Source) AllExtensions() []string {
	exts := make([]string, 0, len(s.byExt))
	for ext := range s.byExt {
		exts = append(exts, ext)
	}

	slices.Sort(exts)
	return exts
}

func (s *Source) IsDir(p string) bool {
	_, ok := s.dirs[path.Clean(p)]
	return ok
}

func (s *Source) Stats() TreeStats {
	return s.stats
}

// Files returns every indexed file in walk order.
func (s *Source) Files() []string {
	return slices.Clone(s.files)
}

var _ EvidenceSource = (*Source)(nil)
