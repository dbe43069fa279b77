// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"math"
	"slices"
)

const (
	ProjectTypeJavaBackend   = "Backend (REST API)"
	ProjectTypeNodeBackend   = "Backend / Full-Stack (Node.js)"
	ProjectTypePythonBackend = "Backend (Python)"
	ProjectTypeUnknown       = "Unknown Project Type"
)

// StructureInfo describes the layout and size of the tree. Counts exclude skipped directories.
type StructureInfo struct {
	SourceDirectory    string  `json:"sourceDirectory"`
	ResourcesDirectory string  `json:"resourcesDirectory"`
	TestDirectory      string  `json:"testDirectory"`
	JavaClassCount     int     `json:"javaClassCount"`
	ProjectType        string  `json:"projectType"`
	FileCount          int     `json:"fileCount"`
	DirCount           int     `json:"directoryCount"`
	SizeBytes          int64   `json:"sizeBytes"`
	SizeMB             float64 `json:"totalSizeMB"`
}

var (
	sourceDirectories    = []string{"src/main/java", "src"}
	resourcesDirectories = []string{"src/main/resources"}
	testDirectories      = []string{"src/test/java", "test"}
)

type StructureResult struct {
	Info StructureInfo
}

func (r *StructureResult) Detections() []Detection {
	return nil
}

func (r *StructureResult) merge(p *Profile) {
	p.Structure = r.Info
}

type StructureDetector struct{}

func NewStructureDetector() *StructureDetector {
	return &StructureDetector{}
}

func (d *StructureDetector) Name() string {
	return "structure"
}

func (d *StructureDetector) Detect(ctx context.Context, src EvidenceSource) (Result, error) {
	stats := src.Stats()
	info := StructureInfo{
		SourceDirectory:    firstDir(src, sourceDirectories),
		ResourcesDirectory: firstDir(src, resourcesDirectories),
		TestDirectory:      firstDir(src, testDirectories),
		JavaClassCount:     len(src.FindAllByExtension("java")),
		ProjectType:        projectType(src),
		FileCount:          stats.FileCount,
		DirCount:           stats.DirCount,
		SizeBytes:          stats.SizeBytes,
		SizeMB:             toMB(stats.SizeBytes),
	}

	return &StructureResult{Info: info}, ctx.Err()
}

func firstDir(src EvidenceSource, candidates []string) string {
	for _, dir := range candidates {
		if src.IsDir(dir) {
			return dir
		}
	}

	return unknown
}

// toMB converts bytes to mebibytes, rounded to two decimals.
func toMB(size int64) float64 {
	return math.Round(float64(size)/(1024*1024)*100) / 100
}

// projectType classifies the tree from its build markers and the languages present.
func projectType(src EvidenceSource) string {
	languages := presentLanguages(src.AllExtensions())
	has := func(name string) bool {
		_, ok := src.FindFile(name)
		return ok
	}

	switch {
	case (has("pom.xml") || has("build.gradle") || has("build.gradle.kts")) && slices.Contains(languages, "Java"):
		return ProjectTypeJavaBackend
	case has("package.json") &&
		(slices.Contains(languages, "JavaScript") || slices.Contains(languages, "TypeScript")):
		return ProjectTypeNodeBackend
	case slices.Contains(languages, "Python"):
		return ProjectTypePythonBackend
	default:
		return ProjectTypeUnknown
	}
}
