// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import "errors"

var (
	// ErrIO is returned when a file in the tree cannot be read or the tree cannot be walked.
	ErrIO = errors.New("unreadable file")
	// ErrMalformedManifest is returned when a build manifest cannot be parsed. Callers treat the manifest as absent.
	ErrMalformedManifest = errors.New("malformed manifest")
	// ErrDetectorFailure marks an unexpected failure inside a single detector.
	ErrDetectorFailure = errors.New("detector failure")
)

// SourceKind is the kind of fact an Evidence item records.
type SourceKind string

const (
	FilePresent     SourceKind = "FILE_PRESENT"
	TextMatch       SourceKind = "TEXT_MATCH"
	DependencyEntry SourceKind = "DEPENDENCY_ENTRY"
	// MarkerAbsent records that a set of markers was probed and none was found.
	MarkerAbsent SourceKind = "MARKER_ABSENT"
)

// Evidence is an atomic fact backing a Detection.
type Evidence struct {
	Kind     SourceKind `json:"sourceKind"`
	Location string     `json:"location"`
	Literal  string     `json:"literal"`
}

type Confidence string

const (
	High   Confidence = "HIGH"
	Medium Confidence = "MEDIUM"
	Low    Confidence = "LOW"
)

func (c Confidence) rank() int {
	switch c {
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	}

	return 0
}

// Category partitions detections for merge and primary selection.
type Category string

const (
	CategoryLanguage       Category = "Language"
	CategoryBuildSystem    Category = "BuildSystem"
	CategoryFramework      Category = "Framework"
	CategoryDatabase       Category = "Database"
	CategoryORM            Category = "ORM"
	CategoryMigrationTool  Category = "MigrationTool"
	CategoryConnectionPool Category = "ConnectionPool"
	CategoryAuthentication Category = "Authentication"
	CategoryEncryption     Category = "Encryption"
	CategorySecurity       Category = "Security"
	CategoryApiRoute       Category = "ApiRoute"
)

// Detection reports that a category contains a technology, with a confidence and the evidence trail behind it.
//
// Detections are only created by a Scorer and are never modified afterwards.
type Detection struct {
	Name       string     `json:"name"`
	Category   Category   `json:"category"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
	Evidence   []Evidence `json:"evidence"`
	Version    string     `json:"version,omitempty"`
}

// IsPlaceholder reports whether the detection only records the absence of markers, such as an "Unknown" build system.
func (d Detection) IsPlaceholder() bool {
	for _, e := range d.Evidence {
		if e.Kind != MarkerAbsent {
			return false
		}
	}

	return true
}
