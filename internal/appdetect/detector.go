// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import "context"

// Detector scans an EvidenceSource for one category of facts.
//
// Detect may return a partial Result together with an error that lists the files it had to skip. A nil Result means
// the detector contributed nothing.
type Detector interface {
	Name() string
	Detect(ctx context.Context, src EvidenceSource) (Result, error)
}

// Result is the output of a single Detector.
//
// The concrete result types form a closed set. Each one knows how to merge its category specific data into a Profile.
type Result interface {
	// Detections returns the scored detections of the result, in the detector's order.
	Detections() []Detection

	merge(p *Profile)
}

// DefaultDetectors returns the detectors of a full analysis, in merge order.
func DefaultDetectors() []Detector {
	return []Detector{
		NewLanguageDetector(DefaultLanguageRules),
		NewBuildSystemDetector(DefaultBuildMarkers),
		NewFrameworkDetector(DefaultFrameworkSignatures),
		NewDataLayerDetector(DefaultDataLayerSignatures),
		NewSecurityDetector(DefaultSecuritySignatures),
		NewApiSurfaceDetector(),
		NewEntryPointDetector(),
		NewConfigFileDetector(DefaultConfigBuckets),
		NewStructureDetector(),
	}
}
