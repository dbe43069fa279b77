// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"slices"

	"go.uber.org/multierr"
)

// Scope selects where a signature looks for its keywords.
type Scope uint8

const (
	ScanDependencies Scope = 1 << iota
	ScanText
	ScanMarkers

	ScanAll = ScanDependencies | ScanText | ScanMarkers
)

// Marker is a file or directory name unique to a technology.
type Marker struct {
	Name string
	// Dir marks a directory marker such as "migrations".
	Dir bool
	// Ceiling caps the confidence of a weak marker.
	Ceiling Confidence
}

// Signature defines how a technology is recognized by the keyword-signature scan.
type Signature struct {
	Name     string
	Category Category
	Keywords []string
	Markers  []Marker
	// Ecosystems restricts dependency matches to these registries. Empty matches every registry.
	Ecosystems []Ecosystem
	// Scope defaults to ScanAll.
	Scope Scope
	// Ceiling caps the confidence of every detection of this signature.
	Ceiling Confidence

	// match replaces keyword matching for dependency entries when set.
	match func(dependency) bool
	// version resolves the version from the manifests instead of the matched dependency when set.
	version func(*manifests) string
}

func (s Signature) scope() Scope {
	if s.Scope == 0 {
		return ScanAll
	}

	return s.Scope
}

func (s Signature) matchesDependency(dep dependency) bool {
	if len(s.Ecosystems) > 0 && !slices.Contains(s.Ecosystems, dep.Ecosystem) {
		return false
	}

	if s.match != nil {
		return s.match(dep)
	}

	for _, keyword := range s.Keywords {
		if matchKeyword(keyword, dep.Name) || (dep.Group != "" && matchKeyword(keyword, dep.Group)) {
			return true
		}
	}

	return false
}

// textFile is the raw content of a well-known config or lock file.
type textFile struct {
	path    string
	content string
}

// scanInput is the evidence shared by every signature of one detector run.
type scanInput struct {
	src       EvidenceSource
	manifests *manifests
	texts     []textFile
}

// newScanInput loads the manifests and the first match of each named text file. Files that cannot be read are
// skipped and reported in the returned error.
func newScanInput(ctx context.Context, src EvidenceSource, textFileNames []string) (scanInput, error) {
	m, errs := manifestsOf(src)
	in := scanInput{src: src, manifests: m}
	for _, name := range textFileNames {
		if ctx.Err() != nil {
			return in, multierr.Append(errs, ctx.Err())
		}

		p, ok := src.FindFile(name)
		if !ok {
			continue
		}

		content, err := src.ReadText(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		in.texts = append(in.texts, textFile{path: p, content: content})
	}

	return in, errs
}

// scan runs the keyword-signature scan for one signature.
//
// Matches are grouped by where they were found: one finding for dependency entries, one for raw text and one per
// marker. Each group is scored on its own so that a weak marker ceiling does not cap a strong dependency match.
func (in scanInput) scan(sig Signature) []Finding {
	var findings []Finding
	scope := sig.scope()

	if scope&ScanDependencies != 0 && in.manifests != nil {
		var evidence []Evidence
		version := ""
		for _, dep := range in.manifests.deps {
			if !sig.matchesDependency(dep) {
				continue
			}

			if len(evidence) == 0 {
				version = dep.Version
			}

			evidence = append(evidence, Evidence{Kind: DependencyEntry, Location: dep.Location, Literal: dep.Coordinate()})
		}

		if len(evidence) > 0 {
			if sig.version != nil {
				if v := sig.version(in.manifests); v != "" {
					version = v
				}
			}

			findings = append(findings, Finding{
				Name:     sig.Name,
				Category: sig.Category,
				Version:  version,
				Ceiling:  sig.Ceiling,
				Evidence: evidence,
			})
		}
	}

	if scope&ScanText != 0 {
		var evidence []Evidence
		for _, text := range in.texts {
			for _, keyword := range sig.Keywords {
				if line, ok := matchingLine(keyword, text.content); ok {
					evidence = append(evidence, Evidence{Kind: TextMatch, Location: text.path, Literal: line})
					break
				}
			}
		}

		if len(evidence) > 0 {
			findings = append(findings, Finding{
				Name:     sig.Name,
				Category: sig.Category,
				Ceiling:  sig.Ceiling,
				Evidence: evidence,
			})
		}
	}

	if scope&ScanMarkers != 0 {
		for _, marker := range sig.Markers {
			find := in.src.FindFile
			if marker.Dir {
				find = in.src.FindDir
			}

			p, ok := find(marker.Name)
			if !ok {
				continue
			}

			findings = append(findings, Finding{
				Name:     sig.Name,
				Category: sig.Category,
				Ceiling:  lowest(sig.Ceiling, marker.Ceiling),
				Evidence: []Evidence{{Kind: FilePresent, Location: p, Literal: marker.Name}},
			})
		}
	}

	return findings
}

// scanAll runs every signature and returns the de-duplicated detections, strongest first. Detections of equal
// confidence keep table order.
func (in scanInput) scanAll(scorer Scorer, signatures []Signature) []Detection {
	var findings []Finding
	for _, sig := range signatures {
		findings = append(findings, in.scan(sig)...)
	}

	return strongestFirst(Dedupe(scorer.ScoreAll(findings)))
}

// strongestFirst orders detections by decreasing confidence. Detections of equal confidence keep their order.
func strongestFirst(detections []Detection) []Detection {
	slices.SortStableFunc(detections, func(a, b Detection) int {
		return b.Confidence.rank() - a.Confidence.rank()
	})

	return detections
}

// lowest returns the lower of two ceilings. An empty ceiling means no cap.
func lowest(a, b Confidence) Confidence {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case a.rank() < b.rank():
		return a
	default:
		return b
	}
}
