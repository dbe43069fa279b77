// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"fmt"
	"slices"
)

// Finding is an unscored match produced by a detector.
type Finding struct {
	Name     string
	Category Category
	Version  string
	// Reason overrides the reason composed from the evidence.
	Reason string
	// Ceiling caps the confidence. Used for weak markers such as a generic app.py.
	Ceiling  Confidence
	Evidence []Evidence
}

// Scorer assigns confidence to findings and composes their justification. It is shared by every detector.
type Scorer struct{}

// ConfidenceFor returns the confidence a single evidence item supports.
//
// Structured dependency entries and uniquely named marker files are strong evidence. A substring match inside free-form
// text may be coincidental.
func (Scorer) ConfidenceFor(kind SourceKind) Confidence {
	switch kind {
	case DependencyEntry, FilePresent:
		return High
	case TextMatch:
		return Medium
	default:
		return Low
	}
}

// Score turns a finding into a Detection. ok is false when the finding carries no evidence.
func (s Scorer) Score(f Finding) (d Detection, ok bool) {
	if len(f.Evidence) == 0 {
		return Detection{}, false
	}

	confidence := Low
	for _, e := range f.Evidence {
		if c := s.ConfidenceFor(e.Kind); c.rank() > confidence.rank() {
			confidence = c
		}
	}

	if f.Ceiling != "" && f.Ceiling.rank() < confidence.rank() {
		confidence = f.Ceiling
	}

	reason := f.Reason
	if reason == "" {
		reason = describe(f.Evidence[0])
	}

	return Detection{
		Name:       f.Name,
		Category:   f.Category,
		Confidence: confidence,
		Reason:     reason,
		Evidence:   slices.Clone(f.Evidence),
		Version:    f.Version,
	}, true
}

// ScoreAll scores every finding in order, dropping findings without evidence.
func (s Scorer) ScoreAll(findings []Finding) []Detection {
	detections := make([]Detection, 0, len(findings))
	for _, f := range findings {
		if d, ok := s.Score(f); ok {
			detections = append(detections, d)
		}
	}

	return detections
}

func describe(e Evidence) string {
	switch e.Kind {
	case DependencyEntry:
		return fmt.Sprintf("%s dependency declared in %s", e.Literal, e.Location)
	case FilePresent:
		return fmt.Sprintf("%s found", e.Location)
	case TextMatch:
		return fmt.Sprintf("'%s' referenced in %s", e.Literal, e.Location)
	default:
		return fmt.Sprintf("none of %s found", e.Literal)
	}
}

type detectionKey struct {
	name     string
	category Category
}

// Dedupe keeps a single detection per (name, category) pair.
//
// The surviving detection is the first one with the highest confidence, and it takes the position of the first
// occurrence of its pair.
//
// API route detections are kept as is. The API surface detector already reports each (method, path, handler) once,
// and two handlers of the same route are two routes.
func Dedupe(detections []Detection) []Detection {
	index := map[detectionKey]int{}
	result := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if d.Category == CategoryApiRoute {
			result = append(result, d)
			continue
		}

		key := detectionKey{d.Name, d.Category}
		i, seen := index[key]
		if !seen {
			index[key] = len(result)
			result = append(result, d)
			continue
		}

		if d.Confidence.rank() > result[i].Confidence.rank() {
			result[i] = d
		}
	}

	return result
}
