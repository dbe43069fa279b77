// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
)

// LanguageRule holds the weights that vote for one language.
//
// Each extension or marker file present in the tree contributes its weight once.
type LanguageRule struct {
	Language   string
	Extensions map[string]int
	Markers    map[string]int
}

// DefaultLanguageRules is ordered by tie-break priority: when two languages have the same score, the one listed first
// wins.
var DefaultLanguageRules = []LanguageRule{
	{
		Language:   "Java",
		Extensions: map[string]int{"java": 3, "gradle": 2},
		Markers:    map[string]int{"pom.xml": 2},
	},
	{
		Language:   "Python",
		Extensions: map[string]int{"py": 3},
		Markers:    map[string]int{"requirements.txt": 2, "pyproject.toml": 2, "setup.py": 2},
	},
	{
		Language:   "TypeScript",
		Extensions: map[string]int{"ts": 3, "tsx": 3},
		Markers:    map[string]int{"tsconfig.json": 3},
	},
	{
		Language:   "JavaScript",
		Extensions: map[string]int{"js": 2, "jsx": 2},
		Markers:    map[string]int{"package.json": 3},
	},
}

// extensionLanguages maps file extensions to the languages reported as present.
var extensionLanguages = map[string]string{
	"java": "Java",
	"py":   "Python",
	"ts":   "TypeScript",
	"tsx":  "TypeScript",
	"js":   "JavaScript",
	"jsx":  "JavaScript",
	"go":   "Go",
	"rs":   "Rust",
	"cs":   "C#",
	"rb":   "Ruby",
	"php":  "PHP",
	"kt":   "Kotlin",
}

// LanguageResult is the outcome of the language contest.
type LanguageResult struct {
	// Primary is the winning language, or "Unknown".
	Primary string
	Version string
	// All lists every language with at least one source file, sorted.
	All    []string
	Scores map[string]int

	detection *Detection
}

func (r *LanguageResult) Detections() []Detection {
	if r.detection == nil {
		return nil
	}

	return []Detection{*r.detection}
}

func (r *LanguageResult) merge(p *Profile) {
	p.LanguageVersion = r.Version
	p.Languages = slices.Clone(r.All)
}

type LanguageDetector struct {
	rules  []LanguageRule
	scorer Scorer
}

func NewLanguageDetector(rules []LanguageRule) *LanguageDetector {
	return &LanguageDetector{rules: rules}
}

func (d *LanguageDetector) Name() string {
	return "language"
}

func (d *LanguageDetector) Detect(ctx context.Context, src EvidenceSource) (Result, error) {
	result := &LanguageResult{
		Primary: unknown,
		Version: unknown,
		All:     presentLanguages(src.AllExtensions()),
		Scores:  map[string]int{},
	}

	bestIndex := -1
	tied := false
	var bestEvidence []Evidence
	for i, rule := range d.rules {
		score, evidence := scoreLanguage(rule, src)
		result.Scores[rule.Language] = score
		if score == 0 {
			continue
		}

		best := 0
		if bestIndex >= 0 {
			best = result.Scores[d.rules[bestIndex].Language]
		}

		switch {
		case bestIndex < 0 || score > best:
			bestIndex, bestEvidence, tied = i, evidence, false
		case score == best:
			tied = true
		}
	}

	if bestIndex < 0 {
		return result, nil
	}

	winner := d.rules[bestIndex].Language
	version, err := languageVersion(winner, src)
	result.Primary = winner
	result.Version = version

	finding := Finding{
		Name:     winner,
		Category: CategoryLanguage,
		Reason:   fmt.Sprintf("highest weighted score (%d)", result.Scores[winner]),
		Evidence: bestEvidence,
	}
	if version != unknown {
		finding.Version = version
	}

	if tied {
		finding.Reason = fmt.Sprintf("tied at score %d, resolved by language priority", result.Scores[winner])
		finding.Ceiling = Medium
	}

	if detection, ok := d.scorer.Score(finding); ok {
		result.detection = &detection
	}

	return result, err
}

// scoreLanguage sums the weights of the rule's extensions and markers found in the tree.
func scoreLanguage(rule LanguageRule, src EvidenceSource) (int, []Evidence) {
	score := 0
	var evidence []Evidence
	for _, ext := range sortedKeys(rule.Extensions) {
		files := src.FindAllByExtension(ext)
		if len(files) == 0 {
			continue
		}

		score += rule.Extensions[ext]
		evidence = append(evidence, Evidence{Kind: FilePresent, Location: files[0], Literal: "*." + ext})
	}

	for _, marker := range sortedKeys(rule.Markers) {
		if p, ok := src.FindFile(marker); ok {
			score += rule.Markers[marker]
			evidence = append(evidence, Evidence{Kind: FilePresent, Location: p, Literal: marker})
		}
	}

	return score, evidence
}

func presentLanguages(extensions []string) []string {
	languages := []string{}
	for _, ext := range extensions {
		if language, ok := extensionLanguages[ext]; ok && !slices.Contains(languages, language) {
			languages = append(languages, language)
		}
	}

	slices.Sort(languages)
	return languages
}

var (
	gradleSourceCompatibilityRegex = regexp.MustCompile(
		`sourceCompatibility\s*=\s*['"]?(?:JavaVersion\.VERSION_)?([0-9][0-9._]*)['"]?`)
	gradleToolchainRegex = regexp.MustCompile(`JavaLanguageVersion\.of\(\s*(\d+)\s*\)`)
)

// languageVersion looks up the declared version of the language. Missing data resolves to "Unknown".
func languageVersion(language string, src EvidenceSource) (string, error) {
	m, errs := manifestsOf(src)

	firstLine := func(name string) string {
		p, ok := src.FindFile(name)
		if !ok {
			return ""
		}

		content, err := src.ReadText(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			return ""
		}

		line, _, _ := strings.Cut(content, "\n")
		return strings.TrimSpace(line)
	}

	version := ""
	switch language {
	case "Java":
		if m.pom != nil {
			version = m.pom.javaVersion()
		}

		if version == "" && m.gradleContent != "" {
			if match := gradleSourceCompatibilityRegex.FindStringSubmatch(m.gradleContent); match != nil {
				version = strings.ReplaceAll(match[1], "_", ".")
			} else if match := gradleToolchainRegex.FindStringSubmatch(m.gradleContent); match != nil {
				version = match[1]
			}
		}
	case "Python":
		version = m.pythonVersion()
		if version == "" {
			version = firstLine(".python-version")
		}
	case "JavaScript", "TypeScript":
		if m.packageJson != "" {
			version = gjson.Get(m.packageJson, "engines.node").String()
		}

		if version == "" {
			version = firstLine(".nvmrc")
		}
	}

	if version == "" {
		return unknown, errs
	}

	return version, errs
}
