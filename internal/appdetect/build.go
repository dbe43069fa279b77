// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
)

// BuildMarker maps a manifest file name to the build tool that owns it.
type BuildMarker struct {
	File string
	Tool string
}

// DefaultBuildMarkers is tried in order. The first marker present selects the build tool.
var DefaultBuildMarkers = []BuildMarker{
	{File: "pom.xml", Tool: "Maven"},
	{File: "build.gradle", Tool: "Gradle"},
	{File: "build.gradle.kts", Tool: "Gradle"},
	{File: "package.json", Tool: "npm"},
	{File: "pyproject.toml", Tool: "Poetry/Pip"},
	{File: "requirements.txt", Tool: "Pip"},
}

// BuildInfo describes the build setup of the tree.
type BuildInfo struct {
	Tool string `json:"tool"`
	// DependencyCount is the number of distinct dependencies declared across every recognized manifest.
	DependencyCount int  `json:"dependencyCount"`
	MultiModule     bool `json:"multiModule"`
	ModuleCount     int  `json:"moduleCount"`
}

type BuildResult struct {
	Info      BuildInfo
	detection Detection
}

func (r *BuildResult) Detections() []Detection {
	return []Detection{r.detection}
}

func (r *BuildResult) merge(p *Profile) {
	p.Build = r.Info
}

type BuildSystemDetector struct {
	markers []BuildMarker
	scorer  Scorer
}

func NewBuildSystemDetector(markers []BuildMarker) *BuildSystemDetector {
	return &BuildSystemDetector{markers: markers}
}

func (d *BuildSystemDetector) Name() string {
	return "build-system"
}

func (d *BuildSystemDetector) Detect(ctx context.Context, src EvidenceSource) (Result, error) {
	finding := selectBuildTool(d.markers, src)
	detection, _ := d.scorer.Score(finding)

	m, errs := manifestsOf(src)
	count, err := countDependencies(m, src)
	errs = multierr.Append(errs, err)

	result := &BuildResult{
		Info: BuildInfo{
			Tool:            detection.Name,
			DependencyCount: count,
		},
		detection: detection,
	}

	if m.pom != nil && len(m.pom.Modules) > 0 {
		result.Info.MultiModule = true
		result.Info.ModuleCount = len(m.pom.Modules)
	}

	return result, errs
}

// selectBuildTool returns the finding of the first marker present, or an "Unknown" finding that records every marker
// probed.
func selectBuildTool(markers []BuildMarker, src EvidenceSource) Finding {
	probed := make([]string, 0, len(markers))
	for _, marker := range markers {
		if p, ok := src.FindFile(marker.File); ok {
			return Finding{
				Name:     marker.Tool,
				Category: CategoryBuildSystem,
				Evidence: []Evidence{{Kind: FilePresent, Location: p, Literal: marker.File}},
			}
		}

		probed = append(probed, marker.File)
	}

	return Finding{
		Name:     unknown,
		Category: CategoryBuildSystem,
		Reason:   "No standard build system detected",
		Evidence: []Evidence{{Kind: MarkerAbsent, Location: ".", Literal: strings.Join(probed, ", ")}},
	}
}

var (
	yarnLockEntryRegex     = regexp.MustCompile(`(?m)^"?(@?[^@\s"]+)@`)
	setupInstallRegex      = regexp.MustCompile(`(?s)install_requires\s*=\s*\[(.*?)\]`)
	quotedStringRegex      = regexp.MustCompile(`['"]([^'"]+)['"]`)
	sbtDependenciesRegex   = regexp.MustCompile(`libraryDependencies\s*\+\+?=\s*(?:Seq\()?[^\n]*`)
	sbtModuleRegex         = regexp.MustCompile(`"([^"]+)"\s*%%?\s*"([^"]+)"`)
	gemfileDependencyRegex = regexp.MustCompile(`(?m)^\s*gem\s+['"]([^'"]+)['"]`)
)

// countDependencies counts distinct dependency names across the structured manifests and the secondary manifests
// that are only scanned with patterns.
func countDependencies(m *manifests, src EvidenceSource) (int, error) {
	names := map[string]struct{}{}
	for _, dep := range m.deps {
		key := dep.Name
		if dep.Group != "" {
			key = dep.Group + ":" + dep.Name
		}

		names[key] = struct{}{}
	}

	var errs error
	read := func(name string) string {
		p, ok := src.FindFile(name)
		if !ok {
			return ""
		}

		content, err := src.ReadText(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			return ""
		}

		return content
	}

	for _, match := range yarnLockEntryRegex.FindAllStringSubmatch(read("yarn.lock"), -1) {
		names[match[1]] = struct{}{}
	}

	if match := setupInstallRegex.FindStringSubmatch(read("setup.py")); match != nil {
		for _, dep := range quotedStringRegex.FindAllStringSubmatch(match[1], -1) {
			name, _ := splitRequirement(dep[1])
			names[name] = struct{}{}
		}
	}

	if content := read("Cargo.toml"); content != "" {
		var cargo map[string]any
		if err := toml.Unmarshal([]byte(content), &cargo); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: Cargo.toml: %w", ErrMalformedManifest, err))
		} else {
			for _, section := range []string{"dependencies", "dev-dependencies", "build-dependencies"} {
				if table, ok := cargo[section].(map[string]any); ok {
					for name := range table {
						names["crate:"+name] = struct{}{}
					}
				}
			}
		}
	}

	for _, block := range sbtDependenciesRegex.FindAllString(read("build.sbt"), -1) {
		for _, match := range sbtModuleRegex.FindAllStringSubmatch(block, -1) {
			names[match[1]+":"+match[2]] = struct{}{}
		}
	}

	for _, match := range gemfileDependencyRegex.FindAllStringSubmatch(read("Gemfile"), -1) {
		names["gem:"+match[1]] = struct{}{}
	}

	return len(names), errs
}
