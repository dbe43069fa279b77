// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"fmt"
	"strings"
)

// Profile is the evidence-backed description of one analyzed tree.
//
// A Profile is created once per analysis by an Analyzer and is not modified afterwards.
type Profile struct {
	ProjectName string `json:"projectName"`

	// Primary selections. Nil when no detector reported the category.
	Language    *Detection `json:"language"`
	Framework   *Detection `json:"framework"`
	BuildSystem *Detection `json:"buildSystem"`
	Database    *Detection `json:"database"`
	ORM         *Detection `json:"orm"`

	LanguageVersion string   `json:"languageVersion"`
	Languages       []string `json:"languages"`

	// Detections lists every detection in detector order, excluding "Unknown" placeholders.
	Detections []Detection `json:"detections"`
	// Security lists the authentication, encryption and security detections.
	Security []Detection `json:"security"`

	Build       BuildInfo      `json:"build"`
	DataLayer   DataLayerInfo  `json:"dataLayer"`
	Api         ApiSurface     `json:"api"`
	EntryPoints EntryPointInfo `json:"entryPoints"`
	Config      ConfigInfo     `json:"config"`
	Structure   StructureInfo  `json:"structure"`

	Summary string `json:"summary"`
	// Diagnostics records detector failures and skipped files. Empty for a fully successful run.
	Diagnostics []string `json:"diagnostics"`
}

func newProfile(projectName string) *Profile {
	return &Profile{
		ProjectName:     projectName,
		LanguageVersion: unknown,
		Languages:       []string{},
		Detections:      []Detection{},
		Security:        []Detection{},
		Build:           BuildInfo{Tool: unknown},
		DataLayer:       newDataLayerInfo(),
		Api:             newApiSurface(),
		EntryPoints:     EntryPointInfo{EntryPoints: []EntryPoint{}},
		Config:          newConfigInfo(),
		Structure:       StructureInfo{SourceDirectory: unknown, ResourcesDirectory: unknown, TestDirectory: unknown},
		Diagnostics:     []string{},
	}
}

const unknown = "Unknown"

// primaryCategories are the categories where a single headline detection is selected.
var primaryCategories = []Category{
	CategoryLanguage,
	CategoryFramework,
	CategoryBuildSystem,
	CategoryDatabase,
	CategoryORM,
}

// selectPrimary assigns the first detection of each primary category, in merge order.
func (p *Profile) selectPrimary(merged []Detection) {
	for _, category := range primaryCategories {
		for i := range merged {
			if merged[i].Category != category {
				continue
			}

			d := merged[i]
			switch category {
			case CategoryLanguage:
				p.Language = &d
			case CategoryFramework:
				p.Framework = &d
			case CategoryBuildSystem:
				p.BuildSystem = &d
			case CategoryDatabase:
				p.Database = &d
			case CategoryORM:
				p.ORM = &d
			}
			break
		}
	}
}

func isSecurityCategory(c Category) bool {
	return c == CategoryAuthentication || c == CategoryEncryption || c == CategorySecurity
}

func nameOf(d *Detection) string {
	if d == nil {
		return ""
	}

	return d.Name
}

// summarize renders the one-line summary. Segments without a value are omitted.
func (p *Profile) summarize() string {
	var segments []string
	if p.ProjectName != "" {
		segments = append(segments, "Project: "+p.ProjectName)
	}

	if name := nameOf(p.Language); name != "" && name != unknown {
		segments = append(segments, "Language: "+name)
	}

	if name := nameOf(p.Framework); name != "" {
		segments = append(segments, "Framework: "+name)
	}

	if name := nameOf(p.BuildSystem); name != "" {
		segments = append(segments, "Build: "+name)
	}

	if p.Structure.FileCount > 0 {
		segments = append(segments, fmt.Sprintf("Size: %.2f MB (%d files)", p.Structure.SizeMB, p.Structure.FileCount))
	}

	if n := len(p.EntryPoints.EntryPoints); n > 0 {
		segments = append(segments, fmt.Sprintf("Entry Points: %d", n))
	}

	if n := len(p.Api.Routes); n > 0 {
		segments = append(segments, fmt.Sprintf("API Endpoints: %d", n))
	}

	return strings.Join(segments, " | ")
}
