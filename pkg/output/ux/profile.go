// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package ux renders analysis results for a terminal.
package ux

import (
	"fmt"
	"strings"

	"github.com/explainit/explainit/internal/appdetect"
	"github.com/explainit/explainit/pkg/output"
)

// ProfileReport renders a Profile as text.
type ProfileReport struct {
	Profile *appdetect.Profile
	// Verbose adds the reason and evidence of every detection.
	Verbose bool
}

func (r *ProfileReport) ToString(currentIndentation string) string {
	p := r.Profile
	var sb strings.Builder
	line := func(format string, a ...any) {
		sb.WriteString(currentIndentation)
		fmt.Fprintf(&sb, format, a...)
		sb.WriteString("\n")
	}

	line("%s", output.WithBold("%s", p.ProjectName))
	line("%s", output.WithGrayFormat("%s", p.Summary))
	line("")

	line("  %-11s %s", "Language:", primary(p.Language, p.LanguageVersion))
	line("  %-11s %s", "Framework:", primary(p.Framework, ""))
	line("  %-11s %s", "Build:", build(p))
	line("  %-11s %s", "Database:", primary(p.Database, ""))
	line("  %-11s %s", "ORM:", primary(p.ORM, ""))
	line("  %-11s %s, %d files, %.2f MB", "Structure:", p.Structure.ProjectType, p.Structure.FileCount,
		p.Structure.SizeMB)

	if len(p.Detections) > 0 {
		line("")
		line("  Detections:")
		for _, d := range p.Detections {
			line("    %s %-15s %s", confidence(d.Confidence), d.Category, withVersion(d.Name, d.Version))
			if r.Verbose {
				line("      %s", output.WithGrayFormat("%s", d.Reason))
				for _, e := range d.Evidence {
					line("      %s", output.WithGrayFormat("%s %s: %s", e.Kind, e.Location, e.Literal))
				}
			}
		}
	}

	if len(p.Api.Routes) > 0 {
		line("")
		line("  API: %d endpoints in %d controllers (%s)", p.Api.EndpointCount, p.Api.ControllerCount, p.Api.Maturity)
		for _, route := range p.Api.Routes {
			line("    %-7s %s %s", route.Method, output.WithHighLightFormat("%s", route.Path),
				output.WithGrayFormat("%s", route.HandlerName))
		}
	}

	if len(p.EntryPoints.EntryPoints) > 0 {
		line("")
		line("  Entry points:")
		for _, e := range p.EntryPoints.EntryPoints {
			line("    %-24s %s#%s", e.Kind, e.QualifiedName, e.MemberName)
		}
	}

	if p.Config.TotalConfigFiles > 0 {
		line("")
		line("  Config files: %d (%s complexity)", p.Config.TotalConfigFiles, p.Config.Complexity)
		for _, bucket := range [][]appdetect.ConfigFile{
			p.Config.Runtime, p.Config.Security, p.Config.Build, p.Config.Infrastructure,
		} {
			for _, f := range bucket {
				line("    %s %s", f.File, output.WithGrayFormat("%s", f.Type))
			}
		}
	}

	if len(p.Diagnostics) > 0 {
		line("")
		line("  %s", output.WithWarningFormat("Diagnostics:"))
		for _, d := range p.Diagnostics {
			line("    %s", d)
		}
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func primary(d *appdetect.Detection, version string) string {
	if d == nil {
		return output.WithGrayFormat("none detected")
	}

	if d.Version != "" {
		version = d.Version
	}

	if version == "Unknown" {
		version = ""
	}

	return fmt.Sprintf("%s %s", withVersion(d.Name, version), confidence(d.Confidence))
}

func build(p *appdetect.Profile) string {
	if p.BuildSystem == nil || p.BuildSystem.IsPlaceholder() {
		return output.WithGrayFormat("none detected")
	}

	result := fmt.Sprintf("%s, %d dependencies", p.BuildSystem.Name, p.Build.DependencyCount)
	if p.Build.MultiModule {
		result += fmt.Sprintf(", %d modules", p.Build.ModuleCount)
	}

	return result
}

func withVersion(name string, version string) string {
	if version == "" {
		return name
	}

	return name + " " + version
}

func confidence(c appdetect.Confidence) string {
	label := fmt.Sprintf("(%s)", c)
	switch c {
	case appdetect.High:
		return output.WithSuccessFormat("%-8s", label)
	case appdetect.Medium:
		return output.WithWarningFormat("%-8s", label)
	default:
		return output.WithGrayFormat("%-8s", label)
	}
}

var _ output.TextItem = (*ProfileReport)(nil)
