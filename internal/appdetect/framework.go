// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"strings"
)

// frameworkTextFiles are lock and settings files scanned as raw text for framework keywords.
var frameworkTextFiles = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"poetry.lock",
	"Pipfile.lock",
	"settings.gradle",
	"settings.gradle.kts",
}

// DefaultFrameworkSignatures lists application frameworks. Within each ecosystem, the more specific framework comes
// first so that it wins primary selection.
var DefaultFrameworkSignatures = []Signature{
	// Java
	{
		Name:       "Spring Boot",
		Category:   CategoryFramework,
		Keywords:   []string{"spring-boot", "spring-boot-starter", "org.springframework.boot"},
		Ecosystems: []Ecosystem{Maven},
		version:    springBootVersion,
	},
	{
		Name:       "Quarkus",
		Category:   CategoryFramework,
		Keywords:   []string{"quarkus-core", "io.quarkus"},
		Ecosystems: []Ecosystem{Maven},
	},
	{
		Name:       "Micronaut",
		Category:   CategoryFramework,
		Keywords:   []string{"micronaut-core", "io.micronaut"},
		Ecosystems: []Ecosystem{Maven},
	},
	{
		Name:       "Hibernate",
		Category:   CategoryFramework,
		Keywords:   []string{"hibernate-core", "hibernate-jpa"},
		Ecosystems: []Ecosystem{Maven},
	},
	{
		Name:       "JPA",
		Category:   CategoryFramework,
		Keywords:   []string{"spring-data-jpa", "spring-boot-starter-data-jpa", "javax.persistence", "jakarta.persistence"},
		Ecosystems: []Ecosystem{Maven},
	},
	// Python
	{
		Name:       "Django",
		Category:   CategoryFramework,
		Keywords:   []string{"django"},
		Markers:    []Marker{{Name: "manage.py"}},
		Ecosystems: []Ecosystem{PyPI},
		match:      packageNamed("django"),
	},
	{
		Name:       "Flask",
		Category:   CategoryFramework,
		Keywords:   []string{"flask"},
		Markers:    []Marker{{Name: "app.py", Ceiling: Medium}},
		Ecosystems: []Ecosystem{PyPI},
	},
	{
		Name:       "FastAPI",
		Category:   CategoryFramework,
		Keywords:   []string{"fastapi"},
		Ecosystems: []Ecosystem{PyPI},
	},
	{
		Name:       "SQLAlchemy",
		Category:   CategoryFramework,
		Keywords:   []string{"sqlalchemy"},
		Ecosystems: []Ecosystem{PyPI},
	},
	// Node.js
	{
		Name:       "NestJS",
		Category:   CategoryFramework,
		Keywords:   []string{"@nestjs/core"},
		Ecosystems: []Ecosystem{Npm},
	},
	{
		Name:       "Next.js",
		Category:   CategoryFramework,
		Keywords:   []string{"next"},
		Markers:    []Marker{{Name: "next.config.js"}, {Name: "next.config.mjs"}, {Name: "next.config.ts"}},
		Ecosystems: []Ecosystem{Npm},
		Scope:      ScanDependencies | ScanMarkers,
		match:      packageNamed("next"),
	},
	{
		Name:       "Express.js",
		Category:   CategoryFramework,
		Keywords:   []string{"express"},
		Ecosystems: []Ecosystem{Npm},
		match:      packageNamed("express"),
	},
	{
		Name:       "Fastify",
		Category:   CategoryFramework,
		Keywords:   []string{"fastify"},
		Ecosystems: []Ecosystem{Npm},
		match:      packageNamed("fastify"),
	},
	{
		Name:       "Angular",
		Category:   CategoryFramework,
		Keywords:   []string{"@angular/core"},
		Markers:    []Marker{{Name: "angular.json"}},
		Ecosystems: []Ecosystem{Npm},
	},
	{
		Name:       "Vue.js",
		Category:   CategoryFramework,
		Keywords:   []string{"vue"},
		Ecosystems: []Ecosystem{Npm},
		match:      packageNamed("vue"),
	},
	{
		Name:       "React",
		Category:   CategoryFramework,
		Keywords:   []string{"react"},
		Ecosystems: []Ecosystem{Npm},
		match:      packageNamed("react"),
	},
	{
		Name:       "Prisma",
		Category:   CategoryFramework,
		Keywords:   []string{"@prisma/client"},
		Markers:    []Marker{{Name: "schema.prisma"}},
		Ecosystems: []Ecosystem{Npm},
	},
	{
		Name:       "TypeORM",
		Category:   CategoryFramework,
		Keywords:   []string{"typeorm"},
		Ecosystems: []Ecosystem{Npm},
	},
}

// packageNamed matches a dependency by exact package name, so that "react" does not match "react-dom".
func packageNamed(name string) func(dependency) bool {
	return func(dep dependency) bool {
		return strings.EqualFold(dep.Name, name)
	}
}

func springBootVersion(m *manifests) string {
	return m.springBootVersion
}

// FrameworkResult lists the frameworks found in the tree.
type FrameworkResult struct {
	detections []Detection
}

func (r *FrameworkResult) Detections() []Detection {
	return r.detections
}

func (r *FrameworkResult) merge(p *Profile) {}

type FrameworkDetector struct {
	signatures []Signature
	scorer     Scorer
}

func NewFrameworkDetector(signatures []Signature) *FrameworkDetector {
	return &FrameworkDetector{signatures: signatures}
}

func (d *FrameworkDetector) Name() string {
	return "framework"
}

func (d *FrameworkDetector) Detect(ctx context.Context, src EvidenceSource) (Result, error) {
	in, err := newScanInput(ctx, src, frameworkTextFiles)
	return &FrameworkResult{detections: in.scanAll(d.scorer, d.signatures)}, err
}
