// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
)

// dependency is a structured entry read from a build manifest.
type dependency struct {
	Ecosystem Ecosystem
	Group     string
	Name      string
	Version   string
	Location  string
}

// Ecosystem is the package registry a dependency entry belongs to.
type Ecosystem string

const (
	Maven Ecosystem = "maven"
	Npm   Ecosystem = "npm"
	PyPI  Ecosystem = "pypi"
)

// Coordinate renders the dependency the way its ecosystem writes it.
func (d dependency) Coordinate() string {
	if d.Group != "" {
		if d.Version != "" {
			return d.Group + ":" + d.Name + ":" + d.Version
		}
		return d.Group + ":" + d.Name
	}

	if d.Version != "" {
		return d.Name + "@" + d.Version
	}

	return d.Name
}

// manifests holds the parsed build manifests of a tree.
type manifests struct {
	pom     *pom
	pomPath string

	gradleContent     string
	gradlePath        string
	packageJson       string
	packageJsonPath   string
	pyproject         map[string]any
	pyprojectPath     string
	deps              []dependency
	springBootVersion string
}

var gradleDependencyRegex = regexp.MustCompile(
	`(?m)\b(implementation|api|compile|compileOnly|runtimeOnly|testImplementation|annotationProcessor|developmentOnly)` +
		`\s*\(?\s*['"]([^'"]+)['"]`)

var gradleSpringBootPluginRegex = regexp.MustCompile(
	`id\s*\(?\s*['"]org\.springframework\.boot['"]\s*\)?\s*version\s*['"]([^'"]+)['"]`)

// loadManifests parses every recognized manifest. A manifest that cannot be read or parsed is treated as absent and
// reported in the returned error.
func loadManifests(src EvidenceSource) (*manifests, error) {
	m := &manifests{}
	var errs error

	read := func(name string) (string, string, bool) {
		p, ok := src.FindFile(name)
		if !ok {
			return "", "", false
		}

		content, err := src.ReadText(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			return "", "", false
		}

		return p, content, true
	}

	if p, content, ok := read("pom.xml"); ok {
		parsed, err := unmarshalPom(p, content)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			m.pom = &parsed
			m.pomPath = p
			m.springBootVersion = parsed.springBootVersion()
			for _, dep := range parsed.Dependencies {
				if dep.GroupId == "" || dep.ArtifactId == "" {
					continue
				}

				m.deps = append(m.deps, dependency{
					Ecosystem: Maven,
					Group:     strings.TrimSpace(dep.GroupId),
					Name:      strings.TrimSpace(dep.ArtifactId),
					Version:   dep.Version,
					Location:  p,
				})
			}
		}
	}

	for _, name := range []string{"build.gradle", "build.gradle.kts"} {
		p, content, ok := read(name)
		if !ok {
			continue
		}

		if m.gradlePath == "" {
			m.gradlePath = p
			m.gradleContent = content
		}

		m.deps = append(m.deps, gradleDependencies(p, content)...)
		if match := gradleSpringBootPluginRegex.FindStringSubmatch(content); match != nil && m.springBootVersion == "" {
			m.springBootVersion = match[1]
		}
	}

	if p, content, ok := read("package.json"); ok {
		deps, err := packageJsonDependencies(p, content)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			m.packageJson = content
			m.packageJsonPath = p
			m.deps = append(m.deps, deps...)
		}
	}

	if p, content, ok := read("requirements.txt"); ok {
		m.deps = append(m.deps, requirementsDependencies(p, content)...)
	}

	if p, content, ok := read("pyproject.toml"); ok {
		var doc map[string]any
		if err := toml.Unmarshal([]byte(content), &doc); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %w", ErrMalformedManifest, p, err))
		} else {
			m.pyproject = doc
			m.pyprojectPath = p
			m.deps = append(m.deps, pyprojectDependencies(p, doc)...)
		}
	}

	if p, content, ok := read("Pipfile"); ok {
		var doc map[string]any
		if err := toml.Unmarshal([]byte(content), &doc); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %w", ErrMalformedManifest, p, err))
		} else {
			for _, section := range []string{"packages", "dev-packages"} {
				m.deps = append(m.deps, tableDependencies(p, doc[section])...)
			}
		}
	}

	if errs != nil {
		slog.DebugContext(context.TODO(), "Some manifests were skipped.", "error", errs)
	}

	return m, errs
}

func gradleDependencies(p string, content string) []dependency {
	var deps []dependency
	for _, match := range gradleDependencyRegex.FindAllStringSubmatch(content, -1) {
		parts := strings.Split(match[2], ":")
		dep := dependency{Ecosystem: Maven, Location: p}
		switch len(parts) {
		case 1:
			dep.Name = parts[0]
		case 2:
			dep.Group, dep.Name = parts[0], parts[1]
		default:
			dep.Group, dep.Name, dep.Version = parts[0], parts[1], parts[2]
		}

		deps = append(deps, dep)
	}

	return deps
}

func packageJsonDependencies(p string, content string) ([]dependency, error) {
	if !gjson.Valid(content) {
		return nil, fmt.Errorf("%w: %s: invalid JSON", ErrMalformedManifest, p)
	}

	var deps []dependency
	for _, section := range []string{"dependencies", "devDependencies", "peerDependencies"} {
		gjson.Get(content, section).ForEach(func(key, value gjson.Result) bool {
			deps = append(deps, dependency{
				Ecosystem: Npm,
				Name:      key.String(),
				Version:   normalizeVersion(value.String()),
				Location:  p,
			})
			return true
		})
	}

	return deps, nil
}

var requirementNameEnd = regexp.MustCompile(`[\s=<>!~\[;@]`)

func requirementsDependencies(p string, content string) []dependency {
	var deps []dependency
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		name, version := splitRequirement(line)
		if name == "" {
			continue
		}

		deps = append(deps, dependency{Ecosystem: PyPI, Name: name, Version: version, Location: p})
	}

	return deps
}

// splitRequirement splits a PEP 508 requirement into a lower-cased name and a pinned version, if any.
func splitRequirement(line string) (string, string) {
	name := line
	if loc := requirementNameEnd.FindStringIndex(line); loc != nil {
		name = line[:loc[0]]
	}

	version := ""
	if _, pinned, ok := strings.Cut(line, "=="); ok {
		version = strings.TrimSpace(strings.SplitN(pinned, ";", 2)[0])
	}

	// pip is case insensitive: PEP 426
	return strings.ToLower(strings.TrimSpace(name)), version
}

func pyprojectDependencies(p string, doc map[string]any) []dependency {
	var deps []dependency
	if project, ok := doc["project"].(map[string]any); ok {
		if list, ok := project["dependencies"].([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					name, version := splitRequirement(s)
					deps = append(deps, dependency{Ecosystem: PyPI, Name: name, Version: version, Location: p})
				}
			}
		}
	}

	if tool, ok := doc["tool"].(map[string]any); ok {
		if poetry, ok := tool["poetry"].(map[string]any); ok {
			for _, dep := range tableDependencies(p, poetry["dependencies"]) {
				if dep.Name != "python" {
					deps = append(deps, dep)
				}
			}
		}
	}

	return deps
}

// tableDependencies reads a TOML table of name = "version" or name = { version = "..." } entries.
func tableDependencies(p string, table any) []dependency {
	entries, ok := table.(map[string]any)
	if !ok {
		return nil
	}

	deps := make([]dependency, 0, len(entries))
	for _, name := range sortedKeys(entries) {
		version := ""
		switch v := entries[name].(type) {
		case string:
			version = v
		case map[string]any:
			version, _ = v["version"].(string)
		}

		deps = append(deps, dependency{
			Ecosystem: PyPI,
			Name:      strings.ToLower(name),
			Version:   normalizeVersion(version),
			Location:  p,
		})
	}

	return deps
}

// pythonVersion returns the interpreter constraint declared in pyproject.toml.
func (m *manifests) pythonVersion() string {
	if m.pyproject == nil {
		return ""
	}

	if tool, ok := m.pyproject["tool"].(map[string]any); ok {
		if poetry, ok := tool["poetry"].(map[string]any); ok {
			if deps, ok := poetry["dependencies"].(map[string]any); ok {
				if v, ok := deps["python"].(string); ok {
					return v
				}
			}
		}
	}

	if project, ok := m.pyproject["project"].(map[string]any); ok {
		if v, ok := project["requires-python"].(string); ok {
			return v
		}
	}

	return ""
}

// normalizeVersion strips range operators from a declared version. Values that are not versions, such as "*" or
// "workspace:*", are returned trimmed.
func normalizeVersion(raw string) string {
	raw = strings.TrimSpace(raw)
	stripped := strings.TrimLeft(raw, "^~>=<! ")
	if stripped == "" {
		return ""
	}

	if v, err := semver.NewVersion(stripped); err == nil {
		return v.Original()
	}

	if raw == "*" {
		return ""
	}

	return raw
}

// sharedSource loads manifests once for every detector of an analysis run.
type sharedSource struct {
	EvidenceSource

	once sync.Once
	m    *manifests
	err  error
}

func newSharedSource(src EvidenceSource) *sharedSource {
	return &sharedSource{EvidenceSource: src}
}

// load parses the manifests on first use and returns the errors of that first load.
func (s *sharedSource) load() (*manifests, error) {
	s.once.Do(func() {
		s.m, s.err = loadManifests(s.EvidenceSource)
	})

	return s.m, s.err
}

// manifestsOf returns the manifests of src. Manifest errors of a shared source are reported once by the Analyzer, not
// by every detector.
func manifestsOf(src EvidenceSource) (*manifests, error) {
	if shared, ok := src.(*sharedSource); ok {
		m, _ := shared.load()
		return m, nil
	}

	return loadManifests(src)
}
