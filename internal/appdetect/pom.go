// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
)

// pom represents the top-level structure of a Maven POM file.
type pom struct {
	XmlName              xml.Name             `xml:"project"`
	Parent               parent               `xml:"parent"`
	GroupId              string               `xml:"groupId"`
	ArtifactId           string               `xml:"artifactId"`
	Version              string               `xml:"version"`
	Modules              []string             `xml:"modules>module"`
	Properties           Properties           `xml:"properties"`
	Dependencies         []pomDependency      `xml:"dependencies>dependency"`
	DependencyManagement dependencyManagement `xml:"dependencyManagement"`
	Build                build                `xml:"build"`
	pomFilePath          string
	propertyMap          map[string]string
}

// Parent represents the parent POM if this project is a module.
type parent struct {
	GroupId      string `xml:"groupId"`
	ArtifactId   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

type Properties struct {
	Entries []Property `xml:",any"` // Capture all elements inside <properties>
}

type Property struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type pomDependency struct {
	GroupId    string `xml:"groupId"`
	ArtifactId string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope,omitempty"`
}

// DependencyManagement includes a list of dependencies that are managed.
type dependencyManagement struct {
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type build struct {
	Plugins []plugin `xml:"plugins>plugin"`
}

type plugin struct {
	GroupId    string `xml:"groupId"`
	ArtifactId string `xml:"artifactId"`
	Version    string `xml:"version"`
}

func unmarshalPom(pomFilePath string, content string) (pom, error) {
	var result pom
	if err := xml.Unmarshal([]byte(content), &result); err != nil {
		return pom{}, fmt.Errorf("%w: %s: %w", ErrMalformedManifest, pomFilePath, err)
	}

	result.pomFilePath = pomFilePath
	createPropertyMap(&result)
	replacePropertyPlaceholders(&result)
	return result, nil
}

func createPropertyMap(pom *pom) {
	pom.propertyMap = map[string]string{}
	for _, entry := range pom.Properties.Entries {
		pom.propertyMap[entry.XMLName.Local] = strings.TrimSpace(entry.Value)
	}

	addIfKeyIsNew(pom, "project.groupId", pom.GroupId)
	addIfKeyIsNew(pom, "project.artifactId", pom.ArtifactId)
	addIfKeyIsNew(pom, "project.version", pom.Version)
	addIfKeyIsNew(pom, "project.parent.version", pom.Parent.Version)
}

func addIfKeyIsNew(pom *pom, key string, value string) {
	if _, ok := pom.propertyMap[key]; ok || value == "" {
		return
	}

	pom.propertyMap[key] = strings.TrimSpace(value)
}

func replacePropertyPlaceholders(pom *pom) {
	for i, dep := range pom.Dependencies {
		pom.Dependencies[i].GroupId = resolvePlaceholder(pom, dep.GroupId)
		pom.Dependencies[i].Version = resolvePlaceholder(pom, dep.Version)
	}

	for i, dep := range pom.DependencyManagement.Dependencies {
		pom.DependencyManagement.Dependencies[i].Version = resolvePlaceholder(pom, dep.Version)
	}

	for i, p := range pom.Build.Plugins {
		pom.Build.Plugins[i].Version = resolvePlaceholder(pom, p.Version)
	}
}

// resolvePlaceholder replaces a ${name} value with the matching property. Unresolved placeholders resolve to "".
func resolvePlaceholder(pom *pom, value string) string {
	value = strings.TrimSpace(value)
	if !isVariable(value) {
		return value
	}

	name := getVariableName(value)
	resolved, ok := pom.propertyMap[name]
	if !ok || isVariable(resolved) {
		slog.DebugContext(context.TODO(), "Unresolved pom property.", "pomFilePath", pom.pomFilePath, "value", value)
		return ""
	}

	return resolved
}

func isVariable(value string) bool {
	return strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}")
}

func getVariableName(value string) string {
	return strings.TrimSuffix(strings.TrimPrefix(value, "${"), "}")
}

// javaVersion returns the Java release declared in the pom properties.
func (p pom) javaVersion() string {
	for _, key := range []string{"java.version", "maven.compiler.source", "maven.compiler.release"} {
		if v := p.propertyMap[key]; v != "" && !isVariable(v) {
			return v
		}
	}

	return ""
}

// springBootVersion returns the Spring Boot version anchored by the parent, an imported BOM, or the Maven plugin.
func (p pom) springBootVersion() string {
	if p.Parent.ArtifactId == "spring-boot-starter-parent" {
		return strings.TrimSpace(p.Parent.Version)
	}

	for _, dep := range p.DependencyManagement.Dependencies {
		if dep.GroupId == "org.springframework.boot" && dep.ArtifactId == "spring-boot-dependencies" {
			return dep.Version
		}
	}

	for _, plugin := range p.Build.Plugins {
		if plugin.ArtifactId == "spring-boot-maven-plugin" && plugin.Version != "" {
			return plugin.Version
		}
	}

	return ""
}
