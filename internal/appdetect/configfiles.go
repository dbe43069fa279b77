// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"fmt"
)

type ConfigBucketKind string

const (
	BucketRuntime        ConfigBucketKind = "runtime"
	BucketSecurity       ConfigBucketKind = "security"
	BucketBuild          ConfigBucketKind = "build"
	BucketInfrastructure ConfigBucketKind = "infrastructure"
)

type ConfigComplexity string

const (
	ComplexityLow    ConfigComplexity = "LOW"
	ComplexityMedium ConfigComplexity = "MEDIUM"
	ComplexityHigh   ConfigComplexity = "HIGH"
)

// ConfigMarker is a well-known configuration file name.
type ConfigMarker struct {
	Name    string
	Type    string
	Purpose string
}

// ConfigBucket groups the markers of one kind of configuration.
type ConfigBucket struct {
	Kind    ConfigBucketKind
	Markers []ConfigMarker
}

// DefaultConfigBuckets are checked in order. A file found by an earlier bucket is not classified again.
var DefaultConfigBuckets = []ConfigBucket{
	{
		Kind: BucketRuntime,
		Markers: []ConfigMarker{
			{"application.properties", "Spring Boot Configuration", "Application settings and properties"},
			{"application.yml", "Spring Boot Configuration (YAML)", "Application settings in YAML format"},
			{"application.yaml", "Spring Boot Configuration (YAML)", "Application settings in YAML format"},
			{"bootstrap.properties", "Spring Cloud Bootstrap", "Settings loaded before the application context"},
			{"bootstrap.yml", "Spring Cloud Bootstrap (YAML)", "Settings loaded before the application context"},
			{".env", "Environment Variables", "Configuration from environment variables"},
			{"logback.xml", "Logback Configuration", "Logging appenders and levels"},
			{"log4j2.xml", "Log4j2 Configuration", "Logging appenders and levels"},
		},
	},
	{
		Kind: BucketSecurity,
		Markers: []ConfigMarker{
			{".env", "Environment Secrets", "Secrets supplied through environment variables"},
			{"keystore.jks", "Java KeyStore", "TLS certificates and private keys"},
			{"truststore.jks", "Java TrustStore", "Trusted certificate authorities"},
			{"SecurityConfig.java", "Security Configuration", "Authentication and authorization rules"},
			{"CorsConfig.java", "CORS Configuration", "Cross-origin request policy"},
		},
	},
	{
		Kind: BucketBuild,
		Markers: []ConfigMarker{
			{"pom.xml", "Maven Build Configuration", "Dependency management and build automation"},
			{"build.gradle", "Gradle Build Configuration", "Dependency management and build automation"},
			{"build.gradle.kts", "Gradle Build Configuration (Kotlin)", "Dependency management and build automation"},
			{"settings.gradle", "Gradle Settings", "Multi-project Gradle configuration"},
			{"package.json", "Node.js Configuration", "JavaScript/Node.js dependencies"},
			{"tsconfig.json", "TypeScript Configuration", "TypeScript compiler options"},
			{"requirements.txt", "Python Dependencies", "Python package requirements"},
			{"pyproject.toml", "Python Project Configuration", "Python build system and dependencies"},
			{"setup.py", "Python Setup Script", "Python package metadata and dependencies"},
			{"Pipfile", "Pipenv Configuration", "Python dependencies managed by Pipenv"},
			{"Cargo.toml", "Cargo Manifest", "Rust crate dependencies"},
			{"Gemfile", "Bundler Configuration", "Ruby gem dependencies"},
			{".gitignore", "Git Configuration", "Specifies files to ignore in version control"},
			{"Makefile", "Makefile", "Build automation targets"},
		},
	},
	{
		Kind: BucketInfrastructure,
		Markers: []ConfigMarker{
			{"Dockerfile", "Docker Image Configuration", "Container image definition"},
			{"docker-compose.yml", "Docker Compose", "Multi-container application definition"},
			{"docker-compose.yaml", "Docker Compose", "Multi-container application definition"},
			{".dockerignore", "Docker Ignore", "Files excluded from the Docker build context"},
			{"Jenkinsfile", "Jenkins Pipeline", "Continuous integration pipeline"},
			{".gitlab-ci.yml", "GitLab CI", "Continuous integration pipeline"},
			{"azure-pipelines.yml", "Azure Pipelines", "Continuous integration pipeline"},
			{"Procfile", "Procfile", "Process types for platform deployment"},
			{"skaffold.yaml", "Skaffold Configuration", "Kubernetes development workflow"},
		},
	},
}

// ConfigFile is a discovered configuration file.
type ConfigFile struct {
	File    string `json:"file"`
	Type    string `json:"type"`
	Purpose string `json:"purpose"`
}

// ConfigInfo lists the configuration files of the tree by bucket.
type ConfigInfo struct {
	TotalConfigFiles int              `json:"totalConfigFiles"`
	Complexity       ConfigComplexity `json:"configComplexity"`
	Runtime          []ConfigFile     `json:"runtimeConfigs"`
	Security         []ConfigFile     `json:"securityConfigs"`
	Build            []ConfigFile     `json:"buildConfigs"`
	Infrastructure   []ConfigFile     `json:"infrastructureConfigs"`
}

func newConfigInfo() ConfigInfo {
	return ConfigInfo{
		Complexity:     ComplexityLow,
		Runtime:        []ConfigFile{},
		Security:       []ConfigFile{},
		Build:          []ConfigFile{},
		Infrastructure: []ConfigFile{},
	}
}

func (c *ConfigInfo) bucket(kind ConfigBucketKind) *[]ConfigFile {
	switch kind {
	case BucketRuntime:
		return &c.Runtime
	case BucketSecurity:
		return &c.Security
	case BucketBuild:
		return &c.Build
	case BucketInfrastructure:
		return &c.Infrastructure
	default:
		panic(fmt.Sprintf("unknown config bucket %q", kind))
	}
}

// ClassifyComplexity rates the configuration surface from the total and infrastructure file counts.
func ClassifyComplexity(total int, infrastructure int) ConfigComplexity {
	switch {
	case total >= 8 || infrastructure > 2:
		return ComplexityHigh
	case total >= 4:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

type ConfigResult struct {
	Info ConfigInfo
}

func (r *ConfigResult) Detections() []Detection {
	return nil
}

func (r *ConfigResult) merge(p *Profile) {
	p.Config = r.Info
}

type ConfigFileDetector struct {
	buckets []ConfigBucket
}

func NewConfigFileDetector(buckets []ConfigBucket) *ConfigFileDetector {
	return &ConfigFileDetector{buckets: buckets}
}

func (d *ConfigFileDetector) Name() string {
	return "config-files"
}

func (d *ConfigFileDetector) Detect(ctx context.Context, src EvidenceSource) (Result, error) {
	info := newConfigInfo()
	claimed := map[string]bool{}

	for _, bucket := range d.buckets {
		files := info.bucket(bucket.Kind)
		for _, marker := range bucket.Markers {
			p, has := src.FindFile(marker.Name)
			if !has || claimed[p] {
				continue
			}

			claimed[p] = true
			*files = append(*files, ConfigFile{File: p, Type: marker.Type, Purpose: marker.Purpose})
		}
	}

	info.TotalConfigFiles = len(claimed)
	info.Complexity = ClassifyComplexity(info.TotalConfigFiles, len(info.Infrastructure))

	return &ConfigResult{Info: info}, ctx.Err()
}
