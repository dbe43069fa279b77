// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import "runtime"

// DefaultExcludePatterns are build output, dependency cache and editor directories skipped while walking a tree.
var DefaultExcludePatterns = []string{
	"**/.git",
	"**/node_modules",
	"**/target",
	"**/build",
	"**/.venv",
	"**/venv",
	"**/dist",
	"**/.next",
	"**/.nuxt",
	"**/__pycache__",
	"**/.pytest_cache",
	"**/.gradle",
	"**/.maven",
	"**/.m2",
	"**/bin",
	"**/obj",
	"**/.DS_Store",
	"**/.idea",
	"**/.vscode",
}

func newConfig(options ...DetectOption) detectConfig {
	c := detectConfig{
		defaultExcludePatterns: DefaultExcludePatterns,
		parallelism:            runtime.GOMAXPROCS(0),
	}

	for _, opt := range options {
		c = opt.apply(c)
	}

	if c.defaultExcludePatterns != nil {
		c.ExcludePatterns = append(append([]string{}, c.defaultExcludePatterns...), c.ExcludePatterns...)
	}

	if c.parallelism < 1 {
		c.parallelism = 1
	}

	if c.detectors == nil {
		c.detectors = DefaultDetectors()
	}

	return c
}

type DetectOption interface {
	apply(detectConfig) detectConfig
}

type detectConfig struct {
	// Exclude patterns for files and directories skipped while walking, in doublestar syntax.
	// By default, build and package cache directories like **/dist, **/bin, **/node_modules are excluded.
	// Set overrideDefaults in WithExcludePatterns(patterns, overrideDefaults) to choose whether to override defaults.
	ExcludePatterns []string

	// Internal usage fields
	defaultExcludePatterns []string
	parallelism            int
	detectors              []Detector
}

type excludePatternsOptions struct {
	patterns         []string
	overrideDefaults bool
}

func (o *excludePatternsOptions) apply(c detectConfig) detectConfig {
	if o.overrideDefaults {
		c.defaultExcludePatterns = nil
	}

	c.ExcludePatterns = append(c.ExcludePatterns, o.patterns...)
	return c
}

// WithExcludePatterns adds doublestar patterns for paths to skip. When overrideDefaults is set, the
// DefaultExcludePatterns are not applied.
func WithExcludePatterns(patterns []string, overrideDefaults bool) DetectOption {
	return &excludePatternsOptions{patterns, overrideDefaults}
}

type parallelismOption int

func (o parallelismOption) apply(c detectConfig) detectConfig {
	c.parallelism = int(o)
	return c
}

// WithParallelism bounds how many detectors run at the same time. A value of 1 runs detectors sequentially.
func WithParallelism(n int) DetectOption {
	return parallelismOption(n)
}

type detectorsOption []Detector

func (o detectorsOption) apply(c detectConfig) detectConfig {
	c.detectors = []Detector(o)
	return c
}

// WithDetectors replaces the detector set. The order given is the merge order used for primary selection.
func WithDetectors(detectors ...Detector) DetectOption {
	return detectorsOption(detectors)
}
