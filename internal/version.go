// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"regexp"

	"github.com/blang/semver/v4"
)

// Version is the version string of the binary, replaced at build time with
// -ldflags "-X github.com/explainit/explainit/internal.Version=1.2.3 (commit abc)".
//
// The default value marks a development build.
var Version = "0.0.0-dev.0 (commit 0000000000000000000000000000000000000000)"

var versionRegex = regexp.MustCompile(`^(\S+)\s+\(commit\s+([0-9a-f]+)\)$`)

// GetVersionNumber returns the semantic version part of Version, or "unknown" when Version cannot be parsed.
func GetVersionNumber() string {
	number := Version
	if match := versionRegex.FindStringSubmatch(Version); match != nil {
		number = match[1]
	}

	v, err := semver.Parse(number)
	if err != nil {
		return "unknown"
	}

	return v.String()
}

// GetCommit returns the commit part of Version, or "" when it is missing.
func GetCommit() string {
	if match := versionRegex.FindStringSubmatch(Version); match != nil {
		return match[2]
	}

	return ""
}

// IsDevVersion reports whether this is a development build.
func IsDevVersion() bool {
	v, err := semver.Parse(GetVersionNumber())
	if err != nil {
		return true
	}

	return v.Equals(semver.MustParse("0.0.0-dev.0"))
}

// VersionSpec is the machine readable form of Version.
type VersionSpec struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func GetVersionSpec() VersionSpec {
	return VersionSpec{
		Version: GetVersionNumber(),
		Commit:  GetCommit(),
	}
}
