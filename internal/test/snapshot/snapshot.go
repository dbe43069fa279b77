// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package snapshot configures snapshot testing.
//
// Snapshots are stored under the testdata directory of the package under test. Run tests with UPDATE_SNAPSHOTS=true
// to rewrite them after an intended change.
package snapshot

import (
	"github.com/bradleyjkemp/cupaloy/v2"
)

// NewDefaultConfig returns the snapshot configuration shared by all tests. A missing snapshot is written on first
// run instead of failing the test.
func NewDefaultConfig() *cupaloy.Config {
	return cupaloy.NewDefaultConfig().WithOptions(
		cupaloy.SnapshotSubdirectory("testdata"),
		cupaloy.SnapshotFileExtension(".snap"),
		cupaloy.FailOnUpdate(false),
	)
}
