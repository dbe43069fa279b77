// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetVersionNumber(t *testing.T) {
	require.Equal(t, "0.0.0-dev.0", GetVersionNumber())
	require.True(t, IsDevVersion())

	orig := Version
	defer func() { Version = orig }()

	Version = "1.4.2 (commit 1a2b3c)"
	require.Equal(t, "1.4.2", GetVersionNumber())
	require.Equal(t, "1a2b3c", GetCommit())
	require.False(t, IsDevVersion())

	Version = "1.4.2"
	require.Equal(t, "1.4.2", GetVersionNumber())
	require.Equal(t, "", GetCommit())

	Version = "invalid"
	require.Equal(t, "unknown", GetVersionNumber())

	Version = ""
	require.Equal(t, "unknown", GetVersionNumber())
}

func TestGetVersionSpec(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "2.0.1 (commit abc123)"
	require.Equal(t, VersionSpec{Version: "2.0.1", Commit: "abc123"}, GetVersionSpec())
}
