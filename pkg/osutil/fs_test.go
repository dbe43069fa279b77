// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package osutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pom.xml")
	require.NoError(t, os.WriteFile(file, []byte("<project/>"), PermissionFile))

	require.True(t, DirExists(dir))
	require.False(t, DirExists(file))
	require.True(t, FileExists(file))
	require.False(t, FileExists(dir))
	require.False(t, FileExists(filepath.Join(dir, "missing")))

	_, err := os.Stat(filepath.Join(dir, "missing"))
	require.True(t, IsNotExist(fmt.Errorf("loading: %w", err)))
}
