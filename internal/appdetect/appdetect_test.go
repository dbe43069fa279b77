// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"testing"

	"github.com/psanford/memfs"
	"github.com/stretchr/testify/require"
)

//go:embed all:testdata
var testDataFs embed.FS

// memSource indexes an in-memory tree built from path to content pairs.
func memSource(t *testing.T, files map[string]string) *Source {
	t.Helper()

	fsys := memfs.New()
	for p, content := range files {
		if dir := path.Dir(p); dir != "." {
			require.NoError(t, fsys.MkdirAll(dir, 0755))
		}
		require.NoError(t, fsys.WriteFile(p, []byte(content), 0644))
	}

	src, err := NewSource(fsys, DefaultExcludePatterns)
	require.NoError(t, err)
	return src
}

// testDataSource indexes one of the fixture projects under testdata.
func testDataSource(t *testing.T, project string) *Source {
	t.Helper()

	sub, err := fs.Sub(testDataFs, path.Join("testdata", project))
	require.NoError(t, err)

	src, err := NewSource(sub, DefaultExcludePatterns)
	require.NoError(t, err)
	return src
}

func readTestData(t *testing.T, name string) string {
	t.Helper()

	content, err := fs.ReadFile(testDataFs, path.Join("testdata", name))
	require.NoError(t, err)
	return string(content)
}

func detect(t *testing.T, detector Detector, src EvidenceSource) Result {
	t.Helper()

	result, err := detector.Detect(context.Background(), src)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func names(detections []Detection) []string {
	result := make([]string, 0, len(detections))
	for _, d := range detections {
		result = append(result, d.Name)
	}

	return result
}

func find(t *testing.T, detections []Detection, name string, category Category) Detection {
	t.Helper()

	for _, d := range detections {
		if d.Name == name && d.Category == category {
			return d
		}
	}

	require.Failf(t, "detection not found", "%s (%s) not in %v", name, category, names(detections))
	return Detection{}
}
