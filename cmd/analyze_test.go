// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/pkg/rzip"
	"github.com/otiai10/copy"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var petclinicDir = filepath.Join("..", "internal", "appdetect", "testdata", "spring-petclinic")

func TestAnalyzeJson(t *testing.T) {
	out, err := execute(t, "analyze", petclinicDir, "--output", "json")
	require.NoError(t, err)
	require.True(t, gjson.Valid(out))

	require.Equal(t, "spring-petclinic", gjson.Get(out, "projectName").String())
	require.Equal(t, "Java", gjson.Get(out, "language.name").String())
	require.Equal(t, "Spring Boot", gjson.Get(out, "framework.name").String())
	require.Equal(t, "Maven", gjson.Get(out, "buildSystem.name").String())
	require.EqualValues(t, 8, gjson.Get(out, "structure.fileCount").Int())
	require.Equal(t, "src/test/java", gjson.Get(out, "structure.testDirectory").String())
}

func TestAnalyzeText(t *testing.T) {
	out, err := execute(t, "analyze", petclinicDir)
	require.NoError(t, err)
	require.Contains(t, out, "spring-petclinic")
	require.Contains(t, out, "Language:")
	require.Contains(t, out, "Spring Boot")
}

func TestAnalyzeNone(t *testing.T) {
	out, err := execute(t, "analyze", petclinicDir, "-o", "none")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestAnalyzeExclude(t *testing.T) {
	out, err := execute(t, "analyze", petclinicDir, "-o", "json", "--exclude", "**/test", "--parallel", "1")
	require.NoError(t, err)
	require.EqualValues(t, 7, gjson.Get(out, "structure.fileCount").Int())
	require.Equal(t, "Unknown", gjson.Get(out, "structure.testDirectory").String())
}

func TestAnalyzeNoDefaultExcludes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "petclinic")
	require.NoError(t, copy.Copy(petclinicDir, dir))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target", "classes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "target", "classes", "Generated.java"), []byte("class G {}"), 0600))

	out, err := execute(t, "analyze", dir, "-o", "json")
	require.NoError(t, err)
	require.EqualValues(t, 8, gjson.Get(out, "structure.fileCount").Int())

	out, err = execute(t, "analyze", dir, "-o", "json", "--no-default-excludes")
	require.NoError(t, err)
	require.EqualValues(t, 9, gjson.Get(out, "structure.fileCount").Int())
}

func TestAnalyzeOutputFromConfig(t *testing.T) {
	t.Setenv("EXPLAINIT_CONFIG_DIR", t.TempDir())

	_, err := executeWithConfig(t, "config", "set", "analyze.output", "json")
	require.NoError(t, err)

	out, err := executeWithConfig(t, "analyze", petclinicDir)
	require.NoError(t, err)
	require.True(t, gjson.Valid(out))
	require.Equal(t, "spring-petclinic", gjson.Get(out, "projectName").String())

	// The flag wins over the configuration.
	out, err = executeWithConfig(t, "analyze", petclinicDir, "-o", "none")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestAnalyzeZip(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "petclinic-src.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	require.NoError(t, rzip.CreateFromDirectory(petclinicDir, f))
	require.NoError(t, f.Close())

	out, err := execute(t, "analyze", "--zip", archive, "-o", "json")
	require.NoError(t, err)
	require.Equal(t, "petclinic-src", gjson.Get(out, "projectName").String())
	require.Equal(t, "Java", gjson.Get(out, "language.name").String())
	require.EqualValues(t, 8, gjson.Get(out, "structure.fileCount").Int())
}

func TestAnalyzeInvalidTarget(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	tests := []struct {
		name string
		args []string
	}{
		{"MissingDirectory", []string{"analyze", missing}},
		{"File", []string{"analyze", filepath.Join(petclinicDir, "pom.xml")}},
		{"ZipOfDirectory", []string{"analyze", "--zip", petclinicDir}},
		{"MissingArchive", []string{"analyze", "--zip", missing + ".zip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)

			var errWithSuggestion *internal.ErrorWithSuggestion
			require.True(t, errors.As(err, &errWithSuggestion))
			require.NotEmpty(t, errWithSuggestion.Suggestion)
		})
	}
}

func TestAnalyzeUnsupportedFormat(t *testing.T) {
	_, err := execute(t, "analyze", petclinicDir, "-o", "yaml")
	require.ErrorContains(t, err, "unsupported format yaml")
}

func TestAnalyzeTooManyArgs(t *testing.T) {
	_, err := execute(t, "analyze", petclinicDir, petclinicDir)
	require.Error(t, err)
}
