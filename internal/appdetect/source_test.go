// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {
	src := memSource(t, map[string]string{
		"pom.xml":                        "<project/>",
		"module/pom.xml":                 "<project/>",
		"src/main/java/App.java":         "class App {}",
		"src/main/java/Util.java":        "class Util {}",
		"web/app.ts":                     "export {}",
		"node_modules/left-pad/index.js": "module.exports = {}",
		"target/classes/App.class":       "binary",
		"Makefile":                       "all:",
	})

	p, ok := src.FindFile("pom.xml")
	require.True(t, ok)
	require.Equal(t, "pom.xml", p)

	_, ok = src.FindFile("index.js")
	require.False(t, ok, "node_modules is excluded")

	require.ElementsMatch(t, []string{"src/main/java/App.java", "src/main/java/Util.java"}, src.FindAllByExtension("java"))
	require.Equal(t, []string{"java", "ts", "xml"}, src.AllExtensions())

	dir, ok := src.FindDir("java")
	require.True(t, ok)
	require.Equal(t, "src/main/java", dir)
	require.True(t, src.IsDir("src/main"))
	require.False(t, src.IsDir("node_modules"))

	content, err := src.ReadText("src/main/java/App.java")
	require.NoError(t, err)
	require.Equal(t, "class App {}", content)

	again, err := src.ReadText("src/main/java/App.java")
	require.NoError(t, err)
	require.Equal(t, content, again)

	_, err = src.ReadText("missing.txt")
	require.ErrorIs(t, err, ErrIO)

	stats := src.Stats()
	require.Equal(t, 6, stats.FileCount)
	require.Equal(t, 5, stats.DirCount)
	require.Equal(t, int64(len("<project/>")*2+len("class App {}")+len("class Util {}")+len("export {}")+len("all:")),
		stats.SizeBytes)
}

func TestSourceExcludePatterns(t *testing.T) {
	files := map[string]string{
		"app.py":            "print('hi')",
		"generated/gen.py":  "x = 1",
		"dist/bundle.py":    "y = 2",
		"docs/readme.md":    "# docs",
		"docs/api/index.md": "# api",
	}

	tests := []struct {
		name     string
		options  []DetectOption
		wantPy   []string
		wantDocs bool
	}{
		{"Defaults", nil, []string{"app.py", "generated/gen.py"}, true},
		{
			"Extra",
			[]DetectOption{WithExcludePatterns([]string{"**/generated", "docs"}, false)},
			[]string{"app.py"},
			false,
		},
		{
			"OverrideDefaults",
			[]DetectOption{WithExcludePatterns([]string{"**/generated"}, true)},
			[]string{"app.py", "dist/bundle.py"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := newConfig(tt.options...)
			fsys := memSource(t, files).fsys

			src, err := NewSource(fsys, config.ExcludePatterns)
			require.NoError(t, err)
			require.ElementsMatch(t, tt.wantPy, src.FindAllByExtension("py"))

			_, hasDocs := src.FindFile("readme.md")
			require.Equal(t, tt.wantDocs, hasDocs)
		})
	}
}

func TestNewDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0600))

	src, err := NewDirSource(dir, DefaultExcludePatterns)
	require.NoError(t, err)
	require.Equal(t, 1, src.Stats().FileCount)

	_, err = NewDirSource(filepath.Join(dir, "package.json"), nil)
	require.True(t, errors.Is(err, ErrIO))

	src, err = NewDirSource(filepath.Join(dir, "missing"), nil)
	require.ErrorIs(t, err, ErrIO)
	require.NotNil(t, src)
	require.Empty(t, src.AllExtensions())
}
