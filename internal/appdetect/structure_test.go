// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructureDetector(t *testing.T) {
	tests := []struct {
		name      string
		project   string
		source    string
		resources string
		test      string
		classes   int
		kind      string
		files     int
		dirs      int
	}{
		{
			"SpringPetclinic", "spring-petclinic",
			"src/main/java", "src/main/resources", "src/test/java", 5, ProjectTypeJavaBackend, 8, 11,
		},
		{
			"ExpressApi", "express-api",
			"src", unknown, unknown, 0, ProjectTypeNodeBackend, 4, 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := detect(t, NewStructureDetector(), testDataSource(t, tt.project)).(*StructureResult).Info

			require.Equal(t, tt.source, info.SourceDirectory)
			require.Equal(t, tt.resources, info.ResourcesDirectory)
			require.Equal(t, tt.test, info.TestDirectory)
			require.Equal(t, tt.classes, info.JavaClassCount)
			require.Equal(t, tt.kind, info.ProjectType)
			require.Equal(t, tt.files, info.FileCount)
			require.Equal(t, tt.dirs, info.DirCount)
			require.Greater(t, info.SizeBytes, int64(0))
			require.Equal(t, 0.0, info.SizeMB)
		})
	}
}

func TestProjectType(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"GradleJava", map[string]string{"build.gradle": "", "src/App.java": ""}, ProjectTypeJavaBackend},
		{"PomWithoutJava", map[string]string{"pom.xml": ""}, ProjectTypeUnknown},
		{"TypeScript", map[string]string{"package.json": "{}", "src/index.ts": ""}, ProjectTypeNodeBackend},
		{"Python", map[string]string{"app.py": ""}, ProjectTypePythonBackend},
		{"Empty", map[string]string{}, ProjectTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, projectType(memSource(t, tt.files)))
		})
	}
}

func TestToMB(t *testing.T) {
	require.Equal(t, 0.0, toMB(0))
	require.Equal(t, 1.0, toMB(1024*1024))
	require.Equal(t, 2.5, toMB(5*512*1024))
	require.Equal(t, 0.01, toMB(10*1024))
}
