// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	for _, format := range SupportedFormats {
		formatter, err := NewFormatter(string(format))
		require.NoError(t, err)
		require.Equal(t, format, formatter.Kind())
	}

	_, err := NewFormatter("table")
	require.Error(t, err)
}

func TestJsonFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := &JsonFormatter{}
	require.NoError(t, formatter.Format(map[string]any{"status": "UP", "files": 3}, &buf, nil))
	require.Equal(t, "{\n  \"files\": 3,\n  \"status\": \"UP\"\n}\n", buf.String())
}

func TestJsonFormatterKeepsOperators(t *testing.T) {
	var buf bytes.Buffer
	formatter := &JsonFormatter{}
	require.NoError(t, formatter.Format(map[string]any{"languageVersion": ">=18 <21"}, &buf, nil))
	require.Equal(t, "{\n  \"languageVersion\": \">=18 <21\"\n}\n", buf.String())
}

type greeting struct {
	name string
}

func (g greeting) ToString(currentIndentation string) string {
	return currentIndentation + "hello " + g.name
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name string
		obj  interface{}
		want string
	}{
		{"TextItem", greeting{name: "world"}, "hello world\n"},
		{"String", "plain", "plain\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, (&TextFormatter{}).Format(tt.obj, &buf, nil))
			require.Equal(t, tt.want, buf.String())
		})
	}

	var buf bytes.Buffer
	require.Error(t, (&TextFormatter{}).Format(42, &buf, nil))
}

func TestIsTerminalOverride(t *testing.T) {
	t.Setenv("EXPLAINIT_FORCE_TTY", "true")
	require.True(t, IsTerminal(0))

	t.Setenv("EXPLAINIT_FORCE_TTY", "false")
	require.False(t, IsTerminal(0))
}
