// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestGetCommandFormatter(t *testing.T) {
	newCmd := func() *cobra.Command {
		return AddOutputParam(&cobra.Command{Use: "show"}, []Format{JsonFormat, NoneFormat}, NoneFormat)
	}

	t.Run("Default", func(t *testing.T) {
		formatter, err := GetCommandFormatter(newCmd())
		require.NoError(t, err)
		require.Equal(t, NoneFormat, formatter.Kind())
	})

	t.Run("Selected", func(t *testing.T) {
		cmd := newCmd()
		require.NoError(t, cmd.Flags().Set("output", " JSON "))

		formatter, err := GetCommandFormatter(cmd)
		require.NoError(t, err)
		require.Equal(t, JsonFormat, formatter.Kind())
	})

	t.Run("Unsupported", func(t *testing.T) {
		cmd := newCmd()
		require.NoError(t, cmd.Flags().Set("output", "text"))

		_, err := GetCommandFormatter(cmd)
		require.ErrorContains(t, err, "unsupported format 'text'")
	})

	t.Run("NoFlag", func(t *testing.T) {
		_, err := GetCommandFormatter(&cobra.Command{Use: "plain"})
		require.Error(t, err)
	})
}
