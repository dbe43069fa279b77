// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"testing"

	"github.com/explainit/explainit/internal"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestVersion(t *testing.T) {
	t.Run("Plain", func(t *testing.T) {
		out, err := execute(t, "version")
		require.NoError(t, err)
		require.Equal(t, "explainit version "+internal.Version+"\n", out)
	})

	t.Run("Json", func(t *testing.T) {
		out, err := execute(t, "version", "--output", "json")
		require.NoError(t, err)
		require.Equal(t, internal.GetVersionNumber(), gjson.Get(out, "version").String())
		require.Equal(t, internal.GetCommit(), gjson.Get(out, "commit").String())
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		_, err := execute(t, "version", "--output", "text")
		require.ErrorContains(t, err, "unsupported format 'text'")
	})
}
