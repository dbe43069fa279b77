// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorWithSuggestion(t *testing.T) {
	baseErr := errors.New("/tmp/missing is not a directory")
	suggestion := "Pass the root directory of a project, or use --zip to analyze an archive."

	errWithSuggestion := &ErrorWithSuggestion{
		Err:        baseErr,
		Suggestion: suggestion,
	}

	require.Equal(t, "/tmp/missing is not a directory", errWithSuggestion.Error())
	require.Equal(t, baseErr, errWithSuggestion.Unwrap())

	var target *ErrorWithSuggestion
	require.True(t, errors.As(fmt.Errorf("analyze: %w", errWithSuggestion), &target))
	require.Equal(t, suggestion, target.Suggestion)
}
