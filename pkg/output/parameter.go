// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

const (
	outputFlagName               = "output"
	supportedFormatterAnnotation = "github.com/explainit/explainit/pkg/output/supportedOutputFormatters"
)

// AddOutputParam adds the --output flag to cmd, restricted to supportedFormats.
func AddOutputParam(cmd *cobra.Command, supportedFormats []Format, defaultFormat Format) *cobra.Command {
	formatNames := make([]string, len(supportedFormats))
	for i, f := range supportedFormats {
		formatNames[i] = string(f)
	}

	description := fmt.Sprintf("Output format (supported formats are %s)", strings.Join(formatNames, ", "))
	cmd.Flags().StringP(outputFlagName, "o", string(defaultFormat), description)

	// The flag was added on the previous line, so setting the annotation cannot fail.
	_ = cmd.Flags().SetAnnotation(outputFlagName, supportedFormatterAnnotation, formatNames)

	return cmd
}

// GetCommandFormatter returns the formatter selected by the --output flag of cmd.
func GetCommandFormatter(cmd *cobra.Command) (Formatter, error) {
	outputVal, err := cmd.Flags().GetString(outputFlagName)
	if err != nil {
		return nil, err
	}

	desiredFormatter := strings.ToLower(strings.TrimSpace(outputVal))
	f := cmd.Flags().Lookup(outputFlagName)
	supportedFormatters, hasFormatters := f.Annotations[supportedFormatterAnnotation]
	if hasFormatters && !slices.Contains(supportedFormatters, desiredFormatter) {
		return nil, fmt.Errorf("unsupported format '%s'", desiredFormatter)
	}

	return NewFormatter(desiredFormatter)
}
