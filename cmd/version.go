// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/pkg/output"
	"github.com/spf13/cobra"
)

type versionFlags struct {
	global *internal.GlobalCommandOptions
}

func versionCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *versionFlags) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of explainit.",
		Args:  cobra.NoArgs,
	}
	output.AddOutputParam(cmd, []output.Format{output.JsonFormat, output.NoneFormat}, output.NoneFormat)

	return cmd, &versionFlags{global: global}
}

type versionAction struct {
	formatter output.Formatter
	writer    io.Writer
}

func newVersionAction(formatter output.Formatter, writer io.Writer) *versionAction {
	return &versionAction{
		formatter: formatter,
		writer:    writer,
	}
}

func (v *versionAction) Run(ctx context.Context) error {
	switch v.formatter.Kind() {
	case output.NoneFormat:
		fmt.Fprintf(v.writer, "explainit version %s\n", internal.Version)
	case output.JsonFormat:
		return v.formatter.Format(internal.GetVersionSpec(), v.writer, nil)
	}

	return nil
}
