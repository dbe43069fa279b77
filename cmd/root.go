// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package cmd contains the explainit command line.
package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/pkg/ioc"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the explainit command tree. Commands resolve their dependencies from rootContainer, which may
// be nil.
func NewRootCmd(rootContainer *ioc.NestedContainer) *cobra.Command {
	if rootContainer == nil {
		rootContainer = ioc.NewNestedContainer(nil)
	}

	opts := &internal.GlobalCommandOptions{}
	ioc.RegisterInstance(rootContainer, opts)
	registerCommonDependencies(rootContainer)

	rootCmd := &cobra.Command{
		Use:   "explainit",
		Short: "Explain the technology stack and structure of a software project.",
		Long: heredoc.Doc(`
			explainit reads a project tree without building or running it and reports what it is made of:
			languages, frameworks, build system, data layer, security mechanisms, HTTP API, entry points and
			configuration files. Every finding carries a confidence level and the evidence it was derived from.`),
		Example: heredoc.Doc(`
			explainit analyze ./my-service
			explainit analyze --zip my-service.zip --output json
			explainit serve --address :8080`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.EnableDebugLogging, "debug", false, "Enables debugging and diagnostics logging.")
	rootCmd.PersistentFlags().StringVar(
		&opts.TraceLogFile, "trace-log-file", "", "Writes analysis traces to the given file as JSON lines.")
	rootCmd.Flags().BoolP("help", "h", false, fmt.Sprintf("Gets help for %s.", rootCmd.Name()))

	rootCmd.AddCommand(buildCmd[analyzeFlags, *analyzeAction](rootContainer, opts, analyzeCmdDesign, newAnalyzeAction))
	rootCmd.AddCommand(buildCmd[serveFlags, *serveAction](rootContainer, opts, serveCmdDesign, newServeAction))
	rootCmd.AddCommand(configCmd(rootContainer, opts))
	rootCmd.AddCommand(buildCmd[versionFlags, *versionAction](rootContainer, opts, versionCmdDesign, newVersionAction))

	return rootCmd
}
