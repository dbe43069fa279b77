// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/internal/appdetect"
	"github.com/explainit/explainit/pkg/config"
	"github.com/explainit/explainit/pkg/osutil"
	"github.com/explainit/explainit/pkg/output"
	"github.com/explainit/explainit/pkg/output/ux"
	"github.com/explainit/explainit/pkg/rzip"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type analyzeFlags struct {
	outputFormat      string
	exclude           []string
	noDefaultExcludes bool
	parallel          int
	zip               bool
	verbose           bool
	global            *internal.GlobalCommandOptions
}

func (f *analyzeFlags) Bind(local *pflag.FlagSet, global *internal.GlobalCommandOptions) {
	formatNames := make([]string, len(output.SupportedFormats))
	for i, format := range output.SupportedFormats {
		formatNames[i] = string(format)
	}

	local.StringVarP(
		&f.outputFormat,
		"output",
		"o",
		"",
		fmt.Sprintf(
			"Output format (supported formats are %s). Defaults to the analyze.output configuration.",
			strings.Join(formatNames, ", ")))
	local.StringArrayVar(
		&f.exclude,
		"exclude",
		nil,
		"Skips paths matching the given doublestar pattern, for example '**/generated'. May be repeated.")
	local.BoolVar(
		&f.noDefaultExcludes,
		"no-default-excludes",
		false,
		"Walks dependency caches and build output directories like node_modules and target.")
	local.IntVar(&f.parallel, "parallel", 0, "Maximum number of detectors run at the same time.")
	local.BoolVar(&f.zip, "zip", false, "Treats the path as a zip archive of the project.")
	local.BoolVarP(&f.verbose, "verbose", "v", false, "Shows the reason and evidence of every detection.")
	f.global = global
}

func analyzeCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *analyzeFlags) {
	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a project directory or archive.",
		Long: heredoc.Doc(`
			Analyze reads the project at path, or the current directory, and prints its profile.

			Nothing is built or executed. Files that cannot be read are reported as diagnostics and
			do not stop the analysis.`),
		Args: cobra.MaximumNArgs(1),
	}

	flags := &analyzeFlags{}
	flags.Bind(cmd.Flags(), global)

	return cmd, flags
}

type analyzeAction struct {
	flags    analyzeFlags
	args     []string
	settings config.Settings
	writer   io.Writer
}

func newAnalyzeAction(
	flags analyzeFlags,
	args []string,
	settings config.Settings,
	writer io.Writer,
) *analyzeAction {
	return &analyzeAction{
		flags:    flags,
		args:     args,
		settings: settings,
		writer:   writer,
	}
}

func (a *analyzeAction) Run(ctx context.Context) error {
	format := a.flags.outputFormat
	if format == "" {
		format = a.settings.Analyze.Output
	}

	formatter, err := output.NewFormatter(format)
	if err != nil {
		return err
	}

	target := "."
	if len(a.args) > 0 {
		target = a.args[0]
	}

	analyzer := appdetect.New(a.detectOptions()...)

	var profile *appdetect.Profile
	if a.flags.zip {
		profile, err = analyzeArchive(ctx, analyzer, target)
		if err != nil {
			return err
		}
	} else {
		if !osutil.DirExists(target) {
			return &internal.ErrorWithSuggestion{
				Err:        fmt.Errorf("'%s' is not a directory", target),
				Suggestion: "Pass the root directory of a project, or add --zip to analyze an archive.",
			}
		}

		profile = analyzer.Analyze(ctx, target)
	}

	for _, diagnostic := range profile.Diagnostics {
		log.Printf("analyze diagnostic: %s", diagnostic)
	}

	switch formatter.Kind() {
	case output.JsonFormat:
		return formatter.Format(profile, a.writer, nil)
	case output.TextFormat:
		return formatter.Format(&ux.ProfileReport{Profile: profile, Verbose: a.flags.verbose}, a.writer, nil)
	default:
		return nil
	}
}

// detectOptions combines the configured defaults with the command line. Flags add exclude patterns to the
// configured ones and replace the configured parallelism.
func (a *analyzeAction) detectOptions() []appdetect.DetectOption {
	excludes := append(slices.Clone(a.settings.Analyze.ExcludePatterns), a.flags.exclude...)
	options := []appdetect.DetectOption{
		appdetect.WithExcludePatterns(excludes, a.flags.noDefaultExcludes),
	}

	parallel := a.flags.parallel
	if parallel == 0 {
		parallel = a.settings.Analyze.Parallelism
	}

	if parallel > 0 {
		options = append(options, appdetect.WithParallelism(parallel))
	}

	return options
}

// analyzeArchive extracts the archive into a temporary directory and profiles it.
func analyzeArchive(ctx context.Context, analyzer *appdetect.Analyzer, archivePath string) (*appdetect.Profile, error) {
	if !osutil.FileExists(archivePath) {
		return nil, &internal.ErrorWithSuggestion{
			Err:        fmt.Errorf("'%s' is not a file", archivePath),
			Suggestion: "Pass the path of a zip archive, or drop --zip to analyze a directory.",
		}
	}

	scratch, err := os.MkdirTemp("", "explainit-")
	if err != nil {
		return nil, fmt.Errorf("creating temporary directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Printf("removing %s: %v", scratch, err)
		}
	}()

	if err := rzip.ExtractToDirectory(archivePath, scratch, rzip.ExtractOptions{}); err != nil {
		if errors.Is(err, rzip.ErrUnsafePath) {
			return nil, &internal.ErrorWithSuggestion{
				Err:        err,
				Suggestion: "The archive contains paths outside of its root. Re-create it from the project directory.",
			}
		}

		return nil, fmt.Errorf("extracting %s: %w", archivePath, err)
	}

	root, name := rzip.ProjectRoot(scratch, archivePath)
	return analyzer.AnalyzeFS(ctx, name, os.DirFS(root)), nil
}
