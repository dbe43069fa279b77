// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/benbjohnson/clock"
	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/internal/appdetect"
	"github.com/explainit/explainit/internal/server"
	"github.com/explainit/explainit/pkg/config"
	"github.com/explainit/explainit/pkg/osutil"
	"github.com/explainit/explainit/pkg/output"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	addressEnvVar     = "EXPLAINIT_ADDR"
	maxUploadMBEnvVar = "EXPLAINIT_MAX_UPLOAD_MB"
)

type serveFlags struct {
	address     string
	maxUploadMB int
	envFile     string
	global      *internal.GlobalCommandOptions
}

func (f *serveFlags) Bind(local *pflag.FlagSet, global *internal.GlobalCommandOptions) {
	local.StringVar(&f.address, "address", "", "Address to listen on. Overrides EXPLAINIT_ADDR and server.address.")
	local.IntVar(
		&f.maxUploadMB,
		"max-upload-mb",
		0,
		"Largest accepted archive in megabytes. Overrides EXPLAINIT_MAX_UPLOAD_MB and server.maxUploadMB.")
	local.StringVar(&f.envFile, "env-file", ".env", "Environment file loaded before the server settings are read.")
	f.global = global
}

func serveCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *serveFlags) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve project analysis over HTTP.",
		Long: heredoc.Doc(`
			Serve accepts zip archives of projects and answers with their profile as JSON.

			  POST /api/explain/analyze   multipart form with the archive in the "file" field
			  GET  /api/explain/health    liveness probe

			Settings are taken from the flags, then the environment, then the user configuration.`),
		Args: cobra.NoArgs,
	}

	flags := &serveFlags{}
	flags.Bind(cmd.Flags(), global)

	return cmd, flags
}

type serveAction struct {
	flags    serveFlags
	settings config.Settings
	clock    clock.Clock
	writer   io.Writer
}

func newServeAction(flags serveFlags, settings config.Settings, clock clock.Clock, writer io.Writer) *serveAction {
	return &serveAction{
		flags:    flags,
		settings: settings,
		clock:    clock,
		writer:   writer,
	}
}

func (a *serveAction) Run(ctx context.Context) error {
	if err := loadEnvFile(a.flags.envFile); err != nil {
		return err
	}

	settings, err := a.serverSettings()
	if err != nil {
		return err
	}

	options := []appdetect.DetectOption{
		appdetect.WithExcludePatterns(a.settings.Analyze.ExcludePatterns, false),
	}
	if a.settings.Analyze.Parallelism > 0 {
		options = append(options, appdetect.WithParallelism(a.settings.Analyze.Parallelism))
	}

	srv, err := server.New(appdetect.New(options...), a.clock, server.Options{
		MaxUploadBytes: int64(settings.MaxUploadMB) * 1024 * 1024,
		CacheSize:      settings.CacheSize,
	})
	if err != nil {
		return err
	}

	l, err := net.Listen("tcp", settings.Address)
	if err != nil {
		return &internal.ErrorWithSuggestion{
			Err:        fmt.Errorf("listening on %s: %w", settings.Address, err),
			Suggestion: "Pick a free address with --address, for example --address :8081.",
		}
	}

	fmt.Fprintf(a.writer, "explainit is listening on %s\n", output.WithHighLightFormat("http://%s", l.Addr()))
	return srv.Serve(ctx, l)
}

// serverSettings applies the environment and then the flags over the configured server settings.
func (a *serveAction) serverSettings() (config.ServerSettings, error) {
	settings := a.settings.Server

	if address := os.Getenv(addressEnvVar); address != "" {
		settings.Address = address
	}

	if value := os.Getenv(maxUploadMBEnvVar); value != "" {
		maxUploadMB, err := strconv.Atoi(value)
		if err != nil {
			return settings, fmt.Errorf("invalid %s '%s': %w", maxUploadMBEnvVar, value, err)
		}
		settings.MaxUploadMB = maxUploadMB
	}

	if a.flags.address != "" {
		settings.Address = a.flags.address
	}

	if a.flags.maxUploadMB != 0 {
		settings.MaxUploadMB = a.flags.maxUploadMB
	}

	if settings.MaxUploadMB <= 0 {
		return settings, fmt.Errorf("the upload limit must be positive, got %d MB", settings.MaxUploadMB)
	}

	return settings, nil
}

// loadEnvFile adds the variables of path to the environment. Variables that are already set keep their value. A
// missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if osutil.IsNotExist(err) {
		log.Printf("no environment file at '%s'", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("loading environment file '%s': %w", path, err)
	}

	return nil
}
