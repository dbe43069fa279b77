// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/explainit/explainit/cmd"
	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/internal/telemetry"
	"github.com/explainit/explainit/pkg/ioc"
	"github.com/explainit/explainit/pkg/output"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	restoreColorMode := colorable.EnableColorsStdout(nil)
	defer restoreColorMode()

	color.NoColor = !output.IsTerminal(os.Stdout.Fd())

	global := parseGlobalFlags()

	level := slog.LevelInfo
	if global.EnableDebugLogging {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// slog.SetDefault redirects the log package, so its output is set afterwards.
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if global.EnableDebugLogging {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	ts, err := telemetry.Initialize(global.TraceLogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, output.WithWarningFormat("WARNING: tracing is disabled: %v", err))
	}

	rootCmd := cmd.NewRootCmd(ioc.NewNestedContainer(nil))
	rootCmd.SetOut(colorable.NewColorableStdout())
	cmdErr := rootCmd.ExecuteContext(ctx)

	if ts != nil {
		if err := ts.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Printf("non-graceful telemetry shutdown: %v\n", err)
		}
	}

	if cmdErr != nil {
		fmt.Fprintln(os.Stderr, output.WithErrorFormat("ERROR: %s", cmdErr.Error()))

		var errWithSuggestion *internal.ErrorWithSuggestion
		if errors.As(cmdErr, &errWithSuggestion) {
			fmt.Fprintln(os.Stderr, errWithSuggestion.Suggestion)
		}

		os.Exit(1)
	}
}

// parseGlobalFlags reads the global flags ahead of command execution, since logging and tracing are configured
// before the command tree exists.
func parseGlobalFlags() internal.GlobalCommandOptions {
	var global internal.GlobalCommandOptions
	help := false
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)

	// The full command line is parsed here, including flags that only the selected command defines.
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.BoolVar(&global.EnableDebugLogging, "debug", false, "")
	flags.StringVar(&global.TraceLogFile, "trace-log-file", "", "")

	// pflag returns ErrHelp for --help unless a help flag is defined. Help is shown later by the command itself.
	flags.BoolVarP(&help, "help", "h", false, "")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Printf("could not parse flags: %v", err)
	}

	return global
}
