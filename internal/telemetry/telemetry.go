// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package telemetry provides tracing of analyses.
//
// Spans are written as JSON lines to a local file. Nothing is sent over the network.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/internal/tracing/fields"
	"github.com/explainit/explainit/pkg/osutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/multierr"
)

type TelemetrySystem struct {
	tracerProvider *trace.TracerProvider
	file           *os.File
}

func newResource() *resource.Resource {
	r, _ := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			fields.ServiceNameKey.String(fields.ServiceName),
			fields.ServiceVersionKey.String(internal.GetVersionNumber()),
		),
	)
	return r
}

// Initialize installs a global tracer provider that exports spans to traceLogFile.
//
// Returns nil when traceLogFile is empty. The caller must call Shutdown to flush pending spans.
func Initialize(traceLogFile string) (*TelemetrySystem, error) {
	if traceLogFile == "" {
		return nil, nil
	}

	file, err := os.OpenFile(traceLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, osutil.PermissionFileOwnerOnly)
	if err != nil {
		return nil, fmt.Errorf("opening trace log file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(newResource()),
	)
	otel.SetTracerProvider(tp)

	return &TelemetrySystem{tracerProvider: tp, file: file}, nil
}

// Shutdown flushes all pending spans and closes the trace log file.
func (ts *TelemetrySystem) Shutdown(ctx context.Context) error {
	err := ts.tracerProvider.Shutdown(ctx)
	return multierr.Append(err, ts.file.Close())
}
