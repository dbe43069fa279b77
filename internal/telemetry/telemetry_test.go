// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/explainit/explainit/internal/tracing/fields"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitializeWithoutFile(t *testing.T) {
	ts, err := Initialize("")
	require.NoError(t, err)
	require.Nil(t, ts)
}

func TestInitializeWritesSpans(t *testing.T) {
	orig := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(orig) })

	traceFile := filepath.Join(t.TempDir(), "trace.jsonl")
	ts, err := Initialize(traceFile)
	require.NoError(t, err)
	require.NotNil(t, ts)

	_, span := GetTracer().Start(context.Background(), "analyze")
	span.SetAttributes(fields.DetectorNameKey.String("language"))
	span.End()

	require.NoError(t, ts.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	require.Contains(t, string(content), "analyze")
	require.Contains(t, string(content), "detector.name")
}

func TestWrapperSpan(t *testing.T) {
	orig := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(orig) })

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder)))

	_, span := GetTracer().Start(context.Background(), "detector")
	require.True(t, span.IsRecording())
	require.True(t, span.SpanContext().IsValid())

	span.SetStatus(codes.Error, "boom")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, "detector", ended[0].Name())
	require.Equal(t, codes.Error, ended[0].Status().Code)
	require.Equal(t, "boom", ended[0].Status().Description)
}
