// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package telemetry

import (
	"context"

	"github.com/explainit/explainit/internal/tracing/fields"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the creator of Spans.
//
// This is simply trace.Tracer except returning our Span instead of trace.Span.
type Tracer interface {
	Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span)
}

type wrapperTracer struct {
	tracer trace.Tracer
}

func (w *wrapperTracer) Start(
	ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span) {
	ctx, span := w.tracer.Start(ctx, spanName, opts...)
	return ctx, &wrapperSpan{span}
}

// Span is the individual component of a trace.
//
// It is a reduced trace.Span: events are not supported, and errors are recorded through SetStatus.
type Span interface {
	// End completes the Span. Updates to the Span are not allowed after this method has been called.
	End(options ...trace.SpanEndOption)

	// IsRecording returns the recording state of the Span.
	IsRecording() bool

	// SpanContext returns the SpanContext of the Span.
	SpanContext() trace.SpanContext

	// SetStatus sets the status of the Span in the form of a code and a description.
	SetStatus(code codes.Code, description string)

	// SetAttributes sets kv as attributes of the Span.
	SetAttributes(kv ...attribute.KeyValue)
}

type wrapperSpan struct {
	span trace.Span
}

func (s *wrapperSpan) End(options ...trace.SpanEndOption) {
	s.span.End(options...)
}

func (s *wrapperSpan) IsRecording() bool {
	return s.span.IsRecording()
}

func (s *wrapperSpan) SpanContext() trace.SpanContext {
	return s.span.SpanContext()
}

func (s *wrapperSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

func (s *wrapperSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.span.SetAttributes(kv...)
}

// GetTracer returns the application tracer. Without an installed provider, spans are no-ops.
func GetTracer() Tracer {
	return &wrapperTracer{otel.Tracer(fields.ServiceName)}
}
