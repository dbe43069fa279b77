// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/explainit/explainit/internal/telemetry"
	"github.com/explainit/explainit/internal/tracing/fields"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const requestIdHeader = "X-Request-Id"

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLogging assigns every request an id, traces it and logs one line when it completes.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := uuid.NewString()
		w.Header().Set(requestIdHeader, requestId)

		ctx, span := telemetry.GetTracer().Start(r.Context(), "http"+r.URL.Path)
		defer span.End()
		span.SetAttributes(fields.RequestIdKey.String(requestId))

		start := s.clock.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(ctx))

		if recorder.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(recorder.status))
		}

		slog.InfoContext(ctx, "request",
			"id", requestId,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"elapsed", s.clock.Since(start))
	})
}

// withRecovery turns a panic in a handler into a 500 response.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Printf("panic serving %s: %v\n%s", r.URL.Path, rec, debug.Stack())
				writeJson(w, http.StatusInternalServerError, ErrorResponse{
					Error:   errAnalysisFailed,
					Message: fmt.Sprint(rec),
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func setRequestAttributes(ctx context.Context, kv ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(kv...)
}
