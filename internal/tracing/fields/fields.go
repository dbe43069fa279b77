// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package fields provides the attribute keys recorded on analysis spans.
package fields

import (
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const ServiceName = "explainit"

// Application-level fields.
var (
	ServiceNameKey    = semconv.ServiceNameKey
	ServiceVersionKey = semconv.ServiceVersionKey
)

// Analysis fields.
var (
	// Hashed name of the analyzed project.
	ProjectNameKey = attribute.Key("analysis.project")
	// Number of files indexed after exclusions.
	FileCountKey = attribute.Key("analysis.files")
	// Number of detections in the profile.
	DetectionCountKey = attribute.Key("analysis.detections")
	// Number of diagnostics recorded in the profile.
	DiagnosticCountKey = attribute.Key("analysis.diagnostics")
)

// Detector fields.
var (
	DetectorNameKey = attribute.Key("detector.name")
	// Whether the detector returned an error or panicked.
	DetectorFailedKey = attribute.Key("detector.failed")
)

// Server fields.
var (
	RequestIdKey   = attribute.Key("http.request.id")
	UploadBytesKey = attribute.Key("http.upload.bytes")
	CacheHitKey    = attribute.Key("cache.hit")
)
