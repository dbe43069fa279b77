// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime/debug"

	"github.com/explainit/explainit/internal/telemetry"
	"github.com/explainit/explainit/internal/tracing/fields"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs a fixed set of detectors over a tree and merges their results into a Profile.
//
// An Analyzer holds no per-run state and may be used concurrently.
type Analyzer struct {
	config detectConfig
}

func New(options ...DetectOption) *Analyzer {
	return &Analyzer{config: newConfig(options...)}
}

// Analyze profiles the directory at root. The project name is the base name of root.
//
// Analyze always returns a Profile. Failures are recorded in Profile.Diagnostics.
func (a *Analyzer) Analyze(ctx context.Context, root string) *Profile {
	name := filepath.Base(root)
	if abs, err := filepath.Abs(root); err == nil {
		name = filepath.Base(abs)
	}

	src, err := NewDirSource(root, a.config.ExcludePatterns)
	return a.analyze(ctx, name, src, err)
}

// AnalyzeFS profiles the tree in fsys under the given project name.
func (a *Analyzer) AnalyzeFS(ctx context.Context, name string, fsys fs.FS) *Profile {
	src, err := NewSource(fsys, a.config.ExcludePatterns)
	return a.analyze(ctx, name, src, err)
}

// AnalyzeSource profiles an already indexed tree.
func (a *Analyzer) AnalyzeSource(ctx context.Context, name string, src EvidenceSource) *Profile {
	return a.analyze(ctx, name, src, nil)
}

type detectorOutcome struct {
	result Result
	err    error
}

func (a *Analyzer) analyze(ctx context.Context, name string, src EvidenceSource, walkErr error) *Profile {
	ctx, span := telemetry.GetTracer().Start(ctx, "analyze")
	defer span.End()

	profile := newProfile(name)
	for _, err := range multierr.Errors(walkErr) {
		profile.Diagnostics = append(profile.Diagnostics, "walk: "+err.Error())
	}

	shared := newSharedSource(src)
	if _, err := shared.load(); err != nil {
		for _, err := range multierr.Errors(err) {
			profile.Diagnostics = append(profile.Diagnostics, "manifest: "+err.Error())
		}
	}

	// Each detector writes only its own slot.
	outcomes := make([]detectorOutcome, len(a.config.detectors))
	var g errgroup.Group
	g.SetLimit(a.config.parallelism)
	for i, detector := range a.config.detectors {
		g.Go(func() error {
			outcomes[i].result, outcomes[i].err = runDetector(ctx, detector, shared)
			return nil
		})
	}
	_ = g.Wait()

	var merged []Detection
	for i, outcome := range outcomes {
		detectorName := a.config.detectors[i].Name()
		for _, err := range multierr.Errors(outcome.err) {
			profile.Diagnostics = append(profile.Diagnostics, fmt.Sprintf("%s: %s", detectorName, err))
		}

		if outcome.result == nil {
			continue
		}

		outcome.result.merge(profile)
		merged = append(merged, outcome.result.Detections()...)
	}

	merged = Dedupe(merged)
	profile.selectPrimary(merged)

	for _, d := range merged {
		if d.IsPlaceholder() {
			continue
		}

		profile.Detections = append(profile.Detections, d)
		if isSecurityCategory(d.Category) {
			profile.Security = append(profile.Security, d)
		}
	}

	profile.Summary = profile.summarize()

	span.SetAttributes(
		fields.StringHashed(fields.ProjectNameKey, name),
		fields.FileCountKey.Int(src.Stats().FileCount),
		fields.DetectionCountKey.Int(len(profile.Detections)),
		fields.DiagnosticCountKey.Int(len(profile.Diagnostics)),
	)

	if len(profile.Diagnostics) > 0 {
		slog.DebugContext(ctx, "analysis finished with diagnostics",
			"project", name, "diagnostics", len(profile.Diagnostics))
	}

	return profile
}

// runDetector runs a single detector, turning a panic into an error wrapping ErrDetectorFailure.
func runDetector(ctx context.Context, detector Detector, src EvidenceSource) (result Result, err error) {
	ctx, span := telemetry.GetTracer().Start(ctx, "detector/"+detector.Name())
	span.SetAttributes(fields.DetectorNameKey.String(detector.Name()))
	defer func() {
		if r := recover(); r != nil {
			slog.DebugContext(ctx, "detector panicked", "detector", detector.Name(), "stack", string(debug.Stack()))
			result = nil
			err = fmt.Errorf("%w: %v", ErrDetectorFailure, r)
		}

		span.SetAttributes(fields.DetectorFailedKey.Bool(err != nil))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return detector.Detect(ctx, src)
}
