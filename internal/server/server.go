// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package server exposes profile analysis of uploaded zip archives over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/explainit/explainit/internal/appdetect"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	analyzePath = "/api/explain/analyze"
	healthPath  = "/api/explain/health"
)

// Options configures a Server.
type Options struct {
	// MaxUploadBytes caps the size of an uploaded archive.
	MaxUploadBytes int64
	// MaxExtractedBytes caps the uncompressed size of an uploaded archive. Zero selects ten times MaxUploadBytes.
	MaxExtractedBytes int64
	// CacheSize is the number of profiles kept in memory, keyed by upload digest. Zero disables caching.
	CacheSize int
	// ScratchDir is the parent of the per-request extraction directories. Empty selects os.TempDir().
	ScratchDir string
	// ShutdownTimeout bounds how long in-flight requests may run after the serve context is cancelled.
	ShutdownTimeout time.Duration
}

type Server struct {
	analyzer *appdetect.Analyzer
	clock    clock.Clock
	options  Options
	// cache is nil when caching is disabled.
	cache *lru.Cache[string, *appdetect.Profile]
}

func New(analyzer *appdetect.Analyzer, clock clock.Clock, options Options) (*Server, error) {
	if options.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("invalid upload limit %d", options.MaxUploadBytes)
	}

	if options.MaxExtractedBytes == 0 {
		options.MaxExtractedBytes = 10 * options.MaxUploadBytes
	}

	if options.ShutdownTimeout == 0 {
		options.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		analyzer: analyzer,
		clock:    clock,
		options:  options,
	}

	if options.CacheSize > 0 {
		cache, err := lru.New[string, *appdetect.Profile](options.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating profile cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// Handler returns the HTTP handler serving the explain API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+analyzePath, s.analyze)
	mux.HandleFunc("GET "+healthPath, s.health)

	return s.withRequestLogging(s.withRecovery(mux))
}

// Serve serves the explain API on l until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	server := http.Server{
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	slog.InfoContext(ctx, "explain server listening", "address", l.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.options.ShutdownTimeout)
	defer cancel()

	log.Printf("shutting down explain server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
