// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/internal/appdetect"
	"github.com/explainit/explainit/internal/tracing/fields"
	"github.com/explainit/explainit/pkg/osutil"
	"github.com/explainit/explainit/pkg/rzip"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the body of the liveness endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

const (
	errEmptyFile      = "File is empty"
	errNotZip         = "Only ZIP files are accepted"
	errTooLarge       = "File is too large"
	errAnalysisFailed = "Analysis failed"

	// multipartOverhead is allowed on top of the upload limit for multipart headers and boundaries.
	multipartOverhead = 1 << 20
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, HealthResponse{
		Status:  "UP",
		Service: fields.ServiceName,
		Version: internal.GetVersionNumber(),
	})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.options.MaxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJson(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: errTooLarge})
			return
		}

		writeJson(w, http.StatusBadRequest, ErrorResponse{Error: errEmptyFile})
		return
	}
	defer file.Close()

	if header.Size == 0 {
		writeJson(w, http.StatusBadRequest, ErrorResponse{Error: errEmptyFile})
		return
	}

	if !strings.EqualFold(filepath.Ext(header.Filename), ".zip") {
		writeJson(w, http.StatusBadRequest, ErrorResponse{Error: errNotZip})
		return
	}

	if header.Size > s.options.MaxUploadBytes {
		writeJson(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: errTooLarge})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJson(w, http.StatusInternalServerError, ErrorResponse{Error: errAnalysisFailed, Message: err.Error()})
		return
	}

	setRequestAttributes(ctx, fields.UploadBytesKey.Int(len(content)))

	digest := sha256.Sum256(content)
	key := hex.EncodeToString(digest[:])
	if s.cache != nil {
		if profile, has := s.cache.Get(key); has {
			setRequestAttributes(ctx, fields.CacheHitKey.Bool(true))
			writeJson(w, http.StatusOK, profile)
			return
		}
	}

	setRequestAttributes(ctx, fields.CacheHitKey.Bool(false))

	profile, err := s.analyzeArchive(r, content, header.Filename)
	if err != nil {
		log.Printf("analyzing upload %s: %v", header.Filename, err)
		writeJson(w, http.StatusInternalServerError, ErrorResponse{Error: errAnalysisFailed, Message: err.Error()})
		return
	}

	if s.cache != nil {
		s.cache.Add(key, profile)
	}

	writeJson(w, http.StatusOK, profile)
}

// analyzeArchive extracts content into a fresh scratch directory, profiles it and removes the directory.
func (s *Server) analyzeArchive(r *http.Request, content []byte, fileName string) (*appdetect.Profile, error) {
	scratchRoot := s.options.ScratchDir
	if scratchRoot == "" {
		scratchRoot = os.TempDir()
	}

	scratch := filepath.Join(scratchRoot, "explainit-"+uuid.NewString())
	if err := os.MkdirAll(scratch, osutil.PermissionDirectoryOwnerOnly); err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Printf("removing scratch directory %s: %v", scratch, err)
		}
	}()

	err := rzip.Extract(
		bytes.NewReader(content), int64(len(content)), scratch, rzip.ExtractOptions{MaxBytes: s.options.MaxExtractedBytes})
	if err != nil {
		return nil, fmt.Errorf("extracting archive: %w", err)
	}

	root, name := rzip.ProjectRoot(scratch, fileName)
	return s.analyzer.AnalyzeFS(r.Context(), name, os.DirFS(root)), nil
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("writing response: %v", err)
	}
}
