// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package appdetect builds an evidence-backed profile of a source tree.
//
// A set of independent detectors reads the tree through a shared [EvidenceSource]. Each detector turns raw matches
// (marker files, manifest dependency entries, text matches) into scored [Detection] values through a [Scorer]. The
// [Analyzer] runs every detector once, isolates failures, and merges the results in a fixed order into a [Profile].
package appdetect
