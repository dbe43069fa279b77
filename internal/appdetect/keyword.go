// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"slices"
	"strings"
	"unicode"
)

// maxLiteralLength bounds the text line recorded as evidence for a raw text match.
const maxLiteralLength = 120

// matchKeyword reports whether text references keyword.
//
// A keyword that contains a separator, such as "spring-boot" or "@nestjs/core", matches as a case-insensitive
// substring. A simple keyword such as "h2" must equal a whole token of text, optionally followed by digits only, so
// that "h2" does not match "oauth2" while "sqlite" still matches "sqlite3".
func matchKeyword(keyword string, text string) bool {
	keyword = strings.ToLower(keyword)
	text = strings.ToLower(text)
	if keyword == "" {
		return false
	}

	if strings.ContainsAny(keyword, "-./@:_") {
		return strings.Contains(text, keyword)
	}

	for _, token := range tokens(text) {
		if token == keyword {
			return true
		}

		if suffix, ok := strings.CutPrefix(token, keyword); ok && isDigits(suffix) {
			return true
		}
	}

	return false
}

func tokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// matchingLine returns the first line of content that references keyword, trimmed for display.
func matchingLine(keyword string, content string) (string, bool) {
	for line := range strings.Lines(content) {
		if matchKeyword(keyword, line) {
			return truncate(strings.TrimSpace(line), maxLiteralLength), true
		}
	}

	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)
	return keys
}
