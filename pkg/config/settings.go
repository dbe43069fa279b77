// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"fmt"

	"dario.cat/mergo"
)

// AnalyzeSettings are the defaults of `explainit analyze`, read from the "analyze" section.
type AnalyzeSettings struct {
	Output          string   `json:"output,omitempty"`
	ExcludePatterns []string `json:"excludePatterns,omitempty"`
	Parallelism     int      `json:"parallelism,omitempty"`
}

// ServerSettings are the defaults of `explainit serve`, read from the "server" section.
type ServerSettings struct {
	Address     string `json:"address,omitempty"`
	MaxUploadMB int    `json:"maxUploadMB,omitempty"`
	CacheSize   int    `json:"cacheSize,omitempty"`
}

// Settings is the typed view of the user configuration.
type Settings struct {
	Analyze AnalyzeSettings `json:"analyze"`
	Server  ServerSettings  `json:"server"`
}

// DefaultSettings fill every value the user configuration leaves unset.
var DefaultSettings = Settings{
	Analyze: AnalyzeSettings{
		Output: "text",
	},
	Server: ServerSettings{
		Address:     ":8080",
		MaxUploadMB: 50,
		CacheSize:   32,
	},
}

// LoadSettings reads the typed settings from c, filling unset values from DefaultSettings.
func LoadSettings(c Config) (Settings, error) {
	var settings Settings
	if _, err := c.GetSection("analyze", &settings.Analyze); err != nil {
		return settings, fmt.Errorf("reading analyze settings: %w", err)
	}

	if _, err := c.GetSection("server", &settings.Server); err != nil {
		return settings, fmt.Errorf("reading server settings: %w", err)
	}

	if err := mergo.Merge(&settings, DefaultSettings); err != nil {
		return settings, fmt.Errorf("applying default settings: %w", err)
	}

	return settings, nil
}
