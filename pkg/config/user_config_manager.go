// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/explainit/explainit/pkg/osutil"
)

// UserConfigManager reads and writes the configuration of the current user.
type UserConfigManager interface {
	Save(Config) error
	Load() (Config, error)
}

func NewUserConfigManager(configManager FileConfigManager) UserConfigManager {
	return &userConfigManager{
		configManager: configManager,
	}
}

type userConfigManager struct {
	configManager FileConfigManager
}

// Load returns the user configuration. A missing file yields an empty configuration.
func (m *userConfigManager) Load() (Config, error) {
	configFilePath, err := GetUserConfigFilePath()
	if err != nil {
		return nil, err
	}

	if !osutil.FileExists(configFilePath) {
		log.Printf("no user configuration at %s", configFilePath)
		return NewEmptyConfig(), nil
	}

	c, err := m.configManager.Load(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("loading user configuration: %w", err)
	}

	return c, nil
}

func (m *userConfigManager) Save(c Config) error {
	configFilePath, err := GetUserConfigFilePath()
	if err != nil {
		return err
	}

	return m.configManager.Save(c, configFilePath)
}

// GetUserConfigFilePath returns the path of config.json in the user config directory.
func GetUserConfigFilePath() (string, error) {
	configPath, err := GetUserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed getting user config directory: %w", err)
	}

	return filepath.Join(configPath, "config.json"), nil
}
