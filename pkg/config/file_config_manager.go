// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/explainit/explainit/pkg/osutil"
)

// FileConfigManager loads and saves configuration files.
type FileConfigManager interface {
	// Save writes the configuration to filePath, creating the parent directory if needed.
	Save(config Config, filePath string) error
	Load(filePath string) (Config, error)
}

func NewFileConfigManager(configManager Manager) FileConfigManager {
	return &fileConfigManager{
		manager: configManager,
	}
}

type fileConfigManager struct {
	manager Manager
}

func (m *fileConfigManager) Load(filePath string) (Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed opening configuration file: %w", err)
	}
	defer file.Close()

	return m.manager.Load(file)
}

func (m *fileConfigManager) Save(c Config, filePath string) error {
	folderPath := filepath.Dir(filePath)
	if err := os.MkdirAll(folderPath, osutil.PermissionDirectory); err != nil {
		return fmt.Errorf("failed creating config directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, osutil.PermissionFile)
	if err != nil {
		return fmt.Errorf("failed creating config file: %w", err)
	}
	defer file.Close()

	return m.manager.Save(c, file)
}
