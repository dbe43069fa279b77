// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/explainit/explainit/pkg/osutil"
)

const cConfigDir = ".explainit"

// Manager encodes and decodes configuration documents.
type Manager interface {
	Save(config Config, writer io.Writer) error
	Load(io.Reader) (Config, error)
}

type manager struct {
}

func NewManager() Manager {
	return &manager{}
}

func (c *manager) Save(config Config, writer io.Writer) error {
	configJson, err := json.MarshalIndent(config.Raw(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed marshalling config JSON: %w", err)
	}

	_, err = writer.Write(configJson)
	if err != nil {
		return fmt.Errorf("failed writing configuration data: %w", err)
	}

	return nil
}

func (c *manager) Load(reader io.Reader) (Config, error) {
	jsonBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed reading configuration file: %w", err)
	}

	return Parse(jsonBytes)
}

// Parse parses configuration JSON. Empty input yields an empty configuration.
func Parse(configJson []byte) (Config, error) {
	if len(configJson) == 0 {
		return NewEmptyConfig(), nil
	}

	var data map[string]any
	err := json.Unmarshal(configJson, &data)
	if err != nil {
		return nil, fmt.Errorf("failed unmarshalling configuration JSON: %w", err)
	}

	return NewConfig(data), nil
}

// GetUserConfigDir returns the directory holding user wide configuration, EXPLAINIT_CONFIG_DIR when set and
// ~/.explainit otherwise.
//
// The config directory is guaranteed to exist, otherwise an error is returned.
func GetUserConfigDir() (string, error) {
	configDirPath := os.Getenv("EXPLAINIT_CONFIG_DIR")
	if configDirPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine current home directory: %w", err)
		}

		configDirPath = filepath.Join(homeDir, cConfigDir)
	}

	err := os.MkdirAll(configDirPath, osutil.PermissionDirectoryOwnerOnly)
	if err != nil {
		return configDirPath, err
	}

	// Ensure that the "x" permission is set on the folder for the current user.
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		info, err := os.Stat(configDirPath)
		if err != nil {
			return configDirPath, err
		}

		permissions := info.Mode().Perm()
		if permissions&osutil.PermissionMaskDirectoryExecute == 0 {
			err := os.Chmod(configDirPath, permissions|osutil.PermissionMaskDirectoryExecute)
			return configDirPath, err
		}
	}

	return configDirPath, nil
}
