// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_FileConfigManager_SaveAndLoadConfig(t *testing.T) {
	c := NewConfig(
		map[string]any{
			"server": map[string]any{
				"address":     ":9090",
				"maxUploadMB": float64(20),
			},
		},
	)

	configFilePath := filepath.Join(t.TempDir(), "nested", "config.json")
	configManager := NewFileConfigManager(NewManager())

	err := configManager.Save(c, configFilePath)
	require.NoError(t, err)

	existingConfig, err := configManager.Load(configFilePath)
	require.NoError(t, err)
	require.Equal(t, c.Raw(), existingConfig.Raw())
}

func Test_FileConfigManager_SaveTruncates(t *testing.T) {
	configFilePath := filepath.Join(t.TempDir(), "config.json")
	configManager := NewFileConfigManager(NewManager())

	long := NewConfig(map[string]any{"analyze": map[string]any{"output": "a much longer value than the next one"}})
	require.NoError(t, configManager.Save(long, configFilePath))
	require.NoError(t, configManager.Save(NewEmptyConfig(), configFilePath))

	existingConfig, err := configManager.Load(configFilePath)
	require.NoError(t, err)
	require.True(t, existingConfig.IsEmpty())
}

func Test_UserConfigManager(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "explainit")
	t.Setenv("EXPLAINIT_CONFIG_DIR", configDir)

	userConfigManager := NewUserConfigManager(NewFileConfigManager(NewManager()))

	// missing file
	c, err := userConfigManager.Load()
	require.NoError(t, err)
	require.True(t, c.IsEmpty())

	require.NoError(t, c.Set("analyze.output", "json"))
	require.NoError(t, userConfigManager.Save(c))
	require.FileExists(t, filepath.Join(configDir, "config.json"))

	c, err = userConfigManager.Load()
	require.NoError(t, err)
	output, ok := c.GetString("analyze.output")
	require.True(t, ok)
	require.Equal(t, "json", output)
}

func Test_UserConfigManager_Malformed(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("EXPLAINIT_CONFIG_DIR", configDir)
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.json"), []byte("{not json"), 0600))

	_, err := NewUserConfigManager(NewFileConfigManager(NewManager())).Load()
	require.Error(t, err)
}
