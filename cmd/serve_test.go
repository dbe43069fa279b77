// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/explainit/explainit/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestServerSettings(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		flags       serveFlags
		wantAddress string
		wantMB      int
	}{
		{
			name:        "Defaults",
			wantAddress: ":8080",
			wantMB:      50,
		},
		{
			name:        "Environment",
			env:         map[string]string{addressEnvVar: ":9000", maxUploadMBEnvVar: "10"},
			wantAddress: ":9000",
			wantMB:      10,
		},
		{
			name:        "FlagsOverEnvironment",
			env:         map[string]string{addressEnvVar: ":9000", maxUploadMBEnvVar: "10"},
			flags:       serveFlags{address: "127.0.0.1:7000", maxUploadMB: 5},
			wantAddress: "127.0.0.1:7000",
			wantMB:      5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(addressEnvVar, "")
			t.Setenv(maxUploadMBEnvVar, "")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			action := newServeAction(tt.flags, config.DefaultSettings, clock.NewMock(), &bytes.Buffer{})
			settings, err := action.serverSettings()
			require.NoError(t, err)
			require.Equal(t, tt.wantAddress, settings.Address)
			require.Equal(t, tt.wantMB, settings.MaxUploadMB)
			require.Equal(t, config.DefaultSettings.Server.CacheSize, settings.CacheSize)
		})
	}
}

func TestServerSettingsInvalid(t *testing.T) {
	t.Setenv(addressEnvVar, "")

	t.Run("Environment", func(t *testing.T) {
		t.Setenv(maxUploadMBEnvVar, "ten")

		action := newServeAction(serveFlags{}, config.DefaultSettings, clock.NewMock(), &bytes.Buffer{})
		_, err := action.serverSettings()
		require.ErrorContains(t, err, "invalid EXPLAINIT_MAX_UPLOAD_MB 'ten'")
	})

	t.Run("Flag", func(t *testing.T) {
		t.Setenv(maxUploadMBEnvVar, "")

		action := newServeAction(serveFlags{maxUploadMB: -1}, config.DefaultSettings, clock.NewMock(), &bytes.Buffer{})
		_, err := action.serverSettings()
		require.ErrorContains(t, err, "must be positive")
	})
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	// Registers the restore of the variable before loading unsets it.
	t.Setenv(addressEnvVar, "")
	require.NoError(t, os.Unsetenv(addressEnvVar))

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("EXPLAINIT_ADDR=:7070\n"), 0600))
	require.NoError(t, loadEnvFile(envFile))
	require.Equal(t, ":7070", os.Getenv(addressEnvVar))

	// Variables already set are kept.
	require.NoError(t, os.WriteFile(envFile, []byte("EXPLAINIT_ADDR=:6060\n"), 0600))
	require.NoError(t, loadEnvFile(envFile))
	require.Equal(t, ":7070", os.Getenv(addressEnvVar))
}

func TestServeShutsDown(t *testing.T) {
	t.Setenv(addressEnvVar, "")
	t.Setenv(maxUploadMBEnvVar, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	flags := serveFlags{address: "127.0.0.1:0", envFile: filepath.Join(t.TempDir(), ".env")}
	action := newServeAction(flags, config.DefaultSettings, clock.NewMock(), &out)

	require.NoError(t, action.Run(ctx))
	require.Contains(t, out.String(), "http://127.0.0.1:")
}

func TestServeArgs(t *testing.T) {
	_, err := execute(t, "serve", "extra")
	require.Error(t, err)
}
