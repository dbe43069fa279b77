// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"github.com/benbjohnson/clock"
	"github.com/explainit/explainit/pkg/config"
	"github.com/explainit/explainit/pkg/ioc"
)

// registerCommonDependencies registers the services shared by every command. Everything is resolved lazily, so a
// command that never asks for the user configuration never reads it.
func registerCommonDependencies(container *ioc.NestedContainer) {
	container.RegisterSingleton(config.NewManager)
	container.RegisterSingleton(config.NewFileConfigManager)
	container.RegisterSingleton(config.NewUserConfigManager)
	container.RegisterSingleton(func(userConfigManager config.UserConfigManager) (config.Config, error) {
		return userConfigManager.Load()
	})
	container.RegisterSingleton(config.LoadSettings)
	container.RegisterSingleton(clock.New)
}
