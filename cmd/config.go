// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/pkg/config"
	"github.com/explainit/explainit/pkg/ioc"
	"github.com/explainit/explainit/pkg/output"
	"github.com/spf13/cobra"
)

func configCmd(container *ioc.NestedContainer, global *internal.GlobalCommandOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Manage explainit configuration.",
		Long: heredoc.Doc(`
			Manage the user configuration stored in config.json under $EXPLAINIT_CONFIG_DIR, or ~/.explainit.

			Recognized settings:
			  analyze.output            default output format of analyze
			  analyze.excludePatterns   extra doublestar patterns skipped by analyze and serve
			  analyze.parallelism       maximum number of detectors run at the same time
			  server.address            listen address of serve
			  server.maxUploadMB        largest archive accepted by serve
			  server.cacheSize          number of profiles serve keeps in memory

			Values may reference environment variables as ${NAME}.`),
	}

	root.AddCommand(buildCmd[struct{}, *configShowAction](container, global, configShowCmdDesign, newConfigShowAction))
	root.AddCommand(buildCmd[struct{}, *configGetAction](container, global, configGetCmdDesign, newConfigGetAction))
	root.AddCommand(buildCmd[struct{}, *configSetAction](container, global, configSetCmdDesign, newConfigSetAction))
	root.AddCommand(buildCmd[struct{}, *configUnsetAction](container, global, configUnsetCmdDesign, newConfigUnsetAction))
	root.Flags().BoolP("help", "h", false, fmt.Sprintf("Gets help for %s.", root.Name()))

	return root
}

// explainit config show
func configShowCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *struct{}) {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show all configuration values.",
		Args:  cobra.NoArgs,
	}
	output.AddOutputParam(cmd, []output.Format{output.JsonFormat}, output.JsonFormat)

	return cmd, &struct{}{}
}

type configShowAction struct {
	userConfigManager config.UserConfigManager
	formatter         output.Formatter
	writer            io.Writer
}

func newConfigShowAction(
	userConfigManager config.UserConfigManager,
	formatter output.Formatter,
	writer io.Writer,
) *configShowAction {
	return &configShowAction{
		userConfigManager: userConfigManager,
		formatter:         formatter,
		writer:            writer,
	}
}

func (a *configShowAction) Run(ctx context.Context) error {
	userConfig, err := a.userConfigManager.Load()
	if err != nil {
		return err
	}

	if err := a.formatter.Format(userConfig.Raw(), a.writer, nil); err != nil {
		return fmt.Errorf("failed formatting config values: %w", err)
	}

	return nil
}

// explainit config get <path>
func configGetCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *struct{}) {
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Get a configuration value.",
		Long:  "Get a configuration value. Environment variable references in the value are expanded.",
		Args:  cobra.ExactArgs(1),
	}
	output.AddOutputParam(cmd, []output.Format{output.JsonFormat}, output.JsonFormat)

	return cmd, &struct{}{}
}

type configGetAction struct {
	userConfigManager config.UserConfigManager
	formatter         output.Formatter
	writer            io.Writer
	args              []string
}

func newConfigGetAction(
	userConfigManager config.UserConfigManager,
	formatter output.Formatter,
	writer io.Writer,
	args []string,
) *configGetAction {
	return &configGetAction{
		userConfigManager: userConfigManager,
		formatter:         formatter,
		writer:            writer,
		args:              args,
	}
}

func (a *configGetAction) Run(ctx context.Context) error {
	userConfig, err := a.userConfigManager.Load()
	if err != nil {
		return err
	}

	path := a.args[0]
	value, ok := userConfig.Get(path)
	if !ok {
		return &internal.ErrorWithSuggestion{
			Err:        fmt.Errorf("no value stored at path '%s'", path),
			Suggestion: "Run 'explainit config show' to list the stored values.",
		}
	}

	if err := a.formatter.Format(value, a.writer, nil); err != nil {
		return fmt.Errorf("failed formatting config value: %w", err)
	}

	return nil
}

// explainit config set <path> <value>
func configSetCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *struct{}) {
	cmd := &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Set a configuration value.",
		Long: heredoc.Doc(`
			Set a configuration value. A value that parses as JSON is stored as JSON, so numbers, booleans and
			lists keep their type. Anything else is stored as a string.`),
		Example: heredoc.Doc(`
			explainit config set analyze.output json
			explainit config set analyze.parallelism 4
			explainit config set analyze.excludePatterns '["**/generated"]'`),
		Args: cobra.ExactArgs(2),
	}

	return cmd, &struct{}{}
}

type configSetAction struct {
	userConfigManager config.UserConfigManager
	args              []string
}

func newConfigSetAction(userConfigManager config.UserConfigManager, args []string) *configSetAction {
	return &configSetAction{
		userConfigManager: userConfigManager,
		args:              args,
	}
}

func (a *configSetAction) Run(ctx context.Context) error {
	userConfig, err := a.userConfigManager.Load()
	if err != nil {
		return err
	}

	path := a.args[0]
	value := parseConfigValue(a.args[1])
	if err := userConfig.Set(path, value); err != nil {
		return fmt.Errorf("failed setting configuration value '%s' to '%s': %w", path, a.args[1], err)
	}

	if err := a.userConfigManager.Save(userConfig); err != nil {
		return fmt.Errorf("failed saving configuration: %w", err)
	}

	return nil
}

// parseConfigValue returns the JSON value encoded by raw, or raw itself when it is not JSON.
func parseConfigValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}

	return value
}

// explainit config unset <path>
func configUnsetCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *struct{}) {
	cmd := &cobra.Command{
		Use:   "unset <path>",
		Short: "Unset a configuration value.",
		Args:  cobra.ExactArgs(1),
	}

	return cmd, &struct{}{}
}

type configUnsetAction struct {
	userConfigManager config.UserConfigManager
	args              []string
}

func newConfigUnsetAction(userConfigManager config.UserConfigManager, args []string) *configUnsetAction {
	return &configUnsetAction{
		userConfigManager: userConfigManager,
		args:              args,
	}
}

func (a *configUnsetAction) Run(ctx context.Context) error {
	userConfig, err := a.userConfigManager.Load()
	if err != nil {
		return err
	}

	path := a.args[0]
	if err := userConfig.Unset(path); err != nil {
		return fmt.Errorf("failed removing configuration with path '%s': %w", path, err)
	}

	if err := a.userConfigManager.Save(userConfig); err != nil {
		return fmt.Errorf("failed saving configuration: %w", err)
	}

	return nil
}
