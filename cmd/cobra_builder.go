// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/explainit/explainit/internal"
	"github.com/explainit/explainit/pkg/ioc"
	"github.com/explainit/explainit/pkg/output"
	"github.com/spf13/cobra"
)

// Action is the work of a command. Actions are constructed per execution with their dependencies resolved from
// the container.
type Action interface {
	Run(ctx context.Context) error
}

// designFunc creates a command and the flags it binds.
type designFunc[F any] func(global *internal.GlobalCommandOptions) (*cobra.Command, *F)

// buildCmd creates the command returned by design. When the command runs, a nested container is created holding
// the command, its arguments, its parsed flags, the output writer and formatter, and newAction is resolved from it
// as an A.
func buildCmd[F any, A Action](
	container *ioc.NestedContainer,
	global *internal.GlobalCommandOptions,
	design designFunc[F],
	newAction any,
) *cobra.Command {
	cmd, flags := design(global)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		actionContainer := ioc.NewNestedContainer(container)
		ioc.RegisterInstance(actionContainer, cmd)
		ioc.RegisterInstance(actionContainer, args)
		ioc.RegisterInstance(actionContainer, *flags)
		ioc.RegisterInstance[io.Writer](actionContainer, cmd.OutOrStdout())
		actionContainer.RegisterSingleton(output.GetCommandFormatter)

		if err := actionContainer.RegisterTransient(newAction); err != nil {
			return fmt.Errorf("registering %s action: %w", cmd.Name(), err)
		}

		var action A
		if err := actionContainer.Resolve(&action); err != nil {
			return fmt.Errorf("resolving %s action: %w", cmd.Name(), err)
		}

		return action.Run(cmd.Context())
	}

	return cmd
}
