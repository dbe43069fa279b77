// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

//go:build mage
// +build mage

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

type Explainit mg.Namespace

// Build writes the explainit binary to ./bin. Set EXPLAINIT_VERSION to stamp a release version.
func (Explainit) Build(ctx context.Context) error {
	args := []string{"build", "-o", "./bin/explainit"}
	if version := os.Getenv("EXPLAINIT_VERSION"); version != "" {
		args = append(args, "-ldflags", fmt.Sprintf("-X 'github.com/explainit/explainit/internal.Version=%s'", version))
	}

	cmdStr, cmd := runIn(ctx, ".", "go", append(args, ".")...)
	fmt.Println(cmdStr)
	return cmd()
}

// Test runs the unit tests of every package.
func (Explainit) Test(ctx context.Context) error {
	cmdStr, cmd := runIn(ctx, ".", "go", "test", "./...")
	fmt.Println(cmdStr)
	return cmd()
}

// UpdateSnapshots runs the unit tests, re-recording the snapshot files they compare against.
func (Explainit) UpdateSnapshots(ctx context.Context) error {
	cmdStr, cmd := runIn(ctx, ".", "go", "test", "./...")
	fmt.Println("UPDATE_SNAPSHOTS=true " + cmdStr)

	if err := os.Setenv("UPDATE_SNAPSHOTS", "true"); err != nil {
		return err
	}

	return cmd()
}

func runIn(ctx context.Context, cwd string, cmd string, args ...string) (string, func() error) {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = cwd
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.String(), func() error {
		return c.Run()
	}
}
