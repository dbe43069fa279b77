// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
)

// IsTerminal returns true if the given file descriptor is attached to a terminal, taking into account the
// EXPLAINIT_FORCE_TTY override.
func IsTerminal(fd uintptr) bool {
	if forceTty, err := strconv.ParseBool(os.Getenv("EXPLAINIT_FORCE_TTY")); err == nil {
		return forceTty
	}

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
