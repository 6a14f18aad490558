// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package launch

import (
	"os/exec"
	"syscall"
)

// configureDetached starts the game process in its own session when
// detached is true, so it survives this process exiting (spec §6
// subprocess contract: "detached unless overridden").
func configureDetached(cmd *exec.Cmd, detached bool) {
	if !detached {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
