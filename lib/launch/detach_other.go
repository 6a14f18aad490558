// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin && !linux

package launch

import "os/exec"

// configureDetached is a no-op on platforms without POSIX sessions;
// the game process still runs, just tied to this process's job on
// those platforms.
func configureDetached(cmd *exec.Cmd, detached bool) {}
