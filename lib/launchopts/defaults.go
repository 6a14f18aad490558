// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package launchopts

import (
	"os"
	"path/filepath"

	"github.com/foundry-mc/launcher/lib/assets"
	"github.com/foundry-mc/launcher/lib/forge"
	"github.com/foundry-mc/launcher/lib/version"
)

// defaultMaxSockets bounds concurrent downloads when the caller leaves
// overrides.maxSockets unset; it equals fetch.DefaultMaxSockets.
const defaultMaxSockets = 2

// defaultMinMemoryMB and defaultMaxMemoryMB are the JVM heap bounds
// used when the caller supplies neither (spec §6).
const (
	defaultMinMemoryMB = 512
	defaultMaxMemoryMB = 2048
)

// Default returns an Options with Root set to ~/.foundry-mc, the java
// command, memory bounds, maxSockets and the spec §6 upstream endpoints
// filled in. The root-relative path overrides (directory, natives,
// asset and library roots) are left blank, so Build derives them from
// whichever root is finally set. Version and authorization are left
// for the caller to supply.
func Default() *Options {
	home, _ := os.UserHomeDir()
	root := filepath.Join(home, ".foundry-mc")

	return &Options{
		Root:     root,
		JavaPath: "java",
		Memory: Memory{
			Min: defaultMinMemoryMB,
			Max: defaultMaxMemoryMB,
		},
		Overrides: Overrides{
			MaxSockets: defaultMaxSockets,
			Detached:   true,
			URL: Endpoints{
				Meta:          version.DefaultMetaBaseURL,
				Resource:      assets.DefaultResourceBaseURL,
				MavenForge:    forge.DefaultMavenForge,
				RepoForge:     forge.DefaultRepoForge,
				FallbackMaven: forge.DefaultFallbackMaven,
			},
		},
	}
}
