// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package launchopts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultFillsEndpointsAndPaths(t *testing.T) {
	opts := Default()
	if opts.Overrides.URL.Meta == "" {
		t.Error("Default should set overrides.url.meta")
	}
	if opts.Overrides.URL.Resource == "" {
		t.Error("Default should set overrides.url.resource")
	}
	if opts.Overrides.MaxSockets != defaultMaxSockets {
		t.Errorf("MaxSockets = %d, want %d", opts.Overrides.MaxSockets, defaultMaxSockets)
	}
	if opts.Memory.Min == 0 || opts.Memory.Max == 0 {
		t.Error("Default should set nonzero memory bounds")
	}
}

func TestLoadMergesYAMLOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	yamlBody := "root: /srv/mc\nmemory:\n  max: 4096\nversion:\n  number: 1.20.1\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("seeding config: %v", err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.Root != "/srv/mc" {
		t.Errorf("Root = %q, want /srv/mc", opts.Root)
	}
	if opts.Memory.Max != 4096 {
		t.Errorf("Memory.Max = %d, want 4096", opts.Memory.Max)
	}
	if opts.Memory.Min != defaultMinMemoryMB {
		t.Errorf("Memory.Min = %d, want untouched default %d", opts.Memory.Min, defaultMinMemoryMB)
	}
	if opts.Version.Number != "1.20.1" {
		t.Errorf("Version.Number = %q, want 1.20.1", opts.Version.Number)
	}
}

func TestLoadWithMissingFileReturnsDefaults(t *testing.T) {
	opts, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.Overrides.MaxSockets != defaultMaxSockets {
		t.Errorf("expected defaults when config file is absent")
	}
}

func TestExpandPathsSubstitutesRootVariable(t *testing.T) {
	opts := Default()
	opts.Root = "/srv/mc"
	opts.Overrides.Natives = "${ROOT}/custom-natives"
	expandPaths(opts)
	want := "/srv/mc/custom-natives"
	if opts.Overrides.Natives != want {
		t.Errorf("Overrides.Natives = %q, want %q", opts.Overrides.Natives, want)
	}
}
