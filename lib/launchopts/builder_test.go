// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package launchopts

import (
	"path/filepath"
	"testing"
)

func TestBuildDerivesPathsFromRootAndVersion(t *testing.T) {
	root := t.TempDir()
	opts, err := NewBuilder("").
		WithRoot(root).
		WithVersion("1.20.1", "release", "").
		WithJavaPath(fakeJavaPath(t)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	wantJar := filepath.Join(root, "versions", "1.20.1", "1.20.1.jar")
	if opts.Overrides.MinecraftJar != wantJar {
		t.Errorf("MinecraftJar = %q, want %q", opts.Overrides.MinecraftJar, wantJar)
	}
	if opts.Overrides.LibraryRoot != filepath.Join(root, "libraries") {
		t.Errorf("LibraryRoot = %q", opts.Overrides.LibraryRoot)
	}
}

func TestBuildUsesCustomVersionForDerivedPaths(t *testing.T) {
	root := t.TempDir()
	opts, err := NewBuilder("").
		WithRoot(root).
		WithVersion("1.20.1", "release", "1.20.1-forge-47.2.0").
		WithJavaPath(fakeJavaPath(t)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	wantJar := filepath.Join(root, "versions", "1.20.1-forge-47.2.0", "1.20.1-forge-47.2.0.jar")
	if opts.Overrides.MinecraftJar != wantJar {
		t.Errorf("MinecraftJar = %q, want %q", opts.Overrides.MinecraftJar, wantJar)
	}
}

func TestBuildRequiresRoot(t *testing.T) {
	_, err := NewBuilder("").WithVersion("1.20.1", "release", "").Build()
	if err == nil {
		t.Error("expected an error when root is unset")
	}
}

func TestBuildRequiresVersionNumber(t *testing.T) {
	_, err := NewBuilder("").WithRoot(t.TempDir()).Build()
	if err == nil {
		t.Error("expected an error when version.number is unset")
	}
}

func TestBuildRejectsWindowWithoutSizeOrFullscreen(t *testing.T) {
	_, err := NewBuilder("").
		WithRoot(t.TempDir()).
		WithVersion("1.20.1", "release", "").
		WithJavaPath(fakeJavaPath(t)).
		WithWindow(Window{}).
		Build()
	if err == nil {
		t.Error("expected an error for a zero-value window")
	}
}

func TestBuildResolvesJavaPathToAbsolute(t *testing.T) {
	javaPath := fakeJavaPath(t)
	opts, err := NewBuilder("").
		WithRoot(t.TempDir()).
		WithVersion("1.20.1", "release", "").
		WithJavaPath(javaPath).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !filepath.IsAbs(opts.JavaPath) {
		t.Errorf("JavaPath = %q, want an absolute path", opts.JavaPath)
	}
}

// fakeJavaPath writes an executable stub so resolveJavaPath succeeds
// without depending on a real JDK being installed on the test host.
func fakeJavaPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "java")
	if err := writeExecutable(path); err != nil {
		t.Fatalf("writing fake java: %v", err)
	}
	return path
}
