// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package forge layers a Forge mod loader onto a resolved vanilla
// descriptor, using whichever of the two mutually exclusive Forge
// distribution shapes the supplied archive turns out to be (spec
// component 4.J).
package forge

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/foundry-mc/launcher/lib/descriptor"
	"github.com/foundry-mc/launcher/lib/event"
	"github.com/foundry-mc/launcher/lib/fetch"
	"github.com/foundry-mc/launcher/lib/library"
	"github.com/foundry-mc/launcher/lib/platform"
	"github.com/foundry-mc/launcher/lib/version"
)

// Default Maven bases tried, in order, when a legacy Forge library
// carries no explicit download URL (spec §4.J, §6).
const (
	DefaultMavenForge    = "http://files.minecraftforge.net/maven/"
	DefaultRepoForge     = "https://libraries.minecraft.net/"
	DefaultFallbackMaven = "https://search.maven.org/remotecontent?filepath="
	DefaultMavenCentral  = "https://repo1.maven.org/maven2/"
)

// WrapperGroup and WrapperArtifact are the Maven coordinate of the
// bundled ForgeWrapper tool used to drive modern Forge installer JARs.
const WrapperGroup = "io.github.zekerzhayard"
const WrapperArtifact = "ForgeWrapper"

// Overlay is the result of layering Forge atop vanilla: the resolved
// main class and a classpath prefix to place before the vanilla
// libraries (spec §4.K's "Forge legacy" classpath shape).
type Overlay struct {
	MainClass       string
	ClasspathPrefix []string
	Descriptor      *descriptor.Descriptor
}

// DescriptorPath returns the path Forge's own version.json is written
// to or read from under root.
func DescriptorPath(root, versionID string) string {
	return filepath.Join(root, "forge", versionID, "version.json")
}

// IsModernInstaller reports whether jarPath is a modern Forge installer
// (carries an install_profile.json entry) rather than a legacy
// universal jar (spec §4.J).
func IsModernInstaller(jarPath string) (bool, error) {
	reader, err := zip.OpenReader(jarPath)
	if err != nil {
		return false, fmt.Errorf("forge: opening %s: %w", jarPath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name == "install_profile.json" {
			return true, nil
		}
	}
	return false, nil
}

// extractVersionJSON reads the version.json entry out of a Forge jar.
func extractVersionJSON(jarPath string) ([]byte, error) {
	reader, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, fmt.Errorf("forge: opening %s: %w", jarPath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "version.json" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("forge: opening version.json in %s: %w", jarPath, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("forge: %s contains no version.json entry", jarPath)
}

// OverlayLegacy implements the legacy-universal-jar path: extract
// Forge's version.json, persist it under forge/<version-id>/, and
// materialize its libraries against the configured mirror, the default
// Forge Maven, and a fallback Maven search endpoint, tried in that
// order per library (spec §4.J first bullet). The returned
// ClasspathPrefix leads with forgeJarPath itself, followed by Forge's
// own materialized libraries (spec §4.K: forge jar, forge libs,
// vanilla libs, client jar) — the legacy main class lives in the jar,
// not in any of its dependencies.
func OverlayLegacy(ctx context.Context, fetcher *fetch.Fetcher, libraryRoot, root, versionID, forgeJarPath, mavenMirror string, current platform.OS, tracker *event.ProgressTracker) (*Overlay, error) {
	raw, err := extractVersionJSON(forgeJarPath)
	if err != nil {
		return nil, err
	}
	forgeDescriptor, err := descriptor.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("forge: parsing extracted version.json: %w", err)
	}

	path := DescriptorPath(root, versionID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("forge: creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("forge: writing %s: %w", path, err)
	}

	var repos []string
	if mavenMirror != "" {
		repos = append(repos, mavenMirror)
	}
	repos = append(repos, DefaultMavenForge, DefaultFallbackMaven)

	classpath, err := materializeWithFallbackRepos(ctx, fetcher, libraryRoot, forgeDescriptor.Libraries, current, repos, tracker)
	if err != nil {
		return nil, err
	}
	classpath = append([]string{forgeJarPath}, classpath...)

	return &Overlay{
		MainClass:       forgeDescriptor.MainClass,
		ClasspathPrefix: classpath,
		Descriptor:      forgeDescriptor,
	}, nil
}

// materializeWithFallbackRepos resolves each library the normal way
// when it already carries a URL; for libraries with neither a
// downloads.artifact nor a url, it tries assigning each repo in turn
// as the library's simple-repository base until one succeeds. A
// library that exhausts every repo is skipped silently, matching the
// "simple libraries without a URL" policy of spec §7.
func materializeWithFallbackRepos(ctx context.Context, fetcher *fetch.Fetcher, libraryRoot string, libs []descriptor.Library, current platform.OS, repos []string, tracker *event.ProgressTracker) ([]string, error) {
	var classpath []string

	for _, lib := range libs {
		if lib.Excluded(current) {
			continue
		}
		if (lib.Downloads != nil && lib.Downloads.Artifact != nil && lib.Downloads.Artifact.URL != "") || lib.URL != "" {
			entry, err := library.Materialize(ctx, fetcher, libraryRoot, []descriptor.Library{lib}, current, tracker)
			if err != nil {
				return nil, err
			}
			classpath = append(classpath, entry...)
			continue
		}

		var resolved []string
		for _, repo := range repos {
			attempt := lib
			attempt.URL = repo
			entry, err := library.Materialize(ctx, fetcher, libraryRoot, []descriptor.Library{attempt}, current, tracker)
			if err == nil && len(entry) > 0 {
				resolved = entry
				break
			}
		}
		if resolved == nil {
			continue
		}
		classpath = append(classpath, resolved...)
	}

	return classpath, nil
}

// RunWrapper fetches the bundled ForgeWrapper tool (a well-known Maven
// artifact) and invokes it against a modern Forge installer jar,
// blocking until the subprocess exits (spec §4.J second bullet). A
// non-zero exit is an InstallerFailed condition and propagates as a
// fatal error (spec §7) — this replaces the distilled source's
// getForgedWrapped, which built the subprocess invocation but never
// ran it.
func RunWrapper(ctx context.Context, fetcher *fetch.Fetcher, javaPath, libraryRoot, root, forgeJarPath, wrapperVersion string) error {
	coord := library.Coordinate{Group: WrapperGroup, Artifact: WrapperArtifact, Version: wrapperVersion}
	wrapperDir := filepath.Join(libraryRoot, filepath.FromSlash(coord.RelativeDir()))
	wrapperPath := filepath.Join(wrapperDir, coord.JarName())

	if _, err := os.Stat(wrapperPath); err != nil {
		url := DefaultMavenCentral + coord.RelativeDir() + "/" + coord.JarName()
		if _, err := fetcher.Fetch(ctx, url, wrapperDir, coord.JarName(), "forge-wrapper"); err != nil {
			return fmt.Errorf("forge: fetching ForgeWrapper %s: %w", wrapperVersion, err)
		}
	}

	saveTo := filepath.Join(libraryRoot, "io", "github", "zekerzhayard", "ForgeWrapper", wrapperVersion)
	if err := os.MkdirAll(saveTo, 0o755); err != nil {
		return fmt.Errorf("forge: creating %s: %w", saveTo, err)
	}

	cmd := exec.CommandContext(ctx, javaPath, "-jar", wrapperPath,
		"--installer="+forgeJarPath,
		"--instance="+root,
		"--saveTo="+saveTo,
	)
	cmd.Dir = root
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("forge: ForgeWrapper failed: %w (output: %s)", err, output)
	}
	return nil
}

// LoadModernOverlay reads the version.json ForgeWrapper produced
// (spec §4.J: "read forge/<version-id>/version.json as a custom
// descriptor layered on vanilla"), reusing the version resolver's
// local-file path so no network call happens when, as expected, the
// file is already present.
func LoadModernOverlay(ctx context.Context, root, versionID string) (*descriptor.Descriptor, []byte, error) {
	resolver := version.NewResolver(nil, "")
	return resolver.Resolve(ctx, root, versionID, DescriptorPath(root, versionID))
}
