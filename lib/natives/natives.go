// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package natives materializes a version's platform-specific native
// library archives — downloading, verifying, and extracting them flat
// into a per-version natives directory (spec component 4.H).
package natives

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/foundry-mc/launcher/lib/archive"
	"github.com/foundry-mc/launcher/lib/descriptor"
	"github.com/foundry-mc/launcher/lib/digest"
	"github.com/foundry-mc/launcher/lib/event"
	"github.com/foundry-mc/launcher/lib/fetch"
	"github.com/foundry-mc/launcher/lib/platform"
)

// EventTag labels download-status/download/progress events emitted
// during native materialization.
const EventTag = "natives"

// Dir returns the per-version native library directory under root.
func Dir(root, versionID string) string {
	return filepath.Join(root, "natives", versionID)
}

// classifierFor selects the native-jar classifier key for current,
// preferring "natives-osx" and falling back to "natives-macos" on osx
// (spec §4.H.1: newer manifests renamed the osx classifier).
func classifierFor(classifiers map[string]descriptor.Artifact, current platform.OS) (descriptor.Artifact, string, bool) {
	switch current {
	case platform.Windows:
		a, ok := classifiers["natives-windows"]
		return a, "natives-windows", ok
	case platform.OSX:
		if a, ok := classifiers["natives-osx"]; ok {
			return a, "natives-osx", ok
		}
		a, ok := classifiers["natives-macos"]
		return a, "natives-macos", ok
	default:
		a, ok := classifiers["natives-linux"]
		return a, "natives-linux", ok
	}
}

// Materialize downloads, verifies, and extracts every native library
// archive in libraries for the current platform into
// Dir(root, versionID). If that directory already exists and is
// non-empty, the entire phase is skipped (spec §4.H idempotence).
func Materialize(ctx context.Context, fetcher *fetch.Fetcher, root, versionID string, libraries []descriptor.Library, current platform.OS, tracker *event.ProgressTracker, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	dest := Dir(root, versionID)

	if entries, err := os.ReadDir(dest); err == nil && len(entries) > 0 {
		return nil
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("natives: creating %s: %w", dest, err)
	}

	type job struct {
		name string
		art  descriptor.Artifact
	}
	var jobs []job
	for _, lib := range libraries {
		if lib.Excluded(current) || !lib.HasNatives() {
			continue
		}
		artifact, _, ok := classifierFor(lib.Downloads.Classifiers, current)
		if !ok {
			continue
		}
		jobs = append(jobs, job{name: filepath.Base(artifact.Path), art: artifact})
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()

			name := j.name
			if name == "" {
				name = filepath.Base(j.art.URL)
			}
			if _, err := fetcher.Fetch(ctx, j.art.URL, dest, name, EventTag); err != nil {
				recordErr(&mu, &firstErr, fmt.Errorf("natives: fetching %s: %w", j.art.URL, err))
				return
			}

			archivePath := filepath.Join(dest, name)
			if j.art.SHA1 != "" {
				ok, err := digest.VerifyFile(archivePath, j.art.SHA1)
				if err != nil {
					recordErr(&mu, &firstErr, fmt.Errorf("natives: verifying %s: %w", archivePath, err))
					return
				}
				if !ok {
					os.Remove(archivePath)
					if _, err := fetcher.Fetch(ctx, j.art.URL, dest, name, EventTag); err != nil {
						recordErr(&mu, &firstErr, fmt.Errorf("natives: re-fetching %s after hash mismatch: %w", j.art.URL, err))
						return
					}
					ok, err = digest.VerifyFile(archivePath, j.art.SHA1)
					if err != nil {
						recordErr(&mu, &firstErr, fmt.Errorf("natives: verifying %s: %w", archivePath, err))
						return
					}
					if !ok {
						recordErr(&mu, &firstErr, fmt.Errorf("natives: %s failed hash verification after retry", archivePath))
						return
					}
				}
			}

			if err := archive.Extract(archivePath, dest, true, logger); err != nil {
				logger.Warn("natives: extraction failed, tolerating malformed archive", "archive", archivePath, "error", err)
			}
			os.Remove(archivePath)

			if tracker != nil {
				tracker.Advance(name)
			}
		}(j)
	}
	wg.Wait()

	return firstErr
}

func recordErr(mu *sync.Mutex, dst *error, err error) {
	mu.Lock()
	defer mu.Unlock()
	if *dst == nil {
		*dst = err
	}
}
