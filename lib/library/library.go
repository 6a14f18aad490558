// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package library materializes a version's classpath libraries onto
// disk: computing each library's jar path, skipping already-present
// files, and downloading the rest through the bounded-concurrency
// fetcher (spec component 4.G).
package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/foundry-mc/launcher/lib/descriptor"
	"github.com/foundry-mc/launcher/lib/digest"
	"github.com/foundry-mc/launcher/lib/event"
	"github.com/foundry-mc/launcher/lib/fetch"
	"github.com/foundry-mc/launcher/lib/platform"
)

// EventTag labels download-status/download/progress events emitted
// during library materialization.
const EventTag = "classes"

// resolved is one library after path/URL computation, ready to
// download or skip.
type resolved struct {
	name    string
	jarDir  string
	jarPath string
	url     string
	sha1    string
}

// resolve computes name, jarPath and download URL for one library
// (spec §4.G.1, §4.G.3). It returns ok=false when the library carries
// neither a downloads.artifact record nor a url — such libraries are
// dropped silently, matching spec §7's FetchFailed policy for "simple
// libraries without a URL".
func resolve(libraryRoot string, lib descriptor.Library) (resolved, bool) {
	if lib.Downloads != nil && lib.Downloads.Artifact != nil && lib.Downloads.Artifact.Path != "" {
		artifact := lib.Downloads.Artifact
		name := filepath.Base(artifact.Path)
		dir := filepath.Join(libraryRoot, filepath.FromSlash(filepath.Dir(artifact.Path)))
		return resolved{
			name:    name,
			jarDir:  dir,
			jarPath: filepath.Join(dir, name),
			url:     artifact.URL,
			sha1:    artifact.SHA1,
		}, true
	}

	coord, err := ParseCoordinate(lib.Name)
	if err != nil {
		return resolved{}, false
	}
	name := coord.JarName()
	dir := filepath.Join(libraryRoot, filepath.FromSlash(coord.RelativeDir()))

	var url string
	switch {
	case lib.Downloads != nil && lib.Downloads.Artifact != nil && lib.Downloads.Artifact.URL != "":
		url = lib.Downloads.Artifact.URL
	case lib.URL != "":
		url = strings.TrimRight(lib.URL, "/") + "/" + coord.RelativeDir() + "/" + name
	default:
		return resolved{}, false
	}

	sha1 := ""
	if lib.Downloads != nil && lib.Downloads.Artifact != nil {
		sha1 = lib.Downloads.Artifact.SHA1
	}
	return resolved{name: name, jarDir: dir, jarPath: filepath.Join(dir, name), url: url, sha1: sha1}, true
}

// Materialize downloads every non-excluded library in libraries into
// libraryRoot and returns their absolute classpath entries in input
// order; the caller deduplicates (spec §4.G: "the caller deduplicates").
//
// Libraries already present on disk are skipped without a network
// call (spec §4.G.2, and the idempotence property of spec §8).
// Downloads run concurrently up to the fetcher's own semaphore.
func Materialize(ctx context.Context, fetcher *fetch.Fetcher, libraryRoot string, libraries []descriptor.Library, current platform.OS, tracker *event.ProgressTracker) ([]string, error) {
	type job struct {
		r resolved
	}

	classpath := make([]string, len(libraries))
	included := make([]bool, len(libraries))
	var jobs []job

	for i, lib := range libraries {
		if lib.Excluded(current) {
			continue
		}
		r, ok := resolve(libraryRoot, lib)
		if !ok {
			continue
		}
		included[i] = true
		classpath[i] = r.jarPath

		if _, err := os.Stat(r.jarPath); err == nil {
			if tracker != nil {
				tracker.Advance(r.name)
			}
			continue
		}
		jobs = append(jobs, job{r: r})
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
			if err := os.MkdirAll(j.r.jarDir, 0o755); err != nil {
				recordErr(&mu, &firstErr, fmt.Errorf("library: creating %s: %w", j.r.jarDir, err))
				return
			}
			result, err := fetcher.Fetch(ctx, j.r.url, j.r.jarDir, j.r.name, EventTag)
			if err != nil {
				recordErr(&mu, &firstErr, fmt.Errorf("library: fetching %s: %w", j.r.url, err))
				return
			}
			if result.SkippedNotFound {
				recordErr(&mu, &firstErr, fmt.Errorf("library: %s returned 404", j.r.url))
				return
			}
			if j.r.sha1 != "" {
				ok, err := digest.VerifyFile(j.r.jarPath, j.r.sha1)
				if err != nil {
					recordErr(&mu, &firstErr, fmt.Errorf("library: verifying %s: %w", j.r.jarPath, err))
					return
				}
				if !ok {
					recordErr(&mu, &firstErr, fmt.Errorf("library: %s failed hash verification", j.r.jarPath))
					return
				}
			}
			if tracker != nil {
				tracker.Advance(j.r.name)
			}
		}(j)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	result := make([]string, 0, len(classpath))
	for i, included := range included {
		if included {
			result = append(result, classpath[i])
		}
	}
	return result, nil
}

func recordErr(mu *sync.Mutex, dst *error, err error) {
	mu.Lock()
	defer mu.Unlock()
	if *dst == nil {
		*dst = err
	}
}
