// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package assets materializes a version's asset index and the
// content-addressed objects it references, optionally mirroring them
// into the flat legacy tree older clients expect (spec component 4.I).
package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/foundry-mc/launcher/lib/descriptor"
	"github.com/foundry-mc/launcher/lib/digest"
	"github.com/foundry-mc/launcher/lib/event"
	"github.com/foundry-mc/launcher/lib/fetch"
)

// DefaultResourceBaseURL is Mojang's asset object CDN (spec §6).
const DefaultResourceBaseURL = "https://resources.download.minecraft.net"

// EventTag and LegacyEventTag label progress events for the two
// sub-phases of asset materialization (spec §4.I.4, §4.I.5).
const (
	EventTag       = "assets"
	LegacyEventTag = "assets-copy"
)

// IndexPath returns the on-disk path of an asset index document.
func IndexPath(root, assetIndexID string) string {
	return filepath.Join(root, "assets", "indexes", assetIndexID+".json")
}

// ObjectPath returns the on-disk path of a content-addressed asset
// object under root.
func ObjectPath(root, hash string) string {
	return filepath.Join(root, "assets", "objects", filepath.FromSlash(descriptor.ObjectPath(hash)))
}

// LegacyPath returns the on-disk path an asset object is mirrored to
// for legacy-asset versions.
func LegacyPath(root, logicalName string) string {
	return filepath.Join(root, "assets", "legacy", filepath.FromSlash(logicalName))
}

// FetchIndex downloads and parses the asset index for ref if it is not
// already present on disk (spec §4.I.1).
func FetchIndex(ctx context.Context, fetcher *fetch.Fetcher, root string, ref descriptor.AssetIndexRef) (*descriptor.AssetIndex, error) {
	path := IndexPath(root, ref.ID)
	if data, err := os.ReadFile(path); err == nil {
		return descriptor.ParseAssetIndex(data)
	}

	destDir := filepath.Dir(path)
	if _, err := fetcher.Fetch(ctx, ref.URL, destDir, ref.ID+".json", EventTag); err != nil {
		return nil, fmt.Errorf("assets: fetching index %s: %w", ref.URL, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assets: reading fetched index %s: %w", path, err)
	}
	return descriptor.ParseAssetIndex(data)
}

// Materialize fetches every object in index that is missing or hash-
// mismatched on disk (spec §4.I.3), and, when legacy is true, mirrors
// each object into the flat assets/legacy/ tree (spec §4.I.5).
// Object fetches run concurrently up to the fetcher's own semaphore.
func Materialize(ctx context.Context, fetcher *fetch.Fetcher, resourceBaseURL, root string, index *descriptor.AssetIndex, legacy bool, tracker, legacyTracker *event.ProgressTracker) error {
	if resourceBaseURL == "" {
		resourceBaseURL = DefaultResourceBaseURL
	}

	type job struct {
		logicalName string
		hash        string
	}
	var jobs []job
	for logicalName, obj := range index.Objects {
		jobs = append(jobs, job{logicalName: logicalName, hash: obj.Hash})
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

			objPath := ObjectPath(root, j.hash)
			needsFetch := true
			if ok, err := digest.VerifyFile(objPath, j.hash); err == nil && ok {
				needsFetch = false
			}

			if needsFetch {
				prefix := j.hash[:2]
				url := resourceBaseURL + "/" + prefix + "/" + j.hash
				destDir := filepath.Dir(objPath)
				if _, err := fetcher.Fetch(ctx, url, destDir, j.hash, EventTag); err != nil {
					recordErr(&mu, &firstErr, fmt.Errorf("assets: fetching object %s (%s): %w", j.logicalName, j.hash, err))
					return
				}
				ok, err := digest.VerifyFile(objPath, j.hash)
				if err != nil {
					recordErr(&mu, &firstErr, fmt.Errorf("assets: verifying object %s: %w", j.logicalName, err))
					return
				}
				if !ok {
					recordErr(&mu, &firstErr, fmt.Errorf("assets: object %s failed hash verification after fetch", j.logicalName))
					return
				}
			}

			if tracker != nil {
				tracker.Advance(j.logicalName)
			}

			if legacy {
				if err := copyToLegacy(objPath, LegacyPath(root, j.logicalName)); err != nil {
					recordErr(&mu, &firstErr, fmt.Errorf("assets: mirroring %s to legacy tree: %w", j.logicalName, err))
					return
				}
				if legacyTracker != nil {
					legacyTracker.Advance(j.logicalName)
				}
			}
		}(j)
	}
	wg.Wait()

	return firstErr
}

func copyToLegacy(srcPath, dstPath string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dstPath), err)
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copying %s to %s: %w", srcPath, dstPath, err)
	}
	return nil
}

func recordErr(mu *sync.Mutex, dst *error, err error) {
	mu.Lock()
	defer mu.Unlock()
	if *dst == nil {
		*dst = err
	}
}
