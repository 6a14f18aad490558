// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package version resolves a [descriptor.Descriptor] from disk or from
// Mojang's two-stage version manifest (spec component 4.E).
package version

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/foundry-mc/launcher/lib/descriptor"
	"github.com/foundry-mc/launcher/lib/netutil"
)

// DefaultMetaBaseURL is Mojang's version-manifest host.
const DefaultMetaBaseURL = "https://launchermeta.mojang.com"

// ErrUnresolvable is returned when a descriptor exists neither on disk
// nor in the version manifest (spec §4.E, §7 "VersionUnresolvable").
var ErrUnresolvable = errors.New("version: descriptor not found locally and not in the manifest")

// manifestEntry is one entry in Mojang's version_manifest.json.
type manifestEntry struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type manifest struct {
	Versions []manifestEntry `json:"versions"`
}

// Resolver resolves version descriptors.
type Resolver struct {
	HTTPClient  *http.Client
	MetaBaseURL string
}

// NewResolver creates a Resolver with sensible defaults.
func NewResolver(httpClient *http.Client, metaBaseURL string) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if metaBaseURL == "" {
		metaBaseURL = DefaultMetaBaseURL
	}
	return &Resolver{HTTPClient: httpClient, MetaBaseURL: metaBaseURL}
}

// LocalPath returns the on-disk path a version descriptor would live at
// for versionID under root, absent an override.
func LocalPath(root, versionID string) string {
	return filepath.Join(root, "versions", versionID, versionID+".json")
}

// Resolve implements the spec §4.E algorithm: read from disk (the
// override path, or the conventional versions/<id>/<id>.json location)
// if present; otherwise fetch the two-stage manifest. Returns the
// parsed descriptor together with its raw JSON bytes, so the caller can
// persist them verbatim once the client jar has been fetched.
func (r *Resolver) Resolve(ctx context.Context, root, versionID, overridePath string) (*descriptor.Descriptor, []byte, error) {
	localPath := overridePath
	if localPath == "" {
		localPath = LocalPath(root, versionID)
	}

	if data, err := os.ReadFile(localPath); err == nil {
		d, parseErr := descriptor.Parse(data)
		if parseErr != nil {
			return nil, nil, fmt.Errorf("version: parsing local descriptor %s: %w", localPath, parseErr)
		}
		return d, data, nil
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("version: reading local descriptor %s: %w", localPath, err)
	}

	manifestURL := r.MetaBaseURL + "/mc/game/version_manifest.json"
	list, err := r.fetchManifest(ctx, manifestURL)
	if err != nil {
		return nil, nil, err
	}

	var entryURL string
	for _, entry := range list.Versions {
		if entry.ID == versionID {
			entryURL = entry.URL
			break
		}
	}
	if entryURL == "" {
		return nil, nil, fmt.Errorf("%w: %q is not in %s", ErrUnresolvable, versionID, manifestURL)
	}

	data, err := r.fetchJSON(ctx, entryURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fetching %s: %v", ErrUnresolvable, entryURL, err)
	}

	d, err := descriptor.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("version: parsing manifest descriptor from %s: %w", entryURL, err)
	}
	return d, data, nil
}

func (r *Resolver) fetchManifest(ctx context.Context, url string) (*manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("version: building request for %s: %w", url, err)
	}
	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("version: requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("version: %s returned status %d: %s", url, resp.StatusCode, netutil.ErrorBody(resp.Body))
	}

	var list manifest
	if err := netutil.DecodeResponse(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("version: parsing version manifest: %w", err)
	}
	return &list, nil
}

func (r *Resolver) fetchJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d: %s", url, resp.StatusCode, netutil.ErrorBody(resp.Body))
	}
	return netutil.ReadResponse(resp.Body)
}

// Persist writes rawJSON to versions/<versionID>/<versionID>.json under
// root, creating the directory as needed. Called after the client jar
// has been downloaded successfully (spec §4.E side effect); the write
// is idempotent, so re-running the pipeline with the descriptor already
// cached simply rewrites the same bytes.
func Persist(root, versionID string, rawJSON []byte) error {
	path := LocalPath(root, versionID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("version: creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, rawJSON, 0o644); err != nil {
		return fmt.Errorf("version: writing %s: %w", path, err)
	}
	return nil
}
