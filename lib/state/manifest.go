// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/foundry-mc/launcher/lib/codec"
)

// Manifest records the fingerprint of the last launch that completed
// every materialization phase successfully.
type Manifest struct {
	Fingerprint Fingerprint `cbor:"fingerprint"`
	VersionID   string      `cbor:"version_id"`
}

// Path returns the resume manifest's location under root.
func Path(root string) string {
	return filepath.Join(root, ".mclaunch", "state.cbor")
}

// Load reads the resume manifest from root, if present. A missing file
// is not an error — it returns a nil Manifest, meaning "no prior
// verified run".
func Load(root string) (*Manifest, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("state: reading %s: %w", Path(root), err)
	}

	var manifest Manifest
	if err := codec.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("state: parsing %s: %w", Path(root), err)
	}
	return &manifest, nil
}

// Save atomically writes manifest to root's resume manifest path:
// encode, write to a temp file in the same directory, fsync, then
// rename into place, so a reader never observes a partial write.
func Save(root string, manifest Manifest) error {
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("state: creating %s: %w", filepath.Dir(path), err)
	}

	data, err := codec.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("state: encoding manifest: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("state: creating %s: %w", tempPath, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("state: writing %s: %w", tempPath, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("state: syncing %s: %w", tempPath, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("state: closing %s: %w", tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("state: renaming %s into place: %w", tempPath, err)
	}
	return nil
}

// Matches reports whether a previously saved manifest is present and
// its fingerprint equals fp — the condition under which Launch skips
// the per-object asset verification pass.
func Matches(manifest *Manifest, fp Fingerprint) bool {
	return manifest != nil && manifest.Fingerprint == fp
}
