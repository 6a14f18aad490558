// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package launch orchestrates the full launch pipeline: Java probe,
// client-package extraction, version resolution, the optional Forge or
// custom overlay, native/library/asset materialization, argument
// synthesis, and finally spawning the game child process (spec
// component 4.L).
package launch

import "errors"

// Sentinel error kinds the caller can match with errors.Is (spec §7).
var (
	// ErrJavaUnavailable means the configured java executable failed
	// its "-version" probe. Fatal; the caller should surface it and
	// treat the launch as a close(1).
	ErrJavaUnavailable = errors.New("launch: java executable failed its version probe")

	// ErrVersionUnresolvable means the requested version exists
	// neither on disk nor in the upstream manifest. Fatal.
	ErrVersionUnresolvable = errors.New("launch: version descriptor could not be resolved")

	// ErrExtractionFailed means a ZIP archive itself could not be opened
	// or read — not a single malformed entry inside it, which archive.Extract
	// already tolerates by logging and continuing.
	ErrExtractionFailed = errors.New("launch: archive extraction failed")

	// ErrFetchFailed means a required file exhausted its retry budget
	// or is missing after every fallback repo was tried. For asset
	// objects this is always fatal; for simple libraries without a URL
	// it is never returned — those are skipped silently upstream.
	ErrFetchFailed = errors.New("launch: fetch failed")

	// ErrHashMismatch means a file's content hash did not match the
	// expected digest even after one re-download attempt.
	ErrHashMismatch = errors.New("launch: hash mismatch after retry")

	// ErrInstallerFailed means a pre-launch installer or the Forge
	// wrapper subprocess exited non-zero.
	ErrInstallerFailed = errors.New("launch: installer subprocess failed")
)
