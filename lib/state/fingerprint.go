// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package state implements the idempotent resume manifest: a small
// on-disk record of the last fully-verified launch's input fingerprint,
// letting a second Launch call with identical inputs skip the
// per-object asset verification pass (spec §8 invariant 5). The
// fingerprint covers the resolved descriptor bytes, so version
// resolution always runs first.
package state

import (
	"encoding/hex"

	"github.com/foundry-mc/launcher/lib/codec"
	"github.com/foundry-mc/launcher/lib/launchopts"
	"github.com/zeebo/blake3"
)

// Fingerprint is a 32-byte BLAKE3 digest identifying one resolved
// (LaunchOptions, VersionDescriptor) pair.
type Fingerprint [32]byte

// String returns the fingerprint as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// manifestDomainKey domain-separates the resume manifest's fingerprint
// from every other BLAKE3 use in this codebase, so identical input
// bytes hashed for a different purpose never collide with a manifest
// key. Changing this key invalidates every existing resume manifest.
var manifestDomainKey = [32]byte{
	'f', 'o', 'u', 'n', 'd', 'r', 'y', '.', 'm', 'c', 'l', 'a', 'u', 'n', 'c', 'h',
	'.', 'r', 'e', 's', 'u', 'm', 'e', '-', 'm', 'a', 'n', 'i', 'f', 'e', 's', 't',
}

// fingerprintInput is the CBOR-serialized payload hashed into a
// Fingerprint: the resolved options plus the raw descriptor bytes they
// resolved to.
type fingerprintInput struct {
	Options    *launchopts.Options `cbor:"options"`
	Descriptor []byte              `cbor:"descriptor"`
}

// Compute hashes opts and the raw VersionDescriptor JSON they resolved
// to into a single Fingerprint. Two launches with byte-identical
// options and descriptor bytes always produce the same fingerprint;
// any change to either — a different version, a different memory
// setting, an upstream descriptor update — changes it.
func Compute(opts *launchopts.Options, descriptorJSON []byte) (Fingerprint, error) {
	payload, err := codec.Marshal(fingerprintInput{Options: opts, Descriptor: descriptorJSON})
	if err != nil {
		return Fingerprint{}, err
	}

	hasher, err := blake3.NewKeyed(manifestDomainKey[:])
	if err != nil {
		return Fingerprint{}, err
	}
	hasher.Write(payload)

	var out Fingerprint
	copy(out[:], hasher.Sum(nil))
	return out, nil
}
