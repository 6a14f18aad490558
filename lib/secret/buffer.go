// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret protects the Mojang access token supplied in
// [Authorization] for the lifetime of one launch. The token passes
// through argument synthesis into the child process's command line, but
// between resolution and spawn it sits in memory the orchestrator
// controls — memory a heap-scanning tool, a core dump, or a swapped page
// could expose.
//
// Buffer allocates that memory outside the Go heap via
// mmap(MAP_ANONYMOUS), locks it into physical RAM via mlock (preventing
// swap), and marks it excluded from core dumps via madvise(MADV_DONTDUMP).
// On Close the memory is zeroed, unlocked, and unmapped. Because the
// memory lives outside the Go heap, the garbage collector cannot copy or
// relocate it, so no stale copy of the token survives a GC cycle.
package secret

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer holds sensitive data in memory that is locked against swapping,
// excluded from core dumps, and zeroed on close. A Buffer must not be
// copied after creation. Close releases the memory; after Close, any
// access panics. Close is idempotent.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	length int
	closed bool
}

// New allocates a protected buffer of the given size.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}

	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		// Fatal: a Buffer is always excluded from core dumps, so a
		// kernel without MADV_DONTDUMP support gets no Buffer at all.
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	return &Buffer{data: data, length: size}, nil
}

// NewFromString creates a protected buffer holding token, the common
// entry point for wrapping an Authorization.AccessToken supplied by the
// caller. The source string is not mutated (Go strings are immutable),
// so unlike NewFromBytes this cannot zero the caller's copy — callers
// that read the token from an external source into a []byte should
// prefer NewFromBytes and let it zero that slice.
func NewFromString(token string) (*Buffer, error) {
	return NewFromBytes([]byte(token))
}

// NewFromBytes creates a protected buffer from existing data. The
// source bytes are copied into the protected region and then zeroed in
// place, so the caller's original slice no longer holds the secret.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}

	copy(buffer.data, source)
	for index := range source {
		source[index] = 0
	}

	return buffer, nil
}

// Bytes returns the secret data. The returned slice points directly into
// the mmap region — do not retain it past the Buffer's lifetime. Panics
// if the buffer has been closed.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data[:b.length]
}

// String returns the secret data as a heap-allocated string, for the one
// place it must cross an API boundary that requires a string: the
// substituted ${auth_access_token} / ${auth_session} argument token.
// Panics if the buffer has been closed.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.data[:b.length])
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// Close zeros the buffer contents, unlocks and unmaps the memory. After
// Close, any access via Bytes or String panics. Close is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for index := range b.data {
		b.data[index] = 0
	}

	var firstError error
	if err := unix.Munlock(b.data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(b.data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}

	b.data = nil
	return firstError
}
