// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "object")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestHashFileKnownVector(t *testing.T) {
	// SHA-1("hello") is a well known vector.
	path := writeTemp(t, "hello")
	digest, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	const want = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"
	if got := Format(digest); got != want {
		t.Errorf("HashFile(%q) = %s, want %s", contents(path), got, want)
	}
}

func contents(path string) string {
	data, _ := os.ReadFile(path)
	return string(data)
}

func TestVerifyFileMismatchIsBooleanNotError(t *testing.T) {
	path := writeTemp(t, "hello")
	ok, err := VerifyFile(path, "0000000000000000000000000000000000000000")
	if err != nil {
		t.Fatalf("VerifyFile returned error for mismatch: %v", err)
	}
	if ok {
		t.Errorf("VerifyFile reported match for an intentionally wrong digest")
	}
}

func TestVerifyFileMatch(t *testing.T) {
	path := writeTemp(t, "hello")
	ok, err := VerifyFile(path, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d")
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if !ok {
		t.Errorf("VerifyFile reported mismatch for the correct digest")
	}
}

func TestVerifyFileMissingReturnsFalseNoError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	ok, err := VerifyFile(missing, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d")
	if err != nil {
		t.Fatalf("VerifyFile on missing file returned error: %v", err)
	}
	if ok {
		t.Errorf("VerifyFile reported match for a missing file")
	}
}

func TestParseRejectsWrongLength(t *testing.T) {
	if _, err := Parse("deadbeef"); err == nil {
		t.Errorf("Parse accepted a short hex string")
	}
}
