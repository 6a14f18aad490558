// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package natives

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/foundry-mc/launcher/lib/descriptor"
	"github.com/foundry-mc/launcher/lib/digest"
	"github.com/foundry-mc/launcher/lib/event"
	"github.com/foundry-mc/launcher/lib/fetch"
	"github.com/foundry-mc/launcher/lib/platform"
)

func buildNativeZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("liblwjgl.so")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := f.Write([]byte("shared-object-bytes")); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestMaterializeExtractsSelectedClassifier(t *testing.T) {
	zipBytes := buildNativeZip(t)
	sum, err := digest.HashFile(writeBytesToTemp(t, zipBytes))
	if err != nil {
		t.Fatalf("hashing fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipBytes)
	}))
	defer server.Close()

	root := t.TempDir()
	libs := []descriptor.Library{
		{
			Name: "org.lwjgl:lwjgl-platform:2.9.4",
			Downloads: &descriptor.LibraryDownloads{
				Classifiers: map[string]descriptor.Artifact{
					"natives-linux": {
						Path: "org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar",
						URL:  server.URL,
						SHA1: digest.Format(sum),
					},
				},
			},
		},
	}

	f := fetch.New(2, event.Discard)
	err = Materialize(context.Background(), f, root, "1.8.9", libs, platform.Linux, nil, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	dest := Dir(root, "1.8.9")
	data, err := os.ReadFile(filepath.Join(dest, "liblwjgl.so"))
	if err != nil {
		t.Fatalf("reading extracted native: %v", err)
	}
	if string(data) != "shared-object-bytes" {
		t.Errorf("extracted content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(dest, "lwjgl-platform-2.9.4-natives-linux.jar")); err == nil {
		t.Error("archive was not deleted after extraction")
	}
}

func TestMaterializeSkipsWhenDirNonEmpty(t *testing.T) {
	root := t.TempDir()
	dest := Dir(root, "1.8.9")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dest, "existing.so"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seeding existing native: %v", err)
	}

	libs := []descriptor.Library{
		{
			Name: "org.lwjgl:lwjgl-platform:2.9.4",
			Downloads: &descriptor.LibraryDownloads{
				Classifiers: map[string]descriptor.Artifact{
					"natives-linux": {URL: "http://unreachable.invalid", Path: "x.jar"},
				},
			},
		},
	}

	f := fetch.New(2, event.Discard)
	if err := Materialize(context.Background(), f, root, "1.8.9", libs, platform.Linux, nil, nil); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
}

func TestClassifierForPrefersOSXOverMacOSFallback(t *testing.T) {
	classifiers := map[string]descriptor.Artifact{
		"natives-osx":   {Path: "osx.jar"},
		"natives-macos": {Path: "macos.jar"},
	}
	art, key, ok := classifierFor(classifiers, platform.OSX)
	if !ok || key != "natives-osx" || art.Path != "osx.jar" {
		t.Errorf("classifierFor = %+v, %q, %v; want natives-osx preferred", art, key, ok)
	}
}

func TestClassifierForFallsBackToMacOS(t *testing.T) {
	classifiers := map[string]descriptor.Artifact{
		"natives-macos": {Path: "macos.jar"},
	}
	art, key, ok := classifierFor(classifiers, platform.OSX)
	if !ok || key != "natives-macos" || art.Path != "macos.jar" {
		t.Errorf("classifierFor = %+v, %q, %v; want natives-macos fallback", art, key, ok)
	}
}

func writeBytesToTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.zip")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}
