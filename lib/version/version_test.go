// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const sampleDescriptor = `{
	"id": "1.19.2",
	"mainClass": "net.minecraft.client.main.Main",
	"assets": "7",
	"assetIndex": {"id": "7", "url": "https://example.test/7.json", "sha1": "a", "size": 1},
	"downloads": {"client": {"url": "https://example.test/client.jar", "sha1": "b", "size": 2}}
}`

func TestResolveReadsLocalDescriptorWithoutNetwork(t *testing.T) {
	root := t.TempDir()
	localPath := LocalPath(root, "1.19.2")
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(localPath, []byte(sampleDescriptor), 0o644); err != nil {
		t.Fatalf("writing local descriptor: %v", err)
	}

	resolver := NewResolver(nil, "http://unreachable.invalid")
	d, raw, err := resolver.Resolve(context.Background(), root, "1.19.2", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ID != "1.19.2" {
		t.Errorf("ID = %q, want 1.19.2", d.ID)
	}
	if len(raw) == 0 {
		t.Error("Resolve returned empty raw JSON for a local descriptor")
	}
}

func TestResolveFetchesTwoStageManifest(t *testing.T) {
	var versionServerURL string
	versionServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleDescriptor))
	}))
	defer versionServer.Close()
	versionServerURL = versionServer.URL

	manifestServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"versions": [{"id": "1.19.2", "url": "` + versionServerURL + `"}]}`))
	}))
	defer manifestServer.Close()

	root := t.TempDir()
	resolver := NewResolver(nil, manifestServer.URL)
	d, _, err := resolver.Resolve(context.Background(), root, "1.19.2", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ID != "1.19.2" {
		t.Errorf("ID = %q, want 1.19.2", d.ID)
	}
}

func TestResolveUnresolvableVersion(t *testing.T) {
	manifestServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"versions": [{"id": "1.20.0", "url": "https://example.test/x.json"}]}`))
	}))
	defer manifestServer.Close()

	root := t.TempDir()
	resolver := NewResolver(nil, manifestServer.URL)
	_, _, err := resolver.Resolve(context.Background(), root, "1.19.2", "")
	if err == nil {
		t.Fatal("Resolve succeeded for a version absent from both disk and the manifest")
	}
}

func TestPersistWritesDescriptorBesideJar(t *testing.T) {
	root := t.TempDir()
	if err := Persist(root, "1.19.2", []byte(sampleDescriptor)); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	data, err := os.ReadFile(LocalPath(root, "1.19.2"))
	if err != nil {
		t.Fatalf("reading persisted descriptor: %v", err)
	}
	if string(data) != sampleDescriptor {
		t.Errorf("persisted content mismatch")
	}
}
