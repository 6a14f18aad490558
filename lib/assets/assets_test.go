// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/foundry-mc/launcher/lib/descriptor"
	"github.com/foundry-mc/launcher/lib/event"
	"github.com/foundry-mc/launcher/lib/fetch"
)

// sha1("hello") = aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d
const helloHash = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"

func TestFetchIndexDownloadsWhenAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"objects": {"minecraft/sounds/a.ogg": {"hash": "` + helloHash + `", "size": 5}}}`))
	}))
	defer server.Close()

	root := t.TempDir()
	f := fetch.New(2, event.Discard)
	index, err := FetchIndex(context.Background(), f, root, descriptor.AssetIndexRef{ID: "7", URL: server.URL})
	if err != nil {
		t.Fatalf("FetchIndex: %v", err)
	}
	if len(index.Objects) != 1 {
		t.Fatalf("index.Objects = %v, want 1 entry", index.Objects)
	}
	if _, err := os.Stat(IndexPath(root, "7")); err != nil {
		t.Errorf("index was not persisted to disk: %v", err)
	}
}

func TestFetchIndexReadsFromDiskWithoutNetwork(t *testing.T) {
	root := t.TempDir()
	path := IndexPath(root, "7")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"objects": {}}`), 0o644); err != nil {
		t.Fatalf("seeding index: %v", err)
	}

	f := fetch.New(2, event.Discard)
	index, err := FetchIndex(context.Background(), f, root, descriptor.AssetIndexRef{ID: "7", URL: "http://unreachable.invalid"})
	if err != nil {
		t.Fatalf("FetchIndex: %v", err)
	}
	if index.Objects == nil {
		t.Error("Objects should be non-nil (though possibly empty)")
	}
}

func TestMaterializeFetchesMissingObjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	root := t.TempDir()
	index := &descriptor.AssetIndex{
		Objects: map[string]descriptor.AssetObject{
			"minecraft/sounds/a.ogg": {Hash: helloHash, Size: 5},
		},
	}

	f := fetch.New(2, event.Discard)
	if err := Materialize(context.Background(), f, server.URL, root, index, false, nil, nil); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	data, err := os.ReadFile(ObjectPath(root, helloHash))
	if err != nil {
		t.Fatalf("reading materialized object: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("object content = %q, want %q", data, "hello")
	}
}

func TestMaterializeSkipsObjectsWithCorrectHash(t *testing.T) {
	root := t.TempDir()
	objPath := ObjectPath(root, helloHash)
	if err := os.MkdirAll(filepath.Dir(objPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(objPath, []byte("hello"), 0o644); err != nil {
		t.Fatalf("seeding object: %v", err)
	}

	index := &descriptor.AssetIndex{
		Objects: map[string]descriptor.AssetObject{
			"minecraft/sounds/a.ogg": {Hash: helloHash, Size: 5},
		},
	}

	f := fetch.New(2, event.Discard)
	if err := Materialize(context.Background(), f, "http://unreachable.invalid", root, index, false, nil, nil); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
}

func TestMaterializeMirrorsIntoLegacyTree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	root := t.TempDir()
	index := &descriptor.AssetIndex{
		Objects: map[string]descriptor.AssetObject{
			"minecraft/sounds/a.ogg": {Hash: helloHash, Size: 5},
		},
	}

	f := fetch.New(2, event.Discard)
	if err := Materialize(context.Background(), f, server.URL, root, index, true, nil, nil); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	data, err := os.ReadFile(LegacyPath(root, "minecraft/sounds/a.ogg"))
	if err != nil {
		t.Fatalf("reading legacy mirror: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("legacy content = %q, want %q", data, "hello")
	}
}

func TestMaterializeRefetchesCorruptedObject(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	root := t.TempDir()
	objPath := ObjectPath(root, helloHash)
	if err := os.MkdirAll(filepath.Dir(objPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(objPath, []byte("corrupted-content"), 0o644); err != nil {
		t.Fatalf("seeding corrupted object: %v", err)
	}

	index := &descriptor.AssetIndex{
		Objects: map[string]descriptor.AssetObject{
			"minecraft/sounds/a.ogg": {Hash: helloHash, Size: 5},
		},
	}

	f := fetch.New(2, event.Discard)
	if err := Materialize(context.Background(), f, server.URL, root, index, false, nil, nil); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if requests == 0 {
		t.Error("corrupted object was not re-fetched")
	}
	data, err := os.ReadFile(objPath)
	if err != nil {
		t.Fatalf("reading refetched object: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("object content after refetch = %q, want %q", data, "hello")
	}
}
