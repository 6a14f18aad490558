// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foundry-mc/launcher/lib/clock"
	"github.com/foundry-mc/launcher/lib/event"
)

func TestFetchWritesFileAndEmitsDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload-bytes"))
	}))
	defer server.Close()

	sink := event.NewChannelSink(32)
	f := New(2, sink)
	destDir := t.TempDir()

	result, err := f.Fetch(context.Background(), server.URL, destDir, "file.bin", "classes")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !result.OK {
		t.Fatalf("Fetch result = %+v, want OK", result)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "file.bin"))
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "payload-bytes" {
		t.Errorf("downloaded content = %q, want %q", data, "payload-bytes")
	}

	sink.Close()
	sawDownload := false
	for ev := range sink.C {
		if ev.Kind == event.KindDownload && ev.Download.Name == "file.bin" {
			sawDownload = true
		}
	}
	if !sawDownload {
		t.Error("did not observe a KindDownload event")
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatalf("reading destDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("destDir has %d entries after Fetch, want exactly 1 (no leftover temp file)", len(entries))
	}
}

func TestFetch404ReturnsSkippedNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(2, event.Discard)
	destDir := t.TempDir()

	result, err := f.Fetch(context.Background(), server.URL, destDir, "missing.bin", "classes")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !result.SkippedNotFound {
		t.Errorf("Fetch result = %+v, want SkippedNotFound", result)
	}
	if _, err := os.Stat(filepath.Join(destDir, "missing.bin")); err == nil {
		t.Error("a file was written for a 404 response")
	}
}

func TestFetchDefaultPolicyRetriesExactlyOnce(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := New(2, event.Discard)
	destDir := t.TempDir()

	_, err := f.Fetch(context.Background(), server.URL, destDir, "file.bin", "classes")
	if err == nil {
		t.Fatal("Fetch succeeded against a 500 response")
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("server saw %d attempts, want 2 (one original + one retry)", got)
	}
	if _, statErr := os.Stat(filepath.Join(destDir, "file.bin")); statErr == nil {
		t.Error("a partial file was left behind after exhausted retries")
	}
}

func TestFetchNoRetryPolicyMeansOneAttempt(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := New(2, event.Discard, WithRetry(NoRetryPolicy))
	destDir := t.TempDir()

	_, err := f.Fetch(context.Background(), server.URL, destDir, "file.bin", "classes")
	if err == nil {
		t.Fatal("Fetch succeeded against a 500 response")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("server saw %d attempts, want 1 (NoRetryPolicy)", got)
	}
}

func TestFetchRetryPolicyHonorsCustomAttemptCount(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := New(2, event.Discard, WithRetry(RetryPolicy{Attempts: 4}))
	destDir := t.TempDir()

	_, err := f.Fetch(context.Background(), server.URL, destDir, "file.bin", "classes")
	if err == nil {
		t.Fatal("Fetch succeeded against a 500 response")
	}
	if got := attempts.Load(); got != 4 {
		t.Errorf("server saw %d attempts, want 4", got)
	}
}

func TestFetchRetryPolicyBackoffUsesInjectedClock(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	fakeClock := clock.Fake(time.Now())
	policy := RetryPolicy{Attempts: 2, Backoff: func(attempt int) time.Duration { return 10 * time.Second }}
	f := New(2, event.Discard, WithClock(fakeClock), WithRetry(policy))
	destDir := t.TempDir()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := f.Fetch(context.Background(), server.URL, destDir, "file.bin", "classes"); err != nil {
			t.Errorf("Fetch: %v", err)
		}
	}()

	fakeClock.WaitForTimers(1)
	fakeClock.Advance(10 * time.Second)
	<-done

	if got := attempts.Load(); got != 2 {
		t.Errorf("server saw %d attempts, want 2", got)
	}
}

func TestFetchGlobalConcurrencyCap(t *testing.T) {
	const maxSockets = 2
	var inFlight, maxObserved atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := inFlight.Add(1)
		for {
			observed := maxObserved.Load()
			if current <= observed || maxObserved.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := New(maxSockets, event.Discard)
	destDir := t.TempDir()

	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func(i int) {
			f.Fetch(context.Background(), server.URL, destDir, filepathName(i), "classes")
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 5; i++ {
		<-done
	}

	if got := maxObserved.Load(); got > maxSockets {
		t.Errorf("observed %d concurrent requests, want at most %d", got, maxSockets)
	}
}

func filepathName(i int) string {
	return "file" + string(rune('a'+i)) + ".bin"
}
