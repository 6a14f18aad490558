// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"testing"

	"github.com/foundry-mc/launcher/lib/platform"
)

func TestParseLegacyDescriptor(t *testing.T) {
	raw := `{
		"id": "1.7.10",
		"mainClass": "net.minecraft.client.main.Main",
		"assets": "legacy",
		"minecraftArguments": "--username ${auth_player_name} --version ${version_name}",
		"assetIndex": {"id": "legacy", "url": "https://example.test/legacy.json", "sha1": "abc", "size": 1},
		"downloads": {"client": {"url": "https://example.test/client.jar", "sha1": "def", "size": 2}}
	}`

	d, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !d.IsLegacy() {
		t.Error("IsLegacy() = false, want true")
	}
	if !d.IsLegacyAssets() {
		t.Error("IsLegacyAssets() = false, want true")
	}

	tokens := d.GameTokens(platform.Linux)
	want := []string{"--username", "${auth_player_name}", "--version", "${version_name}"}
	if !equalSlices(tokens, want) {
		t.Errorf("GameTokens = %v, want %v", tokens, want)
	}
	if got := d.MinArgsThreshold(0); got != 5 {
		t.Errorf("MinArgsThreshold(0) = %d, want 5", got)
	}
}

func TestParseModernDescriptorEvaluatesRules(t *testing.T) {
	raw := `{
		"id": "1.19.2",
		"mainClass": "net.minecraft.client.main.Main",
		"assets": "7",
		"assetIndex": {"id": "7", "url": "https://example.test/7.json", "sha1": "abc", "size": 1},
		"downloads": {"client": {"url": "https://example.test/client.jar", "sha1": "def", "size": 2}},
		"arguments": {
			"game": [
				"--username", "${auth_player_name}",
				{"rules": [{"action": "allow", "os": {"name": "osx"}}], "value": "-XstartOnFirstThread"}
			],
			"jvm": ["-Djava.library.path=${natives_directory}"]
		}
	}`

	d, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.IsLegacy() {
		t.Error("IsLegacy() = true, want false")
	}

	linuxTokens := d.GameTokens(platform.Linux)
	want := []string{"--username", "${auth_player_name}"}
	if !equalSlices(linuxTokens, want) {
		t.Errorf("GameTokens(linux) = %v, want %v (structured non-osx arg must be dropped)", linuxTokens, want)
	}

	osxTokens := d.GameTokens(platform.OSX)
	wantOSX := []string{"--username", "${auth_player_name}", "-XstartOnFirstThread"}
	if !equalSlices(osxTokens, wantOSX) {
		t.Errorf("GameTokens(osx) = %v, want %v (structured osx-only arg must be kept)", osxTokens, wantOSX)
	}

	if got := d.MinArgsThreshold(0); got != 11 {
		t.Errorf("MinArgsThreshold(0) = %d, want 11", got)
	}
	if got := d.MinArgsThreshold(3); got != 3 {
		t.Errorf("MinArgsThreshold(3) override = %d, want 3", got)
	}
}

func TestArgUnmarshalMultiValue(t *testing.T) {
	raw := `{"rules": [], "value": ["--width", "${resolution_width}"]}`
	var arg Arg
	if err := (&arg).UnmarshalJSON([]byte(raw)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	want := []string{"--width", "${resolution_width}"}
	if !equalSlices(arg.Values, want) {
		t.Errorf("Values = %v, want %v", arg.Values, want)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
