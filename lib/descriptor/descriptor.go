// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package descriptor models a Minecraft VersionDescriptor: the
// authoritative recipe for one version's main class, libraries, asset
// index, and launch arguments (spec §3).
//
// Two incompatible argument schemas exist in the wild: legacy
// descriptors carry a single "minecraftArguments" string; modern
// descriptors carry a structured "arguments": {"game": [...], "jvm":
// [...]}. Design Notes calls this a natural tagged variant with a
// common accessor rather than two code paths sprinkled through the
// argument synthesizer — GameTokens and JVMTokens are that accessor.
package descriptor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/foundry-mc/launcher/lib/platform"
	"github.com/foundry-mc/launcher/lib/rules"
)

// Legacy asset-index kind tags. A descriptor with one of these in its
// Assets field additionally mirrors asset objects into a flat
// assets/legacy/ tree (spec §4.I.5) and uses a lower minArgs threshold
// (spec §4.K).
const (
	AssetsLegacy = "legacy"
	AssetsPre16  = "pre-1.6"
)

// Artifact is one downloadable file: the client jar, a library jar, a
// native classifier jar, or the asset-index JSON.
type Artifact struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// AssetIndexRef points at the asset-index JSON document for this
// version.
type AssetIndexRef struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}

// Downloads holds the version's top-level downloadable artifacts.
type Downloads struct {
	Client Artifact `json:"client"`
}

// LibraryDownloads holds the download records for one library: the
// platform-neutral jar and, for native libraries, a classifier-keyed
// map of platform-specific archives.
type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Library is one classpath or native contribution (spec §3).
type Library struct {
	Name      string            `json:"name"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Rules     []rules.Rule      `json:"rules,omitempty"`
	URL       string            `json:"url,omitempty"`
}

// Excluded reports whether this library is excluded on the current
// platform by its rule list (spec §4.F).
func (l Library) Excluded(current platform.OS) bool {
	return !rules.Evaluate(l.Rules, current).Included
}

// HasNatives reports whether this library contributes a native archive.
func (l Library) HasNatives() bool {
	return l.Downloads != nil && len(l.Downloads.Classifiers) > 0
}

// Arg is one token in a modern structured argument list: either a bare
// literal string, or an object carrying one-or-many values gated by
// rules. Both shapes unmarshal into the same Go type; Values always
// holds the token(s) to emit when Included reports true.
type Arg struct {
	Rules  []rules.Rule
	Values []string
}

// UnmarshalJSON accepts either a JSON string (a literal token) or an
// object of the form {"rules": [...], "value": "x"} / {"value": ["x",
// "y"]}, normalizing both into Values.
func (a *Arg) UnmarshalJSON(data []byte) error {
	var literal string
	if err := json.Unmarshal(data, &literal); err == nil {
		a.Values = []string{literal}
		a.Rules = nil
		return nil
	}

	var structured struct {
		Rules []rules.Rule    `json:"rules"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return fmt.Errorf("descriptor: unrecognized argument token: %w", err)
	}

	var single string
	if err := json.Unmarshal(structured.Value, &single); err == nil {
		a.Values = []string{single}
	} else {
		var multiple []string
		if err := json.Unmarshal(structured.Value, &multiple); err != nil {
			return fmt.Errorf("descriptor: argument value is neither a string nor a string array: %w", err)
		}
		a.Values = multiple
	}
	a.Rules = structured.Rules
	return nil
}

// Included reports whether this argument's rules pass on the current
// platform. A literal token (no rules) is always included. Otherwise a
// rule matches when its os clause names the current platform, the last
// matching rule's action decides, and an argument with no matching rule
// is dropped; a rule without an os name (such as a feature-gated rule,
// whose features are not decoded) never matches.
func (a Arg) Included(current platform.OS) bool {
	if len(a.Rules) == 0 {
		return true
	}
	included := false
	for _, rule := range a.Rules {
		if rule.OS != nil && rule.OS.Name == string(current) {
			included = rule.Action == rules.Allow
		}
	}
	return included
}

// ArgumentsSection is the modern structured "arguments" block.
type ArgumentsSection struct {
	Game []Arg `json:"game"`
	JVM  []Arg `json:"jvm"`
}

// Descriptor is a resolved version descriptor, legacy or modern.
type Descriptor struct {
	ID                 string            `json:"id"`
	MainClass          string            `json:"mainClass"`
	Assets             string            `json:"assets"`
	AssetIndex         AssetIndexRef     `json:"assetIndex"`
	Downloads          Downloads         `json:"downloads"`
	Libraries          []Library         `json:"libraries"`
	MinecraftArguments string            `json:"minecraftArguments,omitempty"`
	Arguments          *ArgumentsSection `json:"arguments,omitempty"`
}

// Parse decodes a version descriptor JSON document.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("descriptor: parsing version JSON: %w", err)
	}
	if d.ID == "" {
		return nil, fmt.Errorf("descriptor: version JSON missing required field \"id\"")
	}
	return &d, nil
}

// IsLegacy reports whether this descriptor uses the legacy single-
// string argument schema rather than the modern structured schema.
func (d *Descriptor) IsLegacy() bool {
	return d.Arguments == nil
}

// IsLegacyAssets reports whether this descriptor's asset index kind
// requires mirroring objects into the flat assets/legacy/ tree (spec
// §4.I.5) and uses the lower minArgs threshold (spec §4.K).
func (d *Descriptor) IsLegacyAssets() bool {
	return d.Assets == AssetsLegacy || d.Assets == AssetsPre16
}

// GameTokens flattens this descriptor's game argument list for the
// current platform: legacy descriptors split MinecraftArguments on
// spaces; modern descriptors evaluate each Arg's rules and emit only
// the values of Args that pass (spec Design Notes: structured Args
// must be evaluated, not unconditionally dropped).
func (d *Descriptor) GameTokens(current platform.OS) []string {
	if d.IsLegacy() {
		return strings.Fields(d.MinecraftArguments)
	}
	var tokens []string
	for _, arg := range d.Arguments.Game {
		if arg.Included(current) {
			tokens = append(tokens, arg.Values...)
		}
	}
	return tokens
}

// JVMTokens flattens this descriptor's jvm argument list for the
// current platform. Legacy descriptors carry no jvm argument list; the
// argument synthesizer supplies its own fixed JVM tokens in that case.
func (d *Descriptor) JVMTokens(current platform.OS) []string {
	if d.IsLegacy() || d.Arguments == nil {
		return nil
	}
	var tokens []string
	for _, arg := range d.Arguments.JVM {
		if arg.Included(current) {
			tokens = append(tokens, arg.Values...)
		}
	}
	return tokens
}

// MinArgsThreshold resolves the "enough game arguments already" cutoff
// used by the argument synthesizer to decide whether to append the
// vanilla descriptor's tokens after a modification descriptor's own
// (spec §4.K, Design Notes: the source's precedence bug is resolved as
// an explicit override-or-default, never an ambiguous expression).
func (d *Descriptor) MinArgsThreshold(override int) int {
	if override > 0 {
		return override
	}
	if d.IsLegacyAssets() {
		return 5
	}
	return 11
}
