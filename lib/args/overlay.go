// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package args synthesizes the JVM and game argument lists passed to
// the Minecraft child process (spec component 4.K).
package args

import "github.com/foundry-mc/launcher/lib/descriptor"

// Overlay is the resolved shape of a launch's three mutually exclusive
// layering modes — vanilla only, a custom descriptor (Fabric/Quilt)
// overlaid on vanilla, or a legacy Forge universal jar prepended to
// vanilla — collapsed into the single shape the synthesizer needs: a
// main class, a classpath prefix, and which descriptor to pull game
// arguments from (spec §9 Design Notes: "encode as an enum with a
// single resolver").
type Overlay struct {
	MainClass       string
	ClasspathPrefix []string
	ArgsDescriptor  *descriptor.Descriptor
}

// ResolveOverlay picks the overlay shape for one launch. modification is
// the layered descriptor — Forge's own version.json for legacy Forge, a
// custom loader's descriptor otherwise — or nil for a pure vanilla
// launch. forgeClasspathPrefix is the Forge jar followed by Forge's own
// materialized libraries, already in load order; it is only consulted
// when forgeLegacy is true.
func ResolveOverlay(vanilla *descriptor.Descriptor, modification *descriptor.Descriptor, forgeLegacy bool, forgeClasspathPrefix []string) Overlay {
	switch {
	case forgeLegacy && modification != nil:
		return Overlay{
			MainClass:       modification.MainClass,
			ClasspathPrefix: forgeClasspathPrefix,
			ArgsDescriptor:  modification,
		}
	case modification != nil:
		return Overlay{
			MainClass:      modification.MainClass,
			ArgsDescriptor: modification,
		}
	default:
		return Overlay{
			MainClass:      vanilla.MainClass,
			ArgsDescriptor: vanilla,
		}
	}
}
