// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package rules evaluates the library-inclusion rule predicates found
// in a version descriptor (spec component 4.F).
//
// The shapes that appear in real Mojang manifests are narrow: no rules,
// one "allow" rule carrying an os clause, or a two-rule "allow" followed
// by a "disallow os=osx" pair. Evaluate implements exactly those three
// shapes and conservatively excludes anything else, per spec rather than
// attempting to generalize to an open-ended predicate language the wire
// format does not actually use.
package rules

import "github.com/foundry-mc/launcher/lib/platform"

// Action is the verb of one rule: whether it permits or forbids
// inclusion when its clause matches.
type Action string

const (
	Allow    Action = "allow"
	Disallow Action = "disallow"
)

// OSClause restricts a Rule to a named platform.
type OSClause struct {
	Name string `json:"name,omitempty"`
}

// Rule is one conditional predicate governing whether a library or
// argument is included on the current platform.
type Rule struct {
	Action Action    `json:"action"`
	OS     *OSClause `json:"os,omitempty"`
}

// Result is the outcome of evaluating a rule list.
type Result struct {
	// Included reports whether the governed item should be kept for
	// the current platform.
	Included bool
}

// Evaluate applies the rule-shape table from spec §4.F against the
// current platform and returns whether the governed item is included.
//
//   - No rules: included.
//   - One rule, "allow" carrying an os clause: included iff current is
//     not osx. This is the only single-rule shape Mojang manifests use
//     in practice ("allow on every platform except osx"); the os
//     clause's Name is intentionally not consulted further — see
//     DESIGN.md for why this matches observed manifests rather than a
//     more general single-rule interpretation.
//   - Two rules, "allow" (no os clause) followed by "disallow" with
//     os.name == "osx": included iff current is osx.
//   - Any other shape: excluded. An unrecognized rule list is treated
//     the same as an explicit exclusion, never silently included.
func Evaluate(ruleList []Rule, current platform.OS) Result {
	switch len(ruleList) {
	case 0:
		return Result{Included: true}

	case 1:
		rule := ruleList[0]
		if rule.Action == Allow && rule.OS != nil {
			return Result{Included: current != platform.OSX}
		}
		return Result{Included: false}

	case 2:
		first, second := ruleList[0], ruleList[1]
		if first.Action == Allow && first.OS == nil &&
			second.Action == Disallow && second.OS != nil && second.OS.Name == "osx" {
			return Result{Included: current == platform.OSX}
		}
		return Result{Included: false}

	default:
		return Result{Included: false}
	}
}
