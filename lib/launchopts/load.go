// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package launchopts

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML options file and merges it onto [Default]. The file
// is optional scaffolding, not the source of truth for a launch: the
// caller's [Builder] calls still win, since Build applies them after
// Load returns. Missing path is not an error; it simply yields the
// unmodified defaults, since unlike the teacher's config package there
// is no single required entry point here — a launch can be fully
// specified through code alone.
func Load(path string) (*Options, error) {
	opts := Default()
	if path == "" {
		return opts, nil
	}
	if err := loadFile(opts, path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return opts, nil
		}
		return nil, err
	}
	expandPaths(opts)
	return opts, nil
}

func loadFile(opts *Options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("launchopts: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("launchopts: parsing %s: %w", path, err)
	}
	return nil
}

// varPattern matches ${VAR} and ${VAR:-default}, same shape as the
// path expansion used throughout this codebase's config loaders.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVar(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name, def := parts[1], ""
		if len(parts) >= 3 {
			def = parts[2]
		}
		if v, ok := vars[name]; ok && v != "" {
			return v
		}
		if v := os.Getenv(name); v != "" {
			return v
		}
		return def
	})
}

// expandPaths expands ${ROOT}, ${HOME} and similar variables across
// every path field, resolving ${ROOT} against the (possibly
// just-overridden) root directory.
func expandPaths(o *Options) {
	vars := map[string]string{"ROOT": o.Root, "HOME": os.Getenv("HOME")}
	o.Root = expandVar(o.Root, vars)
	vars["ROOT"] = o.Root

	o.JavaPath = expandVar(o.JavaPath, vars)
	o.Overrides.Directory = expandVar(o.Overrides.Directory, vars)
	o.Overrides.Natives = expandVar(o.Overrides.Natives, vars)
	o.Overrides.AssetRoot = expandVar(o.Overrides.AssetRoot, vars)
	o.Overrides.LibraryRoot = expandVar(o.Overrides.LibraryRoot, vars)
	o.Overrides.CWD = expandVar(o.Overrides.CWD, vars)
	o.Overrides.MinecraftJar = expandVar(o.Overrides.MinecraftJar, vars)
	o.Overrides.VersionJSON = expandVar(o.Overrides.VersionJSON, vars)
	o.Overrides.Classes = expandVar(o.Overrides.Classes, vars)
}

// resolveJavaPath substitutes a bare command name ("java") for its
// absolute path via exec.LookPath, leaving an already-absolute or
// already-resolved path untouched. Build calls this once every path is
// derived, so JavaUnavailable (spec §7) is detectable before a
// subprocess is ever spawned.
func resolveJavaPath(path string) (string, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("launchopts: java executable %q not found: %w", path, err)
	}
	return resolved, nil
}
