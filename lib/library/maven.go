// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package library

import (
	"fmt"
	"strings"
)

// Coordinate is a parsed Maven artifact coordinate of the form
// "group:artifact:version" or "group:artifact:version:classifier".
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
}

// ParseCoordinate splits a library's "name" field into its Maven parts
// (spec §4.G.1: "derive from the Maven coordinate").
func ParseCoordinate(name string) (Coordinate, error) {
	parts := strings.Split(name, ":")
	if len(parts) < 3 {
		return Coordinate{}, fmt.Errorf("library: %q is not a valid Maven coordinate", name)
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}
	if len(parts) >= 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// JarName returns the conventional jar filename for this coordinate:
// "<artifact>-<version>[-<classifier>].jar".
func (c Coordinate) JarName() string {
	if c.Classifier != "" {
		return fmt.Sprintf("%s-%s-%s.jar", c.Artifact, c.Version, c.Classifier)
	}
	return fmt.Sprintf("%s-%s.jar", c.Artifact, c.Version)
}

// RelativeDir returns the Maven repository layout directory for this
// coordinate, relative to a repository root: "<group-slashes>/<artifact>/<version>".
func (c Coordinate) RelativeDir() string {
	return fmt.Sprintf("%s/%s/%s", strings.ReplaceAll(c.Group, ".", "/"), c.Artifact, c.Version)
}
