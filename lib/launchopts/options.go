// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package launchopts defines LaunchOptions, the flattened, immutable
// configuration a [Builder] produces for one launch: "overrides" and
// the user-facing options merged into one struct, with defaults filled
// in once at the entry point, per spec §9 Design Notes' configuration
// object recommendation.
package launchopts

// VersionSelector names the version(s) to launch: the required vanilla
// version plus an optional layered custom descriptor (a Forge or
// loader build).
type VersionSelector struct {
	Number string `yaml:"number,omitempty"`
	Type   string `yaml:"type,omitempty"`
	Custom string `yaml:"custom,omitempty"`
}

// Memory sets the JVM heap bounds in megabytes.
type Memory struct {
	Min int `yaml:"min,omitempty"`
	Max int `yaml:"max,omitempty"`
}

// Authorization carries a pre-resolved session; credential acquisition
// is out of scope (spec §1 Non-goals).
type Authorization struct {
	AccessToken    string `yaml:"access_token,omitempty"`
	Name           string `yaml:"name,omitempty"`
	UUID           string `yaml:"uuid,omitempty"`
	UserProperties string `yaml:"user_properties,omitempty"`
}

// Window selects fullscreen or an explicit window size.
type Window struct {
	Fullscreen bool `yaml:"fullscreen,omitempty"`
	Width      int  `yaml:"width,omitempty"`
	Height     int  `yaml:"height,omitempty"`
}

// Server names an auto-join target.
type Server struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// Proxy configures an optional SOCKS/HTTP proxy passed to the game.
type Proxy struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Endpoints overrides the default upstream hosts (spec §6).
type Endpoints struct {
	Meta          string `yaml:"meta,omitempty"`
	Resource      string `yaml:"resource,omitempty"`
	MavenForge    string `yaml:"maven_forge,omitempty"`
	RepoForge     string `yaml:"repo_forge,omitempty"`
	FallbackMaven string `yaml:"fallback_maven,omitempty"`
}

// Overrides are the path and endpoint overrides recognized under
// "overrides.*" in the spec's LaunchOptions table.
type Overrides struct {
	Directory    string    `yaml:"directory,omitempty"`
	Natives      string    `yaml:"natives,omitempty"`
	AssetRoot    string    `yaml:"asset_root,omitempty"`
	LibraryRoot  string    `yaml:"library_root,omitempty"`
	CWD          string    `yaml:"cwd,omitempty"`
	MinecraftJar string    `yaml:"minecraft_jar,omitempty"`
	VersionJSON  string    `yaml:"version_json,omitempty"`
	Classes      string    `yaml:"classes,omitempty"`
	MaxSockets   int       `yaml:"max_sockets,omitempty"`
	MinArgs      int       `yaml:"min_args,omitempty"`
	Detached     bool      `yaml:"detached,omitempty"`
	URL          Endpoints `yaml:"url,omitempty"`
}

// Options is the complete, flattened configuration for one launch.
type Options struct {
	Root             string          `yaml:"root,omitempty"`
	Version          VersionSelector `yaml:"version,omitempty"`
	Memory           Memory          `yaml:"memory,omitempty"`
	JavaPath         string          `yaml:"java_path,omitempty"`
	Forge            string          `yaml:"forge,omitempty"`
	Installer        string          `yaml:"installer,omitempty"`
	ClientPackage    string          `yaml:"client_package,omitempty"`
	RemovePackage    bool            `yaml:"remove_package,omitempty"`
	Authorization    Authorization   `yaml:"authorization,omitempty"`
	Window           *Window         `yaml:"window,omitempty"`
	Server           *Server         `yaml:"server,omitempty"`
	Proxy            *Proxy          `yaml:"proxy,omitempty"`
	CustomArgs       []string        `yaml:"custom_args,omitempty"`
	CustomLaunchArgs []string        `yaml:"custom_launch_args,omitempty"`
	Overrides        Overrides       `yaml:"overrides,omitempty"`
}
