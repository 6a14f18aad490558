// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package launchopts

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/foundry-mc/launcher/lib/version"
)

// Builder assembles an [Options] from defaults, an optional YAML
// overlay and explicit per-launch overrides, in that precedence order,
// then flattens everything into one immutable value (spec §9 Design
// Notes: "flatten overrides and options into one immutable struct
// produced by a builder; defaults filled in once at entry").
type Builder struct {
	opts *Options
	errs []error
}

// NewBuilder starts from [Default], optionally overlaid with a YAML
// file at configPath (pass "" to skip the overlay).
func NewBuilder(configPath string) *Builder {
	opts, err := Load(configPath)
	b := &Builder{opts: opts}
	if err != nil {
		b.errs = append(b.errs, err)
		b.opts = Default()
	}
	return b
}

// WithRoot sets the instance root directory.
func (b *Builder) WithRoot(root string) *Builder {
	b.opts.Root = root
	return b
}

// WithVersion selects the vanilla version number, release/snapshot
// type, and an optional custom (Forge-layered) version ID.
func (b *Builder) WithVersion(number, versionType, custom string) *Builder {
	b.opts.Version = VersionSelector{Number: number, Type: versionType, Custom: custom}
	return b
}

// WithMemory sets the JVM heap bounds in megabytes.
func (b *Builder) WithMemory(minMB, maxMB int) *Builder {
	b.opts.Memory = Memory{Min: minMB, Max: maxMB}
	return b
}

// WithJavaPath overrides the java executable used to launch the game.
func (b *Builder) WithJavaPath(path string) *Builder {
	b.opts.JavaPath = path
	return b
}

// WithForge sets the local path to a Forge jar — legacy universal or
// modern installer, [forge.IsModernInstaller] tells them apart — that
// launch should overlay onto vanilla (spec §4.J, §3). This is
// independent of the generic pre-launch Installer option: see
// WithInstaller.
func (b *Builder) WithForge(jarPath string) *Builder {
	b.opts.Forge = jarPath
	return b
}

// WithInstaller sets a generic pre-launch installer to run as a
// subprocess before the game starts (spec §4.L step 5), unrelated to
// Forge's own overlay process.
func (b *Builder) WithInstaller(path string) *Builder {
	b.opts.Installer = path
	return b
}

// WithClientPackage names a zip archive to extract into the instance
// directory before launch (spec §4.F), optionally deleting it after.
func (b *Builder) WithClientPackage(path string, remove bool) *Builder {
	b.opts.ClientPackage = path
	b.opts.RemovePackage = remove
	return b
}

// WithAuthorization sets the pre-resolved session used to populate the
// ${auth_*} and ${user_*} argument tokens.
func (b *Builder) WithAuthorization(accessToken, name, uuid, userProperties string) *Builder {
	b.opts.Authorization = Authorization{
		AccessToken:    accessToken,
		Name:           name,
		UUID:           uuid,
		UserProperties: userProperties,
	}
	return b
}

// WithWindow requests either fullscreen or an explicit window size.
func (b *Builder) WithWindow(w Window) *Builder {
	b.opts.Window = &w
	return b
}

// WithServer requests auto-join to host:port on launch.
func (b *Builder) WithServer(s Server) *Builder {
	b.opts.Server = &s
	return b
}

// WithProxy routes the game's traffic through a SOCKS/HTTP proxy.
func (b *Builder) WithProxy(p Proxy) *Builder {
	b.opts.Proxy = &p
	return b
}

// WithCustomArgs appends raw JVM arguments ahead of the generated ones.
func (b *Builder) WithCustomArgs(args ...string) *Builder {
	b.opts.CustomArgs = args
	return b
}

// WithCustomLaunchArgs appends raw game arguments after the generated
// ones.
func (b *Builder) WithCustomLaunchArgs(args ...string) *Builder {
	b.opts.CustomLaunchArgs = args
	return b
}

// WithOverrides replaces the path/endpoint overrides wholesale; paths,
// maxSockets and endpoints left zero in o still get their default
// values filled in by Build. Detached is taken exactly as given in o.
func (b *Builder) WithOverrides(o Overrides) *Builder {
	b.opts.Overrides = o
	return b
}

// Build validates the accumulated options, derives any path fields the
// caller left blank from root and the selected version, resolves
// javaPath to an absolute executable, and returns the finished,
// immutable [Options]. Once Build returns, the caller should treat the
// value as read-only for the lifetime of the launch.
func (b *Builder) Build() (*Options, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	opts := *b.opts // shallow copy; nested structs are value types except Window/Server/Proxy pointers, which are launch-specific and not mutated after Build.

	if opts.Root == "" {
		return nil, fmt.Errorf("launchopts: root is required")
	}
	if opts.Version.Number == "" {
		return nil, fmt.Errorf("launchopts: version.number is required")
	}

	versionID := opts.Version.Number
	if opts.Version.Custom != "" {
		versionID = opts.Version.Custom
	}

	if opts.Overrides.Directory == "" {
		opts.Overrides.Directory = opts.Root
	}
	if opts.Overrides.Natives == "" {
		opts.Overrides.Natives = filepath.Join(opts.Root, "natives", opts.Version.Number)
	}
	if opts.Overrides.AssetRoot == "" {
		opts.Overrides.AssetRoot = filepath.Join(opts.Root, "assets")
	}
	if opts.Overrides.LibraryRoot == "" {
		opts.Overrides.LibraryRoot = filepath.Join(opts.Root, "libraries")
	}
	if opts.Overrides.CWD == "" {
		opts.Overrides.CWD = opts.Overrides.Directory
	}
	if opts.Overrides.VersionJSON == "" {
		opts.Overrides.VersionJSON = version.LocalPath(opts.Root, versionID)
	}
	if opts.Overrides.MinecraftJar == "" {
		opts.Overrides.MinecraftJar = filepath.Join(opts.Root, "versions", versionID, versionID+".jar")
	}
	if opts.Overrides.Classes == "" && opts.ClientPackage != "" {
		opts.Overrides.Classes = filepath.Join(opts.Root, "versions", versionID, "classes")
	}
	if opts.Overrides.MaxSockets <= 0 {
		opts.Overrides.MaxSockets = defaultMaxSockets
	}
	if opts.Overrides.URL.Meta == "" {
		opts.Overrides.URL.Meta = version.DefaultMetaBaseURL
	}
	defaultURL := Default().Overrides.URL
	if opts.Overrides.URL.Resource == "" {
		opts.Overrides.URL.Resource = defaultURL.Resource
	}
	if opts.Overrides.URL.MavenForge == "" {
		opts.Overrides.URL.MavenForge = defaultURL.MavenForge
	}
	if opts.Overrides.URL.RepoForge == "" {
		opts.Overrides.URL.RepoForge = defaultURL.RepoForge
	}
	if opts.Overrides.URL.FallbackMaven == "" {
		opts.Overrides.URL.FallbackMaven = defaultURL.FallbackMaven
	}

	javaPath, err := resolveJavaPath(opts.JavaPath)
	if err != nil {
		return nil, err
	}
	opts.JavaPath = javaPath

	if opts.Window != nil && !opts.Window.Fullscreen && opts.Window.Width <= 0 && opts.Window.Height <= 0 {
		return nil, fmt.Errorf("launchopts: window requires fullscreen or a positive width/height")
	}

	return &opts, nil
}
