// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/foundry-mc/launcher/lib/launchopts"
)

// flagSet holds every command-line flag mclaunch recognizes, parsed
// into Go values ready for buildOptions to fold into a
// [launchopts.Options].
type flagSet struct {
	set *pflag.FlagSet

	config      string
	root        string
	version     string
	versionType string
	custom      string
	minMemoryMB int
	maxMemoryMB int
	javaPath    string
	forge       string
	installer   string
	clientPkg   string
	removePkg   bool

	accessToken    string
	username       string
	uuid           string
	userProperties string

	fullscreen bool
	width      int
	height     int

	serverHost string
	serverPort int

	proxyHost string
	proxyPort int
	proxyUser string
	proxyPass string

	jvmArgs  []string
	gameArgs []string

	logOutput   string
	plain       bool
	help        bool
	versionInfo bool
}

func newFlagSet() *flagSet {
	f := &flagSet{set: pflag.NewFlagSet("mclaunch", pflag.ContinueOnError)}
	set := f.set

	set.StringVar(&f.config, "config", "", "path to a YAML launch-options file")
	set.StringVar(&f.root, "root", "", "instance root directory (default: config/defaults)")
	set.StringVar(&f.version, "mc-version", "", "vanilla Minecraft version number, e.g. 1.20.4")
	set.StringVar(&f.versionType, "version-type", "release", "version type: release or snapshot")
	set.StringVar(&f.custom, "custom-version", "", "custom/layered version ID to launch instead of the vanilla descriptor")
	set.IntVar(&f.minMemoryMB, "min-memory", 0, "JVM minimum heap size in megabytes")
	set.IntVar(&f.maxMemoryMB, "max-memory", 0, "JVM maximum heap size in megabytes")
	set.StringVar(&f.javaPath, "java", "", "path to the java executable (default: resolved from PATH)")
	set.StringVar(&f.forge, "forge", "", "path to a Forge universal jar or modern installer jar to overlay")
	set.StringVar(&f.installer, "installer", "", "path to a generic pre-launch installer to run before the game starts")
	set.StringVar(&f.clientPkg, "client-package", "", "zip archive (local path or http(s) URL) to extract into root before launch")
	set.BoolVar(&f.removePkg, "remove-package", false, "delete the client package after extraction")

	set.StringVar(&f.accessToken, "access-token", "", "pre-resolved session access token")
	set.StringVar(&f.username, "username", "", "player name")
	set.StringVar(&f.uuid, "uuid", "", "player UUID")
	set.StringVar(&f.userProperties, "user-properties", "{}", "raw JSON for the legacy user_properties argument token")

	set.BoolVar(&f.fullscreen, "fullscreen", false, "launch in fullscreen")
	set.IntVar(&f.width, "width", 0, "window width in pixels")
	set.IntVar(&f.height, "height", 0, "window height in pixels")

	set.StringVar(&f.serverHost, "server", "", "auto-join server host")
	set.IntVar(&f.serverPort, "server-port", 25565, "auto-join server port")

	set.StringVar(&f.proxyHost, "proxy-host", "", "SOCKS/HTTP proxy host")
	set.IntVar(&f.proxyPort, "proxy-port", 0, "proxy port")
	set.StringVar(&f.proxyUser, "proxy-user", "", "proxy username")
	set.StringVar(&f.proxyPass, "proxy-pass", "", "proxy password")

	set.StringArrayVar(&f.jvmArgs, "jvm-arg", nil, "extra JVM argument, ahead of the generated ones (repeatable)")
	set.StringArrayVar(&f.gameArgs, "game-arg", nil, "extra game argument, after the generated ones (repeatable)")

	set.StringVar(&f.logOutput, "log-output", "", "also write structured logs to this file")
	set.BoolVar(&f.plain, "plain", false, "disable the progress TUI and log to stderr instead")
	set.BoolP("help", "h", false, "show this help message")
	set.BoolVar(&f.versionInfo, "version-info", false, "print mclaunch's own version and exit")

	return f
}

func (f *flagSet) Parse(args []string) error {
	if err := f.set.Parse(args); err != nil {
		return err
	}
	f.help, _ = f.set.GetBool("help")
	return nil
}

func printHelp(set *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `mclaunch - launch a configured Minecraft instance

Usage:
  mclaunch --mc-version <version> --root <dir> [flags]

Flags:
`)
	set.SetOutput(os.Stderr)
	set.PrintDefaults()
}

// buildOptions folds the parsed flags into a [launchopts.Options],
// only overriding a Builder default when the corresponding flag was
// actually given a non-zero value.
func (f *flagSet) buildOptions() (*launchopts.Options, error) {
	builder := launchopts.NewBuilder(f.config)

	if f.root != "" {
		builder = builder.WithRoot(f.root)
	}
	if f.version != "" || f.custom != "" {
		builder = builder.WithVersion(f.version, f.versionType, f.custom)
	}
	if f.minMemoryMB > 0 || f.maxMemoryMB > 0 {
		builder = builder.WithMemory(f.minMemoryMB, f.maxMemoryMB)
	}
	if f.javaPath != "" {
		builder = builder.WithJavaPath(f.javaPath)
	}
	if f.forge != "" {
		builder = builder.WithForge(f.forge)
	}
	if f.installer != "" {
		builder = builder.WithInstaller(f.installer)
	}
	if f.clientPkg != "" {
		builder = builder.WithClientPackage(f.clientPkg, f.removePkg)
	}
	if f.accessToken != "" || f.username != "" {
		builder = builder.WithAuthorization(f.accessToken, f.username, f.uuid, f.userProperties)
	}
	if f.fullscreen || f.width > 0 || f.height > 0 {
		builder = builder.WithWindow(launchopts.Window{Fullscreen: f.fullscreen, Width: f.width, Height: f.height})
	}
	if f.serverHost != "" {
		builder = builder.WithServer(launchopts.Server{Host: f.serverHost, Port: f.serverPort})
	}
	if f.proxyHost != "" {
		builder = builder.WithProxy(launchopts.Proxy{
			Host: f.proxyHost, Port: f.proxyPort,
			Username: f.proxyUser, Password: f.proxyPass,
		})
	}
	if len(f.jvmArgs) > 0 {
		builder = builder.WithCustomArgs(f.jvmArgs...)
	}
	if len(f.gameArgs) > 0 {
		builder = builder.WithCustomLaunchArgs(f.gameArgs...)
	}

	return builder.Build()
}
