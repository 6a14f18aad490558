// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package args

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/foundry-mc/launcher/lib/descriptor"
	"github.com/foundry-mc/launcher/lib/launchopts"
	"github.com/foundry-mc/launcher/lib/platform"
)

// DefaultServerPort is used when a server override names a host but no
// port (spec §4.K).
const DefaultServerPort = 25565

// Result is the fully synthesized, placeholder-substituted command
// line for the Minecraft child process, split at the main class the
// way the JVM expects it: `java <JVMArgs> <MainClass> <GameArgs>`.
type Result struct {
	JVMArgs   []string
	MainClass string
	GameArgs  []string
}

// Synthesize builds the complete argument list for one launch (spec
// §4.K). vanilla is the resolved vanilla descriptor; modification is
// the layered Forge/custom descriptor, or nil for a pure vanilla
// launch; forgeLegacy selects the Forge-legacy classpath shape.
// classpathSuffix is the vanilla library classpath (already resolved,
// excluding the client jar); clientJar is the client jar's absolute
// path, always placed last.
func Synthesize(
	current platform.Probe,
	vanilla *descriptor.Descriptor,
	modification *descriptor.Descriptor,
	forgeLegacy bool,
	forgeClasspathPrefix []string,
	classpathSuffix []string,
	clientJar string,
	assetIndexID string,
	assetsRoot string,
	opts *launchopts.Options,
) (*Result, error) {
	if vanilla == nil {
		return nil, fmt.Errorf("args: vanilla descriptor is required")
	}

	overlay := ResolveOverlay(vanilla, modification, forgeLegacy, forgeClasspathPrefix)
	classpath := BuildClasspath(current.PathSeparator(), overlay.ClasspathPrefix, classpathSuffix, clientJar)

	jvmArgs := JVMTokens(current, vanilla.ID, opts.Memory, opts.Overrides.Natives, opts.CustomArgs, classpath)

	gameArgs := GameTokens(current.Current(), vanilla, modification, opts.Overrides.MinArgs)
	gameArgs = Substitute(gameArgs, opts, assetIndexID, assetsRoot)
	gameArgs = AppendConditional(gameArgs, opts)

	if unsubstituted := FindUnsubstituted(gameArgs); unsubstituted != "" {
		return nil, fmt.Errorf("args: unsubstituted placeholder remains in game arguments: %s", unsubstituted)
	}

	return &Result{JVMArgs: jvmArgs, MainClass: overlay.MainClass, GameArgs: gameArgs}, nil
}

// BuildClasspath joins prefix, suffix and clientJar with sep, dropping
// duplicate entries while keeping each entry's first occurrence (spec
// §8 invariant 2: "the classpath ... contains no duplicate entries").
func BuildClasspath(sep string, prefix []string, suffix []string, clientJar string) string {
	all := make([]string, 0, len(prefix)+len(suffix)+1)
	all = append(all, prefix...)
	all = append(all, suffix...)
	all = append(all, clientJar)

	seen := make(map[string]bool, len(all))
	deduped := all[:0]
	for _, entry := range all {
		if seen[entry] {
			continue
		}
		seen[entry] = true
		deduped = append(deduped, entry)
	}
	return strings.Join(deduped, sep)
}

// JVMTokens returns the fixed JVM flags, the platform flag, custom
// args, and the -cp flag, in the order spec §4.K item 1-4 specifies.
// The main class (item 5) is returned separately by Synthesize.
func JVMTokens(current platform.Probe, versionID string, mem launchopts.Memory, nativeDir string, customArgs []string, classpath string) []string {
	tokens := []string{
		"-XX:-UseAdaptiveSizePolicy",
		"-XX:-OmitStackTraceInFastThrow",
		"-Dfml.ignorePatchDiscrepancies=true",
		"-Dfml.ignoreInvalidMinecraftCertificates=true",
		"-Djava.library.path=" + nativeDir,
		fmt.Sprintf("-Xmx%dM", mem.Max),
		fmt.Sprintf("-Xms%dM", mem.Min),
	}
	if flag := current.ExtraJVMFlag(versionID); flag != "" {
		tokens = append(tokens, flag)
	}
	tokens = append(tokens, customArgs...)
	tokens = append(tokens, "-cp", classpath)
	return tokens
}

// GameTokens resolves the raw (pre-substitution) game argument list.
// With no modification descriptor, it returns vanilla's own tokens
// directly. With a modification descriptor, it takes that descriptor's
// tokens and, when that list falls below the minArgs threshold,
// appends vanilla's tokens too (spec §4.K, §9 "minArgs" note).
func GameTokens(current platform.OS, vanilla *descriptor.Descriptor, modification *descriptor.Descriptor, minArgsOverride int) []string {
	if modification == nil {
		return vanilla.GameTokens(current)
	}
	tokens := modification.GameTokens(current)
	threshold := vanilla.MinArgsThreshold(minArgsOverride)
	if len(tokens) < threshold {
		tokens = append(tokens, vanilla.GameTokens(current)...)
	}
	return tokens
}

// Substitute replaces every recognized ${...} placeholder token with
// its resolved value (spec §4.K placeholder table).
func Substitute(tokens []string, opts *launchopts.Options, assetIndexID string, assetsRoot string) []string {
	pairs := []string{
		"${auth_access_token}", opts.Authorization.AccessToken,
		"${auth_session}", opts.Authorization.AccessToken,
		"${auth_player_name}", opts.Authorization.Name,
		"${auth_uuid}", opts.Authorization.UUID,
		"${user_properties}", opts.Authorization.UserProperties,
		"${user_type}", "mojang",
		"${version_name}", opts.Version.Number,
		"${version_type}", opts.Version.Type,
		"${assets_index_name}", assetIndexID,
		"${game_directory}", opts.Root,
		"${assets_root}", assetsRoot,
		"${game_assets}", assetsRoot,
	}
	replacer := strings.NewReplacer(pairs...)

	out := make([]string, len(tokens))
	for i, token := range tokens {
		out[i] = replacer.Replace(token)
	}
	return out
}

// unsubstitutedPattern matches any token that is still exactly a bare
// ${lowercase_word} placeholder after substitution (spec §8 invariant
// 3).
var unsubstitutedPattern = regexp.MustCompile(`^\$\{[a-z_]+\}$`)

// FindUnsubstituted returns the first token still matching an
// unsubstituted placeholder shape, or "" if none remain.
func FindUnsubstituted(tokens []string) string {
	for _, token := range tokens {
		if unsubstitutedPattern.MatchString(token) {
			return token
		}
	}
	return ""
}

// AppendConditional appends --fullscreen/--width/--height,
// --server/--port, --proxyHost/Port/User/Pass, and customLaunchArgs,
// in that order, according to which of opts's optional sections are
// set (spec §4.K "Appended conditionally").
func AppendConditional(tokens []string, opts *launchopts.Options) []string {
	if opts.Window != nil {
		switch {
		case opts.Window.Fullscreen:
			tokens = append(tokens, "--fullscreen")
		case opts.Window.Width > 0 || opts.Window.Height > 0:
			tokens = append(tokens, "--width", strconv.Itoa(opts.Window.Width), "--height", strconv.Itoa(opts.Window.Height))
		}
	}

	if opts.Server != nil && opts.Server.Host != "" {
		port := opts.Server.Port
		if port == 0 {
			port = DefaultServerPort
		}
		tokens = append(tokens, "--server", opts.Server.Host, "--port", strconv.Itoa(port))
	}

	if opts.Proxy != nil && opts.Proxy.Host != "" {
		tokens = append(tokens, "--proxyHost", opts.Proxy.Host)
		if opts.Proxy.Port != 0 {
			tokens = append(tokens, "--proxyPort", strconv.Itoa(opts.Proxy.Port))
		}
		if opts.Proxy.Username != "" {
			tokens = append(tokens, "--proxyUser", opts.Proxy.Username)
		}
		if opts.Proxy.Password != "" {
			tokens = append(tokens, "--proxyPass", opts.Proxy.Password)
		}
	}

	tokens = append(tokens, opts.CustomLaunchArgs...)
	return tokens
}
