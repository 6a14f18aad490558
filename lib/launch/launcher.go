// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/foundry-mc/launcher/lib/archive"
	"github.com/foundry-mc/launcher/lib/args"
	"github.com/foundry-mc/launcher/lib/assets"
	"github.com/foundry-mc/launcher/lib/descriptor"
	"github.com/foundry-mc/launcher/lib/digest"
	"github.com/foundry-mc/launcher/lib/event"
	"github.com/foundry-mc/launcher/lib/fetch"
	"github.com/foundry-mc/launcher/lib/forge"
	"github.com/foundry-mc/launcher/lib/launchopts"
	"github.com/foundry-mc/launcher/lib/library"
	"github.com/foundry-mc/launcher/lib/natives"
	"github.com/foundry-mc/launcher/lib/netutil"
	"github.com/foundry-mc/launcher/lib/platform"
	"github.com/foundry-mc/launcher/lib/secret"
	"github.com/foundry-mc/launcher/lib/state"
	"github.com/foundry-mc/launcher/lib/version"
)

// DefaultForgeWrapperVersion is the ForgeWrapper release the modern
// Forge installer path runs (spec §4.J second bullet — "a known JAR
// shipped with this library"); launchopts.Options has no field that
// selects a different release.
const DefaultForgeWrapperVersion = "1.6.0"

// Result is the outcome of one completed launch.
type Result struct {
	// ExitCode is the game child process's exit status.
	ExitCode int
}

// Launcher orchestrates the full pipeline described by spec component
// 4.L: Java probe, client-package extraction, pre-launch installer,
// version resolution, the optional Forge or custom overlay,
// native/library/asset materialization, argument synthesis, and finally
// spawning the game child process and relaying its output.
type Launcher struct {
	Platform platform.Probe
	Sink     event.Sink
	Logger   *slog.Logger
}

// NewLauncher creates a Launcher that emits events to sink (event.Discard
// if nil) and logs diagnostics to logger (slog.Default() if nil).
func NewLauncher(sink event.Sink, logger *slog.Logger) *Launcher {
	if sink == nil {
		sink = event.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{Sink: sink, Logger: logger}
}

// Launch runs the full pipeline for opts and blocks until the spawned
// game process exits. Every suspension point observes ctx: a canceled
// context aborts the pipeline at the next checkpoint and kills an
// already-spawned child.
func (l *Launcher) Launch(ctx context.Context, opts *launchopts.Options) (*Result, error) {
	if closable, ok := l.Sink.(interface{ Close() }); ok {
		defer closable.Close()
	}

	fetcher := fetch.New(opts.Overrides.MaxSockets, l.Sink)
	resolver := version.NewResolver(nil, opts.Overrides.URL.Meta)

	if err := probeJava(ctx, opts.JavaPath); err != nil {
		l.Sink.Emit(event.Event{Kind: event.KindClose, Close: event.Close{Code: 1}})
		return nil, fmt.Errorf("%w: %v", ErrJavaUnavailable, err)
	}

	if err := os.MkdirAll(opts.Root, 0o755); err != nil {
		return nil, fmt.Errorf("launch: creating root %s: %w", opts.Root, err)
	}

	if opts.ClientPackage != "" {
		if err := l.materializeClientPackage(ctx, fetcher, opts); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Installer != "" {
		if err := l.runInstaller(ctx, opts); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	versionID := opts.Version.Number
	vanilla, vanillaRaw, err := resolver.Resolve(ctx, opts.Root, versionID, opts.Overrides.VersionJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVersionUnresolvable, err)
	}
	if err := version.Persist(opts.Root, versionID, vanillaRaw); err != nil {
		return nil, fmt.Errorf("launch: persisting version descriptor: %w", err)
	}

	var modification *descriptor.Descriptor
	var modificationRaw []byte
	var classpathPrefix []string
	forgeLegacy := false

	switch {
	case opts.Forge != "":
		modification, modificationRaw, classpathPrefix, forgeLegacy, err = l.runForgeOverlay(ctx, fetcher, opts)
		if err != nil {
			return nil, err
		}
	case opts.Version.Custom != "":
		modification, modificationRaw, err = resolver.Resolve(ctx, opts.Root, opts.Version.Custom, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVersionUnresolvable, err)
		}
	}

	fp, err := state.Compute(opts, append(append([]byte{}, vanillaRaw...), modificationRaw...))
	if err != nil {
		return nil, fmt.Errorf("launch: computing resume fingerprint: %w", err)
	}
	manifest, err := state.Load(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("launch: loading resume manifest: %w", err)
	}
	verified := state.Matches(manifest, fp)

	allLibraries := append(append([]descriptor.Library{}, vanilla.Libraries...), modificationLibraries(modification)...)
	nativesTracker := event.NewProgressTracker(l.Sink, natives.EventTag, len(allLibraries))
	if err := natives.Materialize(ctx, fetcher, opts.Root, versionID, allLibraries, l.Platform.Current(), nativesTracker, l.Logger); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mcPath := opts.Overrides.MinecraftJar
	if _, err := os.Stat(mcPath); errors.Is(err, os.ErrNotExist) {
		if err := l.fetchClientJar(ctx, fetcher, vanilla, mcPath); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("launch: statting client jar %s: %w", mcPath, err)
	}

	vanillaLibTracker := event.NewProgressTracker(l.Sink, library.EventTag, len(vanilla.Libraries))
	vanillaClasspath, err := library.Materialize(ctx, fetcher, opts.Overrides.LibraryRoot, vanilla.Libraries, l.Platform.Current(), vanillaLibTracker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	classpathSuffix := vanillaClasspath
	if modification != nil && !forgeLegacy {
		modLibTracker := event.NewProgressTracker(l.Sink, library.EventTag, len(modification.Libraries))
		modClasspath, err := library.Materialize(ctx, fetcher, opts.Overrides.LibraryRoot, modification.Libraries, l.Platform.Current(), modLibTracker)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		classpathSuffix = append(append([]string{}, modClasspath...), vanillaClasspath...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assetIndex, err := assets.FetchIndex(ctx, fetcher, opts.Root, vanilla.AssetIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if verified {
		l.Logger.Debug("launch: resume manifest matches, skipping asset verification", "version", versionID)
	} else {
		assetTracker := event.NewProgressTracker(l.Sink, assets.EventTag, len(assetIndex.Objects))
		var legacyTracker *event.ProgressTracker
		if vanilla.IsLegacyAssets() {
			legacyTracker = event.NewProgressTracker(l.Sink, assets.LegacyEventTag, len(assetIndex.Objects))
		}
		if err := assets.Materialize(ctx, fetcher, opts.Overrides.URL.Resource, opts.Root, assetIndex, vanilla.IsLegacyAssets(), assetTracker, legacyTracker); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
	}

	if err := state.Save(opts.Root, state.Manifest{Fingerprint: fp, VersionID: versionID}); err != nil {
		l.Logger.Warn("launch: saving resume manifest", "error", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assetsRoot := opts.Overrides.AssetRoot
	if vanilla.IsLegacyAssets() {
		assetsRoot = filepath.Join(opts.Root, "assets", "legacy")
	}

	launchOpts := opts
	if opts.Authorization.AccessToken != "" {
		tokenBuffer, err := secret.NewFromString(opts.Authorization.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("launch: protecting access token: %w", err)
		}
		defer tokenBuffer.Close()

		substituted := *opts
		substituted.Authorization.AccessToken = tokenBuffer.String()
		launchOpts = &substituted
	}

	synthesized, err := args.Synthesize(l.Platform, vanilla, modification, forgeLegacy, classpathPrefix, classpathSuffix, mcPath, vanilla.AssetIndex.ID, assetsRoot, launchOpts)
	if err != nil {
		return nil, fmt.Errorf("launch: synthesizing arguments: %w", err)
	}

	fullArgs := make([]string, 0, len(synthesized.JVMArgs)+1+len(synthesized.GameArgs))
	fullArgs = append(fullArgs, synthesized.JVMArgs...)
	fullArgs = append(fullArgs, synthesized.MainClass)
	fullArgs = append(fullArgs, synthesized.GameArgs...)
	l.Sink.Emit(event.Event{Kind: event.KindArguments, Arguments: fullArgs})

	exitCode, err := l.spawn(ctx, opts, synthesized)
	if err != nil {
		return nil, err
	}
	return &Result{ExitCode: exitCode}, nil
}

// probeJava runs "java -version" to verify the configured executable
// actually runs (spec §4.L step 2); launchopts.Builder only checks that
// the path resolves via exec.LookPath, not that it executes.
func probeJava(ctx context.Context, javaPath string) error {
	cmd := exec.CommandContext(ctx, javaPath, "-version")
	return cmd.Run()
}

// materializeClientPackage downloads (if opts.ClientPackage is a URL)
// or reads (if it is a local path) a client package ZIP and extracts it
// into root, removing the ZIP afterward when requested (spec §4.L step
// 4, §3 "removePackage").
func (l *Launcher) materializeClientPackage(ctx context.Context, fetcher *fetch.Fetcher, opts *launchopts.Options) error {
	zipPath := opts.ClientPackage
	if strings.HasPrefix(zipPath, "http://") || strings.HasPrefix(zipPath, "https://") {
		name := filepath.Base(zipPath)
		if _, err := fetcher.Fetch(ctx, zipPath, opts.Root, name, "client-package"); err != nil {
			return fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		zipPath = filepath.Join(opts.Root, name)
	}

	if err := archive.Extract(zipPath, opts.Root, true, l.Logger); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	l.Sink.Emit(event.Event{Kind: event.KindPackageExtract, PackageExtract: true})

	if opts.RemovePackage {
		if err := os.Remove(zipPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("launch: removing client package %s: %w", zipPath, err)
		}
	}
	return nil
}

// runInstaller ensures launcher_profiles.json exists and runs the
// generic pre-launch installer to completion (spec §4.L step 5). The
// installer's own behavior is opaque — it is invoked as a plain
// subprocess, not interpreted the way forge.RunWrapper interprets a
// Forge installer jar.
func (l *Launcher) runInstaller(ctx context.Context, opts *launchopts.Options) error {
	profilesPath := filepath.Join(opts.Root, "launcher_profiles.json")
	if _, err := os.Stat(profilesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(profilesPath, []byte("{}"), 0o644); err != nil {
			return fmt.Errorf("launch: writing %s: %w", profilesPath, err)
		}
	} else if err != nil {
		return fmt.Errorf("launch: statting %s: %w", profilesPath, err)
	}

	cmd := exec.CommandContext(ctx, opts.Installer)
	cmd.Dir = opts.Root
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s (output: %s)", ErrInstallerFailed, err, output)
	}
	return nil
}

// runForgeOverlay dispatches to the legacy-jar or modern-installer
// Forge path, returning the layered descriptor, its raw bytes, a
// classpath prefix (non-empty only for the legacy path), and whether
// the legacy classpath shape applies (spec §4.J, §4.L step 7).
func (l *Launcher) runForgeOverlay(ctx context.Context, fetcher *fetch.Fetcher, opts *launchopts.Options) (*descriptor.Descriptor, []byte, []string, bool, error) {
	modern, err := forge.IsModernInstaller(opts.Forge)
	if err != nil {
		return nil, nil, nil, false, fmt.Errorf("launch: inspecting forge archive: %w", err)
	}

	versionID := opts.Version.Custom
	if versionID == "" {
		versionID = opts.Version.Number + "-forge"
	}

	if !modern {
		tracker := event.NewProgressTracker(l.Sink, "forge-libraries", 0)
		overlay, err := forge.OverlayLegacy(ctx, fetcher, opts.Overrides.LibraryRoot, opts.Root, versionID, opts.Forge, opts.Overrides.URL.MavenForge, l.Platform.Current(), tracker)
		if err != nil {
			return nil, nil, nil, false, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		raw, err := os.ReadFile(forge.DescriptorPath(opts.Root, versionID))
		if err != nil {
			return nil, nil, nil, false, fmt.Errorf("launch: reading persisted forge descriptor: %w", err)
		}
		return overlay.Descriptor, raw, overlay.ClasspathPrefix, true, nil
	}

	if err := forge.RunWrapper(ctx, fetcher, opts.JavaPath, opts.Overrides.LibraryRoot, opts.Root, opts.Forge, DefaultForgeWrapperVersion); err != nil {
		return nil, nil, nil, false, fmt.Errorf("%w: %v", ErrInstallerFailed, err)
	}
	modification, raw, err := forge.LoadModernOverlay(ctx, opts.Root, versionID)
	if err != nil {
		return nil, nil, nil, false, fmt.Errorf("%w: %v", ErrVersionUnresolvable, err)
	}
	return modification, raw, nil, false, nil
}

// fetchClientJar downloads the client jar to mcPath and verifies its
// SHA-1, re-downloading once on a mismatch (spec §4.L step 6, §7
// HashMismatch).
func (l *Launcher) fetchClientJar(ctx context.Context, fetcher *fetch.Fetcher, vanilla *descriptor.Descriptor, mcPath string) error {
	destDir := filepath.Dir(mcPath)
	name := filepath.Base(mcPath)
	client := vanilla.Downloads.Client

	if _, err := fetcher.Fetch(ctx, client.URL, destDir, name, "version"); err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if client.SHA1 == "" {
		return nil
	}

	ok, err := digest.VerifyFile(mcPath, client.SHA1)
	if err != nil {
		return fmt.Errorf("launch: verifying client jar: %w", err)
	}
	if ok {
		return nil
	}

	os.Remove(mcPath)
	if _, err := fetcher.Fetch(ctx, client.URL, destDir, name, "version"); err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	ok, err = digest.VerifyFile(mcPath, client.SHA1)
	if err != nil {
		return fmt.Errorf("launch: verifying client jar: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: client jar", ErrHashMismatch)
	}
	return nil
}

// modificationLibraries returns modification's libraries, or nil for a
// pure vanilla launch.
func modificationLibraries(modification *descriptor.Descriptor) []descriptor.Library {
	if modification == nil {
		return nil
	}
	return modification.Libraries
}

// spawn starts the game child process, relays its stdout/stderr as
// data events, and waits for it to exit (spec §4.L steps 9-10). A
// canceled ctx kills the child.
func (l *Launcher) spawn(ctx context.Context, opts *launchopts.Options, synthesized *args.Result) (int, error) {
	fullArgs := make([]string, 0, len(synthesized.JVMArgs)+1+len(synthesized.GameArgs))
	fullArgs = append(fullArgs, synthesized.JVMArgs...)
	fullArgs = append(fullArgs, synthesized.MainClass)
	fullArgs = append(fullArgs, synthesized.GameArgs...)

	cmd := exec.Command(opts.JavaPath, fullArgs...)
	cwd := opts.Overrides.CWD
	if cwd == "" {
		cwd = opts.Root
	}
	cmd.Dir = cwd
	configureDetached(cmd, opts.Overrides.Detached)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("launch: creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("launch: creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launch: starting game process: %w", err)
	}

	killed := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if cmd.Process != nil {
				cmd.Process.Kill()
			}
		case <-killed:
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go l.relayStream(&wg, "stdout", stdout)
	go l.relayStream(&wg, "stderr", stderr)
	wg.Wait()

	waitErr := cmd.Wait()
	close(killed)

	exitCode := 0
	if waitErr != nil {
		var exitError *exec.ExitError
		if errors.As(waitErr, &exitError) {
			exitCode = exitError.ExitCode()
		} else if ctx.Err() != nil {
			exitCode = 1
		} else {
			return 0, fmt.Errorf("launch: waiting for game process: %w", waitErr)
		}
	}

	l.Sink.Emit(event.Event{Kind: event.KindClose, Close: event.Close{Code: exitCode}})
	return exitCode, nil
}

// relayStream copies r into data events, one chunk per read, until r
// closes. Errors that are just the normal signature of a child
// finishing (EOF, closed pipe) are not logged (spec §6's "data" event
// is "raw child stdout/stderr chunks", not a place to surface pipe
// teardown noise).
func (l *Launcher) relayStream(wg *sync.WaitGroup, stream string, r io.Reader) {
	defer wg.Done()

	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			l.Sink.Emit(event.Event{Kind: event.KindData, Data: event.DataChunk{Stream: stream, Bytes: chunk}})
		}
		if err != nil {
			if err != io.EOF && !netutil.IsExpectedCloseError(err) {
				l.Logger.Warn("launch: relaying child output", "stream", stream, "error", err)
			}
			return
		}
	}
}
