// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// mclaunch is a command-line launcher for the Minecraft client: it
// resolves a version, materializes libraries/natives/assets, applies an
// optional Forge overlay, and spawns the game, showing progress as a
// terminal UI when attached to one and falling back to structured
// logging otherwise.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/foundry-mc/launcher/lib/event"
	"github.com/foundry-mc/launcher/lib/launch"
	"github.com/foundry-mc/launcher/lib/process"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

// exitError propagates the game child process's own exit code through
// run() without mclaunch printing an extra error line for it.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("game exited with code %d", e.code) }
func (e *exitError) ExitCode() int { return e.code }

func run() error {
	flags := newFlagSet()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flags.set)
			return nil
		}
		return err
	}
	if flags.help {
		printHelp(flags.set)
		return nil
	}
	if flags.versionInfo {
		fmt.Println("mclaunch (foundry-mc launcher)")
		return nil
	}

	opts, err := flags.buildOptions()
	if err != nil {
		return err
	}

	interactive := !flags.plain && term.IsTerminal(int(os.Stdout.Fd()))

	logHandler, tuiHandler := newLogHandler(flags.logOutput, interactive)
	logger := slog.New(logHandler)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sink := event.NewChannelSink(256)
	launcher := launch.NewLauncher(sink, logger)

	var result *launch.Result
	var launchErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, launchErr = launcher.Launch(ctx, opts)
	}()

	if interactive {
		runTUI(sink, tuiHandler, cancel)
	} else {
		runPlain(sink, logger)
	}
	<-done

	if launchErr != nil {
		return fmt.Errorf("launch failed: %w", launchErr)
	}
	if result.ExitCode != 0 {
		return &exitError{code: result.ExitCode}
	}
	return nil
}
