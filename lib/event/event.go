// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

// Package event defines the structured events a launch pipeline emits to
// its caller. Design Notes in the source specification call out a single
// untyped dispatch as a re-architecture item; this package models events
// as a tagged variant instead — one struct per kind, delivered through a
// single channel of [Event] — so a subscriber can switch on [Event.Kind]
// and decode exactly one payload type without a type-assertion chain per
// call site.
package event

// Kind identifies the shape of an Event's payload.
type Kind string

const (
	// KindDebug carries a human-readable diagnostic string, prefixed the
	// way the source prefixes its debug channel.
	KindDebug Kind = "debug"

	// KindDownloadStatus is emitted repeatedly while one file transfers.
	KindDownloadStatus Kind = "download-status"

	// KindDownload is emitted once when one file finishes transferring.
	KindDownload Kind = "download"

	// KindProgress is emitted once per completed unit of work within a
	// materialization phase (one library, one asset object, one native).
	KindProgress Kind = "progress"

	// KindArguments carries the final synthesized JVM/game argument list,
	// emitted immediately before the child process is spawned.
	KindArguments Kind = "arguments"

	// KindData carries a raw chunk of the child process's stdout or
	// stderr, relayed verbatim.
	KindData Kind = "data"

	// KindClose is emitted once when the child process exits.
	KindClose Kind = "close"

	// KindPackageExtract is emitted once a client package archive has
	// finished extracting into the root directory.
	KindPackageExtract Kind = "package-extract"
)

// Event is a tagged variant: exactly one of the payload fields is
// meaningful, selected by Kind. Only one field is populated per Event;
// the rest are zero values.
type Event struct {
	Kind Kind

	Debug           string
	DownloadStatus  DownloadStatus
	Download        Download
	Progress        Progress
	Arguments       []string
	Data            DataChunk
	Close           Close
	PackageExtract  bool
}

// DownloadStatus reports incremental transfer progress for one file.
type DownloadStatus struct {
	Name    string
	Type    string
	Current int64
	Total   int64
}

// Download reports that one file finished transferring successfully.
type Download struct {
	Name string
}

// Progress reports completion of one unit of work within a phase.
type Progress struct {
	Type  string
	Task  string
	Total int
}

// DataChunk is a raw byte chunk relayed from the child process.
type DataChunk struct {
	Stream string // "stdout" or "stderr"
	Bytes  []byte
}

// Close reports the child process's exit status.
type Close struct {
	Code int
}

// Sink receives events from the pipeline. Implementations must not block
// indefinitely — a slow sink stalls the pipeline goroutine that emitted
// the event. [ChannelSink] is the default implementation for callers
// that want to consume events from a goroutine of their own.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(Event)

// Emit implements Sink.
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard is a Sink that drops every event. Useful when a caller wants
// the pipeline to run without progress reporting.
var Discard Sink = SinkFunc(func(Event) {})

// ChannelSink is a Sink backed by a buffered channel. Construct with
// [NewChannelSink]; read from C until it is closed by [ChannelSink.Close].
type ChannelSink struct {
	C chan Event
}

// NewChannelSink creates a ChannelSink with the given channel buffer
// size. A size of 0 means emitters block until a reader consumes each
// event; callers that want the pipeline to make progress even when
// nobody is reading should use a nonzero buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{C: make(chan Event, buffer)}
}

// Emit implements Sink. Safe to call after Close only if the caller
// guarantees no further Emit calls race with Close; Launcher calls
// Close exactly once, after the pipeline has fully stopped.
func (s *ChannelSink) Emit(e Event) {
	s.C <- e
}

// Close closes the underlying channel, signaling readers that no more
// events will arrive.
func (s *ChannelSink) Close() {
	close(s.C)
}
