// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package event

import "sync/atomic"

// ProgressTracker counts completed units of work within a single
// materialization phase (assets, libraries, or natives) and emits a
// [KindProgress] event for each one.
//
// The source specification uses one module-level counter shared across
// every phase, which is a latent race when phases run concurrently with
// each other's leftover goroutines (a retry from a previous phase landing
// after the next phase has already reset the counter). A ProgressTracker
// is constructed fresh per phase instead, so its counter can never be
// touched by another phase's goroutines.
type ProgressTracker struct {
	sink  Sink
	kind  string
	total int
	done  atomic.Int64
}

// NewProgressTracker creates a tracker for a phase with the given event
// type tag (e.g. "assets", "classes", "natives") and total unit count.
func NewProgressTracker(sink Sink, kind string, total int) *ProgressTracker {
	if sink == nil {
		sink = Discard
	}
	return &ProgressTracker{sink: sink, kind: kind, total: total}
}

// Advance records completion of one unit of work named task and emits
// the corresponding Progress event. Safe for concurrent use.
func (t *ProgressTracker) Advance(task string) {
	t.done.Add(1)
	t.sink.Emit(Event{
		Kind: KindProgress,
		Progress: Progress{
			Type:  t.kind,
			Task:  task,
			Total: t.total,
		},
	})
}

// Done reports how many units have been advanced so far.
func (t *ProgressTracker) Done() int64 { return t.done.Load() }
