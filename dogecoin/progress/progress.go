// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package progress implements the Progress Tracker (C7): per-decode live
// counters with a push-style snapshot read.
package progress

import (
	"sync"
	"time"
)

// Entry is a stable, read-only view of one decode's progress.
type Entry struct {
	Label          string
	ChunksFound    int
	EstimatedTotal *int64
	DepTotal       *int
	DepDone        int
	Active         bool
	StartedAt      time.Time
	UpdatedAt      time.Time
}

// entryState is the mutable internal counterpart of Entry.
type entryState struct {
	label          string
	chunksFound    int
	estimatedTotal *int64
	depTotal       *int
	depDone        int
	active         bool
	startedAt      time.Time
	updatedAt      time.Time
}

// Tracker owns the live snapshot set for every in-flight decode. It is
// the only mutator of that set; every other component only reads
// snapshots.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*entryState
}

// New is a constructor for Tracker.
func New() *Tracker {
	return &Tracker{entries: map[string]*entryState{}}
}

// Start begins tracking a decode under key, which should be the base
// txid.
func (t *Tracker) Start(key, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.entries[key] = &entryState{
		label:     label,
		active:    true,
		startedAt: now,
		updatedAt: now,
	}
}

// Update accumulates chunksFoundDelta into the entry's chunk count and
// grows its estimated total monotonically from lastRemainingChunksSeen.
func (t *Tracker) Update(key string, chunksFoundDelta int, lastRemainingChunksSeen int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || !e.active {
		return
	}

	e.chunksFound += chunksFoundDelta
	if e.estimatedTotal == nil || lastRemainingChunksSeen > *e.estimatedTotal {
		v := lastRemainingChunksSeen
		e.estimatedTotal = &v
	}
	e.updatedAt = time.Now()
}

// SetDependencyPlan records the total number of dependencies found for a
// decode, once known.
func (t *Tracker) SetDependencyPlan(key string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || !e.active {
		return
	}

	e.depTotal = &total
	e.updatedAt = time.Now()
}

// IncrementDependencyDone advances the done-count of dependencies for a
// decode by one.
func (t *Tracker) IncrementDependencyDone(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || !e.active {
		return
	}

	e.depDone++
	e.updatedAt = time.Now()
}

// Complete marks a decode inactive without clearing its counters. No
// further mutation of this entry is permitted after Complete returns.
func (t *Tracker) Complete(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		return
	}

	e.active = false
	e.updatedAt = time.Now()
}

// Snapshot returns a stable, read-only view of the entry for key.
func (t *Tracker) Snapshot(key string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		return Entry{}, false
	}

	return Entry{
		Label:          e.label,
		ChunksFound:    e.chunksFound,
		EstimatedTotal: e.estimatedTotal,
		DepTotal:       e.depTotal,
		DepDone:        e.depDone,
		Active:         e.active,
		StartedAt:      e.startedAt,
		UpdatedAt:      e.updatedAt,
	}, true
}
