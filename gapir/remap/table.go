// Copyright (C) 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package remap implements the replay object remapper (spec.md §4.5):
// per-GAPI-object-kind tables translating capture-time handles to
// replay-time handles, in both on-demand and premapped modes.
// Grounded on
// _examples/original_source/vktrace/vktrace_replay/vkreplay_objmapper_class_defs.h.
package remap

import (
	"sync"

	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

// Handle is a capture- or replay-time GAPI object handle.
type Handle uint64

// Entry is what a capture handle maps to: the replay handle plus its
// auxiliary record.
type Entry struct {
	Replay Handle
	Aux    *AuxRecord
}

// Table is one GAPI object kind's capture→replay mapping.
type Table struct {
	mu      sync.RWMutex
	entries map[Handle]Entry
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: map[Handle]Entry{}}
}

// Record installs capture → (replay, aux).
func (t *Table) Record(capture, replay Handle, aux *AuxRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[capture] = Entry{Replay: replay, Aux: aux}
}

// Lookup resolves a capture handle, or fails with UnknownHandle.
func (t *Table) Lookup(capture Handle) (Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[capture]
	if !ok {
		return Entry{}, tracerr.New(tracerr.UnknownHandle, "no replay mapping for capture handle %#x", uint64(capture))
	}
	return e, nil
}

// Entries returns a snapshot of every (capture, entry) pair, for
// callers that need to iterate (e.g. the premapped preload pass).
func (t *Table) Entries() map[Handle]Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[Handle]Entry, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}
