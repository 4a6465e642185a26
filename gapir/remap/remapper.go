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

package remap

import (
	"encoding/binary"

	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

// Remapper is the single polymorphic interface both the on-demand and
// premapped implementations satisfy (spec.md §4.5).
type Remapper interface {
	// Resolve translates a capture-time handle of the given kind to
	// its replay-time handle.
	Resolve(kind uint32, capture Handle) (Handle, error)
	// Aux returns the auxiliary record for a capture-time handle.
	Aux(kind uint32, capture Handle) (*AuxRecord, error)
	// Record installs a new capture→replay mapping as replay handles
	// are produced.
	Record(kind uint32, capture, replay Handle, aux *AuxRecord)
}

func tableFor(tables map[uint32]*Table, kind uint32) *Table {
	t, ok := tables[kind]
	if !ok {
		t = NewTable()
		tables[kind] = t
	}
	return t
}

// OnDemand looks up each handle argument per call (spec.md §4.5): no
// preload pass, suitable when handles are not known in advance.
type OnDemand struct {
	tables map[uint32]*Table
}

// NewOnDemand returns an empty on-demand remapper.
func NewOnDemand() *OnDemand {
	return &OnDemand{tables: map[uint32]*Table{}}
}

func (r *OnDemand) Record(kind uint32, capture, replay Handle, aux *AuxRecord) {
	tableFor(r.tables, kind).Record(capture, replay, aux)
}

func (r *OnDemand) Resolve(kind uint32, capture Handle) (Handle, error) {
	e, err := tableFor(r.tables, kind).Lookup(capture)
	if err != nil {
		return 0, err
	}
	return e.Replay, nil
}

func (r *OnDemand) Aux(kind uint32, capture Handle) (*AuxRecord, error) {
	e, err := tableFor(r.tables, kind).Lookup(capture)
	if err != nil {
		return nil, err
	}
	return e.Aux, nil
}

// Premapped resolves every pointer- and handle-valued field once
// during preload, rewriting packet buffers in place; replay then pays
// zero lookup overhead (spec.md §4.5). Correctness depends on the
// capture-stream invariant that every handle-producing packet
// executes before any handle-consuming packet; Seal is where that
// invariant is asserted.
type Premapped struct {
	tables   map[uint32]*Table
	byReplay map[uint32]map[Handle]*AuxRecord
	sealed   bool
}

// NewPremapped returns an empty premapped remapper.
func NewPremapped() *Premapped {
	return &Premapped{
		tables:   map[uint32]*Table{},
		byReplay: map[uint32]map[Handle]*AuxRecord{},
	}
}

// Record installs a mapping during the preload pass. It panics to
// surface a programming error, not a data error, if called after
// Seal: premapping assumes every handle producer runs before any
// consumer, and a Record past that point means that invariant broke.
func (r *Premapped) Record(kind uint32, capture, replay Handle, aux *AuxRecord) {
	if r.sealed {
		panic("remap: Record called on a sealed Premapped remapper")
	}
	tableFor(r.tables, kind).Record(capture, replay, aux)
	byKind, ok := r.byReplay[kind]
	if !ok {
		byKind = map[Handle]*AuxRecord{}
		r.byReplay[kind] = byKind
	}
	byKind[replay] = aux
}

// Seal ends the preload pass; subsequent Record calls are a
// programming error.
func (r *Premapped) Seal() { r.sealed = true }

// Resolve returns capture unchanged: by the time this is called the
// packet's handle field has already been rewritten to the replay
// handle by RewriteHandles.
func (r *Premapped) Resolve(kind uint32, capture Handle) (Handle, error) {
	return capture, nil
}

// Aux looks up the auxiliary record by the already-rewritten replay
// handle.
func (r *Premapped) Aux(kind uint32, replay Handle) (*AuxRecord, error) {
	byKind, ok := r.byReplay[kind]
	if !ok {
		return nil, tracerr.New(tracerr.UnknownHandle, "no replay handles recorded for kind %d", kind)
	}
	aux, ok := byKind[replay]
	if !ok {
		return nil, tracerr.New(tracerr.UnknownHandle, "no auxiliary record for replay handle %#x", uint64(replay))
	}
	return aux, nil
}

// HandleField locates one handle-valued field within a packet body,
// for RewriteHandles.
type HandleField struct {
	Kind       uint32
	BodyOffset int
}

// RewriteHandles resolves every field in fields against this
// remapper's tables and overwrites each one's 8-byte little-endian
// value in place with the resolved replay handle (spec.md §4.5
// "every pointer- and handle-valued field in every packet is resolved
// once and the packet buffer is rewritten in place").
func (r *Premapped) RewriteHandles(body []byte, fields []HandleField) error {
	for _, f := range fields {
		t := tableFor(r.tables, f.Kind)
		capture := Handle(binary.LittleEndian.Uint64(body[f.BodyOffset : f.BodyOffset+8]))
		e, err := t.Lookup(capture)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(body[f.BodyOffset:f.BodyOffset+8], uint64(e.Replay))
	}
	return nil
}
