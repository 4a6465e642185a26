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

// Package hwprofile is the hardware-counter profiler spec.md §9 lists
// among the tracer's three process-wide objects (alongside
// pack/costlog and the capture pipeline) without specifying further;
// grounded on
// _examples/original_source/layersvt/hwc_profiler/hwcProfiler.h. It
// records per-frame counter snapshots alongside the trace with the
// same deterministic start/stop lifecycle as the original, but it
// never interprets a counter value — that is an explicit Non-goal —
// so a snapshot's payload is an opaque byte blob the caller (the real
// hardware-counter backend) produced.
package hwprofile

import (
	"encoding/json"
	"sync"

	"github.com/ARM-software/vktrace-arm-sub003/pack/captureconfig"
)

// Snapshot is one frame's opaque hardware-counter sample, timestamped
// against the profiler's own clock.
type Snapshot struct {
	Frame     uint32 `json:"frame"`
	Timestamp uint64 `json:"ts"`
	Counters  []byte `json:"counters"`
}

// Profiler accumulates Snapshots within a configured frame window and
// flushes them as JSON, matching the original's Json::StyledWriter
// output shape loosely (a flat array rather than the hwcpipe-specific
// captureGroups/sampleOffsets structure, since this module carries no
// hwcpipe counter-name table).
type Profiler struct {
	mu         sync.Mutex
	running    bool
	frameMin   uint64
	frameMax   uint64
	frameCount uint32
	snapshots  []Snapshot
}

// New returns a Profiler windowed by cfg's range key (pack/costlog and
// pack/hwprofile share the same configuration surface, spec.md §6).
func New(cfg captureconfig.Config) *Profiler {
	frameMax := cfg.RangeMax
	if frameMax == 0 {
		frameMax = ^uint64(0)
	}
	return &Profiler{frameMin: cfg.RangeMin, frameMax: frameMax}
}

// Start begins a capture session. Calling Start while already running
// is a no-op, matching the original's single static instance.
func (p *Profiler) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = true
}

// Stop ends the capture session; Sample calls after Stop are ignored.
func (p *Profiler) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
}

// NextFrame advances the frame counter used to window Sample calls.
func (p *Profiler) NextFrame() {
	p.mu.Lock()
	p.frameCount++
	p.mu.Unlock()
}

// Sample records one opaque counter-data blob for the current frame,
// timestamped by the caller (nanoseconds since an arbitrary but
// per-trace-consistent epoch, matching the packet header timestamps
// in pack.PacketHeader). It is dropped if the profiler isn't running
// or the current frame falls outside the configured window.
func (p *Profiler) Sample(timestamp uint64, counters []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	if uint64(p.frameCount) < p.frameMin || uint64(p.frameCount) > p.frameMax {
		return
	}
	p.snapshots = append(p.snapshots, Snapshot{
		Frame:     p.frameCount,
		Timestamp: timestamp,
		Counters:  append([]byte(nil), counters...),
	})
}

// Flush returns the accumulated snapshots as indented JSON, the Go
// analogue of the original's Json::StyledWriter output.
func (p *Profiler) Flush() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return json.MarshalIndent(p.snapshots, "", "  ")
}
