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

import "github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"

// MapRange is one entry in a device-memory object's map-range stack:
// the application may remap the same allocation multiple times before
// unmapping, so entries are pushed and popped in LIFO order (spec.md
// §4.5).
type MapRange struct {
	Offset       uint64
	Size         uint64
	PendingAlloc bool
	ShadowPtr    uintptr
}

// AuxRecord is the per-handle auxiliary data a remap Entry carries
// alongside its replay handle: memory requirements, a shadow-copy
// pointer, device association, and — for device memory — the
// map-range stack (spec.md §3 "Remap tables").
type AuxRecord struct {
	Device             Handle
	MemoryRequirements uint64
	ShadowPtr          uintptr
	mapRanges          []MapRange
}

// PushMapRange records a new active mapping.
func (a *AuxRecord) PushMapRange(mr MapRange) {
	a.mapRanges = append(a.mapRanges, mr)
}

// PopMapRange removes and returns the most recent mapping, or fails
// if the stack is empty (an unmap with nothing mapped).
func (a *AuxRecord) PopMapRange() (MapRange, error) {
	if len(a.mapRanges) == 0 {
		return MapRange{}, tracerr.New(tracerr.UnknownHandle, "unmap with no active map-range")
	}
	top := a.mapRanges[len(a.mapRanges)-1]
	a.mapRanges = a.mapRanges[:len(a.mapRanges)-1]
	return top, nil
}

// CurrentMapRange peeks the active mapping without popping it.
func (a *AuxRecord) CurrentMapRange() (MapRange, bool) {
	if len(a.mapRanges) == 0 {
		return MapRange{}, false
	}
	return a.mapRanges[len(a.mapRanges)-1], true
}
