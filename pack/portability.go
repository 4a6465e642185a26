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

package pack

import "encoding/binary"

// PortabilityTable is the ordered sequence of file offsets of
// "portability-relevant" packets (spec.md §3): packets whose replay
// depends on physical-device topology, principally acceleration-
// structure build/size/create calls. It is appended to the trace file
// on finalization, trailed by its own length.
type PortabilityTable struct {
	Offsets []uint64
}

// Append records the pre-write file offset of a portability-relevant
// packet.
func (t *PortabilityTable) Append(fileOffset uint64) {
	t.Offsets = append(t.Offsets, fileOffset)
}

// Encode produces the on-disk form: each offset as a little-endian
// uint64, followed by a trailing little-endian uint64 giving the
// count (spec.md §4.3 step 1 of finalization).
func (t *PortabilityTable) Encode() []byte {
	out := make([]byte, (len(t.Offsets)+1)*8)
	for i, off := range t.Offsets {
		binary.LittleEndian.PutUint64(out[i*8:], off)
	}
	binary.LittleEndian.PutUint64(out[len(t.Offsets)*8:], uint64(len(t.Offsets)))
	return out
}

// DecodePortabilityTable parses the trailing length word first (it is
// the last 8 bytes of raw) and reads that many offsets from the front.
func DecodePortabilityTable(raw []byte) (*PortabilityTable, error) {
	if len(raw) < 8 {
		return nil, errCorrupt("portability table shorter than trailing length word")
	}
	count := binary.LittleEndian.Uint64(raw[len(raw)-8:])
	want := int(count)*8 + 8
	if len(raw) != want {
		return nil, errCorrupt("portability table length mismatch: have %d bytes, count implies %d", len(raw), want)
	}
	t := &PortabilityTable{Offsets: make([]uint64, count)}
	for i := range t.Offsets {
		t.Offsets[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
	return t, nil
}

// PortabilityRelevant reports whether packetKind belongs to the
// enumerated set of call kinds whose replay depends on
// physical-device topology (acceleration-structure build/size/create,
// and other device-topology-sensitive calls). The concrete kind IDs
// are owned by the interception layer (an external collaborator);
// ids is the caller-supplied enumeration of which kinds qualify.
func PortabilityRelevant(kind uint16, ids map[uint16]bool) bool {
	return ids[kind]
}
