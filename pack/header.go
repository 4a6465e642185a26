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

// Package pack implements the binary trace-packet container format:
// the per-packet header, the trace-file header, the compression
// extension record and the finalization trailer (spec.md §3, §4.1,
// §4.3). Everything on disk is little-endian.
package pack

import "encoding/binary"

// FamilyID distinguishes a normal packet from a compressed or marker
// packet (spec.md §3, §4.3).
type FamilyID uint16

const (
	// FamilyNormal is an uncompressed, fully decoded packet.
	FamilyNormal FamilyID = iota
	// FamilyCompressed is the sentinel family id a packet is switched
	// to when its body was replaced by a compression-extension prefix
	// plus compressed bytes (spec.md §3).
	FamilyCompressed
	// FamilyMarker is a stream marker packet (checkpoints, terminate,
	// destroy-instance) carried below the "real packet" threshold.
	FamilyMarker
)

// HeaderSize is the fixed, on-disk size in bytes of a PacketHeader.
const HeaderSize = 4 + 8 + 4 + 2 + 2 + 8*4 + 4 + 8

// PacketHeader is the fixed-layout record that precedes every packet
// body (spec.md §3).
type PacketHeader struct {
	// Size is the total size in bytes of the packet, header included.
	Size uint32
	// Index is the monotonic global packet index.
	Index uint64
	// ThreadID is the id of the application thread that produced the
	// packet.
	ThreadID uint32
	// Family distinguishes normal/compressed/marker packets.
	Family FamilyID
	// Kind is the packet-kind id (which GAPI call, or which marker).
	Kind uint16
	// TracerEnter, EntryPointEnter, EntryPointExit, TracerExit are the
	// four wall-clock timestamps, nanoseconds since an arbitrary but
	// per-trace-consistent epoch.
	TracerEnter, EntryPointEnter, EntryPointExit, TracerExit uint64
	// AuxOffset is the byte offset, relative to the header base, of
	// inline auxiliary buffers appended after the structured body.
	AuxOffset uint32
	// BodyPointer is zero on disk; in-memory it is the address of the
	// body immediately following the header.
	BodyPointer uint64
}

// Marshal writes h in its fixed on-disk layout.
func (h *PacketHeader) Marshal(b []byte) {
	_ = b[HeaderSize-1]
	binary.LittleEndian.PutUint32(b[0:4], h.Size)
	binary.LittleEndian.PutUint64(b[4:12], h.Index)
	binary.LittleEndian.PutUint32(b[12:16], h.ThreadID)
	binary.LittleEndian.PutUint16(b[16:18], uint16(h.Family))
	binary.LittleEndian.PutUint16(b[18:20], h.Kind)
	binary.LittleEndian.PutUint64(b[20:28], h.TracerEnter)
	binary.LittleEndian.PutUint64(b[28:36], h.EntryPointEnter)
	binary.LittleEndian.PutUint64(b[36:44], h.EntryPointExit)
	binary.LittleEndian.PutUint64(b[44:52], h.TracerExit)
	binary.LittleEndian.PutUint32(b[52:56], h.AuxOffset)
	binary.LittleEndian.PutUint64(b[56:64], 0) // BodyPointer is always zero on disk.
}

// Unmarshal reads h from its fixed on-disk layout. BodyPointer is left
// zero; callers that need it reinterpreted to the body address do so
// themselves once the body's backing buffer is known.
func (h *PacketHeader) Unmarshal(b []byte) {
	_ = b[HeaderSize-1]
	h.Size = binary.LittleEndian.Uint32(b[0:4])
	h.Index = binary.LittleEndian.Uint64(b[4:12])
	h.ThreadID = binary.LittleEndian.Uint32(b[12:16])
	h.Family = FamilyID(binary.LittleEndian.Uint16(b[16:18]))
	h.Kind = binary.LittleEndian.Uint16(b[18:20])
	h.TracerEnter = binary.LittleEndian.Uint64(b[20:28])
	h.EntryPointEnter = binary.LittleEndian.Uint64(b[28:36])
	h.EntryPointExit = binary.LittleEndian.Uint64(b[36:44])
	h.TracerExit = binary.LittleEndian.Uint64(b[44:52])
	h.AuxOffset = binary.LittleEndian.Uint32(b[52:56])
	h.BodyPointer = 0
}

// CompressionExtSize is the fixed size of the prefix written ahead of
// a compressed packet's compressed bytes (spec.md §3).
const CompressionExtSize = 8 + 8

// CompressionExt is the "compression-extension prefix" spec.md §3
// describes: the decompressed size and the offset, relative to the
// header base, of the inline body once decompressed.
type CompressionExt struct {
	DecompressedSize  uint64
	InlineBodyOffset uint64
}

// Marshal writes e in its fixed on-disk layout.
func (e *CompressionExt) Marshal(b []byte) {
	_ = b[CompressionExtSize-1]
	binary.LittleEndian.PutUint64(b[0:8], e.DecompressedSize)
	binary.LittleEndian.PutUint64(b[8:16], e.InlineBodyOffset)
}

// Unmarshal reads e from its fixed on-disk layout.
func (e *CompressionExt) Unmarshal(b []byte) {
	_ = b[CompressionExtSize-1]
	e.DecompressedSize = binary.LittleEndian.Uint64(b[0:8])
	e.InlineBodyOffset = binary.LittleEndian.Uint64(b[8:16])
}
