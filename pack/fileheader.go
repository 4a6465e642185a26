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

// Magic is the four leading bytes every trace file starts with.
var Magic = [4]byte{'G', 'T', 'R', 'C'}

// CompressionType identifies the codec used for compressed packets in
// a trace file (spec.md §4.2).
type CompressionType uint32

const (
	// CompressionNone means no packet in the file was compressed.
	CompressionNone CompressionType = iota
	// CompressionLz4 selects the LZ4 codec.
	CompressionLz4
	// CompressionSnappy selects the Snappy codec.
	CompressionSnappy
)

// FileHeaderFlags are the file-scope bit flags (spec.md §3).
type FileHeaderFlags uint32

const (
	// FlagUsesAccelerationStructureAPI is set during finalization if
	// any acceleration-structure packet was seen (spec.md §4.3 step 4).
	FlagUsesAccelerationStructureAPI FileHeaderFlags = 1 << iota
)

// FileHeaderSize is the fixed on-disk size of a FileHeader.
const FileHeaderSize = 4 + 4 + 4 + 1 + 1 + 1 + 1 + 4 + 4 + 8 + 8 + 1 + 3 // padded to a 4-byte boundary

// FileHeader is the file-scope header that precedes the packet stream
// (spec.md §3). PortabilityTableValid, MetadataOffset,
// DecompressedTotalSize and CompressionType are back-patched during
// finalization (spec.md §4.3), and Flags gains
// FlagUsesAccelerationStructureAPI then if it applies; every other
// field is written once at creation.
type FileHeader struct {
	Version      uint32
	FamilyMask   uint32
	Architecture uint8
	OS           uint8
	// Endian is 0 for little-endian, 1 for big-endian; this format is
	// always written little-endian regardless of host endianness, this
	// field simply records what the host tracer observed.
	Endian uint8
	// PtrSize is the capturing host's physical-pointer size, 4 or 8.
	PtrSize uint8
	Flags   FileHeaderFlags

	// CompressionType is back-patched once any packet is compressed.
	CompressionType CompressionType
	// DecompressedTotalSize is back-patched at finalization: the sum
	// of the uncompressed header.Size of every non-marker packet plus
	// the synthesized metadata/portability packet sizes.
	DecompressedTotalSize uint64
	// MetadataOffset is back-patched with the metadata packet's file
	// offset once it is written (0 if no metadata packet was written).
	MetadataOffset uint64
	// PortabilityTableValid is back-patched to 1 once the portability
	// table has been fully appended.
	PortabilityTableValid uint8
}

// Marshal writes h in its fixed on-disk layout.
func (h *FileHeader) Marshal(b []byte) {
	_ = b[FileHeaderSize-1]
	copy(b[0:4], Magic[:])
	binary.LittleEndian.PutUint32(b[4:8], h.Version)
	binary.LittleEndian.PutUint32(b[8:12], h.FamilyMask)
	b[12] = h.Architecture
	b[13] = h.OS
	b[14] = h.Endian
	b[15] = h.PtrSize
	binary.LittleEndian.PutUint32(b[16:20], uint32(h.Flags))
	binary.LittleEndian.PutUint32(b[20:24], uint32(h.CompressionType))
	binary.LittleEndian.PutUint64(b[24:32], h.DecompressedTotalSize)
	binary.LittleEndian.PutUint64(b[32:40], h.MetadataOffset)
	b[40] = h.PortabilityTableValid
}

// Unmarshal reads h from its fixed on-disk layout. It returns false if
// the magic does not match.
func (h *FileHeader) Unmarshal(b []byte) bool {
	_ = b[FileHeaderSize-1]
	if string(b[0:4]) != string(Magic[:]) {
		return false
	}
	h.Version = binary.LittleEndian.Uint32(b[4:8])
	h.FamilyMask = binary.LittleEndian.Uint32(b[8:12])
	h.Architecture = b[12]
	h.OS = b[13]
	h.Endian = b[14]
	h.PtrSize = b[15]
	h.Flags = FileHeaderFlags(binary.LittleEndian.Uint32(b[16:20]))
	h.CompressionType = CompressionType(binary.LittleEndian.Uint32(b[20:24]))
	h.DecompressedTotalSize = binary.LittleEndian.Uint64(b[24:32])
	h.MetadataOffset = binary.LittleEndian.Uint64(b[32:40])
	h.PortabilityTableValid = b[40]
	return true
}

// offsets of the back-patched fields within the marshaled header,
// used by Backpatch (pipeline.go) to rewrite them in place
// without re-marshaling the whole header.
const (
	offFlags                 = 16
	offCompressionType       = 20
	offDecompressedTotalSize = 24
	offMetadataOffset        = 32
	offPortabilityTableValid = 40
)
