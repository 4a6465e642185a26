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

import (
	"encoding/binary"
	"sync"

	"github.com/ARM-software/vktrace-arm-sub003/core/log"
	"github.com/ARM-software/vktrace-arm-sub003/pack/codec"
	"github.com/ARM-software/vktrace-arm-sub003/pack/stream"
	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

// Classifier answers the packet-kind questions the capture pipeline
// needs but cannot itself know, because they depend on the concrete
// GAPI the interception layer (an external collaborator, spec.md §1)
// is tracing: which packets are markers, which carry the "injected"
// tag, which create a device, and which are portability-relevant.
type Classifier interface {
	// IsBelowCheckpoint reports whether p is a pure stream marker that
	// should be dropped outright (step 1).
	IsBelowCheckpoint(p *Packet) bool
	// IsTerminate reports whether p is the terminate-process marker.
	IsTerminate(p *Packet) bool
	// IsDestroyInstance reports whether p is the destroy-instance
	// marker.
	IsDestroyInstance(p *Packet) bool
	// IsInjected reports whether p carries the tracer's "injected"
	// tag (step 3).
	IsInjected(p *Packet) bool
	// IsCreateDevice reports whether p is a create-device call.
	IsCreateDevice(p *Packet) bool
	// ExtractDeviceHandle pulls the returned device handle and its
	// captured-feature bitmask out of a create-device packet,
	// honoring the trace's captured pointer size (4 or 8), which may
	// differ from the host's (step 4).
	ExtractDeviceHandle(p *Packet, capturedPtrSize int) (handle uint64, features uint64, ok bool)
	// IsPortabilityRelevant reports whether p's kind belongs to the
	// enumerated portability-relevant set (step 6).
	IsPortabilityRelevant(p *Packet) bool
	// IsAccelerationStructureAPI reports whether p invokes an
	// acceleration-structure entry point, for the file header's
	// "uses-AS-API" bit.
	IsAccelerationStructureAPI(p *Packet) bool
}

// MetadataVersion gates which finalization behaviors are available,
// mirroring the trace-file format's own version field (spec.md §4.3).
type MetadataVersion uint32

const (
	metadataVersionInjectedCalls  MetadataVersion = 3
	metadataVersionCreateDevice   MetadataVersion = 5
	metadataVersionMetadataPacket MetadataVersion = 10
	metadataVersionDeviceFeatures MetadataVersion = 11
)

// Pipeline assembles packets as they arrive from the interception
// layer, routes them through the portability/injected-calls/
// compression bookkeeping, writes them to a stream, and produces the
// trailer on termination (spec.md §4.3).
type Pipeline struct {
	mu sync.Mutex

	out       *stream.Stream
	classify  Classifier
	codec     codec.Variant
	version   MetadataVersion
	ptrSize   int // capture-time pointer size, 4 or 8

	portability PortabilityTable
	injected    []uint64
	features    map[string]DeviceFeatures

	lastPacketIndex   uint64
	lastPacketThread  uint32
	lastPacketEndTime uint64

	fileOffset         uint64
	decompressedTotal  uint64
	sawCompressed      bool
	sawAccelStructAPI  bool
	finalized          bool

	metadataOffset uint64
}

// NewPipeline constructs a Pipeline writing to out.
func NewPipeline(out *stream.Stream, classify Classifier, variant codec.Variant, version MetadataVersion, capturedPtrSize int) *Pipeline {
	return &Pipeline{
		out:      out,
		classify: classify,
		codec:    variant,
		version:  version,
		ptrSize:  capturedPtrSize,
		features: map[string]DeviceFeatures{},
	}
}

// compressionThreshold is the fixed body-size floor below which
// compression is never attempted (spec.md §3).
const compressionThreshold = 1024

// ProcessPacket runs the exact eight-step per-packet processing order
// of spec.md §4.3. Stream errors are logged and swallowed (failure of
// the packet stream is non-fatal); all other errors are returned.
func (pl *Pipeline) ProcessPacket(ctx log.Context, p *Packet) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	// Step 1.
	if pl.classify.IsBelowCheckpoint(p) {
		return nil
	}

	// Step 2.
	if pl.classify.IsTerminate(p) || pl.classify.IsDestroyInstance(p) {
		return pl.finalizeLocked(ctx)
	}

	// Step 3.
	if pl.version >= metadataVersionInjectedCalls && pl.classify.IsInjected(p) {
		pl.injected = append(pl.injected, p.Header.Index)
	}

	// Step 4.
	if pl.version >= metadataVersionCreateDevice && pl.classify.IsCreateDevice(p) {
		if handle, features, ok := pl.classify.ExtractDeviceHandle(p, pl.ptrSize); ok {
			pl.features[hexHandle(handle)] = DeviceFeatures{HandleHex: hexHandle(handle), Features: features}
		}
	}

	if pl.classify.IsAccelerationStructureAPI(p) {
		pl.sawAccelStructAPI = true
	}

	// Step 5.
	toWrite := p
	if len(p.Body) > compressionThreshold {
		if compressed, ok := pl.compressPacket(p); ok {
			toWrite = compressed
			pl.sawCompressed = true
		}
	}

	// Step 6.
	preWriteOffset := pl.fileOffset
	if pl.classify.IsPortabilityRelevant(p) {
		pl.portability.Append(preWriteOffset)
	}

	// Step 7.
	pl.lastPacketIndex = p.Header.Index
	pl.lastPacketThread = p.Header.ThreadID
	pl.lastPacketEndTime = p.Header.EntryPointExit
	raw := toWrite.Bytes()
	pl.fileOffset += uint64(len(raw))
	pl.decompressedTotal += uint64(HeaderSize + len(p.Body))

	// Step 8.
	if err := pl.out.RawWrite(raw); err != nil {
		ctx.Error().Log("packet stream write failed: %v", err)
	}
	return nil
}

// compressPacket implements step 5: clone into a fresh buffer, invoke
// the codec, and substitute only if the result is strictly smaller.
func (pl *Pipeline) compressPacket(p *Packet) (*Packet, bool) {
	c := codec.For(pl.codec)
	dst := make([]byte, c.MaxCompressedLen(len(p.Body)))
	n := c.Compress(dst, p.Body)
	if n == 0 || n >= len(p.Body) {
		return nil, false
	}
	ext := CompressionExt{DecompressedSize: uint64(len(p.Body)), InlineBodyOffset: CompressionExtSize}
	body := make([]byte, CompressionExtSize+n)
	ext.Marshal(body[:CompressionExtSize])
	copy(body[CompressionExtSize:], dst[:n])

	compressed := &Packet{Header: p.Header, Body: body}
	compressed.Header.Family = FamilyCompressed
	return compressed, true
}

// finalizeLocked runs the five-step finalization sequence of spec.md
// §4.3. It must be called with pl.mu held.
func (pl *Pipeline) finalizeLocked(ctx log.Context) error {
	if pl.finalized {
		return nil
	}

	// Step 1.
	if pl.version >= metadataVersionMetadataPacket {
		meta := &Metadata{InjectedCalls: pl.injected}
		metaOffset := pl.fileOffset
		body, err := meta.Encode()
		if err != nil {
			return err
		}
		metaPacket := &Packet{Header: PacketHeader{Family: FamilyMarker}, Body: body}
		if err := pl.writeFinal(metaPacket); err != nil {
			return err
		}
		pl.metadataOffset = metaOffset

		// Step 2.
		if pl.version >= metadataVersionDeviceFeatures {
			augmented := meta.WithDeviceFeatures(pl.features)
			augBody, err := augmented.Encode()
			if err != nil {
				return err
			}
			if len(augBody) < len(body) {
				return tracerr.New(tracerr.Corrupt, "augmented metadata document shrank: %d -> %d", len(body), len(augBody))
			}
			augPacket := &Packet{Header: PacketHeader{Family: FamilyMarker}, Body: augBody}
			if err := pl.writeFinal(augPacket); err != nil {
				return err
			}
		}
	}

	// Step 3: portability table as one synthetic packet, written after
	// metadata/device-features per the on-disk layout.
	tableBody := pl.portability.Encode()
	tablePacket := &Packet{Header: PacketHeader{Family: FamilyMarker}, Body: tableBody}
	if err := pl.writeFinal(tablePacket); err != nil {
		return err
	}

	// Step 4: back-patch handled by the caller via Trailer(), which
	// reports the accumulated fields, and Backpatch. finalizeLocked does
	// not close the stream; it stays open for Backpatch and closing it
	// is left to the caller.
	pl.finalized = true
	return nil
}

func (pl *Pipeline) writeFinal(p *Packet) error {
	raw := p.Bytes()
	pl.fileOffset += uint64(len(raw))
	pl.decompressedTotal += uint64(len(raw))
	if err := pl.out.RawWrite(raw); err != nil {
		return tracerr.Wrap(tracerr.StreamIO, err, "terminate-time write")
	}
	return nil
}

// Trailer reports the back-patch values finalization step 4 writes
// into the trace-file header: decompressed total size, whether
// compression was used, whether the acceleration-structure API was
// exercised, and the metadata packet's file offset (0 if none was
// written).
type Trailer struct {
	DecompressedTotalSize    uint64
	CompressionType          CompressionType
	UsesAccelerationStruct   bool
	MetadataOffset           uint64
	PortabilityTableValid    bool
}

// Trailer returns the back-patch values accumulated so far. Valid
// only after finalization (ProcessPacket observing the terminate or
// destroy-instance marker) has run.
func (pl *Pipeline) Trailer() Trailer {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	ct := CompressionNone
	if pl.sawCompressed {
		ct = pl.codecToFileType()
	}
	return Trailer{
		DecompressedTotalSize:  pl.decompressedTotal,
		CompressionType:        ct,
		UsesAccelerationStruct: pl.sawAccelStructAPI,
		MetadataOffset:         pl.metadataOffset,
		PortabilityTableValid:  true,
	}
}

func (pl *Pipeline) codecToFileType() CompressionType {
	switch pl.codec {
	case codec.Snappy:
		return CompressionSnappy
	default:
		return CompressionLz4
	}
}

// Backpatch rewrites the four back-patched fields of the trace-file
// header already written at fileHeaderOffset, using t's accumulated
// values (spec.md §4.3 finalization step 4), and ORs
// FlagUsesAccelerationStructureAPI into Flags when
// t.UsesAccelerationStruct is set. It seeks s to each
// field's absolute offset in turn and restores the stream's prior
// position when it returns. s must be file-backed: a socket stream
// cannot seek, and back-patching is meaningless for one anyway (the
// header was already delivered to its reader).
func Backpatch(s *stream.Stream, fileHeaderOffset int64, t Trailer) error {
	prev, err := s.Position()
	if err != nil {
		return err
	}

	var buf [8]byte
	write := func(fieldOffset int64, n int) error {
		if err := s.SetPosition(fileHeaderOffset + fieldOffset); err != nil {
			return err
		}
		return s.RawWrite(buf[:n])
	}

	if t.UsesAccelerationStruct {
		if err := s.SetPosition(fileHeaderOffset + offFlags); err != nil {
			return err
		}
		existing, err := s.RawRead(4)
		if err != nil {
			return err
		}
		flags := binary.LittleEndian.Uint32(existing) | uint32(FlagUsesAccelerationStructureAPI)
		binary.LittleEndian.PutUint32(buf[:4], flags)
		if err := write(offFlags, 4); err != nil {
			return err
		}
	}

	binary.LittleEndian.PutUint32(buf[:4], uint32(t.CompressionType))
	if err := write(offCompressionType, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf[:8], t.DecompressedTotalSize)
	if err := write(offDecompressedTotalSize, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf[:8], t.MetadataOffset)
	if err := write(offMetadataOffset, 8); err != nil {
		return err
	}
	buf[0] = 0
	if t.PortabilityTableValid {
		buf[0] = 1
	}
	if err := write(offPortabilityTableValid, 1); err != nil {
		return err
	}

	return s.SetPosition(prev)
}

func hexHandle(h uint64) string {
	const hexDigits = "0123456789abcdef"
	if h == 0 {
		return "0x0"
	}
	var buf [18]byte
	i := len(buf)
	for h > 0 {
		i--
		buf[i] = hexDigits[h&0xf]
		h >>= 4
	}
	i--
	buf[i] = 'x'
	i--
	buf[i] = '0'
	return string(buf[i:])
}
