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

	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

// Packet is a decoded (header, body) pair. Body is the raw bytes that
// follow the header on disk — every pointer-valued field inside it is
// a self-relative byte offset from the header base (the start of the
// whole packet, HeaderSize bytes before Body), or zero for null
// (spec.md §3).
type Packet struct {
	Header PacketHeader
	Body   []byte
}

// Bytes encodes p as it would appear on disk: header immediately
// followed by body.
func (p *Packet) Bytes() []byte {
	out := make([]byte, HeaderSize+len(p.Body))
	p.Header.Size = uint32(len(out))
	p.Header.Marshal(out[:HeaderSize])
	copy(out[HeaderSize:], p.Body)
	return out
}

// Decode splits raw (a full on-disk packet, header and body) into a
// Packet. It validates the invariant that header.Size equals the
// on-disk length of the whole packet.
func Decode(raw []byte) (*Packet, error) {
	if len(raw) < HeaderSize {
		return nil, tracerr.New(tracerr.Corrupt, "packet shorter than header: %d bytes", len(raw))
	}
	p := &Packet{}
	p.Header.Unmarshal(raw[:HeaderSize])
	if int(p.Header.Size) != len(raw) {
		return nil, tracerr.New(tracerr.Corrupt, "header.Size %d does not match on-disk length %d", p.Header.Size, len(raw))
	}
	p.Body = append([]byte(nil), raw[HeaderSize:]...)
	return p, nil
}

// PointerRef reads a self-relative pointer field at byte offset off
// within body, resolving it to an absolute slice into body, or nil if
// the field is null (zero). It validates that the referenced range
// lies fully within body, enforcing the per-packet invariant from
// spec.md §3.
func PointerRef(body []byte, off int, size uint32) ([]byte, error) {
	if off+8 > len(body) {
		return nil, tracerr.New(tracerr.Corrupt, "pointer field at %d falls outside body (len %d)", off, len(body))
	}
	target := binary.LittleEndian.Uint64(body[off : off+8])
	if target == 0 {
		return nil, nil
	}
	end := target + uint64(size)
	if target < HeaderSize || end > uint64(HeaderSize+len(body)) {
		return nil, tracerr.New(tracerr.Corrupt, "pointer field targets [%d,%d), outside packet bounds", target, end)
	}
	start := target - HeaderSize
	return body[start : start+uint64(size)], nil
}

// PutPointerRef writes a self-relative pointer to target (an absolute
// offset from the header base, as produced by BodyOffset) at byte
// offset off within body. A target of 0 denotes null.
func PutPointerRef(body []byte, off int, target uint64) {
	binary.LittleEndian.PutUint64(body[off:off+8], target)
}

// BodyOffset converts an offset within body to the self-relative,
// header-based form pointer fields are stored in.
func BodyOffset(offsetInBody int) uint64 {
	return uint64(HeaderSize + offsetInBody)
}
