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

// ChangedBlockInfoSize is the fixed on-disk size of a ChangedBlockInfo.
const ChangedBlockInfoSize = 8 * 4

// ChangedBlockInfo is a single descriptor within a changed-data
// package (spec.md §3): an offset/length pair plus two reserved
// fields kept for layout compatibility with the header descriptor
// (whose Offset/Length instead hold the block count and total byte
// sum, see EncodeChangedDataPackage).
type ChangedBlockInfo struct {
	Offset    uint64
	Length    uint64
	Reserved0 uint64
	Reserved1 uint64
}

// Marshal writes b in its fixed on-disk layout.
func (b *ChangedBlockInfo) Marshal(out []byte) {
	_ = out[ChangedBlockInfoSize-1]
	binary.LittleEndian.PutUint64(out[0:8], b.Offset)
	binary.LittleEndian.PutUint64(out[8:16], b.Length)
	binary.LittleEndian.PutUint64(out[16:24], b.Reserved0)
	binary.LittleEndian.PutUint64(out[24:32], b.Reserved1)
}

// Unmarshal reads b from its fixed on-disk layout.
func (b *ChangedBlockInfo) Unmarshal(in []byte) {
	_ = in[ChangedBlockInfoSize-1]
	b.Offset = binary.LittleEndian.Uint64(in[0:8])
	b.Length = binary.LittleEndian.Uint64(in[8:16])
	b.Reserved0 = binary.LittleEndian.Uint64(in[16:24])
	b.Reserved1 = binary.LittleEndian.Uint64(in[24:32])
}

// EncodeChangedDataPackage assembles a changed-data package: a header
// descriptor (Offset = block count, Length = sum of block lengths),
// one descriptor per block in order, then the tight concatenation of
// each block's bytes (spec.md §3). len(blocks) must equal len(data).
func EncodeChangedDataPackage(blocks []ChangedBlockInfo, data [][]byte) []byte {
	var totalData uint64
	for _, d := range data {
		totalData += uint64(len(d))
	}
	header := ChangedBlockInfo{Offset: uint64(len(blocks)), Length: totalData}

	out := make([]byte, ChangedBlockInfoSize*(len(blocks)+1)+int(totalData))
	header.Marshal(out[0:ChangedBlockInfoSize])
	pos := ChangedBlockInfoSize
	for _, b := range blocks {
		b.Marshal(out[pos : pos+ChangedBlockInfoSize])
		pos += ChangedBlockInfoSize
	}
	for _, d := range data {
		pos += copy(out[pos:], d)
	}
	return out
}

// DecodeChangedDataPackage parses a package produced by
// EncodeChangedDataPackage.
func DecodeChangedDataPackage(raw []byte) ([]ChangedBlockInfo, [][]byte, error) {
	if len(raw) < ChangedBlockInfoSize {
		return nil, nil, errCorrupt("changed-data package shorter than header descriptor")
	}
	var header ChangedBlockInfo
	header.Unmarshal(raw[0:ChangedBlockInfoSize])
	count := int(header.Offset)

	blocksEnd := ChangedBlockInfoSize * (count + 1)
	if len(raw) < blocksEnd {
		return nil, nil, errCorrupt("changed-data package truncated: need %d descriptor bytes, have %d", blocksEnd, len(raw))
	}
	blocks := make([]ChangedBlockInfo, count)
	pos := ChangedBlockInfoSize
	for i := range blocks {
		blocks[i].Unmarshal(raw[pos : pos+ChangedBlockInfoSize])
		pos += ChangedBlockInfoSize
	}

	data := make([][]byte, count)
	for i, b := range blocks {
		if pos+int(b.Length) > len(raw) {
			return nil, nil, errCorrupt("changed-data package block %d overruns buffer", i)
		}
		data[i] = raw[pos : pos+int(b.Length)]
		pos += int(b.Length)
	}
	if uint64(pos-blocksEnd) != header.Length {
		return nil, nil, errCorrupt("changed-data package total length mismatch: header says %d, actual %d", header.Length, pos-blocksEnd)
	}
	return blocks, data, nil
}

// RoundUpTo4 rounds n up to the next multiple of 4, the budget an
// implementer must reserve for a changed-data package (spec.md §4.4).
func RoundUpTo4(n uint64) uint64 {
	return (n + 3) &^ 3
}
