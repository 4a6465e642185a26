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

// Package codec wraps the two bundled compression codecs (LZ4,
// Snappy) behind the narrow two-method contract spec.md §4.2 requires
// of them: MaxCompressedLen and Compress. The codecs themselves are
// external collaborators (spec.md §1) — this package only adapts them.
package codec

import (
	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Variant selects which bundled codec a capture pipeline compresses
// with. It is recorded in the trace-file header's CompressionType so
// replay can dispatch to the matching decoder (spec.md §4.2).
type Variant int

const (
	// Lz4 is the default codec.
	Lz4 Variant = iota
	// Snappy is the alternative codec.
	Snappy
)

// Codec is the narrow contract every bundled compressor satisfies.
type Codec interface {
	// MaxCompressedLen returns an upper bound on the compressed size
	// of a src buffer of length n.
	MaxCompressedLen(n int) int
	// Compress writes the compressed form of src into dst (which must
	// be at least MaxCompressedLen(len(src)) bytes) and returns the
	// number of bytes written, or 0 to denote codec failure.
	Compress(dst, src []byte) int
}

// For returns the Codec implementing variant.
func For(variant Variant) Codec {
	switch variant {
	case Snappy:
		return snappyCodec{}
	default:
		return lz4Codec{}
	}
}

type lz4Codec struct{}

func (lz4Codec) MaxCompressedLen(n int) int {
	return lz4.CompressBlockBound(n)
}

func (lz4Codec) Compress(dst, src []byte) int {
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return 0
	}
	return n
}

type snappyCodec struct{}

func (snappyCodec) MaxCompressedLen(n int) int {
	return snappy.MaxEncodedLen(n)
}

func (snappyCodec) Compress(dst, src []byte) int {
	out := snappy.Encode(dst, src)
	if out == nil {
		return 0
	}
	return len(out)
}

// Decompress returns the decompressed form of src given the codec
// variant and the expected decompressed length (carried by the
// compression-extension prefix, spec.md §3).
func Decompress(variant Variant, src []byte, decompressedLen int) ([]byte, error) {
	dst := make([]byte, decompressedLen)
	switch variant {
	case Snappy:
		out, err := snappy.Decode(dst, src)
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	}
}
