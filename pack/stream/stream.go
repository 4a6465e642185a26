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

// Package stream implements the file-like stream abstraction (spec.md
// §4.1): a sequential-with-seek wrapper over either a seekable file or
// a message-stream socket, offering sized and raw reads/writes and
// position get/set. Grounded on
// _examples/original_source/vktrace/vktrace_common/vktrace_filelike.h.
package stream

import (
	"encoding/binary"
	"io"

	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

// Stream is a file-like stream. It wraps either an *os.File (seekable)
// or a net.Conn (not seekable) behind the same read/write contract.
type Stream struct {
	rw     io.ReadWriter
	seeker io.Seeker // nil when backed by a socket
}

// NewFile wraps a seekable backend (typically *os.File).
func NewFile(rw interface {
	io.ReadWriter
	io.Seeker
}) *Stream {
	return &Stream{rw: rw, seeker: rw}
}

// NewSocket wraps a non-seekable message-stream backend (typically
// net.Conn).
func NewSocket(rw io.ReadWriter) *Stream {
	return &Stream{rw: rw}
}

// RawRead reads exactly n bytes, or returns a StreamIO error.
func (s *Stream) RawRead(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.rw, buf); err != nil {
		return nil, tracerr.Wrap(tracerr.StreamIO, err, "raw read")
	}
	return buf, nil
}

// SizedRead reads a little-endian uint32 length prefix followed by
// that many raw bytes.
func (s *Stream) SizedRead() ([]byte, error) {
	lenBuf, err := s.RawRead(4)
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf)
	return s.RawRead(int(n))
}

// RawWrite writes b in full, retrying on short writes until either
// every byte is written or the backend stops making progress, at
// which point it fails with StreamIO (the "WriteExhausted" condition
// of spec.md §4.1).
func (s *Stream) RawWrite(b []byte) error {
	for len(b) > 0 {
		n, err := s.rw.Write(b)
		if err != nil {
			return tracerr.Wrap(tracerr.StreamIO, err, "raw write")
		}
		if n == 0 {
			return tracerr.New(tracerr.StreamIO, "write exhausted: backend accepted 0 of %d remaining bytes", len(b))
		}
		b = b[n:]
	}
	return nil
}

// SizedWrite writes a little-endian uint32 length prefix followed by
// b.
func (s *Stream) SizedWrite(b []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if err := s.RawWrite(lenBuf[:]); err != nil {
		return err
	}
	return s.RawWrite(b)
}

// Position returns the current stream offset.
func (s *Stream) Position() (int64, error) {
	if s.seeker == nil {
		return 0, tracerr.New(tracerr.UnsupportedOnSocket, "Position is not supported on a socket stream")
	}
	return s.seeker.Seek(0, io.SeekCurrent)
}

// SetPosition seeks to an absolute offset.
func (s *Stream) SetPosition(pos int64) error {
	if s.seeker == nil {
		return tracerr.New(tracerr.UnsupportedOnSocket, "SetPosition is not supported on a socket stream")
	}
	_, err := s.seeker.Seek(pos, io.SeekStart)
	if err != nil {
		return tracerr.Wrap(tracerr.StreamIO, err, "seek")
	}
	return nil
}

// IsSocket reports whether this stream is backed by a non-seekable
// socket.
func (s *Stream) IsSocket() bool { return s.seeker == nil }
