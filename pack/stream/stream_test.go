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

package stream

import (
	"bytes"
	"io"
	"os"
	"reflect"
	"testing"

	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

func tempFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp("", "gfxtrace-stream-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})
	return f
}

func TestSizedReadWriteRoundTrip(t *testing.T) {
	f := tempFile(t)
	s := NewFile(f)
	if err := s.SizedWrite([]byte("hello")); err != nil {
		t.Fatalf("SizedWrite: %v", err)
	}
	if err := s.SetPosition(0); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	got, err := s.SizedRead()
	if err != nil {
		t.Fatalf("SizedRead: %v", err)
	}
	if !reflect.DeepEqual(got, []byte("hello")) {
		t.Errorf("got %q", got)
	}
}

func TestRawReadWriteRoundTrip(t *testing.T) {
	f := tempFile(t)
	s := NewFile(f)
	if err := s.RawWrite([]byte("abcdef")); err != nil {
		t.Fatalf("RawWrite: %v", err)
	}
	if err := s.SetPosition(0); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	got, err := s.RawRead(6)
	if err != nil {
		t.Fatalf("RawRead: %v", err)
	}
	if string(got) != "abcdef" {
		t.Errorf("got %q", got)
	}
}

// shortWriter accepts at most maxPerCall bytes per Write call, forcing
// RawWrite's retry loop to iterate.
type shortWriter struct {
	buf        bytes.Buffer
	maxPerCall int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.maxPerCall {
		p = p[:w.maxPerCall]
	}
	return w.buf.Write(p)
}

func (w *shortWriter) Read(p []byte) (int, error) { return w.buf.Read(p) }

func TestRawWriteRetriesOnShortWrites(t *testing.T) {
	sw := &shortWriter{maxPerCall: 2}
	s := NewSocket(sw)
	if err := s.RawWrite([]byte("abcdefgh")); err != nil {
		t.Fatalf("RawWrite: %v", err)
	}
	if sw.buf.String() != "abcdefgh" {
		t.Errorf("got %q", sw.buf.String())
	}
}

type zeroWriter struct{}

func (zeroWriter) Write(p []byte) (int, error) { return 0, nil }
func (zeroWriter) Read(p []byte) (int, error)  { return 0, io.EOF }

func TestRawWriteExhaustedFails(t *testing.T) {
	s := NewSocket(zeroWriter{})
	err := s.RawWrite([]byte("x"))
	if !tracerr.Is(err, tracerr.StreamIO) {
		t.Errorf("expected StreamIO, got %v", err)
	}
}

type pipeEnds struct {
	r *bytes.Buffer
}

func (p *pipeEnds) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeEnds) Write(b []byte) (int, error) { return p.r.Write(b) }

func TestSocketPositionIsUnsupported(t *testing.T) {
	s := NewSocket(&pipeEnds{r: &bytes.Buffer{}})
	if !s.IsSocket() {
		t.Fatalf("expected IsSocket() true")
	}
	if _, err := s.Position(); !tracerr.Is(err, tracerr.UnsupportedOnSocket) {
		t.Errorf("expected UnsupportedOnSocket, got %v", err)
	}
	if err := s.SetPosition(0); !tracerr.Is(err, tracerr.UnsupportedOnSocket) {
		t.Errorf("expected UnsupportedOnSocket, got %v", err)
	}
}
