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
	"reflect"
	"testing"

	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

func TestPacketRoundTrip(t *testing.T) {
	p := &Packet{
		Header: PacketHeader{
			Index:    42,
			ThreadID: 7,
			Family:   FamilyNormal,
			Kind:     3,
		},
		Body: []byte("hello, gfxtrace"),
	}
	raw := p.Bytes()
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Header.Index != 42 || got.Header.ThreadID != 7 || got.Header.Kind != 3 {
		t.Errorf("header mismatch: %+v", got.Header)
	}
	if !reflect.DeepEqual(got.Body, p.Body) {
		t.Errorf("body mismatch: got %q, expected %q", got.Body, p.Body)
	}
	if int(got.Header.Size) != len(raw) {
		t.Errorf("header.Size %d != len(raw) %d", got.Header.Size, len(raw))
	}
}

func TestDecodeRejectsSizeMismatch(t *testing.T) {
	p := &Packet{Body: []byte("x")}
	raw := p.Bytes()
	raw = append(raw, 0xFF) // corrupt: trailing byte header.Size doesn't account for.
	if _, err := Decode(raw); !tracerr.Is(err, tracerr.Corrupt) {
		t.Errorf("expected Corrupt, got %v", err)
	}
}

func TestPointerRefNullAndResolved(t *testing.T) {
	body := make([]byte, 32)
	// Field at offset 0 is null.
	PutPointerRef(body, 0, 0)
	got, err := PointerRef(body, 0, 4)
	if err != nil || got != nil {
		t.Errorf("expected nil, nil; got %v, %v", got, err)
	}

	// Field at offset 8 points at bytes [16,20) of body.
	copy(body[16:20], []byte{1, 2, 3, 4})
	PutPointerRef(body, 8, BodyOffset(16))
	got, err = PointerRef(body, 8, 4)
	if err != nil {
		t.Fatalf("PointerRef: %v", err)
	}
	if !reflect.DeepEqual(got, []byte{1, 2, 3, 4}) {
		t.Errorf("got %v", got)
	}
}

func TestPointerRefOutOfBoundsIsCorrupt(t *testing.T) {
	body := make([]byte, 16)
	PutPointerRef(body, 0, BodyOffset(100))
	if _, err := PointerRef(body, 0, 4); !tracerr.Is(err, tracerr.Corrupt) {
		t.Errorf("expected Corrupt, got %v", err)
	}
}
