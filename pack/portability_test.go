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
)

func TestPortabilityTableRoundTrip(t *testing.T) {
	tab := &PortabilityTable{}
	tab.Append(64)
	tab.Append(512)
	tab.Append(4096)

	raw := tab.Encode()
	got, err := DecodePortabilityTable(raw)
	if err != nil {
		t.Fatalf("DecodePortabilityTable: %v", err)
	}
	if !reflect.DeepEqual(got.Offsets, tab.Offsets) {
		t.Errorf("got %v, expected %v", got.Offsets, tab.Offsets)
	}
}

func TestPortabilityTableEmpty(t *testing.T) {
	tab := &PortabilityTable{}
	raw := tab.Encode()
	if len(raw) != 8 {
		t.Fatalf("expected 8-byte trailer-only encoding, got %d bytes", len(raw))
	}
	got, err := DecodePortabilityTable(raw)
	if err != nil {
		t.Fatalf("DecodePortabilityTable: %v", err)
	}
	if len(got.Offsets) != 0 {
		t.Errorf("expected no offsets, got %v", got.Offsets)
	}
}

func TestDecodePortabilityTableRejectsLengthMismatch(t *testing.T) {
	raw := make([]byte, 16) // all zero: raw[:9] claims count 0, which implies 8 bytes, not 9
	if _, err := DecodePortabilityTable(raw[:9]); err == nil {
		t.Errorf("expected error for a buffer whose length disagrees with its count")
	}
}

func TestPortabilityRelevant(t *testing.T) {
	ids := map[uint16]bool{10: true, 20: true}
	if !PortabilityRelevant(10, ids) {
		t.Errorf("expected kind 10 to be relevant")
	}
	if PortabilityRelevant(99, ids) {
		t.Errorf("expected kind 99 to not be relevant")
	}
}
