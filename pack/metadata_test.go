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

func TestMetadataRoundTripPadded(t *testing.T) {
	m := &Metadata{InjectedCalls: []uint64{3, 7, 9}}
	raw, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(raw)%8 != 0 {
		t.Errorf("expected 8-byte-aligned encoding, got %d bytes", len(raw))
	}
	got, err := DecodeMetadata(raw)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if !reflect.DeepEqual(got.InjectedCalls, m.InjectedCalls) {
		t.Errorf("got %v, expected %v", got.InjectedCalls, m.InjectedCalls)
	}
}

func TestMetadataWithDeviceFeaturesGrowsInPlace(t *testing.T) {
	m := &Metadata{InjectedCalls: []uint64{1}}
	before, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	augmented := m.WithDeviceFeatures(map[string]DeviceFeatures{
		"0x1": {HandleHex: "0x1", Features: 0x7},
	})
	after, err := augmented.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(after) < len(before) {
		t.Errorf("augmented document shrank: %d -> %d", len(before), len(after))
	}

	got, err := DecodeMetadata(after)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if got.DeviceFeatures["0x1"].Features != 0x7 {
		t.Errorf("got %+v", got.DeviceFeatures)
	}
}
