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

package pipelinecache

import (
	"bytes"
	"testing"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	id := DeviceIdentity{VendorID: 0x13b5, DeviceID: 0x7500}
	a := NewAccessor(dir, id)

	if err := a.Write(42, []byte("cached bytes")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !a.Exists(42) {
		t.Fatalf("expected cache file to exist after Write")
	}

	b := NewAccessor(dir, id)
	if err := b.Load(42); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := b.Get(42)
	if !ok {
		t.Fatalf("expected cache loaded for key 42")
	}
	if !bytes.Equal(got, []byte("cached bytes")) {
		t.Errorf("got %q", got)
	}
}

func TestLoadMissingIsNotError(t *testing.T) {
	a := NewAccessor(t.TempDir(), DeviceIdentity{})
	if err := a.Load(99); err != nil {
		t.Errorf("expected no error loading a missing cache, got %v", err)
	}
	if _, ok := a.Get(99); ok {
		t.Errorf("expected no cache present for key 99")
	}
}

func TestDifferentDeviceIdentityDoesNotCollide(t *testing.T) {
	dir := t.TempDir()
	a := NewAccessor(dir, DeviceIdentity{VendorID: 1})
	b := NewAccessor(dir, DeviceIdentity{VendorID: 2})
	if err := a.Write(1, []byte("a")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if b.Exists(1) {
		t.Errorf("expected a different device identity to not see the other's cache file")
	}
}
