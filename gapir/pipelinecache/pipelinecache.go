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

// Package pipelinecache persists and reloads pipeline-cache blobs
// across replay runs, keyed by capture-time pipeline-cache handle and
// qualified by the replay device's vendor/device id and pipeline-cache
// UUID so a cache from an incompatible device is never loaded. The
// replayconfig enablePipelineCache/pipelineCachePath options reference
// this feature, so it needs a home here; grounded on
// _examples/original_source/vktrace/vktrace_replay/vkreplay_pipelinecache.{h,cpp}.
package pipelinecache

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

// DeviceIdentity qualifies which replay device a cache blob is valid
// for; loading a blob written by a different device is refused.
type DeviceIdentity struct {
	VendorID  uint32
	DeviceID  uint32
	CacheUUID [16]byte
}

// Accessor reads and writes pipeline-cache blobs under root, one file
// per capture-time pipeline-cache handle.
type Accessor struct {
	root     string
	identity DeviceIdentity
	cache    map[uint64][]byte
}

// NewAccessor returns an Accessor rooted at root (spec.md's
// replayconfig pipelineCachePath option) for the given replay device
// identity.
func NewAccessor(root string, identity DeviceIdentity) *Accessor {
	return &Accessor{root: root, identity: identity, cache: map[uint64][]byte{}}
}

func (a *Accessor) fileName(key uint64) string {
	deviceTag := hex.EncodeToString([]byte{
		byte(a.identity.VendorID >> 24), byte(a.identity.VendorID >> 16), byte(a.identity.VendorID >> 8), byte(a.identity.VendorID),
		byte(a.identity.DeviceID >> 24), byte(a.identity.DeviceID >> 16), byte(a.identity.DeviceID >> 8), byte(a.identity.DeviceID),
	}) + hex.EncodeToString(a.identity.CacheUUID[:])
	keyTag := hex.EncodeToString([]byte{
		byte(key >> 56), byte(key >> 48), byte(key >> 40), byte(key >> 32),
		byte(key >> 24), byte(key >> 16), byte(key >> 8), byte(key),
	})
	return filepath.Join(a.root, deviceTag+"-"+keyTag+".bin")
}

// Get returns a previously loaded or written cache blob for key, and
// whether one was found.
func (a *Accessor) Get(key uint64) ([]byte, bool) {
	b, ok := a.cache[key]
	return b, ok
}

// Load reads a cache blob from disk into memory, if present.
// A missing file is not an error: the cache simply starts cold.
func (a *Accessor) Load(key uint64) error {
	b, err := os.ReadFile(a.fileName(key))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return tracerr.Wrap(tracerr.StreamIO, err, "load pipeline cache")
	}
	a.cache[key] = b
	return nil
}

// Write persists data for key both in memory and on disk.
func (a *Accessor) Write(key uint64, data []byte) error {
	a.cache[key] = data
	if err := os.MkdirAll(a.root, 0o755); err != nil {
		return tracerr.Wrap(tracerr.StreamIO, err, "create pipeline cache root")
	}
	if err := os.WriteFile(a.fileName(key), data, 0o644); err != nil {
		return tracerr.Wrap(tracerr.StreamIO, err, "write pipeline cache")
	}
	return nil
}

// Exists reports whether a cache file for key is present on disk.
func (a *Accessor) Exists(key uint64) bool {
	_, err := os.Stat(a.fileName(key))
	return err == nil
}
