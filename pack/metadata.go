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

import "encoding/json"

// DeviceFeatures is the per-device capture-replay feature bitmask
// recorded against the device's captured handle, serialized as a hex
// string (spec.md §3).
type DeviceFeatures struct {
	// HandleHex is the capture-time device handle, formatted as a hex
	// string so it survives JSON round-tripping across pointer widths.
	HandleHex string `json:"deviceHandle"`
	// Features is the captured-feature bitmask (buffer-device-address,
	// acceleration-structure, ray-tracing-shader-group, ...).
	Features uint64 `json:"features"`
}

// Metadata is the structured document appended near the end of a
// trace file (spec.md §3, §4.3). Field order is not significant; the
// document is JSON-shaped so augmenting it (finalization step 3) only
// requires decode-append-encode. Pipeline does not overwrite the first
// metadata packet in place: it writes the augmented document as a
// second metadata packet directly after it, and the header's
// MetadataOffset keeps pointing at the first one.
type Metadata struct {
	// InjectedCalls lists the global packet indices synthesized by the
	// tracer itself rather than produced by the application.
	InjectedCalls []uint64 `json:"injectedCalls"`
	// DeviceFeatures is keyed by the device's hex handle string.
	DeviceFeatures map[string]DeviceFeatures `json:"deviceFeatures,omitempty"`
}

// Encode marshals m to JSON, padding with NUL bytes to an 8-byte
// boundary (spec.md §4.3 finalization step 3: "padded with NULs to an
// 8-byte boundary").
func (m *Metadata) Encode() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, errCorrupt("encode metadata: %v", err)
	}
	if pad := (8 - len(b)%8) % 8; pad != 0 {
		b = append(b, make([]byte, pad)...)
	}
	return b, nil
}

// DecodeMetadata parses a metadata document previously produced by
// Encode, tolerating trailing NUL padding.
func DecodeMetadata(raw []byte) (*Metadata, error) {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	m := &Metadata{}
	if err := json.Unmarshal(raw[:end], m); err != nil {
		return nil, errCorrupt("decode metadata: %v", err)
	}
	return m, nil
}

// WithDeviceFeatures returns a copy of m augmented with the
// deviceFeatures map (finalization step 3). It does not write
// anything; see Metadata for where Pipeline puts the result.
func (m *Metadata) WithDeviceFeatures(dev map[string]DeviceFeatures) *Metadata {
	out := &Metadata{InjectedCalls: m.InjectedCalls, DeviceFeatures: dev}
	return out
}
