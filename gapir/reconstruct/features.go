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

// Package reconstruct implements the replay resource-reconstruction
// engine (spec.md §4.6): capture-replay feature enablement at
// create-device time, ray-tracing pipeline capture-replay handle
// splicing, and shader-binding-table reconstruction when the replay
// device's ray-tracing properties diverge from the capture device's.
// Grounded on
// _examples/original_source/vktrace/vktrace_replay/vkreplay_raytracingpipeline.{h,cpp}.
package reconstruct

import "github.com/ARM-software/vktrace-arm-sub003/core/log"

// Feature is one capture-replay-stable opaque-handle feature a device
// may have used during capture (spec.md §3).
type Feature uint32

const (
	FeatureBufferDeviceAddress Feature = 1 << iota
	FeatureAccelerationStructure
	FeatureRayTracingShaderGroupHandle
)

// DeviceFeatureQuery answers whether the live replay physical device
// supports a given capture-replay feature. The concrete query against
// a physical device is owned by the GAPI binding (an external
// collaborator); this package only decides what to do with the
// answer.
type DeviceFeatureQuery func(feature Feature) bool

// CreateInfoPatcher flips the *CaptureReplay feature bit on or off in
// a create-info chain. Like DeviceFeatureQuery, the concrete
// create-info structure belongs to the GAPI binding.
type CreateInfoPatcher func(feature Feature, enable bool)

// EnableCaptureReplayFeatures implements spec.md §4.6's "capture-replay
// feature enablement": for every feature bit captured, ask the live
// device whether it supports the feature. If so, force the
// corresponding *CaptureReplay bit on; if not, leave it off and log a
// warning that any packet depending on it will be best-effort.
func EnableCaptureReplayFeatures(ctx log.Context, captured Feature, query DeviceFeatureQuery, patch CreateInfoPatcher) {
	for _, f := range []Feature{FeatureBufferDeviceAddress, FeatureAccelerationStructure, FeatureRayTracingShaderGroupHandle} {
		if captured&f == 0 {
			continue
		}
		supported := query(f)
		patch(f, supported)
		if !supported {
			ctx.Warning().Log("capture-replay feature %d not supported by replay device; affected packets are best-effort", f)
		}
	}
}
