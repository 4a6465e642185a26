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

package reconstruct

import "github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"

// ShaderKind is one of the four shader-binding-table record kinds
// (spec.md §3 "Ray-tracing shader-group state").
type ShaderKind int

const (
	Raygen ShaderKind = iota
	Miss
	Hit
	Callable
)

// RayTracingProperties are the replay-device-observable values the
// shader-binding-table layout depends on (spec.md §4.6).
type RayTracingProperties struct {
	ShaderGroupHandleSize      uint32
	ShaderGroupBaseAlignment   uint32
	ShaderGroupHandleAlignment uint32
}

// PipelineState is what the replayer retains per ray-tracing pipeline
// across its lifetime: the capture-device handle size, the captured
// opaque handle blob, and the per-shader-kind group counts (spec.md
// §3).
type PipelineState struct {
	CaptureHandleSize uint32
	HandleBlob        []byte
	GroupCount        [4]uint32 // indexed by ShaderKind
}

// SpliceGroupHandle implements "Ray-tracing pipeline creation"
// (spec.md §4.6): if the device supports shader-group-handle
// capture-replay, returns a pointer into the per-group slice of the
// opaque handle blob at groupIndex for the given create-info's pData
// parameter; the caller sets that as pShaderGroupCaptureReplayHandle
// and sets the RAY_TRACING_SHADER_GROUP_HANDLE_CAPTURE_REPLAY flag. If
// the device does not support it, the caller clears the flag and
// leaves the pointer null — SpliceGroupHandle signals that by
// returning (nil, nil).
func SpliceGroupHandle(pData []byte, groupIndex int, handleSize uint32, deviceSupportsCaptureReplay bool) ([]byte, error) {
	if !deviceSupportsCaptureReplay {
		return nil, nil
	}
	start := groupIndex * int(handleSize)
	end := start + int(handleSize)
	if end > len(pData) {
		return nil, tracerr.New(tracerr.Corrupt, "group %d handle [%d,%d) overruns pData of length %d", groupIndex, start, end, len(pData))
	}
	return pData[start:end], nil
}

// alignUp matches the original's align_up: round num up to a.
func alignUp(num, a uint32) uint32 {
	if a == 0 {
		return num
	}
	return (num + a - 1) / a * a
}

// SBTLayout is one shader kind's reconstructed layout: stride between
// records and the total buffer size needed to hold count records.
type SBTLayout struct {
	Stride uint32
	Size   uint64
}

// ReconstructSBTLayout computes the replay-time layout for one shader
// kind when the replay device's ray-tracing properties diverge from
// the capture device's (spec.md §4.6 "Shader-binding-table
// reconstruction"). handleSize and alignment come from the replay
// device; count is the number of records of this kind retained in
// PipelineState.
func ReconstructSBTLayout(replay RayTracingProperties, count uint32) SBTLayout {
	stride := alignUp(replay.ShaderGroupHandleSize, replay.ShaderGroupHandleAlignment)
	return SBTLayout{
		Stride: stride,
		Size:   alignUpU64(uint64(stride)*uint64(count), uint64(replay.ShaderGroupBaseAlignment)),
	}
}

func alignUpU64(num, a uint64) uint64 {
	if a == 0 {
		return num
	}
	return (num + a - 1) / a * a
}

// CheckPlatformsCompatible reports whether capture and replay
// shader-group handle sizes match (spec.md §4.6). A mismatch is not
// fatal to reconstruction — spec.md §7 has PlatformsIncompatible log
// and continue by default — so callers log the returned error rather
// than treating it as a precondition WriteSBTRecords requires.
func CheckPlatformsCompatible(captureHandleSize, replayHandleSize uint32) error {
	if captureHandleSize != replayHandleSize {
		return tracerr.New(tracerr.PlatformsIncompatible,
			"ray-tracing shader-group handle size diverges: capture=%d replay=%d", captureHandleSize, replayHandleSize)
	}
	return nil
}

// WriteSBTRecords writes len(groupIndices) handles, strided by
// layout.Stride, from the pipeline's captured handle blob (selecting
// the groupIndices belonging to kind) into dst, which must be at
// least layout.Size bytes. It does not require CheckPlatformsCompatible
// to have passed: when the capture and replay handle sizes diverge,
// each record copies only the first min(CaptureHandleSize,
// layout.Stride) bytes, leaving the remainder of an oversized stride
// untouched in dst and silently dropping the tail of an oversized capture
// handle, matching the original's size-mismatch tolerance.
func WriteSBTRecords(dst []byte, state *PipelineState, groupIndices []int, layout SBTLayout) error {
	need := uint64(layout.Stride) * uint64(len(groupIndices))
	if uint64(len(dst)) < need {
		return tracerr.New(tracerr.Corrupt, "SBT destination too small: need %d, have %d", need, len(dst))
	}
	copySize := state.CaptureHandleSize
	if layout.Stride < copySize {
		copySize = layout.Stride
	}
	for i, groupIndex := range groupIndices {
		srcStart := groupIndex * int(state.CaptureHandleSize)
		srcEnd := srcStart + int(copySize)
		if srcEnd > len(state.HandleBlob) {
			return tracerr.New(tracerr.Corrupt, "group %d handle overruns captured blob", groupIndex)
		}
		dstStart := i * int(layout.Stride)
		copy(dst[dstStart:dstStart+int(layout.Stride)], state.HandleBlob[srcStart:srcEnd])
	}
	return nil
}
