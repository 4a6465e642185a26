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

// Package replayconfig parses the replay option table spec.md §6
// enumerates into an Options value. It is not a general flag/CLI
// framework (that's an explicit Non-goal, spec.md §1/§9) — Parse
// takes an already-split key=value option table (however the host
// program obtained it) and only recognizes the keys spec.md names,
// grounded on
// _examples/original_source/vktrace/vktrace_replay/vkreplay_settings.cpp's
// vktrace_SettingInfo table and its defaults.
package replayconfig

import (
	"strconv"
	"strings"

	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

// Options is the Go form of vkreplayer_settings (spec.md §6).
type Options struct {
	Open string

	NumLoops       uint32
	LoopStartFrame uint32
	LoopEndFrame   uint32

	Screenshot       string
	ScreenshotFormat string
	ScreenshotPrefix string

	CompatibilityMode bool
	ExitOnAnyError    bool

	EnablePortabilityTableSupport bool

	PreloadTraceFile bool
	MemoryPercentage uint32
	Premapping       bool

	EnablePipelineCache bool
	PipelineCachePath   string

	ForceSyncImgIdx bool

	Headless bool
	VsyncOff bool
}

// Default returns the option set with the original's documented
// defaults: compatibility mode and portability-table support on,
// loop range spanning the whole trace, 50% memory budget for preload.
func Default() Options {
	return Options{
		NumLoops:                      1,
		LoopStartFrame:                0,
		LoopEndFrame:                  ^uint32(0),
		CompatibilityMode:             true,
		EnablePortabilityTableSupport: true,
		MemoryPercentage:              50,
	}
}

// boolFields/uintFields/stringFields name which Options field each
// recognized key maps to, so Parse can report an unrecognized key
// without a giant type-switch per key.
var boolFields = map[string]func(*Options, bool){
	"CompatibilityMode":             func(o *Options, v bool) { o.CompatibilityMode = v },
	"ExitOnAnyError":                func(o *Options, v bool) { o.ExitOnAnyError = v },
	"EnablePortabilityTableSupport": func(o *Options, v bool) { o.EnablePortabilityTableSupport = v },
	"PreloadTraceFile":              func(o *Options, v bool) { o.PreloadTraceFile = v },
	"premapping":                    func(o *Options, v bool) { o.Premapping = v },
	"enablePipelineCache":           func(o *Options, v bool) { o.EnablePipelineCache = v },
	"forceSyncImgIdx":               func(o *Options, v bool) { o.ForceSyncImgIdx = v },
	"Headless":                      func(o *Options, v bool) { o.Headless = v },
	"vsyncoff":                      func(o *Options, v bool) { o.VsyncOff = v },
}

var uintFields = map[string]func(*Options, uint32){
	"NumLoops":         func(o *Options, v uint32) { o.NumLoops = v },
	"LoopStartFrame":   func(o *Options, v uint32) { o.LoopStartFrame = v },
	"LoopEndFrame":     func(o *Options, v uint32) { o.LoopEndFrame = v },
	"memoryPercentage": func(o *Options, v uint32) { o.MemoryPercentage = v },
}

var stringFields = map[string]func(*Options, string){
	"Open":              func(o *Options, v string) { o.Open = v },
	"Screenshot":        func(o *Options, v string) { o.Screenshot = v },
	"ScreenshotFormat":  func(o *Options, v string) { o.ScreenshotFormat = v },
	"ScreenshotPrefix":  func(o *Options, v string) { o.ScreenshotPrefix = v },
	"pipelineCachePath": func(o *Options, v string) { o.PipelineCachePath = v },
}

// Parse applies an option table (key -> raw string value) on top of
// Default(), returning an UnsupportedVersion-free error for any key
// this module doesn't recognize — callers that want lenient parsing
// should pre-filter the table against Recognized().
func Parse(table map[string]string) (Options, error) {
	opts := Default()
	for key, raw := range table {
		switch {
		case boolFields[key] != nil:
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return Options{}, tracerr.New(tracerr.Corrupt, "replay option %s: not a bool: %q", key, raw)
			}
			boolFields[key](&opts, v)
		case uintFields[key] != nil:
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return Options{}, tracerr.New(tracerr.Corrupt, "replay option %s: not a uint: %q", key, raw)
			}
			uintFields[key](&opts, uint32(v))
		case stringFields[key] != nil:
			stringFields[key](&opts, raw)
		default:
			return Options{}, tracerr.New(tracerr.Corrupt, "unrecognized replay option %q", key)
		}
	}
	return opts, nil
}

// Recognized reports whether key names an option this module parses.
func Recognized(key string) bool {
	return boolFields[key] != nil || uintFields[key] != nil || stringFields[key] != nil
}

// ScreenshotFrames parses the comma-separated frame list Screenshot
// carries (matching the original's "-s" flag description).
func (o Options) ScreenshotFrames() ([]uint32, error) {
	if strings.TrimSpace(o.Screenshot) == "" {
		return nil, nil
	}
	var frames []uint32
	for _, field := range strings.Split(o.Screenshot, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(field), 10, 32)
		if err != nil {
			return nil, tracerr.New(tracerr.Corrupt, "Screenshot frame list: %q is not a frame number", field)
		}
		frames = append(frames, uint32(v))
	}
	return frames, nil
}
