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

package replayconfig

import "testing"

func TestDefaultMatchesOriginalDefaults(t *testing.T) {
	o := Default()
	if !o.CompatibilityMode || !o.EnablePortabilityTableSupport {
		t.Errorf("expected compatibility mode and portability table support on by default")
	}
	if o.NumLoops != 1 || o.MemoryPercentage != 50 {
		t.Errorf("unexpected defaults: %+v", o)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	o, err := Parse(map[string]string{
		"Open":                "/tmp/trace.vktrace",
		"ExitOnAnyError":      "true",
		"NumLoops":            "3",
		"enablePipelineCache": "true",
		"pipelineCachePath":   "/tmp/cache",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if o.Open != "/tmp/trace.vktrace" || !o.ExitOnAnyError || o.NumLoops != 3 {
		t.Errorf("unexpected options: %+v", o)
	}
	if !o.EnablePipelineCache || o.PipelineCachePath != "/tmp/cache" {
		t.Errorf("pipeline cache options not applied: %+v", o)
	}
	// Untouched keys still carry their defaults.
	if !o.CompatibilityMode {
		t.Errorf("expected untouched CompatibilityMode to keep its default")
	}
}

func TestParseRejectsUnrecognizedKey(t *testing.T) {
	if _, err := Parse(map[string]string{"bogus": "1"}); err == nil {
		t.Errorf("expected an error for an unrecognized option")
	}
}

func TestParseRejectsMalformedValue(t *testing.T) {
	if _, err := Parse(map[string]string{"NumLoops": "not-a-number"}); err == nil {
		t.Errorf("expected an error for a malformed uint option")
	}
}

func TestScreenshotFrames(t *testing.T) {
	o := Options{Screenshot: "1, 5,10"}
	frames, err := o.ScreenshotFrames()
	if err != nil {
		t.Fatalf("ScreenshotFrames: %v", err)
	}
	want := []uint32{1, 5, 10}
	if len(frames) != len(want) {
		t.Fatalf("got %v", frames)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d: got %d want %d", i, frames[i], want[i])
		}
	}
}

func TestScreenshotFramesEmpty(t *testing.T) {
	o := Options{}
	frames, err := o.ScreenshotFrames()
	if err != nil || frames != nil {
		t.Errorf("expected nil, nil for empty Screenshot, got %v, %v", frames, err)
	}
}
