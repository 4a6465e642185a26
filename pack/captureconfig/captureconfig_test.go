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

package captureconfig

import "testing"

func TestParseAllKeys(t *testing.T) {
	cfg := Parse("path=/tmp/trace,format=Html,range=10,200")
	if cfg.Dir != "/tmp/trace/" {
		t.Errorf("Dir = %q", cfg.Dir)
	}
	if cfg.Format != "html" {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.RangeMin != 10 || cfg.RangeMax != 200 {
		t.Errorf("range = %d,%d", cfg.RangeMin, cfg.RangeMax)
	}
}

func TestParseMissingKeysLeaveZeroValues(t *testing.T) {
	cfg := Parse("format=csv")
	if cfg.Dir != "" {
		t.Errorf("expected empty Dir, got %q", cfg.Dir)
	}
	if cfg.RangeMin != 0 || cfg.RangeMax != 0 {
		t.Errorf("expected zero range, got %d,%d", cfg.RangeMin, cfg.RangeMax)
	}
}

func TestParseTrailingSlashIsNormalized(t *testing.T) {
	cfg := Parse("path=/tmp/trace/")
	if cfg.Dir != "/tmp/trace/" {
		t.Errorf("Dir = %q", cfg.Dir)
	}
}

func TestParseMalformedPairsAreIgnored(t *testing.T) {
	cfg := Parse("path,format=text,garbage=x=y")
	if cfg.Format != "text" {
		t.Errorf("Format = %q", cfg.Format)
	}
}
