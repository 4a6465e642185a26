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

// Package captureconfig parses the single environment variable
// spec.md §6 names for capture-time configuration: a comma-separated
// key=value list recognizing path, format and range. Grounded on
// original_source/layersvt/api_cost.h's getPlatformEnvVar/parseEnvVar,
// reworked from ad hoc substring scanning into strings.Split.
package captureconfig

import (
	"strconv"
	"strings"
)

// EnvVar is the name of the environment variable carrying the
// capture configuration string (spec.md §6).
const EnvVar = "APICOST"

// Config is the parsed form of the APICOST environment variable.
type Config struct {
	// Dir is the output directory, trailing slash inferred. Empty
	// means "current directory".
	Dir string
	// Format is the raw format key's value (text|html|csv), consumed
	// by pack/costlog.ParseFormat.
	Format string
	// RangeMin, RangeMax are the inclusive frame window recognized by
	// pack/costlog. A zero RangeMax means "unbounded".
	RangeMin, RangeMax uint64
}

// Parse splits raw (the value of EnvVar) on commas into key=value
// pairs and fills in a Config. Unrecognized keys and malformed pairs
// are silently ignored, matching the original's tolerant scanning.
func Parse(raw string) Config {
	cfg := Config{}
	fields := strings.Split(raw, ",")
	for i := 0; i < len(fields); i++ {
		field := strings.TrimSpace(fields[i])
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "path":
			cfg.Dir = strings.TrimSuffix(value, "/") + "/"
		case "format":
			cfg.Format = strings.ToLower(value)
		case "range":
			// range's min,max pair contains a comma itself, so the split
			// above leaves max in the following field.
			if i+1 >= len(fields) {
				continue
			}
			i++
			min, max := value, strings.TrimSpace(fields[i])
			if v, err := strconv.ParseUint(min, 10, 64); err == nil {
				cfg.RangeMin = v
			}
			if v, err := strconv.ParseUint(max, 10, 64); err == nil {
				cfg.RangeMax = v
			}
		}
	}
	return cfg
}
