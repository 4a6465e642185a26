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

package tracerr

import (
	"io"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(Corrupt, "packet size %d exceeds file bounds", 1<<20)
	if !Is(err, Corrupt) {
		t.Errorf("expected Corrupt, got %v", err)
	}
	if Is(err, StreamIO) {
		t.Errorf("did not expect StreamIO match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	err := Wrap(StreamIO, io.ErrUnexpectedEOF, "finalize: write trailer")
	if !Is(err, StreamIO) {
		t.Errorf("expected StreamIO, got %v", err)
	}
	if err.Cause() == nil {
		t.Errorf("expected a wrapped cause")
	}
}
