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

import (
	"reflect"
	"testing"
)

func TestChangedDataPackageRoundTrip(t *testing.T) {
	blocks := []ChangedBlockInfo{
		{Offset: 0, Length: 3},
		{Offset: 4096, Length: 5},
	}
	data := [][]byte{[]byte("abc"), []byte("defgh")}

	raw := EncodeChangedDataPackage(blocks, data)
	gotBlocks, gotData, err := DecodeChangedDataPackage(raw)
	if err != nil {
		t.Fatalf("DecodeChangedDataPackage: %v", err)
	}
	if !reflect.DeepEqual(gotBlocks, blocks) {
		t.Errorf("blocks mismatch: got %v, expected %v", gotBlocks, blocks)
	}
	for i := range data {
		if !reflect.DeepEqual(gotData[i], data[i]) {
			t.Errorf("data[%d] mismatch: got %q, expected %q", i, gotData[i], data[i])
		}
	}
}

func TestChangedDataPackageEmpty(t *testing.T) {
	raw := EncodeChangedDataPackage(nil, nil)
	blocks, data, err := DecodeChangedDataPackage(raw)
	if err != nil {
		t.Fatalf("DecodeChangedDataPackage: %v", err)
	}
	if len(blocks) != 0 || len(data) != 0 {
		t.Errorf("expected empty, got %v, %v", blocks, data)
	}
}

func TestRoundUpTo4(t *testing.T) {
	cases := map[uint64]uint64{0: 0, 1: 4, 3: 4, 4: 4, 5: 8, 4097: 4100}
	for in, want := range cases {
		if got := RoundUpTo4(in); got != want {
			t.Errorf("RoundUpTo4(%d) = %d, want %d", in, got, want)
		}
	}
}
