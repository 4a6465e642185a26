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

package stream

import (
	"bytes"
	"compress/gzip"
	"os"
	"testing"
)

func TestIsCompressedFileDetectsGzip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/trace.gz"

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte("trace payload"))
	gz.Close()

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	ok, err := IsCompressedFile(path)
	if err != nil {
		t.Fatalf("IsCompressedFile: %v", err)
	}
	if !ok {
		t.Errorf("expected gzip file to be detected as compressed")
	}
}

func TestIsCompressedFileRejectsPlain(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/trace.gtrc"
	if err := os.WriteFile(path, []byte("GTRC not compressed"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	ok, err := IsCompressedFile(path)
	if err != nil {
		t.Fatalf("IsCompressedFile: %v", err)
	}
	if ok {
		t.Errorf("expected plain file to not be detected as compressed")
	}
}

func TestDecompressToSiblingRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/trace.gz"

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte("trace payload"))
	gz.Close()
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	outPath, err := DecompressToSibling(path, ".decompressed")
	if err != nil {
		t.Fatalf("DecompressToSibling: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "trace payload" {
		t.Errorf("got %q", got)
	}
}
