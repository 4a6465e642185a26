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
	"compress/gzip"
	"compress/zlib"
	"io"
	"os"

	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

var (
	gzipMagic = [2]byte{0x1f, 0x8b}
	zlibMagic = [2]byte{0x78, 0x9c} // default zlib compression level header
)

// IsCompressedFile inspects the first two bytes of path for a gzip or
// zlib magic number. A trace file produced outside the normal capture
// pipeline (e.g. gzip'd for transport) is detected this way rather
// than by extension.
func IsCompressedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, tracerr.Wrap(tracerr.StreamIO, err, "open")
	}
	defer f.Close()
	var magic [2]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, tracerr.Wrap(tracerr.StreamIO, err, "read magic")
	}
	return magic == gzipMagic || magic == zlibMagic, nil
}

// DecompressToSibling decompresses the whole file at path into a new
// file alongside it (path + suffix), returning the sibling's path.
// The original file is left untouched.
func DecompressToSibling(path, suffix string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", tracerr.Wrap(tracerr.StreamIO, err, "open source")
	}
	defer in.Close()

	var magic [2]byte
	if _, err := io.ReadFull(in, magic[:]); err != nil {
		return "", tracerr.Wrap(tracerr.StreamIO, err, "read magic")
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return "", tracerr.Wrap(tracerr.StreamIO, err, "rewind")
	}

	var r io.Reader
	switch magic {
	case gzipMagic:
		gz, err := gzip.NewReader(in)
		if err != nil {
			return "", tracerr.Wrap(tracerr.Corrupt, err, "gzip header")
		}
		defer gz.Close()
		r = gz
	case zlibMagic:
		zr, err := zlib.NewReader(in)
		if err != nil {
			return "", tracerr.Wrap(tracerr.Corrupt, err, "zlib header")
		}
		defer zr.Close()
		r = zr
	default:
		return "", tracerr.New(tracerr.Corrupt, "%s is not a recognized compressed file", path)
	}

	outPath := path + suffix
	out, err := os.Create(outPath)
	if err != nil {
		return "", tracerr.Wrap(tracerr.StreamIO, err, "create sibling")
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return "", tracerr.Wrap(tracerr.StreamIO, err, "decompress")
	}
	return outPath, nil
}
