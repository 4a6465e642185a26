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

//go:build linux

package shadow

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// MprotectProtector is the real Protector, backed by mprotect(2).
type MprotectProtector struct{}

func (MprotectProtector) view(addr uintptr, length int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
}

// Protect marks the range read-only: the next write to any byte in it
// raises SIGSEGV.
func (p MprotectProtector) Protect(addr uintptr, length int) error {
	return unix.Mprotect(p.view(addr, length), unix.PROT_READ)
}

// Unprotect marks the range read-write.
func (p MprotectProtector) Unprotect(addr uintptr, length int) error {
	return unix.Mprotect(p.view(addr, length), unix.PROT_READ|unix.PROT_WRITE)
}
