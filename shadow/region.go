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

package shadow

import (
	"sync"
	"unsafe"

	"github.com/ARM-software/vktrace-arm-sub003/core/math/interval"
	"github.com/ARM-software/vktrace-arm-sub003/pack"
	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

// Protector applies and lifts page protection on a byte range of the
// real mapping. It is the one OS-dependent seam of the shadow; the
// concrete implementation lives in protector_linux.go.
type Protector interface {
	// Protect marks [addr, addr+length) read-only.
	Protect(addr uintptr, length int) error
	// Unprotect marks [addr, addr+length) read-write.
	Unprotect(addr uintptr, length int) error
}

// WholeMapping means "from the flush offset to the end of the
// mapping" (spec.md §4.4).
const WholeMapping uint64 = ^uint64(0)

// Region is a single shadowed mapped-memory region: the tuple
// (device, allocation, offset, size, host_pointer) plus the shadow
// copy and per-page status array (spec.md §3).
type Region struct {
	mu sync.Mutex

	Device     uint64
	Allocation uint64
	Offset     uint64
	size       uint64

	hostPtr  uintptr
	pageSize uint64
	// startingAddressOffset is the byte distance from the page
	// boundary to hostPtr (spec.md §4.4's "starting-address quirk").
	startingAddressOffset uint64

	shadowCopy []byte
	status     []PageStatus

	noGuard    bool
	ownsMemory bool // set for the external-host-pointer variant

	protector Protector
}

// NewRegion creates a shadow over [hostPtr, hostPtr+size). protector
// is nil for noGuard regions (they never install page protection).
// ownsBackingMemory marks the external-host-pointer variant: the
// shadow, not the driver, is responsible for freeing hostPtr.
func NewRegion(device, allocation, offset, size uint64, hostPtr uintptr, pageSize uint64, noGuard, ownsBackingMemory bool, protector Protector) (*Region, error) {
	if pageSize == 0 {
		return nil, tracerr.New(tracerr.ShadowFault, "page size must be non-zero")
	}
	startingOffset := uint64(hostPtr) % pageSize
	numPages := (startingOffset + size + pageSize - 1) / pageSize

	r := &Region{
		Device:                device,
		Allocation:            allocation,
		Offset:                offset,
		size:                  size,
		hostPtr:               hostPtr,
		pageSize:              pageSize,
		startingAddressOffset: startingOffset,
		shadowCopy:            make([]byte, size),
		status:                make([]PageStatus, numPages),
		noGuard:               noGuard,
		ownsMemory:            ownsBackingMemory,
		protector:             protector,
	}
	copy(r.shadowCopy, r.hostBytes())

	if !noGuard {
		if protector == nil {
			return nil, tracerr.New(tracerr.ShadowFault, "guarded region requires a Protector")
		}
		pageAddr := hostPtr - uintptr(startingOffset)
		if err := protector.Protect(pageAddr, int(numPages*pageSize)); err != nil {
			return nil, tracerr.Wrap(tracerr.ShadowFault, err, "initial protect")
		}
	}
	return r, nil
}

// Size is the mapping's length in bytes.
func (r *Region) Size() uint64 { return r.size }

// NoGuard reports whether this region opted out of page guarding.
func (r *Region) NoGuard() bool { return r.noGuard }

// hostBytes views the real mapping as a byte slice. Callers must hold
// r.mu or otherwise know the mapping is not concurrently being freed.
func (r *Region) hostBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(r.hostPtr)), r.size)
}

func (r *Region) pageIndex(byteOffset uint64) uint64 {
	return (byteOffset + r.startingAddressOffset) / r.pageSize
}

func (r *Region) pageAddr(pageIndex uint64) uintptr {
	return (r.hostPtr - uintptr(r.startingAddressOffset)) + uintptr(pageIndex*r.pageSize)
}

// HandleFault is the entry point a platform-specific fault source
// (fault_linux.go) calls with the faulting address. It sets the
// covering page's Changed bit and unprotects it so the application's
// write can proceed (spec.md §4.4 state machine: Clean&protected →
// write fault → Dirty&writable).
func (r *Region) HandleFault(addr uintptr) error {
	if addr < r.hostPtr || addr >= r.hostPtr+uintptr(r.size) {
		return tracerr.New(tracerr.ShadowFault, "fault address %#x outside region [%#x,%#x)", addr, r.hostPtr, r.hostPtr+uintptr(r.size))
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.pageIndex(uint64(addr - r.hostPtr))
	if r.status[idx].Changed {
		return nil // already writable; a racing second fault is a no-op
	}
	r.status[idx].Changed = true
	if r.protector != nil {
		if err := r.protector.Unprotect(r.pageAddr(idx), int(r.pageSize)); err != nil {
			return tracerr.Wrap(tracerr.ShadowFault, err, "unprotect on fault")
		}
	}
	return nil
}

// MarkRead flips the Read bit for every page intersecting
// [offset, offset+size), used by barrier-awareness on a HOST_READ
// boundary (spec.md §4.4).
func (r *Region) MarkRead(offset, size uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	first, last := r.pageRange(offset, size)
	for i := first; i <= last; i++ {
		r.status[i].Read = true
	}
}

func (r *Region) pageRange(offset, size uint64) (first, last uint64) {
	if size == WholeMapping {
		size = r.size - offset
	}
	first = r.pageIndex(offset)
	end := offset + size
	if end == 0 {
		end = 1
	}
	last = r.pageIndex(end - 1)
	return first, last
}

// Flush produces the changed-data package for the dirty pages
// intersecting [offset, offset+size) (spec.md §4.4). For a noGuard
// region the contract degenerates to a single verbatim block over the
// intersected range.
func (r *Region) Flush(offset, size uint64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if size == WholeMapping {
		size = r.size - offset
	}
	if offset+size > r.size {
		return nil, tracerr.New(tracerr.ShadowFault, "flush range [%d,%d) exceeds mapping size %d", offset, offset+size, r.size)
	}

	if r.noGuard {
		block := pack.ChangedBlockInfo{Offset: offset, Length: size}
		data := append([]byte(nil), r.hostBytes()[offset:offset+size]...)
		return pack.EncodeChangedDataPackage([]pack.ChangedBlockInfo{block}, [][]byte{data}), nil
	}

	first, last := r.pageRange(offset, size)
	// dirty accumulates the byte ranges of changed pages, coalescing
	// adjacent pages into a single span so the changed-data package
	// carries one block per contiguous dirty run instead of one block
	// per page (spec.md §4.4's changed-block contract only requires
	// the union of changed bytes, not a block-per-page encoding).
	var dirty interval.ByteSpanList
	for i := first; i <= last; i++ {
		if !r.status[i].Changed {
			continue
		}
		start, end := r.clampedPageRange(i, offset, size)

		copy(r.shadowCopy[start:end], r.hostBytes()[start:end])
		if r.protector != nil {
			if err := r.protector.Protect(r.pageAddr(i), int(r.pageSize)); err != nil {
				return nil, tracerr.Wrap(tracerr.ShadowFault, err, "restore protection on flush")
			}
		}
		r.status[i] = PageStatus{}
		interval.Merge(&dirty, interval.ByteSpan{Start: start, End: end}, true)
	}

	blocks := make([]pack.ChangedBlockInfo, 0, len(dirty))
	datas := make([][]byte, 0, len(dirty))
	for _, span := range dirty {
		data := append([]byte(nil), r.hostBytes()[span.Start:span.End]...)
		blocks = append(blocks, pack.ChangedBlockInfo{Offset: span.Start, Length: uint64(len(data))})
		datas = append(datas, data)
	}
	return pack.EncodeChangedDataPackage(blocks, datas), nil
}

// clampedPageRange returns pageIndex i's byte range, clamped to
// [offset, offset+size). pageStart is computed in signed arithmetic
// because page 0 may begin before hostPtr (the starting-address
// quirk): its mapping-relative offset is negative until clamped.
func (r *Region) clampedPageRange(i, offset, size uint64) (start, end uint64) {
	pageStart := int64(i*r.pageSize) - int64(r.startingAddressOffset)
	pageEnd := pageStart + int64(r.pageSize)
	if pageStart < int64(offset) {
		pageStart = int64(offset)
	}
	if pageEnd > int64(offset+size) {
		pageEnd = int64(offset + size)
	}
	if pageStart < 0 {
		pageStart = 0
	}
	return uint64(pageStart), uint64(pageEnd)
}

// Unmap releases the region. It does not flush: pages still dirty at
// unmap time produce no changed-data package and their changes are
// not reported; a caller that wants those bytes calls
// Flush(0, WholeMapping) first. When the region owns its backing
// memory (the external-host-pointer variant), Unmap frees it.
func (r *Region) Unmap(free func(uintptr, uint64)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ownsMemory && free != nil {
		free(r.hostPtr, r.size)
	}
}
