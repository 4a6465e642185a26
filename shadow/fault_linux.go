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
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ARM-software/vktrace-arm-sub003/core/log"
	"github.com/ARM-software/vktrace-arm-sub003/pack/tracerr"
)

// FaultSource delivers SIGSEGV addresses to whichever Region
// currently owns them, using signalfd(2) rather than a traditional
// sa_sigaction handler so no cgo is required. This is the
// non-cgo-compatible page-fault delivery mechanism the capture side
// uses in place of a signal handler written in C.
type FaultSource struct {
	mu      sync.Mutex
	regions []*Region

	fd     int
	oldset unix.Sigset_t
	done   chan struct{}
}

// NewFaultSource blocks SIGSEGV for the calling thread's signal mask
// and opens a signalfd to receive it instead.
func NewFaultSource() (*FaultSource, error) {
	var set unix.Sigset_t
	set.Val[0] |= 1 << (uint(unix.SIGSEGV) - 1)

	var oldset unix.Sigset_t
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, &oldset); err != nil {
		return nil, tracerr.Wrap(tracerr.ShadowFault, err, "block SIGSEGV")
	}

	fd, err := unix.Signalfd(-1, &set, unix.SFD_CLOEXEC)
	if err != nil {
		return nil, tracerr.Wrap(tracerr.ShadowFault, err, "signalfd")
	}
	return &FaultSource{fd: fd, oldset: oldset, done: make(chan struct{})}, nil
}

// Register adds r to the set of regions this source dispatches faults
// to.
func (fs *FaultSource) Register(r *Region) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.regions = append(fs.regions, r)
}

// Unregister removes r.
func (fs *FaultSource) Unregister(r *Region) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for i, reg := range fs.regions {
		if reg == r {
			fs.regions = append(fs.regions[:i], fs.regions[i+1:]...)
			return
		}
	}
}

// Run reads signalfd_siginfo records until Close is called, routing
// each fault's address to the Region that owns it. It is meant to run
// on its own goroutine.
func (fs *FaultSource) Run(ctx log.Context) {
	var buf [unsafe.Sizeof(unix.SignalfdSiginfo{})]byte
	for {
		n, err := unix.Read(fs.fd, buf[:])
		select {
		case <-fs.done:
			return
		default:
		}
		if err != nil {
			ctx.Error().Log("signalfd read failed: %v", err)
			continue
		}
		if n != len(buf) {
			continue
		}
		info := (*unix.SignalfdSiginfo)(unsafe.Pointer(&buf[0]))
		addr := uintptr(info.Addr)

		fs.mu.Lock()
		regions := append([]*Region(nil), fs.regions...)
		fs.mu.Unlock()

		handled := false
		for _, r := range regions {
			if err := r.HandleFault(addr); err == nil {
				handled = true
				break
			}
		}
		if !handled {
			ctx.Error().Log("unhandled page fault at %#x: no shadowed region claims it", addr)
		}
	}
}

// Close stops Run and restores the caller's original signal mask.
func (fs *FaultSource) Close() error {
	close(fs.done)
	unix.Close(fs.fd)
	return unix.PthreadSigmask(unix.SIG_SETMASK, &fs.oldset, nil)
}
