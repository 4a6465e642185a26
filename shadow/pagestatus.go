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

// Package shadow implements the page-guarded mapped-memory shadow
// (spec.md §4.4): a duplicate, host-owned copy of a large host-visible
// GPU allocation, kept in sync with the real mapping a page at a time
// using page-protection traps. Grounded on
// _examples/original_source/vktrace/vktrace_layer/vktrace_lib_pageguardmappedmemory.h
// and vktrace_lib_pageguardcapture.cpp.
package shadow

// PageStatus is the per-page state spec.md §3 describes: whether the
// application has written the page since the last flush, and whether
// a host-side barrier has indicated the page was read back.
type PageStatus struct {
	Changed bool
	Read    bool
}
