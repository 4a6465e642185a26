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

// Package interval coalesces byte ranges into a sorted, non-overlapping
// span list. shadow.Region.Flush is the sole caller: it folds each
// dirty page's byte range into a ByteSpanList as it walks a region's
// page-status table, so adjacent or overlapping dirty pages collapse
// into one changed-data block instead of one block per page.
package interval

// ByteSpan is a half-open byte range [Start, End).
type ByteSpan struct {
	Start uint64
	End   uint64
}

// List is the read side of a sorted, non-overlapping span collection.
type List interface {
	Length() int
	GetSpan(index int) ByteSpan
}

// MutableList is the write side Merge needs: spans can be overwritten,
// and the list can be grown or shrunk in place to make room for (or
// close the gap left by) a merge.
type MutableList interface {
	List
	SetSpan(index int, span ByteSpan)
	Copy(to, from, count int)
	Resize(length int)
}

// ByteSpanList is the MutableList backing shadow.Region.Flush: a plain
// slice of ByteSpan, kept sorted and non-overlapping by Merge.
type ByteSpanList []ByteSpan

func (l ByteSpanList) Length() int                      { return len(l) }
func (l ByteSpanList) GetSpan(index int) ByteSpan       { return l[index] }
func (l ByteSpanList) SetSpan(index int, span ByteSpan) { l[index] = span }
func (l ByteSpanList) Copy(to, from, count int)         { copy(l[to:to+count], l[from:from+count]) }

func (l *ByteSpanList) Resize(length int) {
	if cap(*l) > length {
		*l = (*l)[:length]
		return
	}
	old := *l
	capacity := cap(*l) * 2
	if capacity < length {
		capacity = length
	}
	*l = make(ByteSpanList, length, capacity)
	copy(*l, old)
}
