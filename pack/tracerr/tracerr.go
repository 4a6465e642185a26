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

// Package tracerr defines the error kinds shared by the capture and
// replay packages (spec.md §7).
package tracerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of a capture/replay error.
type Kind int

const (
	// StreamIO is an unrecoverable read/write/seek failure.
	StreamIO Kind = iota
	// Corrupt means a packet size or offset was out of range.
	Corrupt
	// UnsupportedVersion means the trace format version is not handled
	// by this reader.
	UnsupportedVersion
	// UnknownHandle means a replay handle argument had no entry in the
	// remap table.
	UnknownHandle
	// PlatformsIncompatible means the capture and replay devices
	// diverge in a way reconstruction cannot paper over.
	PlatformsIncompatible
	// FeatureUnavailable means a capture-replay feature the trace
	// depends on is not supported by the replay device.
	FeatureUnavailable
	// CompressionFailed means a codec returned 0 (failure) for a
	// packet.
	CompressionFailed
	// ShadowFault means the mapped-memory page-protection primitive
	// failed.
	ShadowFault
	// UnsupportedOnSocket means a positioning operation was attempted
	// on a non-seekable stream.
	UnsupportedOnSocket
)

func (k Kind) String() string {
	switch k {
	case StreamIO:
		return "StreamIO"
	case Corrupt:
		return "Corrupt"
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case UnknownHandle:
		return "UnknownHandle"
	case PlatformsIncompatible:
		return "PlatformsIncompatible"
	case FeatureUnavailable:
		return "FeatureUnavailable"
	case CompressionFailed:
		return "CompressionFailed"
	case ShadowFault:
		return "ShadowFault"
	case UnsupportedOnSocket:
		return "UnsupportedOnSocket"
	default:
		return "Unknown"
	}
}

// Error is a Kind-tagged, stack-traced error.
type Error struct {
	Kind  Kind
	cause error
}

// New returns an Error of the given Kind, wrapping a formatted message
// with a stack trace via pkg/errors.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

// Wrap returns an Error of the given Kind wrapping err with a stack
// trace and message.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, cause: errors.Wrap(err, message)}
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

// Cause implements the github.com/pkg/errors Causer interface.
func (e *Error) Cause() error { return e.cause }

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	te, ok := err.(*Error)
	if !ok {
		return false
	}
	return te.Kind == kind
}
