// Copyright (C) 2017 Google Inc.
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

// Package log provides a small context-carried logging system in the
// style of google-gapid's core/log: the active Handler, tag and bound
// values travel inside a context.Context, and logging statements read
// as a severity filter followed by a Log call:
//
//	ctx.Info().Log("tracer: opened %v", path)
//	ctx.Error().With("kind", kind).Log("stream write failed")
package log

import "context"

type contextKeyT struct{}

var contextKey = contextKeyT{}

type state struct {
	handler Handler
	tag     string
	values  []keyValue
}

type keyValue struct {
	key string
	val interface{}
}

// PutHandler returns a context with h installed as the active Handler.
func PutHandler(ctx context.Context, h Handler) context.Context {
	s := stateOf(ctx).clone()
	s.handler = h
	return context.WithValue(ctx, contextKey, s)
}

// Enter returns a context with tag appended to the current tag path,
// used to scope a block of work (a test case, a packet kind) under a
// readable prefix.
func Enter(ctx context.Context, tag string) context.Context {
	s := stateOf(ctx).clone()
	if s.tag == "" {
		s.tag = tag
	} else {
		s.tag = s.tag + "." + tag
	}
	return context.WithValue(ctx, contextKey, s)
}

// V is a set of named values to bind into a context, surfaced by
// Handlers that print structured fields.
type V map[string]interface{}

// Bind returns a context with the values in v appended to the bound
// value list.
func (v V) Bind(ctx context.Context) context.Context {
	s := stateOf(ctx).clone()
	for k, val := range v {
		s.values = append(s.values, keyValue{k, val})
	}
	return context.WithValue(ctx, contextKey, s)
}

func stateOf(ctx context.Context) *state {
	if ctx == nil {
		return &state{handler: defaultHandler}
	}
	if s, ok := ctx.Value(contextKey).(*state); ok {
		return s
	}
	return &state{handler: defaultHandler}
}

func (s *state) clone() *state {
	if s == nil {
		return &state{handler: defaultHandler}
	}
	values := make([]keyValue, len(s.values))
	copy(values, s.values)
	return &state{handler: s.handler, tag: s.tag, values: values}
}
