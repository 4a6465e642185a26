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

package log

import (
	"context"
	"fmt"
)

// Context extends context.Context with the fluent severity-filtered
// logging calls used throughout this module: ctx.Info().Log("...").
type Context interface {
	context.Context
	Debug() Logger
	Info() Logger
	Warning() Logger
	Error() Logger
	Fatal() Logger
}

// Logger accumulates a single log record and emits it on Log/Logf.
type Logger struct {
	ctx      context.Context
	severity Severity
	state    *state
}

// From adapts a plain context.Context into a log.Context. If ctx was
// already produced by this package the same state travels with it.
func From(ctx context.Context) Context {
	return wrapped{ctx}
}

type wrapped struct{ context.Context }

func (w wrapped) at(s Severity) Logger {
	return Logger{ctx: w.Context, severity: s, state: stateOf(w.Context)}
}

func (w wrapped) Debug() Logger   { return w.at(Debug) }
func (w wrapped) Info() Logger    { return w.at(Info) }
func (w wrapped) Warning() Logger { return w.at(Warning) }
func (w wrapped) Error() Logger   { return w.at(Error) }
func (w wrapped) Fatal() Logger   { return w.at(Fatal) }

// With returns a Logger with an additional bound value, printed by
// Handlers that render structured fields.
func (l Logger) With(key string, value interface{}) Logger {
	s := l.state.clone()
	s.values = append(s.values, keyValue{key, value})
	l.state = s
	return l
}

// Log emits the formatted message through the active Handler.
func (l Logger) Log(format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	h := l.state.handler
	if h == nil {
		h = defaultHandler
	}
	h.Handle(Record{Severity: l.severity, Tag: l.state.tag, Message: msg, Values: l.state.values})
	if l.severity == Fatal {
		panic(msg)
	}
}

// Err wraps err, logging a message at Error severity and returning err
// unchanged so it can still be propagated — the shape used throughout
// the capture path's "log a warning and continue" semantics.
func Err(ctx context.Context, err error, message string) error {
	if err != nil {
		From(ctx).Error().With("error", err).Log("%s", message)
	}
	return err
}
