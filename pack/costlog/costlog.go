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

// Package costlog is the per-call cost log collaborator spec.md §6's
// capture configuration names (the `format`/`range` keys) without
// specifying its shape; this implements it grounded on
// _examples/original_source/layersvt/api_cost.h. It accumulates a
// call count and cumulative duration per packet kind, windowed to a
// frame range, and flushes as text, HTML or CSV.
package costlog

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/ARM-software/vktrace-arm-sub003/pack/captureconfig"
)

// Format is the on-disk rendering of the cost log (spec.md §6).
type Format int

const (
	CSV Format = iota
	Text
	HTML
)

// ParseFormat maps captureconfig's format key to a Format, defaulting
// to CSV to match the original's default.
func ParseFormat(s string) Format {
	switch s {
	case "text":
		return Text
	case "html":
		return HTML
	case "csv":
		return CSV
	default:
		return CSV
	}
}

// stat is one packet kind's accumulated call count and cost.
type stat struct {
	callCount uint64
	costSum   uint64 // nanoseconds
}

// Log accumulates per-packet-kind call statistics within a frame
// window, and flushes them in one of three formats (spec.md §6,
// original_source/layersvt/api_cost.h). The zero value is not usable;
// construct with New.
type Log struct {
	mu         sync.Mutex
	format     Format
	frameMin   uint64
	frameMax   uint64
	frameCount uint64
	stats      map[string]*stat
}

// New returns a Log from a parsed captureconfig.Config. A zero
// RangeMax (the config's unset-range sentinel) behaves as "no upper
// bound".
func New(cfg captureconfig.Config) *Log {
	frameMax := cfg.RangeMax
	if frameMax == 0 {
		frameMax = ^uint64(0)
	}
	return &Log{
		format:   ParseFormat(cfg.Format),
		frameMin: cfg.RangeMin,
		frameMax: frameMax,
		stats:    map[string]*stat{},
	}
}

// NextFrame advances the frame counter used to window Record calls
// against the configured range.
func (l *Log) NextFrame() {
	l.mu.Lock()
	l.frameCount++
	l.mu.Unlock()
}

// Record accumulates one call's cost under name if the current frame
// falls within the configured window.
func (l *Log) Record(name string, cost uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frameCount < l.frameMin || l.frameCount > l.frameMax {
		return
	}
	s, ok := l.stats[name]
	if !ok {
		s = &stat{}
		l.stats[name] = s
	}
	s.callCount++
	s.costSum += cost
}

// sortedNames returns the recorded function names in a stable,
// deterministic order for Flush.
func (l *Log) sortedNames() []string {
	names := make([]string, 0, len(l.stats))
	for name := range l.stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flush writes the accumulated statistics to w in the configured
// format. It does not reset the accumulated statistics; callers that
// want a fresh window call Flush once at teardown, matching the
// original's destructor-time-only write.
func (l *Log) Flush(w io.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.format {
	case CSV:
		return l.flushCSV(w)
	case HTML:
		return l.flushHTML(w)
	default:
		return l.flushText(w)
	}
}

func (l *Log) flushCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"function", "count", "time(us)"}); err != nil {
		return err
	}
	for _, name := range l.sortedNames() {
		s := l.stats[name]
		row := []string{name, strconv.FormatUint(s.callCount, 10), strconv.FormatUint(s.costSum/1000, 10)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (l *Log) flushText(w io.Writer) error {
	for _, name := range l.sortedNames() {
		s := l.stats[name]
		if _, err := fmt.Fprintf(w, "funcname = %-48s count = %-10d cost = %-10d us\r\n", name, s.callCount, s.costSum/1000); err != nil {
			return err
		}
	}
	return nil
}

// htmlRow is one function's rendered row, shaped for htmlTemplate.
type htmlRow struct {
	Name      string
	CallCount uint64
	CostUs    uint64
}

var htmlTemplate = template.Must(template.New("costlog").Parse(
	`<!doctype html><html><head><title>API Cost</title></head><body><div id='wrapper'>` +
		`{{range .}}<summary><div class='var'>funcname = {{.Name}} count = {{.CallCount}} cost = {{.CostUs}} us</div></summary>{{end}}` +
		`</div></body></html>`))

func (l *Log) flushHTML(w io.Writer) error {
	rows := make([]htmlRow, 0, len(l.stats))
	for _, name := range l.sortedNames() {
		s := l.stats[name]
		rows = append(rows, htmlRow{Name: name, CallCount: s.callCount, CostUs: s.costSum / 1000})
	}
	return htmlTemplate.Execute(w, rows)
}
