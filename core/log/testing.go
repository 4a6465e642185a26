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

import "context"

// testingT is the subset of testing.T used by Testing, avoiding an
// import of the testing package from non-test code.
type testingT interface {
	Logf(format string, args ...interface{})
}

// Testing returns a context whose Handler forwards records to t.Logf,
// the shape used across this module's _test.go files.
func Testing(t testingT) Context {
	h := HandlerFunc(func(r Record) {
		if r.Tag != "" {
			t.Logf("%-7s %s: %s", r.Severity, r.Tag, r.Message)
		} else {
			t.Logf("%-7s %s", r.Severity, r.Message)
		}
	})
	return From(PutHandler(context.Background(), h))
}
