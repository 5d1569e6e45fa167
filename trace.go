// Copyright 2023 The licensedetect Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package licensedetect

import (
	"flag"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// This file contains a simple trace execution mechanism for debugging the
// matching pipeline without a debugger attached.

var tracePhasesFlag = flag.String("trace_phases", "", "comma-separated list of phases to trace (score)")

var tracePhases map[string]bool

func initTrace() {
	tracePhases = make(map[string]bool)
	if len(*tracePhasesFlag) > 0 {
		for _, phase := range strings.Split(*tracePhasesFlag, ",") {
			tracePhases[strings.TrimSpace(phase)] = true
		}
	}
}

func shouldTrace(phase string) bool {
	return tracePhases[phase]
}

func traceScoring() bool {
	return shouldTrace("score")
}

// tracef holds the function called to emit trace data. Overridable; defaults
// to stdout.
var tracef func(format string, args ...interface{}) = func(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// traceCandidates dumps a run's candidate pool with its score vectors.
func traceCandidates(run *queryRun, cands []candidate) {
	tracef("run [%d:%d] candidates:\n", run.start, run.end)
	for _, c := range cands {
		tracef("  %s %s", c.rule.Identifier, spew.Sdump(c.scores))
	}
}
