/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ssa

import (
    `go.uber.org/atomic`
)

// Stats accumulates the counters of the IfCombine pass. The counters are
// atomic so that one Stats may be shared by passes running on different
// functions concurrently.
type Stats struct {
    Visited  atomic.Int64
    Combined atomic.Int64
    Stale    atomic.Int64
    Rejected [_R_max]atomic.Int64
}

// StatsSnapshot is a plain copy of a Stats.
type StatsSnapshot struct {
    Visited  int64
    Combined int64
    Stale    int64
    Rejected map[string]int64
}

var _Totals Stats

// Totals returns the process-wide counters aggregated over every run.
func Totals() StatsSnapshot {
    return _Totals.Snapshot()
}

func (self *Stats) Snapshot() StatsSnapshot {
    ret := StatsSnapshot {
        Visited  : self.Visited.Load(),
        Combined : self.Combined.Load(),
        Stale    : self.Stale.Load(),
        Rejected : make(map[string]int64),
    }

    /* only report the reasons that actually happened */
    for i := _R_none + 1; i < _R_max; i++ {
        if n := self.Rejected[i].Load(); n != 0 {
            ret.Rejected[i.String()] = n
        }
    }

    /* all done */
    return ret
}

// Add merges a per-run snapshot into the counters.
func (self *Stats) Add(v StatsSnapshot) {
    self.Visited.Add(v.Visited)
    self.Combined.Add(v.Combined)
    self.Stale.Add(v.Stale)

    /* merge the rejections */
    for i := _R_none + 1; i < _R_max; i++ {
        self.Rejected[i].Add(v.Rejected[i.String()])
    }
}
