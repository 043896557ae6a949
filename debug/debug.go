/*
 * Copyright 2022 CloudWeGo Authors
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

package debug

import (
	"github.com/viniciusfdasilva/nestedifcombine/internal/ssa"
)

// A Stats records statistics about the passes.
type Stats struct {
	IfCombine PassStats
}

// A PassStats records the candidates seen by a pass and what became of them.
type PassStats struct {
	Visited  int
	Combined int
	Stale    int
	Rejected map[string]int
}

// GetStats returns statistics aggregated over every pass run in this process.
func GetStats() Stats {
	st := ssa.Totals()
	ret := Stats{
		IfCombine: PassStats{
			Visited:  int(st.Visited),
			Combined: int(st.Combined),
			Stale:    int(st.Stale),
			Rejected: make(map[string]int, len(st.Rejected)),
		},
	}
	for k, v := range st.Rejected {
		ret.IfCombine.Rejected[k] = int(v)
	}
	return ret
}
