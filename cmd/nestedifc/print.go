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

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/viniciusfdasilva/nestedifcombine"
)

var (
	errorStyle  = color.New(color.FgRed, color.Bold)
	okStyle     = color.New(color.FgGreen, color.Bold)
	fileStyle   = color.New(color.FgCyan, color.Bold)
	countStyle  = color.New(color.FgHiBlue, color.Bold)
	rejectStyle = color.New(color.FgYellow)
)

func printStats(w io.Writer, file string, st nestedifcombine.Stats) {
	fileStyle.Fprintf(w, "%s:\n", file)
	fmt.Fprintf(w, "  visited   %s\n", countStyle.Sprint(st.Visited))
	fmt.Fprintf(w, "  combined  %s\n", countStyle.Sprint(st.Combined))
	fmt.Fprintf(w, "  stale     %s\n", countStyle.Sprint(st.Stale))

	reasons := make([]string, 0, len(st.Rejected))
	for k := range st.Rejected {
		reasons = append(reasons, k)
	}
	sort.Strings(reasons)

	for _, k := range reasons {
		fmt.Fprintf(w, "  rejected  %s %s\n", countStyle.Sprint(st.Rejected[k]), rejectStyle.Sprint(k))
	}
}
