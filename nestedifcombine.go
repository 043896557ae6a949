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

package nestedifcombine

import (
	"github.com/viniciusfdasilva/nestedifcombine/internal/opts"
	"github.com/viniciusfdasilva/nestedifcombine/internal/pipeline"
	"github.com/viniciusfdasilva/nestedifcombine/internal/ssa"
)

type (
	// Module is a parsed compilation unit, an ordered list of functions.
	Module = ssa.Module

	// Func is a single function in SSA form.
	Func = ssa.Func

	// Stats records the counters of the nested-if-combine pass.
	Stats = ssa.StatsSnapshot
)

// Result is the outcome of Optimize.
type Result struct {
	Text    string
	Changed bool
	Stats   Stats
}

func newOptions(options []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}
	return o
}

// ParseModule parses the textual form of the IR.
func ParseModule(src []byte) (*Module, error) {
	return ssa.ParseModule(string(src))
}

// OptimizeModule runs the configured pipeline over every function of mod in
// place, and reports whether anything changed.
func OptimizeModule(mod *Module, options ...Option) (bool, Stats, error) {
	st := new(ssa.Stats)
	pm, err := pipeline.New(newOptions(options), st)
	if err != nil {
		return false, Stats{}, err
	}
	ok, err := pm.Run(mod)
	return ok, st.Snapshot(), err
}

// Optimize parses src, runs the configured pipeline over it and prints the
// result back in textual form.
func Optimize(src []byte, options ...Option) (*Result, error) {
	mod, err := ParseModule(src)
	if err != nil {
		return nil, err
	}
	ok, st, err := OptimizeModule(mod, options...)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:    mod.String(),
		Changed: ok,
		Stats:   st,
	}, nil
}

// CombineFunc runs the nested-if-combine pass exactly once over fn, ignoring
// the configured pipeline, and reports whether fn was modified.
func CombineFunc(fn *Func, options ...Option) bool {
	o := newOptions(options)
	pass := ssa.IfCombine{Strict: o.Strict, Log: o.Logger}
	return pass.Run(fn, ssa.NewAnalysisManager()).Changed()
}

// Verify checks the structural invariants of fn, every defect found is
// reported as a VerifyError combined into the returned error.
func Verify(fn *Func) error {
	return ssa.Verify(fn)
}
