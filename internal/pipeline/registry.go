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

package pipeline

import (
    `fmt`
    `sort`
    `sync`

    `github.com/viniciusfdasilva/nestedifcombine/internal/opts`
    `github.com/viniciusfdasilva/nestedifcombine/internal/ssa`
)

// Factory creates a pass instance for one pipeline. Counters produced by the
// pass should go to st.
type Factory func(o *opts.Options, st *ssa.Stats) ssa.Pass

var (
    registry     = make(map[string]Factory)
    registryLock sync.RWMutex
)

const (
    PassVerify = "verify"
)

func init() {
    Register("nested-if-combine", func(o *opts.Options, st *ssa.Stats) ssa.Pass { return ssa.IfCombine{Strict: o.Strict, Stats: st, Log: o.Logger} })
    Register("block-merge", func(_ *opts.Options, _ *ssa.Stats) ssa.Pass { return ssa.BlockMerge{} })
    Register("tdce", func(_ *opts.Options, _ *ssa.Stats) ssa.Pass { return ssa.TDCE{} })
}

// Register adds a named pass to the registry. Registering a name twice is a
// programming error and panics.
func Register(name string, f Factory) {
    registryLock.Lock()
    defer registryLock.Unlock()

    /* check for duplicates */
    if _, ok := registry[name]; ok || name == PassVerify {
        panic(fmt.Sprintf("pipeline: pass %q already registered", name))
    }

    /* check the name */
    if !isName(name) {
        panic(fmt.Sprintf("pipeline: invalid pass name %q", name))
    }

    /* add to registry */
    registry[name] = f
}

func Lookup(name string) (Factory, bool) {
    registryLock.RLock()
    f, ok := registry[name]
    registryLock.RUnlock()
    return f, ok
}

// Names returns every registered pass name in sorted order, the verifier
// included.
func Names() []string {
    registryLock.RLock()
    ret := make([]string, 0, len(registry) + 1)
    for k := range registry { ret = append(ret, k) }
    registryLock.RUnlock()

    /* the verifier is built-in */
    ret = append(ret, PassVerify)
    sort.Strings(ret)
    return ret
}
