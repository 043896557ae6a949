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
    `sync`
    `testing`

    `github.com/stretchr/testify/require`
    `go.uber.org/zap`
    `go.uber.org/zap/zaptest/observer`
)

func TestLogger_Default(t *testing.T) {
    SetLogger(nil)
    require.NotNil(t, Logger())
    require.False(t, Logger().Core().Enabled(zap.DebugLevel))
}

func TestLogger_Observed(t *testing.T) {
    core, logs := observer.New(zap.DebugLevel)
    SetLogger(zap.New(core))
    defer SetLogger(nil)

    /* the package logger is used when the pass has none */
    fn := mustParse(t, _NestedIfs)
    require.True(t, IfCombine{}.Run(fn, nil).Changed())
    require.Equal(t, 1, logs.FilterMessage("found nested ifs").Len())

    /* check the fields */
    ent := logs.FilterMessage("found nested ifs").All()[0]
    require.Equal(t, "f", ent.ContextMap()["func"])
}

func TestLogger_SwapWhileRunning(t *testing.T) {
    var wg sync.WaitGroup
    fns := make([]*Func, 32)
    for i := range fns {
        fns[i] = mustParse(t, _NestedIfs)
    }

    /* keep replacing the logger while passes run */
    wg.Add(1)
    go func() {
        defer wg.Done()
        for i := 0; i < 256; i++ {
            core, _ := observer.New(zap.DebugLevel)
            SetLogger(zap.New(core))
            SetLogger(nil)
        }
    }()

    /* every pass still sees a valid logger */
    res := make([]bool, len(fns))
    for i, fn := range fns {
        wg.Add(1)
        go func(i int, fn *Func) {
            defer wg.Done()
            res[i] = IfCombine{}.Run(fn, nil).Changed()
        }(i, fn)
    }

    /* all done */
    wg.Wait()
    SetLogger(nil)
    for _, ok := range res {
        require.True(t, ok)
    }
}
