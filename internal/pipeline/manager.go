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

    `github.com/viniciusfdasilva/nestedifcombine/internal/opts`
    `github.com/viniciusfdasilva/nestedifcombine/internal/ssa`
    `go.uber.org/zap`
)

type _Step interface {
    run(m *Manager, fn *ssa.Func) (bool, error)
}

type _PassStep struct {
    name string
    pass ssa.Pass
}

func (self *_PassStep) run(m *Manager, fn *ssa.Func) (bool, error) {
    pa := self.pass.Run(fn, m.am)
    m.am.Invalidate(fn, pa)

    /* dump the pass result */
    m.log.Debug(
        "pass finished",
        zap.String("pass", self.name),
        zap.String("func", fn.Name),
        zap.Bool("changed", pa.Changed()),
    )

    /* all done */
    return pa.Changed(), nil
}

type _VerifyStep struct{}

func (_VerifyStep) run(_ *Manager, fn *ssa.Func) (bool, error) {
    if err := ssa.Verify(fn); err != nil {
        return false, fmt.Errorf("verification failed: %w", err)
    } else {
        return false, nil
    }
}

type _RepeatStep struct {
    n    int
    body []_Step
}

func (self *_RepeatStep) run(m *Manager, fn *ssa.Func) (bool, error) {
    var rt bool
    for i := 0; i < self.n; i++ {
        if ok, err := m.runSteps(self.body, fn); err != nil {
            return false, err
        } else {
            rt = rt || ok
        }
    }
    return rt, nil
}

type _FixpointStep struct {
    body []_Step
}

func (self *_FixpointStep) run(m *Manager, fn *ssa.Func) (bool, error) {
    var n int
    var rt bool

    /* run until nothing changes, or out of rounds */
    for n = 0; m.opts.CanRepeat(n); n++ {
        ok, err := m.runSteps(self.body, fn)
        if err != nil {
            return false, err
        }

        /* the fixed point is reached */
        if !ok {
            return rt, nil
        } else {
            rt = true
        }
    }

    /* still changing, give up */
    m.log.Debug("fixpoint round limit reached", zap.String("func", fn.Name), zap.Int("rounds", n))
    return rt, nil
}

// Manager runs a pipeline of passes over functions, keeping the analyses of
// each function cached between passes.
type Manager struct {
    opts  opts.Options
    text  string
    steps []_Step
    stats *ssa.Stats
    am    *ssa.AnalysisManager
    log   *zap.Logger
}

// New parses o.Pipeline and instantiates every pass in it. Pass counters are
// accumulated into st, which may be nil.
func New(o opts.Options, st *ssa.Stats) (*Manager, error) {
    nodes, err := Parse(o.Pipeline)
    if err != nil {
        return nil, err
    }

    /* verify after the whole pipeline if requested */
    if o.Verify {
        nodes = append(nodes, &PassNode{Name: PassVerify})
    }

    /* create the manager */
    ret := &Manager {
        opts  : o,
        text  : Format(nodes),
        stats : st,
        am    : ssa.NewAnalysisManager(),
        log   : o.Logger,
    }

    /* use the package logger by default */
    if ret.log == nil {
        ret.log = ssa.Logger()
    }

    /* instantiate the steps */
    ret.steps = ret.build(nodes)
    return ret, nil
}

func (self *Manager) build(nodes []Node) []_Step {
    ret := make([]_Step, 0, len(nodes))
    for _, v := range nodes {
        ret = append(ret, self.step(v))
    }
    return ret
}

func (self *Manager) step(v Node) _Step {
    switch p := v.(type) {
        case *RepeatNode   : return &_RepeatStep{n: p.N, body: self.build(p.Body)}
        case *FixpointNode : return &_FixpointStep{body: self.build(p.Body)}
    }

    /* the verifier is built-in */
    name := v.(*PassNode).Name
    if name == PassVerify {
        return _VerifyStep{}
    }

    /* lookup the factory */
    if f, ok := Lookup(name); !ok {
        panic("pipeline: pass disappeared from the registry: " + name)
    } else {
        return &_PassStep{name: name, pass: f(&self.opts, self.stats)}
    }
}

func (self *Manager) runSteps(steps []_Step, fn *ssa.Func) (bool, error) {
    var rt bool
    for _, s := range steps {
        if ok, err := s.run(self, fn); err != nil {
            return false, err
        } else {
            rt = rt || ok
        }
    }
    return rt, nil
}

// String returns the canonical form of the pipeline.
func (self *Manager) String() string {
    return self.text
}

// Analyses returns the analysis cache shared by the passes.
func (self *Manager) Analyses() *ssa.AnalysisManager {
    return self.am
}

// RunFunc runs the pipeline over a single function.
func (self *Manager) RunFunc(fn *ssa.Func) (bool, error) {
    ok, err := self.runSteps(self.steps, fn)
    if err != nil {
        return false, fmt.Errorf("@%s: %w", fn.Name, err)
    } else {
        return ok, nil
    }
}

// Run runs the pipeline over every function of the module in order, and
// stops at the first error.
func (self *Manager) Run(mod *ssa.Module) (bool, error) {
    var rt bool
    for _, fn := range mod.Funcs {
        if ok, err := self.RunFunc(fn); err != nil {
            return false, err
        } else {
            rt = rt || ok
        }
    }
    return rt, nil
}
