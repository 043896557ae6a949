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

// PreservedAnalyses tells the pass manager which cached analyses are still
// valid after a pass has run.
type PreservedAnalyses struct {
    all bool
}

func PreservedAll() PreservedAnalyses {
    return PreservedAnalyses{all: true}
}

func PreservedNone() PreservedAnalyses {
    return PreservedAnalyses{all: false}
}

func (self PreservedAnalyses) AreAllPreserved() bool {
    return self.all
}

// Changed reports whether the pass modified the function.
func (self PreservedAnalyses) Changed() bool {
    return !self.all
}

type _FuncAnalyses struct {
    dom  *DominatorTree
    post []*BasicBlock
}

// AnalysisManager caches per-function analyses between passes. A nil manager
// is valid and recomputes everything on each request.
type AnalysisManager struct {
    Hits   int
    Misses int
    cache  map[*Func]*_FuncAnalyses
}

func NewAnalysisManager() *AnalysisManager {
    return &AnalysisManager {
        cache: make(map[*Func]*_FuncAnalyses),
    }
}

func (self *AnalysisManager) entry(fn *Func) *_FuncAnalyses {
    var ok bool
    var fa *_FuncAnalyses

    /* create the entry if needed */
    if fa, ok = self.cache[fn]; !ok {
        fa = new(_FuncAnalyses)
        self.cache[fn] = fa
    }

    /* all done */
    return fa
}

func (self *AnalysisManager) Dominators(fn *Func) *DominatorTree {
    if self == nil {
        return BuildDominatorTree(fn)
    }

    /* check for cached results */
    fa := self.entry(fn)
    if fa.dom != nil {
        self.Hits++
        return fa.dom
    }

    /* compute the dominator tree */
    self.Misses++
    fa.dom = BuildDominatorTree(fn)
    return fa.dom
}

func (self *AnalysisManager) PostOrder(fn *Func) []*BasicBlock {
    if self == nil {
        return fn.PostOrder().Slice()
    }

    /* check for cached results */
    fa := self.entry(fn)
    if fa.post != nil {
        self.Hits++
        return fa.post
    }

    /* compute the post-order */
    self.Misses++
    fa.post = fn.PostOrder().Slice()
    return fa.post
}

// Invalidate drops the cached analyses of fn unless pa preserves all of them.
func (self *AnalysisManager) Invalidate(fn *Func, pa PreservedAnalyses) {
    if self != nil && !pa.AreAllPreserved() {
        delete(self.cache, fn)
    }
}

// Cached reports whether any analysis of fn is currently cached.
func (self *AnalysisManager) Cached(fn *Func) bool {
    if self == nil {
        return false
    } else {
        _, ok := self.cache[fn]
        return ok
    }
}
