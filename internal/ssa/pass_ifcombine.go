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
    `github.com/oleiade/lane`
    `go.uber.org/zap`
)

type _IfReject uint8

const (
    _R_none _IfReject = iota
    _R_notcond
    _R_size
    _R_inner
    _R_else
    _R_shape
    _R_entry
    _R_pred
    _R_phi
    _R_unavail
    _R_max
)

var _IfRejectNames = [...]string {
    _R_none    : "none",
    _R_notcond : "not-conditional",
    _R_size    : "then-not-trivial",
    _R_inner   : "inner-not-conditional",
    _R_else    : "else-mismatch",
    _R_shape   : "self-loop",
    _R_entry   : "then-is-entry",
    _R_pred    : "then-shared",
    _R_phi     : "phi-conflict",
    _R_unavail : "predicate-unavailable",
}

func (self _IfReject) String() string {
    return _IfRejectNames[self]
}

type _IfMatch struct {
    mid    *BasicBlock
    then   *BasicBlock
    shared *BasicBlock
    inner  *IrCondBr
}

type _IfCandidate struct {
    id int
    br *IrCondBr
}

type _IfAvail struct {
    dt   *DominatorTree
    defs map[*Value]*BasicBlock
}

// IfCombine merges two nested conditional branches whose inner else target is
// the outer else target into one branch on the conjunction of both
// predicates:
//
//   entry:                          entry:
//     br %a, mid, shared              %c = land %a, %b
//   mid:                     =>       br %c, target, shared
//     br %b, target, shared
//
// The conjunction is evaluated eagerly. With Strict set, the inner predicate
// must already be available at the outer branch. Log defaults to Logger().
type IfCombine struct {
    Strict bool
    Stats  *Stats
    Log    *zap.Logger
}

func (self IfCombine) available(fn *Func, bb *BasicBlock, v *Value, av *_IfAvail) bool {
    if fn.isParam(v) {
        return true
    }

    /* must be defined somewhere */
    db, ok := av.defs[v]
    if !ok {
        return false
    }

    /* anything defined in the outer block itself comes before the branch */
    if db == bb {
        return true
    } else {
        return av.dt.Dominates(db, bb)
    }
}

func (self IfCombine) match(fn *Func, bb *BasicBlock, av *_IfAvail) (m _IfMatch, why _IfReject) {
    var ok bool
    var outer *IrCondBr

    /* the outer branch must be conditional */
    if outer, ok = bb.Term.(*IrCondBr); !ok {
        return m, _R_notcond
    }

    /* the then block must consist of the inner branch only */
    if m.mid = outer.Then; m.mid.Size() != 1 {
        return m, _R_size
    }

    /* which must also be a conditional branch */
    if m.inner, ok = m.mid.Term.(*IrCondBr); !ok {
        return m, _R_inner
    }

    /* both branches must fall through to the same else block */
    if m.inner.Else != outer.Else {
        return m, _R_else
    }

    /* the then block is about to be deleted, it must not branch to itself */
    if m.mid == bb || m.inner.Then == m.mid || m.inner.Else == m.mid {
        return m, _R_shape
    }

    /* the entry block can never be removed */
    if m.mid == fn.Root {
        return m, _R_entry
    }

    /* and must only be reachable through the outer branch */
    if len(m.mid.Pred) != 1 || m.mid.Pred[0] != bb {
        return m, _R_pred
    }

    /* the two false edges become one, the Phi nodes must agree on them */
    for _, p := range m.inner.Else.Phi {
        if p.V[bb] != p.V[m.mid] {
            return m, _R_phi
        }
    }

    /* the inner predicate is evaluated unconditionally after the merge */
    if av != nil && !self.available(fn, bb, m.inner.V, av) {
        return m, _R_unavail
    }

    /* this is a valid candidate */
    m.then = m.inner.Then
    m.shared = m.inner.Else
    return m, _R_none
}

func (self IfCombine) rewrite(fn *Func, bb *BasicBlock, m _IfMatch) *Value {
    outer := bb.Term.(*IrCondBr)
    cond := fn.NewValue("nested.if.combined")

    /* combine the two predicates before the branch */
    bb.Ins = append(bb.Ins, &IrBinaryExpr {
        R  : cond,
        X  : outer.V,
        Y  : m.inner.V,
        Op : IrOpLand,
    })

    /* replace both branches with a single one */
    bb.Term = &IrCondBr {
        V    : cond,
        Then : m.then,
        Else : m.shared,
    }

    /* the true edge of the inner branch now comes from the outer block */
    m.then.replacePred(m.mid, bb)
    for _, p := range m.then.Phi {
        p.V[bb] = p.V[m.mid]
        delete(p.V, m.mid)
    }

    /* the false edge of the inner branch disappears */
    m.shared.removePred(m.mid)
    for _, p := range m.shared.Phi {
        delete(p.V, m.mid)
    }

    /* delete the intermediate block */
    m.mid.Pred = nil
    m.mid.Term = nil
    fn.RemoveBlock(m.mid)
    return cond
}

func (self IfCombine) Run(fn *Func, am *AnalysisManager) PreservedAnalyses {
    var rt bool
    var st Stats
    var av *_IfAvail
    var lg = self.Log

    /* use the package logger by default */
    if lg == nil {
        lg = Logger()
    }

    /* collect every conditional branch before touching the graph */
    wl := lane.NewQueue()
    for _, bb := range fn.Blocks() {
        if br, ok := bb.Term.(*IrCondBr); ok {
            wl.Enqueue(_IfCandidate{id: bb.Id, br: br})
        }
    }

    /* strict mode needs to know where each predicate is defined */
    if self.Strict {
        av = &_IfAvail {
            dt   : am.Dominators(fn),
            defs : fn.Definitions(),
        }
    }

    /* try every candidate exactly once */
    for !wl.Empty() {
        c := wl.Dequeue().(_IfCandidate)
        bb := fn.Block(c.id)

        /* skip entries invalidated by earlier rewrites */
        if bb == nil || bb.Term != c.br {
            st.Stale.Inc()
            continue
        }

        /* check for the pattern */
        st.Visited.Inc()
        m, why := self.match(fn, bb, av)

        /* not matched, this is the common case */
        if why != _R_none {
            st.Rejected[why].Inc()
            continue
        }

        /* dump the matched branches */
        lg.Debug(
            "found nested ifs",
            zap.String("func", fn.Name),
            zap.Stringer("outer", c.br),
            zap.Stringer("inner", m.inner),
        )

        /* merge the branches */
        rt = true
        st.Combined.Inc()
        cond := self.rewrite(fn, bb, m)

        /* the combined predicate is defined in the outer block, the dominator
         * tree stays valid since the removed block had a single predecessor
         * and defined nothing */
        if av != nil {
            av.defs[cond] = bb
        }
    }

    /* publish the counters */
    snap := st.Snapshot()
    _Totals.Add(snap)

    /* also to the caller's counters if any */
    if self.Stats != nil {
        self.Stats.Add(snap)
    }

    /* nothing is preserved once the CFG changed */
    return changed(rt)
}
