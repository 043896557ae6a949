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
    `go.uber.org/multierr`
    `gonum.org/v1/gonum/graph/simple`
    `gonum.org/v1/gonum/graph/traverse`
)

type _Edge struct {
    from *BasicBlock
    to   *BasicBlock
}

// Verify checks the structural invariants of fn and returns every violation
// found, combined into a single error.
func Verify(fn *Func) error {
    var err error
    edges := make(map[_Edge]int)
    preds := make(map[_Edge]int)

    /* the entry block must be present */
    if fn.Root == nil || fn.Block(fn.Root.Id) != fn.Root {
        return everify(fn, nil, "missing entry block")
    }

    /* collect every edge declared by the terminators */
    for _, bb := range fn.Blocks() {
        if bb.Term == nil {
            err = multierr.Append(err, everify(fn, bb, "block is not terminated"))
            continue
        }

        /* successors must belong to this function */
        for _, to := range bb.Successors() {
            if fn.Block(to.Id) != to {
                err = multierr.Append(err, everify(fn, bb, "branch to foreign or removed block %s", to))
            } else {
                edges[_Edge{bb, to}]++
            }
        }
    }

    /* collect every edge declared by the predecessor lists */
    for _, bb := range fn.Blocks() {
        for _, p := range bb.Pred {
            preds[_Edge{p, bb}]++
        }
    }

    /* both sides must agree */
    for e, n := range edges {
        if preds[e] != n {
            err = multierr.Append(err, everify(fn, e.to, "%d edges from %s, but %d predecessor entries", n, e.from, preds[e]))
        }
    }

    /* and no stale predecessors */
    for e, n := range preds {
        if _, ok := edges[e]; !ok {
            err = multierr.Append(err, everify(fn, e.to, "stale predecessor %s (%d entries)", e.from, n))
        }
    }

    /* check the Phi nodes and the definitions */
    err = multierr.Append(err, verifyPhis(fn))
    err = multierr.Append(err, verifyValues(fn))

    /* every block must be reachable from the entry */
    for _, bb := range Unreachable(fn) {
        err = multierr.Append(err, everify(fn, bb, "unreachable block"))
    }

    /* all done */
    return err
}

func verifyPhis(fn *Func) (err error) {
    for _, bb := range fn.Blocks() {
        for _, p := range bb.Phi {
            for in := range p.V {
                if !bb.hasPred(in) {
                    err = multierr.Append(err, everify(fn, bb, "%s: %s is not a predecessor", p.R, in))
                }
            }
            for _, in := range bb.Pred {
                if _, ok := p.V[in]; !ok {
                    err = multierr.Append(err, everify(fn, bb, "%s: missing incoming value from %s", p.R, in))
                }
            }
        }
    }
    return
}

func verifyValues(fn *Func) (err error) {
    defs := make(map[*Value]bool)
    uses := make(map[*Value]*BasicBlock)

    /* parameters are defined on entry */
    for _, v := range fn.Params {
        defs[v] = true
    }

    /* scan every instruction */
    for _, bb := range fn.Blocks() {
        ins := make([]IrNode, 0, bb.Size())
        for _, v := range bb.Phi { ins = append(ins, v) }
        ins = append(ins, bb.Ins...)

        /* add the terminator if any */
        if bb.Term != nil {
            ins = append(ins, bb.Term)
        }

        /* each value must be defined exactly once */
        for _, v := range ins {
            if d, ok := v.(IrDefinitions); ok {
                for _, r := range d.Definitions() {
                    if defs[r] {
                        err = multierr.Append(err, everify(fn, bb, "redefinition of %s", r))
                    } else {
                        defs[r] = true
                    }
                }
            }

            /* remember where it is used */
            if u, ok := v.(IrUsages); ok {
                for _, r := range u.Usages() {
                    uses[r] = bb
                }
            }
        }
    }

    /* every used value must be defined */
    for v, bb := range uses {
        if !defs[v] {
            err = multierr.Append(err, everify(fn, bb, "use of undefined value %s", v))
        }
    }

    /* all done */
    return
}

// Unreachable returns the blocks that cannot be reached from the entry.
func Unreachable(fn *Func) []*BasicBlock {
    var ret []*BasicBlock
    g := simple.NewDirectedGraph()

    /* add every block as a node */
    for _, bb := range fn.Blocks() {
        g.AddNode(simple.Node(bb.Id))
    }

    /* add every edge between live blocks, self loops don't matter here */
    for _, bb := range fn.Blocks() {
        for _, to := range bb.Successors() {
            if to != bb && fn.Block(to.Id) == to {
                g.SetEdge(g.NewEdge(simple.Node(bb.Id), simple.Node(to.Id)))
            }
        }
    }

    /* walk from the entry */
    bf := traverse.BreadthFirst{}
    bf.Walk(g, simple.Node(fn.Root.Id), nil)

    /* anything not visited is unreachable */
    for _, bb := range fn.Blocks() {
        if !bf.Visited(simple.Node(bb.Id)) {
            ret = append(ret, bb)
        }
    }

    /* all done */
    return ret
}
