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

// BlockMerge merges redundant intermediate blocks (blocks with a single
// outgoing edge which goes to another block with a single incoming edge).
type BlockMerge struct{}

func (BlockMerge) merge(fn *Func, bb *BasicBlock, to *BasicBlock) {
    seen := make(map[*BasicBlock]bool)
    bb.Ins = append(bb.Ins, to.Ins...)
    bb.Term = to.Term

    /* update every successor exactly once */
    for _, rb := range to.Successors() {
        if seen[rb] {
            continue
        }

        /* update predecessor list */
        seen[rb] = true
        for i, p := range rb.Pred {
            if p == to {
                rb.Pred[i] = bb
            }
        }

        /* update in Phi nodes */
        for _, v := range rb.Phi {
            v.V[bb] = v.V[to]
            delete(v.V, to)
        }
    }

    /* the merged block is gone */
    to.Ins = nil
    to.Pred = nil
    to.Term = nil
    fn.RemoveBlock(to)
}

func (self BlockMerge) Run(fn *Func, _ *AnalysisManager) PreservedAnalyses {
    var rt bool
    var ok bool
    var sw *IrJump

    /* merge until nothing changes */
    for done := false; !done; {
        done = true

        /* check every block */
        for _, bb := range fn.Blocks() {
            if !fn.Live(bb.Id) {
                continue
            }

            /* only unconditional jumps can be merged */
            if sw, ok = bb.Term.(*IrJump); !ok {
                continue
            }

            /* the target must be a plain block reachable only from here */
            if to := sw.To; to != bb && to != fn.Root && len(to.Pred) == 1 && len(to.Phi) == 0 {
                rt, done = true, false
                self.merge(fn, bb, to)
            }
        }
    }

    /* all done */
    return changed(rt)
}
