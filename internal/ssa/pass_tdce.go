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

// TDCE removes trivial dead-code such as unused value definitions from the
// function. Impure instructions are always kept.
type TDCE struct{}

func (TDCE) used(fn *Func) map[*Value]struct{} {
    var ok bool
    var use IrUsages
    ret := make(map[*Value]struct{})

    /* mark all usages in every block */
    for _, bb := range fn.Blocks() {
        for _, v := range bb.Phi {
            for _, r := range v.Usages() {
                ret[r] = struct{}{}
            }
        }

        /* mark all usages in instructions if any */
        for _, v := range bb.Ins {
            if use, ok = v.(IrUsages); ok {
                for _, r := range use.Usages() {
                    ret[r] = struct{}{}
                }
            }
        }

        /* mark usages in the terminator if any */
        if use, ok = bb.Term.(IrUsages); ok {
            for _, r := range use.Usages() {
                ret[r] = struct{}{}
            }
        }
    }

    /* all done */
    return ret
}

func (self TDCE) Run(fn *Func, _ *AnalysisManager) PreservedAnalyses {
    var rt bool

    /* a removal may make other definitions unused */
    for {
        done := true
        used := self.used(fn)

        /* remove definitions that don't have any effects */
        for _, bb := range fn.Blocks() {
            phi, ins := bb.Phi, bb.Ins
            bb.Phi, bb.Ins = bb.Phi[:0], bb.Ins[:0]

            /* remove unused Phi nodes */
            for _, v := range phi {
                if _, ok := used[v.R]; ok {
                    bb.Phi = append(bb.Phi, v)
                } else {
                    done = false
                }
            }

            /* remove unused pure instructions */
            for _, v := range ins {
                if self.live(v, used) {
                    bb.Ins = append(bb.Ins, v)
                } else {
                    done = false
                }
            }
        }

        /* no more modifications */
        if done {
            break
        } else {
            rt = true
        }
    }

    /* all done */
    return changed(rt)
}

func (TDCE) live(v IrNode, used map[*Value]struct{}) bool {
    if _, ok := v.(IrImpure); ok {
        return true
    }

    /* instructions without definitions are kept as-is */
    d, ok := v.(IrDefinitions)
    if !ok {
        return true
    }

    /* keep it if any of the definitions is used */
    for _, r := range d.Definitions() {
        if _, ok = used[r]; ok {
            return true
        }
    }

    /* this instruction is dead */
    return false
}
