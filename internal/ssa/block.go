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
    `fmt`
)

// BasicBlock is a node of the CFG. Pred holds one entry per incoming edge, so
// a predecessor that branches here twice is listed twice.
type BasicBlock struct {
    Id   int
    Name string
    Phi  []*IrPhi
    Ins  []IrNode
    Pred []*BasicBlock
    Term IrTerminator
}

func (self *BasicBlock) String() string {
    if self.Name != "" {
        return self.Name
    } else {
        return fmt.Sprintf("bb_%d", self.Id)
    }
}

// Size is the total number of instructions in the block, Phi nodes and the
// terminator included.
func (self *BasicBlock) Size() int {
    if self.Term == nil {
        return len(self.Phi) + len(self.Ins)
    } else {
        return len(self.Phi) + len(self.Ins) + 1
    }
}

func (self *BasicBlock) Successors() []*BasicBlock {
    var ret []*BasicBlock
    var it IrSuccessors

    /* not terminated yet */
    if self.Term == nil {
        return nil
    }

    /* dump every successor */
    for it = self.Term.Successors(); it.Next(); {
        ret = append(ret, it.Block())
    }

    /* all done */
    return ret
}

func (self *BasicBlock) termJump(to *BasicBlock) {
    to.Pred = append(to.Pred, self)
    self.Term = &IrJump{To: to}
}

func (self *BasicBlock) termCondition(v *Value, t *BasicBlock, f *BasicBlock) {
    t.Pred = append(t.Pred, self)
    f.Pred = append(f.Pred, self)
    self.Term = &IrCondBr{V: v, Then: t, Else: f}
}

func (self *BasicBlock) termSwitch(v *Value, ln *BasicBlock, br map[int64]*BasicBlock) {
    sw := &IrSwitch {
        V  : v,
        Ln : ln,
        Br : br,
    }

    /* add the predecessors in successor order */
    for it := sw.Successors(); it.Next(); {
        to := it.Block()
        to.Pred = append(to.Pred, self)
    }

    /* set the terminator */
    self.Term = sw
}

func (self *BasicBlock) termReturn(rv []*Value) {
    self.Term = &IrReturn{R: rv}
}

func (self *BasicBlock) replacePred(old *BasicBlock, bb *BasicBlock) {
    for i, p := range self.Pred {
        if p == old {
            self.Pred[i] = bb
            return
        }
    }
    panic(fmt.Sprintf("%s is not a predecessor of %s", old, self))
}

func (self *BasicBlock) removePred(old *BasicBlock) {
    for i, p := range self.Pred {
        if p == old {
            self.Pred = append(self.Pred[:i], self.Pred[i + 1:]...)
            return
        }
    }
    panic(fmt.Sprintf("%s is not a predecessor of %s", old, self))
}

func (self *BasicBlock) hasPred(bb *BasicBlock) bool {
    for _, p := range self.Pred {
        if p == bb {
            return true
        }
    }
    return false
}
