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
)

// BasicBlockIter walks the blocks reachable from the entry in post-order.
type BasicBlockIter struct {
    g *Func
    b *BasicBlock
    s *lane.Stack
    v map[int]struct{}
}

func newBasicBlockIter(fn *Func) *BasicBlockIter {
    return &BasicBlockIter {
        g: fn,
        s: stacknew(fn.Root),
        v: map[int]struct{}{ fn.Root.Id: {} },
    }
}

func (self *BasicBlockIter) Next() bool {
    var tail bool
    var this *BasicBlock

    /* scan until the stack is empty */
    for !self.s.Empty() {
        tail = true
        this = self.s.Head().(*BasicBlock)

        /* push the first unvisited successor */
        for _, p := range this.Successors() {
            if _, ok := self.v[p.Id]; !ok {
                tail = false
                self.v[p.Id] = struct{}{}
                self.s.Push(p)
                break
            }
        }

        /* all the successors are visited, pop the current node */
        if tail {
            self.b = self.s.Pop().(*BasicBlock)
            return true
        }
    }

    /* clear the basic block pointer to indicate no more blocks */
    self.b = nil
    return false
}

func (self *BasicBlockIter) Block() *BasicBlock {
    return self.b
}

func (self *BasicBlockIter) ForEach(action func(bb *BasicBlock)) {
    for self.Next() {
        action(self.b)
    }
}

func (self *BasicBlockIter) Slice() []*BasicBlock {
    ret := make([]*BasicBlock, 0, self.g.NumBlocks())
    self.ForEach(func(bb *BasicBlock) { ret = append(ret, bb) })
    return ret
}

func (self *BasicBlockIter) Reversed() []*BasicBlock {
    ret := self.Slice()
    blockreverse(ret)
    return ret
}

func (self *Func) PostOrder() *BasicBlockIter {
    return newBasicBlockIter(self)
}

func (self *Func) ReversePostOrder() []*BasicBlock {
    return newBasicBlockIter(self).Reversed()
}
