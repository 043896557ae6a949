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
    `sort`
    `strings`
)

type IrSuccessors interface {
    Next() bool
    Block() *BasicBlock
    Value() (int64, bool)
    UpdateBlock(to *BasicBlock)
}

type IrTerminator interface {
    IrNode
    Successors() IrSuccessors
    irterminator()
}

func (*IrJump)   irterminator() {}
func (*IrCondBr) irterminator() {}
func (*IrSwitch) irterminator() {}
func (*IrReturn) irterminator() {}

type _RefSuccessors struct {
    i int
    r []**BasicBlock
}

func (self *_RefSuccessors) Next() bool {
    self.i++
    return self.i < len(self.r)
}

func (self *_RefSuccessors) Block() *BasicBlock {
    return *self.r[self.i]
}

func (self *_RefSuccessors) Value() (int64, bool) {
    return 0, false
}

func (self *_RefSuccessors) UpdateBlock(to *BasicBlock) {
    *self.r[self.i] = to
}

type _SwitchSuccessors struct {
    i  int
    k  []int64
    sw *IrSwitch
}

func (self *_SwitchSuccessors) Next() bool {
    self.i++
    return self.i <= len(self.k)
}

func (self *_SwitchSuccessors) Block() *BasicBlock {
    if self.i == len(self.k) {
        return self.sw.Ln
    } else {
        return self.sw.Br[self.k[self.i]]
    }
}

func (self *_SwitchSuccessors) Value() (int64, bool) {
    if self.i == len(self.k) {
        return 0, false
    } else {
        return self.k[self.i], true
    }
}

func (self *_SwitchSuccessors) UpdateBlock(to *BasicBlock) {
    if self.i == len(self.k) {
        self.sw.Ln = to
    } else {
        self.sw.Br[self.k[self.i]] = to
    }
}

type _EmptySuccessor struct{}
func (_EmptySuccessor) Next()  bool               { return false }
func (_EmptySuccessor) Block() *BasicBlock        { return nil }
func (_EmptySuccessor) Value() (int64, bool)      { return 0, false }
func (_EmptySuccessor) UpdateBlock(_ *BasicBlock) { panic("no successors to update") }

type IrJump struct {
    To *BasicBlock
}

func (self *IrJump) String() string {
    return fmt.Sprintf("jmp %s", self.To)
}

func (self *IrJump) Successors() IrSuccessors {
    return &_RefSuccessors {
        i: -1,
        r: []**BasicBlock { &self.To },
    }
}

// IrCondBr is a two-way conditional branch, Then is taken when V is non-zero.
type IrCondBr struct {
    V    *Value
    Then *BasicBlock
    Else *BasicBlock
}

func (self *IrCondBr) String() string {
    return fmt.Sprintf("br %s, %s, %s", self.V, self.Then, self.Else)
}

func (self *IrCondBr) Usages() []*Value {
    return []*Value { self.V }
}

func (self *IrCondBr) Successors() IrSuccessors {
    return &_RefSuccessors {
        i: -1,
        r: []**BasicBlock { &self.Then, &self.Else },
    }
}

type IrSwitch struct {
    V  *Value
    Ln *BasicBlock
    Br map[int64]*BasicBlock
}

func (self *IrSwitch) keys() []int64 {
    ret := make([]int64, 0, len(self.Br))
    for k := range self.Br { ret = append(ret, k) }
    sort.Slice(ret, func(i int, j int) bool { return ret[i] < ret[j] })
    return ret
}

func (self *IrSwitch) String() string {
    ks := self.keys()
    ret := make([]string, 0, len(ks) + 1)

    /* default branch */
    ret = append(ret, self.Ln.String())

    /* add each case */
    for _, k := range ks {
        ret = append(ret, fmt.Sprintf("[%d, %s]", k, self.Br[k]))
    }

    /* join them together */
    return fmt.Sprintf(
        "switch %s, %s",
        self.V,
        strings.Join(ret, ", "),
    )
}

func (self *IrSwitch) Usages() []*Value {
    return []*Value { self.V }
}

func (self *IrSwitch) Successors() IrSuccessors {
    return &_SwitchSuccessors {
        i  : -1,
        k  : self.keys(),
        sw : self,
    }
}

type IrReturn struct {
    R []*Value
}

func (self *IrReturn) String() string {
    nb := len(self.R)
    ret := make([]string, 0, nb)

    /* bare return */
    if nb == 0 {
        return "ret"
    }

    /* dump values */
    for _, r := range self.R {
        ret = append(ret, r.String())
    }

    /* join them together */
    return "ret " + strings.Join(ret, ", ")
}

func (self *IrReturn) Usages() []*Value {
    return append([]*Value(nil), self.R...)
}

func (self *IrReturn) Successors() IrSuccessors {
    return _EmptySuccessor{}
}
