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

type Value struct {
    Id   int
    Name string
}

func (self *Value) String() string {
    return "%" + self.Name
}

type IrNode interface {
    fmt.Stringer
    irnode()
}

func (*IrPhi)        irnode() {}
func (*IrConst)      irnode() {}
func (*IrBinaryExpr) irnode() {}
func (*IrCall)       irnode() {}
func (*IrJump)       irnode() {}
func (*IrCondBr)     irnode() {}
func (*IrSwitch)     irnode() {}
func (*IrReturn)     irnode() {}

type IrUsages interface {
    IrNode
    Usages() []*Value
}

type IrDefinitions interface {
    IrNode
    Definitions() []*Value
}

// IrImpure marks instructions with observable side effects, they must never
// be removed or speculated even if their results are unused.
type IrImpure interface {
    IrNode
    irimpure()
}

func (*IrCall) irimpure() {}

type IrPhi struct {
    R *Value
    V map[*BasicBlock]*Value
}

func (self *IrPhi) String() string {
    nb := len(self.V)
    ret := make([]string, 0, nb)
    phi := make([]*BasicBlock, 0, nb)

    /* add each path */
    for bb := range self.V {
        phi = append(phi, bb)
    }

    /* sort by basic block ID */
    sort.Slice(phi, func(i int, j int) bool {
        return phi[i].Id < phi[j].Id
    })

    /* dump as string */
    for _, bb := range phi {
        ret = append(ret, fmt.Sprintf("[%s, %s]", self.V[bb], bb))
    }

    /* join them together */
    return fmt.Sprintf(
        "%s = phi %s",
        self.R,
        strings.Join(ret, ", "),
    )
}

func (self *IrPhi) Usages() (r []*Value) {
    r = make([]*Value, 0, len(self.V))
    for _, v := range self.V { r = append(r, v) }
    return
}

func (self *IrPhi) Definitions() []*Value {
    return []*Value { self.R }
}

type IrConst struct {
    R *Value
    V int64
}

func (self *IrConst) String() string {
    return fmt.Sprintf("%s = const %d", self.R, self.V)
}

func (self *IrConst) Definitions() []*Value {
    return []*Value { self.R }
}

type IrBinaryOp uint8

const (
    IrOpAdd IrBinaryOp = iota
    IrOpSub
    IrOpMul
    IrOpAnd
    IrOpOr
    IrOpXor
    IrOpLand
    IrCmpEq
    IrCmpNe
    IrCmpLt
    IrCmpLe
    IrCmpGt
    IrCmpGe
)

var _BinaryOpNames = [...]string {
    IrOpAdd  : "add",
    IrOpSub  : "sub",
    IrOpMul  : "mul",
    IrOpAnd  : "and",
    IrOpOr   : "or",
    IrOpXor  : "xor",
    IrOpLand : "land",
    IrCmpEq  : "eq",
    IrCmpNe  : "ne",
    IrCmpLt  : "lt",
    IrCmpLe  : "le",
    IrCmpGt  : "gt",
    IrCmpGe  : "ge",
}

func (self IrBinaryOp) String() string {
    if int(self) < len(_BinaryOpNames) {
        return _BinaryOpNames[self]
    } else {
        panic("unreachable")
    }
}

// Eval computes the operator over two integers. Comparisons and the logical
// conjunction produce 0 or 1, and the conjunction always evaluates both sides.
func (self IrBinaryOp) Eval(x int64, y int64) int64 {
    switch self {
        case IrOpAdd  : return x + y
        case IrOpSub  : return x - y
        case IrOpMul  : return x * y
        case IrOpAnd  : return x & y
        case IrOpOr   : return x | y
        case IrOpXor  : return x ^ y
        case IrOpLand : return b2i(x != 0 && y != 0)
        case IrCmpEq  : return b2i(x == y)
        case IrCmpNe  : return b2i(x != y)
        case IrCmpLt  : return b2i(x < y)
        case IrCmpLe  : return b2i(x <= y)
        case IrCmpGt  : return b2i(x > y)
        case IrCmpGe  : return b2i(x >= y)
        default       : panic("unreachable")
    }
}

func lookupBinaryOp(name string) (IrBinaryOp, bool) {
    for i, v := range _BinaryOpNames {
        if v == name {
            return IrBinaryOp(i), true
        }
    }
    return 0, false
}

type IrBinaryExpr struct {
    R  *Value
    X  *Value
    Y  *Value
    Op IrBinaryOp
}

func (self *IrBinaryExpr) String() string {
    return fmt.Sprintf("%s = %s %s, %s", self.R, self.Op, self.X, self.Y)
}

func (self *IrBinaryExpr) Usages() []*Value {
    return []*Value { self.X, self.Y }
}

func (self *IrBinaryExpr) Definitions() []*Value {
    return []*Value { self.R }
}

type IrCall struct {
    R  *Value
    Fn string
    In []*Value
}

func (self *IrCall) String() string {
    in := make([]string, 0, len(self.In))

    /* dump args */
    for _, r := range self.In {
        in = append(in, r.String())
    }

    /* calls without results */
    if self.R == nil {
        return fmt.Sprintf("call @%s(%s)", self.Fn, strings.Join(in, ", "))
    } else {
        return fmt.Sprintf("%s = call @%s(%s)", self.R, self.Fn, strings.Join(in, ", "))
    }
}

func (self *IrCall) Usages() []*Value {
    return append([]*Value(nil), self.In...)
}

func (self *IrCall) Definitions() []*Value {
    if self.R == nil {
        return nil
    } else {
        return []*Value { self.R }
    }
}
