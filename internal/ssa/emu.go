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

const (
    _DefaultMaxSteps = 1 << 16
)

// CallHandler implements the functions called by the emulated code.
type CallHandler func(fn string, args []int64) int64

type CallRecord struct {
    Fn   string
    Args []int64
}

// Emulator interprets a function block by block. Every executed call is
// recorded in Trace, which together with the returned values makes up the
// observable behaviour of the function.
type Emulator struct {
    Trace    []CallRecord
    Handler  CallHandler
    MaxSteps int
}

func NewEmulator() *Emulator {
    return &Emulator {
        Handler  : defaultCallHandler,
        MaxSteps : _DefaultMaxSteps,
    }
}

func defaultCallHandler(fn string, args []int64) int64 {
    ret := int64(len(fn))
    for _, v := range args { ret = ret * 31 + v }
    return ret
}

type _EmuFrame struct {
    fn  *Func
    env map[*Value]int64
}

func (self *_EmuFrame) get(v *Value) (int64, error) {
    if r, ok := self.env[v]; ok {
        return r, nil
    } else {
        return 0, fmt.Errorf("ssa: @%s: read of undefined value %s", self.fn.Name, v)
    }
}

func (self *_EmuFrame) args(vv []*Value) ([]int64, error) {
    ret := make([]int64, len(vv))
    for i, v := range vv {
        if r, err := self.get(v); err != nil {
            return nil, err
        } else {
            ret[i] = r
        }
    }
    return ret, nil
}

// Call runs fn with the given arguments and returns its results.
func (self *Emulator) Call(fn *Func, args ...int64) ([]int64, error) {
    var prev *BasicBlock
    var this = fn.Root

    /* check for arguments */
    if len(args) != len(fn.Params) {
        return nil, fmt.Errorf("ssa: @%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
    }

    /* create the frame */
    fp := &_EmuFrame {
        fn  : fn,
        env : make(map[*Value]int64),
    }

    /* bind the parameters */
    for i, p := range fn.Params {
        fp.env[p] = args[i]
    }

    /* execute until return */
    for steps := 0;; steps++ {
        if self.MaxSteps > 0 && steps >= self.MaxSteps {
            return nil, ErrStepLimit
        }

        /* Phi nodes read their operands simultaneously */
        if err := self.phis(fp, prev, this); err != nil {
            return nil, err
        }

        /* execute the body */
        for _, v := range this.Ins {
            if err := self.exec(fp, v); err != nil {
                return nil, err
            }
        }

        /* then the terminator */
        next, ret, err := self.term(fp, this)
        if err != nil || next == nil {
            return ret, err
        }

        /* move to the next block */
        prev, this = this, next
    }
}

func (self *Emulator) phis(fp *_EmuFrame, prev *BasicBlock, bb *BasicBlock) error {
    vals := make([]int64, len(bb.Phi))

    /* read every incoming value first */
    for i, p := range bb.Phi {
        v, ok := p.V[prev]
        if !ok {
            return fmt.Errorf("ssa: @%s: %s has no incoming value from %v", fp.fn.Name, p.R, prev)
        }

        /* read the value */
        r, err := fp.get(v)
        if err != nil {
            return err
        } else {
            vals[i] = r
        }
    }

    /* then assign them */
    for i, p := range bb.Phi {
        fp.env[p.R] = vals[i]
    }

    /* all done */
    return nil
}

func (self *Emulator) exec(fp *_EmuFrame, ins IrNode) error {
    switch p := ins.(type) {
        default: {
            panic("invalid instruction: " + ins.String())
        }

        /* constants */
        case *IrConst: {
            fp.env[p.R] = p.V
        }

        /* binary expressions */
        case *IrBinaryExpr: {
            x, err := fp.get(p.X)
            if err != nil {
                return err
            }
            y, err := fp.get(p.Y)
            if err != nil {
                return err
            }
            fp.env[p.R] = p.Op.Eval(x, y)
        }

        /* external calls */
        case *IrCall: {
            in, err := fp.args(p.In)
            if err != nil {
                return err
            }

            /* record and dispatch the call */
            rv := self.Handler(p.Fn, in)
            self.Trace = append(self.Trace, CallRecord{Fn: p.Fn, Args: in})

            /* store the result if any */
            if p.R != nil {
                fp.env[p.R] = rv
            }
        }
    }
    return nil
}

func (self *Emulator) term(fp *_EmuFrame, bb *BasicBlock) (*BasicBlock, []int64, error) {
    switch p := bb.Term.(type) {
        default: {
            return nil, nil, fmt.Errorf("ssa: @%s: block %s is not terminated", fp.fn.Name, bb)
        }

        /* unconditional jumps */
        case *IrJump: {
            return p.To, nil, nil
        }

        /* conditional branches */
        case *IrCondBr: {
            if v, err := fp.get(p.V); err != nil {
                return nil, nil, err
            } else if v != 0 {
                return p.Then, nil, nil
            } else {
                return p.Else, nil, nil
            }
        }

        /* multi-way branches */
        case *IrSwitch: {
            v, err := fp.get(p.V)
            if err != nil {
                return nil, nil, err
            }
            if to, ok := p.Br[v]; ok {
                return to, nil, nil
            } else {
                return p.Ln, nil, nil
            }
        }

        /* function returns */
        case *IrReturn: {
            rv, err := fp.args(p.R)
            return nil, rv, err
        }
    }
}
