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
    `strconv`
    `strings`
)

// Func is a function body. Blocks are kept in an arena indexed by their ID,
// the slot of a removed block stays empty so IDs are never reused.
type Func struct {
    Name   string
    Root   *BasicBlock
    Params []*Value
    blocks []*BasicBlock
    values map[string]*Value
    nextv  int
}

func NewFunc(name string) *Func {
    return &Func {
        Name   : name,
        values : make(map[string]*Value),
    }
}

// CreateBlock appends a new empty block, the first block created becomes the
// entry of the function.
func (self *Func) CreateBlock(name string) *BasicBlock {
    bb := &BasicBlock {
        Id   : len(self.blocks),
        Name : name,
    }

    /* the first block is the entry */
    if self.Root == nil {
        self.Root = bb
    }

    /* add to the arena */
    self.blocks = append(self.blocks, bb)
    return bb
}

// RemoveBlock deletes bb from the function. The caller is responsible for
// detaching every edge that refers to it.
func (self *Func) RemoveBlock(bb *BasicBlock) {
    if bb == self.Root {
        panic("ssa: cannot remove the entry block")
    } else if self.Block(bb.Id) != bb {
        panic(fmt.Sprintf("ssa: %s does not belong to function %s", bb, self.Name))
    } else {
        self.blocks[bb.Id] = nil
    }
}

// Block returns the block with the given ID, or nil if it has been removed.
func (self *Func) Block(id int) *BasicBlock {
    if id < 0 || id >= len(self.blocks) {
        return nil
    } else {
        return self.blocks[id]
    }
}

func (self *Func) Live(id int) bool {
    return self.Block(id) != nil
}

// Blocks returns every live block in creation order.
func (self *Func) Blocks() []*BasicBlock {
    ret := make([]*BasicBlock, 0, len(self.blocks))
    for _, bb := range self.blocks {
        if bb != nil {
            ret = append(ret, bb)
        }
    }
    return ret
}

func (self *Func) NumBlocks() (n int) {
    for _, bb := range self.blocks {
        if bb != nil {
            n++
        }
    }
    return
}

func (self *Func) MaxBlock() int {
    return len(self.blocks) - 1
}

// NewValue creates a fresh value. The name is made unique within the function
// by appending a counter, an empty name yields "v<N>".
func (self *Func) NewValue(name string) *Value {
    if name == "" {
        name = "v"
    }

    /* the name is still free */
    if _, ok := self.values[name]; !ok && name != "v" {
        return self.define(name)
    }

    /* find a free suffix */
    for i := 1;; i++ {
        if nm := name + strconv.Itoa(i); self.values[nm] == nil {
            return self.define(nm)
        }
    }
}

// Value looks up a value by its name (without the leading '%').
func (self *Func) Value(name string) *Value {
    return self.values[strings.TrimPrefix(name, "%")]
}

func (self *Func) define(name string) *Value {
    vv := &Value {
        Id   : self.nextv,
        Name : name,
    }

    /* register the value */
    self.nextv++
    self.values[name] = vv
    return vv
}

// Definitions maps every value defined by an instruction to its block,
// function parameters are not included.
func (self *Func) Definitions() map[*Value]*BasicBlock {
    ret := make(map[*Value]*BasicBlock)

    /* scan every block */
    for _, bb := range self.Blocks() {
        for _, v := range bb.Phi {
            ret[v.R] = bb
        }
        for _, v := range bb.Ins {
            if d, ok := v.(IrDefinitions); ok {
                for _, r := range d.Definitions() {
                    ret[r] = bb
                }
            }
        }
    }

    /* all done */
    return ret
}

func (self *Func) isParam(v *Value) bool {
    for _, p := range self.Params {
        if p == v {
            return true
        }
    }
    return false
}

// Module is an ordered list of functions, the unit the textual form describes.
type Module struct {
    Funcs []*Func
}

func (self *Module) Func(name string) *Func {
    for _, fn := range self.Funcs {
        if fn.Name == name {
            return fn
        }
    }
    return nil
}
