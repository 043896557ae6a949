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
    `unicode`
)

type _Line struct {
    ln  int
    src string
}

type _Parser struct {
    ln   int
    src  string
    fn   *Func
    bb   *BasicBlock
    defs map[*Value]bool
    uses map[*Value]_Line
    body map[*BasicBlock][]_Line
}

func tokenize(src string) []string {
    return strings.FieldsFunc(src, func(r rune) bool {
        return unicode.IsSpace(r) || strings.ContainsRune(",()[]", r)
    })
}

func stripComment(src string) string {
    if i := strings.IndexByte(src, ';'); i < 0 {
        return strings.TrimSpace(src)
    } else {
        return strings.TrimSpace(src[:i])
    }
}

// ParseModule parses the textual form of zero or more functions.
func ParseModule(src string) (*Module, error) {
    var hdr *_Line
    var body []_Line
    ret := new(Module)

    /* scan line by line */
    for i, line := range strings.Split(src, "\n") {
        ln := i + 1
        line = stripComment(line)

        /* skip empty lines */
        if line == "" {
            continue
        }

        /* outside of any function, expect a function header */
        if hdr == nil {
            if !strings.HasPrefix(line, "func ") {
                return nil, esyntax(ln, line, "expected function header")
            } else {
                hdr, body = &_Line{ln: ln, src: line}, nil
                continue
            }
        }

        /* not the end of the function yet */
        if line != "}" {
            body = append(body, _Line{ln: ln, src: line})
            continue
        }

        /* build the function */
        fn, err := newParser().parse(*hdr, body)
        if err != nil {
            return nil, err
        }

        /* check for duplicated names */
        if ret.Func(fn.Name) != nil {
            return nil, esyntax(hdr.ln, hdr.src, "duplicated function @" + fn.Name)
        }

        /* add to the module */
        hdr = nil
        ret.Funcs = append(ret.Funcs, fn)
    }

    /* the last function must be terminated */
    if hdr != nil {
        return nil, esyntax(hdr.ln, hdr.src, "unterminated function")
    } else {
        return ret, nil
    }
}

// ParseFunc parses the textual form of exactly one function.
func ParseFunc(src string) (*Func, error) {
    mod, err := ParseModule(src)
    if err != nil {
        return nil, err
    }

    /* must be exactly one function */
    if len(mod.Funcs) != 1 {
        return nil, esyntax(1, "", fmt.Sprintf("expected exactly 1 function, got %d", len(mod.Funcs)))
    } else {
        return mod.Funcs[0], nil
    }
}

func newParser() *_Parser {
    return &_Parser {
        defs: make(map[*Value]bool),
        uses: make(map[*Value]_Line),
        body: make(map[*BasicBlock][]_Line),
    }
}

func (self *_Parser) errorf(format string, args ...interface{}) SyntaxError {
    return esyntax(self.ln, self.src, fmt.Sprintf(format, args...))
}

func (self *_Parser) parse(hdr _Line, body []_Line) (*Func, error) {
    var err error
    self.ln, self.src = hdr.ln, hdr.src

    /* parse the function header */
    if err = self.header(tokenize(hdr.src)); err != nil {
        return nil, err
    }

    /* create all the blocks first, so that forward references resolve */
    if err = self.blocks(body); err != nil {
        return nil, err
    }

    /* parse every block */
    for _, bb := range self.fn.Blocks() {
        if err = self.block(bb); err != nil {
            return nil, err
        }
    }

    /* every used value must be defined somewhere */
    for v, at := range self.uses {
        if !self.defs[v] {
            return nil, esyntax(at.ln, at.src, "undefined value " + v.String())
        }
    }

    /* all done */
    return self.fn, nil
}

func (self *_Parser) header(tok []string) error {
    if len(tok) < 3 || tok[len(tok) - 1] != "{" {
        return self.errorf("malformed function header")
    }

    /* function name */
    if !strings.HasPrefix(tok[1], "@") || len(tok[1]) == 1 {
        return self.errorf("invalid function name: %s", tok[1])
    }

    /* create the function */
    self.fn = NewFunc(tok[1][1:])
    tok = tok[2:len(tok) - 1]

    /* define the parameters */
    for _, v := range tok {
        if p, err := self.def(v); err != nil {
            return err
        } else {
            self.fn.Params = append(self.fn.Params, p)
        }
    }

    /* all done */
    return nil
}

func (self *_Parser) blocks(body []_Line) error {
    var bb *BasicBlock
    names := make(map[string]bool)

    /* scan for labels */
    for _, line := range body {
        self.ln, self.src = line.ln, line.src

        /* instructions go to the current block */
        if !strings.HasSuffix(line.src, ":") {
            if bb == nil {
                return self.errorf("instruction outside of a block")
            } else {
                self.body[bb] = append(self.body[bb], line)
                continue
            }
        }

        /* validate the label */
        name := strings.TrimSuffix(line.src, ":")
        if !isLabel(name) {
            return self.errorf("invalid label: %s", name)
        }

        /* labels must be unique */
        if names[name] {
            return self.errorf("duplicated label: %s", name)
        }

        /* create the block */
        names[name] = true
        bb = self.fn.CreateBlock(name)
    }

    /* must have at least one block */
    if bb == nil {
        return self.errorf("function @%s has no blocks", self.fn.Name)
    } else {
        return nil
    }
}

func isLabel(name string) bool {
    if name == "" || strings.ContainsAny(name, "%@,()[]{}:") {
        return false
    }
    for _, r := range name {
        if unicode.IsSpace(r) {
            return false
        }
    }
    return true
}

func (self *_Parser) block(bb *BasicBlock) error {
    self.bb = bb

    /* parse every instruction */
    for _, line := range self.body[bb] {
        self.ln, self.src = line.ln, line.src

        /* nothing may follow the terminator */
        if bb.Term != nil {
            return self.errorf("instruction after terminator")
        }

        /* parse the instruction */
        if err := self.instr(tokenize(line.src)); err != nil {
            return err
        }
    }

    /* every block must be terminated */
    if bb.Term == nil {
        return esyntax(self.ln, self.src, fmt.Sprintf("block %s is not terminated", bb))
    } else {
        return nil
    }
}

func (self *_Parser) label(name string) (*BasicBlock, error) {
    for _, bb := range self.fn.Blocks() {
        if bb.Name == name {
            return bb, nil
        }
    }
    return nil, self.errorf("undefined label: %s", name)
}

func (self *_Parser) value(tok string) (*Value, error) {
    if !strings.HasPrefix(tok, "%") || len(tok) == 1 {
        return nil, self.errorf("invalid value: %s", tok)
    }

    /* reuse the existing value */
    if v := self.fn.Value(tok); v != nil {
        return v, nil
    }

    /* create a new one, it must be defined later */
    v := self.fn.define(tok[1:])
    self.uses[v] = _Line{ln: self.ln, src: self.src}
    return v, nil
}

func (self *_Parser) values(tok []string) ([]*Value, error) {
    ret := make([]*Value, 0, len(tok))
    for _, v := range tok {
        if r, err := self.value(v); err != nil {
            return nil, err
        } else {
            ret = append(ret, r)
        }
    }
    return ret, nil
}

func (self *_Parser) def(tok string) (*Value, error) {
    v, err := self.value(tok)
    if err != nil {
        return nil, err
    }

    /* SSA values are defined exactly once */
    if self.defs[v] {
        return nil, self.errorf("redefinition of %s", tok)
    }

    /* mark as defined */
    self.defs[v] = true
    return v, nil
}

func (self *_Parser) instr(tok []string) error {
    if len(tok) == 0 {
        return self.errorf("empty instruction")
    }

    /* check for terminators and void calls */
    switch tok[0] {
        case "jmp"    : return self.jump(tok)
        case "br"     : return self.branch(tok)
        case "switch" : return self.switch_(tok)
        case "ret"    : return self.ret(tok)
        case "call"   : return self.call(nil, tok)
    }

    /* must be a definition */
    if !strings.HasPrefix(tok[0], "%") || len(tok) < 3 || tok[1] != "=" {
        return self.errorf("unknown instruction: %s", tok[0])
    }

    /* define the result */
    rv, err := self.def(tok[0])
    if err != nil {
        return err
    }

    /* check for opcode */
    switch tok[2] {
        case "const" : return self.const_(rv, tok[3:])
        case "phi"   : return self.phi(rv, tok[3:])
        case "call"  : return self.call(rv, tok[2:])
        default      : return self.binary(rv, tok[2], tok[3:])
    }
}

func (self *_Parser) const_(rv *Value, tok []string) error {
    if len(tok) != 1 {
        return self.errorf("const expects exactly 1 operand")
    }

    /* parse the integer */
    iv, err := strconv.ParseInt(tok[0], 0, 64)
    if err != nil {
        return self.errorf("invalid integer: %s", tok[0])
    }

    /* add the instruction */
    self.bb.Ins = append(self.bb.Ins, &IrConst{R: rv, V: iv})
    return nil
}

func (self *_Parser) binary(rv *Value, op string, tok []string) error {
    var err error
    var ok bool
    var ins IrBinaryExpr

    /* lookup the operator */
    if ins.Op, ok = lookupBinaryOp(op); !ok {
        return self.errorf("unknown operator: %s", op)
    }

    /* binary operators take exactly 2 operands */
    if len(tok) != 2 {
        return self.errorf("%s expects exactly 2 operands", op)
    }

    /* parse the operands */
    if ins.X, err = self.value(tok[0]); err != nil { return err }
    if ins.Y, err = self.value(tok[1]); err != nil { return err }

    /* add the instruction */
    ins.R = rv
    self.bb.Ins = append(self.bb.Ins, &ins)
    return nil
}

func (self *_Parser) phi(rv *Value, tok []string) error {
    if len(self.bb.Ins) != 0 {
        return self.errorf("phi after non-phi instructions")
    }

    /* must be pairs of value and label */
    if len(tok) == 0 || len(tok) % 2 != 0 {
        return self.errorf("phi expects [value, label] pairs")
    }

    /* create the Phi node */
    phi := &IrPhi {
        R: rv,
        V: make(map[*BasicBlock]*Value, len(tok) / 2),
    }

    /* parse each incoming value */
    for i := 0; i < len(tok); i += 2 {
        v, err := self.value(tok[i])
        if err != nil {
            return err
        }

        /* resolve the incoming block */
        bb, err := self.label(tok[i + 1])
        if err != nil {
            return err
        }

        /* each block only once */
        if _, ok := phi.V[bb]; ok {
            return self.errorf("duplicated phi incoming block: %s", bb)
        } else {
            phi.V[bb] = v
        }
    }

    /* add the Phi node */
    self.bb.Phi = append(self.bb.Phi, phi)
    return nil
}

func (self *_Parser) call(rv *Value, tok []string) error {
    if len(tok) < 2 || !strings.HasPrefix(tok[1], "@") || len(tok[1]) == 1 {
        return self.errorf("call expects a function name")
    }

    /* parse the arguments */
    in, err := self.values(tok[2:])
    if err != nil {
        return err
    }

    /* add the instruction */
    self.bb.Ins = append(self.bb.Ins, &IrCall {
        R  : rv,
        Fn : tok[1][1:],
        In : in,
    })

    /* all done */
    return nil
}

func (self *_Parser) jump(tok []string) error {
    if len(tok) != 2 {
        return self.errorf("jmp expects exactly 1 label")
    }

    /* resolve the target */
    to, err := self.label(tok[1])
    if err != nil {
        return err
    }

    /* terminate the block */
    self.bb.termJump(to)
    return nil
}

func (self *_Parser) branch(tok []string) error {
    if len(tok) != 4 {
        return self.errorf("br expects a value and 2 labels")
    }

    /* parse the predicate */
    v, err := self.value(tok[1])
    if err != nil {
        return err
    }

    /* resolve the then target */
    t, err := self.label(tok[2])
    if err != nil {
        return err
    }

    /* resolve the else target */
    f, err := self.label(tok[3])
    if err != nil {
        return err
    }

    /* terminate the block */
    self.bb.termCondition(v, t, f)
    return nil
}

func (self *_Parser) switch_(tok []string) error {
    if len(tok) < 3 || len(tok) % 2 != 1 {
        return self.errorf("switch expects a value, a default label and [value, label] pairs")
    }

    /* parse the selector */
    v, err := self.value(tok[1])
    if err != nil {
        return err
    }

    /* resolve the default target */
    ln, err := self.label(tok[2])
    if err != nil {
        return err
    }

    /* parse every case */
    br := make(map[int64]*BasicBlock)
    for i := 3; i < len(tok); i += 2 {
        iv, err := strconv.ParseInt(tok[i], 0, 64)
        if err != nil {
            return self.errorf("invalid integer: %s", tok[i])
        }

        /* resolve the case target */
        bb, err := self.label(tok[i + 1])
        if err != nil {
            return err
        }

        /* case values must be unique */
        if _, ok := br[iv]; ok {
            return self.errorf("duplicated switch case: %d", iv)
        } else {
            br[iv] = bb
        }
    }

    /* terminate the block */
    self.bb.termSwitch(v, ln, br)
    return nil
}

func (self *_Parser) ret(tok []string) error {
    rv, err := self.values(tok[1:])
    if err != nil {
        return err
    }

    /* terminate the block */
    self.bb.termReturn(rv)
    return nil
}
