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
    `strings`
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/davecgh/go-spew/spew`
    `github.com/stretchr/testify/require`
)

var _RandomOps = []string {
    "add", "sub", "mul", "and", "or", "xor", "land", "eq", "ne", "lt", "le", "gt", "ge",
}

var _RandomParams = []string {
    "%a", "%b", "%c", "%d",
}

type _RandomFunc struct {
    fk   *gofakeit.Faker
    nb   int
    buf  []string
    nest map[int]int
}

func (self *_RandomFunc) emit(format string, args ...interface{}) {
    self.buf = append(self.buf, fmt.Sprintf(format, args...))
}

func (self *_RandomFunc) target(lo int) int {
    return self.fk.IntRange(lo, self.nb - 1)
}

func (self *_RandomFunc) body(i int) []string {
    vals := append([]string(nil), _RandomParams...)
    for n := self.fk.IntRange(0, 3); n > 0; n-- {
        rv := fmt.Sprintf("%%v%d_%d", i, n)
        x := self.fk.RandomString(vals)
        y := self.fk.RandomString(vals)

        /* random instructions */
        switch self.fk.IntRange(0, 3) {
            case 0  : self.emit("    %s = const %d", rv, self.fk.IntRange(-2, 2))
            case 1  : self.emit("    %s = call @h%d(%s)", rv, n, x)
            case 2  : self.emit("    call @log(%s, %s)", x, y); continue
            default : self.emit("    %s = %s %s, %s", rv, self.fk.RandomString(_RandomOps), x, y)
        }

        /* the result may be used by later instructions */
        vals = append(vals, rv)
    }
    return vals
}

func (self *_RandomFunc) block(i int) {
    self.emit("b%d:", i)

    /* the then block of a planted nested branch */
    if k, ok := self.nest[i]; ok {
        self.emit("    br %s, b%d, b%d", self.fk.RandomString(_RandomParams), i + 1, k)
        return
    }

    /* the last block returns */
    vals := self.body(i)
    if i == self.nb - 1 {
        self.emit("    ret %s", self.fk.RandomString(vals))
        return
    }

    /* every block falls through to the next one, so everything is reachable */
    switch p := self.fk.RandomString(vals); self.fk.IntRange(0, 4) {
        case 0: {
            self.emit("    jmp b%d", i + 1)
        }
        case 1: {
            self.emit("    br %s, b%d, b%d", p, self.target(i + 1), i + 1)
        }
        case 2: {
            self.emit("    switch %s, b%d, [0, b%d], [1, b%d]", p, i + 1, self.target(i + 1), self.target(i + 1))
        }
        default: {
            if i + 2 >= self.nb {
                self.emit("    br %s, b%d, b%d", p, i + 1, self.target(i + 1))
            } else {
                k := self.target(i + 2)
                self.nest[i + 1] = k
                self.emit("    br %s, b%d, b%d", p, i + 1, k)
            }
        }
    }
}

func randomFunc(seed int64) string {
    fk := gofakeit.New(seed)
    rf := &_RandomFunc {
        fk   : fk,
        nb   : fk.IntRange(2, 24),
        nest : make(map[int]int),
    }

    /* generate every block */
    rf.emit("func @g(%s) {", strings.Join(_RandomParams, ", "))
    for i := 0; i < rf.nb; i++ { rf.block(i) }

    /* all done */
    rf.emit("}")
    return strings.Join(rf.buf, "\n")
}

func emulate(t *testing.T, fn *Func, args []int64) ([]int64, []CallRecord) {
    emu := NewEmulator()
    rv, err := emu.Call(fn, args...)
    require.NoError(t, err)
    return rv, emu.Trace
}

func TestIfCombine_Random(t *testing.T) {
    for seed := int64(1); seed <= 200; seed++ {
        src := randomFunc(seed)
        ref := mustParse(t, src)
        fn := mustParse(t, src)
        require.NoError(t, Verify(ref), src)

        /* run the pass once */
        st := new(Stats)
        nb, nc := fn.NumBlocks(), countBranches(fn)
        ok := IfCombine{Stats: st}.Run(fn, nil).Changed()
        nr := int(st.Snapshot().Combined)

        /* one block and one branch less per merge */
        require.Equal(t, ok, nr != 0)
        require.Equal(t, nb - nr, fn.NumBlocks(), src)
        require.Equal(t, nc - nr, countBranches(fn), src)
        require.NoError(t, Verify(fn), "%s\n\n%s", src, fn)

        /* the observable behaviour must not change */
        fk := gofakeit.New(seed)
        for i := 0; i < 16; i++ {
            args := make([]int64, len(_RandomParams))
            for j := range args { args[j] = int64(fk.IntRange(-1, 1)) }
            r0, c0 := emulate(t, ref, args)
            r1, c1 := emulate(t, fn, args)
            require.Equal(t, r0, r1, "%s\n\n%s\n\n%s", src, fn, spew.Sdump(args))
            require.Equal(t, c0, c1, "%s\n\n%s\n\n%s", src, fn, spew.Sdump(args))
        }

        /* repeating the pass eventually stops changing anything */
        pass := IfCombine{}
        for n := 0; pass.Run(fn, nil).Changed(); n++ {
            require.Less(t, n, nb, src)
        }

        /* and the fixed point is stable */
        out := fn.String()
        require.False(t, pass.Run(fn, nil).Changed())
        require.Equal(t, out, fn.String())
    }
}
