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
    `strings`
    `testing`

    `github.com/stretchr/testify/require`
)

func mustParse(t *testing.T, src string) *Func {
    fn, err := ParseFunc(src)
    require.NoError(t, err)
    return fn
}

func TestParser_RoundTrip(t *testing.T) {
    src := strings.TrimSpace(`
func @f(%a, %b) {
entry:
    %c = lt %a, %b
    %k = const -42
    br %c, mid, shared
mid:
    switch %a, shared, [1, target], [2, shared]
target:
    %r = call @use(%a, %k)
    call @log()
    ret %r
shared:
    %p = phi [%a, entry], [%b, mid]
    ret
}`)
    fn := mustParse(t, src)
    require.Equal(t, src, fn.String())
    require.Equal(t, 4, fn.NumBlocks())
    require.Equal(t, "entry", fn.Root.Name)
    require.Len(t, fn.Params, 2)
    require.Len(t, fn.Block(3).Pred, 3)
}

func TestParser_Module(t *testing.T) {
    src := `
; two functions
func @f(%a) {
entry:
    ret %a      ; identity
}

func @g() {
entry:
    %x = const 0x10
    ret %x
}
`
    mod, err := ParseModule(src)
    require.NoError(t, err)
    require.Len(t, mod.Funcs, 2)
    require.NotNil(t, mod.Func("g"))
    require.Nil(t, mod.Func("h"))
    require.Equal(t, "func @f(%a) {\nentry:\n    ret %a\n}\n\nfunc @g() {\nentry:\n    %x = const 16\n    ret %x\n}\n", mod.String())
}

func TestParser_Errors(t *testing.T) {
    tests := []struct {
        name   string
        src    string
        line   int
        reason string
    }{
        {
            name   : "missing header",
            src    : "entry:\n    ret\n",
            line   : 1,
            reason : "expected function header",
        },
        {
            name   : "unterminated function",
            src    : "func @f() {\nentry:\n    ret\n",
            line   : 1,
            reason : "unterminated function",
        },
        {
            name   : "undefined value",
            src    : "func @f() {\nentry:\n    ret %x\n}\n",
            line   : 3,
            reason : "undefined value %x",
        },
        {
            name   : "undefined label",
            src    : "func @f() {\nentry:\n    jmp nowhere\n}\n",
            line   : 3,
            reason : "undefined label: nowhere",
        },
        {
            name   : "redefinition",
            src    : "func @f(%a) {\nentry:\n    %a = const 1\n    ret %a\n}\n",
            line   : 3,
            reason : "redefinition of %a",
        },
        {
            name   : "duplicated label",
            src    : "func @f() {\nentry:\n    ret\nentry:\n    ret\n}\n",
            line   : 4,
            reason : "duplicated label: entry",
        },
        {
            name   : "instruction after terminator",
            src    : "func @f() {\nentry:\n    ret\n    ret\n}\n",
            line   : 4,
            reason : "instruction after terminator",
        },
        {
            name   : "unterminated block",
            src    : "func @f() {\nentry:\n    %x = const 1\n}\n",
            line   : 3,
            reason : "block entry is not terminated",
        },
        {
            name   : "phi after instructions",
            src    : "func @f(%a) {\nentry:\n    %x = const 1\n    %y = phi [%a, entry]\n    ret\n}\n",
            line   : 4,
            reason : "phi after non-phi instructions",
        },
        {
            name   : "unknown operator",
            src    : "func @f(%a) {\nentry:\n    %x = shl %a, %a\n    ret\n}\n",
            line   : 3,
            reason : "unknown operator: shl",
        },
        {
            name   : "duplicated function",
            src    : "func @f() {\nentry:\n    ret\n}\nfunc @f() {\nentry:\n    ret\n}\n",
            line   : 5,
            reason : "duplicated function @f",
        },
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            _, err := ParseModule(tc.src)
            require.Error(t, err)
            se, ok := err.(SyntaxError)
            require.True(t, ok, "unexpected error type: %T", err)
            require.Equal(t, tc.line, se.Line)
            require.Equal(t, tc.reason, se.Reason)
        })
    }
}

func TestFunc_NewValue(t *testing.T) {
    fn := NewFunc("f")
    require.Equal(t, "x", fn.NewValue("x").Name)
    require.Equal(t, "x1", fn.NewValue("x").Name)
    require.Equal(t, "x2", fn.NewValue("x").Name)
    require.Equal(t, "v1", fn.NewValue("").Name)
    require.Equal(t, "v2", fn.NewValue("").Name)
    require.Equal(t, "x1", fn.Value("%x1").Name)
}

func TestFunc_RemoveBlock(t *testing.T) {
    fn := NewFunc("f")
    bb := fn.CreateBlock("")
    dd := fn.CreateBlock("dead")
    require.Equal(t, "bb_0", bb.String())
    require.Panics(t, func() { fn.RemoveBlock(bb) })
    fn.RemoveBlock(dd)
    require.False(t, fn.Live(dd.Id))
    require.Equal(t, 1, fn.NumBlocks())
    require.Equal(t, 1, fn.MaxBlock())
    require.Panics(t, func() { fn.RemoveBlock(dd) })
}
