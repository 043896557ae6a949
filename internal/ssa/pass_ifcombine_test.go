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

    `github.com/davecgh/go-spew/spew`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

const _NestedIfs = `
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    br %b, target, shared
target:
    call @use(%a)
    ret
shared:
    ret
}`

func runIfCombine(t *testing.T, src string, pass IfCombine) (*Func, bool) {
    fn := mustParse(t, src)
    ok := pass.Run(fn, NewAnalysisManager()).Changed()
    require.NoError(t, Verify(fn), fn.String())
    return fn, ok
}

func countBranches(fn *Func) (n int) {
    for _, bb := range fn.Blocks() {
        if _, ok := bb.Term.(*IrCondBr); ok {
            n++
        }
    }
    return
}

func TestIfCombine_Basic(t *testing.T) {
    st := new(Stats)
    fn, ok := runIfCombine(t, _NestedIfs, IfCombine{Stats: st})
    require.True(t, ok)
    require.Equal(t, strings.TrimSpace(`
func @f(%a, %b) {
entry:
    %nested.if.combined = land %a, %b
    br %nested.if.combined, target, shared
target:
    call @use(%a)
    ret
shared:
    ret
}`), fn.String())
    snap := st.Snapshot()
    assert.Equal(t, int64(1), snap.Combined)
    assert.Equal(t, int64(1), snap.Visited)
    assert.Equal(t, int64(1), snap.Stale)
    assert.Equal(t, []*BasicBlock{fn.Root}, fn.Block(2).Pred)
    assert.Equal(t, []*BasicBlock{fn.Root}, fn.Block(3).Pred)
}

func TestIfCombine_NoMatch(t *testing.T) {
    tests := []struct {
        name   string
        src    string
        reason string
    }{
        {
            name   : "call in then block",
            reason : "then-not-trivial",
            src    : `
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    call @g()
    br %b, target, shared
target:
    ret
shared:
    ret
}`,
        },
        {
            name   : "phi in then block",
            reason : "then-not-trivial",
            src    : `
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    %p = phi [%b, entry]
    br %p, target, shared
target:
    ret
shared:
    ret
}`,
        },
        {
            name   : "different else blocks",
            reason : "else-mismatch",
            src    : `
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    br %b, target, other
target:
    ret
other:
    ret
shared:
    ret
}`,
        },
        {
            name   : "return in then block",
            reason : "inner-not-conditional",
            src    : `
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    ret %b
shared:
    ret
}`,
        },
        {
            name   : "switch in then block",
            reason : "inner-not-conditional",
            src    : `
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    switch %b, shared, [1, target]
target:
    ret
shared:
    ret
}`,
        },
        {
            name   : "swapped inner branch",
            reason : "else-mismatch",
            src    : `
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    br %b, shared, target
target:
    ret
shared:
    ret
}`,
        },
        {
            name   : "conflicting phi",
            reason : "phi-conflict",
            src    : `
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    br %b, target, shared
target:
    ret %a
shared:
    %r = phi [%a, entry], [%b, mid]
    ret %r
}`,
        },
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            st := new(Stats)
            src := strings.TrimSpace(tc.src)
            fn, ok := runIfCombine(t, src, IfCombine{Stats: st})
            require.False(t, ok)
            require.Equal(t, src, fn.String())
            require.Zero(t, st.Snapshot().Combined)
            require.NotZero(t, st.Snapshot().Rejected[tc.reason], spew.Sdump(st.Snapshot()))
        })
    }
}

func TestIfCombine_SharedThenBlock(t *testing.T) {
    st := new(Stats)
    src := strings.TrimSpace(`
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    br %b, target, shared
target:
    br %b, mid, other
other:
    ret
shared:
    ret
}`)
    fn, ok := runIfCombine(t, src, IfCombine{Stats: st})
    require.False(t, ok)
    require.Equal(t, src, fn.String())
    require.Equal(t, int64(1), st.Snapshot().Rejected["then-shared"])
}

func TestIfCombine_SelfLoop(t *testing.T) {
    st := new(Stats)
    src := strings.TrimSpace(`
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    br %b, mid, shared
shared:
    ret
}`)
    fn, ok := runIfCombine(t, src, IfCombine{Stats: st})
    require.False(t, ok)
    require.Equal(t, src, fn.String())
    require.Equal(t, int64(2), st.Snapshot().Rejected["self-loop"])
}

func TestIfCombine_EntryBlock(t *testing.T) {
    st := new(Stats)
    src := strings.TrimSpace(`
func @f(%a, %b) {
entry:
    br %b, body, shared
body:
    %c = call @next(%a)
    jmp latch
latch:
    br %a, entry, shared
shared:
    ret
}`)
    fn, ok := runIfCombine(t, src, IfCombine{Stats: st})
    require.False(t, ok)
    require.Equal(t, src, fn.String())
    require.Equal(t, int64(1), st.Snapshot().Rejected["then-is-entry"])
}

func TestIfCombine_Phi(t *testing.T) {
    fn, ok := runIfCombine(t, `
func @f(%a, %b, %x) {
entry:
    br %a, mid, shared
mid:
    br %b, target, shared
target:
    %t = phi [%b, mid]
    ret %t
shared:
    %r = phi [%x, entry], [%x, mid]
    ret %r
}`, IfCombine{})
    require.True(t, ok)
    require.Equal(t, strings.TrimSpace(`
func @f(%a, %b, %x) {
entry:
    %nested.if.combined = land %a, %b
    br %nested.if.combined, target, shared
target:
    %t = phi [%b, entry]
    ret %t
shared:
    %r = phi [%x, entry]
    ret %r
}`), fn.String())
}

func TestIfCombine_SameTargets(t *testing.T) {
    fn, ok := runIfCombine(t, `
func @f(%a, %b) {
entry:
    br %a, mid, shared
mid:
    br %b, shared, shared
shared:
    ret
}`, IfCombine{})
    require.True(t, ok)
    require.Equal(t, 2, fn.NumBlocks())
    require.Equal(t, []*BasicBlock{fn.Root, fn.Root}, fn.Block(2).Pred)
}

func TestIfCombine_Idempotent(t *testing.T) {
    fn, ok := runIfCombine(t, _NestedIfs, IfCombine{})
    require.True(t, ok)
    src := fn.String()
    require.False(t, IfCombine{}.Run(fn, nil).Changed())
    require.Equal(t, src, fn.String())
}

func TestIfCombine_ThreeLevels(t *testing.T) {
    st := new(Stats)
    fn, ok := runIfCombine(t, `
func @f(%a, %b, %c) {
entry:
    br %a, m1, shared
m1:
    br %b, m2, shared
m2:
    br %c, target, shared
target:
    ret %a
shared:
    ret %b
}`, IfCombine{Stats: st})

    /* only two levels are merged per run */
    require.True(t, ok)
    require.Equal(t, 4, fn.NumBlocks())
    require.Equal(t, int64(1), st.Snapshot().Combined)

    /* the second run finishes the chain */
    require.True(t, IfCombine{Stats: st}.Run(fn, nil).Changed())
    require.NoError(t, Verify(fn))
    require.Equal(t, strings.TrimSpace(`
func @f(%a, %b, %c) {
entry:
    %nested.if.combined = land %a, %b
    %nested.if.combined1 = land %nested.if.combined, %c
    br %nested.if.combined1, target, shared
target:
    ret %a
shared:
    ret %b
}`), fn.String())
    require.Equal(t, int64(2), st.Snapshot().Combined)
    require.Equal(t, int64(2), st.Snapshot().Stale)
}

func TestIfCombine_Counter(t *testing.T) {
    const n = 8
    buf := []string { "func @f(%a, %b) {" }

    /* n independent nested branches in a row */
    for i := 0; i < n; i++ {
        buf = append(buf,
            fmt.Sprintf("o%d:", i),
            fmt.Sprintf("    br %%a, m%d, s%d", i, i),
            fmt.Sprintf("m%d:", i),
            fmt.Sprintf("    br %%b, t%d, s%d", i, i),
            fmt.Sprintf("t%d:", i),
            "    call @hit(%a)",
            fmt.Sprintf("    jmp o%d", i + 1),
            fmt.Sprintf("s%d:", i),
            fmt.Sprintf("    jmp o%d", i + 1),
        )
    }

    /* the exit block */
    buf = append(buf, fmt.Sprintf("o%d:", n), "    ret", "}")
    st := new(Stats)
    fn := mustParse(t, strings.Join(buf, "\n"))
    nb, nc := fn.NumBlocks(), countBranches(fn)

    /* every pair is merged by one run */
    require.True(t, IfCombine{Stats: st}.Run(fn, nil).Changed())
    require.NoError(t, Verify(fn))
    require.Equal(t, int64(n), st.Snapshot().Combined)
    require.Equal(t, nb - n, fn.NumBlocks())
    require.Equal(t, nc - n, countBranches(fn))
}

func TestIfCombine_Strict(t *testing.T) {
    src := `
func @f(%a) {
entry:
    br %a, mid, shared
mid:
    br %b, target, shared
target:
    %b = const 1
    ret
shared:
    ret
}`

    /* the predicate is defined after the branch, strict mode refuses it */
    st := new(Stats)
    fn := mustParse(t, src)
    require.False(t, IfCombine{Strict: true, Stats: st}.Run(fn, NewAnalysisManager()).Changed())
    require.Equal(t, int64(1), st.Snapshot().Rejected["predicate-unavailable"])

    /* the eager mode merges anyway */
    fn = mustParse(t, src)
    require.True(t, IfCombine{}.Run(fn, nil).Changed())
}

func TestIfCombine_StrictAvailable(t *testing.T) {
    fn := mustParse(t, `
func @f(%a, %x) {
entry:
    %b = lt %x, %a
    jmp head
head:
    br %a, mid, shared
mid:
    br %b, target, shared
target:
    ret
shared:
    ret
}`)
    require.True(t, IfCombine{Strict: true}.Run(fn, NewAnalysisManager()).Changed())
    require.NoError(t, Verify(fn))
}

func TestIfCombine_StrictAfterMerge(t *testing.T) {
    src := `
func @f(%a, %b, %x) {
entry:
    %d = eq %x, %b
    br %a, mid1, out
mid1:
    br %b, body, out
body:
    %c = lt %x, %a
    br %c, mid2, out
mid2:
    br %d, exit, out
exit:
    ret %x
out:
    ret %a
}`

    /* the second match asks the dominator tree built before the first merge */
    st := new(Stats)
    fn := mustParse(t, src)
    require.True(t, IfCombine{Strict: true, Stats: st}.Run(fn, NewAnalysisManager()).Changed())
    require.NoError(t, Verify(fn))

    /* both nests are merged in the same run */
    snap := st.Snapshot()
    require.Equal(t, int64(2), snap.Combined)
    require.Equal(t, int64(2), snap.Visited)
    require.Equal(t, int64(2), snap.Stale)
    require.Equal(t, int64(0), snap.Rejected["predicate-unavailable"])
    require.Equal(t, 4, fn.NumBlocks())

    /* same behaviour as the unmodified function */
    ref := mustParse(t, src)
    for _, args := range [][]int64 { {0, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1}, {1, 2, 2}, {3, 1, 1} } {
        r0, err := NewEmulator().Call(ref, args...)
        require.NoError(t, err)
        r1, err := NewEmulator().Call(fn, args...)
        require.NoError(t, err)
        require.Equal(t, r0, r1, "%v", args)
    }
}

func TestIfCombine_Totals(t *testing.T) {
    old := Totals()
    _, ok := runIfCombine(t, _NestedIfs, IfCombine{})
    require.True(t, ok)
    require.Equal(t, old.Combined + 1, Totals().Combined)
}
