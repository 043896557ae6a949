/*
 * Copyright 2022 CloudWeGo Authors
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

package nestedifcombine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSource = `
func @f(%a, %b, %c) {
entry:
    br %a, m1, shared
m1:
    br %b, m2, shared
m2:
    br %c, target, shared
target:
    call @use(%a)
    ret
shared:
    ret
}
`

func TestOptimize_Default(t *testing.T) {
	res, err := Optimize([]byte(testSource))
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(1), res.Stats.Combined)
	assert.Contains(t, res.Text, "%nested.if.combined = land %a, %b")
	assert.Contains(t, res.Text, "br %nested.if.combined, m2, shared")
}

func TestOptimize_Fixpoint(t *testing.T) {
	res, err := Optimize([]byte(testSource), WithPipeline("fixpoint(nested-if-combine)"), WithVerify(true))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Stats.Combined)
	assert.Equal(t, strings.TrimSpace(`
func @f(%a, %b, %c) {
entry:
    %nested.if.combined = land %a, %b
    %nested.if.combined1 = land %nested.if.combined, %c
    br %nested.if.combined1, target, shared
target:
    call @use(%a)
    ret
shared:
    ret
}`), strings.TrimSpace(res.Text))
}

func TestOptimize_Errors(t *testing.T) {
	_, err := Optimize([]byte("func @f() {\nentry:\n    jmp nowhere\n}\n"))
	se, ok := err.(SyntaxError)
	require.True(t, ok)
	assert.Equal(t, 3, se.Line)
	assert.Panics(t, func() { WithPipeline("fixpoint(") })
	assert.Panics(t, func() { WithMaxRounds(-1) })
}

func TestOptimize_Logger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	_, err := Optimize([]byte(testSource), WithLogger(zap.New(core)))
	require.NoError(t, err)
	found := logs.FilterMessage("found nested ifs").All()
	require.Len(t, found, 1)
	assert.Equal(t, "f", found[0].ContextMap()["func"])
	assert.Equal(t, "br %a, m1, shared", found[0].ContextMap()["outer"])
	assert.Equal(t, "br %b, m2, shared", found[0].ContextMap()["inner"])
}

func TestCombineFunc(t *testing.T) {
	mod, err := ParseModule([]byte(testSource))
	require.NoError(t, err)
	fn := mod.Func("f")
	assert.True(t, CombineFunc(fn))
	assert.True(t, CombineFunc(fn, WithStrict(true)))
	assert.False(t, CombineFunc(fn))
	require.NoError(t, Verify(fn))
}

func TestSetters(t *testing.T) {
	old := SetMaxRounds(3)
	assert.Equal(t, 3, SetMaxRounds(old))
	olds := SetStrict(true)
	assert.True(t, SetStrict(olds))
	oldp := SetPipeline("tdce")
	assert.Equal(t, "tdce", SetPipeline(oldp))
	assert.Panics(t, func() { SetPipeline("nope") })
}
