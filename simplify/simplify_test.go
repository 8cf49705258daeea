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

package simplify

import (
    `testing`

    `github.com/cloudwego/ssapre/analysis`
    `github.com/cloudwego/ssapre/ir`
    `github.com/stretchr/testify/assert`
)

var (
    vx = &ir.Argument { Ty: ir.I64, Name: "x" }
    vy = &ir.Argument { Ty: ir.I64, Name: "y", Idx: 1 }
)

func c64(v int64) *ir.Const {
    return ir.IntConst(ir.I64, v)
}

func TestSimplify_ConstFold(t *testing.T) {
    q := Query{}
    assert.Equal(t, ir.Value(c64(42)), Binary(ir.OpMul, ir.I64, c64(6), c64(7), q))
    assert.Equal(t, ir.Value(c64(1)), Binary(ir.OpSDiv, ir.I64, c64(7), c64(6), q))
    assert.Equal(t, ir.Value(c64(-2)), Binary(ir.OpSub, ir.I64, c64(5), c64(7), q))
    assert.Equal(t, ir.Value(c64(32)), Binary(ir.OpShl, ir.I64, c64(1), c64(5), q))

    /* division by a constant zero must not fold */
    assert.Nil(t, Binary(ir.OpSDiv, ir.I64, c64(7), c64(0), q))
    assert.Nil(t, Binary(ir.OpURem, ir.I64, c64(7), c64(0), q))
}

func TestSimplify_Identities(t *testing.T) {
    q := Query{}
    assert.Equal(t, ir.Value(vx), Binary(ir.OpAdd, ir.I64, vx, c64(0), q))
    assert.Equal(t, ir.Value(vx), Binary(ir.OpMul, ir.I64, vx, c64(1), q))
    assert.Equal(t, ir.Value(c64(0)), Binary(ir.OpMul, ir.I64, vx, c64(0), q))
    assert.Equal(t, ir.Value(c64(0)), Binary(ir.OpSub, ir.I64, vx, vx, q))
    assert.Equal(t, ir.Value(c64(0)), Binary(ir.OpXor, ir.I64, vx, vx, q))
    assert.Equal(t, ir.Value(vx), Binary(ir.OpAnd, ir.I64, vx, vx, q))
    assert.Equal(t, ir.Value(vx), Binary(ir.OpOr, ir.I64, vx, vx, q))
    assert.Equal(t, ir.Value(vx), Binary(ir.OpShl, ir.I64, vx, c64(0), q))
    assert.Nil(t, Binary(ir.OpAdd, ir.I64, vx, vy, q))
}

func TestSimplify_DivisionGuard(t *testing.T) {
    q := Query{ AC: analysis.NewAssumptionCache() }

    /* x/x only folds when x is provably non-zero */
    assert.Nil(t, Binary(ir.OpSDiv, ir.I64, vx, vx, q))
    q.AC.AssumeNonZero(vx)
    assert.Equal(t, ir.Value(c64(1)), Binary(ir.OpSDiv, ir.I64, vx, vx, q))
    assert.Equal(t, ir.Value(c64(0)), Binary(ir.OpSRem, ir.I64, vx, vx, q))
}

func TestSimplify_Cmp(t *testing.T) {
    q := Query{}
    assert.Equal(t, ir.Value(ir.Bool(true)), Cmp(ir.OpICmp, ir.IntSLT, c64(3), c64(5), q))
    assert.Equal(t, ir.Value(ir.Bool(false)), Cmp(ir.OpICmp, ir.IntUGT, c64(3), c64(5), q))
    assert.Equal(t, ir.Value(ir.Bool(true)), Cmp(ir.OpICmp, ir.IntSLE, vx, vx, q))
    assert.Equal(t, ir.Value(ir.Bool(false)), Cmp(ir.OpICmp, ir.IntNE, vx, vx, q))
    assert.Nil(t, Cmp(ir.OpICmp, ir.IntSLT, vx, vy, q))
}

func TestSimplify_SelectCastGEP(t *testing.T) {
    q := Query{}
    assert.Equal(t, ir.Value(vx), Select(ir.Bool(true), vx, vy, q))
    assert.Equal(t, ir.Value(vy), Select(ir.Bool(false), vx, vy, q))
    assert.Equal(t, ir.Value(vx), Select(vy, vx, vx, q))
    assert.Nil(t, Select(vy, vx, vy, q))

    assert.Equal(t, ir.Value(vx), Cast(ir.OpBitCast, ir.I64, vx, q))
    assert.Equal(t, ir.Value(ir.IntConst(ir.I32, 7)), Cast(ir.OpTrunc, ir.I32, c64(7), q))
    assert.Equal(t, ir.Value(c64(-1)), Cast(ir.OpSExt, ir.I64, ir.IntConst(ir.I8, 255), q))

    g := ir.NewGlobal("g", ir.I64)
    assert.Equal(t, ir.Value(g), GEP(g, []ir.Value { c64(0), c64(0) }, q))
    assert.Nil(t, GEP(g, []ir.Value { c64(1) }, q))
}

func TestSimplify_PureCall(t *testing.T) {
    q := Query{ TLI: analysis.NewTargetLibraryInfo() }
    abs := ir.NewGlobal("abs", ir.I64)
    prt := ir.NewGlobal("printf", ir.I64)

    assert.Equal(t, ir.Value(c64(7)), Call(abs, ir.I64, []ir.Value { c64(-7) }, q))
    assert.Equal(t, ir.Value(c64(7)), Call(abs, ir.I64, []ir.Value { c64(7) }, q))
    assert.Nil(t, Call(abs, ir.I64, []ir.Value { vx }, q))
    assert.Nil(t, Call(prt, ir.I64, []ir.Value { c64(1) }, q))
    assert.Nil(t, Call(abs, ir.I64, []ir.Value { c64(1) }, Query{}))
}
