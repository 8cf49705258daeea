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

package ssapre

import (
    `testing`

    `github.com/cloudwego/ssapre/analysis`
    `github.com/cloudwego/ssapre/ir`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func mkpass(fn *ir.Func) *_Pass {
    dt := ir.BuildDomTree(fn)
    return newPass(fn, analysis.NewAssumptionCache(), analysis.NewTargetLibraryInfo(), dt, new(Stats), false)
}

func TestSteps_DiamondFlags(t *testing.T) {
    fn := ir.NewFunc("diamond")
    x := fn.NewArg("x", ir.I64)
    y := fn.NewArg("y", ir.I64)

    a := fn.NewBlock()
    b := fn.NewBlock()
    c := fn.NewBlock()
    d := fn.NewBlock()

    cond := a.NewICmp(ir.IntSLT, x, y)
    a.Branch(cond, b, c)
    t1 := b.NewBin(ir.OpAdd, x, y)
    b.Jump(d)
    c.Jump(d)
    t2 := d.NewBin(ir.OpAdd, x, y)
    d.Return(t2)

    p := mkpass(fn)
    p.computeOrders()
    p.collect()
    p.factorInsertion()

    /* one factor for the add, placed at the join */
    require.Len(t, p.blockfs[d.Id], 1)
    fe := p.blockfs[d.Id][0]
    assert.Equal(t, EFactor, fe.Kind)
    assert.Equal(t, []*ir.Block { b, c }, fe.Preds)

    p.rename()

    /* versions: t1 opens 0, the factor takes 1, t2 inherits it */
    assert.Equal(t, 0, p.instve[t1].Ver)
    assert.Equal(t, 1, fe.Ver)
    assert.Equal(t, 1, p.instve[t2].Ver)
    assert.Equal(t, p.instve[t1], fe.Vers[0])
    assert.Equal(t, p.bottom, fe.Vers[1])
    assert.Equal(t, []bool { true, false }, fe.HRU)

    p.downSafety()
    p.willBeAvail()

    /* anticipated below, available once the edge insert lands */
    assert.True(t, fe.DownSafe)
    assert.True(t, fe.CanBeAvail)
    assert.False(t, fe.Later)
    assert.True(t, fe.WillBeAvail())

    p.finalize()

    assert.True(t, p.instve[t1].Save)
    assert.True(t, p.instve[t2].Reload)
    require.Len(t, p.inserts, 1)
    assert.Equal(t, c, p.inserts[0].bb)
    assert.Equal(t, fe, p.inserts[0].fe)
    assert.Equal(t, 1, p.inserts[0].pi)
}

func TestSteps_NotChosenWithoutRedundancy(t *testing.T) {
    fn := ir.NewFunc("later")
    p0 := fn.NewArg("p", ir.I1)
    x := fn.NewArg("x", ir.I64)
    y := fn.NewArg("y", ir.I64)

    a := fn.NewBlock()
    b := fn.NewBlock()
    c := fn.NewBlock()
    j := fn.NewBlock()

    a.Branch(p0, b, c)
    t1 := b.NewBin(ir.OpMul, x, y)
    _ = t1
    b.Jump(j)
    c.Jump(j)
    tt := j.NewBin(ir.OpAdd, x, y)
    j.Return(tt)

    p := mkpass(fn)
    p.computeOrders()
    p.collect()
    p.factorInsertion()
    p.rename()
    p.downSafety()
    p.willBeAvail()

    /* the mul joins at j but nothing below uses it: the factor is not
     * down-safe and must not be chosen */
    require.Len(t, p.blockfs[j.Id], 1)
    fe := p.blockfs[j.Id][0]
    assert.False(t, fe.DownSafe)
    assert.False(t, fe.WillBeAvail())
}
