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

func runpass(t *testing.T, fn *ir.Func) (*SSAPRE, PreservedAnalyses) {
    t.Helper()
    p := new(SSAPRE)
    pa := p.Run(fn, analysis.NewAssumptionCache(), analysis.NewTargetLibraryInfo(), ir.BuildDomTree(fn))
    require.NoError(t, ir.Verify(fn), "pass broke SSA form:\n%s", fn)
    return p, pa
}

func TestSSAPRE_ClassicDiamond(t *testing.T) {
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

    before := evalboth(t, fn, []int64 { 1, 2 }, []int64 { 5, 3 })
    p, pa := runpass(t, fn)
    after := evalboth(t, fn, []int64 { 1, 2 }, []int64 { 5, 3 })

    assert.False(t, pa.AreAllPreserved())
    assert.Equal(t, Stats { Saved: 2, Reloaded: 1, Inserted: 1, Deleted: 1 }, p.Stats)

    /* t2 is gone, its uses flow through a φ joining t1 and a clone in c */
    assert.Nil(t, t2.Blk)
    require.Len(t, d.Phi, 1)
    phi := d.Phi[0]
    assert.Equal(t, phi, d.Term.Args[0])
    require.Len(t, c.Ins, 1)
    assert.Equal(t, ir.OpAdd, c.Ins[0].Op)
    assert.Equal(t, ir.Value(t1), phi.Incoming(b))
    assert.Equal(t, ir.Value(c.Ins[0]), phi.Incoming(c))

    /* same results, no path evaluates more */
    for i := range before {
        assert.Equal(t, before[i].Ret, after[i].Ret)
        assert.LessOrEqual(t, after[i].Evals, before[i].Evals)
    }
}

func TestSSAPRE_FullyRedundant(t *testing.T) {
    fn := ir.NewFunc("full")
    x := fn.NewArg("x", ir.I64)
    y := fn.NewArg("y", ir.I64)

    a := fn.NewBlock()
    b := fn.NewBlock()

    t1 := a.NewBin(ir.OpAdd, x, y)
    a.Jump(b)
    t2 := b.NewBin(ir.OpAdd, x, y)
    b.Return(t2)

    p, pa := runpass(t, fn)

    assert.False(t, pa.AreAllPreserved())
    assert.Equal(t, Stats { Saved: 1, Reloaded: 1, Deleted: 1 }, p.Stats)
    assert.Nil(t, t2.Blk)
    assert.Equal(t, ir.Value(t1), b.Term.Args[0])
    assert.Empty(t, b.Phi)
}

func TestSSAPRE_NotDownSafe(t *testing.T) {
    fn := ir.NewFunc("nods")
    p0 := fn.NewArg("p", ir.I1)
    x := fn.NewArg("x", ir.I64)
    y := fn.NewArg("y", ir.I64)

    a := fn.NewBlock()
    b := fn.NewBlock()
    c := fn.NewBlock()

    a.Branch(p0, b, c)
    t1 := b.NewBin(ir.OpAdd, x, y)
    b.Return(t1)
    c.Return(x)

    before := fn.String()
    p, pa := runpass(t, fn)

    assert.True(t, pa.AreAllPreserved())
    assert.Equal(t, Stats{}, p.Stats)
    assert.Equal(t, before, fn.String())
}

func TestSSAPRE_OperandPhi(t *testing.T) {
    fn := ir.NewFunc("opphi")
    p0 := fn.NewArg("p", ir.I1)
    x := fn.NewArg("x", ir.I64)
    y := fn.NewArg("y", ir.I64)

    a := fn.NewBlock()
    b := fn.NewBlock()
    c := fn.NewBlock()
    j := fn.NewBlock()

    a.Branch(p0, b, c)
    x1 := b.NewBin(ir.OpAdd, x, ir.IntConst(ir.I64, 1))
    b.Jump(j)
    x2 := c.NewBin(ir.OpAdd, x, ir.IntConst(ir.I64, 2))
    c.Jump(j)
    x3 := j.NewPhi(ir.I64, x1, x2)
    tt := j.NewBin(ir.OpAdd, x3, y)
    j.Return(tt)

    before := fn.String()
    p, pa := runpass(t, fn)

    /* the operand-φ factor is placed but never chosen, nothing moves */
    assert.True(t, pa.AreAllPreserved())
    assert.Equal(t, Stats{}, p.Stats)
    assert.Equal(t, before, fn.String())
}

func TestSSAPRE_CommutativeCanon(t *testing.T) {
    fn := ir.NewFunc("comm")
    x := fn.NewArg("x", ir.I64)
    y := fn.NewArg("y", ir.I64)

    a := fn.NewBlock()
    t1 := a.NewBin(ir.OpAdd, x, y)
    t2 := a.NewBin(ir.OpAdd, y, x)
    a.Return(t2)

    p, pa := runpass(t, fn)

    assert.False(t, pa.AreAllPreserved())
    assert.Equal(t, 1, p.Stats.Reloaded)
    assert.Equal(t, 1, p.Stats.Deleted)
    assert.Nil(t, t2.Blk)
    assert.Equal(t, ir.Value(t1), a.Term.Args[0])
}

func TestSSAPRE_CompareSwap(t *testing.T) {
    fn := ir.NewFunc("cmpswap")
    x := fn.NewArg("x", ir.I64)
    y := fn.NewArg("y", ir.I64)

    a := fn.NewBlock()
    t1 := a.NewICmp(ir.IntSLT, x, y)
    t2 := a.NewICmp(ir.IntSGT, y, x)
    s1 := a.NewSelect(t1, x, y)
    s2 := a.NewSelect(t2, y, x)
    r := a.NewBin(ir.OpAdd, s1, s2)
    a.Return(r)

    p, pa := runpass(t, fn)

    assert.False(t, pa.AreAllPreserved())
    assert.Equal(t, 1, p.Stats.Reloaded)
    assert.Nil(t, t2.Blk)
    assert.Equal(t, ir.Value(t1), s2.Args[0])
}

func TestSSAPRE_LoopInvariant(t *testing.T) {
    fn := ir.NewFunc("loop")
    x := fn.NewArg("x", ir.I64)
    y := fn.NewArg("y", ir.I64)

    a := fn.NewBlock()
    h := fn.NewBlock()
    e := fn.NewBlock()

    a.Jump(h)
    tt := h.NewBin(ir.OpAdd, x, y)
    cond := h.NewICmp(ir.IntSLT, tt, x)
    h.Branch(cond, h, e)
    e.Return(tt)

    r0, err := ir.Exec(fn, []int64 { 5, 3 }, 1000)
    require.NoError(t, err)

    p, pa := runpass(t, fn)

    /* the invariant add is computed in the preheader and joined by a
     * φ at the loop header; the backedge was critical and got split */
    assert.False(t, pa.AreAllPreserved())
    assert.Equal(t, Stats { Saved: 1, Reloaded: 1, Inserted: 1, Deleted: 1, BlocksAdded: 1 }, p.Stats)
    assert.Nil(t, tt.Blk)
    require.Len(t, a.Ins, 1)
    assert.Equal(t, ir.OpAdd, a.Ins[0].Op)
    require.Len(t, h.Phi, 1)

    r1, err := ir.Exec(fn, []int64 { 5, 3 }, 1000)
    require.NoError(t, err)
    assert.Equal(t, r0.Ret, r1.Ret)
    assert.LessOrEqual(t, r1.Evals, r0.Evals)
}

func TestSSAPRE_Idempotent(t *testing.T) {
    mk := func() (*ir.Func, *ir.Block) {
        fn := ir.NewFunc("diamond")
        x := fn.NewArg("x", ir.I64)
        y := fn.NewArg("y", ir.I64)
        a, b, c, d := fn.NewBlock(), fn.NewBlock(), fn.NewBlock(), fn.NewBlock()
        cond := a.NewICmp(ir.IntSLT, x, y)
        a.Branch(cond, b, c)
        t1 := b.NewBin(ir.OpAdd, x, y)
        _ = t1
        b.Jump(d)
        c.Jump(d)
        t2 := d.NewBin(ir.OpAdd, x, y)
        d.Return(t2)
        return fn, d
    }

    fn, _ := mk()
    _, pa := runpass(t, fn)
    require.False(t, pa.AreAllPreserved())

    snap := fn.String()
    _, pa = runpass(t, fn)
    assert.True(t, pa.AreAllPreserved())
    assert.Equal(t, snap, fn.String())
}

func TestSSAPRE_UnknownAndIgnored(t *testing.T) {
    fn := ir.NewFunc("inert")
    x := fn.NewArg("x", ir.I64)
    g := ir.NewGlobal("callee", ir.I64)

    a := fn.NewBlock()
    b := fn.NewBlock()

    /* x+0 simplifies to x, calls and loads are opaque */
    t1 := a.NewBin(ir.OpAdd, x, ir.IntConst(ir.I64, 0))
    c1 := a.NewCall(g, ir.I64, x)
    a.Jump(b)
    t2 := b.NewBin(ir.OpAdd, x, ir.IntConst(ir.I64, 0))
    c2 := b.NewCall(g, ir.I64, x)
    l1 := b.NewLoad(ir.I64, ir.NewGlobal("cell", ir.I64))
    r := b.NewBin(ir.OpAdd, c1, c2)
    r2 := b.NewBin(ir.OpAdd, r, t1)
    r3 := b.NewBin(ir.OpAdd, r2, t2)
    r4 := b.NewBin(ir.OpAdd, r3, l1)
    b.Return(r4)

    p, pa := runpass(t, fn)

    /* identical folded or opaque occurrences must not be unified */
    assert.True(t, pa.AreAllPreserved())
    assert.Equal(t, Stats{}, p.Stats)
    assert.NotNil(t, t1.Blk)
    assert.NotNil(t, t2.Blk)
    assert.NotNil(t, c1.Blk)
    assert.NotNil(t, c2.Blk)
}

func evalboth(t *testing.T, fn *ir.Func, in ...[]int64) []ir.ExecResult {
    t.Helper()
    ret := make([]ir.ExecResult, 0, len(in))
    for _, args := range in {
        r, err := ir.Exec(fn, args, 10000)
        require.NoError(t, err)
        ret = append(ret, r)
    }
    return ret
}
