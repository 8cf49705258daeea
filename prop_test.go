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

    `github.com/brianvoe/gofakeit/v6`
    `github.com/bytedance/gopkg/lang/fastrand`
    `github.com/cloudwego/ssapre/analysis`
    `github.com/cloudwego/ssapre/ir`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

var genops = []ir.Op {
    ir.OpAdd,
    ir.OpSub,
    ir.OpMul,
    ir.OpAnd,
    ir.OpOr,
    ir.OpXor,
}

var genpreds = []ir.CmpPred {
    ir.IntEQ,
    ir.IntNE,
    ir.IntSLT,
    ir.IntSLE,
    ir.IntUGT,
    ir.IntUGE,
}

// _Gen builds random branchy integer functions. Expression operands
// draw only from arguments and constants, so every emitted value
// dominates everything after it, and an accumulator threads the
// results through φ-nodes at joins so they are not trivially dead.
type _Gen struct {
    fk    *gofakeit.Faker
    fn    *ir.Func
    pool  []ir.Value
    seen  [][3]interface{}
}

func newGen(seed int64) *_Gen {
    g := &_Gen { fk: gofakeit.New(seed) }
    g.fn = ir.NewFunc("prop")
    x := g.fn.NewArg("x", ir.I64)
    y := g.fn.NewArg("y", ir.I64)
    z := g.fn.NewArg("z", ir.I64)
    g.pool = []ir.Value {
        x, y, z,
        ir.IntConst(ir.I64, 1),
        ir.IntConst(ir.I64, int64(g.fk.Number(2, 9))),
    }
    return g
}

func (self *_Gen) pick() ir.Value {
    return self.pool[self.fk.Number(0, len(self.pool) - 1)]
}

// expr emits one binop; half the time it re-emits an expression seen
// before, commuted now and then, to seed redundancies.
func (self *_Gen) expr(bb *ir.Block) *ir.Inst {
    if len(self.seen) != 0 && self.fk.Bool() {
        e := self.seen[self.fk.Number(0, len(self.seen) - 1)]
        op, a, b := e[0].(ir.Op), e[1].(ir.Value), e[2].(ir.Value)
        if op.IsCommutative() && self.fk.Bool() {
            a, b = b, a
        }
        return bb.NewBin(op, a, b)
    }

    op := genops[self.fk.Number(0, len(genops) - 1)]
    a, b := self.pick(), self.pick()
    self.seen = append(self.seen, [3]interface{} { op, a, b })
    return bb.NewBin(op, a, b)
}

// seq emits a few expressions into bb, folding them into acc.
func (self *_Gen) seq(bb *ir.Block, acc ir.Value) ir.Value {
    for n := self.fk.Number(1, 3); n > 0; n-- {
        e := self.expr(bb)
        if self.fk.Bool() {
            acc = bb.NewBin(ir.OpXor, acc, e)
        }
    }
    return acc
}

// region emits a sequence optionally followed by an if-else whose
// accumulator halves merge through a φ at the join.
func (self *_Gen) region(bb *ir.Block, acc ir.Value, depth int) (*ir.Block, ir.Value) {
    acc = self.seq(bb, acc)
    if depth >= 2 || !self.fk.Bool() {
        return bb, acc
    }

    pred := genpreds[self.fk.Number(0, len(genpreds) - 1)]
    cond := bb.NewICmp(pred, self.pick(), self.pick())

    then := self.fn.NewBlock()
    els := self.fn.NewBlock()
    join := self.fn.NewBlock()
    bb.Branch(cond, then, els)

    tb, ta := self.region(then, acc, depth + 1)
    eb, ea := self.region(els, acc, depth + 1)
    tb.Jump(join)
    eb.Jump(join)

    phi := join.NewPhi(ir.I64, ta, ea)
    return self.region(join, phi, depth + 1)
}

func (self *_Gen) build() *ir.Func {
    bb := self.fn.NewBlock()
    last, acc := self.region(bb, self.fn.Args[0], 0)
    last.Return(acc)
    return self.fn
}

func randArgs() []int64 {
    return []int64 {
        fastrand.Int63n(1 << 20) - (1 << 19),
        fastrand.Int63n(1 << 20) - (1 << 19),
        fastrand.Int63n(1 << 20) - (1 << 19),
    }
}

func TestSSAPRE_Properties(t *testing.T) {
    const rounds = 64
    const samples = 16

    for seed := int64(0); seed < rounds; seed++ {
        fn := newGen(seed).build()
        require.NoError(t, ir.Verify(fn), "seed %d: generator broke SSA:\n%s", seed, fn)

        /* sample the original behaviour */
        args := make([][]int64, samples)
        before := make([]ir.ExecResult, samples)
        for i := range args {
            args[i] = randArgs()
            r, err := ir.Exec(fn, args[i], 100000)
            require.NoError(t, err, "seed %d", seed)
            before[i] = r
        }

        p := new(SSAPRE)
        p.Run(fn, analysis.NewAssumptionCache(), analysis.NewTargetLibraryInfo(), ir.BuildDomTree(fn))

        /* SSA preservation */
        require.NoError(t, ir.Verify(fn), "seed %d: pass broke SSA:\n%s", seed, fn)

        /* observational equivalence and no path lengthening */
        for i := range args {
            r, err := ir.Exec(fn, args[i], 100000)
            require.NoError(t, err, "seed %d", seed)
            assert.Equal(t, before[i].Ret, r.Ret, "seed %d args %v:\n%s", seed, args[i], fn)
            assert.LessOrEqual(t, r.Evals, before[i].Evals, "seed %d args %v", seed, args[i])
        }

        /* idempotence: a second run finds nothing */
        snap := fn.String()
        pa := new(SSAPRE).Run(fn, analysis.NewAssumptionCache(), analysis.NewTargetLibraryInfo(), ir.BuildDomTree(fn))
        assert.True(t, pa.AreAllPreserved(), "seed %d", seed)
        assert.Equal(t, snap, fn.String(), "seed %d", seed)
    }
}
