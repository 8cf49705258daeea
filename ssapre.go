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

// Package ssapre implements partial redundancy elimination directly on
// SSA form, after "A new algorithm for partial redundancy elimination
// based on SSA form" by Chow, Kennedy et al.
//
// The pass versions every pure scalar expression, places synthetic
// φ-for-expression nodes (factors) at joins, runs the down-safety and
// will-be-available data flow problems over the factor graph, and then
// rewrites the function: fully or partially redundant computations are
// replaced by a dominating definition, compensating copies are inserted
// on the edges where the value is missing, and φ-nodes join them. No
// execution path evaluates the expression more often than before.
package ssapre

import (
    `github.com/cloudwego/ssapre/analysis`
    `github.com/cloudwego/ssapre/ir`
    `github.com/cloudwego/ssapre/simplify`
)

// Stats counts the rewrites performed by a pass instance. Counters
// accumulate across Run calls.
type Stats struct {
    Saved       int
    Reloaded    int
    Inserted    int
    Deleted     int
    BlocksAdded int
}

// PreservedAnalyses is the pass's report to its caller: either the
// function was left untouched and every analysis remains valid, or it
// was mutated and none are.
type PreservedAnalyses uint8

const (
    PreservedNone PreservedAnalyses = iota
    PreservedAll
)

// AreAllPreserved reports whether the function was left unchanged.
func (self PreservedAnalyses) AreAllPreserved() bool {
    return self == PreservedAll
}

// SSAPRE is the pass object. The zero value is ready to use; one
// instance may process any number of functions, one at a time, with
// no state carried between them except the statistics.
type SSAPRE struct {
    Debug bool
    Stats Stats
}

type _Insert struct {
    bb *ir.Block
    fe *Expr
    pi int
}

type _Pass struct {
    fn      *ir.Func
    dt      *ir.DominatorTree
    q       simplify.Query
    st      *Stats
    debug   bool
    changed bool
    bottom  *Expr
    numargs int

    rpo    []*ir.Block
    rpoidx map[int]int

    dfs   map[*ir.Inst]int
    sdfs  map[*ir.Inst]int
    front map[int]int

    instve   map[*ir.Inst]*Expr
    veinst   map[*Expr]*ir.Inst
    vepe     map[*Expr]*Expr
    protos   map[string]*Expr
    pelist   []*Expr
    peinsts  map[*Expr][]*ir.Inst
    peblocks map[*Expr][]*ir.Block
    counter  map[*Expr]int

    factors []*Expr
    blockfs map[int][]*Expr

    availdef map[*Expr]map[int]*Expr
    inserts  []_Insert
    killlist []*ir.Inst
    clones   []*ir.Inst
    phiof    map[*Expr]*ir.Inst
}

// Run executes the pass on fn. The dominator tree may be mutated
// (child reordering) and is recomputed internally when critical-edge
// splitting changes the CFG; pass a clone if the original order
// matters to the caller.
func (self *SSAPRE) Run(fn *ir.Func, ac *analysis.AssumptionCache, tli *analysis.TargetLibraryInfo, dt *ir.DominatorTree) PreservedAnalyses {
    if len(fn.Blocks) == 0 {
        return PreservedAll
    }

    /* compensation code lands on edges, so no edge may be critical */
    split := ir.SplitCriticalEdges(fn)
    if self.Stats.BlocksAdded += split; split != 0 {
        dt = ir.BuildDomTree(fn)
    }

    /* fresh per-function state, discarded on return */
    p := newPass(fn, ac, tli, dt, &self.Stats, self.Debug)

    if p.run(); split != 0 || p.changed {
        return PreservedNone
    }
    return PreservedAll
}

func newPass(fn *ir.Func, ac *analysis.AssumptionCache, tli *analysis.TargetLibraryInfo, dt *ir.DominatorTree, st *Stats, debug bool) *_Pass {
    return &_Pass {
        fn      : fn,
        dt      : dt,
        st      : st,
        debug   : debug,
        numargs : len(fn.Args),
        bottom  : &Expr { Kind: EBottom, Ver: -1 },
        q       : simplify.Query { Layout: fn.Layout, TLI: tli, DT: dt, AC: ac },

        rpoidx   : make(map[int]int),
        dfs      : make(map[*ir.Inst]int),
        sdfs     : make(map[*ir.Inst]int),
        front    : make(map[int]int),
        instve   : make(map[*ir.Inst]*Expr),
        veinst   : make(map[*Expr]*ir.Inst),
        vepe     : make(map[*Expr]*Expr),
        protos   : make(map[string]*Expr),
        peinsts  : make(map[*Expr][]*ir.Inst),
        peblocks : make(map[*Expr][]*ir.Block),
        counter  : make(map[*Expr]int),
        blockfs  : make(map[int][]*Expr),
        availdef : make(map[*Expr]map[int]*Expr),
        phiof    : make(map[*Expr]*ir.Inst),
    }
}

func (self *_Pass) run() {
    self.computeOrders()
    self.collect()

    /* STEP 1: factor insertion */
    self.factorInsertion()
    self.dump("factor insertion")

    /* STEP 2: renaming, which also seeds the down-safety bits */
    self.rename()
    self.dump("renaming")

    /* STEP 3: down-safety propagation */
    self.downSafety()
    self.dump("down-safety")

    /* STEP 4: can-be-avail, later, will-be-avail */
    self.willBeAvail()
    self.dump("will-be-avail")

    /* STEP 5: save / reload / insert decisions */
    self.finalize()
    self.dump("finalize")

    /* STEP 6: code motion */
    self.codeMotion()
    self.dump("code motion")
}

func (self *_Pass) fresh(pe *Expr) int {
    v := self.counter[pe]
    self.counter[pe] = v + 1
    return v
}

// collect builds the prototype and versioned occurrence for every
// non-terminator instruction. Prototypes group occurrences by the
// canonical key; each instruction keeps a private versioned copy.
func (self *_Pass) collect() {
    for _, bb := range self.rpo {
        visit := func(i *ir.Inst) {
            ve := self.makeExpr(i)
            pe, ok := self.protos[protoKey(ve)]

            /* first occurrence defines the prototype */
            if !ok {
                pe = self.cloneProto(ve)
                self.protos[protoKey(ve)] = pe
                self.pelist = append(self.pelist, pe)
            }

            self.instve[i] = ve
            self.veinst[ve] = i
            self.vepe[ve] = pe
            self.peinsts[pe] = append(self.peinsts[pe], i)

            /* record the defining block once */
            bs := self.peblocks[pe]
            if len(bs) == 0 || bs[len(bs) - 1] != bb {
                self.peblocks[pe] = append(bs, bb)
            }
        }
        for _, p := range bb.Phi { visit(p) }
        for _, p := range bb.Ins { visit(p) }
    }
}
