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
    `github.com/cloudwego/ssapre/ir`
)

// STEP 5: finalize.
//
// One pass in RPO over a map AvailDef: (prototype, version) →
// occurrence. The first occurrence of a version that is not covered
// by a dominating definition installs itself; any later occurrence
// the definition reaches becomes a reload, and the definition it
// reloads from is marked save. Chosen factors install themselves so
// occurrences they cover reload from the φ to be materialized.
// Terminators decide, per inbound edge of every chosen successor
// factor, whether the edge needs a compensating computation.
func (self *_Pass) finalize() {
    for _, bb := range self.rpo {
        self.finalizeBlock(bb)
    }
}

func (self *_Pass) defs(pe *Expr) map[int]*Expr {
    m := self.availdef[pe]
    if m == nil {
        m = make(map[int]*Expr)
        self.availdef[pe] = m
    }
    return m
}

func (self *_Pass) setSave(e *Expr) {
    if !e.Save {
        e.Save = true
        self.st.Saved++
    }
}

func (self *_Pass) finalizeBlock(bb *ir.Block) {
    for _, fe := range self.blockfs[bb.Id] {
        fe.Save = false
        fe.Reload = false
        if fe.WillBeAvail() {
            self.defs(fe.PE)[fe.Ver] = fe
        }
    }

    visit := func(i *ir.Inst) {
        ve := self.instve[i]
        if ve.Inert() {
            return
        }

        ve.Save = false
        ve.Reload = false
        pe := self.vepe[ve]
        ad := self.defs(pe)

        if def := ad[ve.Ver]; def == nil || !self.exprDominates(def, ve) {
            ad[ve.Ver] = ve
        } else if def.IsReal() {
            self.setSave(def)
            ve.Reload = true
            self.st.Reloaded++
        } else {
            /* the dominating definition is a chosen factor, the
             * occurrence will reload from its φ */
            ve.Reload = true
            self.st.Reloaded++
        }
    }
    for _, p := range bb.Phi { visit(p) }
    for _, p := range bb.Ins { visit(p) }

    /* terminator: insert-on-edge decisions for chosen factors */
    for _, s := range bb.Succs() {
        for _, fe := range self.blockfs[s.Id] {
            if !fe.WillBeAvail() {
                continue
            }
            pi := fe.PredIndex(bb)
            if pi < 0 {
                panic("ssapre: factor predecessor list out of sync")
            }
            if o := fe.Vers[pi]; self.needsInsert(fe, pi, o) {
                self.inserts = append(self.inserts, _Insert { bb: bb, fe: fe, pi: pi })
            } else if o.IsReal() {
                if d := self.defs(fe.PE)[o.Ver]; d != nil && d.IsReal() {
                    self.setSave(d)
                }
            }
        }
    }
}

// exprDominates reports whether the definition recorded for a version
// covers the occurrence use. Factors live at the top of their block.
func (self *_Pass) exprDominates(def *Expr, use *Expr) bool {
    ui := self.veinst[use]
    if def.Kind == EFactor {
        return def.Blk == ui.Blk || self.dt.Dominates(def.Blk, ui.Blk)
    }
    return self.dt.InstDominates(self.veinst[def], ui)
}
