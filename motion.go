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

// STEP 6: code motion.
//
// The function is finally rewritten: chosen factors get a φ-node at
// their block top, recorded edge insertions clone the expression
// template into the predecessor, and a last stack walk in RPO
// redirects every reload to its surviving definition and erases what
// is left without uses. φ operands come from the per-predecessor
// factor slots as updated at each terminator visit, and φ-nodes that
// end up unused are pruned again, so a function with nothing to
// eliminate comes out untouched.
func (self *_Pass) codeMotion() {
    self.materializePhis()
    self.insertOnEdges()
    self.motionWalk()
    self.eraseKilled()
    self.fillPhis()
    self.pruneDead()
}

func (self *_Pass) materializePhis() {
    for _, fe := range self.factors {
        if fe.WillBeAvail() {
            self.phiof[fe] = fe.Blk.NewIncompletePhi(fe.PE.Ty)
        }
    }
}

// cloneTemplate re-creates the prototype's computation at the end of
// bb, unpacking the comparison predicate and restoring the GEP result
// type from the element type the expression is keyed on.
func (self *_Pass) cloneTemplate(pe *Expr, bb *ir.Block) *ir.Inst {
    op := ir.Op(pe.Op)
    pred := ir.CmpPred(0)
    if pe.Op > 0xff {
        op = ir.Op(pe.Op >> 8)
        pred = ir.CmpPred(pe.Op & 0xff)
    }

    ty := pe.Ty
    elem := (*ir.Type)(nil)
    if op == ir.OpGetElementPtr {
        elem = pe.Ty
        ty = ir.Pointer(elem)
    }
    return bb.NewComputation(op, pred, ty, elem, append([]ir.Value(nil), pe.Args...))
}

func (self *_Pass) insertOnEdges() {
    for _, ins := range self.inserts {
        pe := ins.fe.PE
        if pe.Kind != EBasic {
            panic("ssapre: edge insertion of a non-basic expression")
        }

        /* clone the template just before the terminator */
        p := self.cloneTemplate(pe, ins.bb)

        /* the clone is a real, saved occurrence with a version of its
         * own; registering it lets the final walk treat it like any
         * other definition */
        ve := &Expr { Kind: EBasic, Op: pe.Op, Ver: self.fresh(pe), Ty: pe.Ty, Args: p.Args }
        ve.Save = true

        self.instve[p] = ve
        self.veinst[ve] = p
        self.vepe[ve] = pe
        self.sdfs[p] = self.sdfs[ins.bb.Term]
        self.clones = append(self.clones, p)

        ins.fe.Vers[ins.pi] = ve
        ins.fe.HRU[ins.pi] = true
    }
}

func (self *_Pass) motionWalk() {
    stacks := make(_VerStacks)

    for _, bb := range self.rpo {
        fs := self.front[bb.Id]
        stacks.backtrace(fs)

        for _, fe := range self.blockfs[bb.Id] {
            stacks.push(fe.PE, fs, fe)
        }

        visit := func(i *ir.Inst) {
            ve := self.instve[i]
            if ve == nil || ve.Inert() {
                return
            }

            pe := self.vepe[ve]
            sd := self.sdfs[i]
            stacks.backtrace(sd)

            switch {
                case ve.Save: {
                    /* a surviving definition, leave it in place */
                    stacks.push(pe, sd, ve)
                }
                case ve.Reload: {
                    top := stacks.top(pe)
                    if top == nil {
                        panic("ssapre: reload with no live definition")
                    }
                    if top.Ver != ve.Ver {
                        panic("ssapre: reload does not match the live version")
                    }

                    /* resolve the definition to an IR value */
                    var repl ir.Value
                    if top.Kind == EFactor {
                        phi := self.phiof[top]
                        if phi == nil {
                            panic("ssapre: reload from an unmaterialized factor")
                        }
                        repl = phi
                    } else {
                        if !top.Save {
                            panic("ssapre: reload from an unsaved definition")
                        }
                        repl = self.veinst[top]
                    }

                    /* redirect the uses and retire the instruction */
                    self.fn.ReplaceAllUses(i, repl)
                    for _, fe := range self.factors {
                        for j, v := range fe.Vers {
                            if v == ve {
                                fe.Vers[j] = top
                            }
                        }
                    }
                    self.killlist = append(self.killlist, i)
                    self.st.Deleted++
                    self.changed = true
                }
                default: {
                    /* neither save nor reload: erase if genuinely dead,
                     * otherwise it simply stays put */
                    if self.fn.NumUses(i) == 0 && !self.factorUses(ve) {
                        self.killlist = append(self.killlist, i)
                        self.st.Deleted++
                        self.changed = true
                    } else {
                        stacks.push(pe, sd, ve)
                    }
                }
            }
        }
        for _, p := range bb.Phi { visit(p) }
        for _, p := range bb.Ins { visit(p) }

        /* terminator: snapshot the per-predecessor stack tops into the
         * successor factor slots, the φ fill reads them afterwards */
        for _, s := range bb.Succs() {
            for _, fe := range self.blockfs[s.Id] {
                pi := fe.PredIndex(bb)
                if pi < 0 {
                    panic("ssapre: factor predecessor list out of sync")
                }
                if top := stacks.top(fe.PE); top == nil {
                    fe.Vers[pi] = self.bottom
                } else {
                    fe.Vers[pi] = top
                }
            }
        }
    }
}

// factorUses reports whether the occurrence feeds a chosen factor: a
// definition may have no IR uses yet still flow into a φ about to be
// materialized.
func (self *_Pass) factorUses(ve *Expr) bool {
    for _, fe := range self.factors {
        if !fe.WillBeAvail() {
            continue
        }
        for _, v := range fe.Vers {
            if v == ve {
                return true
            }
        }
    }
    return false
}

func (self *_Pass) eraseKilled() {
    for _, i := range self.killlist {
        self.fn.Erase(i)
    }
}

func (self *_Pass) fillPhis() {
    for fe, phi := range self.phiof {
        for i, v := range fe.Vers {
            switch {
                case v == self.bottom: {
                    panic("ssapre: chosen factor with an uncovered edge")
                }
                case v.Kind == EFactor: {
                    p := self.phiof[v]
                    if p == nil {
                        panic("ssapre: factor operand was not materialized")
                    }
                    phi.Args[i] = p
                }
                default: {
                    p := self.veinst[v]
                    if p == nil || p.Blk == nil {
                        panic("ssapre: factor operand was erased")
                    }
                    phi.Args[i] = p
                }
            }
        }
    }
}

// pruneDead removes materialized φ-nodes, inserted clones and saved
// definitions nothing ended up using. A chosen factor can feed only a
// deferred factor that is never realized; its φ and the compensating
// computations behind it must then vanish, or a path would evaluate
// the expression more often than before. A saved definition whose
// reloads had no users of their own is dead as well. Iterates because
// φs, clones and definitions feed each other.
func (self *_Pass) pruneDead() {
    for again := true; again; {
        again = false
        for _, pe := range self.pelist {
            for _, p := range self.peinsts[pe] {
                if p.Blk != nil && self.instve[p].Save && self.fn.NumUses(p) == 0 {
                    self.fn.Erase(p)
                    self.st.Deleted++
                    self.changed = true
                    again = true
                }
            }
        }
        for _, phi := range self.phiof {
            if phi.Blk != nil && self.fn.NumUses(phi) == 0 {
                self.fn.Erase(phi)
                again = true
            }
        }
        for _, p := range self.clones {
            if p.Blk != nil && self.fn.NumUses(p) == 0 {
                self.fn.Erase(p)
                again = true
            }
        }
    }

    /* only surviving insertions count, and any survivor is a change */
    for _, p := range self.clones {
        if p.Blk != nil {
            self.st.Saved++
            self.st.Inserted++
            self.changed = true
        }
    }
    for _, phi := range self.phiof {
        if phi.Blk != nil {
            self.changed = true
        }
    }
}
