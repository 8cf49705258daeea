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

// STEP 4: will-be-available.
//
// CanBeAvail(F) falls when F is not down-safe and misses a definition
// on some inbound edge: realizing it would require an insertion that
// might execute uselessly. The reset propagates forward by punching
// the dead factor out of its consumers' operand vectors.
//
// Later(F) falls when some inbound edge already carries a real
// computation: the value exists no matter what, so realization must
// not be postponed past F. WillBeAvail = CanBeAvail ∧ ¬Later.
func (self *_Pass) willBeAvail() {
    self.computeCanBeAvail()
    self.computeLater()
    self.demandOperands()
}

func (self *_Pass) hasBottom(fe *Expr) bool {
    for _, v := range fe.Vers {
        if v == self.bottom {
            return true
        }
    }
    return false
}

func (self *_Pass) computeCanBeAvail() {
    for _, fe := range self.factors {
        if !fe.DownSafe && fe.CanBeAvail && self.hasBottom(fe) {
            self.resetCanBeAvail(fe)
        }
    }
}

func (self *_Pass) resetCanBeAvail(g *Expr) {
    g.CanBeAvail = false
    for _, fe := range self.factors {
        for i, v := range fe.Vers {
            if v != g {
                continue
            }
            if !fe.HRU[i] {
                fe.Vers[i] = self.bottom
                if !fe.DownSafe && fe.CanBeAvail {
                    self.resetCanBeAvail(fe)
                }
            }
        }
    }
}

func (self *_Pass) computeLater() {
    for _, fe := range self.factors {
        fe.Later = fe.CanBeAvail
    }
    for _, fe := range self.factors {
        if fe.Later {
            for i, v := range fe.Vers {
                if fe.HRU[i] && v != self.bottom {
                    self.resetLater(fe)
                    break
                }
            }
        }
    }
}

func (self *_Pass) resetLater(g *Expr) {
    g.Later = false
    for _, fe := range self.factors {
        for _, v := range fe.Vers {
            if v == g && fe.Later {
                self.resetLater(fe)
                break
            }
        }
    }
}

// demandOperands downgrades any chosen factor whose pending edge
// insertions could not be materialized because an expression operand
// does not reach the edge. Downgrading may starve other factors, so
// the scan repeats until stable.
func (self *_Pass) demandOperands() {
    for again := true; again; {
        again = false
        for _, fe := range self.factors {
            if !fe.WillBeAvail() {
                continue
            }
            for i, v := range fe.Vers {
                if !self.needsInsert(fe, i, v) {
                    continue
                }
                if !self.operandsDominate(fe.PE, fe.Preds[i]) {
                    self.resetCanBeAvail(fe)
                    again = true
                    break
                }
            }
        }
    }
}

// needsInsert reports whether realizing fe requires a computation on
// the inbound edge of slot i: the slot is ⊥, or it carries a factor
// that was not chosen and contributes no real computation.
func (self *_Pass) needsInsert(fe *Expr, i int, v *Expr) bool {
    if v == self.bottom {
        return true
    }
    return !fe.HRU[i] && v.Kind == EFactor && !v.WillBeAvail()
}

func (self *_Pass) operandsDominate(pe *Expr, bb *ir.Block) bool {
    for _, o := range pe.Args {
        if p, ok := o.(*ir.Inst); ok {
            if !self.dt.InstDominates(p, bb.Term) {
                return false
            }
        }
    }
    return true
}
