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

// STEP 1: factor insertion.
//
// A factor is placed for a prototype in two cases:
//   - at every block of the iterated dominance frontier of its
//     occurrence blocks, where versions of the expression may merge
//   - at the block of every φ-node appearing as one of its operands:
//     an operand redefinition at a join creates a new version of the
//     expression even when no occurrence merges there syntactically
func (self *_Pass) factorInsertion() {
    df := ir.DomFrontier(self.fn, self.dt)

    for _, pe := range self.pelist {
        if pe.Kind != EBasic {
            continue
        }

        /* frontier-induced factors */
        for _, bb := range ir.IteratedDomFrontier(df, self.peblocks[pe]) {
            self.addFactor(pe, bb)
        }

        /* operand-φ-induced factors */
        for _, o := range pe.Args {
            if p, ok := o.(*ir.Inst); ok && p.Op == ir.OpPhi {
                self.addFactor(pe, p.Blk)
            }
        }
    }
}

// addFactor creates a factor for pe at bb unless one exists already.
// Operand slots align with the block's predecessor list as captured
// here; they start out ⊥.
func (self *_Pass) addFactor(pe *Expr, bb *ir.Block) *Expr {
    for _, fe := range self.blockfs[bb.Id] {
        if fe.PE == pe {
            return fe
        }
    }

    np := len(bb.Pred)
    fe := &Expr {
        Kind       : EFactor,
        Ver        : -1,
        PE         : pe,
        Ty         : pe.Ty,
        Blk        : bb,
        Preds      : append([]*ir.Block(nil), bb.Pred...),
        Vers       : make([]*Expr, np),
        HRU        : make([]bool, np),
        DownSafe   : true,
        CanBeAvail : true,
        Later      : true,
    }
    for i := range fe.Vers {
        fe.Vers[i] = self.bottom
    }

    self.factors = append(self.factors, fe)
    self.blockfs[bb.Id] = append(self.blockfs[bb.Id], fe)
    return fe
}
