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

type _StackEnt struct {
    sdfs int
    e    *Expr
}

type _VerStacks map[*Expr][]_StackEnt

// backtrace pops every entry stamped deeper than sdfs: moving to an
// instruction with a smaller SDFS means those entries' dominator
// subtrees have been left behind.
func (self _VerStacks) backtrace(sdfs int) {
    for pe, st := range self {
        n := len(st)
        for n != 0 && st[n - 1].sdfs > sdfs {
            n--
        }
        if n != len(st) {
            self[pe] = st[:n]
        }
    }
}

func (self _VerStacks) push(pe *Expr, sdfs int, e *Expr) {
    self[pe] = append(self[pe], _StackEnt { sdfs, e })
}

// top returns the live entry for pe, or nil: an empty stack reads as
// ⊥ everywhere in the pass.
func (self _VerStacks) top(pe *Expr) *Expr {
    if st := self[pe]; len(st) != 0 {
        return st[len(st) - 1].e
    }
    return nil
}

// STEP 2: renaming.
//
// Blocks are visited in CFG RPO with one version stack per prototype.
// Factors take a fresh version at their block and push at the block
// front; a real occurrence inherits the version on top of its stack,
// or opens a fresh one when no definition is live. Terminators copy
// the stack tops into the operand slots of successor factors, which
// also seeds HasRealUse, and exits clear DownSafe on every factor
// still live there: a value live at exit is not anticipated beyond.
func (self *_Pass) rename() {
    stacks := make(_VerStacks)

    for _, bb := range self.rpo {
        fs := self.front[bb.Id]
        stacks.backtrace(fs)

        /* factor occurrences live at the block front */
        for _, fe := range self.blockfs[bb.Id] {
            fe.Ver = self.fresh(fe.PE)
            stacks.push(fe.PE, fs, fe)
        }

        /* real occurrences in program order */
        visit := func(i *ir.Inst) {
            ve := self.instve[i]
            if ve.Inert() {
                return
            }

            pe := self.vepe[ve]
            sd := self.sdfs[i]
            stacks.backtrace(sd)

            if top := stacks.top(pe); top != nil {
                ve.Ver = top.Ver
            } else {
                ve.Ver = self.fresh(pe)
            }
            stacks.push(pe, sd, ve)
        }
        for _, p := range bb.Phi { visit(p) }
        for _, p := range bb.Ins { visit(p) }

        /* terminator: fill successor factor operands from stack tops */
        succs := bb.Succs()
        for _, s := range succs {
            for _, fe := range self.blockfs[s.Id] {
                pi := fe.PredIndex(bb)
                if pi < 0 {
                    panic("ssapre: factor predecessor list out of sync")
                }
                if top := stacks.top(fe.PE); top == nil {
                    fe.Vers[pi] = self.bottom
                    fe.HRU[pi] = false
                } else {
                    fe.Vers[pi] = top
                    fe.HRU[pi] = top.IsReal()
                }
            }
        }

        /* function exit: whatever is live here has no consumer below */
        if len(succs) == 0 {
            for _, st := range stacks {
                if n := len(st); n != 0 && st[n - 1].e.Kind == EFactor {
                    st[n - 1].e.DownSafe = false
                }
            }
        }
    }
}
