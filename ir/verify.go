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

package ir

import (
    `fmt`
)

// Verify checks the SSA well-formedness of fn: every block is
// terminated, φ operand vectors align with predecessor lists, and
// every use is dominated by its definition. It reports the first
// violation found, or nil.
func Verify(fn *Func) error {
    dt := BuildDomTree(fn)

    /* reachability set, unreachable blocks are not checked */
    reach := make(map[int]struct{})
    for _, bb := range ReversePostOrder(fn) {
        reach[bb.Id] = struct{}{}
    }

    for _, bb := range fn.Blocks {
        if _, ok := reach[bb.Id]; !ok {
            continue
        }
        if bb.Term == nil {
            return fmt.Errorf("ir: bb_%d is not terminated", bb.Id)
        }

        /* φ-nodes: operand per predecessor, defs dominate the inbound edge */
        for _, p := range bb.Phi {
            if len(p.Args) != len(bb.Pred) {
                return fmt.Errorf("ir: phi %s in bb_%d has %d operands for %d predecessors", p, bb.Id, len(p.Args), len(bb.Pred))
            }
            for i, a := range p.Args {
                if d, ok := a.(*Inst); ok {
                    if d.Blk == nil {
                        return fmt.Errorf("ir: phi %s in bb_%d uses erased value", p, bb.Id)
                    }
                    if d != bb.Pred[i].Term && !dt.InstDominates(d, bb.Pred[i].Term) {
                        return fmt.Errorf("ir: phi %s operand %s does not dominate edge bb_%d -> bb_%d", p, d, bb.Pred[i].Id, bb.Id)
                    }
                }
            }
        }

        /* body and terminator: defs dominate uses */
        check := func(u *Inst) error {
            if u.Op == OpPhi {
                return nil
            }
            for _, a := range u.Args {
                if d, ok := a.(*Inst); ok {
                    if d.Blk == nil {
                        return fmt.Errorf("ir: %s in bb_%d uses erased value", u, bb.Id)
                    }
                    if !dt.InstDominates(d, u) {
                        return fmt.Errorf("ir: use of %s in bb_%d is not dominated by its definition", d, bb.Id)
                    }
                }
            }
            return nil
        }
        for _, p := range bb.Ins {
            if err := check(p); err != nil {
                return err
            }
        }
        if err := check(bb.Term); err != nil {
            return err
        }
    }
    return nil
}
