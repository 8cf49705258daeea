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

type _CrEdge struct {
    to   *Block
    from *Block
}

// SplitCriticalEdges splits critical edges (those that go from a block
// with more than one outedge to a block with more than one inedge) by
// inserting an empty block, and returns the number of blocks added.
//
// Code inserted on an edge lands in the synthesized block, so it
// executes only when that edge is taken. φ operand vectors stay
// aligned because the predecessor slot is replaced in place.
func SplitCriticalEdges(fn *Func) int {
    var edges []_CrEdge

    /* find all critical edges */
    for _, bb := range PostOrder(fn) {
        if len(bb.Pred) > 1 {
            for _, p := range bb.Pred {
                if len(p.Succs()) > 1 {
                    edges = append(edges, _CrEdge {
                        to   : bb,
                        from : p,
                    })
                }
            }
        }
    }

    /* insert an empty block between the edges */
    for _, e := range edges {
        bb := fn.NewBlock()
        bb.Pred = []*Block { e.from }
        bb.Term = &Inst { Op: OpBr, Ty: Void, To: e.to, Blk: bb, Id: fn.valueid() }

        /* update the successor */
        e.from.Term.updateSuccessor(e.to, bb)

        /* update the predecessor slot in place */
        for i, p := range e.to.Pred {
            if p == e.from {
                e.to.Pred[i] = bb
                break
            }
        }
    }
    return len(edges)
}
