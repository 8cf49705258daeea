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

// Two numberings over the dominator tree, both assigning consecutive
// integers from 1 in visitation order:
//
//   DFS  visits children in CFG reverse-post-order
//   SDFS visits children in the opposite order
//
// Walking blocks in RPO while keying stack entries by SDFS makes
// subtree exit a single integer comparison: any entry whose SDFS is
// greater than the current instruction's belongs to a dominator
// subtree we have already left, for example:
//
//   CFG:    DT:
//
//    a       a     RPO(CFG): { a, c, b, d, e }
//   / \    / | \   DFS(DT):  { a, c, b, d, e }  children in RPO
//  b   c  b  d  c
//   \ /      |
//    d       e     SDFS(DT): { a, d, e, b, c }  children reversed
//    |
//    e
//
func (self *_Pass) computeOrders() {
    self.rpo = ir.ReversePostOrder(self.fn)
    for i, bb := range self.rpo {
        self.rpoidx[bb.Id] = i
    }

    /* number the main traversal order */
    self.dt.SortChildren(self.rpoidx, true)
    self.walkNumber(self.dt.Root, 1, self.dfs, nil)

    /* reverse the sibling order and number again */
    self.dt.SortChildren(self.rpoidx, false)
    self.walkNumber(self.dt.Root, 1, self.sdfs, self.front)
}

func (self *_Pass) walkNumber(bb *ir.Block, next int, m map[*ir.Inst]int, front map[int]int) int {
    if front != nil {
        front[bb.Id] = next
    }
    for _, p := range bb.Phi {
        m[p] = next
        next++
    }
    for _, p := range bb.Ins {
        m[p] = next
        next++
    }
    if bb.Term != nil {
        m[bb.Term] = next
        next++
    }
    for _, c := range self.dt.DominatorOf[bb.Id] {
        next = self.walkNumber(c, next, m, front)
    }
    return next
}
