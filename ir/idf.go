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
    `sort`

    `github.com/oleiade/lane`
)

// DomFrontier computes the dominance frontier of every reachable
// block, per Cytron et al.: a join block is in the frontier of each
// predecessor-side dominator chain that stops short of its idom.
func DomFrontier(fn *Func, dt *DominatorTree) map[int][]*Block {
    df := make(map[int]map[int]*Block)
    for _, bb := range ReversePostOrder(fn) {
        if len(bb.Pred) < 2 {
            continue
        }
        for _, p := range bb.Pred {
            for r := p; r != nil && r != dt.DominatedBy[bb.Id]; r = dt.DominatedBy[r.Id] {
                if df[r.Id] == nil {
                    df[r.Id] = make(map[int]*Block)
                }
                df[r.Id][bb.Id] = bb
            }
        }
    }

    /* flatten into ordered lists */
    ret := make(map[int][]*Block, len(df))
    for id, v := range df {
        s := make([]*Block, 0, len(v))
        for _, bb := range v {
            s = append(s, bb)
        }
        sort.Slice(s, func(i int, j int) bool { return s[i].Id < s[j].Id })
        ret[id] = s
    }
    return ret
}

// IteratedDomFrontier computes the iterated dominance frontier of the
// defining block set with the usual worklist closure.
func IteratedDomFrontier(df map[int][]*Block, defs []*Block) []*Block {
    q := lane.NewQueue()
    in := make(map[int]struct{})
    out := make(map[int]struct{})

    /* seed the worklist */
    for _, bb := range defs {
        if _, ok := in[bb.Id]; !ok {
            in[bb.Id] = struct{}{}
            q.Enqueue(bb)
        }
    }

    /* close over the frontier */
    ret := []*Block(nil)
    for !q.Empty() {
        p := q.Dequeue().(*Block)
        for _, bb := range df[p.Id] {
            if _, ok := out[bb.Id]; !ok {
                out[bb.Id] = struct{}{}
                ret = append(ret, bb)
                if _, ok := in[bb.Id]; !ok {
                    in[bb.Id] = struct{}{}
                    q.Enqueue(bb)
                }
            }
        }
    }

    /* deterministic order for the caller */
    sort.Slice(ret, func(i int, j int) bool { return ret[i].Id < ret[j].Id })
    return ret
}
