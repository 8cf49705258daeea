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
    `github.com/oleiade/lane`
)

// PostOrder returns the blocks reachable from the entry in CFG
// post-order, computed iteratively.
func PostOrder(fn *Func) []*Block {
    type frame struct {
        bb *Block
        ns []*Block
    }

    st := lane.NewStack()
    vis := map[int]struct{} { fn.Entry().Id: {} }
    ret := make([]*Block, 0, len(fn.Blocks))

    /* depth-first walk with an explicit stack */
    for st.Push(&frame { bb: fn.Entry(), ns: fn.Entry().Succs() }); !st.Empty(); {
        f := st.Head().(*frame)

        /* descend into the next unvisited successor, if any */
        if len(f.ns) != 0 {
            n := f.ns[0]
            f.ns = f.ns[1:]
            if _, ok := vis[n.Id]; !ok {
                vis[n.Id] = struct{}{}
                st.Push(&frame { bb: n, ns: n.Succs() })
            }
            continue
        }

        /* all successors visited, emit the block */
        st.Pop()
        ret = append(ret, f.bb)
    }
    return ret
}

// ReversePostOrder returns the blocks reachable from the entry in CFG
// reverse post-order.
func ReversePostOrder(fn *Func) []*Block {
    ret := PostOrder(fn)
    blockreverse(ret)
    return ret
}
