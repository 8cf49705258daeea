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

/** This is an implementation of the Lengauer-Tarjan algorithm described in
 *  https://doi.org/10.1145%2F357062.357071
 */

package ir

import (
    `sort`

    `github.com/oleiade/lane`
)

type _LtNode struct {
    semi     int
    node     *Block
    dom      *_LtNode
    label    *_LtNode
    parent   *_LtNode
    ancestor *_LtNode
    pred     []*_LtNode
    bucket   map[*_LtNode]struct{}
}

type _LengauerTarjan struct {
    nodes  []*_LtNode
    vertex map[int]int
}

func newLengauerTarjan() *_LengauerTarjan {
    return &_LengauerTarjan {
        vertex: make(map[int]int),
    }
}

func (self *_LengauerTarjan) dfs(bb *Block) {
    i := len(self.nodes)
    self.vertex[bb.Id] = i

    /* create a new node */
    p := &_LtNode {
        semi   : i,
        node   : bb,
        bucket : make(map[*_LtNode]struct{}),
    }

    /* add to node list */
    p.label = p
    self.nodes = append(self.nodes, p)

    /* traverse the successors */
    for _, w := range bb.Succs() {
        idx, ok := self.vertex[w.Id]

        /* not visited yet */
        if !ok {
            self.dfs(w)
            idx = self.vertex[w.Id]
            self.nodes[idx].parent = p
        }

        /* add predecessors */
        q := self.nodes[idx]
        q.pred = append(q.pred, p)
    }
}

func (self *_LengauerTarjan) eval(p *_LtNode) *_LtNode {
    if p.ancestor == nil {
        return p
    } else {
        self.compress(p)
        return p.label
    }
}

func (self *_LengauerTarjan) link(p *_LtNode, q *_LtNode) {
    q.ancestor = p
}

func (self *_LengauerTarjan) compress(p *_LtNode) {
    if p.ancestor.ancestor != nil {
        self.compress(p.ancestor)
        if p.label.semi > p.ancestor.label.semi { p.label = p.ancestor.label }
        p.ancestor = p.ancestor.ancestor
    }
}

// DominatorTree is the dominator tree of a function's CFG. The pass
// reorders the child lists (DominatorOf) with SortChildren; callers
// that need a stable tree must rebuild or clone it.
type DominatorTree struct {
    Root        *Block
    Depth       map[int]int
    DominatedBy map[int]*Block
    DominatorOf map[int][]*Block
}

// BuildDomTree computes the dominator tree of fn.
func BuildDomTree(fn *Func) *DominatorTree {
    root := fn.Entry()
    domby := make(map[int]*Block)
    domof := make(map[int][]*Block)

    /* Step 1: Carry out a depth-first search of the problem graph. Number the vertices
     * from 1 to n as they are reached during the search. Initialize the variables used
     * in succeeding steps. */
    lt := newLengauerTarjan()
    lt.dfs(root)

    /* perform Step 2 and Step 3 simultaneously */
    for i := len(lt.nodes) - 1; i > 0; i-- {
        p := lt.nodes[i]
        q := (*_LtNode)(nil)

        /* Step 2: Compute the semidominators of all vertices by applying Theorem 4.
         * Carry out the computation vertex by vertex in decreasing order by number. */
        for _, v := range p.pred {
            q = lt.eval(v)
            p.semi = minint(p.semi, q.semi)
        }

        /* link the ancestor */
        lt.link(p.parent, p)
        lt.nodes[p.semi].bucket[p] = struct{}{}

        /* Step 3: Implicitly define the immediate dominator of each vertex by applying Corollary 1 */
        for v := range p.parent.bucket {
            if q = lt.eval(v); q.semi < v.semi {
                v.dom = q
            } else {
                v.dom = p.parent
            }
        }

        /* clear the bucket */
        for v := range p.parent.bucket {
            delete(p.parent.bucket, v)
        }
    }

    /* Step 4: Explicitly define the immediate dominator of each vertex, carrying out the
     * computation vertex by vertex in increasing order by number. */
    for _, p := range lt.nodes[1:] {
        if p.dom.node.Id != lt.nodes[p.semi].node.Id {
            p.dom = p.dom.dom
        }
    }

    /* map the dominator relations */
    for _, p := range lt.nodes[1:] {
        domby[p.node.Id] = p.dom.node
        domof[p.dom.node.Id] = append(domof[p.dom.node.Id], p.node)
    }

    /* keep the child lists in a deterministic order */
    for _, v := range domof {
        sort.Slice(v, func(i int, j int) bool {
            return v[i].Id < v[j].Id
        })
    }

    /* construct the dominator tree */
    dt := &DominatorTree {
        Root        : root,
        Depth       : make(map[int]int),
        DominatorOf : domof,
        DominatedBy : domby,
    }

    /* compute the node depths with a BFS over the tree */
    q := lane.NewQueue()
    for q.Enqueue(root); !q.Empty(); {
        p := q.Dequeue().(*Block)
        for _, c := range domof[p.Id] {
            dt.Depth[c.Id] = dt.Depth[p.Id] + 1
            q.Enqueue(c)
        }
    }
    return dt
}

// SortChildren reorders every child list by the given block ordering,
// ascending when asc is set, else descending.
func (self *DominatorTree) SortChildren(order map[int]int, asc bool) {
    for _, v := range self.DominatorOf {
        sort.Slice(v, func(i int, j int) bool {
            if asc {
                return order[v[i].Id] < order[v[j].Id]
            } else {
                return order[v[i].Id] > order[v[j].Id]
            }
        })
    }
}

// Dominates reports whether a dominates b in the CFG. A block
// dominates itself.
func (self *DominatorTree) Dominates(a *Block, b *Block) bool {
    for b != nil && self.Depth[b.Id] >= self.Depth[a.Id] {
        if b == a {
            return true
        }
        b = self.DominatedBy[b.Id]
    }
    return false
}

func instindex(i *Inst) int {
    bb := i.Blk
    n := 0
    for _, p := range bb.Phi {
        if p == i { return n }
        n++
    }
    for _, p := range bb.Ins {
        if p == i { return n }
        n++
    }
    if bb.Term == i {
        return n
    }
    panic("ir: instruction not in its block")
}

// InstDominates reports whether the definition a is available at b,
// i.e. a strictly precedes b in the same block or a's block properly
// dominates b's.
func (self *DominatorTree) InstDominates(a *Inst, b *Inst) bool {
    if a.Blk == b.Blk {
        return instindex(a) < instindex(b)
    }
    return self.Dominates(a.Blk, b.Blk)
}
