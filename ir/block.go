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

// Block is a basic block: zero or more φ-nodes, a straight-line body,
// and exactly one terminator. Pred is the CFG predecessor list;
// φ operand vectors align with it index-for-index.
type Block struct {
    Id   int
    Phi  []*Inst
    Ins  []*Inst
    Term *Inst
    Pred []*Block
    Fn   *Func
}

// Succs enumerates the CFG successors in the terminator's stable order.
func (self *Block) Succs() []*Block {
    if self.Term == nil {
        return nil
    }
    return self.Term.successors()
}

// First returns the first instruction of the block in program order.
func (self *Block) First() *Inst {
    if len(self.Phi) != 0 {
        return self.Phi[0]
    }
    if len(self.Ins) != 0 {
        return self.Ins[0]
    }
    return self.Term
}

// PredIndex returns the index of p in the predecessor list, or -1.
func (self *Block) PredIndex(p *Block) int {
    for i, b := range self.Pred {
        if b == p {
            return i
        }
    }
    return -1
}

func (self *Block) addPred(p *Block) {
    self.Pred = append(self.Pred, p)
}

// InsertBeforeTerm places v at the end of the block body, just before
// the terminator.
func (self *Block) InsertBeforeTerm(v *Inst) {
    v.Blk = self
    self.Ins = append(self.Ins, v)
}

// AddPhi places a φ-node at the top of the block.
func (self *Block) AddPhi(v *Inst) {
    v.Blk = self
    self.Phi = append(self.Phi, v)
}

func (self *Block) removeInst(v *Inst) bool {
    for i, p := range self.Ins {
        if p == v {
            self.Ins = append(self.Ins[:i], self.Ins[i + 1:]...)
            return true
        }
    }
    for i, p := range self.Phi {
        if p == v {
            self.Phi = append(self.Phi[:i], self.Phi[i + 1:]...)
            return true
        }
    }
    return false
}
