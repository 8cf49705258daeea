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

// Func is a function in SSA form. The first block is the entry block.
type Func struct {
    Name   string
    Args   []*Argument
    Blocks []*Block
    Layout *DataLayout
    nextid int
}

// NewFunc creates an empty function with a 64-bit data layout.
func NewFunc(name string) *Func {
    return &Func {
        Name   : name,
        Layout : NewDataLayout(64),
    }
}

// NewArg appends a function argument.
func (self *Func) NewArg(name string, ty *Type) *Argument {
    a := &Argument { Ty: ty, Name: name, Idx: len(self.Args) }
    self.Args = append(self.Args, a)
    return a
}

// NewBlock appends an empty basic block. The first block created is
// the entry block.
func (self *Func) NewBlock() *Block {
    b := &Block { Id: len(self.Blocks), Fn: self }
    self.Blocks = append(self.Blocks, b)
    return b
}

// Entry returns the entry block.
func (self *Func) Entry() *Block {
    if len(self.Blocks) == 0 {
        panic("ir: function has no blocks")
    }
    return self.Blocks[0]
}

func (self *Func) valueid() int {
    self.nextid++
    return self.nextid
}

func (self *Func) forEachInst(fv func(i *Inst)) {
    for _, bb := range self.Blocks {
        for _, p := range bb.Phi { fv(p) }
        for _, p := range bb.Ins { fv(p) }
        if bb.Term != nil {
            fv(bb.Term)
        }
    }
}

// NumUses counts the uses of v across the whole function.
func (self *Func) NumUses(v Value) int {
    n := 0
    self.forEachInst(func(i *Inst) {
        for _, a := range i.Args {
            if a == v {
                n++
            }
        }
    })
    return n
}

// ReplaceAllUses rewrites every use of old to new.
func (self *Func) ReplaceAllUses(old Value, new Value) int {
    n := 0
    self.forEachInst(func(i *Inst) {
        for j, a := range i.Args {
            if a == old {
                i.Args[j] = new
                n++
            }
        }
    })
    return n
}

// Erase unlinks i from its block. The caller must have rewritten or
// removed every use beforehand.
func (self *Func) Erase(i *Inst) {
    if i.Op.IsTerminator() {
        panic("ir: cannot erase a terminator")
    }
    if n := self.NumUses(i); n != 0 {
        panic("ir: erasing an instruction that still has uses")
    }
    if !i.Blk.removeInst(i) {
        panic("ir: erasing an unlinked instruction")
    }
    i.Blk = nil
}
