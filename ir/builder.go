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

// Construction API. Instructions append to the block body in program
// order; terminators wire up predecessor lists as a side effect, so
// φ-nodes must be added after all inbound edges exist.

func (self *Block) mkinst(op Op, ty *Type, args ...Value) *Inst {
    p := &Inst {
        Op   : op,
        Ty   : ty,
        Args : args,
        Blk  : self,
        Id   : self.Fn.valueid(),
    }
    self.Ins = append(self.Ins, p)
    return p
}

func (self *Block) NewBin(op Op, x Value, y Value) *Inst {
    switch op {
        case OpAdd, OpSub, OpMul, OpUDiv, OpSDiv, OpURem, OpSRem,
             OpFAdd, OpFSub, OpFMul, OpFDiv, OpFRem,
             OpShl, OpLShr, OpAShr, OpAnd, OpOr, OpXor: {
            return self.mkinst(op, x.Type(), x, y)
        }
        default: {
            panic("ir: NewBin with a non-binary opcode")
        }
    }
}

func (self *Block) NewICmp(pred CmpPred, x Value, y Value) *Inst {
    p := self.mkinst(OpICmp, I1, x, y)
    p.Pred = pred
    return p
}

func (self *Block) NewFCmp(pred CmpPred, x Value, y Value) *Inst {
    p := self.mkinst(OpFCmp, I1, x, y)
    p.Pred = pred
    return p
}

func (self *Block) NewCast(op Op, v Value, ty *Type) *Inst {
    return self.mkinst(op, ty, v)
}

func (self *Block) NewSelect(cond Value, t Value, f Value) *Inst {
    return self.mkinst(OpSelect, t.Type(), cond, t, f)
}

func (self *Block) NewGEP(elem *Type, base Value, index ...Value) *Inst {
    p := self.mkinst(OpGetElementPtr, Pointer(elem), append([]Value { base }, index...)...)
    p.Elem = elem
    return p
}

func (self *Block) NewExtractElement(vec Value, index Value) *Inst {
    return self.mkinst(OpExtractElement, vec.Type().Elem, vec, index)
}

func (self *Block) NewInsertElement(vec Value, v Value, index Value) *Inst {
    return self.mkinst(OpInsertElement, vec.Type(), vec, v, index)
}

func (self *Block) NewShuffleVector(x Value, y Value, mask Value) *Inst {
    return self.mkinst(OpShuffleVector, x.Type(), x, y, mask)
}

func (self *Block) NewLoad(ty *Type, addr Value) *Inst {
    return self.mkinst(OpLoad, ty, addr)
}

func (self *Block) NewStore(v Value, addr Value) *Inst {
    return self.mkinst(OpStore, Void, v, addr)
}

func (self *Block) NewCall(fn *Global, ty *Type, args ...Value) *Inst {
    return self.mkinst(OpCall, ty, append([]Value { fn }, args...)...)
}

// NewPhi creates a φ-node with one operand per current predecessor,
// in predecessor order.
func (self *Block) NewPhi(ty *Type, incoming ...Value) *Inst {
    if len(incoming) != len(self.Pred) {
        panic("ir: phi operand count does not match predecessors")
    }
    p := &Inst {
        Op   : OpPhi,
        Ty   : ty,
        Args : incoming,
        Blk  : self,
        Id   : self.Fn.valueid(),
    }
    self.Phi = append(self.Phi, p)
    return p
}

// NewIncompletePhi creates a φ-node whose operands are filled in
// later, one slot per current predecessor.
func (self *Block) NewIncompletePhi(ty *Type) *Inst {
    p := &Inst {
        Op   : OpPhi,
        Ty   : ty,
        Args : make([]Value, len(self.Pred)),
        Blk  : self,
        Id   : self.Fn.valueid(),
    }
    self.Phi = append(self.Phi, p)
    return p
}

// NewComputation builds a pure computation from its parts at the end
// of the block body, as code motion does when cloning an expression
// template onto an edge.
func (self *Block) NewComputation(op Op, pred CmpPred, ty *Type, elem *Type, args []Value) *Inst {
    p := self.mkinst(op, ty, args...)
    p.Pred = pred
    p.Elem = elem
    return p
}

func (self *Block) mkterm(op Op, args ...Value) *Inst {
    if self.Term != nil {
        panic("ir: block already terminated")
    }
    p := &Inst {
        Op   : op,
        Ty   : Void,
        Args : args,
        Blk  : self,
        Id   : self.Fn.valueid(),
    }
    self.Term = p
    return p
}

func (self *Block) Jump(to *Block) *Inst {
    p := self.mkterm(OpBr)
    p.To = to
    to.addPred(self)
    return p
}

func (self *Block) Branch(cond Value, then *Block, els *Block) *Inst {
    p := self.mkterm(OpCondBr, cond)
    p.Then = then
    p.Else = els
    then.addPred(self)
    els.addPred(self)
    return p
}

func (self *Block) SwitchTo(v Value, def *Block, cases map[int64]*Block) *Inst {
    p := self.mkterm(OpSwitch, v)
    p.To = def
    p.Cases = cases
    def.addPred(self)
    for _, s := range p.successors()[1:] {
        s.addPred(self)
    }
    return p
}

func (self *Block) Return(v Value) *Inst {
    return self.mkterm(OpRet, v)
}

func (self *Block) ReturnVoid() *Inst {
    return self.mkterm(OpRet)
}
