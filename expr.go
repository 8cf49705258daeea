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
    `fmt`
    `math`
    `strings`

    `github.com/cloudwego/ssapre/ir`
    `github.com/cloudwego/ssapre/simplify`
)

type ExprKind uint8

const (
    EBottom ExprKind = iota
    EIgnored
    EUnknown
    EVariable
    EConstant
    EBasic
    EPhi
    EFactor
)

func (self ExprKind) String() string {
    switch self {
        case EBottom   : return "Bottom"
        case EIgnored  : return "Ignored"
        case EUnknown  : return "Unknown"
        case EVariable : return "Variable"
        case EConstant : return "Constant"
        case EBasic    : return "Basic"
        case EPhi      : return "Phi"
        case EFactor   : return "Factor"
        default        : return "???"
    }
}

// Expr is one occurrence in the pass's private expression graph, a
// flat sum over the occurrence kinds. The header fields are shared;
// the payload fields are meaningful per kind:
//
//   Ignored/Unknown : Inst, and Val for what an Ignored folded into
//   Variable        : Val (an argument or global)
//   Constant        : Val (a constant)
//   Basic/Phi       : Op, Ty, Args (canonical order), Blk for Phi
//   Factor          : PE, Blk, Preds, Vers, HRU and the availability bits
//
// Version -1 means unassigned. The single ⊥ sentinel of a pass run is
// an EBottom value; it may only ever appear in factor operand slots.
type Expr struct {
    Kind   ExprKind
    Op     uint32
    Ver    int
    Save   bool
    Reload bool

    Inst *ir.Inst
    Val  ir.Value
    Ty   *ir.Type
    Args []ir.Value
    Blk  *ir.Block

    PE       *Expr
    Preds    []*ir.Block
    Vers     []*Expr
    HRU      []bool
    DownSafe bool
    CanBeAvail bool
    Later    bool
}

// IsReal reports whether the occurrence is a real computation rather
// than a factor or a sentinel.
func (self *Expr) IsReal() bool {
    return self.Kind == EBasic || self.Kind == EPhi
}

// Inert occurrences take no part in the optimization.
func (self *Expr) Inert() bool {
    return self.Kind == EIgnored || self.Kind == EUnknown
}

// WillBeAvail reports whether the factor is a chosen realization
// point.
func (self *Expr) WillBeAvail() bool {
    return self.CanBeAvail && !self.Later
}

// PredIndex returns the operand slot of predecessor bb, or -1.
func (self *Expr) PredIndex(bb *ir.Block) int {
    for i, p := range self.Preds {
        if p == bb {
            return i
        }
    }
    return -1
}

func (self *Expr) String() string {
    switch self.Kind {
        case EBottom: {
            return "⊥"
        }
        case EFactor: {
            vs := make([]string, 0, len(self.Vers))
            for _, v := range self.Vers {
                if v == nil || v.Kind == EBottom {
                    vs = append(vs, "⊥")
                } else {
                    vs = append(vs, fmt.Sprintf("%d", v.Ver))
                }
            }
            return fmt.Sprintf("Φ(%s)@bb_%d v%d", strings.Join(vs, ","), self.Blk.Id, self.Ver)
        }
        default: {
            return fmt.Sprintf("%s v%d", self.Kind, self.Ver)
        }
    }
}

/* packed comparison opcode, (raw opcode << 8) | predicate */
func packcmp(op ir.Op, pred ir.CmpPred) uint32 {
    return uint32(op) << 8 | uint32(pred)
}

// valueToken is a stable identity string for an operand. Interned
// values tokenize by content, instructions by their value number, so
// tokens are deterministic across runs of the same function.
func valueToken(v ir.Value) string {
    switch p := v.(type) {
        case *ir.Const    : return fmt.Sprintf("c:%s:%d:%x", p.Ty, p.Int, math.Float64bits(p.Fp))
        case *ir.Argument : return fmt.Sprintf("a:%d", p.Idx)
        case *ir.Global   : return "g:" + p.Name
        case *ir.Undef    : return "u:" + p.Ty.String()
        case *ir.Inst     : return fmt.Sprintf("v:%d", p.Id)
        default           : panic("ssapre: unsupported operand value")
    }
}

// protoKey groups syntactic occurrences of the same expression: it
// covers kind, packed opcode, result type and operand identities, and
// never version, save or reload. Inert occurrences key uniquely so
// every one is its own prototype.
func protoKey(e *Expr) string {
    switch e.Kind {
        case EIgnored, EUnknown: {
            return fmt.Sprintf("x:%d", e.Inst.Id)
        }
        case EPhi: {
            ts := make([]string, 0, len(e.Args))
            for _, v := range e.Args {
                ts = append(ts, valueToken(v))
            }
            return fmt.Sprintf("p:%d:%s:%s", e.Blk.Id, e.Ty, strings.Join(ts, ","))
        }
        case EBasic: {
            ts := make([]string, 0, len(e.Args))
            for _, v := range e.Args {
                ts = append(ts, valueToken(v))
            }
            return fmt.Sprintf("b:%d:%s:%s", e.Op, e.Ty, strings.Join(ts, ","))
        }
        default: {
            panic("ssapre: no prototype for " + e.Kind.String())
        }
    }
}

// rank gives the canonical operand ordering: undef, then constants,
// then arguments by position, then instructions by dominator-tree DFS
// number.
func (self *_Pass) rank(v ir.Value) uint {
    switch p := v.(type) {
        case *ir.Undef            : return 0
        case *ir.Const, *ir.Global: return 1
        case *ir.Argument         : return uint(2 + p.Idx)
        case *ir.Inst: {
            if n, ok := self.dfs[p]; ok {
                return uint(3 + self.numargs + n)
            }
            return ^uint(0)
        }
        default: {
            return ^uint(0)
        }
    }
}

func (self *_Pass) shouldSwap(a ir.Value, b ir.Value) bool {
    ra, rb := self.rank(a), self.rank(b)
    if ra != rb {
        return ra > rb
    }
    return valueToken(a) > valueToken(b)
}

func (self *_Pass) mkIgnored(i *ir.Inst, folded ir.Value) *Expr {
    return &Expr { Kind: EIgnored, Op: uint32(i.Op), Ver: -1, Inst: i, Val: folded }
}

func (self *_Pass) mkUnknown(i *ir.Inst) *Expr {
    return &Expr { Kind: EUnknown, Op: uint32(i.Op), Ver: -1, Inst: i }
}

// ExprOfValue wraps a plain value as an expression: an argument or a
// global becomes a Variable, a constant a Constant. Any other value
// panics.
func ExprOfValue(v ir.Value) *Expr {
    switch v.(type) {
        case *ir.Const                : return &Expr { Kind: EConstant, Ver: -1, Val: v, Ty: v.Type() }
        case *ir.Argument, *ir.Global : return &Expr { Kind: EVariable, Ver: -1, Val: v, Ty: v.Type() }
        default                       : panic("ssapre: not a variable or constant")
    }
}

func (self *_Pass) mkPhi(i *ir.Inst) *Expr {
    return &Expr {
        Kind : EPhi,
        Op   : uint32(i.Op),
        Ver  : -1,
        Ty   : i.Ty,
        Args : append([]ir.Value(nil), i.Args...),
        Blk  : i.Blk,
    }
}

func (self *_Pass) mkBasic(i *ir.Inst) *Expr {
    e := &Expr {
        Kind : EBasic,
        Op   : uint32(i.Op),
        Ver  : -1,
        Ty   : i.Ty,
        Args : append([]ir.Value(nil), i.Args...),
    }

    /* GEPs are keyed on the source element type */
    if i.Op == ir.OpGetElementPtr {
        e.Ty = i.Elem
    }

    /* sort operands of commutative operations into canonical order */
    if i.Op.IsCommutative() {
        if self.shouldSwap(e.Args[0], e.Args[1]) {
            e.Args[0], e.Args[1] = e.Args[1], e.Args[0]
        }
    }

    /* comparisons commute through the swapped predicate */
    pred := i.Pred
    if i.Op == ir.OpICmp || i.Op == ir.OpFCmp {
        if self.shouldSwap(e.Args[0], e.Args[1]) {
            e.Args[0], e.Args[1] = e.Args[1], e.Args[0]
            pred = pred.Swapped()
        }
        e.Op = packcmp(i.Op, pred)
    }

    /* consult the simplifier; a fold to a constant, argument or
     * global demotes the occurrence to Ignored */
    switch v := simplify.Instruction(i.Op, pred, i.Ty, e.Args, self.q); v.(type) {
        case *ir.Const, *ir.Argument, *ir.Global : return self.mkIgnored(i, v)
        default                                  : return e
    }
}

// makeExpr classifies an instruction per the dispatch table: φ-nodes,
// pure scalar computations, and everything else as Unknown.
func (self *_Pass) makeExpr(i *ir.Inst) *Expr {
    switch i.Op {
        case ir.OpPhi: {
            return self.mkPhi(i)
        }
        case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpUDiv, ir.OpSDiv, ir.OpURem, ir.OpSRem,
             ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv, ir.OpFRem,
             ir.OpShl, ir.OpLShr, ir.OpAShr, ir.OpAnd, ir.OpOr, ir.OpXor,
             ir.OpTrunc, ir.OpZExt, ir.OpSExt, ir.OpFPToUI, ir.OpFPToSI,
             ir.OpUIToFP, ir.OpSIToFP, ir.OpFPTrunc, ir.OpFPExt,
             ir.OpPtrToInt, ir.OpIntToPtr, ir.OpBitCast,
             ir.OpICmp, ir.OpFCmp, ir.OpSelect, ir.OpGetElementPtr,
             ir.OpExtractElement, ir.OpInsertElement, ir.OpShuffleVector: {
            return self.mkBasic(i)
        }
        default: {
            return self.mkUnknown(i)
        }
    }
}

func (self *_Pass) cloneProto(e *Expr) *Expr {
    p := &Expr {
        Kind : e.Kind,
        Op   : e.Op,
        Ver  : -1,
        Inst : e.Inst,
        Val  : e.Val,
        Ty   : e.Ty,
        Args : append([]ir.Value(nil), e.Args...),
        Blk  : e.Blk,
    }
    return p
}
