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

package simplify

import (
    `github.com/cloudwego/ssapre/analysis`
    `github.com/cloudwego/ssapre/ir`
)

// Query bundles the analyses a simplification is allowed to consult.
type Query struct {
    Layout *ir.DataLayout
    TLI    *analysis.TargetLibraryInfo
    DT     *ir.DominatorTree
    AC     *analysis.AssumptionCache
}

func iszero(v ir.Value) bool {
    c, ok := v.(*ir.Const)
    return ok && c.Ty.Kind == ir.KInt && c.Int == 0
}

func isone(v ir.Value) bool {
    c, ok := v.(*ir.Const)
    return ok && c.Ty.Kind == ir.KInt && c.SInt() == 1
}

func isallones(v ir.Value) bool {
    c, ok := v.(*ir.Const)
    return ok && c.Ty.Kind == ir.KInt && c.SInt() == -1
}

func constpair(args []ir.Value) (*ir.Const, *ir.Const, bool) {
    x, ok := args[0].(*ir.Const)
    if !ok {
        return nil, nil, false
    }
    y, ok := args[1].(*ir.Const)
    if !ok {
        return nil, nil, false
    }
    return x, y, true
}

// Binary simplifies a binary operation, returning the equivalent
// existing value or nil.
func Binary(op ir.Op, ty *ir.Type, x ir.Value, y ir.Value, q Query) ir.Value {
    if cx, cy, ok := constpair([]ir.Value { x, y }); ok {
        if ty.Kind == ir.KFloat {
            return foldfbin(op, ty, cx, cy)
        } else {
            return foldbin(op, ty, cx, cy)
        }
    }

    switch op {
        case ir.OpAdd: {
            if iszero(x) { return y }
            if iszero(y) { return x }
        }
        case ir.OpSub: {
            if iszero(y) { return x }
            if x == y    { return ir.IntConst(ty, 0) }
        }
        case ir.OpMul: {
            if iszero(x) { return x }
            if iszero(y) { return y }
            if isone(x)  { return y }
            if isone(y)  { return x }
        }
        case ir.OpAnd: {
            if x == y        { return x }
            if iszero(x)     { return x }
            if iszero(y)     { return y }
            if isallones(x)  { return y }
            if isallones(y)  { return x }
        }
        case ir.OpOr: {
            if x == y    { return x }
            if iszero(x) { return y }
            if iszero(y) { return x }
        }
        case ir.OpXor: {
            if x == y    { return ir.IntConst(ty, 0) }
            if iszero(x) { return y }
            if iszero(y) { return x }
        }
        case ir.OpShl, ir.OpLShr, ir.OpAShr: {
            if iszero(y) { return x }
            if iszero(x) { return x }
        }
        case ir.OpUDiv, ir.OpSDiv: {
            if isone(y) { return x }
            if x == y && q.AC.NonZero(y) { return ir.IntConst(ty, 1) }
        }
        case ir.OpURem, ir.OpSRem: {
            if isone(y) { return ir.IntConst(ty, 0) }
            if x == y && q.AC.NonZero(y) { return ir.IntConst(ty, 0) }
        }
    }
    return nil
}

// Cmp simplifies an integer or float comparison after operand
// canonicalization.
func Cmp(op ir.Op, pred ir.CmpPred, x ir.Value, y ir.Value, q Query) ir.Value {
    if op == ir.OpICmp {
        if cx, cy, ok := constpair([]ir.Value { x, y }); ok {
            return foldicmp(pred, cx, cy)
        }
    }

    /* identical operands decide reflexive predicates */
    if x == y {
        switch pred {
            case ir.IntEQ, ir.IntUGE, ir.IntULE, ir.IntSGE, ir.IntSLE: {
                return ir.Bool(true)
            }
            case ir.IntNE, ir.IntUGT, ir.IntULT, ir.IntSGT, ir.IntSLT: {
                return ir.Bool(false)
            }
        }
    }
    return nil
}

// Select simplifies a select operation.
func Select(cond ir.Value, t ir.Value, f ir.Value, q Query) ir.Value {
    if t == f {
        return t
    }
    if c, ok := cond.(*ir.Const); ok {
        if c.Int != 0 {
            return t
        } else {
            return f
        }
    }
    return nil
}

// Cast simplifies a cast operation.
func Cast(op ir.Op, ty *ir.Type, x ir.Value, q Query) ir.Value {
    if op == ir.OpBitCast && x.Type() == ty {
        return x
    }
    if c, ok := x.(*ir.Const); ok && ty.Kind == ir.KInt && c.Ty.Kind == ir.KInt {
        return foldcast(op, ty, c)
    }
    return nil
}

// GEP simplifies an address computation: stepping by zero indices is
// the base pointer itself.
func GEP(base ir.Value, index []ir.Value, q Query) ir.Value {
    for _, v := range index {
        if !iszero(v) {
            return nil
        }
    }
    if len(index) == 0 {
        return nil
    }
    return base
}

// Call folds a call to a library routine the target declares pure,
// when the argument is constant and the routine is one we understand.
func Call(callee ir.Value, ty *ir.Type, args []ir.Value, q Query) ir.Value {
    g, ok := callee.(*ir.Global)
    if !ok || !q.TLI.IsPure(g.Name) {
        return nil
    }
    if len(args) != 1 {
        return nil
    }

    switch c, ok := args[0].(*ir.Const); {
        case !ok: {
            return nil
        }
        case g.Name == "abs" || g.Name == "labs": {
            if v := c.SInt(); v < 0 {
                return ir.IntConst(ty, -v)
            }
            return ir.IntConst(ty, c.SInt())
        }
        case g.Name == "fabs": {
            if c.Fp < 0 {
                return ir.FloatConst(ty, -c.Fp)
            }
            return ir.FloatConst(ty, c.Fp)
        }
        default: {
            return nil
        }
    }
}

// Instruction dispatches on the opcode and simplifies a would-be
// instruction with the given canonicalized operands. A nil return
// means no simplification applies.
func Instruction(op ir.Op, pred ir.CmpPred, ty *ir.Type, args []ir.Value, q Query) ir.Value {
    switch op {
        case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpUDiv, ir.OpSDiv, ir.OpURem, ir.OpSRem,
             ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv, ir.OpFRem,
             ir.OpShl, ir.OpLShr, ir.OpAShr, ir.OpAnd, ir.OpOr, ir.OpXor: {
            return Binary(op, ty, args[0], args[1], q)
        }
        case ir.OpICmp, ir.OpFCmp: {
            return Cmp(op, pred, args[0], args[1], q)
        }
        case ir.OpSelect: {
            return Select(args[0], args[1], args[2], q)
        }
        case ir.OpTrunc, ir.OpZExt, ir.OpSExt, ir.OpBitCast: {
            return Cast(op, ty, args[0], q)
        }
        case ir.OpGetElementPtr: {
            return GEP(args[0], args[1:], q)
        }
        case ir.OpCall: {
            return Call(args[0], ty, args[1:], q)
        }
        default: {
            return nil
        }
    }
}
