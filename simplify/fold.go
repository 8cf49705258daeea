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
    `github.com/cloudwego/ssapre/ir`
)

func truncate(ty *ir.Type, v int64) int64 {
    if ty.Bits < 64 {
        v &= (1 << uint(ty.Bits)) - 1
    }
    return v
}

func foldbin(op ir.Op, ty *ir.Type, x *ir.Const, y *ir.Const) ir.Value {
    sx, sy := x.SInt(), y.SInt()
    ux, uy := uint64(truncate(ty, x.Int)), uint64(truncate(ty, y.Int))
    switch op {
        case ir.OpAdd  : return ir.IntConst(ty, sx + sy)
        case ir.OpSub  : return ir.IntConst(ty, sx - sy)
        case ir.OpMul  : return ir.IntConst(ty, sx * sy)
        case ir.OpAnd  : return ir.IntConst(ty, sx & sy)
        case ir.OpOr   : return ir.IntConst(ty, sx | sy)
        case ir.OpXor  : return ir.IntConst(ty, sx ^ sy)
        case ir.OpShl  : return ir.IntConst(ty, int64(ux << (uy % uint64(ty.Bits))))
        case ir.OpLShr : return ir.IntConst(ty, int64(ux >> (uy % uint64(ty.Bits))))
        case ir.OpAShr : return ir.IntConst(ty, sx >> (uy % uint64(ty.Bits)))
        case ir.OpUDiv : if uy != 0 { return ir.IntConst(ty, int64(ux / uy)) }
        case ir.OpSDiv : if sy != 0 { return ir.IntConst(ty, sx / sy) }
        case ir.OpURem : if uy != 0 { return ir.IntConst(ty, int64(ux % uy)) }
        case ir.OpSRem : if sy != 0 { return ir.IntConst(ty, sx % sy) }
    }
    return nil
}

func foldfbin(op ir.Op, ty *ir.Type, x *ir.Const, y *ir.Const) ir.Value {
    switch op {
        case ir.OpFAdd : return ir.FloatConst(ty, x.Fp + y.Fp)
        case ir.OpFSub : return ir.FloatConst(ty, x.Fp - y.Fp)
        case ir.OpFMul : return ir.FloatConst(ty, x.Fp * y.Fp)
        case ir.OpFDiv : if y.Fp != 0 { return ir.FloatConst(ty, x.Fp / y.Fp) }
    }
    return nil
}

func foldicmp(pred ir.CmpPred, x *ir.Const, y *ir.Const) ir.Value {
    ty := x.Ty
    sx, sy := x.SInt(), y.SInt()
    ux, uy := uint64(truncate(ty, x.Int)), uint64(truncate(ty, y.Int))
    switch pred {
        case ir.IntEQ  : return ir.Bool(ux == uy)
        case ir.IntNE  : return ir.Bool(ux != uy)
        case ir.IntUGT : return ir.Bool(ux > uy)
        case ir.IntUGE : return ir.Bool(ux >= uy)
        case ir.IntULT : return ir.Bool(ux < uy)
        case ir.IntULE : return ir.Bool(ux <= uy)
        case ir.IntSGT : return ir.Bool(sx > sy)
        case ir.IntSGE : return ir.Bool(sx >= sy)
        case ir.IntSLT : return ir.Bool(sx < sy)
        case ir.IntSLE : return ir.Bool(sx <= sy)
        default        : return nil
    }
}

func foldcast(op ir.Op, ty *ir.Type, x *ir.Const) ir.Value {
    switch op {
        case ir.OpTrunc, ir.OpZExt: {
            return ir.IntConst(ty, truncate(x.Ty, x.Int))
        }
        case ir.OpSExt: {
            return ir.IntConst(ty, x.SInt())
        }
        default: {
            return nil
        }
    }
}
