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
    `fmt`
)

// ExecResult is the outcome of one interpreted execution.
type ExecResult struct {
    Ret   int64
    Evals int
}

func truncate(ty *Type, v int64) int64 {
    if ty.Bits < 64 {
        v &= (1 << uint(ty.Bits)) - 1
    }
    return v
}

func sextend(ty *Type, v int64) int64 {
    if ty.Bits >= 64 {
        return v
    }
    sh := uint(64 - ty.Bits)
    return (v << sh) >> sh
}

func evalicmp(pred CmpPred, ty *Type, x int64, y int64) (bool, error) {
    sx, sy := sextend(ty, x), sextend(ty, y)
    ux, uy := uint64(truncate(ty, x)), uint64(truncate(ty, y))
    switch pred {
        case IntEQ  : return ux == uy, nil
        case IntNE  : return ux != uy, nil
        case IntUGT : return ux > uy, nil
        case IntUGE : return ux >= uy, nil
        case IntULT : return ux < uy, nil
        case IntULE : return ux <= uy, nil
        case IntSGT : return sx > sy, nil
        case IntSGE : return sx >= sy, nil
        case IntSLT : return sx < sy, nil
        case IntSLE : return sx <= sy, nil
        default     : return false, fmt.Errorf("ir: interp: unsupported predicate %s", pred)
    }
}

func evalbin(op Op, ty *Type, x int64, y int64) (int64, error) {
    sx, sy := sextend(ty, x), sextend(ty, y)
    ux, uy := uint64(truncate(ty, x)), uint64(truncate(ty, y))
    switch op {
        case OpAdd  : return truncate(ty, x + y), nil
        case OpSub  : return truncate(ty, x - y), nil
        case OpMul  : return truncate(ty, x * y), nil
        case OpAnd  : return truncate(ty, x & y), nil
        case OpOr   : return truncate(ty, x | y), nil
        case OpXor  : return truncate(ty, x ^ y), nil
        case OpShl  : return truncate(ty, int64(ux << (uy % uint64(ty.Bits)))), nil
        case OpLShr : return truncate(ty, int64(ux >> (uy % uint64(ty.Bits)))), nil
        case OpAShr : return truncate(ty, sx >> (uy % uint64(ty.Bits))), nil
        case OpUDiv : if uy == 0 { return 0, fmt.Errorf("ir: interp: division by zero") } else { return truncate(ty, int64(ux / uy)), nil }
        case OpSDiv : if sy == 0 { return 0, fmt.Errorf("ir: interp: division by zero") } else { return truncate(ty, sx / sy), nil }
        case OpURem : if uy == 0 { return 0, fmt.Errorf("ir: interp: division by zero") } else { return truncate(ty, int64(ux % uy)), nil }
        case OpSRem : if sy == 0 { return 0, fmt.Errorf("ir: interp: division by zero") } else { return truncate(ty, sx % sy), nil }
        default     : return 0, fmt.Errorf("ir: interp: unsupported opcode %s", op)
    }
}

// Exec interprets an integer-typed function on concrete arguments and
// returns the value of its ret along with the number of pure scalar
// evaluations performed on the taken path. It is a test oracle, not a
// production interpreter: floats, vectors, memory and calls are
// rejected, and execution aborts after fuel block transfers.
func Exec(fn *Func, args []int64, fuel int) (ExecResult, error) {
    if len(args) != len(fn.Args) {
        return ExecResult{}, fmt.Errorf("ir: interp: want %d arguments, have %d", len(fn.Args), len(args))
    }

    env := make(map[Value]int64)
    for i, a := range fn.Args {
        env[a] = truncate(a.Ty, args[i])
    }

    load := func(v Value) (int64, error) {
        switch p := v.(type) {
            case *Const    : return truncate(p.Ty, p.Int), nil
            case *Undef    : return 0, nil
            case *Argument : return env[p], nil
            case *Inst     : return env[p], nil
            default        : return 0, fmt.Errorf("ir: interp: unsupported operand %s", v)
        }
    }

    res := ExecResult{}
    prev := (*Block)(nil)
    bb := fn.Entry()

    for ; fuel > 0; fuel-- {
        /* φ-nodes read their slot for the inbound edge, all at once */
        vals := make([]int64, len(bb.Phi))
        for i, p := range bb.Phi {
            v, err := load(p.Incoming(prev))
            if err != nil {
                return res, err
            }
            vals[i] = v
        }
        for i, p := range bb.Phi {
            env[p] = truncate(p.Ty, vals[i])
        }

        /* straight-line body */
        for _, p := range bb.Ins {
            switch p.Op {
                case OpICmp: {
                    x, err := load(p.Args[0])
                    if err != nil {
                        return res, err
                    }
                    y, err := load(p.Args[1])
                    if err != nil {
                        return res, err
                    }
                    b, err := evalicmp(p.Pred, p.Args[0].Type(), x, y)
                    if err != nil {
                        return res, err
                    }
                    res.Evals++
                    if b {
                        env[p] = 1
                    } else {
                        env[p] = 0
                    }
                }
                case OpSelect: {
                    c, err := load(p.Args[0])
                    if err != nil {
                        return res, err
                    }
                    t, err := load(p.Args[1])
                    if err != nil {
                        return res, err
                    }
                    f, err := load(p.Args[2])
                    if err != nil {
                        return res, err
                    }
                    res.Evals++
                    if c != 0 {
                        env[p] = t
                    } else {
                        env[p] = f
                    }
                }
                case OpTrunc, OpZExt: {
                    x, err := load(p.Args[0])
                    if err != nil {
                        return res, err
                    }
                    res.Evals++
                    env[p] = truncate(p.Ty, x)
                }
                case OpSExt: {
                    x, err := load(p.Args[0])
                    if err != nil {
                        return res, err
                    }
                    res.Evals++
                    env[p] = truncate(p.Ty, sextend(p.Args[0].Type(), x))
                }
                default: {
                    if len(p.Args) != 2 {
                        return res, fmt.Errorf("ir: interp: unsupported instruction %s", p.Op)
                    }
                    x, err := load(p.Args[0])
                    if err != nil {
                        return res, err
                    }
                    y, err := load(p.Args[1])
                    if err != nil {
                        return res, err
                    }
                    v, err := evalbin(p.Op, p.Ty, x, y)
                    if err != nil {
                        return res, err
                    }
                    res.Evals++
                    env[p] = v
                }
            }
        }

        /* transfer control */
        switch bb.Term.Op {
            case OpBr: {
                prev, bb = bb, bb.Term.To
            }
            case OpCondBr: {
                c, err := load(bb.Term.Args[0])
                if err != nil {
                    return res, err
                }
                if c != 0 {
                    prev, bb = bb, bb.Term.Then
                } else {
                    prev, bb = bb, bb.Term.Else
                }
            }
            case OpSwitch: {
                v, err := load(bb.Term.Args[0])
                if err != nil {
                    return res, err
                }
                if t, ok := bb.Term.Cases[v]; ok {
                    prev, bb = bb, t
                } else {
                    prev, bb = bb, bb.Term.To
                }
            }
            case OpRet: {
                if len(bb.Term.Args) != 0 {
                    v, err := load(bb.Term.Args[0])
                    if err != nil {
                        return res, err
                    }
                    res.Ret = v
                }
                return res, nil
            }
            default: {
                return res, fmt.Errorf("ir: interp: invalid terminator")
            }
        }
    }
    return res, fmt.Errorf("ir: interp: out of fuel")
}
