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
    `math`
    `sync`
)

// Value is anything an instruction can take as an operand. All
// implementations are pointers, and constants and undefs are interned,
// so operand identity is pointer identity. Globals are not interned:
// every NewGlobal call declares a distinct global.
type Value interface {
    fmt.Stringer
    Type() *Type
}

type Const struct {
    Ty  *Type
    Int int64
    Fp  float64
}

var (
    constmtx   sync.Mutex
    constcache = make(map[string]*Const)
)

func internconst(c *Const) *Const {
    k := fmt.Sprintf("%s:%d:%x", c.Ty, c.Int, math.Float64bits(c.Fp))
    constmtx.Lock()
    defer constmtx.Unlock()
    if v, ok := constcache[k]; ok {
        return v
    }
    constcache[k] = c
    return c
}

// IntConst returns the interned integer constant v of type ty,
// truncated to the type width.
func IntConst(ty *Type, v int64) *Const {
    if ty.Kind != KInt {
        panic("ir: integer constant of non-integer type")
    }
    if ty.Bits < 64 {
        v &= (1 << uint(ty.Bits)) - 1
    }
    return internconst(&Const { Ty: ty, Int: v })
}

// FloatConst returns the interned floating point constant v of type ty.
func FloatConst(ty *Type, v float64) *Const {
    if ty.Kind != KFloat {
        panic("ir: float constant of non-float type")
    }
    return internconst(&Const { Ty: ty, Fp: v })
}

// Bool returns the i1 constant for v.
func Bool(v bool) *Const {
    if v {
        return IntConst(I1, 1)
    } else {
        return IntConst(I1, 0)
    }
}

func (self *Const) Type() *Type {
    return self.Ty
}

// SInt returns the constant sign-extended from its type width.
func (self *Const) SInt() int64 {
    if self.Ty.Bits >= 64 {
        return self.Int
    }
    sh := uint(64 - self.Ty.Bits)
    return (self.Int << sh) >> sh
}

func (self *Const) String() string {
    if self.Ty.Kind == KFloat {
        return fmt.Sprintf("%g", self.Fp)
    } else {
        return fmt.Sprintf("%d", self.SInt())
    }
}

type Argument struct {
    Ty   *Type
    Name string
    Idx  int
}

func (self *Argument) Type() *Type    { return self.Ty }
func (self *Argument) String() string { return "%" + self.Name }

type Global struct {
    Ty   *Type
    Name string
}

// NewGlobal declares a global of the given pointee type. The value
// itself is of pointer type.
func NewGlobal(name string, elem *Type) *Global {
    return &Global { Ty: Pointer(elem), Name: name }
}

func (self *Global) Type() *Type    { return self.Ty }
func (self *Global) String() string { return "@" + self.Name }

type Undef struct {
    Ty *Type
}

var (
    undefmtx   sync.Mutex
    undefcache = make(map[*Type]*Undef)
)

// UndefOf returns the interned undef value of type ty.
func UndefOf(ty *Type) *Undef {
    undefmtx.Lock()
    defer undefmtx.Unlock()
    if v, ok := undefcache[ty]; ok {
        return v
    }
    v := &Undef { Ty: ty }
    undefcache[ty] = v
    return v
}

func (self *Undef) Type() *Type    { return self.Ty }
func (self *Undef) String() string { return "undef" }
