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

package analysis

import (
    `github.com/cloudwego/ssapre/ir`
)

// AssumptionCache records per-function value facts the caller has
// proven out of band. The simplifier consults it before folding
// operations that are only valid under such a fact, e.g. removing a
// division guard.
type AssumptionCache struct {
    nonzero map[ir.Value]struct{}
}

func NewAssumptionCache() *AssumptionCache {
    return &AssumptionCache {
        nonzero: make(map[ir.Value]struct{}),
    }
}

// AssumeNonZero registers the fact that v is never zero.
func (self *AssumptionCache) AssumeNonZero(v ir.Value) {
    self.nonzero[v] = struct{}{}
}

// NonZero reports whether v is known to be non-zero.
func (self *AssumptionCache) NonZero(v ir.Value) bool {
    if self == nil {
        return false
    }
    if c, ok := v.(*ir.Const); ok {
        return c.Int != 0
    }
    _, ok := self.nonzero[v]
    return ok
}
