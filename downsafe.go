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

// STEP 3: down-safety.
//
// DownSafe(F) holds iff the expression value at F is anticipated on
// every path from F to exit. Renaming seeded the violations; here a
// cleared factor drags down every factor it consumes through an
// operand slot, unless a real occurrence on that edge makes the value
// used regardless. The flag only ever falls, so the backward sweep
// reaches a fixed point.
func (self *_Pass) downSafety() {
    for _, fe := range self.factors {
        if !fe.DownSafe {
            for i := range fe.Vers {
                self.resetDownSafety(fe, i)
            }
        }
    }
}

func (self *_Pass) resetDownSafety(fe *Expr, i int) {
    e := fe.Vers[i]
    if fe.HRU[i] || e.Kind != EFactor {
        return
    }
    if !e.DownSafe {
        return
    }
    e.DownSafe = false
    for j := range e.Vers {
        self.resetDownSafety(e, j)
    }
}
