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
    `strings`
)

func (self *Func) String() string {
    args := make([]string, 0, len(self.Args))
    for _, a := range self.Args {
        args = append(args, fmt.Sprintf("%s %s", a.Ty, a))
    }

    buf := []string {
        fmt.Sprintf("func @%s(%s) {", self.Name, strings.Join(args, ", ")),
    }

    /* print every block in layout order, reachable or not */
    for _, bb := range self.Blocks {
        preds := make([]string, 0, len(bb.Pred))
        for _, p := range bb.Pred {
            preds = append(preds, fmt.Sprintf("bb_%d", p.Id))
        }
        if len(preds) == 0 {
            buf = append(buf, fmt.Sprintf("bb_%d:", bb.Id))
        } else {
            buf = append(buf, fmt.Sprintf("bb_%d:    ; pred = {%s}", bb.Id, strings.Join(preds, ", ")))
        }
        for _, p := range bb.Phi {
            buf = append(buf, "    " + p.defString())
        }
        for _, p := range bb.Ins {
            buf = append(buf, "    " + p.defString())
        }
        if bb.Term != nil {
            buf = append(buf, "    " + bb.Term.defString())
        }
    }

    buf = append(buf, "}")
    return strings.Join(buf, "\n")
}
