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
    `os`
    `strings`

    `github.com/davecgh/go-spew/spew`
)

var debugconf = spew.ConfigState {
    Indent                  : "    ",
    DisableMethods          : true,
    DisablePointerAddresses : true,
    DisableCapacities       : true,
    SortKeys                : true,
    MaxDepth                : 3,
}

// dump prints the pass state after a step when debugging is on.
func (self *_Pass) dump(caption string) {
    if !self.debug {
        return
    }

    buf := []string {
        fmt.Sprintf("--- %s ---", caption),
        self.fn.String(),
    }

    for _, fe := range self.factors {
        buf = append(buf, fmt.Sprintf(
            "%s DS=%v CBA=%v L=%v WBA=%v HRU=%v",
            fe, fe.DownSafe, fe.CanBeAvail, fe.Later, fe.WillBeAvail(), fe.HRU,
        ))
    }

    for _, pe := range self.pelist {
        if pe.Kind != EBasic {
            continue
        }
        occ := make([]string, 0, len(self.peinsts[pe]))
        for _, i := range self.peinsts[pe] {
            ve := self.instve[i]
            occ = append(occ, fmt.Sprintf("%s@v%d(s=%v,r=%v)", i, ve.Ver, ve.Save, ve.Reload))
        }
        buf = append(buf, fmt.Sprintf("%s: %s", debugconf.Sdump(pe.Args), strings.Join(occ, " ")))
    }

    fmt.Fprintln(os.Stderr, strings.Join(buf, "\n"))
}
