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

// TargetLibraryInfo describes which library routines the target
// provides and which of them are pure. The optimizer never touches
// calls, recognized or not; the simplifier consults the table when
// folding a call to a pure routine with a constant argument.
type TargetLibraryInfo struct {
    pure map[string]bool
}

var stdpure = []string {
    "abs",
    "labs",
    "fabs",
    "sqrt",
    "floor",
    "ceil",
    "memcmp",
    "strlen",
}

// NewTargetLibraryInfo returns a table preloaded with the common
// pure libc routines.
func NewTargetLibraryInfo() *TargetLibraryInfo {
    t := &TargetLibraryInfo { pure: make(map[string]bool, len(stdpure)) }
    for _, s := range stdpure {
        t.pure[s] = true
    }
    return t
}

// Add registers a library routine.
func (self *TargetLibraryInfo) Add(name string, pure bool) {
    self.pure[name] = pure
}

// Has reports whether the routine is recognized at all.
func (self *TargetLibraryInfo) Has(name string) bool {
    if self == nil {
        return false
    }
    _, ok := self.pure[name]
    return ok
}

// IsPure reports whether the routine is recognized and side-effect
// free.
func (self *TargetLibraryInfo) IsPure(name string) bool {
    if self == nil {
        return false
    }
    return self.pure[name]
}
