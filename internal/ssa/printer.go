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

package ssa

import (
    `fmt`
    `strings`
)

func (self *Func) String() string {
    args := make([]string, 0, len(self.Params))
    buf := make([]string, 0, self.NumBlocks() * 4 + 2)

    /* dump the parameters */
    for _, p := range self.Params {
        args = append(args, p.String())
    }

    /* function header */
    buf = append(buf, fmt.Sprintf("func @%s(%s) {", self.Name, strings.Join(args, ", ")))

    /* print every block */
    for _, bb := range self.Blocks() {
        buf = append(buf, bb.String() + ":")
        for _, v := range bb.Phi { buf = append(buf, "    " + v.String()) }
        for _, v := range bb.Ins { buf = append(buf, "    " + v.String()) }

        /* terminators are printed last */
        if bb.Term != nil {
            buf = append(buf, "    " + bb.Term.String())
        }
    }

    /* join them together */
    buf = append(buf, "}")
    return strings.Join(buf, "\n")
}

func (self *Module) String() string {
    buf := make([]string, 0, len(self.Funcs))
    for _, fn := range self.Funcs { buf = append(buf, fn.String()) }
    return strings.Join(buf, "\n\n") + "\n"
}
