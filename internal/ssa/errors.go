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
    `errors`
    `fmt`
)

// ErrStepLimit is returned by the emulator when a function runs for too long.
var ErrStepLimit = errors.New("ssa: step limit exceeded")

// SyntaxError occures when failed to parse the textual IR.
type SyntaxError struct {
    Line   int
    Src    string
    Reason string
}

func (self SyntaxError) Error() string {
    return fmt.Sprintf("Syntax error at line %d: %s", self.Line, self.Reason)
}

// VerifyError describes one structural defect found in a function.
type VerifyError struct {
    Func   string
    Block  string
    Reason string
}

func (self VerifyError) Error() string {
    if self.Block == "" {
        return fmt.Sprintf("invalid function @%s: %s", self.Func, self.Reason)
    } else {
        return fmt.Sprintf("invalid function @%s: %s: %s", self.Func, self.Block, self.Reason)
    }
}

func esyntax(line int, src string, reason string) SyntaxError {
    return SyntaxError {
        Line   : line,
        Src    : src,
        Reason : reason,
    }
}

func everify(fn *Func, bb *BasicBlock, format string, args ...interface{}) VerifyError {
    ret := VerifyError {
        Func   : fn.Name,
        Reason : fmt.Sprintf(format, args...),
    }

    /* function level errors have no block */
    if bb != nil {
        ret.Block = bb.String()
    }

    /* all done */
    return ret
}
