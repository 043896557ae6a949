/*
 * Copyright 2021 ByteDance Inc.
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

package nestedifcombine

import (
    `github.com/viniciusfdasilva/nestedifcombine/internal/pipeline`
    `github.com/viniciusfdasilva/nestedifcombine/internal/ssa`
)

type (
    // SyntaxError occures when failed to parse the textual IR.
    SyntaxError = ssa.SyntaxError

    // PipelineError occures when failed to parse the pipeline description.
    PipelineError = pipeline.PipelineError

    // VerifyError describes one structural defect found by the verifier.
    VerifyError = ssa.VerifyError
)
