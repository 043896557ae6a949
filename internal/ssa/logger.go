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
    `go.uber.org/atomic`
    `go.uber.org/zap`
)

var logger atomic.Value

func init() {
    logger.Store(zap.NewNop())
}

// Logger returns the logger used by the passes, a no-op logger by default.
func Logger() *zap.Logger {
    return logger.Load().(*zap.Logger)
}

// SetLogger replaces the pass logger, nil restores the no-op logger. It is
// safe to call while passes are running.
func SetLogger(l *zap.Logger) {
    if l == nil {
        logger.Store(zap.NewNop())
    } else {
        logger.Store(l)
    }
}
