/*
 * Copyright 2022 CloudWeGo Authors
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
	"fmt"

	"github.com/viniciusfdasilva/nestedifcombine/internal/opts"
	"github.com/viniciusfdasilva/nestedifcombine/internal/pipeline"
	"go.uber.org/zap"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithPipeline sets the passes to run, for example
//
//	fixpoint(nested-if-combine,block-merge),tdce
//
// Panics if the pipeline cannot be parsed.
//
// The default value of this option is "nested-if-combine".
func WithPipeline(p string) Option {
	if _, err := pipeline.Parse(p); err != nil {
		panic(fmt.Sprintf("nestedifcombine: invalid pipeline: %v", err))
	} else {
		return func(o *opts.Options) { o.Pipeline = p }
	}
}

// WithStrict only merges branches whose inner predicate is already available
// at the outer branch, which makes the eager evaluation of the combined
// predicate safe even for inputs that violate SSA dominance.
func WithStrict(v bool) Option {
	return func(o *opts.Options) { o.Strict = v }
}

// WithMaxRounds sets the maximum rounds of each fixpoint group.
//
// Set this option to "0" disables this limit.
//
// The default value of this option is "16".
func WithMaxRounds(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("nestedifcombine: invalid max rounds: %d", n))
	} else {
		return func(o *opts.Options) { o.MaxRounds = n }
	}
}

// WithVerify appends the structural verifier to the end of the pipeline.
func WithVerify(v bool) Option {
	return func(o *opts.Options) { o.Verify = v }
}

// WithLogger sets the logger used by the passes. Matched branches are logged
// at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *opts.Options) { o.Logger = l }
}

// SetMaxRounds sets the default maximum rounds of fixpoint groups from now on.
//
// This value can also be configured with the `NESTEDIF_MAX_ROUNDS`
// environment variable.
//
// Returns the old opts.MaxRounds value.
func SetMaxRounds(n int) int {
	n, opts.MaxRounds = opts.MaxRounds, n
	return n
}

// SetStrict sets the default strict mode from now on.
//
// This value can also be configured with the `NESTEDIF_STRICT` environment
// variable.
//
// Returns the old opts.Strict value.
func SetStrict(v bool) bool {
	v, opts.Strict = opts.Strict, v
	return v
}

// SetPipeline sets the default pipeline from now on, panics if it cannot be
// parsed.
//
// This value can also be configured with the `NESTEDIF_PIPELINE` environment
// variable.
//
// Returns the old opts.Pipeline value.
func SetPipeline(p string) string {
	if _, err := pipeline.Parse(p); err != nil {
		panic(fmt.Sprintf("nestedifcombine: invalid pipeline: %v", err))
	}
	p, opts.Pipeline = opts.Pipeline, p
	return p
}
