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

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viniciusfdasilva/nestedifcombine"
	"github.com/viniciusfdasilva/nestedifcombine/internal/opts"
	"go.uber.org/zap"
)

var (
	optPasses string
	optStrict bool
	optRounds int
	optVerify bool
	optStats  bool
	optOutput string
)

var optCmd = &cobra.Command{
	Use:   "opt [files...]",
	Short: "Optimize textual IR files",
	Long: `Runs a pipeline of passes over every function of the given files and
prints the result. A file named "-" is read from the standard input.
Example) nestedifc opt --passes "fixpoint(nested-if-combine,block-merge),tdce" prog.ir`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := loadOptions()
		if err != nil {
			return err
		}

		// command line flags take precedence over the configuration file
		flags := cmd.Flags()
		if flags.Changed("passes") {
			o.Pipeline = optPasses
		}
		if flags.Changed("strict") {
			o.Strict = optStrict
		}
		if flags.Changed("rounds") {
			if optRounds < 0 {
				return fmt.Errorf("invalid --rounds: %d", optRounds)
			}
			o.MaxRounds = optRounds
		}
		if flags.Changed("verify") {
			o.Verify = optVerify
		}

		o.Logger = logger
		return runOptimize(cmd, args, o)
	},
}

func init() {
	optCmd.Flags().StringVar(&optPasses, "passes", opts.DefaultPipeline, "Pipeline of passes to run")
	optCmd.Flags().BoolVar(&optStrict, "strict", false, "Only merge when the inner predicate is available at the outer branch")
	optCmd.Flags().IntVar(&optRounds, "rounds", 16, "Maximum rounds of fixpoint groups, 0 means unlimited")
	optCmd.Flags().BoolVar(&optVerify, "verify", false, "Verify every function after the pipeline")
	optCmd.Flags().BoolVar(&optStats, "stats", false, "Print pass statistics to stderr")
	optCmd.Flags().StringVarP(&optOutput, "output", "o", "", "Output path (default: standard output)")
}

func runOptimize(cmd *cobra.Command, files []string, o opts.Options) error {
	var out []string
	setopts := func(p *opts.Options) { *p = o }

	for _, file := range files {
		src, err := readSource(cmd, file)
		if err != nil {
			return err
		}

		res, err := nestedifcombine.Optimize(src, setopts)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		logger.Debug("file optimized",
			zap.String("file", file),
			zap.Bool("changed", res.Changed),
			zap.Int64("combined", res.Stats.Combined),
		)

		if optStats {
			printStats(cmd.ErrOrStderr(), file, res.Stats)
		}
		out = append(out, res.Text)
	}

	return writeOutput(cmd, optOutput, strings.Join(out, "\n"))
}
