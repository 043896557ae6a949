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
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viniciusfdasilva/nestedifcombine/internal/ssa"
)

var (
	runFunc  string
	runSteps int
)

var runCmd = &cobra.Command{
	Use:   "run [file] [args...]",
	Short: "Interpret a function and print its calls and results",
	Long: `Runs a function of the given file with integer arguments. Every call is
printed in order, followed by the returned values.
Example) nestedifc run --func f prog.ir 1 0`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mod, err := parseFile(cmd, args[0])
		if err != nil {
			return err
		}
		fn, err := lookupFunc(mod, runFunc)
		if err != nil {
			return err
		}

		in := make([]int64, 0, len(args)-1)
		for _, v := range args[1:] {
			iv, err := strconv.ParseInt(v, 0, 64)
			if err != nil {
				return fmt.Errorf("invalid argument %q", v)
			}
			in = append(in, iv)
		}

		emu := ssa.NewEmulator()
		emu.MaxSteps = runSteps
		rv, err := emu.Call(fn, in...)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, c := range emu.Trace {
			fmt.Fprintf(w, "call @%s(%s)\n", c.Fn, joinInts(c.Args))
		}
		fmt.Fprintf(w, "ret %s\n", joinInts(rv))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFunc, "func", "", "Function to run")
	runCmd.Flags().IntVar(&runSteps, "steps", 1<<16, "Maximum number of executed blocks, 0 means unlimited")
}

func joinInts(v []int64) string {
	buf := make([]string, 0, len(v))
	for _, x := range v {
		buf = append(buf, strconv.FormatInt(x, 10))
	}
	return strings.Join(buf, ", ")
}
