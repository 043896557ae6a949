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
	"github.com/spf13/cobra"
)

var (
	dotFunc   string
	dotOutput string
)

var dotCmd = &cobra.Command{
	Use:   "dot [file]",
	Short: "Render the CFG of a function as a GraphViz file",
	Long: `Outputs the control flow graph of the specified function in DOT format.
Example) nestedifc dot --func f -o f.gv prog.ir`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mod, err := parseFile(cmd, args[0])
		if err != nil {
			return err
		}
		fn, err := lookupFunc(mod, dotFunc)
		if err != nil {
			return err
		}
		return writeOutput(cmd, dotOutput, fn.Dot())
	},
}

func init() {
	dotCmd.Flags().StringVar(&dotFunc, "func", "", "Function to render")
	dotCmd.Flags().StringVarP(&dotOutput, "output", "o", "", "Output path for rendered GraphViz file")
}
