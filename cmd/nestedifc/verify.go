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

	"github.com/spf13/cobra"
	"github.com/viniciusfdasilva/nestedifcombine/internal/ssa"
	"go.uber.org/multierr"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [files...]",
	Short: "Parse and verify textual IR files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var errs error
		for _, file := range args {
			if err := verifyFile(cmd, file); err != nil {
				errs = multierr.Append(errs, err)
				errorStyle.Fprintf(cmd.OutOrStdout(), "%s: FAIL\n", file)
				for _, e := range multierr.Errors(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", e)
				}
			} else {
				okStyle.Fprintf(cmd.OutOrStdout(), "%s: ok\n", file)
			}
		}
		if n := len(multierr.Errors(errs)); n != 0 {
			return fmt.Errorf("%d problem(s) found", n)
		}
		return nil
	},
}

func verifyFile(cmd *cobra.Command, file string) error {
	mod, err := parseFile(cmd, file)
	if err != nil {
		return err
	}

	var errs error
	for _, fn := range mod.Funcs {
		errs = multierr.Append(errs, ssa.Verify(fn))
	}
	return errs
}
