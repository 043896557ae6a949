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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/viniciusfdasilva/nestedifcombine/internal/opts"
	"github.com/viniciusfdasilva/nestedifcombine/internal/ssa"
	"go.uber.org/zap"
)

var (
	cfgFile   string
	debugMode bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "nestedifc",
	Short:         "nestedifc - combines nested conditional branches in SSA programs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %v\n", errorStyle.Sprint("error:"), err)
	}
	_ = logger.Sync()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file (default: "+opts.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Log every matched branch and pass")
	rootCmd.AddCommand(optCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(dotCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
}

func setupLogger() error {
	if !debugMode {
		logger = zap.NewNop()
		ssa.SetLogger(nil)
		return nil
	}

	/* development logger prints debug messages to stderr */
	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	logger = l
	ssa.SetLogger(l)
	return nil
}

// loadOptions returns the default options overridden by the configuration
// file, if any.
func loadOptions() (opts.Options, error) {
	o := opts.GetDefaultOptions()
	path := cfgFile

	/* look for the default file */
	if path == "" {
		if _, err := os.Stat(opts.DefaultConfigFile); err == nil {
			path = opts.DefaultConfigFile
		}
	}

	/* no configuration file */
	if path == "" {
		return o, nil
	}

	/* load the file */
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return o, err
	}
	cfg.Apply(&o)
	logger.Debug("configuration loaded", zap.String("path", path))
	return o, nil
}

// readSource reads a file, "-" reads the standard input.
func readSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// parseFile reads and parses a file, errors carry the file name.
func parseFile(cmd *cobra.Command, path string) (*ssa.Module, error) {
	src, err := readSource(cmd, path)
	if err != nil {
		return nil, err
	}
	mod, err := ssa.ParseModule(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}

// lookupFunc finds a function by name, the only function of a module is
// returned when no name is given.
func lookupFunc(mod *ssa.Module, name string) (*ssa.Func, error) {
	if name == "" {
		if len(mod.Funcs) != 1 {
			return nil, fmt.Errorf("module has %d functions, use --func to pick one", len(mod.Funcs))
		}
		return mod.Funcs[0], nil
	}
	if fn := mod.Func(name); fn != nil {
		return fn, nil
	}
	return nil, fmt.Errorf("function @%s not found", name)
}

// writeOutput writes data to path, or to the command output if path is empty.
func writeOutput(cmd *cobra.Command, path string, data string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), data)
		return err
	}
	return os.WriteFile(path, []byte(data), 0o644)
}
