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

package opts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name looked up by the command line tool.
const DefaultConfigFile = ".nestedifc.yaml"

// FileConfig is the YAML form of Options. Absent keys leave the
// corresponding option untouched.
type FileConfig struct {
	Pipeline  *string `yaml:"pipeline,omitempty"`
	Strict    *bool   `yaml:"strict,omitempty"`
	MaxRounds *int    `yaml:"max_rounds,omitempty"`
	Verify    *bool   `yaml:"verify,omitempty"`
}

// ParseConfig decodes a YAML configuration, unknown keys are rejected.
func ParseConfig(data []byte) (*FileConfig, error) {
	cfg := new(FileConfig)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	/* an empty document is an empty configuration */
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	/* validate the values */
	if cfg.MaxRounds != nil && *cfg.MaxRounds < 0 {
		return nil, fmt.Errorf("invalid max_rounds: %d", *cfg.MaxRounds)
	} else {
		return cfg, nil
	}
}

// LoadConfig reads and decodes the configuration file at path.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	/* decode the file */
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	} else {
		return cfg, nil
	}
}

// Apply overrides the fields of o that are present in the configuration.
func (self *FileConfig) Apply(o *Options) {
	if self.Pipeline != nil {
		o.Pipeline = *self.Pipeline
	}
	if self.Strict != nil {
		o.Strict = *self.Strict
	}
	if self.MaxRounds != nil {
		o.MaxRounds = *self.MaxRounds
	}
	if self.Verify != nil {
		o.Verify = *self.Verify
	}
}

// ConfigOf returns the configuration that reproduces o entirely.
func ConfigOf(o Options) *FileConfig {
	return &FileConfig{
		Pipeline:  &o.Pipeline,
		Strict:    &o.Strict,
		MaxRounds: &o.MaxRounds,
		Verify:    &o.Verify,
	}
}

// Marshal encodes the configuration as YAML.
func (self *FileConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(self)
}
