// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/consensys/go-truthtree/pkg/tree"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked for in the working directory.
const DefaultFile = ".truthtree.yaml"

// Environment variables which override the configuration file.
const (
	StoreEnv    = "TRUTHTREE_STORE"
	LogLevelEnv = "TRUTHTREE_LOG_LEVEL"
)

var validate = validator.New()

// Config holds the settings shared by all commands.
type Config struct {
	// Options given to newly created trees.
	Options tree.Options `yaml:"options"`
	// Path of the tree library.
	Store string `yaml:"store" validate:"required"`
	// Quiet period after a file changes before it is rechecked.
	Debounce time.Duration `yaml:"debounce" validate:"gte=0,lte=1m"`
	// Number of trees checked in parallel (0 means one per CPU).
	Jobs int `yaml:"jobs" validate:"gte=0,lte=1024"`
	// Default logging level.
	LogLevel string `yaml:"log_level" validate:"oneof=panic fatal error warn warning info debug trace"`
	// Replacements applied to text written by edit scripts, such as
	// "forall" for "∀".
	Substitutions map[string]string `yaml:"substitutions" validate:"dive,keys,required,endkeys"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Options:  tree.DefaultOptions(),
		Store:    ".truthtree/trees.db",
		Debounce: 250 * time.Millisecond,
		Jobs:     0,
		LogLevel: "info",
		Substitutions: map[string]string{
			"forall": "∀",
			"exists": "∃",
			"<->":    "↔",
			"->":     "→",
			"~":      "¬",
		},
	}
}

// Load reads the configuration from a given file, on top of the defaults.
// When no file is given, DefaultFile is used if it exists.  Environment
// variables are applied last.
func Load(filename string) (Config, error) {
	var (
		config = Default()
		name   = filename
	)
	//
	if name == "" {
		name = DefaultFile
	}
	//
	data, err := readFile(filename)
	if err != nil {
		return config, err
	} else if err = config.decode(data); err != nil {
		return config, fmt.Errorf("%s: %w", name, err)
	}
	//
	config.applyEnv()
	//
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}
	//
	return config, nil
}

// Parse reads the configuration from YAML text, on top of the defaults.
func Parse(data []byte) (Config, error) {
	config := Default()
	//
	if err := config.decode(data); err != nil {
		return config, err
	} else if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}
	//
	return config, nil
}

// Validate checks every setting is within range.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Level returns the logging level to use.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	//
	return level
}

// Workers returns the number of trees to check in parallel.
func (c *Config) Workers() int {
	if c.Jobs == 0 {
		return runtime.NumCPU()
	}
	//
	return c.Jobs
}

func (c *Config) decode(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	//
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	//
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(StoreEnv); v != "" {
		c.Store = v
	}
	//
	if v := os.Getenv(LogLevelEnv); v != "" {
		c.LogLevel = v
	}
}

// Read a configuration file.  A missing default file is not an error, and
// yields no data.
func readFile(filename string) ([]byte, error) {
	if filename != "" {
		return os.ReadFile(filename)
	}
	//
	data, err := os.ReadFile(DefaultFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	//
	return data, err
}
