// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the project configuration of the protoloader command:
// which proto files are compiled with which options, and where the external
// tools live.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/bufbuild/protoloader"
)

// DefaultFile is the name of the configuration file looked up by default.
const DefaultFile = "protoloader.yaml"

// DefaultInclude is the pattern used by a configuration without rules.
const DefaultInclude = "**/*.proto"

// Config is the contents of a configuration file.
type Config struct {
	Resolve Resolve `yaml:"resolve"`
	Rules   []Rule  `yaml:"rules"`
}

// Resolve holds the module resolution settings of the project. They play
// the part of a bundler's own resolution config.
type Resolve struct {
	// Directories that imports are searched in, for rules whose options do
	// not name their own paths.
	Modules []string `yaml:"modules"`
}

// Rule selects files by glob and assigns loader options to them.
type Rule struct {
	// doublestar patterns, matched against slash-separated paths relative to
	// the project root
	Include []string  `yaml:"include"`
	Exclude []string  `yaml:"exclude"`
	Options yaml.Node `yaml:"options"`

	options protoloader.Options
}

// Load reads and parses the configuration file at name.
func Load(fs afero.Fs, name string) (*Config, error) {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// Parse parses configuration data. Unknown keys, invalid patterns and
// invalid loader options are errors. Empty data yields a configuration with
// a single rule that matches every proto file.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = []Rule{{Include: []string{DefaultInclude}}}
	}
	for i := range cfg.Rules {
		rule := &cfg.Rules[i]
		if len(rule.Include) == 0 {
			return nil, fmt.Errorf("rule %d: include must not be empty", i)
		}
		for _, pattern := range append(append([]string(nil), rule.Include...), rule.Exclude...) {
			if !doublestar.ValidatePattern(pattern) {
				return nil, fmt.Errorf("rule %d: invalid pattern %q", i, pattern)
			}
		}
		opts, err := protoloader.DecodeOptionsNode(&rule.Options)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rule.options = opts
	}
	return &cfg, nil
}

// Match returns the options of the first rule that includes the file at
// rel, a path relative to the project root, and does not exclude it. If the
// rule's options name no search paths, the configured modules are used.
func (c *Config) Match(rel string) (protoloader.Options, bool) {
	rel = path.Clean(strings.ReplaceAll(rel, `\`, "/"))
	for _, rule := range c.Rules {
		if !matchAny(rule.Include, rel) || matchAny(rule.Exclude, rel) {
			continue
		}
		opts := rule.options
		if opts.Paths == nil && c.Resolve.Modules != nil {
			opts.Paths = append([]string(nil), c.Resolve.Modules...)
		}
		return opts, true
	}
	return protoloader.Options{}, false
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		// patterns were validated in Parse
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
