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

package protoloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bufbuild/protoloader/tool"
)

// DefaultTarget is the pbjs target used when none is configured.
const DefaultTarget = tool.TargetStaticModule

var validTargets = map[string]struct{}{
	tool.TargetJSON:         {},
	tool.TargetJSONModule:   {},
	tool.TargetProto2:       {},
	tool.TargetProto3:       {},
	tool.TargetStatic:       {},
	tool.TargetStaticModule: {},
}

// OutputFunc computes where the type declarations for the proto file at
// resourcePath are written. It may block; ctx is the context of the compile.
type OutputFunc func(ctx context.Context, resourcePath string) (string, error)

// DeclarationOptions requests TypeScript declarations from pbts.
type DeclarationOptions struct {
	// Extra command line arguments for pbts.
	Args []string
	// Computes the location of the declaration file. If nil, declarations
	// are written next to the proto file, at "<resource path>.d.ts".
	Output OutputFunc
}

// Options configures a single compile.
type Options struct {
	// The pbjs output target. Defaults to DefaultTarget.
	Target string
	// Directories searched for imports, in priority order. If nil, the
	// module paths of the Host are used. An empty non-nil slice means no
	// search paths at all.
	Paths []string
	// Extra command line arguments for pbjs.
	PbjsArgs []string
	// If non-nil, declarations are generated as well.
	Pbts *DeclarationOptions
}

// Validate checks that the options are usable. Any error is a *ConfigError.
func (o Options) Validate() error {
	if o.Target != "" {
		if _, ok := validTargets[o.Target]; !ok {
			return &ConfigError{Key: "target", Err: fmt.Errorf("unknown target %q", o.Target)}
		}
	}
	for _, p := range o.Paths {
		if p == "" {
			return &ConfigError{Key: "paths", Err: errors.New("search path must not be empty")}
		}
	}
	return nil
}

func (o Options) withDefaults(host Host) Options {
	if o.Target == "" {
		o.Target = DefaultTarget
	}
	if o.Paths == nil && host != nil {
		o.Paths = host.ModulePaths()
	}
	return o
}

// rawOptions is the serialized form of Options.
type rawOptions struct {
	Target   *string          `yaml:"target"`
	JSON     *bool            `yaml:"json"`
	Paths    []string         `yaml:"paths"`
	PbjsArgs []string         `yaml:"pbjsArgs"`
	Pbts     *rawDeclarations `yaml:"pbts"`
}

// rawDeclarations accepts either a boolean or a mapping with extra args.
type rawDeclarations struct {
	enabled bool
	args    []string
}

func (d *rawDeclarations) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&d.enabled)
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expecting a boolean or a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "args":
			if err := val.Decode(&d.args); err != nil {
				return err
			}
		case "output":
			return fmt.Errorf("line %d: field output can only be set programmatically", key.Line)
		default:
			return fmt.Errorf("line %d: field %s not found in type pbts", key.Line, key.Value)
		}
	}
	d.enabled = true
	return nil
}

// DecodeOptions decodes options from YAML (or JSON) data. Unknown keys are
// rejected. Empty data yields the zero Options.
//
// Recognized keys are target, json, paths, pbjsArgs and pbts. The json key
// is a boolean shorthand: true selects the "json-module" target, false
// selects the default. The pbts key is either a boolean or a mapping with an
// args list.
func DecodeOptions(data []byte) (Options, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var raw rawOptions
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, &ConfigError{Err: err}
	}
	return raw.options()
}

// DecodeOptionsNode is like DecodeOptions, but for options embedded in a
// larger YAML document.
func DecodeOptionsNode(node *yaml.Node) (Options, error) {
	if node == nil || node.IsZero() {
		return Options{}, nil
	}
	// yaml.Node.Decode does not support KnownFields
	data, err := yaml.Marshal(node)
	if err != nil {
		return Options{}, &ConfigError{Err: err}
	}
	return DecodeOptions(data)
}

func (r *rawOptions) options() (Options, error) {
	var opts Options
	if r.Target != nil {
		opts.Target = *r.Target
	}
	if r.JSON != nil {
		switch {
		case *r.JSON && opts.Target != "" && opts.Target != tool.TargetJSONModule:
			return Options{}, &ConfigError{Key: "json", Err: fmt.Errorf("conflicts with target %q", opts.Target)}
		case *r.JSON:
			opts.Target = tool.TargetJSONModule
		case opts.Target == "":
			opts.Target = DefaultTarget
		}
	}
	opts.Paths = r.Paths
	opts.PbjsArgs = r.PbjsArgs
	if r.Pbts != nil && r.Pbts.enabled {
		opts.Pbts = &DeclarationOptions{Args: r.Pbts.args}
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
