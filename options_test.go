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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecodeOptions(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		expected Options
	}{
		{
			name:     "empty",
			input:    "",
			expected: Options{},
		},
		{
			name: "all",
			input: `
target: json-module
paths: [/a, /b]
pbjsArgs: [--no-encode]
pbts: true
`,
			expected: Options{
				Target:   "json-module",
				Paths:    []string{"/a", "/b"},
				PbjsArgs: []string{"--no-encode"},
				Pbts:     &DeclarationOptions{},
			},
		},
		{
			name:     "pbts disabled",
			input:    `pbts: false`,
			expected: Options{},
		},
		{
			name:     "pbts args",
			input:    `pbts: {args: [--no-comments]}`,
			expected: Options{Pbts: &DeclarationOptions{Args: []string{"--no-comments"}}},
		},
		{
			name:     "json shorthand",
			input:    `json: true`,
			expected: Options{Target: "json-module"},
		},
		{
			name:     "json false",
			input:    `json: false`,
			expected: Options{Target: DefaultTarget},
		},
		{
			name:     "json agrees with target",
			input:    `{"json": true, "target": "json-module"}`,
			expected: Options{Target: "json-module"},
		},
		{
			name:     "explicitly no paths",
			input:    `paths: []`,
			expected: Options{Paths: []string{}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			opts, err := DecodeOptions([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, opts)
		})
	}
}

func TestDecodeOptions_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		input string
		key   string
	}{
		{name: "unknown key", input: `foo: bar`},
		{name: "wrong type", input: `paths: /a`},
		{name: "unknown target", input: `target: typescript`, key: "target"},
		{name: "json conflicts with target", input: "json: true\ntarget: static", key: "json"},
		{name: "unknown pbts key", input: `pbts: {out: x}`},
		{name: "pbts output", input: `pbts: {output: x}`},
		{name: "pbts list", input: `pbts: [a]`},
		{name: "empty path", input: `paths: [""]`, key: "paths"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeOptions([]byte(tc.input))
			require.Error(t, err)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %T", err)
			assert.Equal(t, tc.key, cfgErr.Key)
		})
	}
}

func TestDecodeOptionsNode(t *testing.T) {
	t.Parallel()
	var doc struct {
		Options yaml.Node `yaml:"options"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("options:\n  target: static\n  paths: [x]\n"), &doc))
	opts, err := DecodeOptionsNode(&doc.Options)
	require.NoError(t, err)
	assert.Equal(t, Options{Target: "static", Paths: []string{"x"}}, opts)

	require.NoError(t, yaml.Unmarshal([]byte("options:\n  bogus: 1\n"), &doc))
	_, err = DecodeOptionsNode(&doc.Options)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	opts, err = DecodeOptionsNode(&yaml.Node{})
	require.NoError(t, err)
	assert.Equal(t, Options{}, opts)
}

func TestOptionsWithDefaults(t *testing.T) {
	t.Parallel()
	host := &testHost{resource: "/proj/foo.proto", modules: []string{"/node_modules"}}

	opts := Options{}.withDefaults(host)
	assert.Equal(t, DefaultTarget, opts.Target)
	assert.Equal(t, []string{"/node_modules"}, opts.Paths)

	opts = Options{Target: "json", Paths: []string{}}.withDefaults(host)
	assert.Equal(t, "json", opts.Target)
	assert.Empty(t, opts.Paths)
}
