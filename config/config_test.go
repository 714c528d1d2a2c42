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

package config

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protoloader"
)

const testConfig = `
resolve:
  modules: [node_modules, proto]
rules:
  - include: ["api/**/*.proto"]
    exclude: ["api/internal/**"]
    options:
      target: json-module
      pbts: {args: [--no-comments]}
  - include: ["**/*.proto"]
    options:
      paths: [third_party]
`

func TestParse(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(testConfig))
	require.NoError(t, err)
	assert.Equal(t, []string{"node_modules", "proto"}, cfg.Resolve.Modules)
	require.Len(t, cfg.Rules, 2)

	opts, ok := cfg.Match("api/v1/service.proto")
	require.True(t, ok)
	assert.Equal(t, protoloader.Options{
		Target: "json-module",
		Paths:  []string{"node_modules", "proto"},
		Pbts:   &protoloader.DeclarationOptions{Args: []string{"--no-comments"}},
	}, opts)

	// excluded by the first rule, so the second one applies
	opts, ok = cfg.Match("api/internal/secret.proto")
	require.True(t, ok)
	assert.Equal(t, protoloader.Options{Paths: []string{"third_party"}}, opts)

	opts, ok = cfg.Match(`other\thing.proto`)
	require.True(t, ok)
	assert.Equal(t, []string{"third_party"}, opts.Paths)

	_, ok = cfg.Match("README.md")
	assert.False(t, ok)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, []string{DefaultInclude}, cfg.Rules[0].Include)

	opts, ok := cfg.Match("a/b/c.proto")
	require.True(t, ok)
	assert.Equal(t, protoloader.Options{}, opts)
	_, ok = cfg.Match("a/b/c.txt")
	assert.False(t, ok)
}

func TestMatch_DoesNotShareSlices(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte("resolve: {modules: [a]}"))
	require.NoError(t, err)
	opts, ok := cfg.Match("x.proto")
	require.True(t, ok)
	opts.Paths[0] = "changed"
	assert.Equal(t, []string{"a"}, cfg.Resolve.Modules)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		input string
	}{
		{name: "unknown top-level key", input: "loaders: []"},
		{name: "unknown resolve key", input: "resolve: {alias: {}}"},
		{name: "unknown rule key", input: "rules: [{test: x}]"},
		{name: "no include", input: "rules: [{exclude: [x]}]"},
		{name: "bad pattern", input: `rules: [{include: ["[a-"]}]`},
		{name: "bad options", input: "rules: [{include: [x], options: {json: maybe}}]"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.input))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("rules: [{include: [x], options: {target: ts}}]"))
	var cfgErr *protoloader.ConfigError
	require.True(t, errors.As(err, &cfgErr), "%v", err)
	assert.Equal(t, "target", cfgErr.Key)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/protoloader.yaml", []byte(testConfig), 0o644))

	cfg, err := Load(fs, "/proj/protoloader.yaml")
	require.NoError(t, err)
	assert.Len(t, cfg.Rules, 2)

	_, err = Load(fs, "/proj/missing.yaml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/proj/bad.yaml", []byte("bogus: true"), 0o644))
	_, err = Load(fs, "/proj/bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/proj/bad.yaml")
}
