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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}
}

func newTestGlobalState(t *testing.T) (*globalState, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	gs := newGlobalState()
	gs.stdout = &stdout
	gs.stderr = &bytes.Buffer{}
	gs.logger = logrus.New()
	gs.logger.SetOutput(gs.stderr)
	return gs, &stdout
}

func execute(t *testing.T, gs *globalState, args ...string) error {
	t.Helper()
	cmd := newRootCommand(gs)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestDepsCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"root.proto":      `syntax = "proto3"; import "a.proto"; import "google/protobuf/empty.proto";`,
		"lib/a.proto":     `syntax = "proto3"; import "sub/b.proto";`,
		"lib/sub/b.proto": `syntax = "proto3";`,
	})
	gs, stdout := newTestGlobalState(t)

	err := execute(t, gs, "-C", dir, "deps", "root.proto", "-p", "lib")
	require.NoError(t, err)
	lib := filepath.ToSlash(filepath.Join(dir, "lib"))
	assert.Equal(t, lib+"/a.proto\n"+lib+"/sub/b.proto\n", stdout.String())
}

func TestDepsCommand_ConfigModules(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"protoloader.yaml": "resolve:\n  modules: [vendor]\n",
		"root.proto":       `syntax = "proto3"; import "a.proto";`,
		"vendor/a.proto":   `syntax = "proto3";`,
	})
	gs, stdout := newTestGlobalState(t)

	require.NoError(t, execute(t, gs, "-C", dir, "deps", "root.proto"))
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "vendor", "a.proto"))+"\n", stdout.String())
}

func TestDepsCommand_Unresolved(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"root.proto": `syntax = "proto3"; import "missing.proto";`,
	})
	gs, _ := newTestGlobalState(t)

	err := execute(t, gs, "-C", dir, "deps", "root.proto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `could not resolve import "missing.proto"`)
}

// fakePbjs installs a shell script that prints a fixed module, and points
// PROTOLOADER_PBJS at it.
func fakePbjs(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	bin := t.TempDir()
	script := "#!/bin/sh\nfor last; do :; done\ngrep -q BROKEN \"$last\" && { echo 'illegal token' >&2; exit 1; }\necho '// generated'\n"
	path := filepath.Join(bin, "pbjs")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PROTOLOADER_PBJS", path)
	t.Setenv("PROTOLOADER_PBTS", filepath.Join(bin, "no-pbts"))
}

func TestBuildCommand(t *testing.T) {
	fakePbjs(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"protoloader.yaml": "resolve:\n  modules: [lib]\nrules:\n  - include: [\"api/**/*.proto\"]\n",
		"api/v1/foo.proto": `syntax = "proto3"; import "common.proto";`,
		"lib/common.proto": `syntax = "proto3";`,
		"other/skip.proto": `syntax = "proto3";`,
		".hidden/x.proto":  `syntax = "proto3";`,
	})
	gs, _ := newTestGlobalState(t)

	err := execute(t, gs, "-C", dir, "build", "--out-dir", "out", "--depfile", "out/protos.d", "-j", "2")
	require.NoError(t, err)

	module, err := os.ReadFile(filepath.Join(dir, "out", "api", "v1", "foo.proto.js"))
	require.NoError(t, err)
	assert.Equal(t, "// generated\n", string(module))
	_, err = os.Stat(filepath.Join(dir, "out", "other", "skip.proto.js"))
	assert.True(t, os.IsNotExist(err))

	depfile, err := os.ReadFile(filepath.Join(dir, "out", "protos.d"))
	require.NoError(t, err)
	assert.Contains(t, string(depfile), filepath.Join(dir, "api", "v1", "foo.proto"))
	assert.Contains(t, string(depfile), filepath.ToSlash(filepath.Join(dir, "lib", "common.proto")))
}

func TestBuildCommand_Failure(t *testing.T) {
	fakePbjs(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"good.proto": `syntax = "proto3";`,
		"bad.proto":  `BROKEN`,
	})
	gs, _ := newTestGlobalState(t)

	err := execute(t, gs, "-C", dir, "build", "good.proto", "bad.proto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, err.Error(), "illegal token")

	module, err := os.ReadFile(filepath.Join(dir, "good.proto.js"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(module), "// generated"))
}
