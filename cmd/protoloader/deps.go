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
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bufbuild/protoloader"
)

func newDepsCommand(gs *globalState) *cobra.Command {
	var paths []string
	depsCmd := &cobra.Command{
		Use:   "deps file",
		Short: "List the files a proto file depends on",
		Long: `Resolve the imports of a proto file, transitively, and print the
absolute path of every file found, one per line. Standard imports such as
google/protobuf/timestamp.proto are not listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd.Context(), gs, args[0], paths)
		},
	}
	depsCmd.Flags().StringArrayVarP(&paths, "proto_path", "p", nil, "import search path; may be repeated (default from the configuration)")
	return depsCmd
}

func runDeps(ctx context.Context, gs *globalState, file string, paths []string) error {
	source := gs.abs(file)
	if paths == nil {
		cfg, err := gs.loadConfig()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(gs.rootDir, source)
		if err != nil {
			return err
		}
		opts, _ := cfg.Match(filepath.ToSlash(rel))
		paths = opts.Paths
		if paths == nil {
			paths = cfg.Resolve.Modules
		}
	}

	deps := protoloader.NewDependencySet(nil)
	walker := &protoloader.Walker{
		Resolver: &protoloader.ImportResolver{
			Fs:           gs.fs,
			SearchPaths:  gs.absAll(paths),
			Exclude:      source,
			Dependencies: deps,
		},
		Fs:     gs.fs,
		Logger: gs.logger,
	}
	_, walkErr := walker.Walk(ctx, source)
	for _, dep := range deps.Paths() {
		if _, err := fmt.Fprintln(gs.stdout, dep); err != nil {
			return err
		}
	}
	return walkErr
}
