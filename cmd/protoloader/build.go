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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bufbuild/protoloader"
	"github.com/bufbuild/protoloader/config"
	"github.com/bufbuild/protoloader/internal/depfile"
	"github.com/bufbuild/protoloader/tool"
)

type buildOptions struct {
	outDir      string
	depFile     string
	parallelism int
}

// buildJob is one proto file to compile.
type buildJob struct {
	source string // absolute
	output string // absolute
	opts   protoloader.Options
}

func newBuildCommand(gs *globalState) *cobra.Command {
	var bo buildOptions
	buildCmd := &cobra.Command{
		Use:   "build [file...]",
		Short: "Compile proto files",
		Long: `Compile proto files into JavaScript modules.

Without arguments, every file under the project root that matches a rule of
the configuration is compiled. Each module is written next to its source, or
under --out-dir at the same relative path, with a ".js" suffix.`,
		Example: `
  # Compile everything matched by protoloader.yaml.
  protoloader build

  # Compile one file and write a depfile for make.
  protoloader build --depfile build/protos.d proto/foo.proto`[1:],
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), gs, bo, args)
		},
	}
	flags := buildCmd.Flags()
	flags.StringVarP(&bo.outDir, "out-dir", "o", "", "directory for generated modules")
	flags.StringVar(&bo.depFile, "depfile", "", "write a make-style dependency file")
	flags.IntVarP(&bo.parallelism, "parallel", "j", 0, "number of files compiled at the same time (default from PROTOLOADER_PARALLELISM or one per CPU)")
	return buildCmd
}

func runBuild(ctx context.Context, gs *globalState, bo buildOptions, args []string) error {
	cfg, err := gs.loadConfig()
	if err != nil {
		return err
	}
	jobs, err := planBuild(gs, cfg, bo, args)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		gs.logger.Warn("no proto files to compile")
		return nil
	}

	pbjs, err := tool.Lookup("pbjs", gs.env.Pbjs)
	if err != nil {
		return err
	}
	loader := &protoloader.Loader{
		Pbjs:   pbjs,
		Fs:     gs.fs,
		Logger: gs.logger,
	}
	// only needed by rules that ask for declarations
	if pbts, err := tool.Lookup("pbts", gs.env.Pbts); err == nil {
		loader.Pbts = pbts
	} else {
		gs.logger.WithError(err).Debug("declarations unavailable")
	}

	par := bo.parallelism
	if par <= 0 {
		par = gs.env.Parallelism
	}
	if par <= 0 {
		par = runtime.NumCPU()
	}

	var (
		mu       sync.Mutex
		deps     = map[string][]string{}
		failures []error
	)
	var group errgroup.Group
	group.SetLimit(par)
	for _, job := range jobs {
		group.Go(func() error {
			jobDeps, err := compileOne(ctx, gs, loader, cfg, job)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				gs.logger.WithField("file", job.source).Error(err)
				failures = append(failures, fmt.Errorf("%s: %w", job.source, err))
			}
			// dependencies are still useful for files that failed
			deps[job.output] = append([]string{job.source}, jobDeps...)
			return nil
		})
	}
	_ = group.Wait()

	if bo.depFile != "" {
		if err := writeDepFile(gs, gs.abs(bo.depFile), deps); err != nil {
			return err
		}
	}
	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			return failures[i].Error() < failures[j].Error()
		})
		return fmt.Errorf("%d of %d files failed to compile: %w", len(failures), len(jobs), errors.Join(failures...))
	}
	gs.logger.WithField("files", len(jobs)).Info("build complete")
	return nil
}

// planBuild turns the command line into compile jobs.
func planBuild(gs *globalState, cfg *config.Config, bo buildOptions, args []string) ([]buildJob, error) {
	var sources []string
	if len(args) == 0 {
		err := afero.Walk(gs.fs, gs.rootDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if path != gs.rootDir && strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(gs.rootDir, path)
			if err != nil {
				return err
			}
			if _, ok := cfg.Match(filepath.ToSlash(rel)); ok {
				sources = append(sources, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		for _, arg := range args {
			sources = append(sources, gs.abs(arg))
		}
	}

	jobs := make([]buildJob, 0, len(sources))
	for _, source := range sources {
		rel, err := filepath.Rel(gs.rootDir, source)
		if err != nil {
			return nil, err
		}
		// files named on the command line are compiled even without a rule
		opts, _ := cfg.Match(filepath.ToSlash(rel))
		opts.Paths = gs.absAll(opts.Paths)

		output := source + ".js"
		if bo.outDir != "" {
			if strings.HasPrefix(rel, "..") {
				return nil, fmt.Errorf("%s is outside of the project root %s", source, gs.rootDir)
			}
			output = filepath.Join(gs.abs(bo.outDir), rel+".js")
		}
		jobs = append(jobs, buildJob{source: source, output: output, opts: opts})
	}
	return jobs, nil
}

func compileOne(ctx context.Context, gs *globalState, loader *protoloader.Loader, cfg *config.Config, job buildJob) ([]string, error) {
	source, err := afero.ReadFile(gs.fs, job.source)
	if err != nil {
		return nil, err
	}
	host := &fileHost{
		resourcePath: job.source,
		modulePaths:  gs.absAll(cfg.Resolve.Modules),
	}
	if host.modulePaths == nil {
		host.modulePaths = []string{}
	}
	compiled, err := loader.Load(ctx, host, source, job.opts)
	if err != nil {
		return host.dependencies(), err
	}
	if err := gs.fs.MkdirAll(filepath.Dir(job.output), 0o755); err != nil {
		return host.dependencies(), err
	}
	if err := afero.WriteFile(gs.fs, job.output, []byte(compiled), 0o644); err != nil {
		return host.dependencies(), err
	}
	gs.logger.WithField("file", job.output).Debug("wrote module")
	return host.dependencies(), nil
}

func writeDepFile(gs *globalState, name string, deps map[string][]string) error {
	if err := gs.fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := gs.fs.Create(name)
	if err != nil {
		return err
	}
	if err := depfile.Write(f, deps); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
