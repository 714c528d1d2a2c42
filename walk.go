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
	"context"
	"errors"
	"io"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bufbuild/protocompile/ast"
	"github.com/bufbuild/protocompile/parser"
	"github.com/bufbuild/protocompile/reporter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Walker visits the transitive closure of the imports of a proto file. It
// does not compile anything: every file is parsed only far enough to find its
// import statements, and each import is handed to the Resolver. Resolvers
// such as ImportResolver record what they resolve, which is how the walk
// discovers dependencies.
type Walker struct {
	// Resolves import statements. This field is required.
	Resolver Resolver
	// The file system that files are read from. If nil, the OS file system
	// is used.
	Fs afero.Fs
	// The maximum number of files read and parsed at the same time. If
	// unspecified or set to a non-positive value, then
	// min(runtime.NumCPU(), runtime.GOMAXPROCS(-1)) will be used.
	MaxParallelism int
	// Receives warnings about files that could not be parsed cleanly. If nil,
	// nothing is logged.
	Logger logrus.FieldLogger
}

// Walk visits root and everything it imports, directly or indirectly. It
// returns the sorted paths of all files that were read, including root.
//
// A failure in one part of the graph does not stop the rest of the walk:
// all files that can be reached are visited before Walk returns. The first
// error encountered is returned. An import that cannot be resolved yields an
// *UnresolvedImportError. Syntax errors are logged and the imports found in
// the readable part of the file are still followed.
//
// Each file is visited at most once, so the walk terminates even if the
// import graph contains cycles.
func (w *Walker) Walk(ctx context.Context, root string) ([]string, error) {
	par := w.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if par > cpus {
			par = cpus
		}
	}

	e := walkExecutor{
		w:       w,
		fs:      w.Fs,
		log:     w.Logger,
		s:       semaphore.NewWeighted(int64(par)),
		visited: NewDependencySet(nil),
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.log == nil {
		e.log = discardLogger()
	}

	e.visit(ctx, normalizePath(root))
	err := e.group.Wait()
	return e.visited.Paths(), err
}

type walkExecutor struct {
	w   *Walker
	fs  afero.Fs
	log logrus.FieldLogger
	s   *semaphore.Weighted

	group   errgroup.Group
	visited *DependencySet
}

// visit schedules file to be processed unless it was seen before.
func (e *walkExecutor) visit(ctx context.Context, file string) {
	if !e.visited.Add(file) {
		return
	}
	e.group.Go(func() error {
		return e.process(ctx, file)
	})
}

func (e *walkExecutor) process(ctx context.Context, file string) error {
	if err := e.s.Acquire(ctx, 1); err != nil {
		return err
	}
	imports, err := e.scan(file)
	e.s.Release(1)
	if err != nil {
		return err
	}

	var errs []error
	for _, imp := range imports {
		resolved, ok := e.w.Resolver.ResolvePath(file, imp)
		if !ok {
			errs = append(errs, &UnresolvedImportError{Origin: file, Target: imp})
			continue
		}
		if IsStandardImport(resolved) {
			// bundled with the compiler; nothing to read
			continue
		}
		e.visit(ctx, resolved)
	}
	return errors.Join(errs...)
}

// scan returns the import paths declared in file.
func (e *walkExecutor) scan(file string) ([]string, error) {
	f, err := e.fs.Open(filepath.FromSlash(file))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return scanImports(file, f, e.log)
}

// scanImports parses the proto source in r and returns the paths of its
// import statements, in declaration order.
func scanImports(name string, r io.Reader, log logrus.FieldLogger) ([]string, error) {
	var mu sync.Mutex
	var syntaxErrs int
	rep := reporter.NewReporter(
		func(err reporter.ErrorWithPos) error {
			mu.Lock()
			syntaxErrs++
			mu.Unlock()
			log.WithField("file", name).WithError(err).Warn("syntax error while scanning imports")
			// keep going: imports before the error are still useful
			return nil
		},
		nil,
	)
	node, err := parser.Parse(name, r, reporter.NewHandler(rep))
	if node == nil {
		return nil, err
	}
	if err != nil && syntaxErrs == 0 {
		// not a syntax problem, probably I/O
		return nil, err
	}

	var imports []string
	for _, decl := range node.Decls {
		imp, ok := decl.(*ast.ImportNode)
		if !ok || imp.Name == nil {
			continue
		}
		imports = append(imports, imp.Name.AsString())
	}
	return imports, nil
}
