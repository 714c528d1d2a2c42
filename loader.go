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
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/bufbuild/protoloader/tool"
)

// Loader compiles proto source into JavaScript modules for a Host.
type Loader struct {
	// The schema compiler. This field is required.
	Pbjs tool.Tool
	// The declaration compiler. It is only required for compiles that
	// request declarations.
	Pbts tool.Tool
	// The file system used for temporary files and for reading imported
	// files during the dependency walk. The external tools read from the OS
	// file system, so anything other than the OS file system is only useful
	// in tests. If nil, the OS file system is used.
	Fs afero.Fs
	// The directory for temporary files. If empty, the default directory for
	// temporary files is used.
	TempDir string
	// The maximum number of files parsed at the same time by the dependency
	// walk of a single compile. See Walker.MaxParallelism.
	MaxParallelism int
	// If nil, nothing is logged.
	Logger logrus.FieldLogger
}

// Load compiles the proto source of the file at host.ResourcePath() and
// returns the generated module.
//
// While pbjs runs, the imports of source are walked and every imported file
// is reported to host.AddDependency. Load does not return until both have
// finished. If pbjs fails, its error is returned as a *CompileError and any
// error from the walk is discarded, since the compiler's message describes
// the problem better. If pbjs succeeds but the walk fails, a
// *DependencyError is returned. Invalid options are reported as a
// *ConfigError before anything runs, and failures to produce declarations
// as a *DeclarationError.
func (l *Loader) Load(ctx context.Context, host Host, source []byte, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if l.Pbjs == nil {
		return "", errors.New("no schema compiler configured")
	}
	opts = opts.withDefaults(host)
	paths, err := absPaths(opts.Paths)
	if err != nil {
		return "", err
	}

	fs := l.fs()
	log := l.logger().WithField("resource", host.ResourcePath())

	input, err := writeTempFile(fs, l.TempDir, "protoloader-*.proto", source)
	if err != nil {
		return "", err
	}
	defer l.removeTempFile(fs, input, log)

	walker := &Walker{
		Resolver: &ImportResolver{
			Fs:           fs,
			SearchPaths:  paths,
			Exclude:      input,
			Dependencies: NewDependencySet(host.AddDependency),
		},
		Fs:             fs,
		MaxParallelism: l.MaxParallelism,
		Logger:         log,
	}

	var (
		wg         sync.WaitGroup
		walkErr    error
		compiled   string
		compileErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, walkErr = walker.Walk(ctx, input)
	}()
	go func() {
		defer wg.Done()
		args := tool.PbjsArgs(opts.Target, paths, opts.PbjsArgs, input)
		log.WithField("args", args).Debug("running pbjs")
		compiled, compileErr = l.Pbjs.Run(ctx, args)
	}()
	wg.Wait()

	if compileErr != nil {
		if walkErr != nil {
			log.WithError(walkErr).Debug("dependency walk failed")
		}
		return "", &CompileError{Err: compileErr}
	}
	if walkErr != nil {
		return "", &DependencyError{Err: walkErr}
	}

	if opts.Pbts != nil {
		if err := l.generateDeclarations(ctx, fs, host, compiled, opts.Pbts, log); err != nil {
			return "", &DeclarationError{Err: err}
		}
	}
	return compiled, nil
}

func (l *Loader) generateDeclarations(
	ctx context.Context,
	fs afero.Fs,
	host Host,
	compiled string,
	decl *DeclarationOptions,
	log logrus.FieldLogger,
) error {
	if l.Pbts == nil {
		return errors.New("no declaration compiler configured")
	}
	// pbts cannot read from stdin, so the module goes through a file
	module, err := writeTempFile(fs, l.TempDir, "protoloader-*.js", []byte(compiled))
	if err != nil {
		return err
	}
	defer l.removeTempFile(fs, module, log)

	out := host.ResourcePath() + ".d.ts"
	if decl.Output != nil {
		out, err = decl.Output(ctx, host.ResourcePath())
		if err != nil {
			return err
		}
	}

	args := tool.PbtsArgs(out, decl.Args, module)
	log.WithField("args", args).Debug("running pbts")
	_, err = l.Pbts.Run(ctx, args)
	return err
}

func (l *Loader) fs() afero.Fs {
	if l.Fs == nil {
		return afero.NewOsFs()
	}
	return l.Fs
}

func (l *Loader) logger() logrus.FieldLogger {
	if l.Logger == nil {
		return discardLogger()
	}
	return l.Logger
}

func (l *Loader) removeTempFile(fs afero.Fs, name string, log logrus.FieldLogger) {
	if err := fs.Remove(name); err != nil {
		log.WithError(err).WithField("file", name).Warn("could not remove temporary file")
	}
}

// writeTempFile writes data to a new, uniquely named file and returns its
// absolute path.
func writeTempFile(fs afero.Fs, dir, pattern string, data []byte) (_ string, err error) {
	f, err := afero.TempFile(fs, dir, pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = fs.Remove(name)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

func absPaths(paths []string) ([]string, error) {
	if paths == nil {
		return nil, nil
	}
	abs := make([]string, len(paths))
	for i, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		abs[i] = normalizePath(a)
	}
	return abs, nil
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
