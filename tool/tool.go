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

// Package tool runs the external protobuf.js command line tools, pbjs and
// pbts, and assembles their arguments.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Tool is an external compiler that can be invoked with command line
// arguments. On success it returns what the tool wrote to standard output.
type Tool interface {
	Run(ctx context.Context, args []string) (string, error)
}

// Func is a simple function type that implements Tool.
type Func func(ctx context.Context, args []string) (string, error)

var _ Tool = Func(nil)

// Run implements the Tool interface.
func (f Func) Run(ctx context.Context, args []string) (string, error) {
	return f(ctx, args)
}

// Exec is a Tool backed by an executable on disk.
type Exec struct {
	// A short name used in error messages, such as "pbjs". Defaults to the
	// base name of Path.
	Name string
	// The path of the executable. This field is required.
	Path string
	// The working directory of the process. If empty, the current working
	// directory is used.
	Dir string
	// Extra environment variables, in "key=value" form, added to the
	// environment of the current process.
	Env []string
}

var _ Tool = (*Exec)(nil)

// Lookup finds the executable with the given name on PATH. If override is
// not empty, it is used instead of name; it may be a path or a name.
func Lookup(name, override string) (*Exec, error) {
	file := name
	if override != "" {
		file = override
	}
	path, err := exec.LookPath(file)
	if err != nil {
		return nil, fmt.Errorf("could not find %s: %w", name, err)
	}
	return &Exec{Name: name, Path: path}, nil
}

// Run implements the Tool interface. If the process fails, the returned
// error is an *Error.
func (e *Exec) Run(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		toolErr := &Error{
			Tool:     e.name(),
			Args:     args,
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			toolErr.ExitCode = exitErr.ExitCode()
		}
		return "", toolErr
	}
	return stdout.String(), nil
}

func (e *Exec) name() string {
	if e.Name != "" {
		return e.Name
	}
	path := strings.ReplaceAll(e.Path, `\`, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// Error describes a failed run of an external tool.
type Error struct {
	Tool string
	Args []string
	// The exit code of the process, or -1 if it did not exit normally.
	ExitCode int
	// Everything the tool wrote to standard error.
	Stderr string
	Err    error
}

// Error returns what the tool printed to standard error, since that is the
// tool's own description of the problem. If it printed nothing, the process
// error is described instead.
func (e *Error) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
