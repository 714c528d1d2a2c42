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
	"fmt"
)

// ErrUnresolvedImport is a sentinel error that all UnresolvedImportError
// values match with errors.Is.
var ErrUnresolvedImport = errors.New("unresolved import")

// UnresolvedImportError is reported by the dependency walk when an import
// statement cannot be resolved to a file.
type UnresolvedImportError struct {
	// The file containing the import statement.
	Origin string
	// The path named in the import statement.
	Target string
}

func (e *UnresolvedImportError) Error() string {
	return fmt.Sprintf("%s: could not resolve import %q", e.Origin, e.Target)
}

// Is lets errors.Is match ErrUnresolvedImport.
func (e *UnresolvedImportError) Is(target error) bool {
	return target == ErrUnresolvedImport
}

// ConfigError indicates invalid loader options. It is always returned before
// any compilation work starts.
type ConfigError struct {
	// The option at fault, if known.
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid options: %v", e.Err)
	}
	return fmt.Sprintf("invalid option %q: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CompileError wraps a failure of the schema compiler. The message of the
// underlying error is reported as is, since it is the most useful thing to
// show to a user.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string {
	return e.Err.Error()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// DeclarationError wraps a failure to generate type declarations. It can
// only happen after the schema compiler succeeded.
type DeclarationError struct {
	Err error
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("generating declarations: %v", e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// DependencyError wraps a failure of the dependency walk in a compile where
// the schema compiler itself succeeded. Without a complete walk the host
// cannot track the inputs of the generated module.
type DependencyError struct {
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("resolving dependencies: %v", e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
