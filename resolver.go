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
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Resolver turns the path named in an import statement into the path of the
// file that it refers to.
type Resolver interface {
	// ResolvePath resolves target, which was imported by the file at origin.
	// It returns false if the import cannot be resolved.
	ResolvePath(origin, target string) (string, bool)
}

// ResolverFunc is a simple function type that implements Resolver.
type ResolverFunc func(origin, target string) (string, bool)

var _ Resolver = ResolverFunc(nil)

// ResolvePath implements the Resolver interface.
func (f ResolverFunc) ResolvePath(origin, target string) (string, bool) {
	return f(origin, target)
}

// ImportResolver resolves imports the same way the pbjs command line tool
// does, and records every file that it finds in Dependencies.
//
// A target is first resolved against the directory of the importing file.
// If no such file exists, each of the SearchPaths is tried in order and the
// first match wins. Imports of standard files, like
// "google/protobuf/any.proto", resolve to their canonical name without
// touching the file system and are never recorded.
type ImportResolver struct {
	// The file system that files are looked up in. If nil, the OS file
	// system is used.
	Fs afero.Fs
	// Directories that imports are resolved against when they cannot be
	// found relative to the importing file.
	SearchPaths []string
	// A file that is never recorded as a dependency, even when resolved.
	// This is the temporary copy of the file being compiled.
	Exclude string
	// Where resolved files are recorded. May be nil.
	Dependencies *DependencySet
}

var _ Resolver = (*ImportResolver)(nil)

// ResolvePath implements the Resolver interface.
func (r *ImportResolver) ResolvePath(origin, target string) (string, bool) {
	normOrigin := normalizePath(origin)
	normTarget := normalizePath(target)

	resolved := resolvePath(normOrigin, normTarget)
	if alias, ok := wellKnownAlias(resolved); ok {
		return alias, true
	}

	if r.exists(resolved) {
		if resolved != normalizePath(r.Exclude) {
			r.record(resolved)
		}
		return resolved, true
	}

	for _, searchPath := range r.SearchPaths {
		candidate := resolvePath(normalizePath(searchPath)+"/", normTarget)
		if r.exists(candidate) {
			r.record(candidate)
			return candidate, true
		}
	}
	return "", false
}

func (r *ImportResolver) exists(name string) bool {
	fs := r.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	info, err := fs.Stat(filepath.FromSlash(name))
	return err == nil && !info.IsDir()
}

func (r *ImportResolver) record(name string) {
	if r.Dependencies != nil {
		r.Dependencies.Add(name)
	}
}

// normalizePath converts p to forward slashes and removes "." and ".."
// elements.
func normalizePath(p string) string {
	if p == "" {
		return p
	}
	p = strings.ReplaceAll(p, `\`, "/")
	return path.Clean(p)
}

// isAbsolute reports whether the normalized path p is absolute, either in
// the slash-separated sense or on the current platform.
func isAbsolute(p string) bool {
	return strings.HasPrefix(p, "/") || filepath.IsAbs(filepath.FromSlash(p))
}

// resolvePath resolves target against the directory that contains origin.
// Absolute targets are returned as they are. An origin that ends in a slash
// is a directory.
func resolvePath(origin, target string) string {
	if isAbsolute(target) {
		return normalizePath(target)
	}
	idx := strings.LastIndex(origin, "/")
	if idx < 0 {
		return normalizePath(target)
	}
	return normalizePath(origin[:idx] + "/" + target)
}
