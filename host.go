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

// Host is the build system that a Loader compiles files for.
type Host interface {
	// ResourcePath returns the path of the proto file being compiled.
	ResourcePath() string
	// ModulePaths returns the host's own module search directories. They are
	// used as import search paths when the options do not name any.
	ModulePaths() []string
	// AddDependency tells the host that the output of the current compile
	// depends on the file at path. Calls made during a single compile are
	// serialized, and each path is reported at most once per compile.
	AddDependency(path string)
}
