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
	"sort"
	"strings"

	"google.golang.org/protobuf/reflect/protoregistry"

	// link in packages that include the standard protos bundled with pbjs
	_ "google.golang.org/protobuf/types/known/anypb"
	_ "google.golang.org/protobuf/types/known/durationpb"
	_ "google.golang.org/protobuf/types/known/emptypb"
	_ "google.golang.org/protobuf/types/known/fieldmaskpb"
	_ "google.golang.org/protobuf/types/known/structpb"
	_ "google.golang.org/protobuf/types/known/timestamppb"
	_ "google.golang.org/protobuf/types/known/wrapperspb"
)

// wellKnownMarker is the directory that every standard import lives in.
const wellKnownMarker = "google/protobuf/"

// standardImports holds the files that the schema compiler bundles, so
// imports of them never need to be found on disk. Other files under
// google/protobuf, such as descriptor.proto, are not bundled and must be
// resolved through the search paths like any other import.
var standardImports map[string]struct{}

func init() {
	standardFilenames := []string{
		"google/protobuf/any.proto",
		"google/protobuf/duration.proto",
		"google/protobuf/empty.proto",
		"google/protobuf/field_mask.proto",
		"google/protobuf/struct.proto",
		"google/protobuf/timestamp.proto",
		"google/protobuf/wrappers.proto",
	}

	standardImports = map[string]struct{}{}
	for _, fn := range standardFilenames {
		// every name must be a real well-known file
		if _, err := protoregistry.GlobalFiles.FindFileByPath(fn); err != nil {
			panic(err.Error())
		}
		standardImports[fn] = struct{}{}
	}
}

// IsStandardImport reports whether path is the canonical name of one of the
// standard files bundled with the schema compiler.
func IsStandardImport(path string) bool {
	_, ok := standardImports[path]
	return ok
}

// StandardImports returns the canonical names of all standard imports, sorted.
func StandardImports() []string {
	names := make([]string, 0, len(standardImports))
	for name := range standardImports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wellKnownAlias returns the canonical standard import name for a resolved
// path such as "/src/google/protobuf/any.proto". The last occurrence of the
// marker directory is used.
func wellKnownAlias(resolved string) (string, bool) {
	idx := strings.LastIndex(resolved, wellKnownMarker)
	if idx < 0 {
		return "", false
	}
	alias := resolved[idx:]
	if !IsStandardImport(alias) {
		return "", false
	}
	return alias, true
}
