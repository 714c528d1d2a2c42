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

// Package protoloader compiles protobuf source into JavaScript modules for
// a host build system, using the protobuf.js command line tools (pbjs and,
// optionally, pbts for TypeScript declarations).
//
// The main entry point is the Loader type. A single call to Loader.Load takes
// the contents of one proto file and does two things at the same time:
//
//  1. It runs the external schema compiler, which produces the generated
//     module source.
//  2. It walks the transitive import graph of the file, reporting every file
//     it visits to the Host as a dependency, so that the host can rebuild the
//     module when any imported file changes.
//
// Both steps always run to completion before Load returns, even when one of
// them fails, so the host sees the full set of dependencies for files that
// currently do not compile.
//
// # Import Resolution
//
// Imports are resolved the same way the protobuf.js command line tool
// resolves them: first relative to the importing file, then against each of
// the configured search paths in order. The first match wins. Imports of the
// standard files bundled with the compiler (any, duration, empty,
// field_mask, struct, timestamp and wrappers under "google/protobuf/") are
// never looked up on disk or reported as dependencies. Other files in that
// directory, like "google/protobuf/descriptor.proto", are ordinary imports.
//
// The resolution strategy is exposed through the Resolver interface, and the
// default implementation is ImportResolver.
package protoloader
