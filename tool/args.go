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

package tool

// Output targets supported by pbjs.
const (
	TargetJSON         = "json"
	TargetJSONModule   = "json-module"
	TargetProto2       = "proto2"
	TargetProto3       = "proto3"
	TargetStatic       = "static"
	TargetStaticModule = "static-module"
)

// PbjsArgs returns the arguments that compile file with pbjs into the given
// target, searching the given paths for imports. Extra arguments are passed
// through unchanged, after the search paths and before the file.
func PbjsArgs(target string, paths, extra []string, file string) []string {
	args := make([]string, 0, 2+2*len(paths)+len(extra)+1)
	args = append(args, "-t", target)
	for _, path := range paths {
		args = append(args, "-p", path)
	}
	args = append(args, extra...)
	return append(args, file)
}

// PbtsArgs returns the arguments that make pbts write the declarations for
// the compiled module in file to out.
func PbtsArgs(out string, extra []string, file string) []string {
	args := make([]string, 0, 2+len(extra)+1)
	args = append(args, "-o", out)
	args = append(args, extra...)
	return append(args, file)
}
