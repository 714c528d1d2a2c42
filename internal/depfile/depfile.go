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

// Package depfile writes dependency files in the format understood by make
// and ninja, so that those tools can tell when a generated module is stale.
package depfile

import (
	"bufio"
	"io"
	"sort"
	"strings"
)

// Write writes one rule per target, listing its dependencies. Targets are
// written in sorted order and the dependencies of each target in the order
// given.
func Write(w io.Writer, deps map[string][]string) error {
	targets := make([]string, 0, len(deps))
	for target := range deps {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	bw := bufio.NewWriter(w)
	for _, target := range targets {
		_, _ = bw.WriteString(escape(target))
		_, _ = bw.WriteString(":")
		for _, dep := range deps[target] {
			_, _ = bw.WriteString(" \\\n  ")
			_, _ = bw.WriteString(escape(dep))
		}
		_, _ = bw.WriteString("\n")
	}
	return bw.Flush()
}

// escape quotes the characters that make treats specially in file names.
func escape(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch r {
		case ' ', '#':
			sb.WriteByte('\\')
		case '$':
			sb.WriteByte('$')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
