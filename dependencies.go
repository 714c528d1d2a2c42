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
	"sync"

	"github.com/tidwall/btree"
)

// DependencySet accumulates the files visited while resolving the imports of
// a single compile. Each path is forwarded to the report function the first
// time it is added, so a file imported from several places is only reported
// once. It is safe for concurrent use, and calls to the report function are
// serialized.
type DependencySet struct {
	report func(string)

	mu    sync.Mutex
	paths btree.Set[string]
}

// NewDependencySet returns an empty set that calls report for every newly
// added path. A nil report function is allowed.
func NewDependencySet(report func(string)) *DependencySet {
	return &DependencySet{report: report}
}

// Add records path. It returns false if path was already present.
func (s *DependencySet) Add(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paths.Contains(path) {
		return false
	}
	s.paths.Insert(path)
	if s.report != nil {
		s.report(path)
	}
	return true
}

// contains reports whether path has been added.
func (s *DependencySet) contains(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paths.Contains(path)
}

// len returns the number of distinct paths in the set.
func (s *DependencySet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paths.Len()
}

// Paths returns the contents of the set in sorted order.
func (s *DependencySet) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, s.paths.Len())
	s.paths.Scan(func(path string) bool {
		paths = append(paths, path)
		return true
	})
	return paths
}
