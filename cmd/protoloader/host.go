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

package main

import (
	"sync"
)

// fileHost is the Host for one proto file compiled by this command. It
// collects the reported dependencies for the depfile.
type fileHost struct {
	resourcePath string
	modulePaths  []string

	mu   sync.Mutex
	deps []string
}

func (h *fileHost) ResourcePath() string {
	return h.resourcePath
}

func (h *fileHost) ModulePaths() []string {
	return h.modulePaths
}

func (h *fileHost) AddDependency(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deps = append(h.deps, path)
}

func (h *fileHost) dependencies() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.deps...)
}
