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

// Command protoloader compiles proto files into JavaScript modules with
// pbjs, and writes dependency files so that make or ninja rebuild a module
// whenever one of its imports changes.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gs := newGlobalState()
	if err := newRootCommand(gs).ExecuteContext(ctx); err != nil {
		gs.logger.Error(err)
		stop()
		os.Exit(1)
	}
}
