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
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bufbuild/protoloader/config"
)

func setupLogger(logger *logrus.Logger, env config.Env, verbose bool) error {
	level, err := logrus.ParseLevel(env.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	switch env.LogFormat {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", env.LogFormat)
	}
	return nil
}
