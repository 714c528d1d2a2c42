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

package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of all environment variables read by LoadEnv.
const EnvPrefix = "protoloader"

// Env holds the settings that come from the environment.
type Env struct {
	// Name or path of the pbjs executable.
	Pbjs string `envconfig:"PBJS" default:"pbjs"`
	// Name or path of the pbts executable.
	Pbts string `envconfig:"PBTS" default:"pbts"`
	// A logrus level name.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// Either "text" or "json".
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	// Number of files compiled at the same time. Zero means one per CPU.
	Parallelism int `envconfig:"PARALLELISM" default:"0"`
}

// LoadEnv reads the PROTOLOADER_* environment variables. The given dotenv
// files are loaded first if they exist; variables that are already set in
// the environment take precedence over them.
func LoadEnv(dotenvFiles ...string) (Env, error) {
	var existing []string
	for _, name := range dotenvFiles {
		if _, err := os.Stat(name); err == nil {
			existing = append(existing, name)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Env{}, err
		}
	}
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, err
	}
	return env, nil
}
