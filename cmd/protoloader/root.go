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
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bufbuild/protoloader/config"
)

// globalState holds everything the commands share. Tests replace its
// members to run commands in isolation.
type globalState struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	logger *logrus.Logger
	env    config.Env

	rootDir    string
	configFile string
	verbose    bool
}

func newGlobalState() *globalState {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	return &globalState{
		fs:      afero.NewOsFs(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  logger,
		rootDir: ".",
	}
}

func newRootCommand(gs *globalState) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "protoloader",
		Short:         "Compile proto files into JavaScript modules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return gs.init()
		},
	}
	rootCmd.SetOut(gs.stdout)
	rootCmd.SetErr(gs.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&gs.rootDir, "root", "C", gs.rootDir, "project root; relative paths are resolved against it")
	flags.StringVarP(&gs.configFile, "config", "c", "", "configuration file (default <root>/"+config.DefaultFile+" if present)")
	flags.BoolVarP(&gs.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newBuildCommand(gs),
		newDepsCommand(gs),
	)
	return rootCmd
}

// init performs the one-time setup that every command needs: reading the
// environment and configuring the logger.
func (gs *globalState) init() error {
	root, err := filepath.Abs(gs.rootDir)
	if err != nil {
		return err
	}
	gs.rootDir = root

	env, err := config.LoadEnv(filepath.Join(root, ".env"))
	if err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	gs.env = env
	return setupLogger(gs.logger, env, gs.verbose)
}

// loadConfig reads the configuration file. A missing default file is not an
// error; a missing explicit one is.
func (gs *globalState) loadConfig() (*config.Config, error) {
	name := gs.configFile
	explicit := name != ""
	if !explicit {
		name = config.DefaultFile
	}
	name = gs.abs(name)
	if !explicit {
		if ok, err := afero.Exists(gs.fs, name); err != nil {
			return nil, err
		} else if !ok {
			gs.logger.WithField("file", name).Debug("no configuration file, using defaults")
			return config.Parse(nil)
		}
	}
	return config.Load(gs.fs, name)
}

// abs resolves name against the project root.
func (gs *globalState) abs(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(gs.rootDir, name)
}

// absAll resolves every element of names against the project root. A nil
// slice stays nil.
func (gs *globalState) absAll(names []string) []string {
	if names == nil {
		return nil
	}
	abs := make([]string, len(names))
	for i, name := range names {
		abs[i] = gs.abs(name)
	}
	return abs
}
