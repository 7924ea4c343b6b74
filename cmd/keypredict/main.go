// Copyright 2025 The KeyPredict Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the keypredict suggestion server and its tooling.

Note: This is a BETA release. APIs and functionality may rapidly change.

keypredict predicts words for soft keyboards. Every tap carries the
pressed key and the keys around it; the engine walks a packed,
memory-mapped dictionary and a learned user dictionary, tolerating taps
on a neighboring key, and ranks the words that fit.

# Usage

Start the IPC server on stdin/stdout:

	keypredict serve

Type words interactively and see what a keyboard would commit:

	keypredict query --mode full

Compile a "word frequency" list into a dictionary file:

	keypredict build words-el.txt data/el.dict

Manage learned words:

	keypredict user add καλημέρα 200
	keypredict user list

# Configuration

Runtime configuration lives in a TOML file under the user config dir,
created with defaults on first run:

	[engine]
	mode = "basic"
	max_suggestions = 10
	max_corrections = 2

	[dict]
	dir = "data"
	language = "el"

	[userdict]
	backend = "sqlite"

KEYPREDICT_* environment variables override the file, and command line
flags override both.

# IPC Protocol

The server speaks MessagePack over stdin/stdout; see package server for
the message shapes.
*/
package main

import (
	"fmt"
	"os"

	"github.com/bastiangx/keypredict/internal/logger"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0-beta"
	gh      = "https://github.com/bastiangx/keypredict"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "keypredict",
		Short: "Word prediction and correction for soft keyboards",
		Long: `keypredict ranks word candidates for the taps of a soft keyboard,
correcting taps that landed on a neighboring key and learning the words
its user commits.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a config.toml (default: user config dir)")
	rootCmd.PersistentFlags().String("data", "", "Directory containing <lang>.dict files")
	rootCmd.PersistentFlags().String("lang", "", "Dictionary language")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Toggle debug mode")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newQueryCmd(),
		newBuildCmd(),
		newInspectCmd(),
		newUserCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			l := logger.Banner(cmd.ErrOrStderr())
			l.Print("")
			l.Print("[ keypredict ] Word suggestions for soft keyboards")
			l.Print("", "version", Version)
			l.Print("")
			l.Print("use -h or --help to see available options")
			l.Print("Github Repo", "gh", gh)

			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				e, err := loadEnv(cmd)
				if err != nil {
					return err
				}
				for k, v := range e.resolver.GetRuntimeInfo() {
					l.Print(k, "value", v)
				}
			}
			return nil
		},
	}
}
