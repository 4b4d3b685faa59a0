/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main is the entry point of the TextSync CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yorkie-team/textsync/cmd/textsync/cache"
	"github.com/yorkie-team/textsync/cmd/textsync/config"
	"github.com/yorkie-team/textsync/cmd/textsync/document"
)

var rootCmd = &cobra.Command{
	Use:          "textsync",
	Short:        "Server-authoritative text document synchronization",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.ApplyEnv(cmd.Flags())
	},
}

// Run executes CLI.
func Run() int {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		return 1
	}

	if err := rootCmd.Execute(); err != nil {
		return 1
	}

	return 0
}

func init() {
	rootCmd.AddCommand(document.SubCmd)
	rootCmd.AddCommand(cache.SubCmd)
	rootCmd.PersistentFlags().StringVar(
		&config.RPCAddr,
		"rpc-addr",
		config.DefaultRPCAddr,
		"Address of the RPC server",
	)
	rootCmd.PersistentFlags().StringVar(
		&config.AdminAddr,
		"admin-addr",
		config.DefaultAdminAddr,
		"Address of the admin server",
	)
	rootCmd.PersistentFlags().StringVarP(
		&config.Output,
		"output",
		"o",
		"",
		"One of 'yaml' or 'json'.",
	)
}
