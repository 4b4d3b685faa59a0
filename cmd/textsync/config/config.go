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

// Package config provides the settings shared by the commands of the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of the environment variables that provide the
// values of unset flags.
const EnvPrefix = "TEXTSYNC_"

const (
	// DefaultRPCAddr is the default address of the RPC server.
	DefaultRPCAddr = "localhost:11101"

	// DefaultAdminAddr is the default address of the admin server.
	DefaultAdminAddr = "127.0.0.1:11103"
)

var (
	// RPCAddr is the address of the rpc server.
	RPCAddr string

	// AdminAddr is the address of the admin server.
	AdminAddr string

	// Output is the output format of the commands.
	Output string
)

// ErrInvalidOutput occurs when the output format is not supported.
var ErrInvalidOutput = errors.New("--output must be 'yaml' or 'json'")

// EnvName returns the environment variable of the given flag. For example,
// "rpc-addr" is TEXTSYNC_RPC_ADDR.
func EnvName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// ApplyEnv sets the flags that were not given on the command line from their
// environment variables.
func ApplyEnv(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(flag *pflag.Flag) {
		if err != nil || flag.Changed {
			return
		}

		value, ok := os.LookupEnv(EnvName(flag.Name))
		if !ok {
			return
		}

		if setErr := flags.Set(flag.Name, value); setErr != nil {
			err = fmt.Errorf("invalid %s %q: %w", EnvName(flag.Name), value, setErr)
		}
	})

	return err
}

// ValidateOutput validates the output format.
func ValidateOutput() error {
	if Output != "" && Output != "yaml" && Output != "json" {
		return ErrInvalidOutput
	}

	return nil
}
