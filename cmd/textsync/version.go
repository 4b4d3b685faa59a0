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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/client"
	"github.com/yorkie-team/textsync/cmd/textsync/config"
	"github.com/yorkie-team/textsync/internal/version"
)

var (
	clientOnly bool
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of TextSync",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateOutput(); err != nil {
				return err
			}

			var versionInfo types.VersionInfo
			versionInfo.ClientVersion = getTextSyncClientVersion()

			var serverErr error
			if !clientOnly {
				versionInfo.ServerVersion, serverErr = getTextSyncServerVersion(cmd.Context())
			}

			switch config.Output {
			case "":
				cmd.Printf("TextSync Client: %s\n", versionInfo.ClientVersion.TextSyncVersion)
				cmd.Printf("Go: %s\n", versionInfo.ClientVersion.GoVersion)
				cmd.Printf("Build Date: %s\n", versionInfo.ClientVersion.BuildDate)
				if versionInfo.ServerVersion != nil {
					cmd.Printf("TextSync Server: %s\n", versionInfo.ServerVersion.TextSyncVersion)
					cmd.Printf("Go: %s\n", versionInfo.ServerVersion.GoVersion)
					cmd.Printf("Build Date: %s\n", versionInfo.ServerVersion.BuildDate)
				}
			case "yaml":
				marshalled, err := yaml.Marshal(&versionInfo)
				if err != nil {
					return errors.New("failed to marshal YAML")
				}
				cmd.Println(string(marshalled))
			case "json":
				marshalled, err := json.MarshalIndent(&versionInfo, "", "  ")
				if err != nil {
					return errors.New("failed to marshal JSON")
				}
				cmd.Println(string(marshalled))
			}

			if serverErr != nil {
				cmd.Printf("Error fetching server version: %v\n", serverErr)
			}

			return nil
		},
	}
}

func getTextSyncClientVersion() *types.VersionDetail {
	return &types.VersionDetail{
		TextSyncVersion: version.Version,
		GoVersion:       runtime.Version(),
		BuildDate:       version.BuildDate,
	}
}

func getTextSyncServerVersion(ctx context.Context) (*types.VersionDetail, error) {
	cli, err := client.Dial(config.RPCAddr, client.WithMaxRetries(0))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cli.Close()
	}()

	return cli.ServerVersion(ctx)
}

func init() {
	cmd := newVersionCmd()
	cmd.Flags().BoolVar(
		&clientOnly,
		"client",
		clientOnly,
		"Shows client version only. (no server required)",
	)

	rootCmd.AddCommand(cmd)
}
