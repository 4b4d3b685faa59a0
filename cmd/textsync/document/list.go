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

package document

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/client"
	"github.com/yorkie-team/textsync/cmd/textsync/config"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all documents of the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateOutput(); err != nil {
				return err
			}

			cli, err := client.Dial(config.RPCAddr, client.WithMaxRetries(0))
			if err != nil {
				return err
			}
			defer func() {
				_ = cli.Close()
			}()

			documents, err := cli.ListDocuments(cmd.Context())
			if err != nil {
				return err
			}

			return printDocuments(cmd, config.Output, documents)
		},
	}
}

func printDocuments(cmd *cobra.Command, output string, documents []*types.DocumentSummary) error {
	switch output {
	case "":
		tw := table.NewWriter()
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.Style().Options.SeparateFooter = false
		tw.Style().Options.SeparateHeader = false
		tw.Style().Options.SeparateRows = false
		tw.AppendHeader(table.Row{
			"ID",
			"VERSION",
			"LENGTH",
			"LAST MODIFIED",
		})
		for _, document := range documents {
			tw.AppendRow(table.Row{
				document.ID,
				document.Version,
				document.ContentLength,
				formatTime(document.LastModified),
			})
		}
		tw.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d documents", len(documents))})
		cmd.Printf("%s\n", tw.Render())
	case "json":
		jsonOutput, err := json.MarshalIndent(documents, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(documents)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}

func init() {
	SubCmd.AddCommand(newListCommand())
}
