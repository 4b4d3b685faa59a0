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
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/client"
	"github.com/yorkie-team/textsync/cmd/textsync/config"
)

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [document id]",
		Short: "Print a document of the server. It is created if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("document id is required")
			}
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

			doc, err := cli.GetDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printDocument(cmd, config.Output, doc)
		},
	}
}

func printDocument(cmd *cobra.Command, output string, doc *types.DocumentInfo) error {
	switch output {
	case "":
		tw := table.NewWriter()
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.AppendRows([]table.Row{
			{"ID", doc.ID},
			{"VERSION", doc.Version},
			{"LAST MODIFIED", formatTime(doc.LastModified)},
		})
		cmd.Printf("%s\n\n%s\n", tw.Render(), doc.Content)
	case "json":
		jsonOutput, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}

func init() {
	SubCmd.AddCommand(newGetCommand())
}
