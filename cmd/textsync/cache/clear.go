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

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/cmd/textsync/config"
	"github.com/yorkie-team/textsync/server/admin"
)

var (
	force bool
)

// ErrForceRequired occurs when the cache is cleared without --force.
var ErrForceRequired = errors.New("clearing discards every document, run again with --force")

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard every document and its actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return ErrForceRequired
			}

			resp, err := Clear(cmd.Context(), config.AdminAddr)
			if err != nil {
				return err
			}

			cmd.Println(resp.Message)
			return nil
		},
	}
}

// Clear asks the admin server of the given address to discard every document.
func Clear(ctx context.Context, adminAddr string) (*types.ClearCacheResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("http://%s%s", adminAddr, admin.ClearCachePath),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpResp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clear cache of %s: %w", adminAddr, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	resp := &types.ClearCacheResponse{}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return nil, fmt.Errorf("decode response of %s: %w", adminAddr, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("clear cache of %s: %s", adminAddr, resp.Message)
	}

	return resp, nil
}

func init() {
	cmd := newClearCommand()
	cmd.Flags().BoolVar(
		&force,
		"force",
		false,
		"Skip the confirmation",
	)
	SubCmd.AddCommand(cmd)
}
