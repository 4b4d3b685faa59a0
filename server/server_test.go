/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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

package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/server"
	"github.com/yorkie-team/textsync/server/admin"
)

func TestTextSync(t *testing.T) {
	conf := server.NewConfig()
	conf.RPC.Port = 21101
	conf.Gateway.Port = 21180
	conf.Profiling.Port = 21102
	conf.Admin = &admin.Config{Port: 21103}

	ts, err := server.New(conf)
	require.NoError(t, err)
	require.NoError(t, ts.Start())

	t.Run("sync over gateway test", func(t *testing.T) {
		resp, err := http.Post(
			fmt.Sprintf("http://%s/sync", ts.GatewayAddr()),
			"application/json",
			strings.NewReader(`{"documentId":"doc1","actions":[{"id":"a1","type":"INSERT","position":0,"content":"Hi"}],"lastKnownVersion":0}`),
		)
		require.NoError(t, err)
		body := &types.SyncResponse{}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(body))
		assert.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, body.Success)
		assert.Equal(t, int64(1), body.CurrentVersion)
	})

	t.Run("metrics test", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/metrics", conf.Profiling.Port))
		require.NoError(t, err)
		assert.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("admin clear test", func(t *testing.T) {
		resp, err := http.Post(fmt.Sprintf("http://%s%s", ts.AdminAddr(), admin.ClearCachePath), "application/json", nil)
		require.NoError(t, err)
		assert.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = http.Get(fmt.Sprintf("http://%s/documents", ts.GatewayAddr()))
		require.NoError(t, err)
		list := &types.ListDocumentsResponse{}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(list))
		assert.NoError(t, resp.Body.Close())
		assert.Equal(t, 0, list.Count)
	})

	assert.NoError(t, ts.Shutdown(true))
	assert.NoError(t, ts.Shutdown(true))
	<-ts.ShutdownCh()
}
