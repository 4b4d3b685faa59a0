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

package gateway_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/documents"
	"github.com/yorkie-team/textsync/server/gateway"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
	"github.com/yorkie-team/textsync/server/rpc"
)

func setupTestGateway(t *testing.T) (*httptest.Server, *backend.Backend) {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(&backend.Config{
		MaxActionsPerSync: backend.DefaultMaxActionsPerSync,
		Hostname:          "test",
	}, nil, metrics)
	require.NoError(t, err)

	gw := gateway.NewServer(&gateway.Config{
		Port:            gateway.DefaultPort,
		MaxRequestBytes: 1024,
		ReadTimeout:     gateway.DefaultReadTimeout,
	}, be, rpc.NewTextSyncServer(be))
	ts := httptest.NewServer(gw.Handler())

	t.Cleanup(func() {
		gw.Shutdown(false)
		ts.Close()
		assert.NoError(t, be.Shutdown())
	})

	return ts, be
}

func postSync(t *testing.T, ts *httptest.Server, body string) (int, map[string]interface{}) {
	resp, err := http.Post(ts.URL+"/sync", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, resp.Body.Close())
	}()

	result := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func TestGateway(t *testing.T) {
	t.Run("sync and conflict test", func(t *testing.T) {
		ts, _ := setupTestGateway(t)

		code, body := postSync(t, ts, `{
			"documentId": "doc1",
			"actions": [{"id": "a1", "type": "INSERT", "timestamp": 1, "position": 0, "content": "Hi"}],
			"lastKnownVersion": 0
		}`)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(1), body["currentVersion"])

		code, body = postSync(t, ts, `{
			"documentId": "doc1",
			"actions": [{"id": "b1", "type": "DELETE", "timestamp": 2, "position": 0, "length": 1}],
			"lastKnownVersion": 0
		}`)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, float64(1), body["currentVersion"])
		conflicts := body["conflictActions"].([]interface{})
		require.Len(t, conflicts, 1)
		assert.Equal(t, "a1", conflicts[0].(map[string]interface{})["id"])
		assert.Equal(t, "INSERT", conflicts[0].(map[string]interface{})["type"])
	})

	t.Run("bad request test", func(t *testing.T) {
		ts, be := setupTestGateway(t)

		code, body := postSync(t, ts, `{"documentId": "doc1", "actions": [`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, float64(0), body["currentVersion"])
		assert.Equal(t, "ErrMalformedRequest", body["code"])

		code, body = postSync(t, ts, `{
			"documentId": "doc1",
			"actions": [{"id": "a1", "type": "INSERT", "position": 5, "content": "x"}],
			"lastKnownVersion": 0
		}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "ErrPositionOutOfRange", body["code"])

		code, _ = postSync(t, ts, `{"documentId": "", "actions": [], "lastKnownVersion": 0}`)
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = postSync(t, ts, `{"documentId": "doc1", "actions": [{"id": "a1", "type": "MOVE", "position": 0}]}`)
		assert.Equal(t, http.StatusBadRequest, code)

		code, body = postSync(t, ts, `{"documentId": "doc1", "actions": [], "lastKnownVersion": 3}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "ErrInvalidLastKnownVersion", body["code"])

		large := `{"documentId": "doc1", "actions": [{"id": "a1", "type": "INSERT", "position": 0, "content": "` +
			strings.Repeat("x", 2048) + `"}], "lastKnownVersion": 0}`
		code, body = postSync(t, ts, large)
		assert.Equal(t, http.StatusRequestEntityTooLarge, code)
		assert.Equal(t, "ErrRequestTooLarge", body["code"])

		version, err := documents.CurrentVersion(context.Background(), be, "doc1")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), version)
	})

	t.Run("method not allowed test", func(t *testing.T) {
		ts, _ := setupTestGateway(t)

		resp, err := http.Get(ts.URL + "/sync")
		require.NoError(t, err)
		assert.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

		resp, err = http.Post(ts.URL+"/documents", "application/json", bytes.NewReader(nil))
		require.NoError(t, err)
		assert.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("get and list documents test", func(t *testing.T) {
		ts, _ := setupTestGateway(t)

		resp, err := http.Get(ts.URL + "/document/doc2")
		require.NoError(t, err)
		doc := &types.DocumentInfo{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(doc))
		assert.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "doc2", doc.ID)
		assert.Equal(t, "", doc.Content)
		assert.Equal(t, int64(0), doc.Version)

		code, _ := postSync(t, ts, `{
			"documentId": "doc1",
			"actions": [{"id": "a1", "type": "INSERT", "position": 0, "content": "héllo"}],
			"lastKnownVersion": 0
		}`)
		require.Equal(t, http.StatusOK, code)

		resp, err = http.Get(ts.URL + "/documents")
		require.NoError(t, err)
		list := &types.ListDocumentsResponse{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(list))
		assert.NoError(t, resp.Body.Close())
		assert.True(t, list.Success)
		assert.Equal(t, 2, list.Count)
		require.Len(t, list.Documents, 2)
		assert.Equal(t, "doc1", list.Documents[0].ID)
		assert.Equal(t, 5, list.Documents[0].ContentLength)
		assert.Equal(t, int64(1), list.Documents[0].Version)
	})

	t.Run("watch document test", func(t *testing.T) {
		ts, be := setupTestGateway(t)

		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/documents/doc1/watch"
		conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		assert.NoError(t, resp.Body.Close())
		defer func() {
			assert.NoError(t, conn.Close())
		}()

		// The subscription is made right after the upgrade.
		assert.Eventually(t, func() bool {
			return len(be.PubSub.Subscribers("doc1")) == 1
		}, time.Second, 10*time.Millisecond)

		code, _ := postSync(t, ts, `{
			"documentId": "doc1",
			"actions": [{"id": "a1", "type": "INSERT", "position": 0, "content": "Hi"}],
			"lastKnownVersion": 0
		}`)
		require.Equal(t, http.StatusOK, code)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		event := &types.DocEvent{}
		require.NoError(t, conn.ReadJSON(event))
		assert.Equal(t, types.DocumentChangedEvent, event.Type)
		assert.Equal(t, "doc1", event.DocumentID)
		assert.Equal(t, int64(1), event.Version)
		require.Len(t, event.Actions, 1)
		assert.Equal(t, "a1", event.Actions[0].ID)
	})
}
