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

package rpc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/yorkie-team/textsync/api/types"
	api "github.com/yorkie-team/textsync/api/v1"
	"github.com/yorkie-team/textsync/internal/version"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/grpchelper"
	"github.com/yorkie-team/textsync/server/packs"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
	"github.com/yorkie-team/textsync/server/rpc"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func setupTestServer(t *testing.T) *grpc.ClientConn {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(&backend.Config{
		MaxActionsPerSync: backend.DefaultMaxActionsPerSync,
		Hostname:          "test",
	}, nil, metrics)
	require.NoError(t, err)

	server, err := rpc.NewServer(&rpc.Config{
		Port:                  rpc.DefaultPort,
		MaxConnectionAge:      rpc.DefaultMaxConnectionAge,
		MaxConnectionAgeGrace: rpc.DefaultMaxConnectionAgeGrace,
	}, be)
	require.NoError(t, err)

	lis, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	server.Serve(lis)

	conn, err := grpc.Dial(
		server.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, conn.Close())
		server.Shutdown(true)
		assert.NoError(t, be.Shutdown())
	})

	return conn
}

func TestRPCServer(t *testing.T) {
	ctx := context.Background()
	conn := setupTestServer(t)
	cli := api.NewTextSyncServiceClient(conn)

	t.Run("sync and conflict test", func(t *testing.T) {
		resp, err := cli.Sync(ctx, &types.SyncRequest{
			DocumentID: "rpc-doc1",
			Actions: []*types.ActionPayload{{
				ID:       "a1",
				Type:     types.ActionTypeInsert,
				Position: 0,
				Content:  strPtr("Hi"),
			}},
			LastKnownVersion: 0,
		})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(1), resp.CurrentVersion)

		resp, err = cli.Sync(ctx, &types.SyncRequest{
			DocumentID: "rpc-doc1",
			Actions: []*types.ActionPayload{{
				ID:       "b1",
				Type:     types.ActionTypeDelete,
				Position: 0,
				Length:   intPtr(1),
			}},
			LastKnownVersion: 0,
		})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, int64(1), resp.CurrentVersion)
		require.Len(t, resp.ConflictActions, 1)
		assert.Equal(t, "a1", resp.ConflictActions[0].ID)
		assert.Equal(t, "Hi", *resp.ConflictActions[0].Content)

		doc, err := cli.GetDocument(ctx, &types.GetDocumentRequest{DocumentID: "rpc-doc1"})
		require.NoError(t, err)
		assert.Equal(t, "Hi", doc.Content)
		assert.Equal(t, int64(1), doc.Version)
	})

	t.Run("invalid request test", func(t *testing.T) {
		_, err := cli.Sync(ctx, &types.SyncRequest{DocumentID: "", LastKnownVersion: 0})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = cli.Sync(ctx, &types.SyncRequest{
			DocumentID: "rpc-doc2",
			Actions: []*types.ActionPayload{{
				ID:       "a1",
				Type:     types.ActionTypeInsert,
				Position: 3,
				Content:  strPtr("x"),
			}},
		})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Equal(t, "ErrPositionOutOfRange", grpchelper.ReasonOf(err))

		_, err = cli.Sync(ctx, &types.SyncRequest{DocumentID: "rpc-doc2", LastKnownVersion: 5})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Equal(t, packs.ErrInvalidLastKnownVersion.Code(), grpchelper.ReasonOf(err))
	})

	t.Run("list documents test", func(t *testing.T) {
		resp, err := cli.ListDocuments(ctx, &types.ListDocumentsRequest{})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, len(resp.Documents), resp.Count)

		var ids []string
		for _, doc := range resp.Documents {
			ids = append(ids, doc.ID)
		}
		assert.Contains(t, ids, "rpc-doc1")
	})

	t.Run("version and health test", func(t *testing.T) {
		detail, err := cli.GetVersion(ctx, &types.VersionRequest{})
		require.NoError(t, err)
		assert.Equal(t, version.Version, detail.TextSyncVersion)

		resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	})
}
