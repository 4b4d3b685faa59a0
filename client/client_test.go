/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

package client_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/nettest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/yorkie-team/textsync/api/converter"
	api "github.com/yorkie-team/textsync/api/v1"
	"github.com/yorkie-team/textsync/client"
	"github.com/yorkie-team/textsync/internal/version"
	"github.com/yorkie-team/textsync/pkg/document"
	"github.com/yorkie-team/textsync/pkg/errors"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
	"github.com/yorkie-team/textsync/server/rpc"
)

// setupTestServer starts an RPC server on a local listener and returns its
// address.
func setupTestServer(t *testing.T) string {
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

	t.Cleanup(func() {
		server.Shutdown(true)
		assert.NoError(t, be.Shutdown())
	})

	return server.Addr().String()
}

func dial(t *testing.T, addr string, opts ...client.Option) *client.Client {
	opts = append([]client.Option{client.WithLogger(zap.NewNop()), client.WithMaxRetries(0)}, opts...)
	cli, err := client.Dial(addr, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, cli.Close())
	})

	return cli
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	addr := setupTestServer(t)

	t.Run("attach and sync test", func(t *testing.T) {
		c1 := dial(t, addr)

		d1 := document.New("client-doc1")
		require.NoError(t, c1.Attach(ctx, d1))
		assert.True(t, d1.IsAttached())
		assert.Equal(t, int64(0), d1.Version())

		require.NoError(t, d1.Insert(0, "Hello"))
		require.NoError(t, d1.Insert(5, " world"))
		require.NoError(t, c1.Sync(ctx, d1))

		assert.Equal(t, int64(2), d1.Version())
		assert.False(t, d1.HasLocalChanges())
		assert.Equal(t, "Hello world", d1.BaseContent())

		info, err := c1.GetDocument(ctx, "client-doc1")
		require.NoError(t, err)
		assert.Equal(t, "Hello world", info.Content)
		assert.Equal(t, int64(2), info.Version)

		// A second client attaching the document loads it from the server.
		c2 := dial(t, addr)
		d2 := document.New("client-doc1")
		require.NoError(t, c2.Attach(ctx, d2))
		assert.Equal(t, "Hello world", d2.Content())
		assert.Equal(t, int64(2), d2.Version())
	})

	t.Run("attach and detach errors test", func(t *testing.T) {
		c1 := dial(t, addr)
		d1 := document.New("client-doc2")

		assert.ErrorIs(t, c1.Sync(ctx, d1), client.ErrDocumentNotAttached)
		assert.ErrorIs(t, c1.Detach(ctx, d1), client.ErrDocumentNotAttached)

		require.NoError(t, c1.Attach(ctx, d1))
		assert.ErrorIs(t, c1.Attach(ctx, d1), client.ErrDocumentAlreadyAttached)

		require.NoError(t, c1.Detach(ctx, d1))
		assert.False(t, d1.IsAttached())
	})

	t.Run("conflict test", func(t *testing.T) {
		c1, c2 := dial(t, addr), dial(t, addr)
		d1, d2 := document.New("client-doc3"), document.New("client-doc3")
		require.NoError(t, c1.Attach(ctx, d1))
		require.NoError(t, c2.Attach(ctx, d2))

		require.NoError(t, d1.Insert(0, "abc"))
		require.NoError(t, c1.Sync(ctx))

		require.NoError(t, d2.Insert(0, "xyz"))
		err := c2.Sync(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, client.ErrDocumentConflict)

		var conflict *client.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "client-doc3", conflict.DocumentID)
		assert.Equal(t, int64(0), conflict.LastKnownVersion)
		assert.Equal(t, int64(1), conflict.CurrentVersion)
		require.Len(t, conflict.MissedActions, 1)
		assert.Equal(t, d1.BaseContent(), "abc")

		// The pending action is not dropped by the conflict.
		assert.True(t, d2.HasLocalChanges())
		assert.Equal(t, "xyz", d2.Content())

		// Keep the pending insert on top of the missed actions and push it.
		require.NoError(t, c2.Resolve(d2, conflict, document.KeepPending))
		assert.Equal(t, "xyzabc", d2.Content())
		require.NoError(t, c2.Sync(ctx))
		assert.Equal(t, int64(2), d2.Version())

		// d1 has nothing to push, so it catches up without a conflict.
		require.NoError(t, c1.Sync(ctx))
		assert.Equal(t, "xyzabc", d1.Content())
		assert.Equal(t, int64(2), d1.Version())
	})

	t.Run("sync after a lost response test", func(t *testing.T) {
		c1 := dial(t, addr)
		d1 := document.New("client-doc9")
		require.NoError(t, c1.Attach(ctx, d1))
		require.NoError(t, d1.Insert(0, "Hi"))

		// the server applies the pack but the client never hears back
		conn, err := grpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, conn.Close())
		}()
		req, err := converter.ToSyncRequest(d1.CreatePack())
		require.NoError(t, err)
		resp, err := api.NewTextSyncServiceClient(conn).Sync(ctx, req)
		require.NoError(t, err)
		require.True(t, resp.Success)

		require.NoError(t, d1.Insert(2, "!"))
		require.NoError(t, c1.Sync(ctx, d1))
		require.NoError(t, c1.Sync(ctx, d1))
		assert.False(t, d1.HasLocalChanges())
		assert.Equal(t, int64(2), d1.Version())
		assert.Equal(t, "Hi!", d1.Content())

		info, err := c1.GetDocument(ctx, "client-doc9")
		require.NoError(t, err)
		assert.Equal(t, "Hi!", info.Content)
		assert.Equal(t, int64(2), info.Version)
	})

	t.Run("reload test", func(t *testing.T) {
		c1, c2 := dial(t, addr), dial(t, addr)
		d1, d2 := document.New("client-doc4"), document.New("client-doc4")
		require.NoError(t, c1.Attach(ctx, d1))
		require.NoError(t, c2.Attach(ctx, d2))

		require.NoError(t, d1.Insert(0, "server"))
		require.NoError(t, c1.Sync(ctx))

		require.NoError(t, d2.Insert(0, "local"))
		err := c2.Sync(ctx)
		assert.ErrorIs(t, err, client.ErrDocumentConflict)

		require.NoError(t, c2.Reload(ctx, d2))
		assert.Equal(t, "server", d2.Content())
		assert.Equal(t, int64(1), d2.Version())
		assert.False(t, d2.HasLocalChanges())
	})

	t.Run("sync many documents test", func(t *testing.T) {
		c1 := dial(t, addr)

		var docs []*document.Document
		for i := 0; i < 5; i++ {
			doc := document.New(fmt.Sprintf("client-many-%d", i))
			require.NoError(t, c1.Attach(ctx, doc))
			require.NoError(t, doc.Insert(0, fmt.Sprintf("doc %d", i)))
			docs = append(docs, doc)
		}

		require.NoError(t, c1.Sync(ctx))
		for i, doc := range docs {
			assert.Equal(t, int64(1), doc.Version())
			assert.Equal(t, fmt.Sprintf("doc %d", i), doc.BaseContent())
		}

		summaries, err := c1.ListDocuments(ctx)
		require.NoError(t, err)
		ids := make(map[string]bool)
		for _, summary := range summaries {
			ids[summary.ID] = true
		}
		for _, doc := range docs {
			assert.True(t, ids[doc.ID()])
		}
	})

	t.Run("request sync test", func(t *testing.T) {
		c1 := dial(t, addr, client.WithSyncWindow(50*time.Millisecond))
		d1 := document.New("client-doc7")
		require.NoError(t, c1.Attach(ctx, d1))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			require.NoError(t, d1.Insert(0, "a"))
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, c1.RequestSync(ctx, d1))
			}()
		}
		wg.Wait()

		assert.Eventually(t, func() bool {
			return !d1.HasLocalChanges() && d1.Version() == 20
		}, 5*time.Second, 10*time.Millisecond)

		info, err := c1.GetDocument(ctx, "client-doc7")
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("a", 20), info.Content)

		assert.ErrorIs(t, c1.RequestSync(ctx, document.New("client-doc8")), client.ErrDocumentNotAttached)
	})

	t.Run("sync loop test", func(t *testing.T) {
		c1, c2 := dial(t, addr), dial(t, addr)
		d1, d2 := document.New("client-doc5"), document.New("client-doc5")
		require.NoError(t, c1.Attach(ctx, d1))
		require.NoError(t, c2.Attach(ctx, d2))

		loopCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- c2.SyncLoop(loopCtx, 10*time.Millisecond, func(
				ctx context.Context,
				doc *document.Document,
				conflict *client.ConflictError,
			) error {
				return c2.Resolve(doc, conflict, document.DiscardPending)
			})
		}()

		require.NoError(t, d1.Insert(0, "loop"))
		require.NoError(t, c1.Sync(ctx))

		assert.Eventually(t, func() bool {
			return d2.Content() == "loop" && d2.Version() == 1
		}, 5*time.Second, 10*time.Millisecond)

		require.NoError(t, d2.Insert(4, "ed"))
		assert.Eventually(t, func() bool {
			return !d2.HasLocalChanges() && d2.Version() == 2
		}, 5*time.Second, 10*time.Millisecond)

		cancel()
		assert.NoError(t, <-done)

		require.NoError(t, c1.Sync(ctx))
		assert.Equal(t, "looped", d1.Content())
	})

	t.Run("sync loop stops on conflict test", func(t *testing.T) {
		c1, c2 := dial(t, addr), dial(t, addr)
		d1, d2 := document.New("client-doc6"), document.New("client-doc6")
		require.NoError(t, c1.Attach(ctx, d1))
		require.NoError(t, c2.Attach(ctx, d2))

		require.NoError(t, d1.Insert(0, "first"))
		require.NoError(t, c1.Sync(ctx))
		require.NoError(t, d2.Insert(0, "second"))

		err := c2.SyncLoop(ctx, 10*time.Millisecond, nil)
		assert.ErrorIs(t, err, client.ErrDocumentConflict)
		assert.Equal(t, "second", d2.Content())
	})

	t.Run("server version test", func(t *testing.T) {
		c1 := dial(t, addr)
		detail, err := c1.ServerVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, version.Version, detail.TextSyncVersion)
	})
}

func TestRetry(t *testing.T) {
	lis, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	cli, err := client.Dial(
		addr,
		client.WithLogger(zap.NewNop()),
		client.WithMaxRetries(2),
		client.WithMaxRetryInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, cli.Close())
	}()

	_, err = cli.GetDocument(context.Background(), "doc1")
	assert.Equal(t, codes.Unavailable, status.Code(err))
}
