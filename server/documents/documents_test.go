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

package documents_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/pkg/document/action"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/backend/database"
	"github.com/yorkie-team/textsync/server/documents"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
)

func newBackend(t *testing.T) *backend.Backend {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(&backend.Config{
		MaxActionsPerSync: backend.DefaultMaxActionsPerSync,
		Hostname:          "test",
	}, nil, metrics)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})

	return be
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("get or create test", func(t *testing.T) {
		be := newBackend(t)

		version, err := documents.CurrentVersion(ctx, be, "doc1")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), version)

		docInfo, err := documents.GetOrCreate(ctx, be, "doc1")
		assert.NoError(t, err)
		assert.Equal(t, "", docInfo.Content)
		assert.Equal(t, int64(0), docInfo.Version)

		info, err := documents.Find(ctx, be, "doc2")
		assert.NoError(t, err)
		assert.Equal(t, "doc2", info.ID)
		assert.Equal(t, int64(0), info.Version)
	})

	t.Run("append actions test", func(t *testing.T) {
		be := newBackend(t)

		docInfo, err := documents.GetOrCreate(ctx, be, "doc1")
		require.NoError(t, err)

		docInfo, err = documents.AppendActions(ctx, be, docInfo, []action.Action{
			action.NewInsert("a1", now, 0, "Hello"),
			action.NewInsert("a2", now, 5, " World"),
		})
		assert.NoError(t, err)
		assert.Equal(t, "Hello World", docInfo.Content)
		assert.Equal(t, int64(2), docInfo.Version)

		docInfo, err = documents.AppendActions(ctx, be, docInfo, []action.Action{
			action.NewDelete("a3", now, 5, 6),
		})
		assert.NoError(t, err)
		assert.Equal(t, "Hello", docInfo.Content)

		version, err := documents.CurrentVersion(ctx, be, "doc1")
		assert.NoError(t, err)
		assert.Equal(t, int64(3), version)

		actions, err := documents.ActionsBetween(ctx, be, "doc1", 1, version)
		assert.NoError(t, err)
		require.Len(t, actions, 2)
		assert.Equal(t, "a2", actions[0].ID())
		assert.Equal(t, "a3", actions[1].ID())

		all, err := documents.ActionsBetween(ctx, be, "doc1", 0, version)
		assert.NoError(t, err)
		replayed, err := action.ApplyAll("", all)
		assert.NoError(t, err)
		assert.Equal(t, docInfo.Content, replayed)
	})

	t.Run("append invalid actions test", func(t *testing.T) {
		be := newBackend(t)

		docInfo, err := documents.GetOrCreate(ctx, be, "doc1")
		require.NoError(t, err)

		_, err = documents.AppendActions(ctx, be, docInfo, []action.Action{
			action.NewInsert("a1", now, 0, "abc"),
			action.NewInsert("a2", now, 10, "x"),
		})
		assert.ErrorIs(t, err, action.ErrPositionOutOfRange)

		info, err := documents.Find(ctx, be, "doc1")
		assert.NoError(t, err)
		assert.Equal(t, "", info.Content)
		assert.Equal(t, int64(0), info.Version)

		actions, err := documents.ActionsBetween(ctx, be, "doc1", 0, info.Version)
		assert.NoError(t, err)
		assert.Len(t, actions, 0)
	})

	t.Run("append with stale document info test", func(t *testing.T) {
		be := newBackend(t)

		stale, err := documents.GetOrCreate(ctx, be, "doc1")
		require.NoError(t, err)

		_, err = documents.AppendActions(ctx, be, stale, []action.Action{
			action.NewInsert("a1", now, 0, "a"),
		})
		require.NoError(t, err)

		_, err = documents.AppendActions(ctx, be, stale, []action.Action{
			action.NewInsert("a2", now, 0, "b"),
		})
		assert.ErrorIs(t, err, database.ErrConflictOnUpdate)
	})

	t.Run("list and clear test", func(t *testing.T) {
		be := newBackend(t)

		docInfo, err := documents.GetOrCreate(ctx, be, "doc2")
		require.NoError(t, err)
		_, err = documents.AppendActions(ctx, be, docInfo, []action.Action{
			action.NewInsert("a1", now, 0, "안녕"),
		})
		require.NoError(t, err)
		_, err = documents.GetOrCreate(ctx, be, "doc1")
		require.NoError(t, err)

		summaries, err := documents.List(ctx, be)
		assert.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "doc1", summaries[0].ID)
		assert.Equal(t, "doc2", summaries[1].ID)
		assert.Equal(t, 2, summaries[1].ContentLength)

		sub := be.PubSub.Subscribe(ctx, "watcher", "doc2")
		defer be.PubSub.Unsubscribe(ctx, "doc2", sub)

		assert.NoError(t, documents.Clear(ctx, be))

		event := <-sub.Events()
		assert.Equal(t, types.DocumentClearedEvent, event.Type)
		assert.Equal(t, "doc2", event.DocumentID)

		summaries, err = documents.List(ctx, be)
		assert.NoError(t, err)
		assert.Len(t, summaries, 0)
	})
}
