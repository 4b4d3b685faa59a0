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

package packs_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/pkg/document/action"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/documents"
	"github.com/yorkie-team/textsync/server/packs"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
)

var now = time.Now()

func newBackend(t *testing.T, maxActions int) *backend.Backend {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(&backend.Config{
		MaxActionsPerSync: maxActions,
		Hostname:          "test",
	}, nil, metrics)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})

	return be
}

func idsOf(actions []action.Action) []string {
	var ids []string
	for _, a := range actions {
		ids = append(ids, a.ID())
	}
	return ids
}

func assertConsistent(t *testing.T, be *backend.Backend, docID string) {
	ctx := context.Background()

	info, err := documents.Find(ctx, be, docID)
	require.NoError(t, err)

	log, err := documents.ActionsBetween(ctx, be, docID, 0, info.Version)
	require.NoError(t, err)
	assert.Equal(t, info.Version, int64(len(log)))

	replayed, err := action.ApplyAll("", log)
	require.NoError(t, err)
	assert.Equal(t, info.Content, replayed)
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	t.Run("stale client receives missed actions test", func(t *testing.T) {
		be := newBackend(t, backend.DefaultMaxActionsPerSync)
		insert := action.NewInsert("a-insert", now, 0, "Hi")

		result, err := packs.Sync(ctx, be, action.NewPack("doc1", 0, []action.Action{insert}))
		assert.NoError(t, err)
		assert.False(t, result.Conflicted)
		assert.Equal(t, int64(1), result.CurrentVersion)

		info, err := documents.Find(ctx, be, "doc1")
		assert.NoError(t, err)
		assert.Equal(t, "Hi", info.Content)

		result, err = packs.Sync(ctx, be, action.NewPack("doc1", 0, []action.Action{
			action.NewDelete("b-delete", now, 0, 1),
		}))
		assert.NoError(t, err)
		assert.True(t, result.Conflicted)
		assert.Equal(t, int64(1), result.CurrentVersion)
		require.Len(t, result.MissedActions, 1)
		assert.Equal(t, insert.ID(), result.MissedActions[0].ID())
		assert.Equal(t, action.KindInsert, result.MissedActions[0].Kind())

		info, err = documents.Find(ctx, be, "doc1")
		assert.NoError(t, err)
		assert.Equal(t, "Hi", info.Content)
		assert.Equal(t, int64(1), info.Version)
	})

	t.Run("insert delete replace sequence test", func(t *testing.T) {
		be := newBackend(t, backend.DefaultMaxActionsPerSync)

		_, err := packs.Sync(ctx, be, action.NewPack("doc1", 0, []action.Action{
			action.NewInsert("a1", now, 0, "Hi"),
		}))
		require.NoError(t, err)

		result, err := packs.Sync(ctx, be, action.NewPack("doc1", 1, []action.Action{
			action.NewInsert("a2", now, 2, "world"),
		}))
		require.NoError(t, err)
		info, err := documents.Find(ctx, be, "doc1")
		require.NoError(t, err)
		assert.Equal(t, "Hiworld", info.Content)

		result, err = packs.Sync(ctx, be, action.NewPack("doc1", result.CurrentVersion, []action.Action{
			action.NewDelete("a3", now, 2, 5),
		}))
		require.NoError(t, err)
		info, err = documents.Find(ctx, be, "doc1")
		require.NoError(t, err)
		assert.Equal(t, "Hi", info.Content)

		result, err = packs.Sync(ctx, be, action.NewPack("doc1", result.CurrentVersion, []action.Action{
			action.NewReplace("a4", now, 0, "Bye", 2),
		}))
		require.NoError(t, err)
		assert.Equal(t, int64(4), result.CurrentVersion)

		info, err = documents.Find(ctx, be, "doc1")
		require.NoError(t, err)
		assert.Equal(t, "Bye", info.Content)
		assertConsistent(t, be, "doc1")
	})

	t.Run("concurrent syncs with the same version test", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			be := newBackend(t, backend.DefaultMaxActionsPerSync)
			_, err := packs.Sync(ctx, be, action.NewPack("doc1", 0, []action.Action{
				action.NewInsert("base", now, 0, "abc"),
			}))
			require.NoError(t, err)

			batches := [][]action.Action{
				{action.NewInsert("x1", now, 0, "x"), action.NewInsert("x2", now, 1, "y")},
				{action.NewDelete("y1", now, 0, 1)},
			}
			results := make([]*packs.Result, len(batches))

			g, gctx := errgroup.WithContext(ctx)
			for j := range batches {
				j := j
				g.Go(func() error {
					result, err := packs.Sync(gctx, be, action.NewPack("doc1", 1, batches[j]))
					results[j] = result
					return err
				})
			}
			require.NoError(t, g.Wait())

			winner, loser := 0, 1
			if results[0].Conflicted {
				winner, loser = 1, 0
			}
			assert.False(t, results[winner].Conflicted)
			assert.True(t, results[loser].Conflicted)
			assert.Equal(t, int64(1+len(batches[winner])), results[winner].CurrentVersion)
			assert.Equal(t, results[winner].CurrentVersion, results[loser].CurrentVersion)
			assert.Equal(t, idsOf(batches[winner]), idsOf(results[loser].MissedActions))

			assertConsistent(t, be, "doc1")
		}
	})

	t.Run("conflict completeness test", func(t *testing.T) {
		be := newBackend(t, backend.DefaultMaxActionsPerSync)

		var version int64
		var contents []string
		texts := []string{"a", "b", "c", "d", "e"}
		for i, text := range texts {
			result, err := packs.Sync(ctx, be, action.NewPack("doc1", version, []action.Action{
				action.NewInsert(text, now, i, text),
			}))
			require.NoError(t, err)
			version = result.CurrentVersion

			info, err := documents.Find(ctx, be, "doc1")
			require.NoError(t, err)
			contents = append(contents, info.Content)
		}

		for v := int64(1); v < version; v++ {
			result, err := packs.Sync(ctx, be, action.NewPack("doc1", v, nil))
			require.NoError(t, err)
			assert.True(t, result.Conflicted)
			assert.Len(t, result.MissedActions, int(version-v))

			caughtUp, err := action.ApplyAll(contents[v-1], result.MissedActions)
			assert.NoError(t, err)
			assert.Equal(t, "abcde", caughtUp)
		}
	})

	t.Run("empty batch test", func(t *testing.T) {
		be := newBackend(t, backend.DefaultMaxActionsPerSync)

		_, err := packs.Sync(ctx, be, action.NewPack("doc1", 0, []action.Action{
			action.NewInsert("a1", now, 0, "Hi"),
		}))
		require.NoError(t, err)

		result, err := packs.Sync(ctx, be, action.NewPack("doc1", 1, nil))
		assert.NoError(t, err)
		assert.False(t, result.Conflicted)
		assert.Equal(t, int64(1), result.CurrentVersion)

		info, err := documents.Find(ctx, be, "doc1")
		assert.NoError(t, err)
		assert.Equal(t, "Hi", info.Content)
		assert.Equal(t, int64(1), info.Version)
	})

	t.Run("invalid pack test", func(t *testing.T) {
		be := newBackend(t, 2)

		_, err := packs.Sync(ctx, be, action.NewPack("doc1", 1, nil))
		assert.ErrorIs(t, err, packs.ErrInvalidLastKnownVersion)

		_, err = packs.Sync(ctx, be, action.NewPack("doc1", -1, nil))
		assert.ErrorIs(t, err, packs.ErrInvalidLastKnownVersion)

		_, err = packs.Sync(ctx, be, action.NewPack("doc1", 0, []action.Action{
			action.NewInsert("a1", now, 0, "a"),
			action.NewInsert("a2", now, 1, "b"),
			action.NewInsert("a3", now, 2, "c"),
		}))
		assert.ErrorIs(t, err, packs.ErrTooManyActions)

		_, err = packs.Sync(ctx, be, action.NewPack("doc1", 0, []action.Action{
			action.NewInsert("a1", now, 0, "a"),
			action.NewDelete("a2", now, 5, 1),
		}))
		assert.ErrorIs(t, err, action.ErrPositionOutOfRange)

		version, err := documents.CurrentVersion(ctx, be, "doc1")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), version)
		assertConsistent(t, be, "doc1")
	})

	t.Run("publish document changed event test", func(t *testing.T) {
		be := newBackend(t, backend.DefaultMaxActionsPerSync)
		sub := be.PubSub.Subscribe(ctx, "watcher", "doc1")
		defer be.PubSub.Unsubscribe(ctx, "doc1", sub)

		_, err := packs.Sync(ctx, be, action.NewPack("doc1", 0, []action.Action{
			action.NewInsert("a1", now, 0, "Hi"),
		}))
		require.NoError(t, err)

		event := <-sub.Events()
		assert.Equal(t, types.DocumentChangedEvent, event.Type)
		assert.Equal(t, int64(1), event.Version)
		assert.Equal(t, []string{"a1"}, idsOf(event.Actions))
	})

	t.Run("document changed events in log order test", func(t *testing.T) {
		be := newBackend(t, backend.DefaultMaxActionsPerSync)
		sub := be.PubSub.Subscribe(ctx, "watcher", "doc1")

		const syncs = 60
		received := make(chan []int64)
		go func() {
			var versions []int64
			for event := range sub.Events() {
				time.Sleep(time.Millisecond)
				versions = append(versions, event.Version)
			}
			received <- versions
		}()

		for i := 0; i < syncs; i++ {
			result, err := packs.Sync(ctx, be, action.NewPack("doc1", int64(i), []action.Action{
				action.NewInsert(fmt.Sprintf("a%d", i), now, i, "x"),
			}))
			require.NoError(t, err)
			require.False(t, result.Conflicted)
		}

		be.PubSub.Unsubscribe(ctx, "doc1", sub)
		versions := <-received
		require.Len(t, versions, syncs)
		for i, version := range versions {
			assert.Equal(t, int64(i+1), version)
		}
	})
}
