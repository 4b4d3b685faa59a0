/*
 * Copyright 2024 The Yorkie Authors. All rights reserved.
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

// Package testcases contains testcases for database. It is used by database
// implementations to test their own implementations with the same testcases.
package testcases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/textsync/pkg/document/action"
	"github.com/yorkie-team/textsync/server/backend/database"
)

// docIDOf returns a document ID unique to the running test.
func docIDOf(t *testing.T) string {
	return strings.NewReplacer("/", "-", " ", "_").Replace(t.Name())
}

func actionInfosOf(t *testing.T, docID string, actions ...action.Action) []*database.ActionInfo {
	infos, err := database.NewFromActions(docID, actions)
	require.NoError(t, err)
	return infos
}

// RunFindOrCreateDocInfoTest runs the FindOrCreateDocInfo test for the given db.
func RunFindOrCreateDocInfoTest(t *testing.T, db database.Database) {
	t.Run("find or create docInfo test", func(t *testing.T) {
		ctx := context.Background()
		docID := docIDOf(t)

		_, err := db.FindDocInfo(ctx, docID)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)

		created, err := db.FindOrCreateDocInfo(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, docID, created.ID)
		assert.Equal(t, "", created.Content)
		assert.Equal(t, int64(0), created.Version)

		found, err := db.FindOrCreateDocInfo(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, created.CreatedAt.Unix(), found.CreatedAt.Unix())

		found, err = db.FindDocInfo(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, docID, found.ID)
	})
}

// RunCreateActionInfosTest runs the CreateActionInfos test for the given db.
func RunCreateActionInfosTest(t *testing.T, db database.Database) {
	now := time.Now()

	t.Run("create actionInfos test", func(t *testing.T) {
		ctx := context.Background()
		docID := docIDOf(t)

		docInfo, err := db.FindOrCreateDocInfo(ctx, docID)
		require.NoError(t, err)

		updated, err := db.CreateActionInfos(ctx, docInfo, "Hiworld", actionInfosOf(t, docID,
			action.NewInsert("a1", now, 0, "Hi"),
			action.NewInsert("a2", now, 2, "world"),
		))
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated.Version)
		assert.Equal(t, "Hiworld", updated.Content)
		assert.False(t, updated.UpdatedAt.Before(docInfo.UpdatedAt))

		stored, err := db.FindDocInfo(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.Version)
		assert.Equal(t, "Hiworld", stored.Content)

		infos, err := db.FindActionInfosBetween(ctx, docID, 0, 2)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, "a1", infos[0].ActionID)
		assert.Equal(t, int64(1), infos[0].Version)
		assert.Equal(t, "a2", infos[1].ActionID)
		assert.Equal(t, int64(2), infos[1].Version)
		assert.NotEqual(t, infos[0].ID, infos[1].ID)

		infos, err = db.FindActionInfosBetween(ctx, docID, 1, 2)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, "a2", infos[0].ActionID)

		infos, err = db.FindActionInfosBetween(ctx, docID, 2, 2)
		require.NoError(t, err)
		assert.Len(t, infos, 0)

		// actions above the upper bound are not returned
		infos, err = db.FindActionInfosBetween(ctx, docID, 0, 1)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, "a1", infos[0].ActionID)
	})

	t.Run("conflict on update test", func(t *testing.T) {
		ctx := context.Background()
		docID := docIDOf(t)

		docInfo, err := db.FindOrCreateDocInfo(ctx, docID)
		require.NoError(t, err)

		_, err = db.CreateActionInfos(ctx, docInfo, "Hi", actionInfosOf(t, docID,
			action.NewInsert("a1", now, 0, "Hi"),
		))
		require.NoError(t, err)

		// docInfo is stale now
		_, err = db.CreateActionInfos(ctx, docInfo, "Bye", actionInfosOf(t, docID,
			action.NewReplace("a2", now, 0, "Bye", 0),
		))
		assert.ErrorIs(t, err, database.ErrConflictOnUpdate)

		stored, err := db.FindDocInfo(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.Version)
		assert.Equal(t, "Hi", stored.Content)

		infos, err := db.FindActionInfosBetween(ctx, docID, 0, 10)
		require.NoError(t, err)
		assert.Len(t, infos, 1)
	})

	t.Run("document not found test", func(t *testing.T) {
		ctx := context.Background()
		_, err := db.CreateActionInfos(ctx, database.NewDocInfo(docIDOf(t), now), "", nil)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})

	t.Run("actions of other documents test", func(t *testing.T) {
		ctx := context.Background()
		docID := docIDOf(t)
		otherID := docID + "1"

		for _, id := range []string{docID, otherID} {
			docInfo, err := db.FindOrCreateDocInfo(ctx, id)
			require.NoError(t, err)
			_, err = db.CreateActionInfos(ctx, docInfo, "x", actionInfosOf(t, id,
				action.NewInsert(id, now, 0, "x"),
			))
			require.NoError(t, err)
		}

		infos, err := db.FindActionInfosBetween(ctx, docID, 0, 10)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, docID, infos[0].ActionID)
	})
}

// RunListDocInfosTest runs the ListDocInfos and Clear test for the given db.
// It clears the given db.
func RunListDocInfosTest(t *testing.T, db database.Database) {
	t.Run("list and clear docInfos test", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, db.Clear(ctx))

		for _, id := range []string{"doc-c", "doc-a", "doc-b"} {
			_, err := db.FindOrCreateDocInfo(ctx, id)
			require.NoError(t, err)
		}

		docInfo, err := db.FindDocInfo(ctx, "doc-a")
		require.NoError(t, err)
		_, err = db.CreateActionInfos(ctx, docInfo, "Hi", actionInfosOf(t, "doc-a",
			action.NewInsert("a1", time.Now(), 0, "Hi"),
		))
		require.NoError(t, err)

		infos, err := db.ListDocInfos(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 3)
		assert.Equal(t, "doc-a", infos[0].ID)
		assert.Equal(t, "Hi", infos[0].Content)
		assert.Equal(t, "doc-b", infos[1].ID)
		assert.Equal(t, "doc-c", infos[2].ID)

		require.NoError(t, db.Clear(ctx))

		infos, err = db.ListDocInfos(ctx)
		require.NoError(t, err)
		assert.Len(t, infos, 0)

		actionInfos, err := db.FindActionInfosBetween(ctx, "doc-a", 0, 10)
		require.NoError(t, err)
		assert.Len(t, actionInfos, 0)

		created, err := db.FindOrCreateDocInfo(ctx, "doc-a")
		require.NoError(t, err)
		assert.Equal(t, int64(0), created.Version)
	})
}
