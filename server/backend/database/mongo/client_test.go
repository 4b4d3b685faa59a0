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

package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomongo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yorkie-team/textsync/pkg/document/action"
	"github.com/yorkie-team/textsync/server/backend/database"
	"github.com/yorkie-team/textsync/server/backend/database/mongo"
	"github.com/yorkie-team/textsync/server/backend/database/testcases"
)

// setupTestClient dials the MongoDB given by TEXTSYNC_TEST_MONGO_URI, or
// skips the test if it is not set.
func setupTestClient(t *testing.T) (*mongo.Client, *mongo.Config) {
	uri := os.Getenv("TEXTSYNC_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEXTSYNC_TEST_MONGO_URI is not set")
	}

	config := &mongo.Config{
		ConnectionTimeout: "5s",
		ConnectionURI:     uri,
		TextSyncDatabase:  fmt.Sprintf("test-textsync-%d", time.Now().UnixNano()),
		PingTimeout:       "5s",
	}
	assert.NoError(t, config.Validate())

	cli, err := mongo.Dial(config)
	require.NoError(t, err)

	return cli, config
}

func TestClient(t *testing.T) {
	cli, config := setupTestClient(t)
	defer func() {
		assert.NoError(t, cli.Clear(context.Background()))
		assert.NoError(t, cli.Close())
	}()

	t.Run("RunFindOrCreateDocInfo test", func(t *testing.T) {
		testcases.RunFindOrCreateDocInfoTest(t, cli)
	})

	t.Run("RunCreateActionInfos test", func(t *testing.T) {
		testcases.RunCreateActionInfosTest(t, cli)
	})

	t.Run("RunListDocInfos test", func(t *testing.T) {
		testcases.RunListDocInfosTest(t, cli)
	})

	t.Run("orphaned actions test", func(t *testing.T) {
		ctx := context.Background()
		docID := "orphaned-actions"
		now := time.Now()

		docInfo, err := cli.FindOrCreateDocInfo(ctx, docID)
		require.NoError(t, err)
		infos, err := database.NewFromActions(docID, []action.Action{
			action.NewInsert("a1", now, 0, "Hi"),
		})
		require.NoError(t, err)
		docInfo, err = cli.CreateActionInfos(ctx, docInfo, "Hi", infos)
		require.NoError(t, err)
		assert.Equal(t, int64(1), docInfo.Version)

		// leave an action at v2 without updating the document, as a write
		// that failed between the insert and the update does.
		raw, err := gomongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionURI))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, raw.Disconnect(ctx))
		}()
		_, err = raw.Database(config.TextSyncDatabase).Collection(mongo.ColActions).InsertOne(ctx, &database.ActionInfo{
			ID:        "orphan",
			DocID:     docID,
			Version:   2,
			ActionID:  "a2",
			Kind:      action.KindInsert,
			Content:   "!",
			Timestamp: now,
		})
		require.NoError(t, err)

		found, err := cli.FindActionInfosBetween(ctx, docID, 0, docInfo.Version)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "a1", found[0].ActionID)

		// the next write removes the orphan and takes its version.
		infos, err = database.NewFromActions(docID, []action.Action{
			action.NewInsert("a3", now, 2, "?"),
		})
		require.NoError(t, err)
		docInfo, err = cli.CreateActionInfos(ctx, docInfo, "Hi?", infos)
		require.NoError(t, err)

		found, err = cli.FindActionInfosBetween(ctx, docID, 0, docInfo.Version)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "a3", found[1].ActionID)
	})
}
