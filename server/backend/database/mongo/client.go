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

// Package mongo implements database interfaces using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	gotime "time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yorkie-team/textsync/server/backend/database"
	"github.com/yorkie-team/textsync/server/logging"
)

// Client is a client that connects to Mongo DB and reads or saves TextSync data.
type Client struct {
	config *Config
	client *mongo.Client
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.ConnectionURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(ctx, conf.ParsePingTimeout())
	defer cancelPing()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if err := ensureIndexes(ctx, client.Database(conf.TextSyncDatabase)); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof("MongoDB connected, URI: %s, DB: %s", conf.ConnectionURI, conf.TextSyncDatabase)

	return &Client{
		config: conf,
		client: client,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}

	return nil
}

// FindOrCreateDocInfo finds the document or creates it if it does not exist.
func (c *Client) FindOrCreateDocInfo(ctx context.Context, docID string) (*database.DocInfo, error) {
	now := gotime.Now()
	res := c.collection(ColDocuments).FindOneAndUpdate(ctx, bson.M{
		"_id": docID,
	}, bson.M{
		"$setOnInsert": bson.M{
			"content":    "",
			"version":    int64(0),
			"created_at": now,
			"updated_at": now,
		},
	}, options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After))

	info := &database.DocInfo{}
	if err := res.Decode(info); err != nil {
		// NOTE: two concurrent upserts of the same _id can fail with a
		// duplicate key error. The document exists then, so find it.
		if mongo.IsDuplicateKeyError(err) {
			return c.FindDocInfo(ctx, docID)
		}
		return nil, fmt.Errorf("find or create document of %s: %w", docID, err)
	}

	return info, nil
}

// FindDocInfo finds the document of the given ID.
func (c *Client) FindDocInfo(ctx context.Context, docID string) (*database.DocInfo, error) {
	res := c.collection(ColDocuments).FindOne(ctx, bson.M{"_id": docID})

	info := &database.DocInfo{}
	if err := res.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("find document of %s: %w", docID, database.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("find document of %s: %w", docID, err)
	}

	return info, nil
}

// ListDocInfos returns all documents ordered by ID.
func (c *Client) ListDocInfos(ctx context.Context) ([]*database.DocInfo, error) {
	cursor, err := c.collection(ColDocuments).Find(
		ctx,
		bson.D{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: int32(1)}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var infos []*database.DocInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return infos, nil
}

// CreateActionInfos appends the given actions to the log of the document and
// stores the given content.
//
// The actions are inserted first and the document is updated only if its
// version is still docInfo.Version. The unique index on (doc_id, version)
// rejects a concurrent writer, and the inserted actions are removed again if
// the update does not match.
func (c *Client) CreateActionInfos(
	ctx context.Context,
	docInfo *database.DocInfo,
	content string,
	infos []*database.ActionInfo,
) (*database.DocInfo, error) {
	loaded, err := c.FindDocInfo(ctx, docInfo.ID)
	if err != nil {
		return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, err)
	}
	if loaded.Version != docInfo.Version {
		return nil, fmt.Errorf(
			"create actions of %s at v%d, stored v%d: %w",
			docInfo.ID, docInfo.Version, loaded.Version, database.ErrConflictOnUpdate,
		)
	}

	actions := c.collection(ColActions)

	// Actions above the stored version were left by a write that failed
	// before updating the document.
	if _, err := actions.DeleteMany(ctx, bson.M{
		"doc_id":  docInfo.ID,
		"version": bson.M{"$gt": docInfo.Version},
	}); err != nil {
		return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, err)
	}

	version := docInfo.Version
	var docs []interface{}
	for _, info := range infos {
		version++

		stored := info.DeepCopy()
		stored.ID = xid.New().String()
		stored.DocID = docInfo.ID
		stored.Version = version
		docs = append(docs, stored)
	}

	if len(docs) > 0 {
		if _, err := actions.InsertMany(ctx, docs); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, database.ErrConflictOnUpdate)
			}
			return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, err)
		}
	}

	now := gotime.Now()
	set := bson.M{
		"content": content,
		"version": version,
	}
	if len(infos) > 0 {
		set["updated_at"] = now
	}

	res, err := c.collection(ColDocuments).UpdateOne(ctx, bson.M{
		"_id":     docInfo.ID,
		"version": docInfo.Version,
	}, bson.M{
		"$set": set,
	})
	if err != nil {
		return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, err)
	}
	if res.MatchedCount == 0 {
		if _, err := actions.DeleteMany(ctx, bson.M{
			"_id": bson.M{"$in": idsOf(docs)},
		}); err != nil {
			logging.From(ctx).Warnf("remove actions of %s: %v", docInfo.ID, err)
		}
		return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, database.ErrConflictOnUpdate)
	}

	updated := docInfo.DeepCopy()
	updated.Content = content
	updated.Version = version
	if len(infos) > 0 {
		updated.UpdatedAt = now
	}

	return updated, nil
}

// FindActionInfosBetween returns the actions of the document whose versions
// are in (from, to]. Orphaned actions above the stored version are excluded
// by the upper bound.
func (c *Client) FindActionInfosBetween(
	ctx context.Context,
	docID string,
	from, to int64,
) ([]*database.ActionInfo, error) {
	cursor, err := c.collection(ColActions).Find(ctx, bson.M{
		"doc_id":  docID,
		"version": bson.M{"$gt": from, "$lte": to},
	}, options.Find().SetSort(bson.D{{Key: "version", Value: int32(1)}}))
	if err != nil {
		return nil, fmt.Errorf("find actions of %s in (v%d, v%d]: %w", docID, from, to, err)
	}

	var infos []*database.ActionInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("find actions of %s in (v%d, v%d]: %w", docID, from, to, err)
	}

	return infos, nil
}

// Clear discards every document and its actions.
func (c *Client) Clear(ctx context.Context) error {
	for _, name := range Collections {
		if _, err := c.collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}

	return nil
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.client.Database(c.config.TextSyncDatabase).Collection(name)
}

func idsOf(docs []interface{}) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.(*database.ActionInfo).ID)
	}
	return ids
}
