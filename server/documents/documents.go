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

// Package documents provides the operations of the document store: creating
// documents lazily, appending actions to their logs and reading them back.
package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/pkg/document/action"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/backend/database"
	"github.com/yorkie-team/textsync/server/backend/sync"
	"github.com/yorkie-team/textsync/server/logging"
)

// GetOrCreate returns the document of the given ID, creating an empty one at
// version 0 if it does not exist.
func GetOrCreate(
	ctx context.Context,
	be *backend.Backend,
	docID string,
) (*database.DocInfo, error) {
	docInfo, err := be.DB.FindOrCreateDocInfo(ctx, docID)
	if err != nil {
		return nil, err
	}

	return docInfo, nil
}

// Find returns the document of the given ID for fetching. Like GetOrCreate,
// an unknown document is created empty.
func Find(
	ctx context.Context,
	be *backend.Backend,
	docID string,
) (*types.DocumentInfo, error) {
	docInfo, err := GetOrCreate(ctx, be, docID)
	if err != nil {
		return nil, err
	}

	return docInfo.ToDocumentInfo(), nil
}

// CurrentVersion returns the version of the document of the given ID. An
// unknown document is at version 0.
func CurrentVersion(
	ctx context.Context,
	be *backend.Backend,
	docID string,
) (int64, error) {
	docInfo, err := be.DB.FindDocInfo(ctx, docID)
	if errors.Is(err, database.ErrDocumentNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return docInfo.Version, nil
}

// AppendActions applies the given actions in order to the content of the
// document and stores them, the new content and the new version at once. If
// an action can not be applied, nothing is stored. The caller must hold the
// lock of the document.
func AppendActions(
	ctx context.Context,
	be *backend.Backend,
	docInfo *database.DocInfo,
	actions []action.Action,
) (*database.DocInfo, error) {
	content, err := action.ApplyAll(docInfo.Content, actions)
	if err != nil {
		return nil, fmt.Errorf("append actions to %s: %w", docInfo.ID, err)
	}

	infos, err := database.NewFromActions(docInfo.ID, actions)
	if err != nil {
		return nil, err
	}

	updated, err := be.DB.CreateActionInfos(ctx, docInfo, content, infos)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ActionsBetween returns the actions of the document that produced the
// versions in (from, to], in the order they were applied.
func ActionsBetween(
	ctx context.Context,
	be *backend.Backend,
	docID string,
	from, to int64,
) ([]action.Action, error) {
	infos, err := be.DB.FindActionInfosBetween(ctx, docID, from, to)
	if err != nil {
		return nil, err
	}

	return database.ToActions(infos)
}

// List returns the summaries of all documents ordered by ID.
func List(
	ctx context.Context,
	be *backend.Backend,
) ([]*types.DocumentSummary, error) {
	infos, err := be.DB.ListDocInfos(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*types.DocumentSummary, 0, len(infos))
	for _, info := range infos {
		summaries = append(summaries, info.ToDocumentSummary())
	}

	return summaries, nil
}

// Clear discards every document and its actions, and notifies the watchers
// in the background.
func Clear(ctx context.Context, be *backend.Backend) error {
	if err := be.DB.Clear(ctx); err != nil {
		return err
	}

	logging.From(ctx).Infof("all documents cleared")
	be.Background.AttachGoroutine(func(ctx context.Context) {
		be.PubSub.PublishAll(ctx, sync.DocEvent{
			Type: types.DocumentClearedEvent,
		})
	}, "publishClearedEvent")

	return nil
}
