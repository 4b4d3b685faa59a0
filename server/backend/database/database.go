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

// Package database provides the database interface for the TextSync backend.
package database

import (
	"context"

	"github.com/yorkie-team/textsync/pkg/errors"
)

var (
	// ErrDocumentNotFound is returned when the document could not be found.
	ErrDocumentNotFound = errors.NotFound("document not found").WithCode("ErrDocumentNotFound")

	// ErrConflictOnUpdate is returned when the version of the document was
	// changed by another writer during update.
	ErrConflictOnUpdate = errors.FailedPrecond("conflict on update").WithCode("ErrConflictOnUpdate")
)

// Database represents database which reads or saves TextSync data.
type Database interface {
	// Close all resources of this database.
	Close() error

	// FindOrCreateDocInfo finds the document of the given ID. If the document
	// does not exist, it creates an empty one at version 0.
	FindOrCreateDocInfo(ctx context.Context, docID string) (*DocInfo, error)

	// FindDocInfo finds the document of the given ID.
	FindDocInfo(ctx context.Context, docID string) (*DocInfo, error)

	// ListDocInfos returns all documents ordered by ID from a consistent
	// snapshot.
	ListDocInfos(ctx context.Context) ([]*DocInfo, error)

	// CreateActionInfos appends the given actions to the log of the document
	// and stores the given content. The versions of the actions are assigned
	// from docInfo.Version + 1. It fails with ErrConflictOnUpdate if the
	// stored version is no longer docInfo.Version. Nothing is stored on
	// failure.
	CreateActionInfos(
		ctx context.Context,
		docInfo *DocInfo,
		content string,
		infos []*ActionInfo,
	) (*DocInfo, error)

	// FindActionInfosBetween returns the actions of the document whose
	// versions are in (from, to], in the order they were applied. Actions
	// above to are never returned, even if a failed write left them behind.
	FindActionInfosBetween(ctx context.Context, docID string, from, to int64) ([]*ActionInfo, error)

	// Clear discards every document and its actions.
	Clear(ctx context.Context) error
}
