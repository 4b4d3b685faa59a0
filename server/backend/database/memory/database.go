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

// Package memory implements the database interface using in-memory database.
package memory

import (
	"context"
	"fmt"
	gotime "time"

	"github.com/hashicorp/go-memdb"
	"github.com/rs/xid"

	"github.com/yorkie-team/textsync/server/backend/database"
)

// DB is an in-memory database. Its content lives as long as the process.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// FindOrCreateDocInfo finds the document or creates it if it does not exist.
func (d *DB) FindOrCreateDocInfo(_ context.Context, docID string) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", docID)
	if err != nil {
		return nil, fmt.Errorf("find or create document of %s: %w", docID, err)
	}
	if raw != nil {
		return raw.(*database.DocInfo).DeepCopy(), nil
	}

	info := database.NewDocInfo(docID, gotime.Now())
	if err := txn.Insert(tblDocuments, info); err != nil {
		return nil, fmt.Errorf("find or create document of %s: %w", docID, err)
	}
	txn.Commit()

	return info.DeepCopy(), nil
}

// FindDocInfo finds the document of the given ID.
func (d *DB) FindDocInfo(_ context.Context, docID string) (*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", docID)
	if err != nil {
		return nil, fmt.Errorf("find document of %s: %w", docID, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("find document of %s: %w", docID, database.ErrDocumentNotFound)
	}

	return raw.(*database.DocInfo).DeepCopy(), nil
}

// ListDocInfos returns all documents ordered by ID.
func (d *DB) ListDocInfos(_ context.Context) ([]*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iterator, err := txn.Get(tblDocuments, "id")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var infos []*database.DocInfo
	for raw := iterator.Next(); raw != nil; raw = iterator.Next() {
		infos = append(infos, raw.(*database.DocInfo).DeepCopy())
	}

	return infos, nil
}

// CreateActionInfos appends the given actions to the log of the document and
// stores the given content in a single transaction.
func (d *DB) CreateActionInfos(
	_ context.Context,
	docInfo *database.DocInfo,
	content string,
	infos []*database.ActionInfo,
) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", docInfo.ID)
	if err != nil {
		return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, database.ErrDocumentNotFound)
	}

	loaded := raw.(*database.DocInfo).DeepCopy()
	if loaded.Version != docInfo.Version {
		return nil, fmt.Errorf(
			"create actions of %s at v%d, stored v%d: %w",
			docInfo.ID, docInfo.Version, loaded.Version, database.ErrConflictOnUpdate,
		)
	}

	for _, info := range infos {
		loaded.Version++

		stored := info.DeepCopy()
		stored.ID = xid.New().String()
		stored.DocID = loaded.ID
		stored.Version = loaded.Version
		if err := txn.Insert(tblActions, stored); err != nil {
			return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, err)
		}
	}

	loaded.Content = content
	if len(infos) > 0 {
		loaded.UpdatedAt = gotime.Now()
	}
	if err := txn.Insert(tblDocuments, loaded); err != nil {
		return nil, fmt.Errorf("create actions of %s: %w", docInfo.ID, err)
	}
	txn.Commit()

	return loaded.DeepCopy(), nil
}

// FindActionInfosBetween returns the actions of the document whose versions
// are in (from, to].
func (d *DB) FindActionInfosBetween(
	_ context.Context,
	docID string,
	from, to int64,
) ([]*database.ActionInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iterator, err := txn.LowerBound(tblActions, "doc_id_version", docID, from+1)
	if err != nil {
		return nil, fmt.Errorf("find actions of %s in (v%d, v%d]: %w", docID, from, to, err)
	}

	var infos []*database.ActionInfo
	for raw := iterator.Next(); raw != nil; raw = iterator.Next() {
		info := raw.(*database.ActionInfo)
		if info.DocID != docID || info.Version > to {
			break
		}
		infos = append(infos, info.DeepCopy())
	}

	return infos, nil
}

// Clear discards every document and its actions.
func (d *DB) Clear(_ context.Context) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(tblActions, "id_prefix", ""); err != nil {
		return fmt.Errorf("clear actions: %w", err)
	}
	if _, err := txn.DeleteAll(tblDocuments, "id_prefix", ""); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	txn.Commit()

	return nil
}
