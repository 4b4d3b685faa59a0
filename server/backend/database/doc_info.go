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

package database

import (
	"time"
	"unicode/utf8"

	"github.com/yorkie-team/textsync/api/types"
)

// DocInfo is a structure representing information of the document.
type DocInfo struct {
	// ID is the unique ID of the document given by clients.
	ID string `bson:"_id"`

	// Content is the content of the document at Version.
	Content string `bson:"content"`

	// Version is the number of actions applied to the document.
	Version int64 `bson:"version"`

	// CreatedAt is the time when the document is created.
	CreatedAt time.Time `bson:"created_at"`

	// UpdatedAt is the time when actions were applied to the document last.
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewDocInfo creates an empty document of the given ID.
func NewDocInfo(docID string, now time.Time) *DocInfo {
	return &DocInfo{
		ID:        docID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DeepCopy creates a deep copy of this DocInfo.
func (info *DocInfo) DeepCopy() *DocInfo {
	if info == nil {
		return nil
	}

	return &DocInfo{
		ID:        info.ID,
		Content:   info.Content,
		Version:   info.Version,
		CreatedAt: info.CreatedAt,
		UpdatedAt: info.UpdatedAt,
	}
}

// ToDocumentInfo converts this DocInfo to the wire type.
func (info *DocInfo) ToDocumentInfo() *types.DocumentInfo {
	return &types.DocumentInfo{
		ID:           info.ID,
		Content:      info.Content,
		LastModified: info.UpdatedAt,
		Version:      info.Version,
	}
}

// ToDocumentSummary converts this DocInfo to the wire type of a listing.
func (info *DocInfo) ToDocumentSummary() *types.DocumentSummary {
	return &types.DocumentSummary{
		DocumentInfo:  *info.ToDocumentInfo(),
		ContentLength: utf8.RuneCountInString(info.Content),
	}
}
