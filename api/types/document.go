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

package types

import (
	"time"
)

// DocumentInfo is a document with its content.
type DocumentInfo struct {
	// ID is the ID of the document.
	ID string `json:"id" yaml:"id"`

	// Content is the content of the document.
	Content string `json:"content" yaml:"content"`

	// LastModified is the time when the document was updated.
	LastModified time.Time `json:"lastModified" yaml:"lastModified"`

	// Version is the number of actions applied to the document.
	Version int64 `json:"version" yaml:"version"`
}

// DocumentSummary is a document in a listing.
type DocumentSummary struct {
	DocumentInfo `yaml:",inline"`

	// ContentLength is the number of characters of the content.
	ContentLength int `json:"contentLength" yaml:"contentLength"`
}

// ListDocumentsResponse is the response of listing the documents.
type ListDocumentsResponse struct {
	Success   bool               `json:"success" yaml:"success"`
	Documents []*DocumentSummary `json:"documents" yaml:"documents"`
	Count     int                `json:"count" yaml:"count"`
}
