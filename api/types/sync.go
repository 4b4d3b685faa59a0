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
	"github.com/yorkie-team/textsync/internal/validation"
)

// SyncRequest is the request to push the pending actions of a document.
type SyncRequest struct {
	DocumentID       string           `json:"documentId" validate:"required,document_id,max=120"`
	Actions          []*ActionPayload `json:"actions" validate:"dive,required"`
	LastKnownVersion int64            `json:"lastKnownVersion" validate:"gte=0"`
}

// Validate validates the fields of the request.
func (r *SyncRequest) Validate() error {
	return validation.ValidateStruct(r)
}

// SyncResponse is the response of SyncRequest. When Success is false,
// ConflictActions has the actions the client missed since its last known
// version.
type SyncResponse struct {
	Success         bool             `json:"success"`
	CurrentVersion  int64            `json:"currentVersion"`
	ConflictActions []*ActionPayload `json:"conflictActions,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// GetDocumentRequest is the request to fetch a document.
type GetDocumentRequest struct {
	DocumentID string `json:"documentId" validate:"required,document_id,max=120"`
}

// Validate validates the fields of the request.
func (r *GetDocumentRequest) Validate() error {
	return validation.ValidateStruct(r)
}

// ListDocumentsRequest is the request to list the documents.
type ListDocumentsRequest struct{}

// ClearCacheRequest is the request to discard every document.
type ClearCacheRequest struct{}

// ClearCacheResponse is the response of ClearCacheRequest.
type ClearCacheResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body of a failed HTTP request.
type ErrorResponse struct {
	Success        bool   `json:"success"`
	CurrentVersion int64  `json:"currentVersion"`
	Error          string `json:"error"`
	Code           string `json:"code,omitempty"`
}
