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

package rpc

import (
	"context"
	"runtime"

	"github.com/yorkie-team/textsync/api/converter"
	"github.com/yorkie-team/textsync/api/types"
	api "github.com/yorkie-team/textsync/api/v1"
	"github.com/yorkie-team/textsync/internal/version"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/documents"
	"github.com/yorkie-team/textsync/server/packs"
)

type textSyncServer struct {
	api.UnimplementedTextSyncServiceServer

	backend *backend.Backend
}

// NewTextSyncServer creates a new instance of TextSyncServiceServer. It is
// served by the RPC server and called in-process by the HTTP gateway.
func NewTextSyncServer(be *backend.Backend) api.TextSyncServiceServer {
	return &textSyncServer{backend: be}
}

// Sync applies the actions of the request to the document. A stale request
// is answered with Success false and the actions it missed.
func (s *textSyncServer) Sync(
	ctx context.Context,
	req *types.SyncRequest,
) (*types.SyncResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pack, err := converter.FromSyncRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := packs.Sync(ctx, s.backend, pack)
	if err != nil {
		return nil, err
	}

	if !result.Conflicted {
		return &types.SyncResponse{
			Success:        true,
			CurrentVersion: result.CurrentVersion,
		}, nil
	}

	missed, err := converter.ToActionPayloads(result.MissedActions)
	if err != nil {
		return nil, err
	}

	return &types.SyncResponse{
		Success:         false,
		CurrentVersion:  result.CurrentVersion,
		ConflictActions: missed,
	}, nil
}

// GetDocument returns the document of the request, creating it if needed.
func (s *textSyncServer) GetDocument(
	ctx context.Context,
	req *types.GetDocumentRequest,
) (*types.DocumentInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return documents.Find(ctx, s.backend, req.DocumentID)
}

// ListDocuments returns the summaries of all documents.
func (s *textSyncServer) ListDocuments(
	ctx context.Context,
	_ *types.ListDocumentsRequest,
) (*types.ListDocumentsResponse, error) {
	summaries, err := documents.List(ctx, s.backend)
	if err != nil {
		return nil, err
	}

	return &types.ListDocumentsResponse{
		Success:   true,
		Documents: summaries,
		Count:     len(summaries),
	}, nil
}

// GetVersion returns the version of the server.
func (s *textSyncServer) GetVersion(
	_ context.Context,
	_ *types.VersionRequest,
) (*types.VersionDetail, error) {
	return &types.VersionDetail{
		TextSyncVersion: version.Version,
		GoVersion:       runtime.Version(),
		BuildDate:       version.BuildDate,
	}, nil
}
