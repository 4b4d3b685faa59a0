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

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yorkie-team/textsync/api/types"
	api "github.com/yorkie-team/textsync/api/v1"
	"github.com/yorkie-team/textsync/internal/validation"
	"github.com/yorkie-team/textsync/pkg/errors"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/logging"
)

var (
	// ErrMalformedRequest is returned when the body of a request is not a
	// valid JSON document of the expected shape.
	ErrMalformedRequest = errors.InvalidArgument("malformed request").WithCode("ErrMalformedRequest")

	// ErrRequestTooLarge is returned when the body of a request exceeds
	// MaxRequestBytes.
	ErrRequestTooLarge = errors.ResourceExhausted("request too large").WithCode("ErrRequestTooLarge")

	// ErrMethodNotAllowed is returned when the route exists for another method.
	ErrMethodNotAllowed = errors.InvalidArgument("method not allowed").WithCode("ErrMethodNotAllowed")

	// ErrRouteNotFound is returned when no route matches the request.
	ErrRouteNotFound = errors.NotFound("not found").WithCode("ErrRouteNotFound")
)

type handlers struct {
	be              *backend.Backend
	service         api.TextSyncServiceServer
	maxRequestBytes int64
	closing         context.Context
}

// sync handles POST /sync. A stale request is answered with 409 and the
// actions the client missed.
func (h *handlers) sync(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)

	req := &types.SyncRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, fmt.Errorf("limit %d bytes: %w", maxBytesErr.Limit, ErrRequestTooLarge))
			return
		}
		writeError(w, r, fmt.Errorf("%s: %w", err.Error(), ErrMalformedRequest))
		return
	}

	resp, err := h.service.Sync(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusConflict
	}
	writeJSON(w, r, status, resp)
}

// getDocument handles GET /document/{id}.
func (h *handlers) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetDocument(r.Context(), &types.GetDocumentRequest{
		DocumentID: mux.Vars(r)["id"],
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, doc)
}

// listDocuments handles GET /documents.
func (h *handlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListDocuments(r.Context(), &types.ListDocumentsRequest{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusMethodNotAllowed, &types.ErrorResponse{
		Success: false,
		Error:   ErrMethodNotAllowed.Error(),
		Code:    ErrMethodNotAllowed.Code(),
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, fmt.Errorf("%s %s: %w", r.Method, r.URL.Path, ErrRouteNotFound))
}

// statusOf returns the HTTP status of the given error.
func statusOf(err error) int {
	var structErr *validation.StructError
	if errors.As(err, &structErr) {
		return http.StatusBadRequest
	}

	return errors.StatusOf(err).HTTPStatus()
}

// writeError writes the given error as an ErrorResponse. The message of an
// internal error is logged and not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logging.From(r.Context()).Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		message = http.StatusText(status)
	}

	writeJSON(w, r, status, &types.ErrorResponse{
		Success: false,
		Error:   message,
		Code:    errors.CodeOf(err),
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(r.Context()).Warnf("write response: %v", err)
	}
}
