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
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/yorkie-team/textsync/api/converter"
	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/server/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// watchDocument handles GET /documents/{id}/watch. It upgrades the
// connection to websocket and sends the events of the document until the
// client goes away or the server shuts down.
func (h *handlers) watchDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID := mux.Vars(r)["id"]
	if err := (&types.GetDocumentRequest{DocumentID: docID}).Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.From(ctx).Warnf("upgrade watch of %s: %v", docID, err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logging.From(ctx).Debugf("close watch of %s: %v", docID, err)
		}
	}()

	sub := h.be.PubSub.Subscribe(ctx, r.RemoteAddr, docID)
	defer h.be.PubSub.Unsubscribe(ctx, docID, sub)

	hostname := h.be.Config.Hostname
	h.be.Metrics.AddWatchDocumentConnections(hostname)
	defer h.be.Metrics.RemoveWatchDocumentConnections(hostname)

	// The client sends nothing, reading only detects that it went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-h.closing.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
			if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
				logging.From(ctx).Debugf("close watch of %s: %v", docID, err)
			}
			return
		case <-gone:
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}

			payloads, err := converter.ToActionPayloads(event.Actions)
			if err != nil {
				logging.From(ctx).Error(err)
				return
			}

			if err := conn.WriteJSON(&types.DocEvent{
				Type:       event.Type,
				DocumentID: event.DocumentID,
				Version:    event.Version,
				Actions:    payloads,
			}); err != nil {
				logging.From(ctx).Debugf("write watch of %s: %v", docID, err)
				return
			}
			h.be.Metrics.AddWatchDocumentEvents(hostname, event.Type)
		}
	}
}
