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

// DocEventType represents the event that the Server delivers to the client.
type DocEventType string

const (
	// DocumentChangedEvent is an event indicating that actions were applied to
	// the document.
	DocumentChangedEvent DocEventType = "document-changed"

	// DocumentClearedEvent is an event indicating that every document was
	// discarded by an operator.
	DocumentClearedEvent DocEventType = "document-cleared"
)

// DocEvent is an event delivered to the watchers of a document.
type DocEvent struct {
	// Type is the type of the event.
	Type DocEventType `json:"type"`

	// DocumentID is the ID of the document the event occurred on.
	DocumentID string `json:"documentId"`

	// Version is the version of the document after the event.
	Version int64 `json:"version"`

	// Actions are the actions applied by the event, if any.
	Actions []*ActionPayload `json:"actions,omitempty"`
}
