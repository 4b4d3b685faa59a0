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

// Package types provides the messages exchanged between clients and the
// server over HTTP and gRPC.
package types

// ActionType is the type of an action on the wire.
type ActionType string

// Belows are the types of action.
const (
	ActionTypeInsert  ActionType = "INSERT"
	ActionTypeDelete  ActionType = "DELETE"
	ActionTypeReplace ActionType = "REPLACE"
)

// ActionPayload is an action on the wire.
type ActionPayload struct {
	// ID is the unique ID of the action.
	ID string `json:"id" yaml:"id" validate:"required,max=64"`

	// Type is one of INSERT, DELETE and REPLACE.
	Type ActionType `json:"type" yaml:"type" validate:"required,oneof=INSERT DELETE REPLACE"`

	// Timestamp is the time the action was created in milliseconds since the
	// epoch.
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`

	// Position is the offset, in Unicode code points, the action is applied
	// at. JavaScript strings count UTF-16 code units, so an editor in the
	// browser must convert offsets past characters outside the Basic
	// Multilingual Plane, such as emoji.
	Position int `json:"position" yaml:"position" validate:"gte=0"`

	// Content is the text of INSERT and REPLACE.
	Content *string `json:"content,omitempty" yaml:"content,omitempty"`

	// Length is the number of code points of DELETE, or the size of the
	// replaced content of REPLACE.
	Length *int `json:"length,omitempty" yaml:"length,omitempty" validate:"omitempty,gte=0"`
}
