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

// Package action provides the edit actions that are applied to the content of
// a text document, and the pack that carries a batch of them to the server.
package action

import (
	"fmt"
	"time"

	"github.com/yorkie-team/textsync/pkg/errors"
)

var (
	// ErrPositionOutOfRange is returned when the position of an action is not
	// within the content it is applied to.
	ErrPositionOutOfRange = errors.InvalidArgument("position out of range").WithCode("ErrPositionOutOfRange")

	// ErrNegativeLength is returned when a delete action has a negative length.
	ErrNegativeLength = errors.InvalidArgument("negative length").WithCode("ErrNegativeLength")

	// ErrUnsupportedAction is returned when the given action is not one of
	// Insert, Delete and Replace.
	ErrUnsupportedAction = errors.InvalidArgument("unsupported action").WithCode("ErrUnsupportedAction")
)

// Kind represents the kind of Action.
type Kind string

// Belows are the kinds of Action. The values are used on the wire.
const (
	KindInsert  Kind = "INSERT"
	KindDelete  Kind = "DELETE"
	KindReplace Kind = "REPLACE"
)

// Action is a single edit of the content of a document. The position of an
// action is meaningful only against the content right before it is applied.
type Action interface {
	// ID returns the unique ID of this action.
	ID() string

	// Kind returns the kind of this action.
	Kind() Kind

	// Timestamp returns the time when this action was created. It is for
	// information only; the position in the log decides the order.
	Timestamp() time.Time

	// Position returns the offset, in runes, this action is applied at. It
	// is not a UTF-16 offset as in JavaScript strings.
	Position() int

	// Execute returns the content after applying this action to the given
	// content.
	Execute(content string) (string, error)
}

// Apply returns the content after applying the given action.
func Apply(content string, action Action) (string, error) {
	return action.Execute(content)
}

// ApplyAll applies the given actions in order. If one of them fails, the
// original content is returned with the error.
func ApplyAll(content string, actions []Action) (string, error) {
	result := content
	for i, a := range actions {
		next, err := a.Execute(result)
		if err != nil {
			return content, fmt.Errorf("apply action %d(%s): %w", i, a.ID(), err)
		}
		result = next
	}

	return result, nil
}

// checkPosition checks that the position is within [0, length].
func checkPosition(pos, length int) error {
	if pos < 0 || pos > length {
		return fmt.Errorf("%d of %d: %w", pos, length, ErrPositionOutOfRange)
	}
	return nil
}

// Insert inserts text at a position.
type Insert struct {
	id        string
	timestamp time.Time
	position  int
	content   string
}

// NewInsert creates a new instance of Insert.
func NewInsert(id string, timestamp time.Time, position int, content string) *Insert {
	return &Insert{
		id:        id,
		timestamp: timestamp,
		position:  position,
		content:   content,
	}
}

// ID returns the ID of this action.
func (a *Insert) ID() string { return a.id }

// Kind returns KindInsert.
func (a *Insert) Kind() Kind { return KindInsert }

// Timestamp returns the creation time of this action.
func (a *Insert) Timestamp() time.Time { return a.timestamp }

// Position returns the position to insert at.
func (a *Insert) Position() int { return a.position }

// Content returns the inserted text.
func (a *Insert) Content() string { return a.content }

// Execute inserts the text of this action into the given content.
func (a *Insert) Execute(content string) (string, error) {
	runes := []rune(content)
	if err := checkPosition(a.position, len(runes)); err != nil {
		return "", err
	}

	return string(runes[:a.position]) + a.content + string(runes[a.position:]), nil
}

// Delete removes a run of characters starting at a position.
type Delete struct {
	id        string
	timestamp time.Time
	position  int
	length    int
}

// NewDelete creates a new instance of Delete.
func NewDelete(id string, timestamp time.Time, position int, length int) *Delete {
	return &Delete{
		id:        id,
		timestamp: timestamp,
		position:  position,
		length:    length,
	}
}

// ID returns the ID of this action.
func (a *Delete) ID() string { return a.id }

// Kind returns KindDelete.
func (a *Delete) Kind() Kind { return KindDelete }

// Timestamp returns the creation time of this action.
func (a *Delete) Timestamp() time.Time { return a.timestamp }

// Position returns the position the deletion starts at.
func (a *Delete) Position() int { return a.position }

// Length returns the number of characters to delete.
func (a *Delete) Length() int { return a.length }

// Execute deletes characters from the given content. A range running past
// the end of the content deletes to the end.
func (a *Delete) Execute(content string) (string, error) {
	runes := []rune(content)
	if err := checkPosition(a.position, len(runes)); err != nil {
		return "", err
	}
	if a.length < 0 {
		return "", fmt.Errorf("%d: %w", a.length, ErrNegativeLength)
	}

	end := a.position + a.length
	if end > len(runes) {
		end = len(runes)
	}

	return string(runes[:a.position]) + string(runes[end:]), nil
}

// Replace substitutes the whole content.
type Replace struct {
	id        string
	timestamp time.Time
	position  int
	content   string
	length    int
}

// NewReplace creates a new instance of Replace. The length records the size
// of the content before the replacement.
func NewReplace(id string, timestamp time.Time, position int, content string, length int) *Replace {
	return &Replace{
		id:        id,
		timestamp: timestamp,
		position:  position,
		content:   content,
		length:    length,
	}
}

// ID returns the ID of this action.
func (a *Replace) ID() string { return a.id }

// Kind returns KindReplace.
func (a *Replace) Kind() Kind { return KindReplace }

// Timestamp returns the creation time of this action.
func (a *Replace) Timestamp() time.Time { return a.timestamp }

// Position returns the position of this action. It does not affect the
// resulting content.
func (a *Replace) Position() int { return a.position }

// Content returns the replacement text.
func (a *Replace) Content() string { return a.content }

// Length returns the size of the content before the replacement.
func (a *Replace) Length() int { return a.length }

// Execute returns the replacement text. The position is still checked so that
// every kind of action follows the same range policy.
func (a *Replace) Execute(content string) (string, error) {
	if err := checkPosition(a.position, len([]rune(content))); err != nil {
		return "", err
	}

	return a.content, nil
}
