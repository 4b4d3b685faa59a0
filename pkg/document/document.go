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

// Package document provides the client-side state of a text document: the
// content confirmed by the server, the version it was confirmed at, and the
// local actions that have not been synced yet.
package document

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/xid"

	"github.com/yorkie-team/textsync/pkg/document/action"
	"github.com/yorkie-team/textsync/pkg/errors"
)

// StateType represents the state of the document.
type StateType int

const (
	// StatusDetached means that the document is not attached to a client.
	StatusDetached StateType = iota

	// StatusAttached means that the document is attached to a client and its
	// local actions are synced by the client.
	StatusAttached
)

var (
	// ErrPackMismatch is returned when the synced pack does not match the
	// pending actions of the document.
	ErrPackMismatch = errors.FailedPrecond("pack does not match pending actions").WithCode("ErrPackMismatch")

	// ErrVersionMismatch is returned when the version a pack or missed actions
	// were built on is not the version of the document.
	ErrVersionMismatch = errors.FailedPrecond("version mismatch").WithCode("ErrVersionMismatch")
)

// RebaseFunc decides what to do with the pending actions after a conflict.
// It receives the base content with the missed actions already applied and
// returns the actions to keep pending against it.
type RebaseFunc func(base string, missed, pending []action.Action) ([]action.Action, error)

// DiscardPending drops every pending action. It is equivalent to reloading
// the document.
func DiscardPending(_ string, _, _ []action.Action) ([]action.Action, error) {
	return nil, nil
}

// KeepPending keeps the pending actions as they are. Rebase fails if they no
// longer apply to the new base.
func KeepPending(_ string, _, pending []action.Action) ([]action.Action, error) {
	return pending, nil
}

// Document is the local replica of a text document.
type Document struct {
	mu sync.RWMutex

	id      string
	status  StateType
	base    string
	content string
	version int64
	pending []action.Action
}

// New creates a new instance of Document with empty content at version 0.
func New(id string) *Document {
	return &Document{
		id:     id,
		status: StatusDetached,
	}
}

// ID returns the ID of this document.
func (d *Document) ID() string {
	return d.id
}

// Version returns the last version of this document confirmed by the server.
func (d *Document) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.version
}

// Content returns the local view of the content, including pending actions.
func (d *Document) Content() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.content
}

// BaseContent returns the content confirmed by the server at Version.
func (d *Document) BaseContent() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.base
}

// Pending returns a copy of the actions not synced yet.
func (d *Document) Pending() []action.Action {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]action.Action(nil), d.pending...)
}

// HasLocalChanges returns whether this document has pending actions or not.
func (d *Document) HasLocalChanges() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.pending) > 0
}

// SetStatus updates the status of this document.
func (d *Document) SetStatus(status StateType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status = status
}

// IsAttached returns whether this document is attached or not.
func (d *Document) IsAttached() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.status == StatusAttached
}

// Insert inserts the given text at the given position of the local content.
func (d *Document) Insert(position int, text string) error {
	return d.Push(action.NewInsert(xid.New().String(), time.Now(), position, text))
}

// Delete deletes length characters from the given position of the local
// content.
func (d *Document) Delete(position, length int) error {
	return d.Push(action.NewDelete(xid.New().String(), time.Now(), position, length))
}

// Replace replaces the whole local content with the given text.
func (d *Document) Replace(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a := action.NewReplace(xid.New().String(), time.Now(), 0, text, utf8.RuneCountInString(d.content))
	return d.push(a)
}

// Push applies the given action to the local content and buffers it. An
// action that does not apply is not buffered.
func (d *Document) Push(a action.Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.push(a)
}

func (d *Document) push(a action.Action) error {
	content, err := a.Execute(d.content)
	if err != nil {
		return err
	}

	d.content = content
	d.pending = append(d.pending, a)
	return nil
}

// CreatePack creates a pack of the pending actions to send to the server.
// The actions stay pending until ApplySynced confirms them.
func (d *Document) CreatePack() *action.Pack {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return action.NewPack(d.id, d.version, append([]action.Action(nil), d.pending...))
}

// ApplySynced confirms the actions of the given pack at the given version.
// Only the actions of the pack are removed from the pending actions; actions
// pushed after the pack was created stay pending.
func (d *Document) ApplySynced(pack *action.Pack, version int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pack.LastKnownVersion != d.version {
		return fmt.Errorf("pack v%d, document v%d: %w", pack.LastKnownVersion, d.version, ErrVersionMismatch)
	}
	if len(pack.Actions) > len(d.pending) {
		return fmt.Errorf("%d actions, %d pending: %w", len(pack.Actions), len(d.pending), ErrPackMismatch)
	}
	for i, a := range pack.Actions {
		if d.pending[i].ID() != a.ID() {
			return fmt.Errorf("action %d(%s): %w", i, a.ID(), ErrPackMismatch)
		}
	}

	base, err := action.ApplyAll(d.base, pack.Actions)
	if err != nil {
		return err
	}

	d.base = base
	d.pending = append([]action.Action(nil), d.pending[len(pack.Actions):]...)
	d.version = version
	return nil
}

// Rebase folds the actions missed since Version into the base content and
// replaces the pending actions with what the given policy returns. Pending
// actions found among the missed ones were already applied by the server;
// they are confirmed and not given to the policy. If the policy fails or its
// actions do not apply, the document is not changed.
func (d *Document) Rebase(missed []action.Action, version int64, rebase RebaseFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if int64(len(missed)) != version-d.version {
		return fmt.Errorf(
			"%d missed actions from v%d to v%d: %w",
			len(missed), d.version, version, ErrVersionMismatch,
		)
	}

	base, err := action.ApplyAll(d.base, missed)
	if err != nil {
		return err
	}

	unconfirmed := d.pending[confirmedLen(d.pending, missed):]
	pending, err := rebase(base, missed, append([]action.Action(nil), unconfirmed...))
	if err != nil {
		return fmt.Errorf("rebase pending actions: %w", err)
	}

	content, err := action.ApplyAll(base, pending)
	if err != nil {
		return err
	}

	d.base = base
	d.content = content
	d.pending = pending
	d.version = version
	return nil
}

// confirmedLen returns the length of the prefix of pending whose actions are
// among the missed ones.
func confirmedLen(pending, missed []action.Action) int {
	ids := make(map[string]struct{}, len(missed))
	for _, a := range missed {
		ids[a.ID()] = struct{}{}
	}

	n := 0
	for n < len(pending) {
		if _, ok := ids[pending[n].ID()]; !ok {
			break
		}
		n++
	}
	return n
}

// Reset replaces the state of this document with the given content and
// version, discarding every pending action.
func (d *Document) Reset(content string, version int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.base = content
	d.content = content
	d.version = version
	d.pending = nil
}
