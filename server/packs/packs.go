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

// Package packs implements Sync which applies a pack of actions sent by a
// client to the document held by the server.
package packs

import (
	"context"
	"fmt"
	gotime "time"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/pkg/document/action"
	"github.com/yorkie-team/textsync/pkg/errors"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/backend/sync"
	"github.com/yorkie-team/textsync/server/documents"
	"github.com/yorkie-team/textsync/server/logging"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
)

var (
	// ErrInvalidLastKnownVersion is returned when the last known version of a
	// pack is negative or ahead of the version of the document.
	ErrInvalidLastKnownVersion = errors.InvalidArgument(
		"invalid last known version",
	).WithCode("ErrInvalidLastKnownVersion")

	// ErrTooManyActions is returned when a pack carries more actions than the
	// server accepts at once.
	ErrTooManyActions = errors.ResourceExhausted("too many actions").WithCode("ErrTooManyActions")
)

// Result is the outcome of Sync. A conflict is not an error: the client is
// stale and MissedActions are the actions it has not seen yet.
type Result struct {
	// Conflicted is true if the pack was rejected because the client was stale.
	Conflicted bool

	// CurrentVersion is the version of the document after Sync.
	CurrentVersion int64

	// MissedActions are the actions applied after the last known version of
	// the pack. It is set only on conflict.
	MissedActions []action.Action
}

// PackKey creates a new sync.Key of Sync for the given document.
func PackKey(docID string) sync.Key {
	return sync.NewKey(fmt.Sprintf("pack-%s", docID))
}

// Sync applies the actions of the given pack to the document if the client
// has seen every action of it. Otherwise it returns the actions the client
// missed without applying the pack. Syncs of the same document are
// serialized; the first one to take the lock wins.
func Sync(
	ctx context.Context,
	be *backend.Backend,
	pack *action.Pack,
) (*Result, error) {
	start := gotime.Now()
	defer func() {
		be.Metrics.ObserveSyncResponseSeconds(gotime.Since(start).Seconds())
	}()

	if pack.LastKnownVersion < 0 {
		return nil, fmt.Errorf("%s: %w", pack, ErrInvalidLastKnownVersion)
	}
	if pack.ActionsLen() > be.Config.MaxActionsPerSync {
		return nil, fmt.Errorf(
			"%d actions, max %d: %w",
			pack.ActionsLen(),
			be.Config.MaxActionsPerSync,
			ErrTooManyActions,
		)
	}

	// 01. take the lock of the document so that no other sync interleaves.
	locker := be.Lockers.Locker(PackKey(pack.DocumentID))
	if err := locker.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	// 02. read the current version of the document.
	docInfo, err := documents.GetOrCreate(ctx, be, pack.DocumentID)
	if err != nil {
		return nil, err
	}
	current := docInfo.Version

	// 03. reject a stale pack with the actions the client missed.
	if pack.LastKnownVersion < current {
		missed, err := documents.ActionsBetween(ctx, be, pack.DocumentID, pack.LastKnownVersion, current)
		if err != nil {
			return nil, err
		}

		be.Metrics.AddSync(be.Config.Hostname, prometheus.SyncResultConflict)
		be.Metrics.AddSyncSentActions(be.Config.Hostname, len(missed))
		return &Result{
			Conflicted:     true,
			CurrentVersion: current,
			MissedActions:  missed,
		}, nil
	}

	// 04. a client can not know a version the server has never produced.
	if pack.LastKnownVersion > current {
		logging.From(ctx).Warnf("%s is ahead of v%d", pack, current)
		return nil, fmt.Errorf("%s ahead of v%d: %w", pack, current, ErrInvalidLastKnownVersion)
	}

	if pack.IsEmpty() {
		be.Metrics.AddSync(be.Config.Hostname, prometheus.SyncResultSuccess)
		return &Result{CurrentVersion: current}, nil
	}

	// 05. apply the actions and store them at once.
	docInfo, err = documents.AppendActions(ctx, be, docInfo, pack.Actions)
	if err != nil {
		return nil, err
	}
	be.Metrics.AddSync(be.Config.Hostname, prometheus.SyncResultSuccess)
	be.Metrics.AddSyncReceivedActions(be.Config.Hostname, pack.ActionsLen())

	// 06. notify the watchers while holding the lock so that they receive
	// the events in the order of the log.
	be.PubSub.Publish(ctx, sync.DocEvent{
		Type:       types.DocumentChangedEvent,
		DocumentID: docInfo.ID,
		Version:    docInfo.Version,
		Actions:    pack.Actions,
	})

	return &Result{CurrentVersion: docInfo.Version}, nil
}
