/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

package client

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yorkie-team/textsync/pkg/document"
	"github.com/yorkie-team/textsync/pkg/errors"
)

// ConflictHandler resolves a conflict of the given document, typically with
// Client.Resolve or Client.Reload. The loop stops with the error it returns.
type ConflictHandler func(ctx context.Context, doc *document.Document, conflict *ConflictError) error

// SyncLoop syncs the attached documents every interval until the given
// context is done. Conflicts are passed to onConflict; with a nil handler the
// loop stops and returns the conflict. Other errors are logged and the sync
// is retried at the next tick.
func (c *Client) SyncLoop(ctx context.Context, interval time.Duration, onConflict ConflictHandler) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := c.syncRound(ctx, onConflict); err != nil {
			return err
		}
	}
}

// syncRound syncs every attached document once. It returns the first error
// that stops the loop.
func (c *Client) syncRound(ctx context.Context, onConflict ConflictHandler) error {
	atts, err := c.findAttachments(nil)
	if err != nil {
		return err
	}

	var group errgroup.Group
	for _, att := range atts {
		att := att
		group.Go(func() error {
			err := c.sync(ctx, att)
			if err == nil {
				return nil
			}

			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				if ctx.Err() == nil {
					c.logger.Warn("sync failed", zap.String("document", att.doc.ID()), zap.Error(err))
				}
				return nil
			}

			if onConflict == nil {
				return conflict
			}
			return onConflict(ctx, att.doc, conflict)
		})
	}

	return group.Wait()
}
