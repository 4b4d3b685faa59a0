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

// Package client provides the client of TextSync. The client holds attached
// documents and pushes their local actions to the server.
package client

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/yorkie-team/textsync/api/converter"
	"github.com/yorkie-team/textsync/api/types"
	api "github.com/yorkie-team/textsync/api/v1"
	"github.com/yorkie-team/textsync/pkg/document"
	"github.com/yorkie-team/textsync/pkg/document/action"
	"github.com/yorkie-team/textsync/pkg/errors"
	"github.com/yorkie-team/textsync/pkg/limit"
)

var (
	// ErrDocumentNotAttached occurs when the given document is not attached to
	// this client.
	ErrDocumentNotAttached = errors.FailedPrecond("document is not attached").WithCode("ErrDocumentNotAttached")

	// ErrDocumentAlreadyAttached occurs when the given document is already
	// attached to this client.
	ErrDocumentAlreadyAttached = errors.FailedPrecond(
		"document is already attached",
	).WithCode("ErrDocumentAlreadyAttached")

	// ErrDocumentConflict occurs when the server has actions the document has
	// not seen. The error is a *ConflictError.
	ErrDocumentConflict = errors.FailedPrecond("document conflict").WithCode("ErrDocumentConflict")
)

// ConflictError is returned by Sync when the document is behind the server.
// The pending actions of the document are kept; resolve the conflict with
// Resolve or Reload.
type ConflictError struct {
	// DocumentID is the ID of the document.
	DocumentID string

	// LastKnownVersion is the version the rejected pack was built on.
	LastKnownVersion int64

	// CurrentVersion is the version of the document on the server.
	CurrentVersion int64

	// MissedActions are the actions applied on the server after
	// LastKnownVersion, in order.
	MissedActions []action.Action
}

// Error returns the message of this error.
func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"%s at v%d, server at v%d: %s",
		e.DocumentID,
		e.LastKnownVersion,
		e.CurrentVersion,
		ErrDocumentConflict.Error(),
	)
}

// Unwrap returns ErrDocumentConflict.
func (e *ConflictError) Unwrap() error {
	return ErrDocumentConflict
}

type attachment struct {
	// syncMu serializes the syncs of the document so that a pack is confirmed
	// before the next one is created.
	syncMu    gosync.Mutex
	doc       *document.Document
	throttler *limit.Throttler
}

// Client is a normal client that can communicate with the server.
// It has documents and sends actions of the document in local
// to the server to synchronize with other replicas in remote.
type Client struct {
	conn    *grpc.ClientConn
	client  api.TextSyncServiceClient
	options Options
	logger  *zap.Logger

	mu          gosync.RWMutex
	attachments map[string]*attachment
}

// Dial creates an instance of Client and dials the server of the given
// address.
func Dial(rpcAddr string, opts ...Option) (*Client, error) {
	options := Options{
		MaxRetries:       DefaultMaxRetries,
		MaxRetryInterval: DefaultMaxRetryInterval,
		SyncWindow:       DefaultSyncWindow,
	}
	for _, opt := range opts {
		opt(&options)
	}

	logger := options.Logger
	if logger == nil {
		l, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		logger = l
	}

	creds := insecure.NewCredentials()
	if options.CertFile != "" {
		tlsCreds, err := credentials.NewClientTLSFromFile(options.CertFile, options.ServerNameOverride)
		if err != nil {
			return nil, fmt.Errorf("create client tls from file: %w", err)
		}
		creds = tlsCreds
	}

	conn, err := grpc.Dial(rpcAddr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dial to %s: %w", rpcAddr, err)
	}

	return &Client{
		conn:        conn,
		client:      api.NewTextSyncServiceClient(conn),
		options:     options,
		logger:      logger,
		attachments: make(map[string]*attachment),
	}, nil
}

// Close closes all resources of this client. Attached documents keep their
// pending actions.
func (c *Client) Close() error {
	c.mu.Lock()
	for _, att := range c.attachments {
		att.doc.SetStatus(document.StatusDetached)
	}
	c.attachments = make(map[string]*attachment)
	c.mu.Unlock()

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("close connection: %w", err)
	}

	return nil
}

// Attach attaches the given document to this client. A document without
// local changes is loaded with the content of the server. A document with
// local changes keeps them and is reconciled by the next Sync.
func (c *Client) Attach(ctx context.Context, doc *document.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.attachments[doc.ID()]; ok {
		return fmt.Errorf("attach %s: %w", doc.ID(), ErrDocumentAlreadyAttached)
	}

	if !doc.HasLocalChanges() {
		info, err := c.getDocument(ctx, doc.ID())
		if err != nil {
			return err
		}
		doc.Reset(info.Content, info.Version)
	}

	doc.SetStatus(document.StatusAttached)
	c.attachments[doc.ID()] = &attachment{
		doc:       doc,
		throttler: limit.NewThrottler(c.options.SyncWindow),
	}

	return nil
}

// Detach detaches the given document from this client. Its pending actions
// are not pushed.
func (c *Client) Detach(_ context.Context, doc *document.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.attachments[doc.ID()]; !ok {
		return fmt.Errorf("detach %s: %w", doc.ID(), ErrDocumentNotAttached)
	}

	doc.SetStatus(document.StatusDetached)
	delete(c.attachments, doc.ID())

	return nil
}

// Sync pushes the pending actions of the given documents, or of every
// attached document if none is given, to the server. The documents are
// synced concurrently; every document is synced even if another fails, and
// the first error is returned.
//
// A document behind the server fails with a *ConflictError unless it had
// nothing to push, in which case the missed actions are applied to it.
func (c *Client) Sync(ctx context.Context, docs ...*document.Document) error {
	atts, err := c.findAttachments(docs)
	if err != nil {
		return err
	}

	var group errgroup.Group
	for _, att := range atts {
		att := att
		group.Go(func() error {
			return c.sync(ctx, att)
		})
	}

	return group.Wait()
}

// RequestSync syncs the given document at most once per SyncWindow. Requests
// made within a window are merged into one sync at the end of the window,
// so editors can call it after every edit. It blocks until the sync it
// triggered is done, or returns nil at once if another request covers it.
func (c *Client) RequestSync(ctx context.Context, doc *document.Document) error {
	atts, err := c.findAttachments([]*document.Document{doc})
	if err != nil {
		return err
	}

	att := atts[0]
	return att.throttler.Do(ctx, func() error {
		return c.sync(ctx, att)
	})
}

// Resolve applies the missed actions of the given conflict to the document
// and keeps the pending actions the given policy returns.
func (c *Client) Resolve(doc *document.Document, conflict *ConflictError, rebase document.RebaseFunc) error {
	if doc.ID() != conflict.DocumentID {
		return fmt.Errorf("resolve %s with conflict of %s: %w", doc.ID(), conflict.DocumentID, ErrDocumentNotAttached)
	}

	return doc.Rebase(conflict.MissedActions, conflict.CurrentVersion, rebase)
}

// Reload replaces the document with the content of the server, discarding
// its pending actions.
func (c *Client) Reload(ctx context.Context, doc *document.Document) error {
	info, err := c.getDocument(ctx, doc.ID())
	if err != nil {
		return err
	}

	if pending := len(doc.Pending()); pending > 0 {
		c.logger.Warn(
			"reload discards pending actions",
			zap.String("document", doc.ID()),
			zap.Int("pending", pending),
		)
	}
	doc.Reset(info.Content, info.Version)

	return nil
}

// GetDocument returns the document of the given ID from the server.
func (c *Client) GetDocument(ctx context.Context, docID string) (*types.DocumentInfo, error) {
	return c.getDocument(ctx, docID)
}

// ListDocuments returns the summaries of all documents of the server.
func (c *Client) ListDocuments(ctx context.Context) ([]*types.DocumentSummary, error) {
	var resp *types.ListDocumentsResponse
	if err := c.withRetry(ctx, func() error {
		var err error
		resp, err = c.client.ListDocuments(ctx, &types.ListDocumentsRequest{})
		return err
	}); err != nil {
		return nil, err
	}

	return resp.Documents, nil
}

// ServerVersion returns the version of the server.
func (c *Client) ServerVersion(ctx context.Context) (*types.VersionDetail, error) {
	var detail *types.VersionDetail
	if err := c.withRetry(ctx, func() error {
		var err error
		detail, err = c.client.GetVersion(ctx, &types.VersionRequest{})
		return err
	}); err != nil {
		return nil, err
	}

	return detail, nil
}

func (c *Client) getDocument(ctx context.Context, docID string) (*types.DocumentInfo, error) {
	var info *types.DocumentInfo
	if err := c.withRetry(ctx, func() error {
		var err error
		info, err = c.client.GetDocument(ctx, &types.GetDocumentRequest{DocumentID: docID})
		return err
	}); err != nil {
		return nil, err
	}

	return info, nil
}

func (c *Client) findAttachments(docs []*document.Document) ([]*attachment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var atts []*attachment
	if len(docs) == 0 {
		for _, att := range c.attachments {
			atts = append(atts, att)
		}
		return atts, nil
	}

	for _, doc := range docs {
		att, ok := c.attachments[doc.ID()]
		if !ok || att.doc != doc {
			return nil, fmt.Errorf("sync %s: %w", doc.ID(), ErrDocumentNotAttached)
		}
		atts = append(atts, att)
	}

	return atts, nil
}

func (c *Client) sync(ctx context.Context, att *attachment) error {
	att.syncMu.Lock()
	defer att.syncMu.Unlock()

	pack := att.doc.CreatePack()
	req, err := converter.ToSyncRequest(pack)
	if err != nil {
		return err
	}

	var resp *types.SyncResponse
	if err := c.withRetry(ctx, func() error {
		var err error
		resp, err = c.client.Sync(ctx, req)
		return err
	}); err != nil {
		return fmt.Errorf("sync %s: %w", pack.DocumentID, err)
	}

	if resp.Success {
		return att.doc.ApplySynced(pack, resp.CurrentVersion)
	}

	missed, err := converter.FromActionPayloads(resp.ConflictActions)
	if err != nil {
		return err
	}

	conflict := &ConflictError{
		DocumentID:       pack.DocumentID,
		LastKnownVersion: pack.LastKnownVersion,
		CurrentVersion:   resp.CurrentVersion,
		MissedActions:    missed,
	}

	// With nothing of its own to push, or with the head of its pack applied
	// by an earlier attempt whose answer was lost, the client only has to
	// catch up. Actions pushed during the flight must still apply after the missed
	// ones, or the conflict is returned.
	if pack.IsEmpty() || pack.CommittedIn(missed) {
		if err := att.doc.Rebase(missed, resp.CurrentVersion, document.KeepPending); err == nil {
			return nil
		}
	}

	return conflict
}

// withRetry calls the given function, retrying with exponential backoff
// while the server is unavailable.
func (c *Client) withRetry(ctx context.Context, call func() error) error {
	if c.options.MaxRetries == 0 {
		return call()
	}

	b := backoff.NewExponentialBackOff()
	b.MaxInterval = c.options.MaxRetryInterval

	return backoff.RetryNotify(
		func() error {
			err := call()
			if err != nil && status.Code(err) != codes.Unavailable {
				return backoff.Permanent(err)
			}
			return err
		},
		backoff.WithContext(backoff.WithMaxRetries(b, c.options.MaxRetries), ctx),
		func(err error, next time.Duration) {
			c.logger.Warn("server unavailable, retrying", zap.Error(err), zap.Duration("next", next))
		},
	)
}
