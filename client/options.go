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
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMaxRetries is the default number of retries of a call that
	// failed because the server was unavailable.
	DefaultMaxRetries = 5

	// DefaultMaxRetryInterval is the default upper bound of the interval
	// between retries.
	DefaultMaxRetryInterval = 3 * time.Second

	// DefaultSyncWindow is the default minimum interval between the syncs
	// requested by RequestSync.
	DefaultSyncWindow = time.Second
)

// Option configures Options.
type Option func(*Options)

// Options configures how we set up the client.
type Options struct {
	// CertFile is the path to the certificate file.
	CertFile string

	// ServerNameOverride is the server name override.
	ServerNameOverride string

	// MaxRetries is the number of retries of a call that failed because the
	// server was unavailable. 0 disables retries.
	MaxRetries uint64

	// MaxRetryInterval is the upper bound of the interval between retries.
	MaxRetryInterval time.Duration

	// SyncWindow is the minimum interval between the syncs of a document
	// requested by RequestSync.
	SyncWindow time.Duration

	// Logger is the Logger of the client.
	Logger *zap.Logger
}

// WithCertFile configures the certificate file of the client.
func WithCertFile(certFile string) Option {
	return func(o *Options) { o.CertFile = certFile }
}

// WithServerNameOverride configures the server name override of the client.
func WithServerNameOverride(serverNameOverride string) Option {
	return func(o *Options) { o.ServerNameOverride = serverNameOverride }
}

// WithMaxRetries configures the number of retries of unavailable calls.
func WithMaxRetries(maxRetries uint64) Option {
	return func(o *Options) { o.MaxRetries = maxRetries }
}

// WithMaxRetryInterval configures the upper bound of the retry interval.
func WithMaxRetryInterval(interval time.Duration) Option {
	return func(o *Options) { o.MaxRetryInterval = interval }
}

// WithSyncWindow configures the minimum interval between requested syncs.
func WithSyncWindow(window time.Duration) Option {
	return func(o *Options) { o.SyncWindow = window }
}

// WithLogger configures the Logger of the client.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}
