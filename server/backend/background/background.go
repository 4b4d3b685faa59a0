/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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

// Package background runs the goroutines that outlive a request, such as the
// delivery of document events to watchers, and waits for them on shutdown.
package background

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/yorkie-team/textsync/server/logging"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
)

type routineID int32

func (c *routineID) next() string {
	next := atomic.AddInt32((*int32)(c), 1)
	return "bg" + strconv.Itoa(int(next))
}

// Background manages the goroutines attached by the backend.
type Background struct {
	// closing is closed by backend close.
	closing chan struct{}

	// ctx is canceled by backend close, so that attached goroutines stop.
	ctx    context.Context
	cancel context.CancelFunc

	// wgMu blocks concurrent WaitGroup mutation while backend closing
	wgMu sync.RWMutex
	wg   sync.WaitGroup

	routineID routineID
	metrics   *prometheus.Metrics
}

// New creates a new background service.
func New(metrics *prometheus.Metrics) *Background {
	ctx, cancel := context.WithCancel(context.Background())
	return &Background{
		closing: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		metrics: metrics,
	}
}

// AttachGoroutine creates a goroutine on a given function and tracks it using
// the background's WaitGroup. The context given to f is canceled on Close.
func (b *Background) AttachGoroutine(
	f func(ctx context.Context),
	taskType string,
) {
	b.wgMu.RLock() // this blocks with ongoing close(b.closing)
	defer b.wgMu.RUnlock()
	select {
	case <-b.closing:
		logging.DefaultLogger().Warnf("backend has closed; skipping %s", taskType)
		return
	default:
	}

	b.wg.Add(1)
	routineLogger := logging.New(b.routineID.next(), logging.NewField("task", taskType))
	b.metrics.AddBackgroundGoroutines(taskType)
	go func() {
		defer func() {
			b.wg.Done()
			b.metrics.RemoveBackgroundGoroutines(taskType)
		}()
		f(logging.With(b.ctx, routineLogger))
	}()
}

// Close cancels the attached goroutines and waits for them to exit.
func (b *Background) Close() {
	b.wgMu.Lock()
	close(b.closing)
	b.wgMu.Unlock()

	b.cancel()
	b.wg.Wait()
}
