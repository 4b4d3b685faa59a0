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

// Package limit provides rate control of repeated calls.
package limit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Throttler runs a function at most once per window. Calls that arrive
// within the window are merged into a single trailing run, so the last call
// is always followed by a run.
type Throttler struct {
	lim      *rate.Limiter
	trailing atomic.Bool
}

// NewThrottler creates a new instance of Throttler with the given window.
func NewThrottler(window time.Duration) *Throttler {
	return &Throttler{
		lim: rate.NewLimiter(rate.Every(window), 1),
	}
}

// Do runs fn immediately if the window allows it. Otherwise the first caller
// within the window waits for the next window and runs fn for everyone; the
// other callers return nil without running it.
func (t *Throttler) Do(ctx context.Context, fn func() error) error {
	if t.lim.Allow() {
		return fn()
	}

	if !t.trailing.CompareAndSwap(false, true) {
		return nil
	}

	if err := t.lim.Wait(ctx); err != nil {
		t.trailing.Store(false)
		return fmt.Errorf("wait for window: %w", err)
	}

	t.trailing.Store(false)
	return fn()
}
