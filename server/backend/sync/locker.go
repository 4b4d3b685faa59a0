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

// Package sync provides the per-document critical section and the pub/sub
// that notifies watchers of document changes.
package sync

import (
	"context"
	"fmt"

	"github.com/moby/locker"
)

// Key represents key of Locker.
type Key string

// NewKey creates a new instance of Key.
func NewKey(key string) Key {
	return Key(key)
}

// String returns a string representation of this Key.
func (k Key) String() string {
	return string(k)
}

// LockerManager manages Lockers. Lockers of different keys never contend
// with each other.
type LockerManager struct {
	locks *locker.Locker
}

// New creates a new instance of LockerManager.
func New() *LockerManager {
	return &LockerManager{
		locks: locker.New(),
	}
}

// Locker creates locker of the given key.
func (c *LockerManager) Locker(key Key) Locker {
	return &internalLocker{
		key:   key.String(),
		locks: c.locks,
	}
}

// A Locker represents an object that can be locked and unlocked.
type Locker interface {
	// Lock locks the mutex. Waiters are served with Go mutex semantics.
	Lock(ctx context.Context) error

	// Unlock unlocks the mutex.
	Unlock(ctx context.Context) error
}

type internalLocker struct {
	key   string
	locks *locker.Locker
}

// Lock locks the mutex.
func (il *internalLocker) Lock(_ context.Context) error {
	il.locks.Lock(il.key)

	return nil
}

// Unlock unlocks the mutex.
func (il *internalLocker) Unlock(_ context.Context) error {
	if err := il.locks.Unlock(il.key); err != nil {
		return fmt.Errorf("unlock %s: %w", il.key, err)
	}

	return nil
}
