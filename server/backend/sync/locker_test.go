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

package sync_test

import (
	"context"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/textsync/server/backend/sync"
)

func TestLockerManager(t *testing.T) {
	ctx := context.Background()

	t.Run("mutual exclusion of the same key test", func(t *testing.T) {
		manager := sync.New()
		counter := 0

		var wg gosync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l := manager.Locker(sync.NewKey("pack-doc1"))
				assert.NoError(t, l.Lock(ctx))
				counter++
				assert.NoError(t, l.Unlock(ctx))
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, counter)
	})

	t.Run("different keys do not contend test", func(t *testing.T) {
		manager := sync.New()

		l1 := manager.Locker(sync.NewKey("pack-doc1"))
		assert.NoError(t, l1.Lock(ctx))
		defer func() {
			assert.NoError(t, l1.Unlock(ctx))
		}()

		done := make(chan struct{})
		go func() {
			l2 := manager.Locker(sync.NewKey("pack-doc2"))
			assert.NoError(t, l2.Lock(ctx))
			assert.NoError(t, l2.Unlock(ctx))
			close(done)
		}()
		<-done
	})

	t.Run("unlock without lock test", func(t *testing.T) {
		manager := sync.New()
		l := manager.Locker(sync.NewKey("pack-doc1"))
		assert.Error(t, l.Unlock(ctx))
	})
}
