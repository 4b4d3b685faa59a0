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

package converter

import (
	"fmt"
	"time"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/pkg/document/action"
)

// FromSyncRequest converts the given request to a pack.
func FromSyncRequest(req *types.SyncRequest) (*action.Pack, error) {
	if req == nil {
		return nil, ErrPackRequired
	}

	actions, err := FromActionPayloads(req.Actions)
	if err != nil {
		return nil, err
	}

	return action.NewPack(req.DocumentID, req.LastKnownVersion, actions), nil
}

// FromActionPayloads converts the given payloads to actions.
func FromActionPayloads(payloads []*types.ActionPayload) ([]action.Action, error) {
	actions := make([]action.Action, 0, len(payloads))
	for i, payload := range payloads {
		a, err := FromActionPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// FromActionPayload converts the given payload to an action.
func FromActionPayload(payload *types.ActionPayload) (action.Action, error) {
	if payload == nil {
		return nil, ErrActionRequired
	}

	ts := time.UnixMilli(payload.Timestamp)
	switch payload.Type {
	case types.ActionTypeInsert:
		if payload.Content == nil {
			return nil, fmt.Errorf("%s: %w", payload.Type, ErrContentRequired)
		}
		return action.NewInsert(payload.ID, ts, payload.Position, *payload.Content), nil
	case types.ActionTypeDelete:
		if payload.Length == nil {
			return nil, fmt.Errorf("%s: %w", payload.Type, ErrLengthRequired)
		}
		return action.NewDelete(payload.ID, ts, payload.Position, *payload.Length), nil
	case types.ActionTypeReplace:
		if payload.Content == nil {
			return nil, fmt.Errorf("%s: %w", payload.Type, ErrContentRequired)
		}
		length := 0
		if payload.Length != nil {
			length = *payload.Length
		}
		return action.NewReplace(payload.ID, ts, payload.Position, *payload.Content, length), nil
	}

	return nil, fmt.Errorf("%s: %w", payload.Type, ErrUnsupportedActionType)
}
