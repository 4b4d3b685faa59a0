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

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/pkg/document/action"
)

// ToSyncRequest converts the given pack to a request.
func ToSyncRequest(pack *action.Pack) (*types.SyncRequest, error) {
	if pack == nil {
		return nil, ErrPackRequired
	}

	payloads, err := ToActionPayloads(pack.Actions)
	if err != nil {
		return nil, err
	}

	return &types.SyncRequest{
		DocumentID:       pack.DocumentID,
		Actions:          payloads,
		LastKnownVersion: pack.LastKnownVersion,
	}, nil
}

// ToActionPayloads converts the given actions to payloads.
func ToActionPayloads(actions []action.Action) ([]*types.ActionPayload, error) {
	payloads := make([]*types.ActionPayload, 0, len(actions))
	for _, a := range actions {
		payload, err := ToActionPayload(a)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// ToActionPayload converts the given action to a payload.
func ToActionPayload(a action.Action) (*types.ActionPayload, error) {
	payload := &types.ActionPayload{
		ID:        a.ID(),
		Timestamp: a.Timestamp().UnixMilli(),
		Position:  a.Position(),
	}

	switch a := a.(type) {
	case *action.Insert:
		content := a.Content()
		payload.Type = types.ActionTypeInsert
		payload.Content = &content
	case *action.Delete:
		length := a.Length()
		payload.Type = types.ActionTypeDelete
		payload.Length = &length
	case *action.Replace:
		content, length := a.Content(), a.Length()
		payload.Type = types.ActionTypeReplace
		payload.Content = &content
		payload.Length = &length
	default:
		return nil, fmt.Errorf("%T: %w", a, action.ErrUnsupportedAction)
	}

	return payload, nil
}
